package goquery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/immocrawl"
	"golang.org/x/net/html"
)

var _ immocrawl.DetailPageParser = (*DetailParser)(nil)

var descriptionSelectors = []string{
	"[data-test='sl-price-description']",
	"div.Description",
	"section[data-test='sl-description']",
	"div.c-pa-list-details__text",
}

var agencySelectors = []string{
	"div[data-test='sl-contact-info']",
	"div.AgencyCard",
	"div[data-test='agency-card']",
}

var priceSelectors = []string{
	"[data-test='sl-price']",
	"[data-test*='price']:not([data-test*='description'])",
	".Price",
	".price",
}

var transportSelectors = []string{
	"[data-test*='transport']",
	"section.Transports",
	"ul.transports",
}

var (
	energyClassRe    = regexp.MustCompile(`(?i)classe\s+[A-G]\b`)
	energyLabelRe    = regexp.MustCompile(`(?i)diagnostic de performance énergétique`)
	constructionRe   = regexp.MustCompile(`(?i)(?:construction|construit|bâti)\D{0,20}((?:19|20)\d{2})`)
	phoneRe          = regexp.MustCompile(`\+?\d[\d\s.]{6,}\d`)
	transportLabelRe = regexp.MustCompile(`(?i)transports?|métro|metro|\bbus\b`)
	transportItemRe  = regexp.MustCompile(`(?i)métro|metro|\bbus\b|\btram|\brer\b|\bgare\b|\btrain\b`)
	locationDetailRe = regexp.MustCompile(`(?i)localisation|adresse`)
)

// DetailParser parses a listing's own page.
type DetailParser struct {
	extractor immocrawl.Extractor
	converter immocrawl.Converter
}

// DetailOption configures a DetailParser.
type DetailOption func(*DetailParser)

// WithExtractor sets the extractor used to recover a description when the
// page has none of the known description blocks.
func WithExtractor(e immocrawl.Extractor) DetailOption {
	return func(p *DetailParser) {
		p.extractor = e
	}
}

// WithConverter renders the description as Markdown instead of plain text.
func WithConverter(c immocrawl.Converter) DetailOption {
	return func(p *DetailParser) {
		p.converter = c
	}
}

// NewDetailParser creates a new DetailParser with the given options.
func NewDetailParser(opts ...DetailOption) *DetailParser {
	p := &DetailParser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseDetailPage extracts the extended listing fields. Returns EMALFORMED
// if the page has no description, agency, price or energy block. A heading
// alone does not make a listing page: block and error pages have one too.
func (p *DetailParser) ParseDetailPage(body string, pageURL string) (*immocrawl.Detail, error) {
	doc, base, err := parseDocument(body, pageURL)
	if err != nil {
		return nil, err
	}

	h1 := firstMatch(doc.Selection, "h1")
	desc := firstMatch(doc.Selection, descriptionSelectors...)
	agency := firstMatch(doc.Selection, agencySelectors...)
	price := firstMatch(doc.Selection, priceSelectors...)
	energy := energyInfo(doc)
	if desc == nil && agency == nil && price == nil && energy == "" {
		return nil, immocrawl.Errorf(immocrawl.EMALFORMED, "no listing details on page: %s", pageURL)
	}

	d := &immocrawl.Detail{
		Title:            text(h1),
		EnergyInfo:       energy,
		ConstructionDate: constructionYear(doc),
		NearbyTransport:  nearbyTransport(doc),
		Photos:           images(doc.Selection, base),
	}

	d.Description, err = p.description(body, desc)
	if err != nil {
		return nil, err
	}

	d.Price = detailPrice(doc, price, h1)

	if loc := firstMatch(doc.Selection, "[data-test*='location']"); loc != nil {
		d.Location = text(loc)
	} else {
		d.Location = text(findByClass(doc.Selection, "p", locationDetailRe))
	}

	d.PublisherName, d.PublisherPhone, d.PublisherEmail = publisher(doc, agency)

	return d, nil
}

func (p *DetailParser) description(body string, desc *goquery.Selection) (string, error) {
	if desc != nil {
		if p.converter == nil {
			return text(desc), nil
		}
		fragment, err := goquery.OuterHtml(desc.First())
		if err != nil {
			return "", immocrawl.Errorf(immocrawl.EINTERNAL, "render description: %v", err)
		}
		return p.convert(fragment)
	}

	if p.extractor == nil {
		return "", nil
	}
	result, err := p.extractor.Extract(body)
	if err != nil || result == nil || strings.TrimSpace(result.ContentHTML) == "" {
		// No readable main content.
		return "", nil
	}
	if p.converter != nil {
		return p.convert(result.ContentHTML)
	}
	content, err := goquery.NewDocumentFromReader(strings.NewReader(result.ContentHTML))
	if err != nil {
		return "", nil
	}
	return immocrawl.CleanText(content.Text()), nil
}

func (p *DetailParser) convert(fragment string) (string, error) {
	md, err := p.converter.Convert(fragment)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}

// detailPrice reads the amount from the price block, then from the block
// holding the title, and only then from anywhere on the page, so fees and
// price per m² listed earlier do not win.
func detailPrice(doc *goquery.Document, price, h1 *goquery.Selection) string {
	var scopes []*goquery.Selection
	if price != nil {
		scopes = append(scopes, price)
	}
	if h1 != nil {
		if parent := h1.First().Parent(); parent.Length() > 0 && !parent.Is("body") {
			scopes = append(scopes, parent)
		}
	}
	scopes = append(scopes, doc.Find("body"))

	for _, scope := range scopes {
		if n := findText(scope, priceTextRe); n != nil {
			return priceTextRe.FindString(n.Data)
		}
	}
	return ""
}

func energyInfo(doc *goquery.Document) string {
	body := doc.Find("body")
	if n := findText(body, energyClassRe); n != nil {
		return immocrawl.CleanText(n.Data)
	}
	if n := findText(body, energyLabelRe); n != nil && n.Parent != nil {
		return immocrawl.CleanText(goquery.NewDocumentFromNode(n.Parent).Text())
	}
	return ""
}

func constructionYear(doc *goquery.Document) string {
	m := constructionRe.FindStringSubmatch(doc.Find("body").Text())
	if m == nil {
		return ""
	}
	return m[1]
}

// publisher reads the agency block, falling back to tel: and mailto: links
// anywhere on the page.
func publisher(doc *goquery.Document, agency *goquery.Selection) (name, phone, email string) {
	if agency != nil {
		agency = agency.First()
		name = text(firstMatch(agency, "h2", "h3"))
		if n := findText(agency, phoneRe); n != nil {
			phone = immocrawl.CleanText(phoneRe.FindString(n.Data))
		}
		email = linkTarget(agency, "mailto:")
	}
	if phone == "" {
		phone = linkTarget(doc.Selection, "tel:")
	}
	if email == "" {
		email = linkTarget(doc.Selection, "mailto:")
	}
	return name, phone, email
}

// linkTarget returns the address of the first link under sel with the given
// scheme prefix, e.g. the number of a tel: link.
func linkTarget(sel *goquery.Selection, scheme string) string {
	var target string
	sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if len(href) < len(scheme) || !strings.EqualFold(href[:len(scheme)], scheme) {
			return true
		}
		target = href[len(scheme):]
		if i := strings.IndexByte(target, '?'); i >= 0 {
			target = target[:i]
		}
		if u, err := url.PathUnescape(target); err == nil {
			target = u
		}
		target = strings.TrimSpace(target)
		return target == ""
	})
	return target
}

// nearbyTransport lists the public transport lines near the listing. It
// reads a dedicated transport block when present, otherwise the nearest
// container of a transport label.
func nearbyTransport(doc *goquery.Document) []string {
	if block := firstMatch(doc.Selection, transportSelectors...); block != nil {
		if items := transportItems(block.First()); len(items) > 0 {
			return items
		}
	}

	n := findText(doc.Find("body"), transportLabelRe)
	if n == nil {
		return nil
	}
	for parent, depth := n.Parent, 0; parent != nil && depth < 3; parent, depth = parent.Parent, depth+1 {
		if parent.Type == html.ElementNode && parent.Data == "body" {
			break
		}
		if items := transportItems(goquery.NewDocumentFromNode(parent).Selection); len(items) > 0 {
			return items
		}
	}
	return nil
}

func transportItems(block *goquery.Selection) []string {
	var pieces []string
	if li := block.Find("li"); li.Length() > 0 {
		li.Each(func(_ int, s *goquery.Selection) {
			pieces = append(pieces, s.Text())
		})
	} else {
		pieces = strings.FieldsFunc(block.Text(), func(r rune) bool {
			return r == '•' || r == '\n' || r == '|'
		})
	}

	var items []string
	seen := make(map[string]bool)
	for _, p := range pieces {
		p = immocrawl.CleanText(p)
		if p == "" || seen[p] || !transportItemRe.MatchString(p) {
			continue
		}
		seen[p] = true
		items = append(items, p)
	}
	return items
}
