package goquery

import (
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/immocrawl"
)

var _ immocrawl.ListingPageParser = (*ListingParser)(nil)

// Card selectors, newest layout last. The first one that matches any
// element on the page is used for the whole page.
var cardSelectors = []string{
	"div.c-pa-list",
	"div.ListingCell",
	"article[data-test='sl-card-result']",
}

var nextSelectors = []string{
	"link[rel='next']",
	"a[rel='next']",
	"a[data-test='sl-pagination-next']",
	"a.pagination-next",
}

var locationClassRe = regexp.MustCompile(`(?i)location`)

// ListingParser parses search-result pages.
type ListingParser struct{}

// NewListingParser creates a new ListingParser.
func NewListingParser() *ListingParser {
	return &ListingParser{}
}

// ParseListingPage extracts the listing cards and the next-page link.
// A page without cards is a valid empty page. Returns EMALFORMED if the body
// is empty or has no markup.
func (p *ListingParser) ParseListingPage(body string, pageURL string) (*immocrawl.ListingPage, error) {
	doc, base, err := parseDocument(body, pageURL)
	if err != nil {
		return nil, err
	}

	page := &immocrawl.ListingPage{NextURL: nextURL(doc, base)}

	cards := firstMatch(doc.Selection, cardSelectors...)
	if cards == nil {
		return page, nil
	}

	cards.Each(func(_ int, card *goquery.Selection) {
		raw, ok := parseCard(card, base)
		if !ok {
			page.Skipped++
			return
		}
		page.Listings = append(page.Listings, raw)
	})

	return page, nil
}

// parseCard reads one result card. Returns false when the card has no link.
func parseCard(card *goquery.Selection, base *url.URL) (immocrawl.RawListing, bool) {
	var link string
	card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		link = resolveURL(base, a.AttrOr("href", ""))
		return link == ""
	})
	if link == "" {
		return immocrawl.RawListing{}, false
	}

	raw := immocrawl.RawListing{
		URL:    link,
		Title:  text(firstMatch(card, "h2", "h3", "h4", "a[data-test='sl-card-title']")),
		Photos: images(card, base),
	}

	if loc := firstMatch(card, "[data-test*='location']"); loc != nil {
		raw.Location = text(loc)
	} else {
		raw.Location = text(findByClass(card, "p", locationClassRe))
	}

	if n := findText(card, priceTextRe); n != nil {
		raw.Price = priceTextRe.FindString(n.Data)
	}

	return raw, true
}

func nextURL(doc *goquery.Document, base *url.URL) string {
	for _, s := range nextSelectors {
		var next string
		doc.Find(s).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			next = resolveURL(base, sel.AttrOr("href", ""))
			return next == ""
		})
		if next != "" {
			return next
		}
	}
	return ""
}
