// Package goquery implements the listing and detail page parsers on top of
// github.com/PuerkitoBio/goquery. Selectors cover the layouts the search
// site has used over time; the first selector that matches wins.
package goquery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/immocrawl"
	"golang.org/x/net/html"
)

// priceTextRe matches a displayed euro amount such as "1 250 000 €".
var priceTextRe = regexp.MustCompile(`\d[\d\s\x{00a0}\x{202f}.,]*\s*€`)

// parseDocument parses body and resolves pageURL. Returns EMALFORMED for a
// body without any element inside <body>.
func parseDocument(body, pageURL string) (*goquery.Document, *url.URL, error) {
	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() {
		return nil, nil, immocrawl.Errorf(immocrawl.EINVALID, "invalid page url %q", pageURL)
	}
	if strings.TrimSpace(body) == "" {
		return nil, nil, immocrawl.Errorf(immocrawl.EMALFORMED, "empty page body: %s", pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, nil, immocrawl.Errorf(immocrawl.EMALFORMED, "failed to parse HTML: %v", err)
	}
	if doc.Find("body").Children().Length() == 0 {
		return nil, nil, immocrawl.Errorf(immocrawl.EMALFORMED, "page has no markup: %s", pageURL)
	}
	return doc, base, nil
}

// firstMatch returns the first non-empty selection among selectors, tried in
// order.
func firstMatch(sel *goquery.Selection, selectors ...string) *goquery.Selection {
	for _, s := range selectors {
		if found := sel.Find(s); found.Length() > 0 {
			return found
		}
	}
	return nil
}

// text returns the whitespace-collapsed text of the first element in sel,
// or "" for nil.
func text(sel *goquery.Selection) string {
	if sel == nil {
		return ""
	}
	return immocrawl.CleanText(sel.First().Text())
}

// findText returns the first text node under sel whose content matches re.
func findText(sel *goquery.Selection, re *regexp.Regexp) *html.Node {
	for _, n := range sel.Nodes {
		if found := findTextNode(n, re); found != nil {
			return found
		}
	}
	return nil
}

func findTextNode(n *html.Node, re *regexp.Regexp) *html.Node {
	if n.Type == html.TextNode && re.MatchString(n.Data) {
		return n
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTextNode(c, re); found != nil {
			return found
		}
	}
	return nil
}

// findByClass returns elements matching tag whose class attribute matches re.
func findByClass(sel *goquery.Selection, tag string, re *regexp.Regexp) *goquery.Selection {
	found := sel.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return re.MatchString(class)
	})
	if found.Length() == 0 {
		return nil
	}
	return found.First()
}

// images returns the absolute image URLs under sel in document order,
// preferring lazy-load data-src over src.
func images(sel *goquery.Selection, base *url.URL) []string {
	var photos []string
	seen := make(map[string]bool)
	sel.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := img.AttrOr("data-src", "")
		if src == "" {
			src = img.AttrOr("src", "")
		}
		resolved := resolveURL(base, src)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		photos = append(photos, resolved)
	})
	return photos
}

// resolveURL resolves href against base. Returns "" for empty or non-HTTP
// references.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || isNonHTTPLink(href) {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		strings.HasPrefix(href, "#")
}
