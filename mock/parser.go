package mock

import "github.com/fwojciec/immocrawl"

var _ immocrawl.ListingPageParser = (*ListingPageParser)(nil)

// ListingPageParser is a mock implementation of immocrawl.ListingPageParser.
type ListingPageParser struct {
	ParseListingPageFn func(body, pageURL string) (*immocrawl.ListingPage, error)
}

func (p *ListingPageParser) ParseListingPage(body, pageURL string) (*immocrawl.ListingPage, error) {
	return p.ParseListingPageFn(body, pageURL)
}

var _ immocrawl.DetailPageParser = (*DetailPageParser)(nil)

// DetailPageParser is a mock implementation of immocrawl.DetailPageParser.
type DetailPageParser struct {
	ParseDetailPageFn func(body, pageURL string) (*immocrawl.Detail, error)
}

func (p *DetailPageParser) ParseDetailPage(body, pageURL string) (*immocrawl.Detail, error) {
	return p.ParseDetailPageFn(body, pageURL)
}
