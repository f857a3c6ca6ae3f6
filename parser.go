package immocrawl

// ListingPage is the parsed content of one search-results page.
type ListingPage struct {
	// Listings holds the usable cards in page order.
	Listings []RawListing

	// Skipped counts cards dropped because they had no URL.
	Skipped int

	// NextURL is the absolute URL of the following page.
	// Empty on the last page.
	NextURL string
}

// ListingPageParser extracts listing summaries from search-results pages.
type ListingPageParser interface {
	// ParseListingPage parses a search-results body fetched from pageURL.
	// Relative links are resolved against pageURL.
	// Returns EMALFORMED if the body is not a parsable results page.
	ParseListingPage(body string, pageURL string) (*ListingPage, error)
}

// DetailPageParser extracts extended fields from a listing's own page.
type DetailPageParser interface {
	// ParseDetailPage parses a listing body fetched from pageURL.
	// Returns EMALFORMED if the body lacks the structure of a listing page.
	ParseDetailPage(body string, pageURL string) (*Detail, error)
}
