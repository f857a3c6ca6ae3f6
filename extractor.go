package immocrawl

// ExtractResult holds the main content found in an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML with boilerplate removed.
	ContentHTML string
}

// Extractor finds the main content of an HTML page.
// Detail parsers use it to recover a description when the page has none of
// the known description blocks.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}
