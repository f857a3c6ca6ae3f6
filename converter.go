package immocrawl

// Converter converts an HTML fragment to Markdown.
type Converter interface {
	Convert(html string) (string, error)
}
