// Package readability recovers a listing description with
// github.com/go-shiori/go-readability. It is a lighter alternative to the
// trafilatura extractor for sites whose main text sits in a plain article.
package readability

import (
	"strings"

	"github.com/fwojciec/immocrawl"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements immocrawl.Extractor at compile time.
var _ immocrawl.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
// Returns EINVALID for empty input.
func (e *Extractor) Extract(rawHTML string) (*immocrawl.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, immocrawl.Errorf(immocrawl.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, immocrawl.Errorf(immocrawl.EMALFORMED, "readability: %v", err)
	}

	return &immocrawl.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
