package mock

import "github.com/fwojciec/immocrawl"

var _ immocrawl.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of immocrawl.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*immocrawl.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*immocrawl.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ immocrawl.Converter = (*Converter)(nil)

// Converter is a mock implementation of immocrawl.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
