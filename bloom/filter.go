// Package bloom provides a compact visited set for page URLs.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter records visited keys in a Bloom filter.
// False positives are possible at the configured rate; false negatives are not.
// Filter is not safe for concurrent use.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a filter sized for n expected keys
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	if n == 0 {
		n = 1
	}
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records key as visited.
func (f *Filter) Add(key string) {
	f.f.AddString(key)
}

// Test reports whether key was probably visited.
func (f *Filter) Test(key string) bool {
	return f.f.TestString(key)
}

// TestAndAdd reports whether key was probably visited and records it.
func (f *Filter) TestAndAdd(key string) bool {
	return f.f.TestAndAddString(key)
}

// EstimatedCount returns the approximate number of keys recorded.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
