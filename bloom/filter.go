// Package bloom provides in-run deduplication of listed articles using
// Bloom filters.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter remembers article keys listed during one run. Pages shift while
// new posts are published, so the same article can appear on two
// consecutive listing pages.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a Filter sized for n expected keys with the given
// false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Listed reports whether key may already have been listed, and records it.
// False positives are possible; false negatives are not.
func (f *Filter) Listed(key string) bool {
	return f.f.TestAndAddString(key)
}

// Count returns the approximate number of keys recorded.
func (f *Filter) Count() uint {
	return uint(f.f.ApproximatedSize())
}
