package mock

import "github.com/fwojciec/transpress"

var _ transpress.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of transpress.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*transpress.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*transpress.ExtractResult, error) {
	return e.ExtractFn(html)
}
