package mock

import "github.com/fwojciec/transpress"

var _ transpress.Converter = (*Converter)(nil)

// Converter is a mock implementation of transpress.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
