package mock

import (
	"context"

	"github.com/fwojciec/transpress"
)

var _ transpress.Translator = (*Translator)(nil)

// Translator is a mock implementation of transpress.Translator.
type Translator struct {
	TranslateFn func(ctx context.Context, text string) (string, error)
}

func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	return t.TranslateFn(ctx, text)
}
