package transpress

import "context"

// Translator translates plain text from the source to the target language.
type Translator interface {
	// Translate returns the translation of text. Blank-line paragraph
	// breaks and placeholder tokens must be preserved.
	Translate(ctx context.Context, text string) (string, error)
}
