// Package gemini implements translation with Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fwojciec/transpress"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure Translator implements transpress.Translator at compile time.
var _ transpress.Translator = (*Translator)(nil)

// Translator implements transpress.Translator using Google Gemini.
type Translator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewTranslator creates a Translator from sourceLang to targetLang, e.g.
// "Japanese" and "Korean". An empty model selects DefaultModel.
func NewTranslator(client *genai.Client, model, sourceLang, targetLang string) *Translator {
	if model == "" {
		model = DefaultModel
	}
	return &Translator{
		client: client,
		model:  model,
		config: BuildConfig(sourceLang, targetLang),
	}
}

// Translate returns the translation of text. Empty input is returned as is
// without calling the API.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if t.client == nil {
		return "", transpress.Errorf(transpress.EINTERNAL, "gemini client not configured")
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: text}},
		}},
		t.config,
	)
	if err != nil {
		return "", apiError(ctx, err)
	}
	if result == nil {
		return "", transpress.Errorf(transpress.ETRANSLATE, "gemini returned nil result")
	}

	out := strings.TrimSpace(result.Text())
	if out == "" {
		return "", transpress.Errorf(transpress.ETRANSLATE, "gemini returned empty translation")
	}
	return out, nil
}

// apiError maps a GenerateContent failure. Rate limiting and server errors
// are transient; everything else fails the translation.
func apiError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var code int
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}
	if code == http.StatusTooManyRequests || code >= 500 || code == 0 {
		return transpress.WrapError(transpress.EUNAVAILABLE, err, fmt.Sprintf("gemini: %v", err))
	}
	return transpress.WrapError(transpress.ETRANSLATE, err, fmt.Sprintf("gemini: %v", err))
}

// BuildConfig returns the GenerateContentConfig for translation calls.
func BuildConfig(sourceLang, targetLang string) *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: BuildSystemInstruction(sourceLang, targetLang),
			}},
		},
		Temperature: &temp,
	}
}

// BuildSystemInstruction returns the translation instructions.
func BuildSystemInstruction(sourceLang, targetLang string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a professional translator of %s news articles into natural %s.\n", sourceLang, targetLang)
	sb.WriteString("Rules:\n")
	sb.WriteString("- Output only the translation, with no notes or explanations.\n")
	sb.WriteString("- Keep every blank line between paragraphs exactly where it is.\n")
	sb.WriteString("- Tokens of the form ZXH...ZX are placeholders: copy them unchanged, in the same position.\n")
	sb.WriteString("- Keep URLs, product names, model numbers and version numbers unchanged.\n")
	return sb.String()
}
