package http

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/transpress"
)

// DefaultTranslateEndpoint is the Cloud Translation v2 REST endpoint.
const DefaultTranslateEndpoint = "https://translation.googleapis.com/language/translate/v2"

// Ensure GoogleTranslator implements transpress.Translator at compile time.
var _ transpress.Translator = (*GoogleTranslator)(nil)

// GoogleTranslator translates text with Google Cloud Translation v2.
type GoogleTranslator struct {
	Endpoint string
	APIKey   string
	Source   string // language code, e.g. "ja"
	Target   string // language code, e.g. "ko"

	client *http.Client
}

// NewGoogleTranslator creates a GoogleTranslator.
func NewGoogleTranslator(apiKey, source, target string, timeout time.Duration) *GoogleTranslator {
	return &GoogleTranslator{
		Endpoint: DefaultTranslateEndpoint,
		APIKey:   apiKey,
		Source:   source,
		Target:   target,
		client:   &http.Client{Timeout: timeout},
	}
}

type translateRequest struct {
	Q      []string `json:"q"`
	Source string   `json:"source,omitempty"`
	Target string   `json:"target"`
	Format string   `json:"format"`
}

type translateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// Translate sends text as plain text (format=text) so placeholder tokens and
// line breaks pass through unchanged.
func (g *GoogleTranslator) Translate(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}
	body, err := json.Marshal(translateRequest{
		Q:      []string{text},
		Source: g.Source,
		Target: g.Target,
		Format: "text",
	})
	if err != nil {
		return "", transpress.Errorf(transpress.EINTERNAL, "encode translate request: %v", err)
	}

	endpoint := g.Endpoint + "?key=" + url.QueryEscape(g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", transpress.Errorf(transpress.EINVALID, "invalid translate endpoint: %v", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	client := g.client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", TransportError(ctx, err, g.Endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", StatusError(resp.StatusCode, transpress.ETRANSLATE, g.Endpoint)
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", transpress.Errorf(transpress.ETRANSLATE, "decode translate response: %v", err)
	}
	if len(out.Data.Translations) == 0 {
		return "", transpress.Errorf(transpress.ETRANSLATE, "empty translate response")
	}
	// format=text still escapes a few entities in some responses.
	return html.UnescapeString(out.Data.Translations[0].TranslatedText), nil
}
