// Package trafilatura extracts article bodies from full pages with
// go-trafilatura when the source listing carries no body.
package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/fwojciec/transpress"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements transpress.Extractor at compile time.
var _ transpress.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract the main article content.
type Extractor struct {
	// PageURL, when set, helps trafilatura resolve relative links and
	// pick site-specific metadata.
	PageURL string
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes a full page and returns its article body, title and
// lead image.
func (e *Extractor) Extract(rawHTML string) (*transpress.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, transpress.Errorf(transpress.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
		IncludeImages:  true,
	}
	if e.PageURL != "" {
		if u, err := url.Parse(e.PageURL); err == nil {
			opts.OriginalURL = u
		}
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, transpress.Errorf(transpress.ENOTFOUND, "trafilatura: %v", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &transpress.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
		Image:       result.Metadata.Image,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", transpress.Errorf(transpress.EINTERNAL, "render content: %v", err)
	}
	return buf.String(), nil
}
