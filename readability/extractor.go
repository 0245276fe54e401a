// Package readability extracts article bodies from full pages with
// go-readability. It is the last extractor tried.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/transpress"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements transpress.Extractor at compile time.
var _ transpress.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract the main article content.
type Extractor struct {
	// PageURL, when set, is used to resolve relative image URLs.
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

	var pageURL *url.URL
	if e.PageURL != "" {
		if u, err := url.Parse(e.PageURL); err == nil {
			pageURL = u
		}
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), pageURL)
	if err != nil {
		return nil, transpress.Errorf(transpress.ENOTFOUND, "readability: %v", err)
	}

	return &transpress.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
		Image:       article.Image,
	}, nil
}
