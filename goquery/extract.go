package goquery

import (
	"strings"

	"github.com/fwojciec/transpress"
)

// Ensure Extractor implements transpress.Extractor at compile time.
var _ transpress.Extractor = (*Extractor)(nil)

// contentSelector lists WordPress article body containers by preference.
const contentSelector = "div.entry-content, div.post-content, div.article-content, article"

// Extractor takes the article body from the common WordPress content
// containers of a full page.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the first matching content container. It returns
// ENOTFOUND when the page has none.
func (e *Extractor) Extract(rawHTML string) (*transpress.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, transpress.Errorf(transpress.EINVALID, "empty HTML input")
	}
	doc, err := parse(rawHTML)
	if err != nil {
		return nil, err
	}

	for _, sel := range strings.Split(contentSelector, ", ") {
		content := doc.Find(sel).First()
		if content.Length() == 0 {
			continue
		}
		contentHTML, err := content.Html()
		if err != nil {
			return nil, transpress.Errorf(transpress.EINTERNAL, "failed to render content: %v", err)
		}
		return &transpress.ExtractResult{
			Title:       strings.TrimSpace(doc.Find("title").First().Text()),
			ContentHTML: strings.TrimSpace(contentHTML),
			Image:       MainImage(rawHTML, ""),
		}, nil
	}
	return nil, transpress.Errorf(transpress.ENOTFOUND, "no article content container")
}
