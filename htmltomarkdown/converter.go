// Package htmltomarkdown renders dry-run previews of posts as Markdown.
package htmltomarkdown

import (
	"fmt"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/transpress"
)

// Ensure Converter implements transpress.Converter at compile time.
var _ transpress.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", transpress.Errorf(transpress.EINVALID, "empty HTML input")
	}
	return c.conv.ConvertString(html)
}

// Preview renders p as a Markdown document with a front-matter block.
func Preview(c transpress.Converter, p *transpress.Post) (string, error) {
	body, err := c.Convert(p.Content)
	if err != nil {
		return "", fmt.Errorf("preview %q: %w", p.Slug, err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", p.Title)
	fmt.Fprintf(&b, "slug: %s\n", p.Slug)
	fmt.Fprintf(&b, "date: %s\n", p.Date.Format(time.RFC3339))
	if p.FeaturedMediaID != 0 {
		fmt.Fprintf(&b, "featured_media: %d\n", p.FeaturedMediaID)
	}
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return b.String(), nil
}
