// Package bluemonday scrubs translated article HTML with an allowlist
// policy before it is composed into a post.
package bluemonday

import (
	"regexp"

	"github.com/fwojciec/transpress"
	"github.com/microcosm-cc/bluemonday"
)

// Ensure Scrubber implements transpress.Scrubber at compile time.
var _ transpress.Scrubber = (*Scrubber)(nil)

// Scrubber removes any markup the restore step does not produce. It is
// safe for concurrent use.
type Scrubber struct {
	policy *bluemonday.Policy
}

// NewScrubber returns a Scrubber allowing block text, headings with a
// class, images with src and alt, and absolute http(s) links.
func NewScrubber() *Scrubber {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em", "b", "i",
		"figure", "figcaption",
	)
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[A-Za-z0-9_\- ]*$`)).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowURLSchemes("http", "https")

	return &Scrubber{policy: p}
}

// Scrub returns html with disallowed elements and attributes removed.
func (s *Scrubber) Scrub(html string) string {
	return s.policy.Sanitize(html)
}
