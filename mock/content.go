package mock

import "github.com/fwojciec/transpress"

var (
	_ transpress.Sanitizer        = (*Sanitizer)(nil)
	_ transpress.HeadingPreserver = (*HeadingPreserver)(nil)
	_ transpress.LinkNormalizer   = (*LinkNormalizer)(nil)
	_ transpress.ImageRewriter    = (*ImageRewriter)(nil)
	_ transpress.Scrubber         = (*Scrubber)(nil)
	_ transpress.Slugger          = (*Slugger)(nil)
)

// Sanitizer is a mock implementation of transpress.Sanitizer.
type Sanitizer struct {
	SanitizeFn      func(html string) (string, error)
	StripMetadataFn func(text string) string
}

func (s *Sanitizer) Sanitize(html string) (string, error) {
	return s.SanitizeFn(html)
}

func (s *Sanitizer) StripMetadata(text string) string {
	return s.StripMetadataFn(text)
}

// HeadingPreserver is a mock implementation of transpress.HeadingPreserver.
type HeadingPreserver struct {
	ProtectFn func(html string) (string, *transpress.Placeholders, error)
	RestoreFn func(text string, ps *transpress.Placeholders) (string, []transpress.Placeholder)
}

func (h *HeadingPreserver) Protect(html string) (string, *transpress.Placeholders, error) {
	return h.ProtectFn(html)
}

func (h *HeadingPreserver) Restore(text string, ps *transpress.Placeholders) (string, []transpress.Placeholder) {
	return h.RestoreFn(text, ps)
}

// LinkNormalizer is a mock implementation of transpress.LinkNormalizer.
type LinkNormalizer struct {
	NormalizeLinksFn func(html string) (string, error)
	ResolveLinksFn   func(html, baseURL string) (string, error)
}

func (n *LinkNormalizer) NormalizeLinks(html string) (string, error) {
	return n.NormalizeLinksFn(html)
}

func (n *LinkNormalizer) ResolveLinks(html, baseURL string) (string, error) {
	return n.ResolveLinksFn(html, baseURL)
}

// ImageRewriter is a mock implementation of transpress.ImageRewriter.
type ImageRewriter struct {
	ImageSourcesFn        func(html string) ([]string, error)
	RewriteImageSourcesFn func(html string, urls map[string]string) (string, error)
}

func (r *ImageRewriter) ImageSources(html string) ([]string, error) {
	return r.ImageSourcesFn(html)
}

func (r *ImageRewriter) RewriteImageSources(html string, urls map[string]string) (string, error) {
	return r.RewriteImageSourcesFn(html, urls)
}

// Scrubber is a mock implementation of transpress.Scrubber.
type Scrubber struct {
	ScrubFn func(html string) string
}

func (s *Scrubber) Scrub(html string) string {
	return s.ScrubFn(html)
}

// Slugger is a mock implementation of transpress.Slugger.
type Slugger struct {
	MakeSlugFn func(title string) string
}

func (s *Slugger) MakeSlug(title string) string {
	return s.MakeSlugFn(title)
}
