package transpress

// Sanitizer removes boilerplate from article HTML.
type Sanitizer interface {
	// Sanitize removes boilerplate blocks and source metadata lines.
	// It is idempotent and preserves paragraphs, images and headings
	// that are not boilerplate.
	Sanitize(html string) (string, error)

	// StripMetadata removes source metadata lines from flattened text.
	StripMetadata(text string) string
}

// HeadingPreserver carries heading and image structure through plain-text
// translation.
type HeadingPreserver interface {
	// Protect flattens html into blank-line separated paragraphs, replacing
	// headings and images with tokens recorded in the returned mapping.
	Protect(html string) (string, *Placeholders, error)

	// Restore rebuilds HTML from translated text. Placeholders whose token
	// did not survive translation are returned as missing; headings among
	// them degrade to paragraphs, images among them are appended.
	Restore(text string, ps *Placeholders) (html string, missing []Placeholder)
}

// LinkNormalizer rewrites alias domains to the canonical domain.
type LinkNormalizer interface {
	NormalizeLinks(html string) (string, error)

	// ResolveLinks makes relative link and image URLs absolute against
	// baseURL.
	ResolveLinks(html, baseURL string) (string, error)
}

// ImageRewriter finds and replaces image sources in HTML.
type ImageRewriter interface {
	// ImageSources returns img src values in document order, de-duplicated.
	ImageSources(html string) ([]string, error)

	// RewriteImageSources replaces every img src found in urls.
	RewriteImageSources(html string, urls map[string]string) (string, error)
}

// Scrubber removes unsafe markup from HTML produced by translation.
type Scrubber interface {
	Scrub(html string) string
}
