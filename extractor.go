package transpress

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	ContentHTML string

	// Image is the page's lead image URL, if the extractor found one.
	Image string
}

// Extractor extracts the main article body from a full HTML page.
// It is used when the source listing carries no body.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}
