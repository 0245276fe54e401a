package transpress

// Converter converts HTML to Markdown for dry-run previews.
type Converter interface {
	Convert(html string) (string, error)
}
