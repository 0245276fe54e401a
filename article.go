package transpress

import (
	"context"
	"time"
)

// SourceArticle represents one content item retrieved from the source feed.
// It is treated as immutable once fetched.
type SourceArticle struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	BodyHTML    string    `json:"bodyHtml"`
	PublishedAt time.Time `json:"publishedAt"`

	// ImageURLs lists primary images (featured media first).
	// Images embedded in BodyHTML are discovered separately.
	ImageURLs []string `json:"imageUrls,omitempty"`
}

// Key returns the identifier used for deduplication: the source URL when
// present, otherwise the source ID.
func (a *SourceArticle) Key() string {
	if a.URL != "" {
		return a.URL
	}
	return a.ID
}

// Validate returns an error if the article contains invalid fields.
func (a *SourceArticle) Validate() error {
	if a.URL == "" && a.ID == "" {
		return Errorf(EINVALID, "article URL or ID required")
	}
	if a.PublishedAt.IsZero() {
		return Errorf(EINVALID, "article %s: published time required", a.Key())
	}
	return nil
}

// ArticlePage is one page of a paginated source listing.
type ArticlePage struct {
	Articles []*SourceArticle

	// HasMore is false when the source signals there are no further pages.
	HasMore bool
}

// ArticleSource lists source articles newest-first.
type ArticleSource interface {
	// ListArticles fetches one page of articles. Pages are 1-based.
	// Returns EUNAVAILABLE for transient failures (timeouts, 429, 5xx)
	// so callers may retry.
	ListArticles(ctx context.Context, page int) (*ArticlePage, error)
}
