// Package gofeed implements an RSS/Atom article source on top of
// mmcdole/gofeed.
package gofeed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/transpress"
	tpgoquery "github.com/fwojciec/transpress/goquery"
	"github.com/mmcdole/gofeed"
)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 20 * time.Second

// Ensure Source implements transpress.ArticleSource at compile time.
var _ transpress.ArticleSource = (*Source)(nil)

// Source lists feed items. Pages past the first are requested with the
// WordPress "paged" query parameter.
type Source struct {
	FeedURL string

	// Aliases normalizes item links. May be nil.
	Aliases *transpress.DomainAliases

	client *http.Client
	parser *gofeed.Parser
}

// NewSource creates a Source for feedURL.
func NewSource(feedURL string, aliases *transpress.DomainAliases, timeout time.Duration) *Source {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Source{
		FeedURL: feedURL,
		Aliases: aliases,
		client:  &http.Client{Timeout: timeout},
		parser:  gofeed.NewParser(),
	}
}

// ListArticles fetches and parses one feed page. A 404 past the first
// page ends the listing.
func (s *Source) ListArticles(ctx context.Context, page int) (*transpress.ArticlePage, error) {
	if page < 1 {
		return nil, transpress.Errorf(transpress.EINVALID, "page must be positive, got %d", page)
	}
	endpoint, err := pageURL(s.FeedURL, page)
	if err != nil {
		return nil, transpress.Errorf(transpress.EINVALID, "invalid feed URL %q: %v", s.FeedURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, transpress.Errorf(transpress.EINVALID, "invalid feed URL %q: %v", s.FeedURL, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; transpress/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, transpress.WrapError(transpress.EUNAVAILABLE, err, fmt.Sprintf("request %s: %v", endpoint, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound && page > 1:
		return &transpress.ArticlePage{}, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, transpress.Errorf(transpress.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, endpoint)
	case resp.StatusCode != http.StatusOK:
		return nil, transpress.Errorf(transpress.ESOURCE, "HTTP %d for %s", resp.StatusCode, endpoint)
	}

	feed, err := s.parser.Parse(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, transpress.WrapError(transpress.EUNAVAILABLE, err, "read feed")
		}
		return nil, transpress.Errorf(transpress.ESOURCE, "parse feed %s: %v", endpoint, err)
	}

	out := &transpress.ArticlePage{
		Articles: make([]*transpress.SourceArticle, 0, len(feed.Items)),
		HasMore:  len(feed.Items) > 0,
	}
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		out.Articles = append(out.Articles, s.article(item))
	}
	return out, nil
}

func (s *Source) article(item *gofeed.Item) *transpress.SourceArticle {
	body := item.Content
	if body == "" {
		body = item.Description
	}
	a := &transpress.SourceArticle{
		ID:       item.GUID,
		URL:      s.Aliases.NormalizeSourceURL(item.Link),
		Title:    tpgoquery.PlainText(item.Title),
		BodyHTML: body,
	}
	switch {
	case item.PublishedParsed != nil:
		a.PublishedAt = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		a.PublishedAt = *item.UpdatedParsed
	}
	if u := ImageURL(item); u != "" {
		a.ImageURLs = []string{u}
	}
	return a
}

// ImageURL returns the item's primary image: the item image, then
// media:thumbnail, then media:content with medium=image, then the first
// image enclosure. Only http(s) URLs are returned.
func ImageURL(item *gofeed.Item) string {
	if item.Image != nil && isHTTP(item.Image.URL) {
		return item.Image.URL
	}
	if media, ok := item.Extensions["media"]; ok {
		for _, thumb := range media["thumbnail"] {
			if u := thumb.Attrs["url"]; isHTTP(u) {
				return u
			}
		}
		for _, content := range media["content"] {
			if u := content.Attrs["url"]; content.Attrs["medium"] == "image" && isHTTP(u) {
				return u
			}
		}
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && isHTTP(enc.URL) {
			return enc.URL
		}
	}
	return ""
}

func isHTTP(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func pageURL(feedURL string, page int) (string, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return "", err
	}
	if page > 1 {
		q := u.Query()
		q.Set("paged", strconv.Itoa(page))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
