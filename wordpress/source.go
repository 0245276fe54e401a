package wordpress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fwojciec/transpress"
	"github.com/fwojciec/transpress/goquery"
)

// DefaultPerPage is the page size requested from the source.
const DefaultPerPage = 100

// Ensure Source implements transpress.ArticleSource at compile time.
var _ transpress.ArticleSource = (*Source)(nil)

// Source lists published posts of a WordPress site, newest first.
type Source struct {
	// SiteURL is the site root, e.g. https://jp.pronews.com.
	SiteURL string
	PerPage int

	// Location interprets "date" when "date_gmt" is missing.
	Location *time.Location

	// Aliases normalizes article links. May be nil.
	Aliases *transpress.DomainAliases

	client *http.Client
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithPerPage sets the page size.
func WithPerPage(n int) SourceOption {
	return func(s *Source) {
		if n > 0 {
			s.PerPage = n
		}
	}
}

// WithLocation sets the zone of the source's local dates.
func WithLocation(loc *time.Location) SourceOption {
	return func(s *Source) {
		if loc != nil {
			s.Location = loc
		}
	}
}

// WithAliases sets the domain alias table used to normalize links.
func WithAliases(a *transpress.DomainAliases) SourceOption {
	return func(s *Source) {
		s.Aliases = a
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) SourceOption {
	return func(s *Source) {
		s.client = c
	}
}

// NewSource creates a Source for siteURL. Local dates default to +09:00.
func NewSource(siteURL string, opts ...SourceOption) *Source {
	s := &Source{
		SiteURL:  siteURL,
		PerPage:  DefaultPerPage,
		Location: time.FixedZone("+09:00", 9*60*60),
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type sourcePost struct {
	ID      int64    `json:"id"`
	Date    string   `json:"date"`
	DateGMT string   `json:"date_gmt"`
	Link    string   `json:"link"`
	Title   rendered `json:"title"`
	Content rendered `json:"content"`
	Embedded struct {
		FeaturedMedia []struct {
			SourceURL string `json:"source_url"`
		} `json:"wp:featuredmedia"`
	} `json:"_embedded"`
}

// ListArticles fetches one page of posts ordered by date descending.
// Requesting a page past the end yields an empty page without error.
func (s *Source) ListArticles(ctx context.Context, page int) (*transpress.ArticlePage, error) {
	if page < 1 {
		return nil, transpress.Errorf(transpress.EINVALID, "page must be positive, got %d", page)
	}

	q := url.Values{}
	q.Set("per_page", strconv.Itoa(s.PerPage))
	q.Set("page", strconv.Itoa(page))
	q.Set("orderby", "date")
	q.Set("order", "desc")
	q.Set("_embed", "wp:featuredmedia")
	endpoint := apiBase(s.SiteURL) + "/posts?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, transpress.Errorf(transpress.EINVALID, "invalid source URL %q: %v", s.SiteURL, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, transportError(ctx, err, endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		// WordPress answers 400 rest_post_invalid_page_number past the
		// last page.
		e := readAPIError(resp.Body)
		if e.Code == "rest_post_invalid_page_number" || e.Code == "" {
			return &transpress.ArticlePage{}, nil
		}
		return nil, statusError(resp.StatusCode, transpress.ESOURCE, e, endpoint)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, transpress.ESOURCE, readAPIError(resp.Body), endpoint)
	}

	var posts []sourcePost
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, transpress.Errorf(transpress.ESOURCE, "decode posts page %d: %v", page, err)
	}

	out := &transpress.ArticlePage{
		Articles: make([]*transpress.SourceArticle, 0, len(posts)),
	}
	for _, p := range posts {
		out.Articles = append(out.Articles, s.article(p))
	}

	if len(posts) > 0 {
		out.HasMore = true
		if total, err := strconv.Atoi(resp.Header.Get("X-WP-TotalPages")); err == nil {
			out.HasMore = page < total
		} else if len(posts) < s.PerPage {
			out.HasMore = false
		}
	}
	return out, nil
}

func (s *Source) article(p sourcePost) *transpress.SourceArticle {
	a := &transpress.SourceArticle{
		ID:          strconv.FormatInt(p.ID, 10),
		URL:         s.Aliases.NormalizeSourceURL(p.Link),
		Title:       goquery.PlainText(p.Title.Rendered),
		BodyHTML:    p.Content.Rendered,
		PublishedAt: s.publishedAt(p.Date, p.DateGMT),
	}
	for _, m := range p.Embedded.FeaturedMedia {
		if m.SourceURL != "" {
			a.ImageURLs = append(a.ImageURLs, m.SourceURL)
			break
		}
	}
	return a
}

// publishedAt prefers date_gmt (UTC) and falls back to date in the source
// zone. The result is expressed in the source zone.
func (s *Source) publishedAt(date, dateGMT string) time.Time {
	if t, err := time.ParseInLocation(wpTime, dateGMT, time.UTC); err == nil {
		return t.In(s.Location)
	}
	if t, err := time.ParseInLocation(wpTime, date, s.Location); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t.In(s.Location)
	}
	return time.Time{}
}
