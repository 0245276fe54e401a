package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/fwojciec/transpress"
)

// Ensure Client implements the destination interfaces at compile time.
var (
	_ transpress.PostService  = (*Client)(nil)
	_ transpress.MediaService = (*Client)(nil)
)

// Client publishes posts and media to a destination WordPress site.
type Client struct {
	SiteURL  string
	Username string
	Password string // application password

	// Location is the destination zone used for the "date" field.
	Location *time.Location

	client *http.Client
}

// NewClient creates a Client. A nil loc means UTC.
func NewClient(siteURL, username, password string, loc *time.Location, timeout time.Duration) *Client {
	if loc == nil {
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		SiteURL:  siteURL,
		Username: username,
		Password: password,
		Location: loc,
		client:   &http.Client{Timeout: timeout},
	}
}

type createPostRequest struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Slug          string `json:"slug,omitempty"`
	Status        string `json:"status"`
	Date          string `json:"date"`
	DateGMT       string `json:"date_gmt"`
	FeaturedMedia int64  `json:"featured_media"`
}

type postResponse struct {
	ID      int64    `json:"id"`
	Slug    string   `json:"slug"`
	Link    string   `json:"link"`
	Date    string   `json:"date"`
	DateGMT string   `json:"date_gmt"`
	Content rendered `json:"content"`
}

// CreatePost creates p. The post's date is sent in the destination zone
// and in UTC so WordPress keeps the source publication time.
func (c *Client) CreatePost(ctx context.Context, p *transpress.Post) (*transpress.PublishedPost, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	status := p.Status
	if status == "" {
		status = "publish"
	}
	body, err := json.Marshal(createPostRequest{
		Title:         p.Title,
		Content:       p.Content,
		Slug:          p.Slug,
		Status:        status,
		Date:          p.Date.In(c.Location).Format(wpTime),
		DateGMT:       p.Date.UTC().Format(wpTime),
		FeaturedMedia: p.FeaturedMediaID,
	})
	if err != nil {
		return nil, transpress.Errorf(transpress.EINTERNAL, "encode post: %v", err)
	}

	endpoint := apiBase(c.SiteURL) + "/posts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, transpress.Errorf(transpress.EINVALID, "invalid destination URL %q: %v", c.SiteURL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out postResponse
	var undecodable *decodeError
	switch err := c.do(ctx, req, transpress.EPUBLISH, &out); {
	case errors.As(err, &undecodable):
		// The post was created; only the response is unreadable.
		return &transpress.PublishedPost{Slug: p.Slug, Date: p.Date}, nil
	case err != nil:
		return nil, err
	}

	published := &transpress.PublishedPost{
		ID:      out.ID,
		Slug:    out.Slug,
		Link:    out.Link,
		Content: out.Content.Rendered,
	}
	if t, err := time.ParseInLocation(wpTime, out.Date, c.Location); err == nil {
		published.Date = t
	}
	if t, err := time.ParseInLocation(wpTime, out.DateGMT, time.UTC); err == nil {
		published.DateGMT = t
	}
	return published, nil
}

type mediaResponse struct {
	ID        int64  `json:"id"`
	SourceURL string `json:"source_url"`
}

// UploadMedia uploads m as a raw request body.
func (c *Client) UploadMedia(ctx context.Context, m *transpress.Media) (*transpress.MediaItem, error) {
	if len(m.Data) == 0 {
		return nil, transpress.Errorf(transpress.EIMAGE, "media %s is empty", m.SourceURL)
	}

	endpoint := apiBase(c.SiteURL) + "/media"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(m.Data))
	if err != nil {
		return nil, transpress.Errorf(transpress.EINVALID, "invalid destination URL %q: %v", c.SiteURL, err)
	}
	contentType := m.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": m.Filename}))

	var out mediaResponse
	if err := c.do(ctx, req, transpress.EIMAGE, &out); err != nil {
		return nil, err
	}
	return &transpress.MediaItem{ID: out.ID, SourceURL: out.SourceURL}, nil
}

// do sends an authenticated request and decodes a 2xx JSON response into
// out. Non-2xx statuses other than 401, 403, 429 and 5xx use fallback.
func (c *Client) do(ctx context.Context, req *http.Request, fallback string, out any) error {
	req.SetBasicAuth(c.Username, c.Password)
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	target := req.URL.String()
	resp, err := c.client.Do(req)
	if err != nil {
		return transportError(ctx, err, target)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, fallback, readAPIError(resp.Body), target)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &decodeError{err: transpress.Errorf(fallback, "decode response from %s: %v", target, err)}
	}
	return nil
}

// decodeError reports a 2xx response whose body could not be decoded.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return e.err.Error() }

func (e *decodeError) Unwrap() error { return e.err }
