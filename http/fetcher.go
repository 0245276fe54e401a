package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/transpress"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 20 * time.Second

// maxPageBytes caps the size of a fetched page.
const maxPageBytes = 10 << 20

// Ensure Fetcher implements transpress.Fetcher at compile time.
var _ transpress.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves article pages with plain HTTP requests.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the HTML content from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", transpress.Errorf(transpress.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", TransportError(ctx, err, url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", StatusError(resp.StatusCode, transpress.EINVALID, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", TransportError(ctx, err, url)
	}

	return string(body), nil
}
