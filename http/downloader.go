package http

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/doyensec/safeurl"
	"github.com/fwojciec/transpress"
)

// DefaultMaxImageBytes caps the size of a downloaded image.
const DefaultMaxImageBytes = 20 << 20

// Ensure Downloader implements transpress.Downloader at compile time.
var _ transpress.Downloader = (*Downloader)(nil)

// Downloader fetches remote images through a client that refuses private,
// loopback and link-local addresses, including after DNS resolution.
type Downloader struct {
	Client   *http.Client
	MaxBytes int64
}

// NewSafeClient returns an SSRF-guarded client limited to http(s) on the
// standard ports.
func NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()
	return safeurl.Client(config).Client
}

// NewDownloader creates a Downloader using NewSafeClient.
func NewDownloader(timeout time.Duration, maxBytes int64) *Downloader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &Downloader{
		Client:   NewSafeClient(timeout),
		MaxBytes: maxBytes,
	}
}

// Download fetches rawURL. Responses that are not images or exceed
// MaxBytes fail with EIMAGE.
func (d *Downloader) Download(ctx context.Context, rawURL string) (*transpress.Media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, transpress.Errorf(transpress.EIMAGE, "invalid image URL %q: %v", rawURL, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, TransportError(ctx, err, rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, StatusError(resp.StatusCode, transpress.EIMAGE, rawURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.MaxBytes+1))
	if err != nil {
		return nil, TransportError(ctx, err, rawURL)
	}
	if int64(len(data)) > d.MaxBytes {
		return nil, transpress.Errorf(transpress.EIMAGE, "image %s exceeds %d bytes", rawURL, d.MaxBytes)
	}

	contentType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, transpress.Errorf(transpress.EIMAGE, "%s is not an image (%s)", rawURL, contentType)
	}

	return &transpress.Media{
		SourceURL:   rawURL,
		Filename:    Filename(rawURL, contentType),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// Filename derives an upload filename from the last path segment of
// rawURL. Long or missing names are replaced with a stable hash of the URL.
func Filename(rawURL, contentType string) string {
	var name string
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
	}
	if name == "." || name == "/" || len(name) > 100 || strings.ContainsAny(name, `"\`) {
		name = ""
	}
	if name == "" {
		name = fmt.Sprintf("image-%016x", xxhash.Sum64String(rawURL))
	}
	if path.Ext(name) == "" {
		ext := ".jpg"
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		}
		name += ext
	}
	return name
}
