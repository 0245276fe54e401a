// Package wordpress implements the WordPress REST API: a paginated article
// source and a post/media publisher authenticated with application
// passwords.
package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/transpress"
)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 20 * time.Second

// UserAgent is sent with every request.
const UserAgent = "Mozilla/5.0 (compatible; transpress/1.0)"

// wpTime is the timestamp layout of WordPress date fields (no zone).
const wpTime = "2006-01-02T15:04:05"

// apiError is the error body WordPress returns with non-2xx statuses.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// readAPIError decodes a WordPress error body. A body that is not JSON
// yields a zero apiError.
func readAPIError(r io.Reader) apiError {
	var e apiError
	data, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	_ = json.Unmarshal(data, &e)
	return e
}

// statusError maps an unexpected HTTP status. 429 and 5xx are transient,
// 401 and 403 are EAUTH and every other status uses fallback.
func statusError(status int, fallback string, e apiError, target string) error {
	msg := fmt.Sprintf("HTTP %d for %s", status, target)
	if e.Code != "" {
		msg += fmt.Sprintf(" (%s: %s)", e.Code, e.Message)
	}
	switch {
	case status == http.StatusTooManyRequests || status >= 500:
		return transpress.Errorf(transpress.EUNAVAILABLE, "%s", msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return transpress.Errorf(transpress.EAUTH, "%s", msg)
	default:
		return transpress.Errorf(fallback, "%s", msg)
	}
}

// transportError wraps a failed round trip as transient unless the
// context ended.
func transportError(ctx context.Context, err error, target string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return transpress.WrapError(transpress.EUNAVAILABLE, err, fmt.Sprintf("request %s: %v", target, err))
}

// apiBase returns the REST root for a site URL.
func apiBase(site string) string {
	return strings.TrimRight(site, "/") + "/wp-json/wp/v2"
}

// rendered is a WordPress field with a rendered HTML representation.
type rendered struct {
	Rendered string `json:"rendered"`
}
