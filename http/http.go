// Package http provides HTTP clients: a page fetcher for body fallback, an
// SSRF-guarded image downloader and a Google Cloud Translation backend.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fwojciec/transpress"
)

// UserAgent is sent with every request.
const UserAgent = "Mozilla/5.0 (compatible; transpress/1.0)"

// StatusError maps an unexpected HTTP status to a coded error. 429 and 5xx
// are transient (EUNAVAILABLE), 401 and 403 are EAUTH, 404 is ENOTFOUND and
// other statuses are reported with fallback.
func StatusError(status int, fallback, target string) error {
	switch {
	case status == http.StatusTooManyRequests || status >= 500:
		return transpress.Errorf(transpress.EUNAVAILABLE, "HTTP %d for %s", status, target)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return transpress.Errorf(transpress.EAUTH, "HTTP %d for %s", status, target)
	case status == http.StatusNotFound:
		return transpress.Errorf(transpress.ENOTFOUND, "HTTP %d for %s", status, target)
	default:
		return transpress.Errorf(fallback, "HTTP %d for %s", status, target)
	}
}

// TransportError wraps a failed round trip. Cancellation is returned as is;
// everything else is transient.
func TransportError(ctx context.Context, err error, target string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return transpress.WrapError(transpress.EUNAVAILABLE, err, fmt.Sprintf("request %s: %v", target, err))
}
