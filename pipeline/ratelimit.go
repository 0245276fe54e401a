package pipeline

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter paces requests per host using token buckets, so image
// downloads and page fetches spread over several hosts proceed in parallel
// while each host sees at most rps requests per second.
// It is safe for concurrent use.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewHostLimiter creates a HostLimiter. A non-positive rps disables pacing.
func NewHostLimiter(rps float64) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until a request to host is allowed.
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	if h == nil || h.rps <= 0 {
		return ctx.Err()
	}
	host = strings.ToLower(host)

	h.mu.Lock()
	limiter, ok := h.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(h.rps), 1)
		h.limiters[host] = limiter
	}
	h.mu.Unlock()

	return limiter.Wait(ctx)
}

// WaitURL is Wait for the host of rawURL. Unparseable URLs share the
// empty host.
func (h *HostLimiter) WaitURL(ctx context.Context, rawURL string) error {
	var host string
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Hostname()
	}
	return h.Wait(ctx, host)
}
