package pipeline

import (
	"context"
	"time"
)

// RetryFunc is called before each retry with the attempt about to be made
// (2 for the first retry) and the error that caused it.
type RetryFunc func(attempt int, err error)

// DefaultRetryDelays returns the backoff delays for retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Retry calls op until it succeeds, returns an error retryable rejects, or
// len(delays) retries are exhausted. A nil retryable retries every error.
// The last error is returned; context cancellation is returned as is.
func Retry(ctx context.Context, delays []time.Duration, retryable func(error) bool, onRetry RetryFunc, op func(ctx context.Context) error) error {
	maxAttempts := len(delays) + 1 // 1 initial + N retries

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if retryable != nil && !retryable(err) {
			break
		}
		// Don't retry after the last attempt
		if attempt >= maxAttempts-1 {
			break
		}

		if onRetry != nil {
			onRetry(attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return lastErr
}
