package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/transpress/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiter(t *testing.T) {
	t.Parallel()

	t.Run("allows immediate request when under limit", func(t *testing.T) {
		t.Parallel()

		limiter := pipeline.NewHostLimiter(10)

		start := time.Now()
		err := limiter.Wait(context.Background(), "jp.pronews.com")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("rate limits requests to same host", func(t *testing.T) {
		t.Parallel()

		limiter := pipeline.NewHostLimiter(10) // 100ms between requests

		require.NoError(t, limiter.WaitURL(context.Background(), "https://jp.pronews.com/a.jpg"))

		start := time.Now()
		err := limiter.WaitURL(context.Background(), "https://JP.pronews.com/b.jpg")

		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("different hosts have independent limits", func(t *testing.T) {
		t.Parallel()

		limiter := pipeline.NewHostLimiter(10)

		require.NoError(t, limiter.Wait(context.Background(), "a.test"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "b.test")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("zero rate disables pacing", func(t *testing.T) {
		t.Parallel()

		limiter := pipeline.NewHostLimiter(0)

		start := time.Now()
		for range 5 {
			require.NoError(t, limiter.Wait(context.Background(), "a.test"))
		}
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("returns error when context canceled", func(t *testing.T) {
		t.Parallel()

		limiter := pipeline.NewHostLimiter(1)
		require.NoError(t, limiter.Wait(context.Background(), "a.test"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.Error(t, limiter.Wait(ctx, "a.test"))
	})
}
