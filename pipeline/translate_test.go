package pipeline_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/transpress"
	"github.com/fwojciec/transpress/mock"
	"github.com/fwojciec/transpress/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkedTranslator_Translate(t *testing.T) {
	t.Parallel()

	t.Run("translates chunks and reassembles them", func(t *testing.T) {
		t.Parallel()

		var chunks []string
		backend := &mock.Translator{
			TranslateFn: func(_ context.Context, text string) (string, error) {
				chunks = append(chunks, text)
				return strings.ToUpper(text), nil
			},
		}
		tr := pipeline.NewChunkedTranslator(backend, 10, 0)

		got, err := tr.Translate(context.Background(), "first one\n\nsecond\n\nthird")

		require.NoError(t, err)
		assert.Equal(t, "FIRST ONE\n\nSECOND\n\nTHIRD", got)
		assert.Greater(t, len(chunks), 1)
	})

	t.Run("keeps paragraph structure with identity backend", func(t *testing.T) {
		t.Parallel()

		backend := &mock.Translator{
			TranslateFn: func(_ context.Context, text string) (string, error) {
				return text, nil
			},
		}
		tr := pipeline.NewChunkedTranslator(backend, 0, 0)

		got, err := tr.Translate(context.Background(), "A\n\nB\n\nC")

		require.NoError(t, err)
		assert.Equal(t, "A\n\nB\n\nC", got)
	})

	t.Run("returns empty for empty text", func(t *testing.T) {
		t.Parallel()

		backend := &mock.Translator{
			TranslateFn: func(context.Context, string) (string, error) {
				t.Fatal("backend must not be called")
				return "", nil
			},
		}
		tr := pipeline.NewChunkedTranslator(backend, 0, 0)

		got, err := tr.Translate(context.Background(), "")

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("retries failing chunk", func(t *testing.T) {
		t.Parallel()

		var calls int
		backend := &mock.Translator{
			TranslateFn: func(_ context.Context, text string) (string, error) {
				calls++
				if calls == 1 {
					return "", transpress.Errorf(transpress.EUNAVAILABLE, "HTTP 429")
				}
				return text, nil
			},
		}
		tr := pipeline.NewChunkedTranslator(backend, 0, 0)
		tr.RetryDelays = []time.Duration{0, 0, 0}

		got, err := tr.Translate(context.Background(), "hello")

		require.NoError(t, err)
		assert.Equal(t, "hello", got)
		assert.Equal(t, 2, calls)
	})

	t.Run("fails with ETRANSLATE after retries", func(t *testing.T) {
		t.Parallel()

		var calls int
		backend := &mock.Translator{
			TranslateFn: func(context.Context, string) (string, error) {
				calls++
				return "", transpress.Errorf(transpress.EUNAVAILABLE, "HTTP 503")
			},
		}
		tr := pipeline.NewChunkedTranslator(backend, 0, 0)
		tr.RetryDelays = []time.Duration{0, 0, 0}

		_, err := tr.Translate(context.Background(), "hello")

		require.Error(t, err)
		assert.Equal(t, transpress.ETRANSLATE, transpress.ErrorCode(err))
		assert.Contains(t, err.Error(), "translate chunk 1/1")
		assert.Equal(t, 4, calls)
	})

	t.Run("returns context error when cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		backend := &mock.Translator{
			TranslateFn: func(context.Context, string) (string, error) {
				cancel()
				return "", transpress.Errorf(transpress.EUNAVAILABLE, "timeout")
			},
		}
		tr := pipeline.NewChunkedTranslator(backend, 0, 0)

		_, err := tr.Translate(ctx, "hello")

		assert.ErrorIs(t, err, context.Canceled)
	})
}
