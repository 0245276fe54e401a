package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/transpress"
	"golang.org/x/time/rate"
)

// DefaultChunkLimit is the default chunk size in characters.
const DefaultChunkLimit = 4000

// Ensure ChunkedTranslator implements transpress.Translator at compile time.
var _ transpress.Translator = (*ChunkedTranslator)(nil)

// ChunkedTranslator splits text into chunks that fit the backend limit,
// translates them in order with pacing and retries, and reassembles the
// result with the original separators.
type ChunkedTranslator struct {
	Backend transpress.Translator

	// Limit is the maximum chunk size in characters.
	Limit int

	// Limiter paces backend calls. Nil means unpaced.
	Limiter *rate.Limiter

	// RetryDelays are the backoff delays for failed chunks.
	// Defaults to DefaultRetryDelays.
	RetryDelays []time.Duration

	Logger *slog.Logger
}

// NewChunkedTranslator returns a ChunkedTranslator calling backend at most
// rps times per second. A non-positive rps disables pacing.
func NewChunkedTranslator(backend transpress.Translator, limit int, rps float64) *ChunkedTranslator {
	if limit <= 0 {
		limit = DefaultChunkLimit
	}
	t := &ChunkedTranslator{
		Backend: backend,
		Limit:   limit,
	}
	if rps > 0 {
		t.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return t
}

// Translate translates text chunk by chunk. Any chunk failing after all
// retries fails the whole text with ETRANSLATE.
func (t *ChunkedTranslator) Translate(ctx context.Context, text string) (string, error) {
	unit := transpress.ChunkText(text, t.Limit)
	if len(unit) == 0 {
		return "", nil
	}

	delays := t.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	out := make([]string, len(unit))
	for i, chunk := range unit {
		if strings.TrimSpace(chunk.Text) == "" {
			out[i] = chunk.Text
			continue
		}

		err := Retry(ctx, delays, nil,
			func(attempt int, err error) {
				t.logger().Warn("retrying translation", "chunk", i+1, "chunks", len(unit), "attempt", attempt, "err", err)
			},
			func(ctx context.Context) error {
				if t.Limiter != nil {
					if err := t.Limiter.Wait(ctx); err != nil {
						return err
					}
				}
				translated, err := t.Backend.Translate(ctx, chunk.Text)
				if err != nil {
					return err
				}
				out[i] = translated
				return nil
			})
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", transpress.WrapError(transpress.ETRANSLATE, err,
				fmt.Sprintf("translate chunk %d/%d: %v", i+1, len(unit), err))
		}
	}

	return unit.Join(out), nil
}

func (t *ChunkedTranslator) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.New(slog.DiscardHandler)
}
