package slog

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/transpress"
)

// Ensure LoggingTranslator implements transpress.Translator.
var _ transpress.Translator = (*LoggingTranslator)(nil)

// LoggingTranslator wraps a Translator with debug logging. Text is never
// logged, only its length.
type LoggingTranslator struct {
	next   transpress.Translator
	logger *slog.Logger
}

// NewLoggingTranslator creates a new LoggingTranslator.
func NewLoggingTranslator(next transpress.Translator, logger *slog.Logger) *LoggingTranslator {
	return &LoggingTranslator{next: next, logger: logger}
}

// Translate delegates to the wrapped translator and logs the call.
func (t *LoggingTranslator) Translate(ctx context.Context, text string) (out string, err error) {
	defer func(begin time.Time) {
		t.logger.Debug("translate",
			"chars", utf8.RuneCountInString(text),
			"out_chars", utf8.RuneCountInString(out),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return t.next.Translate(ctx, text)
}
