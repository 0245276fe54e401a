package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/transpress"
)

// Ensure LoggingSource implements transpress.ArticleSource.
var _ transpress.ArticleSource = (*LoggingSource)(nil)

// LoggingSource wraps an ArticleSource with logging.
type LoggingSource struct {
	next   transpress.ArticleSource
	logger *slog.Logger
}

// NewLoggingSource creates a new LoggingSource.
func NewLoggingSource(next transpress.ArticleSource, logger *slog.Logger) *LoggingSource {
	return &LoggingSource{next: next, logger: logger}
}

// ListArticles delegates to the wrapped source and logs the page.
func (s *LoggingSource) ListArticles(ctx context.Context, page int) (p *transpress.ArticlePage, err error) {
	defer func(begin time.Time) {
		var count int
		var more bool
		if p != nil {
			count = len(p.Articles)
			more = p.HasMore
		}
		s.logger.Info("source page",
			"page", page,
			"count", count,
			"more", more,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ListArticles(ctx, page)
}
