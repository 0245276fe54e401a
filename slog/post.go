package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/transpress"
)

// Ensure the decorators implement their interfaces.
var (
	_ transpress.PostService  = (*LoggingPostService)(nil)
	_ transpress.MediaService = (*LoggingMediaService)(nil)
)

// LoggingPostService wraps a PostService with logging.
type LoggingPostService struct {
	next   transpress.PostService
	logger *slog.Logger
}

// NewLoggingPostService creates a new LoggingPostService.
func NewLoggingPostService(next transpress.PostService, logger *slog.Logger) *LoggingPostService {
	return &LoggingPostService{next: next, logger: logger}
}

// CreatePost delegates to the wrapped service and logs the result.
func (s *LoggingPostService) CreatePost(ctx context.Context, p *transpress.Post) (published *transpress.PublishedPost, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"slug", p.Slug,
			"date", p.Date,
		}
		if published != nil {
			attrs = append(attrs, "id", published.ID, "link", published.Link)
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		s.logger.Info("create post", attrs...)
	}(time.Now())
	return s.next.CreatePost(ctx, p)
}

// LoggingMediaService wraps a MediaService with debug logging.
type LoggingMediaService struct {
	next   transpress.MediaService
	logger *slog.Logger
}

// NewLoggingMediaService creates a new LoggingMediaService.
func NewLoggingMediaService(next transpress.MediaService, logger *slog.Logger) *LoggingMediaService {
	return &LoggingMediaService{next: next, logger: logger}
}

// UploadMedia delegates to the wrapped service and logs the upload.
func (s *LoggingMediaService) UploadMedia(ctx context.Context, m *transpress.Media) (item *transpress.MediaItem, err error) {
	defer func(begin time.Time) {
		var id int64
		if item != nil {
			id = item.ID
		}
		s.logger.Debug("upload media",
			"source", m.SourceURL,
			"filename", m.Filename,
			"bytes", len(m.Data),
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.UploadMedia(ctx, m)
}
