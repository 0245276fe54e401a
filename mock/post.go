package mock

import (
	"context"

	"github.com/fwojciec/transpress"
)

var (
	_ transpress.PostService  = (*PostService)(nil)
	_ transpress.MediaService = (*MediaService)(nil)
	_ transpress.Downloader   = (*Downloader)(nil)
)

// PostService is a mock implementation of transpress.PostService.
type PostService struct {
	CreatePostFn func(ctx context.Context, p *transpress.Post) (*transpress.PublishedPost, error)
}

func (s *PostService) CreatePost(ctx context.Context, p *transpress.Post) (*transpress.PublishedPost, error) {
	return s.CreatePostFn(ctx, p)
}

// MediaService is a mock implementation of transpress.MediaService.
type MediaService struct {
	UploadMediaFn func(ctx context.Context, m *transpress.Media) (*transpress.MediaItem, error)
}

func (s *MediaService) UploadMedia(ctx context.Context, m *transpress.Media) (*transpress.MediaItem, error) {
	return s.UploadMediaFn(ctx, m)
}

// Downloader is a mock implementation of transpress.Downloader.
type Downloader struct {
	DownloadFn func(ctx context.Context, url string) (*transpress.Media, error)
}

func (d *Downloader) Download(ctx context.Context, url string) (*transpress.Media, error) {
	return d.DownloadFn(ctx, url)
}
