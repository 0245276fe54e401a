package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fwojciec/transpress"
	"golang.org/x/sync/errgroup"
)

// DefaultImageConcurrency bounds parallel image relocations per article.
const DefaultImageConcurrency = 3

// ImageRelocator copies an article's images to the destination CMS and
// rewrites the HTML to point at the copies.
type ImageRelocator struct {
	Downloader transpress.Downloader
	Media      transpress.MediaService
	Rewriter   transpress.ImageRewriter

	// Limiter paces downloads per host. Nil means unpaced.
	Limiter *HostLimiter

	Concurrency int
	Metrics     transpress.Metrics
	Logger      *slog.Logger
}

// RelocateImages relocates every img src in html plus imageURLs,
// de-duplicated in order. One Relocation is returned per image in that
// order; images that failed keep their original URL in the HTML and have
// an empty New. The error is non-nil only when html cannot be parsed or
// ctx ends.
func (r *ImageRelocator) RelocateImages(ctx context.Context, html string, imageURLs []string) (string, []transpress.Relocation, error) {
	srcs, err := r.Rewriter.ImageSources(html)
	if err != nil {
		return html, nil, err
	}
	urls := dedupeURLs(append(srcs, imageURLs...))
	if len(urls) == 0 {
		return html, nil, nil
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultImageConcurrency
	}

	results := make([]transpress.Relocation, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = r.relocate(gctx, u)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return html, nil, err
	}

	rewrites := make(map[string]string)
	for _, rel := range results {
		if rel.New != "" {
			rewrites[rel.Original] = rel.New
		}
	}
	if len(rewrites) == 0 {
		return html, results, nil
	}
	out, err := r.Rewriter.RewriteImageSources(html, rewrites)
	if err != nil {
		return html, results, err
	}
	return out, results, nil
}

// relocate downloads and uploads one image. Failures are logged and
// counted, never returned.
func (r *ImageRelocator) relocate(ctx context.Context, src string) transpress.Relocation {
	rel := transpress.Relocation{Original: src}

	item, err := r.copyImage(ctx, src)
	if err != nil {
		r.logger().Warn("image relocation failed, keeping original",
			"url", src,
			"err", transpress.WrapError(transpress.EIMAGE, err, ""),
		)
		r.metrics().ImageProcessed(transpress.ImageFallback)
		return rel
	}

	rel.New = item.SourceURL
	rel.MediaID = item.ID
	r.logger().Debug("image relocated", "url", src, "new", item.SourceURL)
	r.metrics().ImageProcessed(transpress.ImageRelocated)
	return rel
}

func (r *ImageRelocator) copyImage(ctx context.Context, src string) (*transpress.MediaItem, error) {
	if err := r.Limiter.WaitURL(ctx, src); err != nil {
		return nil, err
	}
	media, err := r.Downloader.Download(ctx, src)
	if err != nil {
		return nil, err
	}
	r.logger().Debug("image downloaded", "url", src, "size", FormatBytes(len(media.Data)))
	item, err := r.Media.UploadMedia(ctx, media)
	if err != nil {
		return nil, err
	}
	if item.SourceURL == "" {
		return nil, transpress.Errorf(transpress.EIMAGE, "upload of %s returned no URL", src)
	}
	return item, nil
}

func (r *ImageRelocator) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (r *ImageRelocator) metrics() transpress.Metrics {
	if r.Metrics != nil {
		return r.Metrics
	}
	return transpress.NopMetrics{}
}

// dedupeURLs drops blanks, data URIs and repeats, keeping first occurrence
// order.
func dedupeURLs(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] || strings.HasPrefix(u, "data:") {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
