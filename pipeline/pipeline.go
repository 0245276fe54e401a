// Package pipeline orchestrates republication: it scans the source for
// unseen articles, transforms each one (boilerplate removal, translation
// with heading preservation, link normalization, image relocation, slug
// generation) and publishes it, recording every success in the dedup
// tracker.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/transpress"
)

// Persist modes.
const (
	PersistEach = "each"
	PersistEnd  = "end"
)

// Report summarizes a run.
type Report struct {
	Scanned           int
	SkippedDuplicate  int
	TranslationFailed int
	PublishFailed     int
	Failed            int
	Published         int

	// Previewed counts articles rendered in dry-run mode.
	Previewed int

	ImagesRelocated int
	ImageFallbacks  int

	// CapRemaining is the daily allowance left when the run started.
	CapRemaining int
}

// Attempted returns the number of articles that entered processing.
func (r *Report) Attempted() int {
	return r.TranslationFailed + r.PublishFailed + r.Failed + r.Published + r.Previewed
}

// PreviewFunc receives the post that would be published in dry-run mode.
type PreviewFunc func(ctx context.Context, a *transpress.SourceArticle, p *transpress.Post) error

// Pipeline processes source articles one at a time, newest first.
type Pipeline struct {
	Scanner *Scanner
	Tracker *transpress.Tracker

	// Fetcher and Extractors recover the body of articles listed without
	// one. Extractors are tried in order. Both may be nil.
	Fetcher    transpress.Fetcher
	Extractors []transpress.Extractor

	// MainImage finds a page's lead image for fetched bodies. May be nil.
	MainImage func(html, pageURL string) string

	Sanitizer  transpress.Sanitizer
	Headings   transpress.HeadingPreserver
	Translator transpress.Translator
	Scrubber   transpress.Scrubber
	Links      transpress.LinkNormalizer
	Aliases    *transpress.DomainAliases
	Rewriter   transpress.ImageRewriter

	// Images relocates images to the destination. Nil leaves image URLs
	// untouched.
	Images *ImageRelocator

	Slugger transpress.Slugger
	Posts   transpress.PostService
	Metrics transpress.Metrics
	Logger  *slog.Logger

	// PageLimiter paces body fallback fetches per host. May be nil.
	PageLimiter *HostLimiter

	// DailyCap is the number of posts allowed per destination day.
	DailyCap int

	// MaxAttempts bounds the articles processed in one run, failures
	// included. Defaults to 3 × DailyCap.
	MaxAttempts int

	// Location is the destination zone. It defines the day boundary of
	// DailyCap. Defaults to UTC.
	Location *time.Location

	PostStatus string
	Labels     transpress.BodyLabels

	// Persist is PersistEach (default) or PersistEnd.
	Persist string

	// DryRun runs every stage except image upload, publishing and tracker
	// updates, handing each post to Preview instead.
	DryRun  bool
	Preview PreviewFunc

	// RetryDelays are the backoff delays for body fallback fetches.
	RetryDelays []time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Run processes unseen articles until the remaining daily cap is
// published, MaxAttempts articles were tried, or the source is exhausted.
// A failing article is logged and skipped; only ESOURCE and EAUTH errors
// and context cancellation abort the run. The report is returned in every
// case.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	begin := p.now()
	report := &Report{}
	defer func() {
		report.Scanned = p.Scanner.Scanned()
		report.SkippedDuplicate = p.Scanner.Skipped()
		p.metrics().RunFinished(time.Since(begin))
	}()

	if !p.Tracker.Loaded() {
		if err := p.Tracker.Load(ctx); err != nil {
			return report, fmt.Errorf("load dedup records: %w", err)
		}
	}

	loc := p.location()
	recorded := p.Tracker.CountRecordedSince(transpress.StartOfDay(begin, loc))
	report.CapRemaining = max(p.DailyCap-recorded, 0)
	p.logger().Info("run started",
		"cap", p.DailyCap,
		"recorded_today", recorded,
		"remaining", report.CapRemaining,
		"known", p.Tracker.Len(),
		"dry_run", p.DryRun,
	)
	if report.CapRemaining == 0 {
		p.logger().Info("daily cap reached, nothing to do")
		return report, nil
	}

	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3 * p.DailyCap
	}

	runErr := p.loop(ctx, report, maxAttempts)

	if err := p.Tracker.Persist(ctx); err != nil {
		p.logger().Error("persist dedup records", "pending", p.Tracker.Pending(), "err", err)
		if runErr == nil {
			runErr = fmt.Errorf("persist dedup records: %w", err)
		}
	}

	p.logger().Info("run finished",
		"scanned", p.Scanner.Scanned(),
		"skipped_duplicate", p.Scanner.Skipped(),
		"published", report.Published,
		"previewed", report.Previewed,
		"translation_failed", report.TranslationFailed,
		"publish_failed", report.PublishFailed,
		"failed", report.Failed,
		"duration", time.Since(begin),
	)
	return report, runErr
}

func (p *Pipeline) loop(ctx context.Context, report *Report, maxAttempts int) error {
	for report.Published+report.Previewed < report.CapRemaining && report.Attempted() < maxAttempts {
		a, err := p.Scanner.Next(ctx)
		if err != nil {
			return err
		}
		if a == nil {
			return nil
		}

		start := p.now()
		outcome, err := p.processArticle(ctx, a, report)
		elapsed := time.Since(start)
		p.metrics().ArticleProcessed(outcome, elapsed)

		log := p.logger().With("key", a.Key(), "title", a.Title, "published_at", a.PublishedAt)
		switch {
		case err == nil:
			log.Info("article done", "outcome", outcome, "duration", elapsed)
		case ctx.Err() != nil:
			return ctx.Err()
		case outcome == transpress.OutcomePublished:
			log.Error("article published but not recorded", "outcome", outcome, "duration", elapsed, "err", err)
		case transpress.IsFatal(err):
			log.Error("article aborted run", "outcome", outcome, "err", err)
			return err
		default:
			log.Warn("article skipped", "outcome", outcome, "err", err)
		}
	}
	return nil
}

// processArticle runs every stage for a and updates report. It returns the
// article's outcome and, for non-success outcomes, the cause. A published
// article whose dedup record could not be saved is returned with
// OutcomePublished and the recording error.
func (p *Pipeline) processArticle(ctx context.Context, a *transpress.SourceArticle, report *Report) (string, error) {
	post, err := p.buildPost(ctx, a, report)
	if err != nil {
		switch transpress.ErrorCode(err) {
		case transpress.ETRANSLATE:
			report.TranslationFailed++
			return transpress.OutcomeTranslationFailed, err
		default:
			report.Failed++
			return transpress.OutcomeFailed, err
		}
	}

	if p.DryRun {
		if p.Preview != nil {
			if err := p.Preview(ctx, a, post); err != nil {
				report.Failed++
				return transpress.OutcomeFailed, err
			}
		}
		report.Previewed++
		return transpress.OutcomePublished, nil
	}

	published, err := p.Posts.CreatePost(ctx, post)
	if err != nil {
		report.PublishFailed++
		if ctx.Err() != nil || transpress.ErrorCode(err) == transpress.EAUTH {
			return transpress.OutcomePublishFailed, err
		}
		// Create is never retried: a timeout may still have created the post.
		return transpress.OutcomePublishFailed, transpress.WrapError(transpress.EPUBLISH, err, fmt.Sprintf("create post: %v", err))
	}
	report.Published++

	slug := published.Slug
	if slug == "" {
		slug = post.Slug
	}
	record := &transpress.DedupRecord{
		Key:               a.Key(),
		SourceID:          a.ID,
		PostID:            published.ID,
		PostLink:          published.Link,
		Slug:              slug,
		SourcePublishedAt: a.PublishedAt,
		RecordedAt:        p.now(),
		ContentHash:       ComputeHash(a.Title + "\n" + a.BodyHTML),
	}
	if err := p.Tracker.Mark(record); err != nil {
		return transpress.OutcomePublished, fmt.Errorf("mark dedup record: %w", err)
	}
	if p.Persist != PersistEnd {
		// Records stay pending and are retried at the next persist.
		if err := p.Tracker.Persist(ctx); err != nil {
			return transpress.OutcomePublished, fmt.Errorf("persist dedup records (%d pending): %w", p.Tracker.Pending(), err)
		}
	}
	return transpress.OutcomePublished, nil
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pipeline) location() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return time.UTC
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (p *Pipeline) metrics() transpress.Metrics {
	if p.Metrics != nil {
		return p.Metrics
	}
	return transpress.NopMetrics{}
}

// demote rewraps err with code so a stage never leaks a fatal code from
// a collaborator: a 403 while fetching a page is not a publish credential
// failure.
func demote(code string, err error, format string, args ...any) error {
	if transpress.ErrorCode(err) == code {
		return err
	}
	return transpress.WrapError(code, err, fmt.Sprintf(format, args...)+": "+err.Error())
}
