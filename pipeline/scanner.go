package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/fwojciec/transpress"
	"github.com/fwojciec/transpress/bloom"
)

// Scanner defaults.
const (
	DefaultMaxPages = 60

	// scannerExpectedKeys sizes the in-run Bloom filter.
	scannerExpectedKeys = 20000
	// scannerFalsePositiveRate is the acceptable false positive rate for
	// in-run listing deduplication.
	scannerFalsePositiveRate = 0.001
)

// Scanner pages through an ArticleSource newest-first and yields articles
// that the tracker has not seen. Articles listed twice in one run (pages
// shift while new posts appear) are yielded once.
//
// Scanner is not safe for concurrent use.
type Scanner struct {
	Source  transpress.ArticleSource
	Tracker *transpress.Tracker

	// MaxPages bounds the number of listing pages requested.
	MaxPages int

	// Force yields articles even when the tracker has seen them.
	Force bool

	// RetryDelays are the backoff delays for transient listing errors.
	// Defaults to DefaultRetryDelays.
	RetryDelays []time.Duration

	Logger *slog.Logger

	page    int
	done    bool
	buf     []*transpress.SourceArticle
	listed  *bloom.Filter
	scanned int
	skipped int
}

// NewScanner returns a Scanner with default limits.
func NewScanner(source transpress.ArticleSource, tracker *transpress.Tracker) *Scanner {
	return &Scanner{
		Source:   source,
		Tracker:  tracker,
		MaxPages: DefaultMaxPages,
	}
}

// Scanned returns the number of articles listed so far, including
// duplicates.
func (s *Scanner) Scanned() int { return s.scanned }

// Skipped returns the number of listed articles dropped because the
// tracker has seen them.
func (s *Scanner) Skipped() int { return s.skipped }

// Next returns the next unseen article, or nil when the listing is
// exhausted. Each page's candidates are yielded newest first.
// Listing failures are returned with code ESOURCE.
func (s *Scanner) Next(ctx context.Context) (*transpress.SourceArticle, error) {
	for len(s.buf) == 0 {
		if s.done {
			return nil, nil
		}
		if err := s.fetchPage(ctx); err != nil {
			return nil, err
		}
	}
	a := s.buf[0]
	s.buf = s.buf[1:]
	return a, nil
}

// FetchCandidates scans every remaining page and returns all unseen
// articles sorted by publication time, newest first.
func (s *Scanner) FetchCandidates(ctx context.Context) ([]*transpress.SourceArticle, error) {
	var out []*transpress.SourceArticle
	for {
		a, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		if a == nil {
			break
		}
		out = append(out, a)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *Scanner) fetchPage(ctx context.Context) error {
	maxPages := s.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if s.page >= maxPages {
		s.done = true
		return nil
	}
	if s.listed == nil {
		s.listed = bloom.NewFilter(scannerExpectedKeys, scannerFalsePositiveRate)
	}
	s.page++
	page := s.page

	delays := s.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	var result *transpress.ArticlePage
	err := Retry(ctx, delays, isTransient,
		func(attempt int, err error) {
			s.logger().Warn("retrying source page", "page", page, "attempt", attempt, "err", err)
		},
		func(ctx context.Context) error {
			var err error
			result, err = s.Source.ListArticles(ctx, page)
			return err
		})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return transpress.WrapError(transpress.ESOURCE, err, fmt.Sprintf("list source page %d: %v", page, err))
	}

	if result == nil || len(result.Articles) == 0 || !result.HasMore {
		s.done = true
	}
	if result == nil {
		return nil
	}

	var fresh []*transpress.SourceArticle
	for _, a := range result.Articles {
		if a == nil {
			continue
		}
		s.scanned++
		key := a.Key()
		if key == "" || s.listed.Listed(key) {
			continue
		}
		if !s.Force && s.Tracker != nil && s.Tracker.Seen(key) {
			s.skipped++
			continue
		}
		fresh = append(fresh, a)
	}
	sortNewestFirst(fresh)
	s.buf = append(s.buf, fresh...)
	return nil
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func isTransient(err error) bool {
	return transpress.ErrorCode(err) == transpress.EUNAVAILABLE
}

func sortNewestFirst(articles []*transpress.SourceArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
