package main_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fwojciec/transpress"
	main "github.com/fwojciec/transpress/cmd/transpress"
	"github.com/fwojciec/transpress/mock"
	"github.com/fwojciec/transpress/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidatesCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists unseen articles newest first", func(t *testing.T) {
		t.Parallel()

		older := sourceArticle("older", time.Date(2025, 1, 9, 9, 0, 0, 0, kst))
		newer := sourceArticle("newer", time.Date(2025, 1, 10, 18, 30, 0, 0, kst))
		newer.Title = "DaVinci Resolve 20が正式リリース、新機能を多数搭載した最新バージョンの詳細を徹底解説する"
		seen := sourceArticle("seen", time.Date(2025, 1, 10, 12, 0, 0, 0, kst))

		store := memoryStore()
		require.NoError(t, store.SaveRecords(context.Background(), []*transpress.DedupRecord{{Key: seen.Key()}}))
		tracker := transpress.NewTracker(store)
		require.NoError(t, tracker.Load(context.Background()))
		source := &mock.ArticleSource{
			ListArticlesFn: func(context.Context, int) (*transpress.ArticlePage, error) {
				return &transpress.ArticlePage{Articles: []*transpress.SourceArticle{older, seen, newer}}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   &bytes.Buffer{},
			Scanner:  pipeline.NewScanner(source, tracker),
			Location: kst,
		}

		err := (&main.CandidatesCmd{Limit: 20}).Run(deps)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "2 unpublished articles (3 listed, 1 already published)")
		assert.Contains(t, out, "2025-01-10 18:30")
		assert.Contains(t, out, "…")
		assert.NotContains(t, out, seen.Key())
		assert.Less(t, bytes.Index(stdout.Bytes(), []byte(newer.Key())), bytes.Index(stdout.Bytes(), []byte(older.Key())))
	})

	t.Run("reports source failure", func(t *testing.T) {
		t.Parallel()

		source := &mock.ArticleSource{
			ListArticlesFn: func(context.Context, int) (*transpress.ArticlePage, error) {
				return nil, transpress.Errorf(transpress.ESOURCE, "malformed listing")
			},
		}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   &bytes.Buffer{},
			Stderr:   stderr,
			Scanner:  pipeline.NewScanner(source, transpress.NewTracker(memoryStore())),
			Location: kst,
		}

		err := (&main.CandidatesCmd{}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
	})
}
