package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/transpress"
	main "github.com/fwojciec/transpress/cmd/transpress"
	"github.com/fwojciec/transpress/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMain returns a Main whose environment holds only env, with ENV_PATH
// pointing at a missing file so no .env is loaded.
func testMain(t *testing.T, env map[string]string) *main.Main {
	t.Helper()
	m := main.NewMain()
	full := map[string]string{main.EnvPath: filepath.Join(t.TempDir(), "missing.env")}
	for k, v := range env {
		full[k] = v
	}
	m.Getenv = func(k string) string { return full[k] }
	return m
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	m := testMain(t, nil)
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--help"}, stdout, stderr)

	require.NoError(t, err)
	helpOutput := stdout.String()
	for _, cmd := range []string{"run", "candidates", "history", "import", "slug"} {
		assert.Contains(t, helpOutput, cmd)
	}
	assert.Contains(t, helpOutput, "Usage:")
	assert.Contains(t, helpOutput, "Flags:")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	m := testMain(t, nil)

	err := m.Run(context.Background(), []string{}, &bytes.Buffer{}, &bytes.Buffer{})

	assert.Error(t, err)
}

func TestMain_Run_Slug(t *testing.T) {
	t.Parallel()

	m := testMain(t, nil)
	stdout := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"slug", "Blackmagic 東京 2025"}, stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "blackmagic-toukyou-2025\n", stdout.String())
}

func TestMain_Run_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeFile(t, dir, "transpress.yaml", "run:\n  daily_cap: 0\n")
	m := testMain(t, nil)

	err := m.Run(context.Background(), []string{"--config", cfg, "history"}, &bytes.Buffer{}, &bytes.Buffer{})

	assert.ErrorIs(t, err, main.ErrInvalidDailyCap)
}

func TestMain_Run_RequiresConfigNamedInEnvironment(t *testing.T) {
	t.Parallel()

	m := testMain(t, map[string]string{main.EnvConfig: filepath.Join(t.TempDir(), "missing.yaml")})
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"history"}, &bytes.Buffer{}, stderr)

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, stderr.String(), "Hint:")
}

func TestMain_Run_RequiresCredentials(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeFile(t, dir, "transpress.yaml", "run:\n  state: "+filepath.Join(dir, "state.json")+"\n")
	m := testMain(t, map[string]string{main.EnvGeminiAPIKey: "key"})

	err := m.Run(context.Background(), []string{"--config", cfg, "run"}, &bytes.Buffer{}, &bytes.Buffer{})

	assert.ErrorIs(t, err, main.ErrMissingWPCredentials)
}

func TestMain_Run_PublishesAndRecordsState(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	state := filepath.Join(dir, "state.json")
	cfg := writeFile(t, dir, "transpress.yaml", `
destination:
  timezone: "+09:00"
run:
  daily_cap: 2
  state: `+state+`
`)

	now := time.Date(2026, 10, 19, 10, 0, 0, 0, kst)
	d1 := sourceArticle("d1", time.Date(2025, 1, 10, 18, 30, 0, 0, kst))
	d2 := sourceArticle("d2", time.Date(2025, 1, 10, 12, 0, 0, 0, kst))
	d3 := sourceArticle("d3", time.Date(2025, 1, 9, 9, 0, 0, 0, kst))

	// d2 was published by an earlier version.
	legacy, err := json.Marshal([]string{d2.URL})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(state, legacy, 0644))

	var published []*transpress.Post
	m := testMain(t, nil)
	m.Now = func() time.Time { return now }
	m.Source = &mock.ArticleSource{
		ListArticlesFn: func(_ context.Context, page int) (*transpress.ArticlePage, error) {
			if page > 1 {
				return &transpress.ArticlePage{}, nil
			}
			return &transpress.ArticlePage{Articles: []*transpress.SourceArticle{d3, d1, d2}, HasMore: true}, nil
		},
	}
	m.Translator = &mock.Translator{
		TranslateFn: func(_ context.Context, text string) (string, error) { return text, nil },
	}
	m.Posts = &mock.PostService{
		CreatePostFn: func(_ context.Context, p *transpress.Post) (*transpress.PublishedPost, error) {
			published = append(published, p)
			return &transpress.PublishedPost{ID: int64(100 + len(published)), Slug: p.Slug, Link: "https://prodg.kr/" + p.Slug + "/"}, nil
		},
	}
	m.Media = &mock.MediaService{}
	m.Downloader = &mock.Downloader{}
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	err = m.Run(context.Background(), []string{"--config", cfg, "run"}, stdout, stderr)

	require.NoError(t, err, stderr.String())
	require.Len(t, published, 2)
	assert.Equal(t, "d1 title", published[0].Title)
	assert.Equal(t, "d3 title", published[1].Title)
	assert.True(t, published[0].Date.Equal(d1.PublishedAt))
	assert.Contains(t, stdout.String(), "Published:          2")
	assert.Contains(t, stdout.String(), "Skipped duplicate:  1")

	data, err := os.ReadFile(state)
	require.NoError(t, err)
	var saved map[string]*transpress.DedupRecord
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Len(t, saved, 3)
	require.Contains(t, saved, d1.Key())
	assert.Equal(t, int64(101), saved[d1.Key()].PostID)
	assert.True(t, saved[d1.Key()].RecordedAt.Equal(now))

	// A second run the same day finds the cap used up.
	stdout.Reset()
	err = m.Run(context.Background(), []string{"--config", cfg, "run"}, stdout, stderr)

	require.NoError(t, err)
	assert.Len(t, published, 2)
	assert.Contains(t, stdout.String(), "Daily cap reached.")
}

func TestMain_Run_DryRunWritesPreviews(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeFile(t, dir, "transpress.yaml", "run:\n  state: "+filepath.Join(dir, "state.db")+"\n")
	previews := filepath.Join(dir, "previews")

	m := testMain(t, nil)
	m.Source = &mock.ArticleSource{
		ListArticlesFn: func(context.Context, int) (*transpress.ArticlePage, error) {
			return &transpress.ArticlePage{Articles: []*transpress.SourceArticle{
				sourceArticle("d1", time.Date(2025, 1, 10, 18, 30, 0, 0, kst)),
			}}, nil
		},
	}
	m.Translator = &mock.Translator{
		TranslateFn: func(_ context.Context, text string) (string, error) { return text, nil },
	}
	stdout := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--config", cfg, "run", "--dry-run", "--preview-dir", previews}, stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Previewed:          1")
	content, err := os.ReadFile(filepath.Join(previews, "d1-title.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `title: "d1 title"`)
	assert.Contains(t, string(content), "d1 body")
}
