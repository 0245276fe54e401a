package mock_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/transpress"
	"github.com/fwojciec/transpress/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreatePost(t *testing.T) {
	t.Parallel()

	t.Run("delegates to CreatePostFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *transpress.Post
		s := &mock.PostService{
			CreatePostFn: func(_ context.Context, p *transpress.Post) (*transpress.PublishedPost, error) {
				calledWith = p
				return &transpress.PublishedPost{ID: 7}, nil
			},
		}

		post := &transpress.Post{Title: "t", Content: "c", Date: time.Now()}

		got, err := s.CreatePost(context.Background(), post)

		require.NoError(t, err)
		assert.Equal(t, post, calledWith)
		assert.Equal(t, int64(7), got.ID)
	})
}

func TestMetrics_CountsOutcomes(t *testing.T) {
	t.Parallel()

	m := &mock.Metrics{}
	m.ArticleProcessed(transpress.OutcomePublished, time.Second)
	m.ArticleProcessed(transpress.OutcomePublished, time.Second)
	m.ImageProcessed(transpress.ImageFallback)
	m.RunFinished(time.Minute)

	assert.Equal(t, 2, m.Articles[transpress.OutcomePublished])
	assert.Equal(t, 1, m.Images[transpress.ImageFallback])
	assert.Equal(t, 1, m.Runs)
}
