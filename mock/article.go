package mock

import (
	"context"

	"github.com/fwojciec/transpress"
)

var _ transpress.ArticleSource = (*ArticleSource)(nil)

// ArticleSource is a mock implementation of transpress.ArticleSource.
type ArticleSource struct {
	ListArticlesFn func(ctx context.Context, page int) (*transpress.ArticlePage, error)
}

func (s *ArticleSource) ListArticles(ctx context.Context, page int) (*transpress.ArticlePage, error) {
	return s.ListArticlesFn(ctx, page)
}
