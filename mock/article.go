package mock

import (
	"context"

	"github.com/fwojciec/reblog"
)

var _ reblog.ArticleService = (*ArticleService)(nil)

// ArticleService is a mock implementation of reblog.ArticleService.
type ArticleService struct {
	CreateArticleFn   func(ctx context.Context, article *reblog.Article) error
	FindArticleByIDFn func(ctx context.Context, id string) (*reblog.Article, error)
	FindArticlesFn    func(ctx context.Context, filter reblog.ArticleFilter) ([]*reblog.Article, error)
	UpdateArticleFn   func(ctx context.Context, id string, upd reblog.ArticleUpdate) (*reblog.Article, error)
}

func (s *ArticleService) CreateArticle(ctx context.Context, article *reblog.Article) error {
	return s.CreateArticleFn(ctx, article)
}

func (s *ArticleService) FindArticleByID(ctx context.Context, id string) (*reblog.Article, error) {
	return s.FindArticleByIDFn(ctx, id)
}

func (s *ArticleService) FindArticles(ctx context.Context, filter reblog.ArticleFilter) ([]*reblog.Article, error) {
	return s.FindArticlesFn(ctx, filter)
}

func (s *ArticleService) UpdateArticle(ctx context.Context, id string, upd reblog.ArticleUpdate) (*reblog.Article, error) {
	return s.UpdateArticleFn(ctx, id, upd)
}
