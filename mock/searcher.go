package mock

import (
	"context"

	"github.com/fwojciec/reblog"
)

var _ reblog.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of reblog.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, query string, limit int) ([]*reblog.SearchResult, error)
}

func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]*reblog.SearchResult, error) {
	return s.SearchFn(ctx, query, limit)
}
