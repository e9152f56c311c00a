package reblog

import "context"

// SearchResult is a single candidate returned by a search provider.
// Title and Snippet may be empty.
type SearchResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Searcher finds reference pages for a free-text query.
type Searcher interface {
	// Search returns at most limit results in relevance order.
	Search(ctx context.Context, query string, limit int) ([]*SearchResult, error)
}

// Ensure FallbackSearcher implements Searcher at compile time.
var _ Searcher = (*FallbackSearcher)(nil)

// FallbackSearcher queries Primary and switches to Fallback when Primary is
// not configured or fails. It never surfaces provider errors: a failed
// fallback yields an empty result. Only context cancellation is returned.
type FallbackSearcher struct {
	Primary  Searcher
	Fallback Searcher
}

// Search implements Searcher.
func (s *FallbackSearcher) Search(ctx context.Context, query string, limit int) ([]*SearchResult, error) {
	if s.Primary != nil {
		results, err := s.Primary.Search(ctx, query, limit)
		if err == nil {
			return results, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.Fallback == nil {
		return []*SearchResult{}, nil
	}
	results, err := s.Fallback.Search(ctx, query, limit)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return []*SearchResult{}, nil
	}
	return results, nil
}
