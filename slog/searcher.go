package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/reblog"
)

var _ reblog.Searcher = (*LoggingSearcher)(nil)

// LoggingSearcher logs search queries. Name identifies the
// provider when several are chained.
type LoggingSearcher struct {
	next   reblog.Searcher
	name   string
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher.
func NewLoggingSearcher(next reblog.Searcher, name string, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, name: name, logger: logger}
}

// Search delegates to the wrapped searcher and logs the query.
func (s *LoggingSearcher) Search(ctx context.Context, query string, limit int) (results []*reblog.SearchResult, err error) {
	defer func(begin time.Time) {
		logDone(ctx, s.logger, "search", begin, err,
			"provider", s.name,
			"query", query,
			"limit", limit,
			"count", len(results),
		)
	}(time.Now())
	return s.next.Search(ctx, query, limit)
}
