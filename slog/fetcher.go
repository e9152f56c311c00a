package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/reblog"
)

// Ensure LoggingFetcher implements reblog.Fetcher.
var _ reblog.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher logs page fetches by size, never by body.
type LoggingFetcher struct {
	next   reblog.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next reblog.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the request.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		logDone(ctx, f.logger, "fetch", begin, err,
			"url", url,
			"bytes", len(html),
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
