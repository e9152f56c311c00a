package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/reblog"
)

var _ reblog.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService logs sitemap discovery runs.
type LoggingSitemapService struct {
	next   reblog.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next reblog.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service and logs the operation.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *reblog.URLFilter) (urls []string, err error) {
	defer func(begin time.Time) {
		logDone(ctx, s.logger, "sitemap discovery", begin, err,
			"url", baseURL,
			"filtered", filter != nil,
			"count", len(urls),
		)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL, filter)
}
