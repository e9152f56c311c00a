package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/reblog"
)

var _ reblog.Scraper = (*LoggingScraper)(nil)

// LoggingScraper logs each scraped page with its title and content size.
type LoggingScraper struct {
	next   reblog.Scraper
	logger *slog.Logger
}

// NewLoggingScraper creates a new LoggingScraper.
func NewLoggingScraper(next reblog.Scraper, logger *slog.Logger) *LoggingScraper {
	return &LoggingScraper{next: next, logger: logger}
}

// Scrape delegates to the wrapped scraper and logs what it extracted.
func (s *LoggingScraper) Scrape(ctx context.Context, url string) (page *reblog.Page, err error) {
	defer func(begin time.Time) {
		var title string
		var chars int
		if page != nil {
			title, chars = page.Title, len(page.Content)
		}
		logDone(ctx, s.logger, "scrape", begin, err,
			"url", url,
			"title", title,
			"chars", chars,
		)
	}(time.Now())
	return s.next.Scrape(ctx, url)
}
