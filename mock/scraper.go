package mock

import (
	"context"

	"github.com/fwojciec/reblog"
)

var _ reblog.Scraper = (*Scraper)(nil)

// Scraper is a mock implementation of reblog.Scraper.
type Scraper struct {
	ScrapeFn func(ctx context.Context, url string) (*reblog.Page, error)
}

func (s *Scraper) Scrape(ctx context.Context, url string) (*reblog.Page, error) {
	return s.ScrapeFn(ctx, url)
}
