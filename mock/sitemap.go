package mock

import (
	"context"

	"github.com/fwojciec/reblog"
)

var _ reblog.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of reblog.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *reblog.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *reblog.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}

var _ reblog.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of reblog.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
