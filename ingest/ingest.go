// Package ingest captures the oldest articles of a blog into the article
// store.
package ingest

import (
	"context"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/fwojciec/reblog"
	"github.com/fwojciec/reblog/bloom"
	"github.com/fwojciec/reblog/goquery"
	"golang.org/x/sync/errgroup"
)

// Defaults for Ingester.
const (
	DefaultCount       = 5
	DefaultConcurrency = 3
)

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressDiscovered ProgressType = iota
	ProgressSaved
	ProgressExisting
	ProgressFailed
	ProgressFinished
)

// ProgressEvent reports progress during ingestion.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Title     string
	Err       error
}

// ProgressFunc is a callback for reporting ingestion progress.
type ProgressFunc func(event ProgressEvent)

// Result holds the outcome of an ingestion run.
type Result struct {
	Found    int // distinct article links discovered
	Saved    int
	Existing int
	Failed   int
}

// Ingester discovers article links on the site's listing page, falling
// back to its sitemap, and stores the oldest ones it does not have yet.
type Ingester struct {
	Fetcher  reblog.Fetcher
	Sitemaps reblog.SitemapService // optional
	Scraper  reblog.Scraper
	Articles reblog.ArticleService
	Limiter  reblog.DomainLimiter // optional
	Site     reblog.Site

	// Concurrency bounds simultaneous article scrapes.
	Concurrency int
}

// Ingest stores up to count of the oldest articles. Failing to load the
// listing page, or finding no article links at all, is fatal. Individual
// article failures are counted.
func (in *Ingester) Ingest(ctx context.Context, count int, progress ProgressFunc) (*Result, error) {
	if count <= 0 {
		count = DefaultCount
	}

	links, err := in.discover(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Found: len(links)}
	notify(progress, ProgressEvent{Type: ProgressDiscovered, Total: len(links)})

	// Listings and sitemaps put the newest first.
	slices.Reverse(links)
	if len(links) > count {
		links = links[:count]
	}

	var (
		mu        sync.Mutex
		completed int
	)
	record := func(ev ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		completed++
		switch ev.Type {
		case ProgressSaved:
			result.Saved++
		case ProgressExisting:
			result.Existing++
		case ProgressFailed:
			result.Failed++
		}
		ev.Completed, ev.Total = completed, len(links)
		notify(progress, ev)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.concurrency())
	for _, link := range links {
		g.Go(func() error {
			record(in.ingestOne(gctx, link))
			return nil
		})
	}
	_ = g.Wait()

	notify(progress, ProgressEvent{Type: ProgressFinished, Completed: completed, Total: len(links)})

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// discover returns distinct article URLs, newest first.
func (in *Ingester) discover(ctx context.Context) ([]string, error) {
	html, err := in.Fetcher.Fetch(ctx, in.Site.ListingURL)
	if err != nil {
		return nil, reblog.Errorf(reblog.EINTERNAL, "fetching listing %s: %v", in.Site.ListingURL, err)
	}

	links, err := goquery.ExtractArticleLinks(html, in.Site.ListingURL, in.Site.ArticlePath)
	if err != nil {
		return nil, err
	}

	if len(links) == 0 && in.Sitemaps != nil {
		links, err = in.Sitemaps.DiscoverURLs(ctx, in.Site.BaseURL, in.Site.ArticleURLFilter())
		if err != nil {
			return nil, err
		}
	}

	unique := bloom.NewURLSet(uint(len(links))).Dedupe(links)
	for i, link := range unique {
		unique[i] = withTrailingSlash(link)
	}

	if len(unique) == 0 {
		return nil, reblog.Errorf(reblog.ENOTFOUND, "no article links found on %s", in.Site.ListingURL)
	}
	return unique, nil
}

func (in *Ingester) ingestOne(ctx context.Context, link string) ProgressEvent {
	fail := func(err error) ProgressEvent {
		return ProgressEvent{Type: ProgressFailed, URL: link, Err: err}
	}

	if in.Limiter != nil {
		if err := in.Limiter.Wait(ctx, hostOf(link)); err != nil {
			return fail(err)
		}
	}

	page, err := in.Scraper.Scrape(ctx, link)
	if err != nil {
		return fail(err)
	}
	if page.Title == "" || page.Content == "" {
		return fail(reblog.Errorf(reblog.ENOTFOUND, "missing title or content at %s", link))
	}

	existing, err := in.Articles.FindArticles(ctx, reblog.ArticleFilter{SourceURL: &link, Limit: 1})
	if err != nil {
		return fail(err)
	}
	if len(existing) > 0 {
		return ProgressEvent{Type: ProgressExisting, URL: link, Title: existing[0].Title}
	}

	article := &reblog.Article{
		Title:           page.Title,
		Content:         page.Content,
		OriginalContent: page.Content,
		SourceURL:       link,
	}
	if err := in.Articles.CreateArticle(ctx, article); err != nil {
		return fail(err)
	}
	return ProgressEvent{Type: ProgressSaved, URL: link, Title: article.Title}
}

func (in *Ingester) concurrency() int {
	if in.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return in.Concurrency
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func withTrailingSlash(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery, u.Fragment = "", ""
	u.Path = strings.TrimSuffix(u.Path, "/") + "/"
	return u.String()
}

func notify(progress ProgressFunc, ev ProgressEvent) {
	if progress != nil {
		progress(ev)
	}
}
