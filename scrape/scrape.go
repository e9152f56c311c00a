// Package scrape turns a URL into a reblog.Page by chaining a Fetcher, an
// Extractor and an optional Converter.
package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/reblog"
)

// Ensure Scraper implements reblog.Scraper.
var _ reblog.Scraper = (*Scraper)(nil)

// Scraper fetches a page and extracts its title and main content.
type Scraper struct {
	Fetcher reblog.Fetcher

	// Extractor is bound to each page's URL first when it is a
	// reblog.URLExtractor.
	Extractor reblog.Extractor

	// Converter, when set, turns the extracted HTML into Markdown.
	Converter reblog.Converter

	// RetryDelays are the waits between fetch attempts. Nil means a
	// single attempt.
	RetryDelays []time.Duration
}

// Scrape implements reblog.Scraper. A page whose title and content are
// both empty is reported as ENOTFOUND.
func (s *Scraper) Scrape(ctx context.Context, url string) (*reblog.Page, error) {
	html, err := FetchWithRetry(ctx, url, s.Fetcher.Fetch, s.RetryDelays)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	extractor := s.Extractor
	if ue, ok := extractor.(reblog.URLExtractor); ok {
		extractor = ue.ForURL(url)
	}

	extracted, err := extractor.Extract(html)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", url, err)
	}

	title := strings.TrimSpace(extracted.Title)
	content := strings.TrimSpace(extracted.ContentHTML)
	if title == "" && content == "" {
		return nil, reblog.Errorf(reblog.ENOTFOUND, "no usable content at %s", url)
	}

	if s.Converter != nil && content != "" {
		content, err = s.Converter.Convert(content)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", url, err)
		}
		content = strings.TrimSpace(content)
	}

	return &reblog.Page{URL: url, Title: title, Content: content}, nil
}
