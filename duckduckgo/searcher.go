// Package duckduckgo implements a credential-free reblog.Searcher that
// scrapes the DuckDuckGo HTML results page.
package duckduckgo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/reblog"
)

const (
	// DefaultBaseURL is the JavaScript-free results page.
	DefaultBaseURL = "https://html.duckduckgo.com/html/"

	// DefaultUserAgent is required; the endpoint rejects bare clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// DefaultTimeout bounds a single search request.
	DefaultTimeout = 30 * time.Second
)

// Ensure Searcher implements reblog.Searcher.
var _ reblog.Searcher = (*Searcher)(nil)

// Searcher extracts result URLs from DuckDuckGo's HTML page. Unlike the
// API-backed searcher it applies no article-path heuristic.
type Searcher struct {
	domain    string
	baseURL   string
	userAgent string
	client    *http.Client
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(s *Searcher) { s.baseURL = u }
}

// WithHTTPClient overrides the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Searcher) { s.client = c }
}

// NewSearcher returns a Searcher that excludes results hosted on domain.
func NewSearcher(domain string, opts ...Option) *Searcher {
	s := &Searcher{
		domain:    domain,
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		client:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search implements reblog.Searcher.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]*reblog.SearchResult, error) {
	if limit <= 0 {
		return []*reblog.SearchResult{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+url.Values{"q": {query}}.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, reblog.Errorf(reblog.EINTERNAL, "duckduckgo: HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, reblog.Errorf(reblog.EMALFORMED, "duckduckgo: parsing results: %v", err)
	}

	return s.parseResults(doc, limit), nil
}

func (s *Searcher) parseResults(doc *goquery.Document, limit int) []*reblog.SearchResult {
	results := make([]*reblog.SearchResult, 0, limit)
	seen := make(map[string]bool)

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		result := a.Closest(".result")
		target, ok := resultURL(href, result.Length() > 0)
		if !ok || seen[target] || reblog.IsSameSite(target, s.domain) {
			return true
		}
		seen[target] = true

		results = append(results, &reblog.SearchResult{
			URL:     target,
			Title:   strings.TrimSpace(result.Find(".result__a").First().Text()),
			Snippet: strings.TrimSpace(result.Find(".result__snippet").First().Text()),
		})
		return len(results) < limit
	})
	return results
}

// resultURL decodes href into a result URL. Redirect-wrapped links
// (/l/?uddg=...) are unwrapped. Direct links are accepted only inside a
// result block so page chrome is ignored.
func resultURL(href string, inResult bool) (string, bool) {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	if u.Host == "" || isDuckDuckGo(u.Hostname()) {
		if u.Path != "/l/" && u.Path != "/l" {
			return "", false
		}
		target := u.Query().Get("uddg")
		if target == "" {
			return "", false
		}
		return validTarget(target)
	}

	if !inResult {
		return "", false
	}
	return validTarget(u.String())
}

func validTarget(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	if isDuckDuckGo(u.Hostname()) {
		return "", false
	}
	return u.String(), true
}

func isDuckDuckGo(host string) bool {
	host = strings.ToLower(host)
	return host == "duckduckgo.com" || strings.HasSuffix(host, ".duckduckgo.com")
}
