// Package serpapi implements reblog.Searcher on top of the SerpAPI Google
// search endpoint.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fwojciec/reblog"
)

const (
	// DefaultBaseURL is the SerpAPI search endpoint.
	DefaultBaseURL = "https://serpapi.com/search"

	// DefaultTimeout bounds a single search request.
	DefaultTimeout = 30 * time.Second

	// margin is how many extra results are requested to survive filtering.
	margin = 5
)

// Ensure Searcher implements reblog.Searcher.
var _ reblog.Searcher = (*Searcher)(nil)

// Searcher queries SerpAPI and keeps only off-site results whose path looks
// like an article.
type Searcher struct {
	apiKey  string
	domain  string
	baseURL string
	client  *http.Client
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

// NewSearcher returns a Searcher authenticated with apiKey that excludes
// results hosted on domain.
func NewSearcher(apiKey, domain string, opts ...Option) *Searcher {
	s := &Searcher{
		apiKey:  apiKey,
		domain:  domain,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type response struct {
	Error          string `json:"error"`
	OrganicResults []struct {
		Link    string `json:"link"`
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}

// Search implements reblog.Searcher. A missing API key is reported as
// ECONFIG without touching the network.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]*reblog.SearchResult, error) {
	if s.apiKey == "" {
		return nil, reblog.Errorf(reblog.ECONFIG, "SerpAPI key not configured")
	}
	if limit <= 0 {
		return []*reblog.SearchResult{}, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", s.apiKey)
	params.Set("num", strconv.Itoa(limit+margin))
	params.Set("engine", "google")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, reblog.Errorf(reblog.EINTERNAL, "serpapi: HTTP %d: %s", resp.StatusCode, body)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, reblog.Errorf(reblog.EMALFORMED, "serpapi: decoding response: %v", err)
	}
	if out.Error != "" && len(out.OrganicResults) == 0 {
		return nil, reblog.Errorf(reblog.EINTERNAL, "serpapi: %s", out.Error)
	}

	results := make([]*reblog.SearchResult, 0, limit)
	for _, r := range out.OrganicResults {
		if r.Link == "" || reblog.IsSameSite(r.Link, s.domain) || !reblog.HasArticleHint(r.Link) {
			continue
		}
		results = append(results, &reblog.SearchResult{URL: r.Link, Title: r.Title, Snippet: r.Snippet})
		if len(results) == limit {
			break
		}
	}
	return results, nil
}
