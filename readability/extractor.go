// Package readability provides a reference extractor backed by
// go-readability.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/reblog"
	"github.com/go-shiori/go-readability"
)

var _ reblog.URLExtractor = (*Extractor)(nil)

// Extractor extracts the main content of a page the way Firefox Reader
// View does.
type Extractor struct {
	pageURL *url.URL
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ForURL returns a copy that resolves relative links against pageURL.
func (e *Extractor) ForURL(pageURL string) reblog.Extractor {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return &Extractor{}
	}
	return &Extractor{pageURL: u}
}

// Extract processes raw HTML and returns the page title and main content.
// Pages readability does not consider readable yield an empty content.
func (e *Extractor) Extract(rawHTML string) (*reblog.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, reblog.Errorf(reblog.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), e.pageURL)
	if err != nil {
		return nil, reblog.Errorf(reblog.EINVALID, "failed to parse HTML: %v", err)
	}

	result := &reblog.ExtractResult{Title: strings.TrimSpace(article.Title)}
	if strings.TrimSpace(article.TextContent) != "" {
		result.ContentHTML = strings.TrimSpace(article.Content)
	}
	return result, nil
}
