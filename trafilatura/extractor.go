// Package trafilatura provides a reference extractor backed by
// go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/reblog"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ reblog.Extractor = (*Extractor)(nil)

// Extractor extracts the main text of arbitrary web pages. It tends to
// outperform selector rules on sites it has never seen.
type Extractor struct {
	opts trafilatura.Options
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRecall trades precision for recall, keeping more borderline blocks.
func WithRecall() Option {
	return func(e *Extractor) {
		e.opts.Focus = trafilatura.FavorRecall
	}
}

// NewExtractor creates an Extractor that skips comment sections and falls
// back to readability-style heuristics when its own pass finds little.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{opts: trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
	}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract processes raw HTML and returns the page title and main content.
func (e *Extractor) Extract(rawHTML string) (*reblog.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, reblog.Errorf(reblog.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		// Nothing extractable is not an input error.
		return &reblog.ExtractResult{}, nil
	}

	out := &reblog.ExtractResult{Title: strings.TrimSpace(result.Metadata.Title)}
	if result.ContentNode != nil && strings.TrimSpace(result.ContentText) != "" {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, reblog.Errorf(reblog.EINTERNAL, "rendering content: %v", err)
		}
		out.ContentHTML = buf.String()
	}
	return out, nil
}
