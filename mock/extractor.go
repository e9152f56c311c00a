package mock

import "github.com/fwojciec/reblog"

var _ reblog.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of reblog.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*reblog.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*reblog.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ reblog.URLExtractor = (*URLExtractor)(nil)

// URLExtractor is a mock implementation of reblog.URLExtractor.
type URLExtractor struct {
	ExtractFn func(html string) (*reblog.ExtractResult, error)
	ForURLFn  func(pageURL string) reblog.Extractor
}

func (e *URLExtractor) Extract(html string) (*reblog.ExtractResult, error) {
	return e.ExtractFn(html)
}

func (e *URLExtractor) ForURL(pageURL string) reblog.Extractor {
	return e.ForURLFn(pageURL)
}
