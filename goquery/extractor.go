package goquery

import "github.com/fwojciec/reblog"

// Ensure extractors implement reblog.Extractor at compile time.
var (
	_ reblog.Extractor = (*ArticleExtractor)(nil)
	_ reblog.Extractor = (*ReferenceExtractor)(nil)
)

// ArticleExtractor extracts publishable articles from the source site.
// Content that does not clear ArticleMinLength is left empty.
type ArticleExtractor struct {
	brand string
}

// NewArticleExtractor creates an ArticleExtractor that strips brand from
// document titles.
func NewArticleExtractor(brand string) *ArticleExtractor {
	return &ArticleExtractor{brand: brand}
}

// Extract implements reblog.Extractor.
func (e *ArticleExtractor) Extract(html string) (*reblog.ExtractResult, error) {
	if html == "" {
		return nil, reblog.Errorf(reblog.EINVALID, "empty HTML input")
	}
	title, _ := ExtractTitle(html, e.brand)
	content, _ := ExtractContent(html)
	return &reblog.ExtractResult{Title: title, ContentHTML: content}, nil
}

// ReferenceExtractor extracts rough reference material from arbitrary pages.
// It is looser than ArticleExtractor: reference text only feeds a prompt.
type ReferenceExtractor struct {
	brand string
}

// NewReferenceExtractor creates a ReferenceExtractor.
func NewReferenceExtractor(brand string) *ReferenceExtractor {
	return &ReferenceExtractor{brand: brand}
}

// Extract implements reblog.Extractor.
func (e *ReferenceExtractor) Extract(html string) (*reblog.ExtractResult, error) {
	if html == "" {
		return nil, reblog.Errorf(reblog.EINVALID, "empty HTML input")
	}
	title, _ := ExtractTitle(html, e.brand)
	content, _ := ExtractReferenceContent(html)
	return &reblog.ExtractResult{Title: title, ContentHTML: content}, nil
}
