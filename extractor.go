package reblog

// ExtractResult holds the extracted content from an HTML page.
// Empty fields mean the corresponding heuristic found nothing usable.
type ExtractResult struct {
	// Title is the best-guess page title.
	Title string

	// ContentHTML is the main content as cleaned HTML.
	ContentHTML string
}

// Extractor extracts a title and main content from HTML pages.
type Extractor interface {
	// Extract processes raw HTML and returns what it could find.
	// An error is returned only when the input cannot be processed at all.
	Extract(html string) (*ExtractResult, error)
}

// URLExtractor is an Extractor that reads better when it knows the page's
// own URL, e.g. to resolve relative links.
type URLExtractor interface {
	Extractor

	// ForURL returns an Extractor bound to pageURL.
	ForURL(pageURL string) Extractor
}

// Converter converts HTML to another text representation.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// The input should be clean HTML (e.g., from an Extractor).
	Convert(html string) (string, error)
}
