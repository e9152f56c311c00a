package reblog

import "context"

// Page represents a scraped web page.
type Page struct {
	URL     string
	Title   string
	Content string
}

// Scraper fetches a URL and extracts its usable content.
// Implementations hide transport, extraction and conversion.
type Scraper interface {
	// Scrape returns the page at url. Every failure, including a page that
	// yields no usable content, is returned as an error; callers treat the
	// page as absent and carry on.
	Scrape(ctx context.Context, url string) (*Page, error)
}
