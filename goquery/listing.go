package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/reblog"
)

// ExtractArticleLinks returns the article URLs linked from a blog listing
// page, in document order and without duplicates. An article URL lives on
// the listing page's host directly under articlePath, e.g. /blogs/my-post/.
// Returned URLs are absolute, without query or fragment, and end in "/".
func ExtractArticleLinks(html, listingURL, articlePath string) ([]string, error) {
	base, err := url.Parse(listingURL)
	if err != nil {
		return nil, reblog.Errorf(reblog.EINVALID, "invalid listing URL: %v", err)
	}

	doc, err := parse(html)
	if err != nil {
		return nil, reblog.Errorf(reblog.EINVALID, "failed to parse HTML: %v", err)
	}

	pattern := reblog.ArticlePathPattern(articlePath)
	seen := make(map[string]bool)
	links := []string{}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" {
			return
		}

		// Skip non-HTTP links (javascript:, mailto:, etc.)
		if isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == nil || !isSameHost(base, resolved) {
			return
		}
		if !pattern.MatchString(resolved.Path) {
			return
		}

		resolved.Path = strings.TrimSuffix(resolved.Path, "/") + "/"
		link := resolved.String()
		if seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	})

	return links, nil
}

// resolveURL resolves href against base and strips query and fragment.
// Returns nil if href cannot be parsed.
func resolveURL(base *url.URL, href string) *url.URL {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil
	}
	resolved := base.ResolveReference(ref)
	resolved.RawQuery = ""
	resolved.Fragment = ""
	return resolved
}

// isSameHost compares hosts, treating a leading "www." as insignificant.
func isSameHost(base, resolved *url.URL) bool {
	return strings.TrimPrefix(strings.ToLower(resolved.Host), "www.") ==
		strings.TrimPrefix(strings.ToLower(base.Host), "www.")
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		strings.HasPrefix(href, "#")
}
