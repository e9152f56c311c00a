package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// titleRule is one title heuristic. Rules are tried in order; the first
// that reports ok wins.
type titleRule func(doc *goquery.Document) (title string, ok bool)

// titleRules returns the title heuristics in priority order.
func titleRules(brand string) []titleRule {
	return []titleRule{
		firstHeading,
		openGraphTitle,
		documentTitle(brand),
	}
}

// ExtractTitle returns the best-guess title of an HTML page.
// The brand, if non-empty, is the site name stripped from <title> suffixes.
func ExtractTitle(html, brand string) (string, bool) {
	doc, err := parse(html)
	if err != nil {
		return "", false
	}
	return extractTitle(doc, brand)
}

func extractTitle(doc *goquery.Document, brand string) (string, bool) {
	for _, rule := range titleRules(brand) {
		if title, ok := rule(doc); ok {
			return title, true
		}
	}
	return "", false
}

func firstHeading(doc *goquery.Document) (string, bool) {
	title := strings.TrimSpace(doc.Find("h1").First().Text())
	return title, title != ""
}

func openGraphTitle(doc *goquery.Document) (string, bool) {
	content, _ := doc.Find(`meta[property="og:title"]`).First().Attr("content")
	title := strings.TrimSpace(content)
	return title, title != ""
}

func documentTitle(brand string) titleRule {
	return func(doc *goquery.Document) (string, bool) {
		title := StripBrandSuffix(strings.TrimSpace(doc.Find("title").First().Text()), brand)
		return title, title != ""
	}
}

// genericSuffix matches the last " | x", " – x" or " - x" segment of a title.
var genericSuffix = regexp.MustCompile(`\s+[|–-]\s+[^|–-]*$`)

// StripBrandSuffix removes a trailing site-brand segment such as
// " - BeyondChats" or " | BeyondChats Blog" from a document title.
// With an empty brand the last separated segment is removed instead.
func StripBrandSuffix(title, brand string) string {
	if brand == "" {
		return strings.TrimSpace(genericSuffix.ReplaceAllString(title, ""))
	}
	re := regexp.MustCompile(`(?i)\s*[|–-]\s*` + regexp.QuoteMeta(brand) + `.*$`)
	return strings.TrimSpace(re.ReplaceAllString(title, ""))
}
