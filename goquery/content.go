package goquery

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Minimum text lengths, in characters, for a content candidate to be accepted.
const (
	ArticleMinLength   = 100
	ReferenceMinLength = 200
)

// articleSelectors are the ingestion candidates in priority order: the
// primary article container, known content classes, then the generic main
// container.
var articleSelectors = []string{
	"article",
	".blog-content",
	".post-content",
	".entry-content",
	".article-content",
	"main",
}

// referenceSelectors are the candidates for scraped reference pages.
var referenceSelectors = []string{
	"article",
	".post-content",
	".article-content",
	".entry-content",
	".blog-content",
	".content-body",
	"main",
	".main-content",
}

// scriptSelector matches blocks that never contribute readable text.
const scriptSelector = "script, style, noscript"

// boilerplateSelector matches page chrome stripped from reference pages
// before any candidate is considered.
const boilerplateSelector = "script, style, noscript, iframe, form, nav, footer, header, aside, .sidebar, .comments, .advertisement, .ads"

var whitespace = regexp.MustCompile(`\s+`)

// contentRule is one content heuristic. Rules are tried in order; the first
// that reports ok wins.
type contentRule func(doc *goquery.Document) (html string, ok bool)

// selectorRules builds one rule per selector, each accepting the first
// matching element when its text exceeds minLen characters.
func selectorRules(selectors []string, minLen int) []contentRule {
	rules := make([]contentRule, 0, len(selectors))
	for _, selector := range selectors {
		rules = append(rules, selectorRule(selector, minLen))
	}
	return rules
}

func selectorRule(selector string, minLen int) contentRule {
	return func(doc *goquery.Document) (string, bool) {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return "", false
		}
		if utf8.RuneCountInString(collapse(sel.Text())) <= minLen {
			return "", false
		}
		html, err := sel.Html()
		if err != nil {
			return "", false
		}
		return collapse(html), true
	}
}

// bodyRule accepts whatever the document body holds.
func bodyRule(doc *goquery.Document) (string, bool) {
	html, err := doc.Find("body").First().Html()
	if err != nil {
		return "", false
	}
	html = collapse(html)
	return html, html != ""
}

// ExtractContent returns the cleaned main-content HTML of an article page.
// It reports false when no candidate holds more than ArticleMinLength
// characters of text; it never falls back to the raw body.
func ExtractContent(html string) (string, bool) {
	doc, err := parse(html)
	if err != nil {
		return "", false
	}
	doc.Find(scriptSelector).Remove()
	return firstMatch(doc, selectorRules(articleSelectors, ArticleMinLength))
}

// ExtractReferenceContent returns the main-content HTML of a reference page.
// Navigation, footers, sidebars, comments and ads are removed first. When
// no candidate holds more than ReferenceMinLength characters of text, the
// whole body is returned.
func ExtractReferenceContent(html string) (string, bool) {
	doc, err := parse(html)
	if err != nil {
		return "", false
	}
	doc.Find(boilerplateSelector).Remove()
	rules := append(selectorRules(referenceSelectors, ReferenceMinLength), bodyRule)
	return firstMatch(doc, rules)
}

func firstMatch(doc *goquery.Document, rules []contentRule) (string, bool) {
	for _, rule := range rules {
		if html, ok := rule(doc); ok {
			return html, true
		}
	}
	return "", false
}

// collapse replaces runs of whitespace with a single space and trims.
func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func parse(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}
