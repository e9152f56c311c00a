package reblog

import (
	"fmt"
	"strings"
)

// Default prompt bounds, in characters.
const (
	DefaultMaxArticleChars   = 3000
	DefaultMaxReferenceChars = 2000
)

// Composer builds enhancement prompts with bounded size. Each source is cut
// to its character bound before embedding because LLM calls have token
// ceilings.
type Composer struct {
	MaxArticleChars   int
	MaxReferenceChars int
}

// NewComposer returns a Composer with the default bounds.
func NewComposer() *Composer {
	return &Composer{
		MaxArticleChars:   DefaultMaxArticleChars,
		MaxReferenceChars: DefaultMaxReferenceChars,
	}
}

// Compose builds the prompt asking the model to rewrite article using refs
// as stylistic inspiration.
func (c *Composer) Compose(article *Article, refs []*Page) string {
	maxArticle := c.MaxArticleChars
	if maxArticle <= 0 {
		maxArticle = DefaultMaxArticleChars
	}
	maxRef := c.MaxReferenceChars
	if maxRef <= 0 {
		maxRef = DefaultMaxReferenceChars
	}

	parts := make([]string, 0, len(refs))
	for i, ref := range refs {
		parts = append(parts, fmt.Sprintf("Reference Article %d (%s):\n%s", i+1, ref.URL, Truncate(ref.Content, maxRef)))
	}

	var sb strings.Builder
	sb.WriteString("You are an expert content writer. Your task is to improve the following article by taking inspiration from the reference articles that are ranking well on Google.\n\n")
	sb.WriteString("ORIGINAL ARTICLE:\n")
	fmt.Fprintf(&sb, "Title: %s\n", article.Title)
	fmt.Fprintf(&sb, "Content: %s\n\n", Truncate(article.Content, maxArticle))
	sb.WriteString("---\n\n")
	sb.WriteString("REFERENCE ARTICLES:\n")
	sb.WriteString(strings.Join(parts, "\n\n---\n\n"))
	sb.WriteString("\n\n---\n\n")
	sb.WriteString(instructions)
	return sb.String()
}

const instructions = `INSTRUCTIONS:
1. Improve the original article's formatting, structure, and content quality
2. Take inspiration from the reference articles' style and structure
3. Maintain the original article's core message and topic
4. Make it more engaging and comprehensive
5. Keep it around the same length as the original or slightly longer
6. Use proper HTML formatting (headings, paragraphs, bullet points)
7. DO NOT copy content directly from reference articles

Please provide the improved article content in HTML format:`

// Truncate returns at most n characters of s. It never splits a multi-byte
// character.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
