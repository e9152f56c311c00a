// Package htmltomarkdown shapes extracted HTML into Markdown suitable for
// prompt material.
package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/reblog"
)

var _ reblog.Converter = (*Converter)(nil)

// mediaSelector matches elements that carry no text worth sending to an LLM.
const mediaSelector = "img, picture, svg, video, audio, iframe, button, form, input, select"

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Converter converts HTML to Markdown, dropping media and collapsing blank
// lines so references cost fewer prompt characters.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", reblog.Errorf(reblog.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", reblog.Errorf(reblog.EINVALID, "failed to parse HTML: %v", err)
	}
	doc.Find(mediaSelector).Remove()
	cleaned, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}

	md, err := c.conv.ConvertString(cleaned)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(blankRuns.ReplaceAllString(md, "\n\n")), nil
}
