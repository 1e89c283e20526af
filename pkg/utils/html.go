package utils

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockElements = "p, div, tr, li, table, h1, h2, h3, h4, h5, h6"

// HTMLToText renders an HTML body as plain text with one block element per line.
// Blank lines are dropped.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	doc.Find("script, style, head").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	var out []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
