package pipeline

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// CleanHTML strips structural markup from a job description: tags removed,
// script and style contents dropped, text nodes joined with single spaces,
// result trimmed. Plain-text descriptions pass through with whitespace
// collapsed.
func CleanHTML(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return collapseWhitespace(raw)
	}
	doc.Find("script,style").Remove()

	var parts []string
	for _, root := range doc.Nodes {
		collectText(root, &parts)
	}
	return collapseWhitespace(strings.Join(parts, " "))
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		*parts = append(*parts, n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}
