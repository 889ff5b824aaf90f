package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText flattens an HTML fragment to its text with collapsed whitespace.
// Input without markup is only trimmed.
func PlainText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if !strings.Contains(fragment, "<") {
		return fragment
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
