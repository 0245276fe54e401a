// Package goquery implements HTML transformations on top of
// github.com/PuerkitoBio/goquery: boilerplate sanitizing, heading
// preservation through translation, link normalization, image source
// rewriting and main-content extraction.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/transpress"
	"golang.org/x/net/html"
)

// parse parses an HTML fragment or document.
func parse(s string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return nil, transpress.Errorf(transpress.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}

// body renders the children of the document body.
func body(doc *goquery.Document) (string, error) {
	out, err := doc.Find("body").First().Html()
	if err != nil {
		return "", transpress.Errorf(transpress.EINTERNAL, "failed to render HTML: %v", err)
	}
	return strings.TrimSpace(out), nil
}

// blockTags are elements that start a new paragraph when flattened.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "aside": true,
	"header": true, "footer": true, "main": true, "blockquote": true,
	"ul": true, "ol": true, "li": true, "dl": true, "dt": true, "dd": true,
	"table": true, "tr": true, "td": true, "th": true, "thead": true, "tbody": true,
	"figure": true, "figcaption": true, "pre": true, "hr": true, "br": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

const blockSelector = "p, div, section, article, aside, header, footer, main, blockquote, " +
	"ul, ol, li, dl, dt, dd, table, tr, td, th, figure, figcaption, pre, " +
	"h1, h2, h3, h4, h5, h6"

// headingLevel returns 1..6 for h1..h6 and 0 otherwise.
func headingLevel(n *html.Node) int {
	if n == nil || n.Type != html.ElementNode || len(n.Data) != 2 || n.Data[0] != 'h' {
		return 0
	}
	if l := int(n.Data[1] - '0'); l >= 1 && l <= 6 {
		return l
	}
	return 0
}

// normalizeText collapses whitespace and lowercases s for marker matching.
func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// PlainText returns the text content of an HTML fragment with entities
// decoded and whitespace collapsed. It is used for feed titles.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := parse(s)
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
