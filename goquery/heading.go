package goquery

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/transpress"
	"github.com/google/uuid"
	nethtml "golang.org/x/net/html"
)

// Ensure HeadingPreserver implements transpress.HeadingPreserver at compile time.
var _ transpress.HeadingPreserver = (*HeadingPreserver)(nil)

// HeadingPreserver flattens article HTML to translatable paragraphs,
// replacing headings and images with placeholder tokens, and rebuilds HTML
// from the translated text.
type HeadingPreserver struct {
	// NewNonce returns the per-article token nonce.
	NewNonce func() string
}

// NewHeadingPreserver creates a HeadingPreserver with random nonces.
func NewHeadingPreserver() *HeadingPreserver {
	return &HeadingPreserver{NewNonce: randomNonce}
}

// randomNonce returns 8 upper-case hex characters of a random UUID.
func randomNonce() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:8])
}

// Protect flattens rawHTML into paragraphs separated by blank lines.
// Each heading becomes "<token> <text>" and each image a paragraph holding
// only its token.
func (h *HeadingPreserver) Protect(rawHTML string) (string, *transpress.Placeholders, error) {
	ps := transpress.NewPlaceholders(h.NewNonce())
	if strings.TrimSpace(rawHTML) == "" {
		return "", ps, nil
	}
	doc, err := parse(rawHTML)
	if err != nil {
		return "", nil, err
	}

	f := &flattener{ps: ps}
	for _, n := range doc.Find("body").Nodes {
		f.children(n)
	}
	f.flush()

	return strings.Join(f.paras, "\n\n"), ps, nil
}

type flattener struct {
	ps    *transpress.Placeholders
	paras []string
	cur   strings.Builder
}

func (f *flattener) flush() {
	if t := collapse(f.cur.String()); t != "" {
		f.paras = append(f.paras, t)
	}
	f.cur.Reset()
}

func (f *flattener) children(n *nethtml.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		f.walk(c)
	}
}

func (f *flattener) walk(n *nethtml.Node) {
	switch n.Type {
	case nethtml.TextNode:
		f.cur.WriteString(n.Data)
		return
	case nethtml.ElementNode:
	default:
		f.children(n)
		return
	}

	switch {
	case n.Data == "script" || n.Data == "style":
		return
	case headingLevel(n) > 0:
		f.flush()
		text := collapse(goquery.NewDocumentFromNode(n).Text())
		token := f.ps.Add(transpress.Placeholder{
			Tag:     n.Data,
			Class:   attr(n, "class"),
			TextLen: utf8.RuneCountInString(text),
		})
		f.paras = append(f.paras, strings.TrimSpace(token+" "+text))
	case n.Data == "img":
		src := attr(n, "src")
		if src == "" {
			return
		}
		f.flush()
		f.paras = append(f.paras, f.ps.Add(transpress.Placeholder{
			Tag: transpress.PlaceholderImage,
			Src: src,
			Alt: attr(n, "alt"),
		}))
	case blockTags[n.Data]:
		f.flush()
		f.children(n)
		f.flush()
	default:
		f.children(n)
	}
}

func attr(n *nethtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var blankLineRe = regexp.MustCompile(`\n[ \t\r]*\n`)

// Restore rebuilds HTML from translated text. A paragraph carrying a
// heading token becomes that heading unless its text grew implausibly long;
// image tokens become their original images. Headings whose token is lost
// degrade to paragraphs; lost images are appended at the end. Both are
// returned as missing.
func (h *HeadingPreserver) Restore(text string, ps *transpress.Placeholders) (string, []transpress.Placeholder) {
	if ps == nil {
		ps = transpress.NewPlaceholders("")
	}
	tokenRe := ps.TokenPattern()
	residueRe := ps.ResiduePattern()
	used := make(map[string]bool)

	var b strings.Builder
	for _, para := range blankLineRe.Split(text, -1) {
		var heading *transpress.Placeholder
		for _, tok := range tokenRe.FindAllString(para, -1) {
			p, ok := ps.Lookup(tok)
			if !ok || used[tok] {
				continue
			}
			used[tok] = true
			if !p.IsHeading() {
				writeImage(&b, p)
				continue
			}
			if heading == nil {
				heading = &p
			}
		}

		rest := tokenRe.ReplaceAllString(para, " ")
		rest = collapse(residueRe.ReplaceAllString(rest, " "))
		if rest == "" {
			continue
		}
		if heading != nil && plausibleHeading(rest, *heading) {
			tag := heading.Tag
			b.WriteString("<" + tag)
			if heading.Class != "" {
				b.WriteString(` class="` + html.EscapeString(heading.Class) + `"`)
			}
			b.WriteString(">" + html.EscapeString(rest) + "</" + tag + ">\n")
			continue
		}
		b.WriteString("<p>" + html.EscapeString(rest) + "</p>\n")
	}

	var missing []transpress.Placeholder
	for _, p := range ps.Items {
		if used[p.Token] {
			continue
		}
		missing = append(missing, p)
		if !p.IsHeading() {
			writeImage(&b, p)
		}
	}

	return strings.TrimSpace(b.String()), missing
}

// plausibleHeading reports whether text can be the translation of the
// heading p.
func plausibleHeading(text string, p transpress.Placeholder) bool {
	return utf8.RuneCountInString(text) <= 4*p.TextLen+80
}

func writeImage(b *strings.Builder, p transpress.Placeholder) {
	b.WriteString(`<img src="` + html.EscapeString(p.Src) + `"`)
	if p.Alt != "" {
		b.WriteString(` alt="` + html.EscapeString(p.Alt) + `"`)
	}
	b.WriteString(" />\n")
}
