package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/transpress"
	"golang.org/x/net/html"
)

// Ensure LinkNormalizer implements transpress.LinkNormalizer at compile time.
var _ transpress.LinkNormalizer = (*LinkNormalizer)(nil)

// LinkNormalizer rewrites alias domains in links, image sources and bare
// URLs in text to the canonical domain.
type LinkNormalizer struct {
	aliases *transpress.DomainAliases
}

// NewLinkNormalizer creates a LinkNormalizer for aliases.
func NewLinkNormalizer(aliases *transpress.DomainAliases) *LinkNormalizer {
	return &LinkNormalizer{aliases: aliases}
}

// NormalizeLinks rewrites a[href], img[src] and text-node URLs. Paths and
// queries are left untouched. It is idempotent.
func (n *LinkNormalizer) NormalizeLinks(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" || n.aliases == nil {
		return rawHTML, nil
	}
	doc, err := parse(rawHTML)
	if err != nil {
		return "", err
	}

	rewriteAttr := func(sel *goquery.Selection, key string) {
		if v, ok := sel.Attr(key); ok {
			if nv := n.aliases.RewriteURL(v); nv != v {
				sel.SetAttr(key, nv)
			}
		}
	}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		rewriteAttr(sel, "href")
	})
	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		rewriteAttr(sel, "src")
	})

	for _, root := range doc.Find("body").Nodes {
		n.rewriteText(root)
	}

	return body(doc)
}

// ResolveLinks makes relative a[href] and img[src] values absolute against
// baseURL. Absolute URLs, fragments and non-http schemes are left as
// written.
func (n *LinkNormalizer) ResolveLinks(rawHTML, baseURL string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return rawHTML, nil
	}
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || !base.IsAbs() || base.Host == "" {
		return rawHTML, nil
	}
	doc, err := parse(rawHTML)
	if err != nil {
		return "", err
	}

	resolveAttr := func(sel *goquery.Selection, key string) {
		v, ok := sel.Attr(key)
		if !ok {
			return
		}
		if nv, ok := resolveRelative(base, v); ok {
			sel.SetAttr(key, nv)
		}
	}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		resolveAttr(sel, "href")
	})
	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		resolveAttr(sel, "src")
	})

	return body(doc)
}

// resolveRelative returns ref resolved against base, and false when ref
// is already absolute, empty or a fragment.
func resolveRelative(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return "", false
	}
	r, err := url.Parse(ref)
	if err != nil || r.Scheme != "" {
		return "", false
	}
	return base.ResolveReference(r).String(), true
}

func (n *LinkNormalizer) rewriteText(node *html.Node) {
	if node.Type == html.TextNode {
		node.Data = n.aliases.RewriteText(node.Data)
		return
	}
	if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
		return
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		n.rewriteText(c)
	}
}
