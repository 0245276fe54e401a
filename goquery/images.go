package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/transpress"
)

// Ensure ImageRewriter implements transpress.ImageRewriter at compile time.
var _ transpress.ImageRewriter = (*ImageRewriter)(nil)

// ImageRewriter finds and rewrites img sources.
type ImageRewriter struct{}

// NewImageRewriter creates a new ImageRewriter.
func NewImageRewriter() *ImageRewriter {
	return &ImageRewriter{}
}

// ImageSources returns the src of every img in document order without
// duplicates. data: URIs are skipped.
func (r *ImageRewriter) ImageSources(rawHTML string) ([]string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, nil
	}
	doc, err := parse(rawHTML)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var srcs []string
	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src := strings.TrimSpace(sel.AttrOr("src", ""))
		if src == "" || seen[src] || strings.HasPrefix(strings.ToLower(src), "data:") {
			return
		}
		seen[src] = true
		srcs = append(srcs, src)
	})
	return srcs, nil
}

// RewriteImageSources replaces each img src found in urls. srcset is
// dropped from rewritten images so browsers cannot fall back to the
// original host.
func (r *ImageRewriter) RewriteImageSources(rawHTML string, urls map[string]string) (string, error) {
	if len(urls) == 0 || strings.TrimSpace(rawHTML) == "" {
		return rawHTML, nil
	}
	doc, err := parse(rawHTML)
	if err != nil {
		return "", err
	}

	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src := strings.TrimSpace(sel.AttrOr("src", ""))
		if nu, ok := urls[src]; ok && nu != "" {
			sel.SetAttr("src", nu)
			sel.RemoveAttr("srcset")
			sel.RemoveAttr("sizes")
		}
	})

	return body(doc)
}

// MainImage returns the page's representative image: og:image, then
// twitter:image, then the first image of the article body. Relative URLs
// are resolved against pageURL. It returns "" when none is found.
func MainImage(rawHTML, pageURL string) string {
	doc, err := parse(rawHTML)
	if err != nil {
		return ""
	}

	candidates := []string{
		doc.Find(`meta[property="og:image"]`).AttrOr("content", ""),
		doc.Find(`meta[name="twitter:image"]`).AttrOr("content", ""),
		doc.Find(contentSelector).First().Find("img[src]").First().AttrOr("src", ""),
	}
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return resolve(pageURL, c)
		}
	}
	return ""
}

func resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil || base == "" {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
