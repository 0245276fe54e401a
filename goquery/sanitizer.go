package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/transpress"
	"golang.org/x/net/html"
)

// Ensure Sanitizer implements transpress.Sanitizer at compile time.
var _ transpress.Sanitizer = (*Sanitizer)(nil)

// Rule reports whether an element is boilerplate to be removed.
type Rule func(sel *goquery.Selection) bool

// DefaultTags are removed by TagRule in the default rule set.
var DefaultTags = []string{"script", "style", "iframe", "noscript", "form", "nav"}

// DefaultClasses are matched by ClassRule in the default rule set.
var DefaultClasses = []string{"ad", "advertisement", "banner", "sidebar", "share"}

// DefaultMarkers are the boilerplate markers of the default source.
var DefaultMarkers = []string{
	"back-number",
	"バックナンバー",
	"関連キーワード",
	"関連記事",
	"related keywords",
	"related articles",
	"share this article",
	"follow us",
}

// DefaultMetadataPatterns match origin timestamp and source lines.
var DefaultMetadataPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*(原文|元記事)?\s*(掲載|公開|更新|投稿)(日|日時)\s*[:：]`),
	regexp.MustCompile(`^\s*\d{4}[./年-]\s*\d{1,2}[./月-]\s*\d{1,2}日?(\s*\d{1,2}:\d{2})?\s*$`),
	regexp.MustCompile(`^\s*(出典|Source|ソース)\s*[:：]`),
}

// TagRule matches elements by tag name.
func TagRule(tags ...string) Rule {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[strings.ToLower(t)] = true
	}
	return func(sel *goquery.Selection) bool {
		return set[goquery.NodeName(sel)]
	}
}

// ClassRule matches elements whose class attribute names one of names.
// Names of four characters or more match as substrings of a class; shorter
// names must equal a hyphen- or underscore-separated part of one, so "ad"
// matches "ad-slot" but not "header".
func ClassRule(names ...string) Rule {
	return func(sel *goquery.Selection) bool {
		class, ok := sel.Attr("class")
		if !ok || class == "" {
			return false
		}
		for _, c := range strings.Fields(strings.ToLower(class)) {
			for _, name := range names {
				if classMatches(c, strings.ToLower(name)) {
					return true
				}
			}
		}
		return false
	}
}

func classMatches(class, name string) bool {
	if len(name) >= 4 {
		return strings.Contains(class, name)
	}
	for _, part := range strings.FieldsFunc(class, func(r rune) bool { return r == '-' || r == '_' }) {
		if part == name {
			return true
		}
	}
	return false
}

// MarkerRule matches the smallest block containing one of markers. Markers
// are compared case-insensitively against whitespace-collapsed text.
func MarkerRule(markers ...string) Rule {
	norm := make([]string, 0, len(markers))
	for _, m := range markers {
		if m = normalizeText(m); m != "" {
			norm = append(norm, m)
		}
	}
	contains := func(sel *goquery.Selection) bool {
		text := normalizeText(sel.Text())
		for _, m := range norm {
			if strings.Contains(text, m) {
				return true
			}
		}
		return false
	}
	return func(sel *goquery.Selection) bool {
		if !blockTags[goquery.NodeName(sel)] || !contains(sel) {
			return false
		}
		return sel.Find(blockSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
			return contains(s)
		}).Length() == 0
	}
}

// MetadataRule matches leaf blocks whose whole text matches one of patterns.
func MetadataRule(patterns ...*regexp.Regexp) Rule {
	return func(sel *goquery.Selection) bool {
		if !blockTags[goquery.NodeName(sel)] || sel.Find(blockSelector).Length() > 0 {
			return false
		}
		return matchesAny(patterns, strings.TrimSpace(sel.Text()))
	}
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	if s == "" {
		return false
	}
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Sanitizer removes boilerplate elements matched by its rules.
type Sanitizer struct {
	rules    []Rule
	metadata []*regexp.Regexp
}

// NewSanitizer creates a Sanitizer with the default tag and class rules,
// a marker rule for markers and a metadata rule for patterns. Extra rules
// are applied after the built-in ones.
func NewSanitizer(markers []string, patterns []*regexp.Regexp, extra ...Rule) *Sanitizer {
	rules := []Rule{
		TagRule(DefaultTags...),
		ClassRule(DefaultClasses...),
	}
	if len(markers) > 0 {
		rules = append(rules, MarkerRule(markers...))
	}
	if len(patterns) > 0 {
		rules = append(rules, MetadataRule(patterns...))
	}
	rules = append(rules, extra...)
	return &Sanitizer{rules: rules, metadata: patterns}
}

// NewDefaultSanitizer creates a Sanitizer with the default markers and
// metadata patterns.
func NewDefaultSanitizer() *Sanitizer {
	return NewSanitizer(DefaultMarkers, DefaultMetadataPatterns)
}

// Sanitize removes every element matched by a rule. When a matched element
// is a heading, its section (following siblings up to the next heading of
// the same or a higher level) is removed with it.
func (s *Sanitizer) Sanitize(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", nil
	}
	doc, err := parse(rawHTML)
	if err != nil {
		return "", err
	}

	var matched []*goquery.Selection
	removed := make(map[*html.Node]bool)
	doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
		for p := sel.Nodes[0].Parent; p != nil; p = p.Parent {
			if removed[p] {
				return
			}
		}
		for _, rule := range s.rules {
			if rule(sel) {
				removed[sel.Nodes[0]] = true
				matched = append(matched, sel)
				return
			}
		}
	})

	for _, sel := range matched {
		if level := headingLevel(sel.Nodes[0]); level > 0 {
			removeSection(sel.Nodes[0], level)
		}
		sel.Remove()
	}

	return body(doc)
}

// removeSection removes the siblings following a heading up to the next
// heading of level or higher.
func removeSection(n *html.Node, level int) {
	for next := n.NextSibling; next != nil; {
		if l := headingLevel(next); l > 0 && l <= level {
			return
		}
		cur := next
		next = next.NextSibling
		cur.Parent.RemoveChild(cur)
	}
}

// StripMetadata removes lines of text matching a metadata pattern.
func (s *Sanitizer) StripMetadata(text string) string {
	if len(s.metadata) == 0 || text == "" {
		return text
	}
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		if matchesAny(s.metadata, strings.TrimSpace(line)) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
