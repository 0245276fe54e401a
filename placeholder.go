package transpress

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PlaceholderImage is the Tag of a placeholder standing in for an <img>.
const PlaceholderImage = "img"

// Placeholder records the structure a token stands in for while text
// passes through translation.
type Placeholder struct {
	Token string
	Tag   string // h1..h6 or PlaceholderImage
	Class string

	// TextLen is the rune length of the original heading text.
	TextLen int

	Src string
	Alt string
}

// IsHeading reports whether p stands in for a heading.
func (p Placeholder) IsHeading() bool {
	return p.Tag != PlaceholderImage
}

// Placeholders is the per-article mapping from token to structure.
// It is created by Protect and consumed by Restore; it is never shared
// between articles.
type Placeholders struct {
	Nonce string
	Items []Placeholder
}

// NewPlaceholders returns an empty mapping whose tokens embed nonce.
// The nonce must be alphanumeric; it is upper-cased.
func NewPlaceholders(nonce string) *Placeholders {
	return &Placeholders{Nonce: strings.ToUpper(nonce)}
}

// Add registers p under the next free token and returns the token.
func (ps *Placeholders) Add(p Placeholder) string {
	p.Token = "ZXH" + ps.Nonce + "N" + strconv.Itoa(len(ps.Items)) + "ZX"
	ps.Items = append(ps.Items, p)
	return p.Token
}

// Lookup returns the placeholder registered under token.
func (ps *Placeholders) Lookup(token string) (Placeholder, bool) {
	for _, p := range ps.Items {
		if p.Token == token {
			return p, true
		}
	}
	return Placeholder{}, false
}

// Len returns the number of registered placeholders.
func (ps *Placeholders) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.Items)
}

// TokenPattern matches any well-formed token of this mapping.
func (ps *Placeholders) TokenPattern() *regexp.Regexp {
	return regexp.MustCompile(`ZXH` + regexp.QuoteMeta(ps.Nonce) + `N\d+ZX`)
}

// ResiduePattern matches token fragments a translator may leave behind
// after altering case or spacing, so they can be stripped.
func (ps *Placeholders) ResiduePattern() *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?i)zx\s*h\s*%s\s*n\s*\d+\s*zx`, regexp.QuoteMeta(ps.Nonce)))
}
