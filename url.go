package transpress

import (
	"net/url"
	"regexp"
	"strings"
)

// DomainAliases maps known-incorrect aliases of a site's domain to its
// canonical host.
type DomainAliases struct {
	Canonical string
	aliases   map[string]bool
	textRe    *regexp.Regexp
}

// NewDomainAliases returns a DomainAliases rewriting each alias (and its
// "www." form) to canonical. Hosts are compared case-insensitively.
func NewDomainAliases(canonical string, aliases []string) *DomainAliases {
	canonical = strings.ToLower(strings.TrimSpace(canonical))
	d := &DomainAliases{
		Canonical: canonical,
		aliases:   make(map[string]bool),
	}

	var alts []string
	for _, a := range aliases {
		a = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(a), "www."))
		if a == "" || a == canonical || d.aliases[a] {
			continue
		}
		d.aliases[a] = true
		alts = append(alts, regexp.QuoteMeta(a))
	}
	if len(alts) > 0 {
		d.textRe = regexp.MustCompile(`(?i)(https?://)(?:www\.)?(?:` + strings.Join(alts, "|") + `)([^A-Za-z0-9.\-]|$)`)
	}
	return d
}

// IsAlias reports whether host is an alias of the canonical domain.
func (d *DomainAliases) IsAlias(host string) bool {
	if d == nil {
		return false
	}
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	return d.aliases[host]
}

// RewriteURL rewrites raw if its host is an alias. Only the host is
// replaced; the remaining bytes of raw are kept as written, without
// re-encoding. Unparseable or non-alias URLs are returned as is.
func (d *DomainAliases) RewriteURL(raw string) string {
	if d == nil {
		return raw
	}
	s := strings.TrimSpace(raw)
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return raw
	}
	if !d.IsAlias(u.Hostname()) {
		return raw
	}

	// The first "//" starts the authority: a scheme cannot contain '/'.
	start := strings.Index(s, "//") + 2
	end := len(s)
	if i := strings.IndexAny(s[start:], "/?#"); i >= 0 {
		end = start + i
	}
	if at := strings.LastIndex(s[start:end], "@"); at >= 0 {
		start += at + 1
	}
	if port := u.Port(); port != "" {
		end -= len(port) + 1
	}
	return s[:start] + d.Canonical + s[end:]
}

// RewriteText rewrites every http(s) URL in s whose host is an alias.
func (d *DomainAliases) RewriteText(s string) string {
	if d == nil || d.textRe == nil {
		return s
	}
	return d.textRe.ReplaceAllString(s, "${1}"+d.Canonical+"${2}")
}

// NormalizeSourceURL returns the canonical form of a source article URL:
// a scheme is added when missing, the host is lower-cased, a leading "www."
// is dropped, and aliases are rewritten to the canonical domain.
func (d *DomainAliases) NormalizeSourceURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + strings.TrimLeft(s, "/")
	}

	u, err := url.Parse(s)
	if err != nil {
		return s
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if d != nil && d.aliases[host] {
		host = d.Canonical
	}
	u.Host = host
	return u.String()
}
