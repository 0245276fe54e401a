package transpress

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Chunk is a size-bounded slice of text submitted to the translation backend
// as one request.
type Chunk struct {
	Text string

	// Sep is the text that originally followed Text: a paragraph break
	// between paragraphs, whitespace (or nothing) inside a long paragraph.
	Sep string
}

// TranslationUnit is the ordered sequence of chunks derived from one text.
type TranslationUnit []Chunk

// Texts returns the chunk texts in order.
func (u TranslationUnit) Texts() []string {
	out := make([]string, len(u))
	for i, c := range u {
		out[i] = c.Text
	}
	return out
}

// Join reassembles translated chunk texts in order, restoring the original
// separators. translated[i] replaces u[i].Text.
func (u TranslationUnit) Join(translated []string) string {
	var b strings.Builder
	for i, c := range u {
		if i < len(translated) {
			b.WriteString(translated[i])
		}
		b.WriteString(c.Sep)
	}
	return b.String()
}

// paragraphSepRe matches a blank line, including surrounding whitespace.
var paragraphSepRe = regexp.MustCompile(`\n[ \t\r]*\n\s*`)

// ChunkText splits text into chunks of at most limit characters (runes).
// Paragraphs are packed together while they fit. A paragraph longer than
// limit is split at sentence ends, then at whitespace; only a single word
// longer than limit is cut mid-word. A limit <= 0 disables splitting.
func ChunkText(text string, limit int) TranslationUnit {
	if text == "" {
		return nil
	}
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return TranslationUnit{{Text: text}}
	}

	paras, seps := splitParagraphs(text)

	var (
		unit    TranslationUnit
		cur     strings.Builder
		curLen  int
		started bool
		pendSep string
	)
	flush := func() {
		if started {
			unit = append(unit, Chunk{Text: cur.String(), Sep: pendSep})
		}
		cur.Reset()
		curLen = 0
		started = false
		pendSep = ""
	}

	for i, p := range paras {
		pLen := utf8.RuneCountInString(p)

		if pLen > limit {
			flush()
			pieces := splitLong(p, limit)
			pieces[len(pieces)-1].Sep += seps[i]
			unit = append(unit, pieces...)
			continue
		}

		if started && curLen+utf8.RuneCountInString(pendSep)+pLen > limit {
			flush()
		}
		if started {
			cur.WriteString(pendSep)
			curLen += utf8.RuneCountInString(pendSep)
		}
		cur.WriteString(p)
		curLen += pLen
		started = true
		pendSep = seps[i]
	}
	flush()

	return unit
}

// splitParagraphs splits text at blank lines. seps[i] is the separator that
// followed paras[i]; the last separator is empty.
func splitParagraphs(text string) (paras, seps []string) {
	start := 0
	for _, loc := range paragraphSepRe.FindAllStringIndex(text, -1) {
		paras = append(paras, text[start:loc[0]])
		seps = append(seps, text[loc[0]:loc[1]])
		start = loc[1]
	}
	paras = append(paras, text[start:])
	seps = append(seps, "")
	return paras, seps
}

// splitLong splits one over-long paragraph into chunks of at most limit runes.
func splitLong(p string, limit int) []Chunk {
	var units []string
	for _, s := range splitSentences(p) {
		if utf8.RuneCountInString(s) <= limit {
			units = append(units, s)
			continue
		}
		for _, w := range splitWords(s) {
			if utf8.RuneCountInString(w) <= limit {
				units = append(units, w)
				continue
			}
			units = append(units, splitRunes(w, limit)...)
		}
	}

	var chunks []Chunk
	for _, piece := range pack(units, limit) {
		text := strings.TrimRightFunc(piece, unicode.IsSpace)
		sep := piece[len(text):]
		if text == "" && len(chunks) > 0 {
			chunks[len(chunks)-1].Sep += sep
			continue
		}
		chunks = append(chunks, Chunk{Text: text, Sep: sep})
	}
	return chunks
}

// pack greedily concatenates consecutive items while they fit in limit.
func pack(items []string, limit int) []string {
	var (
		out []string
		b   strings.Builder
		n   int
	)
	for _, it := range items {
		l := utf8.RuneCountInString(it)
		if n > 0 && n+l > limit {
			out = append(out, b.String())
			b.Reset()
			n = 0
		}
		b.WriteString(it)
		n += l
	}
	if n > 0 {
		out = append(out, b.String())
	}
	return out
}

// splitSentences cuts s after sentence-ending punctuation, keeping closing
// brackets and trailing whitespace with the sentence they follow.
func splitSentences(s string) []string {
	rs := []rune(s)
	var out []string
	start := 0
	for i := 0; i < len(rs); i++ {
		if !isSentenceEnd(rs, i) {
			continue
		}
		j := i + 1
		for j < len(rs) && isClosing(rs[j]) {
			j++
		}
		for j < len(rs) && unicode.IsSpace(rs[j]) {
			j++
		}
		out = append(out, string(rs[start:j]))
		start = j
		i = j - 1
	}
	if start < len(rs) {
		out = append(out, string(rs[start:]))
	}
	return out
}

func isSentenceEnd(rs []rune, i int) bool {
	switch rs[i] {
	case '。', '！', '？', '!', '?', '．':
		return true
	case '.':
		// "20.3.2" and "e.g" are not sentence ends.
		return i+1 == len(rs) || unicode.IsSpace(rs[i+1]) || isClosing(rs[i+1])
	}
	return false
}

func isClosing(r rune) bool {
	switch r {
	case '」', '』', '）', ')', '"', '\'', '”', '’', ']':
		return true
	}
	return false
}

// splitWords cuts s before each word, keeping whitespace with the word it
// follows.
func splitWords(s string) []string {
	var out []string
	start := 0
	prevSpace := false
	for i, r := range s {
		space := unicode.IsSpace(r)
		if prevSpace && !space && i > start {
			out = append(out, s[start:i])
			start = i
		}
		prevSpace = space
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// splitRunes cuts s into pieces of at most limit runes.
func splitRunes(s string, limit int) []string {
	rs := []rune(s)
	var out []string
	for len(rs) > limit {
		out = append(out, string(rs[:limit]))
		rs = rs[limit:]
	}
	if len(rs) > 0 {
		out = append(out, string(rs))
	}
	return out
}
