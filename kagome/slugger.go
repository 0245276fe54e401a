// Package kagome builds readable slugs for Japanese titles by replacing
// words with their kana readings from the IPA dictionary.
package kagome

import (
	"strings"
	"unicode"

	"github.com/fwojciec/transpress"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Ensure Slugger implements transpress.Slugger at compile time.
var _ transpress.Slugger = (*Slugger)(nil)

// Slugger romanizes titles via transpress.MakeSlug after converting
// Japanese words to katakana readings.
type Slugger struct {
	tok *tokenizer.Tokenizer
}

// NewSlugger loads the IPA dictionary and returns a Slugger.
func NewSlugger() (*Slugger, error) {
	tok, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, transpress.Errorf(transpress.EINTERNAL, "load tokenizer: %v", err)
	}
	return &Slugger{tok: tok}, nil
}

// MakeSlug returns a lowercase, hyphen-separated ASCII slug for title.
func (s *Slugger) MakeSlug(title string) string {
	if !containsJapanese(title) {
		return transpress.MakeSlug(title)
	}
	return transpress.MakeSlug(s.readings(title))
}

// readings replaces Japanese tokens with their readings, separated by
// spaces so each word becomes its own slug segment.
func (s *Slugger) readings(text string) string {
	var sb strings.Builder
	for _, t := range s.tok.Tokenize(text) {
		if !containsJapanese(t.Surface) {
			sb.WriteString(t.Surface)
			continue
		}
		word := t.Surface
		if r, ok := t.Reading(); ok && r != "" && r != "*" {
			word = r
		}
		sb.WriteByte(' ')
		sb.WriteString(word)
		sb.WriteByte(' ')
	}
	return sb.String()
}

func containsJapanese(text string) bool {
	for _, r := range text {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}
