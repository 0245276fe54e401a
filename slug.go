package transpress

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLen is the maximum slug length in bytes.
const MaxSlugLen = 80

// Slugger derives a URL slug from a title.
type Slugger interface {
	MakeSlug(title string) string
}

// SlugFunc adapts a function to the Slugger interface.
type SlugFunc func(title string) string

// MakeSlug calls f(title).
func (f SlugFunc) MakeSlug(title string) string {
	return f(title)
}

// MakeSlug creates a lowercase, hyphen-separated ASCII slug from title.
// Latin diacritics are folded, Hangul is romanized with the Revised
// Romanization syllable by syllable, kana with Hepburn; other non-ASCII
// letters are dropped. The result may be empty.
func MakeSlug(title string) string {
	var sb strings.Builder
	prevHyphen := false

	writeWord := func(s string) {
		if s == "" {
			return
		}
		sb.WriteString(s)
		prevHyphen = false
	}
	hyphen := func() {
		if !prevHyphen && sb.Len() > 0 {
			sb.WriteByte('-')
			prevHyphen = true
		}
	}

	rs := []rune(strings.ToLower(FoldLatin(title)))
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			writeWord(string(r))
		case isHangulSyllable(r):
			writeWord(romanizeHangul(r))
		case isKana(r):
			roma, n := romanizeKana(rs[i:])
			writeWord(roma)
			i += n - 1
		case unicode.IsLetter(r) || unicode.IsMark(r):
			// Dropped without separating the surrounding word.
		default:
			hyphen()
		}
	}

	return strings.Trim(sb.String(), "-")
}

var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldLatin strips diacritics from Latin letters ("Café" becomes "Cafe").
// Other scripts are left untouched so kana voicing marks and Hangul
// survive.
func FoldLatin(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r > unicode.MaxASCII && unicode.Is(unicode.Latin, r) {
			if folded, _, err := transform.String(foldMarks, string(r)); err == nil {
				sb.WriteString(folded)
				continue
			}
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// TruncateSlug shortens slug to at most max bytes, cutting at the last
// hyphen that fits when there is one.
func TruncateSlug(slug string, max int) string {
	if max <= 0 || len(slug) <= max {
		return slug
	}
	cut := slug[:max]
	if i := strings.LastIndexByte(cut, '-'); i > 0 {
		cut = cut[:i]
	}
	return strings.Trim(cut, "-")
}

const (
	hangulBase  = 0xAC00
	hangulLast  = 0xD7A3
	hangulVowel = 21
	hangulFinal = 28
)

var (
	hangulInitials = [...]string{
		"g", "kk", "n", "d", "tt", "r", "m", "b", "pp", "s", "ss",
		"", "j", "jj", "ch", "k", "t", "p", "h",
	}
	hangulVowels = [...]string{
		"a", "ae", "ya", "yae", "eo", "e", "yeo", "ye", "o", "wa", "wae",
		"oe", "yo", "u", "wo", "we", "wi", "yu", "eu", "ui", "i",
	}
	hangulFinals = [...]string{
		"", "k", "k", "k", "n", "n", "n", "t", "l", "k", "m", "p", "l", "l",
		"p", "l", "m", "p", "p", "t", "t", "ng", "t", "t", "k", "t", "p", "t",
	}
)

func isHangulSyllable(r rune) bool {
	return r >= hangulBase && r <= hangulLast
}

func romanizeHangul(r rune) string {
	s := int(r - hangulBase)
	l := s / (hangulVowel * hangulFinal)
	v := (s % (hangulVowel * hangulFinal)) / hangulFinal
	t := s % hangulFinal
	return hangulInitials[l] + hangulVowels[v] + hangulFinals[t]
}

var hiragana = map[rune]string{
	'あ': "a", 'い': "i", 'う': "u", 'え': "e", 'お': "o",
	'か': "ka", 'き': "ki", 'く': "ku", 'け': "ke", 'こ': "ko",
	'さ': "sa", 'し': "shi", 'す': "su", 'せ': "se", 'そ': "so",
	'た': "ta", 'ち': "chi", 'つ': "tsu", 'て': "te", 'と': "to",
	'な': "na", 'に': "ni", 'ぬ': "nu", 'ね': "ne", 'の': "no",
	'は': "ha", 'ひ': "hi", 'ふ': "fu", 'へ': "he", 'ほ': "ho",
	'ま': "ma", 'み': "mi", 'む': "mu", 'め': "me", 'も': "mo",
	'や': "ya", 'ゆ': "yu", 'よ': "yo",
	'ら': "ra", 'り': "ri", 'る': "ru", 'れ': "re", 'ろ': "ro",
	'わ': "wa", 'ゐ': "i", 'ゑ': "e", 'を': "o", 'ん': "n",
	'が': "ga", 'ぎ': "gi", 'ぐ': "gu", 'げ': "ge", 'ご': "go",
	'ざ': "za", 'じ': "ji", 'ず': "zu", 'ぜ': "ze", 'ぞ': "zo",
	'だ': "da", 'ぢ': "ji", 'づ': "zu", 'で': "de", 'ど': "do",
	'ば': "ba", 'び': "bi", 'ぶ': "bu", 'べ': "be", 'ぼ': "bo",
	'ぱ': "pa", 'ぴ': "pi", 'ぷ': "pu", 'ぺ': "pe", 'ぽ': "po",
	'ぁ': "a", 'ぃ': "i", 'ぅ': "u", 'ぇ': "e", 'ぉ': "o",
	'ゃ': "ya", 'ゅ': "yu", 'ょ': "yo", 'ゎ': "wa", 'ゔ': "vu",
}

func isKana(r rune) bool {
	return (r >= 'ぁ' && r <= 'ゖ') || (r >= 'ァ' && r <= 'ヶ') || r == 'ー'
}

// toHiragana maps katakana onto hiragana.
func toHiragana(r rune) rune {
	if r >= 'ァ' && r <= 'ヶ' {
		return r - ('ァ' - 'ぁ')
	}
	return r
}

// romanizeKana romanizes the kana syllable at the start of rs and returns
// it with the number of runes consumed.
func romanizeKana(rs []rune) (string, int) {
	r := toHiragana(rs[0])
	switch r {
	case 'ー':
		return "", 1
	case 'っ':
		if len(rs) > 1 && isKana(rs[1]) {
			next, n := romanizeKana(rs[1:])
			if next != "" && !strings.ContainsRune("aeiou", rune(next[0])) {
				if strings.HasPrefix(next, "ch") {
					return "t" + next, n + 1
				}
				return next[:1] + next, n + 1
			}
			return next, n + 1
		}
		return "", 1
	}

	base, ok := hiragana[r]
	if !ok {
		return "", 1
	}
	if len(rs) > 1 && strings.HasSuffix(base, "i") && len(base) > 1 {
		switch toHiragana(rs[1]) {
		case 'ゃ', 'ゅ', 'ょ':
			small := hiragana[toHiragana(rs[1])]
			stem := base[:len(base)-1]
			switch stem {
			case "sh", "ch", "j":
				return stem + small[1:], 2
			}
			return stem + small, 2
		}
	}
	return base, 1
}
