package transpress_test

import (
	"testing"

	"github.com/fwojciec/transpress"
	"github.com/stretchr/testify/assert"
)

func TestMakeSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"ascii words", "Hello, World!", "hello-world"},
		{"hangul with version", "다빈치 리졸브 20.3.2", "dabinchi-rijolbeu-20-3-2"},
		{"hangul final consonants", "한국 카메라", "hanguk-kamera"},
		{"katakana", "カメラ", "kamera"},
		{"hiragana digraph", "しゃしん", "shashin"},
		{"small tsu", "ちょっと", "chotto"},
		{"small tsu before ch", "マッチ", "matchi"},
		{"long vowel mark", "ソニー", "soni"},
		{"kanji is dropped", "新製品", ""},
		{"mixed scripts", "Blackmagic 新製品 발표", "blackmagic-balpyo"},
		{"collapses separators", "  --Leading--  trailing  ", "leading-trailing"},
		{"folds latin diacritics", "Ünïcödé — 東京", "unicode"},
		{"folds inside words", "Café Crème", "cafe-creme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, transpress.MakeSlug(tt.title))
		})
	}
}

func TestMakeSlug_DeterministicASCII(t *testing.T) {
	t.Parallel()

	titles := []string{
		"블랙매직 디자인, 새로운 카메라 발표",
		"ブラックマジック・デザイン",
		"Ünïcödé Tïtle №5",
		"📷 カメラ 📷",
	}

	for _, title := range titles {
		first := transpress.MakeSlug(title)
		assert.Equal(t, first, transpress.MakeSlug(title))
		for _, r := range first {
			assert.True(t, (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-', "slug %q has %q", first, r)
		}
		assert.NotContains(t, first, "--")
	}
}

func TestFoldLatin(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Ecole", transpress.FoldLatin("École"))
	assert.Equal(t, "ガイド", transpress.FoldLatin("ガイド"))
	assert.Equal(t, "한국", transpress.FoldLatin("한국"))
}

func TestTruncateSlug(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", transpress.TruncateSlug("short", 80))
	assert.Equal(t, "aaa-bbb", transpress.TruncateSlug("aaa-bbb-ccc", 9))
	assert.Equal(t, "abcd", transpress.TruncateSlug("abcdefghij", 4))
}

func TestSlugFunc(t *testing.T) {
	t.Parallel()

	var s transpress.Slugger = transpress.SlugFunc(transpress.MakeSlug)

	assert.Equal(t, "hello", s.MakeSlug("Hello"))
}
