package goquery_test

import (
	"testing"

	"github.com/fwojciec/transpress"
	"github.com/fwojciec/transpress/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAliases() *transpress.DomainAliases {
	return transpress.NewDomainAliases("jp.pronews.com", []string{"pronews.jp", "www.pronews.jp", "ko.pronews.com"})
}

func TestLinkNormalizer_NormalizeLinks(t *testing.T) {
	t.Parallel()

	t.Run("rewrites hrefs, image sources and text URLs", func(t *testing.T) {
		t.Parallel()

		n := goquery.NewLinkNormalizer(newAliases())

		got, err := n.NormalizeLinks(`<p><a href="https://www.pronews.jp/news/1?x=1">link</a> see https://ko.pronews.com/a and https://example.com/b</p><img src="http://pronews.jp/img.jpg"/>`)

		require.NoError(t, err)
		assert.Contains(t, got, `href="https://jp.pronews.com/news/1?x=1"`)
		assert.Contains(t, got, `see https://jp.pronews.com/a and https://example.com/b`)
		assert.Contains(t, got, `src="http://jp.pronews.com/img.jpg"`)
	})

	t.Run("keeps paths and queries as written", func(t *testing.T) {
		t.Parallel()

		n := goquery.NewLinkNormalizer(newAliases())

		got, err := n.NormalizeLinks(`<a href="https://pronews.jp/記事/a b?q=日本&x=1">x</a>`)

		require.NoError(t, err)
		assert.Equal(t, `<a href="https://jp.pronews.com/記事/a b?q=日本&amp;x=1">x</a>`, got)
	})

	t.Run("leaves other domains untouched", func(t *testing.T) {
		t.Parallel()

		n := goquery.NewLinkNormalizer(newAliases())

		got, err := n.NormalizeLinks(`<a href="https://pronews.jp.evil.com/x">x</a>`)

		require.NoError(t, err)
		assert.Equal(t, `<a href="https://pronews.jp.evil.com/x">x</a>`, got)
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		n := goquery.NewLinkNormalizer(newAliases())
		in := `<p>https://pronews.jp/a <a href="https://ko.pronews.com/b">b</a></p>`

		once, err := n.NormalizeLinks(in)
		require.NoError(t, err)
		twice, err := n.NormalizeLinks(once)
		require.NoError(t, err)

		assert.Equal(t, once, twice)
	})
}

func TestLinkNormalizer_ResolveLinks(t *testing.T) {
	t.Parallel()

	t.Run("resolves relative images and links against the article URL", func(t *testing.T) {
		t.Parallel()

		n := goquery.NewLinkNormalizer(nil)

		got, err := n.ResolveLinks(`<p><a href="../tag/camera">tag</a></p><img src="/wp-content/uploads/x.jpg" alt="pic"><img src="//cdn.pronews.jp/y.jpg">`, "https://jp.pronews.com/news/2025/1.html")

		require.NoError(t, err)
		assert.Contains(t, got, `href="https://jp.pronews.com/tag/camera"`)
		assert.Contains(t, got, `src="https://jp.pronews.com/wp-content/uploads/x.jpg"`)
		assert.Contains(t, got, `src="https://cdn.pronews.jp/y.jpg"`)
	})

	t.Run("leaves absolute URLs, fragments and other schemes as written", func(t *testing.T) {
		t.Parallel()

		n := goquery.NewLinkNormalizer(nil)
		in := `<a href="#top">top</a><a href="mailto:info@pronews.jp">mail</a><img src="https://pronews.jp/記事/a b.jpg"/>`

		got, err := n.ResolveLinks(in, "https://jp.pronews.com/news/1.html")

		require.NoError(t, err)
		assert.Equal(t, `<a href="#top">top</a><a href="mailto:info@pronews.jp">mail</a><img src="https://pronews.jp/記事/a b.jpg"/>`, got)
	})

	t.Run("is a no-op without an absolute base", func(t *testing.T) {
		t.Parallel()

		n := goquery.NewLinkNormalizer(nil)
		in := `<img src="/x.jpg">`

		got, err := n.ResolveLinks(in, "")

		require.NoError(t, err)
		assert.Equal(t, in, got)
	})
}
