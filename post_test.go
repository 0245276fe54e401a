package transpress_test

import (
	"testing"
	"time"

	"github.com/fwojciec/transpress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_Validate(t *testing.T) {
	t.Parallel()

	valid := transpress.Post{Title: "t", Content: "c", Date: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
	require.NoError(t, valid.Validate())

	noTitle := valid
	noTitle.Title = ""
	assert.Equal(t, transpress.EINVALID, transpress.ErrorCode(noTitle.Validate()))

	noDate := valid
	noDate.Date = time.Time{}
	assert.Equal(t, transpress.EINVALID, transpress.ErrorCode(noDate.Validate()))
}

func TestRenderBody(t *testing.T) {
	t.Parallel()

	jst := time.FixedZone("", 9*60*60)

	t.Run("renders header, body and footer", func(t *testing.T) {
		t.Parallel()

		got, err := transpress.RenderBody(transpress.Body{
			Content:     "<p>본문</p>",
			SourceURL:   "https://jp.pronews.com/news/1",
			SourceTitle: "元の<記事>",
			SourceHost:  "jp.pronews.com",
			PublishedAt: time.Date(2025, 3, 1, 14, 30, 0, 0, jst),
		})

		require.NoError(t, err)
		assert.Contains(t, got, "원문 게시시각: 2025-03-01 14:30 (&#43;09:00)")
		assert.Contains(t, got, `<a href="https://jp.pronews.com/news/1" target="_blank" rel="noopener">jp.pronews.com</a>`)
		assert.Contains(t, got, "<p>본문</p>")
		assert.Contains(t, got, "元の&lt;記事&gt;")
		assert.NotContains(t, got, "<figure")
	})

	t.Run("renders featured figure", func(t *testing.T) {
		t.Parallel()

		got, err := transpress.RenderBody(transpress.Body{
			Content:          "<p>x</p>",
			FeaturedImageURL: "https://prodg.kr/wp-content/uploads/a.jpg",
			FeaturedImageAlt: `say "hi"`,
			PublishedAt:      time.Date(2025, 3, 1, 14, 30, 0, 0, jst),
			Labels:           transpress.BodyLabels{SourceTime: "Posted", Source: "Source", ViewOriginal: "Original"},
		})

		require.NoError(t, err)
		assert.Contains(t, got, `<img src="https://prodg.kr/wp-content/uploads/a.jpg" alt="say &#34;hi&#34;" />`)
		assert.Contains(t, got, "Posted: ")
		assert.Contains(t, got, "<strong>Original:</strong>")
	})
}
