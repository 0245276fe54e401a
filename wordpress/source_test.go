package wordpress_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/transpress"
	"github.com/fwojciec/transpress/wordpress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postsPage = `[
  {
    "id": 101,
    "date": "2025-01-10T18:30:00",
    "date_gmt": "2025-01-10T09:30:00",
    "link": "https://www.pronews.jp/news/101/",
    "title": {"rendered": "DaVinci Resolve&nbsp;20 <em>released</em>"},
    "content": {"rendered": "<p>本文</p>"},
    "_embedded": {"wp:featuredmedia": [{"source_url": "https://jp.pronews.com/wp-content/uploads/lead.jpg"}]}
  },
  {
    "id": 100,
    "date": "2025-01-09T08:00:00",
    "date_gmt": "",
    "link": "https://jp.pronews.com/news/100/",
    "title": {"rendered": "旧記事"},
    "content": {"rendered": "<p>古い</p>"}
  }
]`

func TestSource_ListArticles(t *testing.T) {
	t.Parallel()

	t.Run("parses posts and pagination", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/wp-json/wp/v2/posts", r.URL.Path)
			q := r.URL.Query()
			assert.Equal(t, "2", q.Get("page"))
			assert.Equal(t, "50", q.Get("per_page"))
			assert.Equal(t, "date", q.Get("orderby"))
			assert.Equal(t, "desc", q.Get("order"))
			assert.Equal(t, "wp:featuredmedia", q.Get("_embed"))

			w.Header().Set("X-WP-TotalPages", "3")
			_, _ = w.Write([]byte(postsPage))
		}))
		defer server.Close()

		src := wordpress.NewSource(server.URL,
			wordpress.WithPerPage(50),
			wordpress.WithAliases(transpress.NewDomainAliases("jp.pronews.com", []string{"pronews.jp"})),
		)

		page, err := src.ListArticles(context.Background(), 2)

		require.NoError(t, err)
		assert.True(t, page.HasMore)
		require.Len(t, page.Articles, 2)

		first := page.Articles[0]
		assert.Equal(t, "101", first.ID)
		assert.Equal(t, "https://jp.pronews.com/news/101/", first.URL)
		assert.Equal(t, "DaVinci Resolve 20 released", first.Title)
		assert.Equal(t, "<p>本文</p>", first.BodyHTML)
		assert.Equal(t, []string{"https://jp.pronews.com/wp-content/uploads/lead.jpg"}, first.ImageURLs)
		assert.True(t, first.PublishedAt.Equal(time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)))
		_, offset := first.PublishedAt.Zone()
		assert.Equal(t, 9*60*60, offset)

		second := page.Articles[1]
		assert.True(t, second.PublishedAt.Equal(time.Date(2025, 1, 8, 23, 0, 0, 0, time.UTC)))
		assert.Empty(t, second.ImageURLs)
	})

	t.Run("reports last page from total pages header", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-WP-TotalPages", "3")
			_, _ = w.Write([]byte(postsPage))
		}))
		defer server.Close()

		page, err := wordpress.NewSource(server.URL).ListArticles(context.Background(), 3)

		require.NoError(t, err)
		assert.False(t, page.HasMore)
	})

	t.Run("treats invalid page number as end of listing", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"rest_post_invalid_page_number","message":"The page number requested is larger than the number of pages available."}`))
		}))
		defer server.Close()

		page, err := wordpress.NewSource(server.URL).ListArticles(context.Background(), 61)

		require.NoError(t, err)
		assert.Empty(t, page.Articles)
		assert.False(t, page.HasMore)
	})

	t.Run("treats empty page as end of listing", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		page, err := wordpress.NewSource(server.URL).ListArticles(context.Background(), 1)

		require.NoError(t, err)
		assert.False(t, page.HasMore)
	})

	t.Run("returns unavailable for server errors", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := wordpress.NewSource(server.URL).ListArticles(context.Background(), 1)

		assert.Equal(t, transpress.EUNAVAILABLE, transpress.ErrorCode(err))
	})

	t.Run("returns source error for malformed body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"not":"a list"}`))
		}))
		defer server.Close()

		_, err := wordpress.NewSource(server.URL).ListArticles(context.Background(), 1)

		assert.Equal(t, transpress.ESOURCE, transpress.ErrorCode(err))
	})

	t.Run("rejects non-positive page", func(t *testing.T) {
		t.Parallel()

		_, err := wordpress.NewSource("https://example.test").ListArticles(context.Background(), 0)

		assert.Equal(t, transpress.EINVALID, transpress.ErrorCode(err))
	})
}
