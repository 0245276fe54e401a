package wordpress_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/transpress"
	"github.com/fwojciec/transpress/wordpress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seoul(t *testing.T) *time.Location {
	t.Helper()
	return time.FixedZone("KST", 9*60*60)
}

func TestClient_CreatePost(t *testing.T) {
	t.Parallel()

	t.Run("sends source dates and decodes response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/wp-json/wp/v2/posts", r.URL.Path)
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "editor", user)
			assert.Equal(t, "app pass", pass)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "제목", body["title"])
			assert.Equal(t, "<p>본문</p>", body["content"])
			assert.Equal(t, "jemok", body["slug"])
			assert.Equal(t, "publish", body["status"])
			assert.Equal(t, "2025-01-10T18:30:00", body["date"])
			assert.Equal(t, "2025-01-10T09:30:00", body["date_gmt"])
			assert.InDelta(t, 77, body["featured_media"], 0)

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":5,"slug":"jemok","link":"https://prodg.kr/jemok/","date":"2025-01-10T18:30:00","date_gmt":"2025-01-10T09:30:00","content":{"rendered":"<p>본문</p>"}}`))
		}))
		defer server.Close()

		c := wordpress.NewClient(server.URL, "editor", "app pass", seoul(t), time.Second)
		published, err := c.CreatePost(context.Background(), &transpress.Post{
			Title:           "제목",
			Slug:            "jemok",
			Content:         "<p>본문</p>",
			Date:            time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC),
			FeaturedMediaID: 77,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(5), published.ID)
		assert.Equal(t, "https://prodg.kr/jemok/", published.Link)
		assert.True(t, published.Date.Equal(time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)))
		assert.True(t, published.DateGMT.Equal(time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)))
	})

	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"unauthorized is auth failure", http.StatusUnauthorized, transpress.EAUTH},
		{"forbidden is auth failure", http.StatusForbidden, transpress.EAUTH},
		{"bad request is publish failure", http.StatusBadRequest, transpress.EPUBLISH},
		{"unprocessable is publish failure", http.StatusUnprocessableEntity, transpress.EPUBLISH},
		{"server error is unavailable", http.StatusInternalServerError, transpress.EUNAVAILABLE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"code":"rest_error","message":"nope"}`))
			}))
			defer server.Close()

			c := wordpress.NewClient(server.URL, "u", "p", nil, time.Second)
			_, err := c.CreatePost(context.Background(), &transpress.Post{
				Title:   "t",
				Content: "c",
				Date:    time.Now(),
			})

			assert.Equal(t, tt.want, transpress.ErrorCode(err))
			assert.Contains(t, transpress.ErrorMessage(err), "rest_error")
		})
	}

	t.Run("treats an accepted post with an unreadable body as published", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`<br /><b>Warning</b>: plugin output{"id":9}`))
		}))
		defer server.Close()

		date := time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)
		c := wordpress.NewClient(server.URL, "u", "p", nil, time.Second)
		published, err := c.CreatePost(context.Background(), &transpress.Post{
			Title:   "t",
			Slug:    "jemok",
			Content: "c",
			Date:    date,
		})

		require.NoError(t, err)
		assert.Zero(t, published.ID)
		assert.Equal(t, "jemok", published.Slug)
		assert.True(t, published.Date.Equal(date))
	})

	t.Run("rejects invalid post without a request", func(t *testing.T) {
		t.Parallel()

		c := wordpress.NewClient("http://127.0.0.1:1", "u", "p", nil, time.Second)
		_, err := c.CreatePost(context.Background(), &transpress.Post{Title: "t"})

		assert.Equal(t, transpress.EINVALID, transpress.ErrorCode(err))
	})
}

func TestClient_UploadMedia(t *testing.T) {
	t.Parallel()

	t.Run("uploads raw body with disposition", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/wp-json/wp/v2/media", r.URL.Path)
			assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
			assert.Equal(t, "attachment; filename=lead.png", r.Header.Get("Content-Disposition"))
			data, _ := io.ReadAll(r.Body)
			assert.Equal(t, []byte("PNGDATA"), data)

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":42,"source_url":"https://prodg.kr/wp-content/uploads/lead.png"}`))
		}))
		defer server.Close()

		c := wordpress.NewClient(server.URL, "u", "p", nil, time.Second)
		item, err := c.UploadMedia(context.Background(), &transpress.Media{
			SourceURL:   "https://jp.pronews.com/lead.png",
			Filename:    "lead.png",
			ContentType: "image/png",
			Data:        []byte("PNGDATA"),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(42), item.ID)
		assert.Equal(t, "https://prodg.kr/wp-content/uploads/lead.png", item.SourceURL)
	})

	t.Run("maps rejected upload to image failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
		}))
		defer server.Close()

		c := wordpress.NewClient(server.URL, "u", "p", nil, time.Second)
		_, err := c.UploadMedia(context.Background(), &transpress.Media{Filename: "a.jpg", Data: []byte("x")})

		assert.Equal(t, transpress.EIMAGE, transpress.ErrorCode(err))
	})

	t.Run("rejects empty media", func(t *testing.T) {
		t.Parallel()

		c := wordpress.NewClient("http://127.0.0.1:1", "u", "p", nil, time.Second)
		_, err := c.UploadMedia(context.Background(), &transpress.Media{Filename: "a.jpg"})

		assert.Equal(t, transpress.EIMAGE, transpress.ErrorCode(err))
	})
}
