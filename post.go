package transpress

import (
	"bytes"
	"context"
	"html/template"
	"time"
)

// Post is a create request for a destination post.
type Post struct {
	Title   string
	Slug    string
	Content string
	Status  string

	// Date is the source article's publication time. It is sent both in
	// the destination zone and in UTC; processing time is never used.
	Date time.Time

	// FeaturedMediaID is zero when the post has no featured image.
	FeaturedMediaID int64
}

// Validate returns an error if the post contains invalid fields.
func (p *Post) Validate() error {
	if p.Title == "" {
		return Errorf(EINVALID, "post title required")
	}
	if p.Content == "" {
		return Errorf(EINVALID, "post content required")
	}
	if p.Date.IsZero() {
		return Errorf(EINVALID, "post date required")
	}
	return nil
}

// PublishedPost is a post as created by the destination CMS.
type PublishedPost struct {
	ID      int64
	Slug    string
	Link    string
	Date    time.Time
	DateGMT time.Time
	Content string
}

// PostService creates destination posts.
type PostService interface {
	// CreatePost publishes p. Returns EAUTH when credentials are rejected,
	// EPUBLISH when the post itself is rejected and EUNAVAILABLE on
	// transport failures.
	CreatePost(ctx context.Context, p *Post) (*PublishedPost, error)
}

// Media is a downloaded binary ready for upload.
type Media struct {
	SourceURL   string
	Filename    string
	ContentType string
	Data        []byte
}

// MediaItem is an uploaded media object in the destination CMS.
type MediaItem struct {
	ID        int64
	SourceURL string
}

// MediaService stores media in the destination CMS.
type MediaService interface {
	UploadMedia(ctx context.Context, m *Media) (*MediaItem, error)
}

// Downloader retrieves remote media.
type Downloader interface {
	Download(ctx context.Context, url string) (*Media, error)
}

// Relocation maps an original image URL to its destination copy.
type Relocation struct {
	Original string
	New      string
	MediaID  int64
}

// BodyLabels holds the user-facing strings of a composed post body.
type BodyLabels struct {
	SourceTime   string `yaml:"source_time"`
	Source       string `yaml:"source"`
	ViewOriginal string `yaml:"view_original"`
}

// DefaultBodyLabels are the Korean labels of the default destination.
var DefaultBodyLabels = BodyLabels{
	SourceTime:   "원문 게시시각",
	Source:       "출처",
	ViewOriginal: "원문 기사 보기",
}

// Body is the input to RenderBody.
type Body struct {
	// Content is the translated, scrubbed article HTML.
	Content string

	FeaturedImageURL string
	FeaturedImageAlt string

	SourceURL   string
	SourceTitle string
	SourceHost  string

	// PublishedAt is rendered in its own location.
	PublishedAt time.Time

	Labels BodyLabels
}

var bodyTemplate = template.Must(template.New("body").Parse(
	`{{if .FeaturedImageURL}}<figure class="transpress-featured"><img src="{{.FeaturedImageURL}}" alt="{{.FeaturedImageAlt}}" /></figure>
{{end}}<div class="transpress-article">
<div class="transpress-meta">
<p>{{.Labels.SourceTime}}: {{.Time}}</p>
<p>{{.Labels.Source}}: <a href="{{.SourceURL}}" target="_blank" rel="noopener">{{.SourceHost}}</a></p>
</div>
{{.HTML}}
</div>
<hr />
<p class="transpress-original"><strong>{{.Labels.ViewOriginal}}:</strong> <a href="{{.SourceURL}}" target="_blank" rel="noopener">{{.SourceTitle}}</a></p>`))

// RenderBody composes the final post content: an optional featured figure,
// a metadata header, the translated body and a link to the original.
// Every field except Content is escaped.
func RenderBody(b Body) (string, error) {
	if b.Labels == (BodyLabels{}) {
		b.Labels = DefaultBodyLabels
	}
	var buf bytes.Buffer
	err := bodyTemplate.Execute(&buf, struct {
		Body
		Time string
		HTML template.HTML
	}{
		Body: b,
		Time: b.PublishedAt.Format("2006-01-02 15:04 (-07:00)"),
		HTML: template.HTML(b.Content),
	})
	if err != nil {
		return "", Errorf(EINTERNAL, "render body: %v", err)
	}
	return buf.String(), nil
}
