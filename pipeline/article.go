package pipeline

import (
	"context"
	"strings"

	"github.com/fwojciec/transpress"
)

// buildPost transforms a into a post ready to publish. Errors carry the
// failing stage's code; none of them is fatal for the run.
func (p *Pipeline) buildPost(ctx context.Context, a *transpress.SourceArticle, report *Report) (*transpress.Post, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	log := p.logger().With("key", a.Key())

	body := a.BodyHTML
	primary := append([]string(nil), a.ImageURLs...)
	if strings.TrimSpace(body) == "" {
		fetched, images, err := p.fetchBody(ctx, a)
		if err != nil {
			return nil, err
		}
		body = fetched
		if len(primary) == 0 {
			primary = images
		}
	}

	if p.Links != nil {
		resolved, err := p.Links.ResolveLinks(body, a.URL)
		if err != nil {
			return nil, demote(transpress.EINVALID, err, "resolve links")
		}
		body = resolved
	}

	clean, err := p.Sanitizer.Sanitize(body)
	if err != nil {
		return nil, demote(transpress.EINVALID, err, "sanitize")
	}
	text, placeholders, err := p.Headings.Protect(clean)
	if err != nil {
		return nil, demote(transpress.EINVALID, err, "protect headings")
	}
	text = p.Sanitizer.StripMetadata(text)
	if strings.TrimSpace(text) == "" {
		return nil, transpress.Errorf(transpress.EINVALID, "article %s has no body text", a.Key())
	}

	translated, err := p.Translator.Translate(ctx, text)
	if err != nil {
		return nil, demote(transpress.ETRANSLATE, err, "translate body")
	}
	title, err := p.Translator.Translate(ctx, a.Title)
	if err != nil {
		return nil, demote(transpress.ETRANSLATE, err, "translate title")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = a.Title
	}

	content, missing := p.Headings.Restore(translated, placeholders)
	if len(missing) > 0 {
		log.Warn("placeholders lost in translation", "missing", len(missing), "total", placeholders.Len())
	}
	if p.Scrubber != nil {
		content = p.Scrubber.Scrub(content)
	}

	for i, u := range primary {
		primary[i] = p.Aliases.RewriteURL(u)
	}
	var featured string
	if len(primary) > 0 && !p.inBody(content, primary[0]) {
		featured = primary[0]
	}

	composed, err := transpress.RenderBody(transpress.Body{
		Content:          content,
		FeaturedImageURL: featured,
		FeaturedImageAlt: title,
		SourceURL:        a.URL,
		SourceTitle:      a.Title,
		SourceHost:       hostOf(a.URL),
		PublishedAt:      a.PublishedAt,
		Labels:           p.Labels,
	})
	if err != nil {
		return nil, err
	}
	if p.Links != nil {
		composed, err = p.Links.NormalizeLinks(composed)
		if err != nil {
			return nil, demote(transpress.EINVALID, err, "normalize links")
		}
	}

	var featuredID int64
	if p.Images != nil && !p.DryRun {
		relocated, relocations, err := p.Images.RelocateImages(ctx, composed, primary)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			log.Warn("image relocation skipped", "err", err)
		default:
			composed = relocated
		}
		for _, rel := range relocations {
			if rel.New == "" {
				report.ImageFallbacks++
				continue
			}
			report.ImagesRelocated++
			if featuredID == 0 && len(primary) > 0 && rel.Original == primary[0] {
				featuredID = rel.MediaID
			}
		}
	}

	post := &transpress.Post{
		Title:           title,
		Slug:            p.slug(a, title),
		Content:         composed,
		Status:          p.PostStatus,
		Date:            a.PublishedAt,
		FeaturedMediaID: featuredID,
	}
	if err := post.Validate(); err != nil {
		return nil, err
	}
	return post, nil
}

// fetchBody recovers the body of an article listed without one by fetching
// its page and running the extractors in order. It also returns the
// page's lead images.
func (p *Pipeline) fetchBody(ctx context.Context, a *transpress.SourceArticle) (string, []string, error) {
	if p.Fetcher == nil || a.URL == "" {
		return "", nil, transpress.Errorf(transpress.ENOTFOUND, "article %s has no body", a.Key())
	}

	delays := p.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	var page string
	err := Retry(ctx, delays, isTransient,
		func(attempt int, err error) {
			p.logger().Warn("retrying body fetch", "url", a.URL, "attempt", attempt, "err", err)
		},
		func(ctx context.Context) error {
			if err := p.PageLimiter.WaitURL(ctx, a.URL); err != nil {
				return err
			}
			var err error
			page, err = p.Fetcher.Fetch(ctx, a.URL)
			return err
		})
	if err != nil {
		return "", nil, demote(transpress.ENOTFOUND, err, "fetch body of %s", a.URL)
	}

	var images []string
	var body string
	for _, ex := range p.Extractors {
		res, err := ex.Extract(page)
		if err != nil || strings.TrimSpace(res.ContentHTML) == "" {
			continue
		}
		body = res.ContentHTML
		if res.Image != "" {
			images = append(images, res.Image)
		}
		break
	}
	if body == "" {
		return "", nil, transpress.Errorf(transpress.ENOTFOUND, "no article body found at %s", a.URL)
	}
	if p.MainImage != nil {
		if img := p.MainImage(page, a.URL); img != "" && (len(images) == 0 || images[0] != img) {
			images = append([]string{img}, images...)
		}
	}
	return body, images, nil
}

// inBody reports whether src is already an img src in content.
func (p *Pipeline) inBody(content, src string) bool {
	if p.Rewriter == nil {
		return false
	}
	srcs, err := p.Rewriter.ImageSources(content)
	if err != nil {
		return false
	}
	for _, s := range srcs {
		if s == src {
			return true
		}
	}
	return false
}

// slug derives the post slug from the translated title, falling back to
// the source title and then to the source ID.
func (p *Pipeline) slug(a *transpress.SourceArticle, title string) string {
	slugger := p.Slugger
	if slugger == nil {
		slugger = transpress.SlugFunc(transpress.MakeSlug)
	}
	slug := slugger.MakeSlug(title)
	if slug == "" {
		slug = slugger.MakeSlug(a.Title)
	}
	if slug == "" {
		id := transpress.MakeSlug(a.ID)
		if id == "" {
			id = ComputeHash(a.Key())
		}
		slug = "article-" + id
	}
	return transpress.TruncateSlug(slug, transpress.MaxSlugLen)
}

func hostOf(rawURL string) string {
	host := rawURL
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
