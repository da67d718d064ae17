package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/sharehub/content"
	"github.com/eringen/sharehub/engagement"
	"github.com/eringen/sharehub/meta"
)

func render(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func metaContent(doc *goquery.Document, attr, key string) string {
	v, _ := doc.Find(`meta[` + attr + `="` + key + `"]`).First().Attr("content")
	return v
}

func testPostPage() PostPage {
	r := meta.NewResolver(meta.Config{SiteURL: "https://share.example.com"})
	p := content.Post{
		ID:           "p1",
		Title:        "Cute <cats>",
		Description:  "Watch this",
		VideoURL:     "https://youtu.be/dQw4w9WgXcQ",
		RedirectLink: "https://offer.example.com/go",
		PopunderAd:   `<script src="//ads.example.com/pop.js"></script>`,
		CreatedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	md := r.ResolveDisplayMetadata(p, "Ab12Cd", meta.RequestContext{})
	return PostPage{
		Meta:      md,
		JSONLD:    meta.ArticleJSONLD(md),
		Post:      p,
		LinkID:    "Ab12Cd",
		Profile:   engagement.ProfileName("p1"),
		PostedAgo: engagement.PostedAgo("p1"),
		Stats:     engagement.Stats{Likes: 1234, Comments: 5, Shares: 6, Views: 1000000},
		Comments: []engagement.CommentView{
			{User: "User12", Initials: "US", Text: "hi", Time: "Just now", Real: true},
		},
	}
}

func TestPostHeadTags(t *testing.T) {
	doc := render(t, Post(testPostPage()))

	assert.Equal(t, "Cute <cats>", doc.Find("title").Text())
	assert.Equal(t, "https://share.example.com/post/Ab12Cd", metaContent(doc, "property", "og:url"))
	assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", metaContent(doc, "property", "og:image"))
	assert.Equal(t, "summary_large_image", metaContent(doc, "name", "twitter:card"))
	assert.Equal(t, "share.example.com", metaContent(doc, "name", "twitter:domain"))
	assert.Equal(t, "2024-05-01T12:00:00Z", metaContent(doc, "property", "article:published_time"))
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", metaContent(doc, "property", "og:video"))
	assert.Equal(t, 4, doc.Find(`meta[property="og:image"]`).Length())

	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	assert.Equal(t, "https://share.example.com/post/Ab12Cd", canonical)

	ld := doc.Find(`script[type="application/ld+json"]`).Text()
	assert.Contains(t, ld, `"@type":"Article"`)
}

func TestPostBodyAndOverlay(t *testing.T) {
	doc := render(t, Post(testPostPage()))

	src, ok := doc.Find(".post-media iframe").Attr("src")
	require.True(t, ok)
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", src)

	overlay := doc.Find("#ad-overlay")
	redirect, _ := overlay.Attr("data-redirect")
	assert.Equal(t, "https://offer.example.com/go", redirect)
	pop, _ := overlay.Attr("data-popunder-src")
	assert.Equal(t, "https://ads.example.com/pop.js", pop)

	assert.Equal(t, "👍 1,234", doc.Find("#like-count").Text())
	assert.Equal(t, 1, doc.Find(".comment.real").Length())
}

func TestPostUploadedImage(t *testing.T) {
	pp := testPostPage()
	pp.Post.VideoURL = ""
	pp.Post.MediaURL = "https://cdn.example.com/a.jpg"
	pp.Post.MediaType = content.MediaTypeImage
	doc := render(t, Post(pp))

	src, _ := doc.Find(".post-media img").Attr("src")
	assert.Equal(t, "https://cdn.example.com/a.jpg", src)
}

func TestNotFound(t *testing.T) {
	md := meta.NewResolver(meta.Config{}).NotFoundMetadata()
	doc := render(t, NotFound(md))

	assert.Equal(t, md.Title, doc.Find("title").Text())
	assert.Equal(t, "noindex", metaContent(doc, "name", "robots"))
	assert.Contains(t, doc.Find("h1").Text(), "not found")
}

func TestHomeShowsErrorAndCreatedLink(t *testing.T) {
	doc := render(t, Home(HomeData{
		Site:    SiteConfig{Name: "Hub"},
		CSRF:    "tok",
		Error:   "either title or description is required",
		Form:    content.CreatePostInput{RedirectLink: "https://x.example.com"},
		Created: &CreatedLink{LinkID: "Ab12Cd", URL: "https://h.example.com/post/Ab12Cd", Title: "t"},
	}))

	assert.Contains(t, doc.Find("#form-error").Text(), "title or description")
	v, _ := doc.Find("#created-link input").Attr("value")
	assert.Equal(t, "https://h.example.com/post/Ab12Cd", v)
	csrf, _ := doc.Find(`form[action="/posts/"] input[name="_csrf"]`).Attr("value")
	assert.Equal(t, "tok", csrf)
	rl, _ := doc.Find(`input[name="redirect_link"]`).Attr("value")
	assert.Equal(t, "https://x.example.com", rl)
}

func TestLinksTable(t *testing.T) {
	doc := render(t, Links(LinksData{
		Site:    SiteConfig{Name: "Hub"},
		BaseURL: "https://h.example.com",
		Links: []content.GeneratedLink{
			{LinkID: "aaaaa1", Title: "one"},
			{LinkID: "aaaaa2", Title: "two"},
		},
	}))

	assert.Equal(t, 2, doc.Find("table.links tbody tr").Length())
	href, _ := doc.Find("#link-aaaaa2 a").Attr("href")
	assert.Equal(t, "https://h.example.com/post/aaaaa2", href)

	empty := render(t, Links(LinksData{Site: SiteConfig{Name: "Hub"}}))
	assert.Equal(t, 1, empty.Find(".empty").Length())
}

func TestLoginError(t *testing.T) {
	doc := render(t, Login(LoginData{Site: SiteConfig{Name: "Hub"}, ShowError: true}))
	assert.Equal(t, 1, doc.Find("#login-error").Length())

	doc = render(t, Login(LoginData{Site: SiteConfig{Name: "Hub"}}))
	assert.Equal(t, 0, doc.Find("#login-error").Length())
}

func TestServerError(t *testing.T) {
	doc := render(t, ServerError())
	assert.True(t, strings.Contains(doc.Find("h1").Text(), "Something went wrong"))
}

func TestPopunderSource(t *testing.T) {
	tests := []struct {
		ad, src, inline string
	}{
		{"", "", ""},
		{`<script src='//a.example.com/x.js'></script>`, "https://a.example.com/x.js", ""},
		{"https://a.example.com/y.js", "https://a.example.com/y.js", ""},
		{"<script>var a = 1;</script>", "", "var a = 1;"},
	}
	for _, tt := range tests {
		src, inline := PopunderSource(tt.ad)
		assert.Equal(t, tt.src, src, tt.ad)
		assert.Equal(t, tt.inline, inline, tt.ad)
	}
}

func TestThousands(t *testing.T) {
	assert.Equal(t, "0", Thousands(0))
	assert.Equal(t, "999", Thousands(999))
	assert.Equal(t, "1,000", Thousands(1000))
	assert.Equal(t, "100,999", Thousands(100999))
	assert.Equal(t, "-12,345", Thousands(-12345))
}
