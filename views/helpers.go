package views

import (
	"html/template"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/eringen/sharehub/content"
	"github.com/eringen/sharehub/engagement"
	"github.com/eringen/sharehub/meta"
)

// buildURL joins path segments onto a base URL.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	return u.String()
}

var scriptSrcRe = regexp.MustCompile(`(?i)src=['"]([^'"]+)['"]`)
var scriptTagRe = regexp.MustCompile(`(?i)<script[^>]*>|</script>`)

// PopunderSource splits a popunder ad snippet into either an external script
// URL or inline script code. At most one of the results is non-empty.
func PopunderSource(ad string) (src, inline string) {
	ad = strings.TrimSpace(ad)
	if ad == "" {
		return "", ""
	}
	if m := scriptSrcRe.FindStringSubmatch(ad); m != nil {
		src = m[1]
	} else if strings.HasPrefix(ad, "http") || strings.HasPrefix(ad, "//") {
		src = ad
	}
	if src != "" {
		if strings.HasPrefix(src, "//") {
			src = "https:" + src
		}
		return src, ""
	}
	return "", strings.TrimSpace(scriptTagRe.ReplaceAllString(ad, ""))
}

// Thousands formats n with comma separators.
func Thousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// postBody describes the main media block of a post page.
type postBody struct {
	Kind   string // image, video, iframe, embed or empty
	Src    string
	Poster string
	Embed  template.HTML
}

// bodyFor picks what to show in the post card: uploaded media first, then a
// recognised video URL, then the raw embed code.
func bodyFor(p content.Post, thumb string) postBody {
	if p.MediaURL != "" {
		if p.MediaType == content.MediaTypeVideo {
			return postBody{Kind: "video", Src: p.MediaURL, Poster: p.ThumbnailURL}
		}
		return postBody{Kind: "image", Src: p.MediaURL}
	}
	if v := meta.ExtractVideoID(p.VideoURL); v != nil {
		if v.Platform == meta.PlatformDirect {
			return postBody{Kind: "video", Src: v.EmbedURL, Poster: thumb}
		}
		return postBody{Kind: "iframe", Src: v.EmbedURL}
	}
	if strings.TrimSpace(p.EmbedCode) != "" {
		// embed code is entered by the site operator behind the auth gate
		return postBody{Kind: "embed", Embed: template.HTML(p.EmbedCode)}
	}
	if thumb != "" {
		return postBody{Kind: "image", Src: thumb}
	}
	return postBody{}
}

var funcs = template.FuncMap{
	"thousands": Thousands,
	"initials":  engagement.Initials,
	"page":      page,
	"buildURL":  buildURL,
	"truncate":  content.Truncate,
	"body": func(pp PostPage) postBody {
		return bodyFor(pp.Post, pp.Meta.Thumbnail.Value)
	},
	"popunder": func(ad string) map[string]string {
		src, inline := PopunderSource(ad)
		return map[string]string{"Src": src, "Inline": inline}
	},
	"jsonld": func(s string) template.JS { return template.JS(s) },
	"date": func(l content.GeneratedLink) string {
		if l.CreatedAt.IsZero() {
			return ""
		}
		return l.CreatedAt.UTC().Format("2006-01-02 15:04")
	},
}

// page adapts admin page data to the shared header template.
func page(data any, title string) map[string]any {
	m := map[string]any{"Title": title}
	switch d := data.(type) {
	case HomeData:
		m["Site"], m["CSRF"] = d.Site, d.CSRF
	case LinksData:
		m["Site"], m["CSRF"] = d.Site, d.CSRF
	}
	return m
}
