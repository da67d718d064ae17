package meta

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var srcAttrRe = regexp.MustCompile(`(?i)src=['"]([^'"]+)['"]`)

// embedSelectors lists where embed snippets keep the URL of the embedded
// content, in the order they are tried.
var embedSelectors = []struct {
	selector string
	attr     string
}{
	{"iframe[src]", "src"},
	{"blockquote.tiktok-embed[cite]", "cite"},
	{"video[src]", "src"},
	{"video source[src]", "src"},
}

// EmbedSourceURL pulls the URL of the embedded content out of raw embed
// markup. A source that is a recognizable video wins over earlier ones; it
// returns "" when the snippet carries no source at all.
func EmbedSourceURL(embedCode string) string {
	sources := embedSources(embedCode)
	for _, src := range sources {
		if ExtractVideoID(src) != nil {
			return src
		}
	}
	if len(sources) > 0 {
		return sources[0]
	}
	return ""
}

// embedSources lists every candidate source URL in embedCode, in selector
// order and then document order.
func embedSources(embedCode string) []string {
	embedCode = strings.TrimSpace(embedCode)
	if embedCode == "" {
		return nil
	}
	var out []string
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(embedCode)); err == nil {
		for _, s := range embedSelectors {
			doc.Find(s.selector).Each(func(_ int, sel *goquery.Selection) {
				if v := strings.TrimSpace(sel.AttrOr(s.attr, "")); v != "" {
					out = append(out, absolutizeScheme(v))
				}
			})
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, m := range srcAttrRe.FindAllStringSubmatch(embedCode, -1) {
		out = append(out, absolutizeScheme(m[1]))
	}
	return out
}

// absolutizeScheme gives protocol-relative URLs an https scheme.
func absolutizeScheme(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

// ExtractEmbedVideo recognizes the video referenced by embed markup. Only
// platforms that are embedded via iframe players are accepted; the first
// accepted source wins.
func ExtractEmbedVideo(embedCode string) *VideoDescriptor {
	for _, src := range embedSources(embedCode) {
		v := ExtractVideoID(src)
		if v == nil {
			continue
		}
		switch v.Platform {
		case PlatformYouTube, PlatformVimeo, PlatformTikTok:
			return v
		}
	}
	return nil
}
