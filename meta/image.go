package meta

import (
	"net/url"
	"strings"

	"github.com/eringen/sharehub/content"
)

// Preview image size expected by link-preview crawlers.
const (
	PreviewWidth  = 1200
	PreviewHeight = 630
)

const (
	placeholderBase     = "https://via.placeholder.com/1200x630/1877f2/ffffff"
	placeholderTitleMax = 50
)

// PlaceholderImageURL returns a generated preview image with title as its
// caption text, truncated to 50 characters.
func PlaceholderImageURL(title string) string {
	return placeholderBase + "?text=" + url.QueryEscape(content.Truncate(title, placeholderTitleMax))
}

// ResolveAbsoluteImageURL turns candidate into an absolute URL on domain.
// Absolute candidates are returned unchanged; an empty candidate yields a
// placeholder captioned with title.
func ResolveAbsoluteImageURL(candidate, title, domain string) string {
	candidate = absolutizeScheme(strings.TrimSpace(candidate))
	if candidate == "" {
		return PlaceholderImageURL(title)
	}
	if strings.HasPrefix(candidate, "http") {
		return candidate
	}
	return JoinURL(domain, candidate)
}

// JoinURL joins base and path with exactly one slash between them.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

const cloudinaryTransform = "w_1200,h_630,c_fill,f_auto,q_auto"

// OptimizeForSocial rewrites Cloudinary delivery URLs so the CDN serves a
// 1200x630 crop. Other URLs are returned unchanged.
func OptimizeForSocial(imageURL string) string {
	if !strings.Contains(imageURL, "res.cloudinary.com") && !strings.Contains(imageURL, ".cloudinary.com/") {
		return imageURL
	}
	if strings.Contains(imageURL, "/upload/"+cloudinaryTransform+"/") {
		return imageURL
	}
	return strings.Replace(imageURL, "/upload/", "/upload/"+cloudinaryTransform+"/", 1)
}
