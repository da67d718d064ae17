// Package meta resolves the social preview metadata (Open Graph and Twitter
// card fields) advertised for a post page.
//
// Every function here is a pure function of its inputs: no I/O, no shared
// mutable state. A Resolver only carries the configuration it was built with
// and is safe for concurrent use.
package meta

import (
	"strings"
	"time"

	"github.com/eringen/sharehub/content"
)

// Text used when a post has neither title nor description.
const (
	DefaultTitle       = "🔥 Amazing Viral Content - Don't Miss This!"
	DefaultDescription = "Check out this incredible viral content that everyone is talking about! Click to see what's trending now. 🚀✨"
)

// Default domains used when nothing better is known about the request.
const (
	DefaultDevDomain  = "http://localhost:3000"
	DefaultProdDomain = "https://sharehub.example.com"
)

// Config is the resolver's view of site configuration.
type Config struct {
	SiteURL       string // explicitly configured public URL; wins over everything
	DeploymentURL string // platform-provided deployment host, scheme optional
	Development   bool   // allow DevDefault before ProdDefault
	DevDefault    string
	ProdDefault   string
	SiteName      string
	TwitterHandle string
}

// Resolver computes display metadata for posts.
type Resolver struct {
	cfg Config
}

// NewResolver returns a Resolver for cfg, filling in defaults.
func NewResolver(cfg Config) *Resolver {
	if cfg.DevDefault == "" {
		cfg.DevDefault = DefaultDevDomain
	}
	if cfg.ProdDefault == "" {
		cfg.ProdDefault = DefaultProdDomain
	}
	if cfg.SiteName == "" {
		cfg.SiteName = "Social Media Hub"
	}
	if cfg.TwitterHandle == "" {
		cfg.TwitterHandle = "@SocialMediaHub"
	}
	cfg.SiteURL = strings.TrimRight(strings.TrimSpace(cfg.SiteURL), "/")
	cfg.DeploymentURL = strings.TrimSpace(cfg.DeploymentURL)
	return &Resolver{cfg: cfg}
}

// Config returns the configuration the resolver was built with.
func (r *Resolver) Config() Config {
	return r.cfg
}

// ImageMeta is one og:image variant.
type ImageMeta struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Alt    string `json:"alt"`
	Type   string `json:"type"`
}

// VideoMeta is the og:video advertised for a post with a video URL.
type VideoMeta struct {
	URL    string           `json:"url"`
	Width  int              `json:"width"`
	Height int              `json:"height"`
	Type   string           `json:"type"`
	Embed  *VideoDescriptor `json:"embed,omitempty"`
}

// Metadata is everything the page head needs.
type Metadata struct {
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	URL           string      `json:"url"`
	Image         string      `json:"image"`
	Images        []ImageMeta `json:"images"`
	Video         *VideoMeta  `json:"video,omitempty"`
	PublishedTime string      `json:"published_time,omitempty"`
	SiteName      string      `json:"site_name"`
	TwitterHandle string      `json:"twitter_handle"`
	TwitterDomain string      `json:"twitter_domain"`

	Domain    Resolution `json:"domain"`
	Thumbnail Resolution `json:"thumbnail"`
	Crawler   string     `json:"crawler,omitempty"`
}

var imageVariants = [][2]int{
	{PreviewWidth, PreviewHeight},
	{1200, 600},
	{800, 600},
	{400, 400},
}

// ResolveDisplayMetadata composes the page metadata for a post reached via
// linkID. Text fields are never empty and Image is always an absolute URL.
func (r *Resolver) ResolveDisplayMetadata(p content.Post, linkID string, rc RequestContext) Metadata {
	title := firstNonEmpty(p.Title, p.Description, DefaultTitle)
	description := firstNonEmpty(p.Description, DefaultDescription)

	domain := r.ResolveCurrentDomain(rc)
	thumb := ResolveThumbnail(p)
	image := ResolveAbsoluteImageURL(OptimizeForSocial(thumb.Value), title, domain.Value)

	md := Metadata{
		Title:         title,
		Description:   description,
		URL:           JoinURL(domain.Value, "post/"+linkID),
		Image:         image,
		SiteName:      r.cfg.SiteName,
		TwitterHandle: r.cfg.TwitterHandle,
		TwitterDomain: hostOf(domain.Value),
		Domain:        domain,
		Thumbnail:     thumb,
		Crawler:       CrawlerName(rc.UserAgent),
	}
	for _, v := range imageVariants {
		md.Images = append(md.Images, ImageMeta{URL: image, Width: v[0], Height: v[1], Alt: title, Type: "image/jpeg"})
	}
	if !p.CreatedAt.IsZero() {
		md.PublishedTime = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	if v := strings.TrimSpace(p.VideoURL); v != "" {
		md.Video = &VideoMeta{
			URL:    v,
			Width:  1280,
			Height: 720,
			Type:   VideoMIMEType(v),
			Embed:  ExtractVideoID(v),
		}
	}
	return md
}

// NotFoundMetadata is served with the 404 page for unknown links.
func (r *Resolver) NotFoundMetadata() Metadata {
	const desc = "The requested social media post could not be found."
	img := "https://via.placeholder.com/1200x630/ff6b6b/ffffff?text=Post+Not+Found"
	return Metadata{
		Title:         "Post Not Found - " + r.cfg.SiteName,
		Description:   desc,
		Image:         img,
		Images:        []ImageMeta{{URL: img, Width: PreviewWidth, Height: PreviewHeight, Alt: "Post Not Found", Type: "image/png"}},
		SiteName:      r.cfg.SiteName,
		TwitterHandle: r.cfg.TwitterHandle,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func hostOf(domain string) string {
	domain = strings.TrimPrefix(domain, "https://")
	return strings.TrimPrefix(domain, "http://")
}
