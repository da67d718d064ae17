package meta

import (
	"regexp"
	"strings"
)

// Platform identifies where a recognized video is hosted.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformVimeo     Platform = "vimeo"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformDirect    Platform = "direct"
)

// VideoDescriptor is a recognized video reference. It is derived per request
// and never stored.
type VideoDescriptor struct {
	Platform Platform `json:"platform"`
	ID       string   `json:"id"`
	EmbedURL string   `json:"embedUrl"`
}

type videoPattern struct {
	platform Platform
	re       *regexp.Regexp
	embed    func(id string) string
}

func youtubeEmbed(id string) string   { return "https://www.youtube.com/embed/" + id }
func tiktokEmbed(id string) string    { return "https://www.tiktok.com/embed/v2/" + id }
func instagramEmbed(id string) string { return "https://www.instagram.com/p/" + id + "/embed" }
func vimeoEmbed(id string) string     { return "https://player.vimeo.com/video/" + id }

// videoPatterns is evaluated top to bottom; the first match wins.
var videoPatterns = []videoPattern{
	{PlatformYouTube, regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`), youtubeEmbed},
	{PlatformYouTube, regexp.MustCompile(`youtube\.com/embed/([^"&?/\s]{11})`), youtubeEmbed},
	{PlatformYouTube, regexp.MustCompile(`youtu\.be/([^"&?/\s]{11})`), youtubeEmbed},

	{PlatformTikTok, regexp.MustCompile(`tiktok\.com/.*/video/(\d+)`), tiktokEmbed},
	{PlatformTikTok, regexp.MustCompile(`tiktok\.com/embed/v2/(\d+)`), tiktokEmbed},
	{PlatformTikTok, regexp.MustCompile(`vm\.tiktok\.com/([A-Za-z0-9]+)`), tiktokEmbed},

	{PlatformInstagram, regexp.MustCompile(`instagram\.com/(?:p|reel)/([A-Za-z0-9_-]+)`), instagramEmbed},
	{PlatformInstagram, regexp.MustCompile(`instagram\.com/p/([A-Za-z0-9_-]+)/embed`), instagramEmbed},

	{PlatformVimeo, regexp.MustCompile(`vimeo\.com/(\d+)`), vimeoEmbed},
	{PlatformVimeo, regexp.MustCompile(`player\.vimeo\.com/video/(\d+)`), vimeoEmbed},
}

var directVideoRe = regexp.MustCompile(`(?i)\.(mp4|webm|ogg|mov|avi)(\?.*)?$`)

// ExtractVideoID recognizes a video URL. It returns nil when no pattern
// matches; it never panics and is safe for concurrent use.
func ExtractVideoID(rawURL string) *VideoDescriptor {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil
	}
	for _, p := range videoPatterns {
		if m := p.re.FindStringSubmatch(rawURL); m != nil {
			return &VideoDescriptor{Platform: p.platform, ID: m[1], EmbedURL: p.embed(m[1])}
		}
	}
	if directVideoRe.MatchString(rawURL) {
		return &VideoDescriptor{Platform: PlatformDirect, ID: rawURL, EmbedURL: rawURL}
	}
	return nil
}

// ThumbnailFor returns the display thumbnail for a recognized video. TikTok
// and Instagram have no public thumbnail API and get a labelled placeholder.
// Direct video files have no derivable thumbnail.
func ThumbnailFor(v *VideoDescriptor) (string, bool) {
	if v == nil {
		return "", false
	}
	switch v.Platform {
	case PlatformYouTube:
		return "https://img.youtube.com/vi/" + v.ID + "/maxresdefault.jpg", true
	case PlatformVimeo:
		return "https://vumbnail.com/" + v.ID + ".jpg", true
	case PlatformTikTok:
		return "/placeholder.svg?height=400&width=600&text=TikTok+Video", true
	case PlatformInstagram:
		return "/placeholder.svg?height=400&width=600&text=Instagram+Post", true
	}
	return "", false
}

// VideoMIMEType guesses the MIME type advertised for og:video.
func VideoMIMEType(rawURL string) string {
	m := directVideoRe.FindStringSubmatch(rawURL)
	if m == nil {
		return "video/mp4"
	}
	switch strings.ToLower(m[1]) {
	case "webm":
		return "video/webm"
	case "ogg":
		return "video/ogg"
	case "mov":
		return "video/quicktime"
	case "avi":
		return "video/x-msvideo"
	}
	return "video/mp4"
}
