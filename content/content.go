// Package content holds the records shared by the store, the metadata
// resolver, and the views. These types carry no behaviour that touches I/O.
package content

import (
	"strings"
	"time"
)

// MediaType is the kind of an uploaded asset.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// MediaTypeFor maps an upload's Content-Type to a MediaType. Anything that is
// not video/* is treated as an image.
func MediaTypeFor(contentType string) MediaType {
	if strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return MediaTypeVideo
	}
	return MediaTypeImage
}

// Post is the stored content record a short link points at.
type Post struct {
	ID           string    `json:"id"`
	Title        string    `json:"title,omitempty"`
	Description  string    `json:"description,omitempty"`
	EmbedCode    string    `json:"embed_code,omitempty"`
	VideoURL     string    `json:"video_url,omitempty"`
	MediaURL     string    `json:"media_url,omitempty"`
	MediaType    MediaType `json:"media_type,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	RedirectLink string    `json:"redirect_link,omitempty"`
	PopunderAd   string    `json:"popunder_ad,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// GeneratedLink maps a 6-character link id to a post.
type GeneratedLink struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	LinkID    string    `json:"link_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Post      *Post     `json:"post,omitempty"`
}

// Path returns the public path of the link's page.
func (l GeneratedLink) Path() string {
	return "/post/" + l.LinkID
}

// Comment is a visitor comment left on a post page.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserName  string    `json:"user_name"`
	Text      string    `json:"comment_text"`
	CreatedAt time.Time `json:"created_at"`
}

// Counts holds the persisted engagement totals for a post.
type Counts struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}
