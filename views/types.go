package views

import (
	"github.com/eringen/sharehub/content"
	"github.com/eringen/sharehub/engagement"
	"github.com/eringen/sharehub/meta"
)

// SiteConfig holds the site-wide values every page needs.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
}

// HomeData feeds the post creation form.
type HomeData struct {
	Site    SiteConfig
	CSRF    string
	Form    content.CreatePostInput
	Error   string
	Created *CreatedLink
}

// CreatedLink is the share link shown after a successful submit.
type CreatedLink struct {
	LinkID string
	URL    string
	Title  string
}

// LinksData feeds the link history page.
type LinksData struct {
	Site    SiteConfig
	CSRF    string
	BaseURL string
	Links   []content.GeneratedLink
	Message string
}

// LoginData feeds the shared-password gate.
type LoginData struct {
	Site      SiteConfig
	CSRF      string
	ShowError bool
}

// PostPage carries everything the public landing page renders.
type PostPage struct {
	Meta      meta.Metadata
	JSONLD    string
	Post      content.Post
	LinkID    string
	Profile   string
	PostedAgo string
	Stats     engagement.Stats
	Comments  []engagement.CommentView
}
