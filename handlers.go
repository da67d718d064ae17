package sharehub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/eringen/sharehub/analytics"
	"github.com/eringen/sharehub/content"
	"github.com/eringen/sharehub/engagement"
	"github.com/eringen/sharehub/meta"
	"github.com/eringen/sharehub/views"
)

const (
	maxCommentLength = 500
	commentsShown    = 50
)

// lookupLink reads a link through the cache.
func (a *App) lookupLink(ctx context.Context, linkID string) (content.GeneratedLink, error) {
	if !ValidLinkID(linkID) {
		return content.GeneratedLink{}, ErrNotFound
	}
	if link, err := a.Links.Get(ctx, linkID); err == nil && link.Post != nil {
		a.Metrics.IncrementLinkCache(true)
		return link, nil
	}
	a.Metrics.IncrementLinkCache(false)

	link, err := a.Store.GetLink(ctx, linkID)
	if err != nil {
		return content.GeneratedLink{}, err
	}
	// a cache write failure only costs the next request a database read
	_ = a.Links.Set(ctx, link)
	return link, nil
}

// resolvePage looks up linkID and resolves its display metadata. Both the
// HTML page and the meta endpoint go through here so they never disagree.
func (a *App) resolvePage(c echo.Context, linkID string) (content.GeneratedLink, meta.Metadata, error) {
	link, err := a.lookupLink(c.Request().Context(), linkID)
	if err != nil {
		return link, meta.Metadata{}, err
	}
	md := a.Resolver.ResolveDisplayMetadata(*link.Post, linkID, meta.RequestContextFrom(c.Request()))
	c.Logger().Infof("metadata link=%s domain=%s (%s) thumbnail=%s (%s) crawler=%t",
		linkID, md.Domain.Value, md.Domain.Step, md.Thumbnail.Value, stepName(md.Thumbnail.Step), md.Crawler != "")
	a.Metrics.IncrementResolution(string(md.Domain.Step), string(md.Thumbnail.Step))
	if md.Crawler != "" {
		a.Metrics.IncrementCrawler(md.Crawler)
	}
	return link, md, nil
}

func stepName(s meta.Step) string {
	if s == meta.StepNone {
		return "placeholder"
	}
	return string(s)
}

// handlePost serves the public landing page. Crawlers and browsers get the
// same document; the crawler flag is only logged and counted.
func (a *App) handlePost(c echo.Context) error {
	linkID := c.Param("linkId")
	link, md, err := a.resolvePage(c, linkID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Resolver.NotFoundMetadata()))
		}
		return err
	}
	a.recordHit(c, linkID)

	ctx := c.Request().Context()
	post := *link.Post
	counts, err := a.Store.Counts(ctx, post.ID)
	if err != nil {
		c.Logger().Errorf("load counts for %s: %v", linkID, err)
	}
	comments, err := a.Store.ListComments(ctx, post.ID, commentsShown)
	if err != nil {
		c.Logger().Errorf("load comments for %s: %v", linkID, err)
	}

	return Render(c, a.Views.Post(views.PostPage{
		Meta:      md,
		JSONLD:    meta.ArticleJSONLD(md),
		Post:      post,
		LinkID:    linkID,
		Profile:   engagement.ProfileName(post.ID),
		PostedAgo: engagement.PostedAgo(post.ID),
		Stats:     engagement.Display(post.ID, counts),
		Comments:  engagement.Comments(post.ID, comments, time.Now()),
	}))
}

func (a *App) recordHit(c echo.Context, linkID string) {
	if a.analyticsStore == nil || c.Request().Method == http.MethodHead {
		return
	}
	if c.Request().Header.Get("DNT") == "1" && !meta.IsCrawler(c.Request().UserAgent()) {
		return
	}
	hit := analytics.NewHit(linkID, c.RealIP(), c.Request().UserAgent(), c.Request().Referer(), time.Now())
	if err := a.analyticsStore.Record(c.Request().Context(), hit); err != nil {
		c.Logger().Errorf("record hit: %v", err)
	}
}

func jsonError(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// apiLink resolves the :linkId of a JSON API request, writing the 404 itself.
func (a *App) apiLink(c echo.Context) (content.GeneratedLink, bool, error) {
	link, err := a.lookupLink(c.Request().Context(), c.Param("linkId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return link, false, jsonError(c, http.StatusNotFound, "post not found")
		}
		return link, false, err
	}
	return link, true, nil
}

func (a *App) handlePostMeta(c echo.Context) error {
	_, md, err := a.resolvePage(c, c.Param("linkId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "post not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, md)
}

func (a *App) handleListComments(c echo.Context) error {
	link, ok, err := a.apiLink(c)
	if !ok {
		return err
	}
	comments, err := a.Store.ListComments(c.Request().Context(), link.PostID, commentsShown)
	if err != nil {
		return err
	}
	if comments == nil {
		comments = []content.Comment{}
	}
	return c.JSON(http.StatusOK, comments)
}

type commentRequest struct {
	Text string `json:"text" form:"text"`
}

type commentResponse struct {
	ID       string `json:"id"`
	User     string `json:"user"`
	Initials string `json:"initials"`
	Text     string `json:"text"`
	Time     string `json:"time"`
}

func (a *App) handleAddComment(c echo.Context) error {
	link, ok, err := a.apiLink(c)
	if !ok {
		return err
	}
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return jsonError(c, http.StatusBadRequest, "please enter a comment")
	}
	if utf8.RuneCountInString(text) > maxCommentLength {
		return jsonError(c, http.StatusBadRequest, fmt.Sprintf("comment exceeds %d characters", maxCommentLength))
	}

	cm, err := a.Store.AddComment(c.Request().Context(), link.PostID, anonymousUserName(), text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, commentResponse{
		ID:       cm.ID,
		User:     cm.UserName,
		Initials: engagement.Initials(cm.UserName),
		Text:     cm.Text,
		Time:     engagement.TimeAgo(cm.CreatedAt, time.Now()),
	})
}

type engagementResponse struct {
	Changed bool             `json:"changed"`
	Stats   engagement.Stats `json:"stats"`
}

func (a *App) engagementReply(c echo.Context, postID string, changed bool) error {
	counts, err := a.Store.Counts(c.Request().Context(), postID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engagementResponse{Changed: changed, Stats: engagement.Display(postID, counts)})
}

func (a *App) handleLike(c echo.Context) error {
	link, ok, err := a.apiLink(c)
	if !ok {
		return err
	}
	added, err := a.Store.AddLike(c.Request().Context(), link.PostID, visitorKey(c.RealIP(), c.Request().UserAgent()))
	if err != nil {
		return err
	}
	return a.engagementReply(c, link.PostID, added)
}

func (a *App) handleUnlike(c echo.Context) error {
	link, ok, err := a.apiLink(c)
	if !ok {
		return err
	}
	removed, err := a.Store.RemoveLike(c.Request().Context(), link.PostID, visitorKey(c.RealIP(), c.Request().UserAgent()))
	if err != nil {
		return err
	}
	return a.engagementReply(c, link.PostID, removed)
}

type shareRequest struct {
	Platform string `json:"platform" form:"platform"`
}

func (a *App) handleShare(c echo.Context) error {
	link, ok, err := a.apiLink(c)
	if !ok {
		return err
	}
	var req shareRequest
	_ = c.Bind(&req)
	if err := a.Store.AddShare(c.Request().Context(), link.PostID, content.Truncate(strings.TrimSpace(req.Platform), 32)); err != nil {
		return err
	}
	return a.engagementReply(c, link.PostID, true)
}

// robotsCrawlers are explicitly allowed onto post pages.
var robotsCrawlers = []string{
	"facebookexternalhit",
	"Twitterbot",
	"LinkedInBot",
	"WhatsApp",
	"TelegramBot",
	"Discordbot",
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\nAllow: /post/\nDisallow: /api/\nDisallow: /links/\nDisallow: /admin/\n")
	for _, name := range robotsCrawlers {
		fmt.Fprintf(&b, "\nUser-agent: %s\nAllow: /post/\n", name)
	}
	domain := a.Resolver.ResolveCurrentDomain(meta.RequestContextFrom(c.Request()))
	fmt.Fprintf(&b, "\nSitemap: %s\n", meta.JoinURL(domain.Value, "sitemap.xml"))
	return c.String(http.StatusOK, b.String())
}

func (a *App) handleSitemap(c echo.Context) error {
	links, err := a.Store.ListLinks(c.Request().Context(), 0)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, links)
}

func (a *App) handleFeed(c echo.Context) error {
	links, err := a.Store.ListLinks(c.Request().Context(), 50)
	if err != nil {
		return err
	}
	return a.renderRSS(c, links)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Resolver.NotFoundMetadata()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		if strings.HasPrefix(c.Request().URL.Path, "/api/") {
			_ = jsonError(c, code, "internal server error")
			return
		}
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
