package sharehub

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/sharehub/content"
	"github.com/eringen/sharehub/media"
	"github.com/eringen/sharehub/meta"
	"github.com/eringen/sharehub/views"
)

const maxLinkIDAttempts = 5

func (a *App) handleHome(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.Login(views.LoginData{Site: a.siteView(), CSRF: CsrfToken(c)}))
	}
	return Render(c, a.Views.Home(views.HomeData{Site: a.siteView(), CSRF: CsrfToken(c)}))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/")
	}
	a.loginLimiter.Record(ip)
	return RenderStatus(c, http.StatusUnauthorized, a.Views.Login(views.LoginData{
		Site:      a.siteView(),
		CSRF:      CsrfToken(c),
		ShowError: true,
	}))
}

func handleLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// handleCreatePost validates the form, stores any uploads, and creates the
// post with a fresh short link.
func (a *App) handleCreatePost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/")
	}

	var in content.CreatePostInput
	if err := c.Bind(&in); err != nil {
		return a.renderForm(c, http.StatusBadRequest, in, "Invalid form submission.", nil)
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return a.renderForm(c, http.StatusUnprocessableEntity, in, err.Error(), nil)
	}

	mediaURL, mediaType, err := a.uploadFormFile(c, "media", media.MaxMediaSize, false)
	if err != nil {
		return a.formFailure(c, in, err)
	}
	if mediaURL != "" {
		in.MediaURL = mediaURL
		in.MediaType = content.MediaTypeFor(mediaType)
	}
	thumbURL, _, err := a.uploadFormFile(c, "thumbnail", media.MaxThumbnailSize, true)
	if err != nil {
		a.deleteMedia(c, mediaURL)
		return a.formFailure(c, in, err)
	}
	in.ThumbnailURL = thumbURL

	link, err := a.createLink(c, in)
	if err != nil {
		a.deleteMedia(c, mediaURL, thumbURL)
		return err
	}

	domain := a.Resolver.ResolveCurrentDomain(meta.RequestContextFrom(c.Request()))
	c.Logger().Infof("created link=%s post=%s", link.LinkID, link.PostID)
	return a.renderForm(c, http.StatusOK, content.CreatePostInput{}, "", &views.CreatedLink{
		LinkID: link.LinkID,
		URL:    meta.JoinURL(domain.Value, "post/"+link.LinkID),
		Title:  link.Title,
	})
}

// createLink inserts the post under a new random link id, retrying when the
// id is already taken.
func (a *App) createLink(c echo.Context, in content.CreatePostInput) (content.GeneratedLink, error) {
	ctx := c.Request().Context()
	for attempt := 0; attempt < maxLinkIDAttempts; attempt++ {
		id, err := GenerateLinkID()
		if err != nil {
			return content.GeneratedLink{}, err
		}
		exists, err := a.Store.LinkIDExists(ctx, id)
		if err != nil {
			return content.GeneratedLink{}, err
		}
		if exists {
			continue
		}

		post := in.Post()
		link := content.GeneratedLink{LinkID: id, Title: in.LinkTitle()}
		err = a.Store.CreatePost(ctx, &post, &link)
		if errors.Is(err, ErrDuplicateLinkID) {
			continue
		}
		if err != nil {
			return content.GeneratedLink{}, fmt.Errorf("sharehub: create post: %w", err)
		}
		link.Post = &post
		return link, nil
	}
	return content.GeneratedLink{}, fmt.Errorf("sharehub: no free link id after %d attempts", maxLinkIDAttempts)
}

func (a *App) formFailure(c echo.Context, in content.CreatePostInput, err error) error {
	var fe formError
	if errors.As(err, &fe) {
		return a.renderForm(c, http.StatusUnprocessableEntity, in, fe.msg, nil)
	}
	return err
}

func (a *App) renderForm(c echo.Context, code int, in content.CreatePostInput, msg string, created *views.CreatedLink) error {
	return RenderStatus(c, code, a.Views.Home(views.HomeData{
		Site:    a.siteView(),
		CSRF:    CsrfToken(c),
		Form:    in,
		Error:   msg,
		Created: created,
	}))
}

func (a *App) handleLinks(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	links, err := a.Store.ListLinks(c.Request().Context(), 0)
	if err != nil {
		return err
	}
	domain := a.Resolver.ResolveCurrentDomain(meta.RequestContextFrom(c.Request()))
	return Render(c, a.Views.Links(views.LinksData{
		Site:    a.siteView(),
		CSRF:    CsrfToken(c),
		BaseURL: domain.Value,
		Links:   links,
		Message: c.QueryParam("msg"),
	}))
}

func (a *App) handleDeleteLink(c echo.Context) error {
	if !IsAdmin(c) {
		return c.NoContent(http.StatusUnauthorized)
	}
	linkID := c.Param("linkId")
	post, err := a.Store.DeleteLink(c.Request().Context(), linkID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	if err := a.Links.Invalidate(c.Request().Context(), linkID); err != nil {
		c.Logger().Errorf("invalidate link %s: %v", linkID, err)
	}
	a.deleteMedia(c, post.MediaURL, post.ThumbnailURL)
	c.Logger().Infof("deleted link=%s post=%s", linkID, post.ID)
	return c.NoContent(http.StatusNoContent)
}
