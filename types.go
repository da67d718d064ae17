package sharehub

import (
	"github.com/a-h/templ"

	"github.com/eringen/sharehub/meta"
	"github.com/eringen/sharehub/views"
)

// ViewFuncs holds the components the handlers render. Replace individual
// entries with WithViews to customize pages.
type ViewFuncs struct {
	Home        func(data views.HomeData) templ.Component
	Links       func(data views.LinksData) templ.Component
	Login       func(data views.LoginData) templ.Component
	Post        func(data views.PostPage) templ.Component
	NotFound    func(md meta.Metadata) templ.Component
	ServerError func() templ.Component
}

// DefaultViews returns the built-in page components.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:        views.Home,
		Links:       views.Links,
		Login:       views.Login,
		Post:        views.Post,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

// siteView returns the page-level site values.
func (a *App) siteView() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
	}
}
