// Package views renders the sharehub pages as templ components backed by
// embedded html/template files.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/sharehub/meta"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("views").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))

func component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return templates.ExecuteTemplate(w, name, data)
	})
}

// Home renders the post creation form.
func Home(data HomeData) templ.Component { return component("home", data) }

// Links renders the generated link history.
func Links(data LinksData) templ.Component { return component("links", data) }

// Login renders the shared-password gate.
func Login(data LoginData) templ.Component { return component("login", data) }

// Post renders the public landing page with its social head tags, ad overlay
// and engagement UI.
func Post(data PostPage) templ.Component { return component("post", data) }

// NotFound renders the missing-post page using md for its head tags.
func NotFound(md meta.Metadata) templ.Component { return component("not-found", md) }

// ServerError renders the generic 500 page.
func ServerError() templ.Component { return component("server-error", nil) }
