package sharehub

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/sharehub/content"
	"github.com/eringen/sharehub/meta"
)

const (
	placeholderMinSize = 16
	placeholderMaxSize = 2400
	placeholderMaxText = 60
)

var placeholderTmpl = template.Must(template.ParseFS(EmbeddedAssets, "embedded/placeholder.svg"))

type placeholderData struct {
	Width, Height int
	FontSize      int
	Text          string
}

// handlePlaceholder draws the generated preview image that video platforms
// without a public thumbnail API point at, captioned with the text query.
func handlePlaceholder(c echo.Context) error {
	d := placeholderData{
		Width:  placeholderDim(c.QueryParam("width"), meta.PreviewWidth),
		Height: placeholderDim(c.QueryParam("height"), meta.PreviewHeight),
		Text:   content.Truncate(strings.TrimSpace(c.QueryParam("text")), placeholderMaxText),
	}
	if d.Text == "" {
		d.Text = "Preview"
	}
	d.FontSize = max(12, min(d.Width, d.Height)/8)

	c.Response().Header().Set(echo.HeaderContentType, "image/svg+xml")
	c.Response().WriteHeader(http.StatusOK)
	if c.Request().Method == http.MethodHead {
		return nil
	}
	return placeholderTmpl.Execute(c.Response(), d)
}

func placeholderDim(v string, fallback int) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return max(placeholderMinSize, min(n, placeholderMaxSize))
}
