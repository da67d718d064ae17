package sharehub

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/sharehub/media"
)

// formError is a problem with submitted form data, shown back to the user.
type formError struct {
	msg string
}

func (e formError) Error() string { return e.msg }

// uploadFormFile stores the multipart file in field and returns its public
// URL and content type. A missing field is not an error and returns "".
func (a *App) uploadFormFile(c echo.Context, field string, maxSize int64, imagesOnly bool) (string, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", "", nil
		}
		return "", "", formError{fmt.Sprintf("could not read %s upload", field)}
	}
	if fh.Size == 0 {
		return "", "", nil
	}
	if fh.Size > maxSize {
		return "", "", formError{fmt.Sprintf("%s is too large (max %dMB)", field, maxSize>>20)}
	}
	contentType := fh.Header.Get(echo.HeaderContentType)
	if imagesOnly && !media.IsImage(contentType) {
		return "", "", formError{fmt.Sprintf("%s must be an image", field)}
	}
	if !media.IsImage(contentType) && !media.IsVideo(contentType) {
		return "", "", formError{fmt.Sprintf("%s must be an image or video", field)}
	}
	if media.IsImage(contentType) && !media.IsDecodableImage(contentType) {
		return "", "", formError{fmt.Sprintf("%s must be a JPEG, PNG, GIF or WebP image", field)}
	}

	src, err := fh.Open()
	if err != nil {
		return "", "", err
	}
	defer src.Close()

	url, err := a.Uploader.Upload(c.Request().Context(), fh.Filename, contentType, src)
	a.Metrics.IncrementUpload(a.Uploader.Backend(), err == nil)
	if err != nil {
		c.Logger().Errorf("upload %s via %s: %v", field, a.Uploader.Backend(), err)
		return "", "", formError{fmt.Sprintf("failed to upload %s", field)}
	}
	return url, contentType, nil
}

// deleteMedia removes stored uploads of a deleted post. Failures are logged;
// the post itself is already gone.
func (a *App) deleteMedia(c echo.Context, urls ...string) {
	d, ok := a.Uploader.(media.Deleter)
	if !ok {
		return
	}
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := d.Delete(c.Request().Context(), u); err != nil {
			c.Logger().Errorf("delete media %s: %v", u, err)
		}
	}
}
