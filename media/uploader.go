// Package media stores uploaded post media and returns the URL it is served
// from.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Upload limits per form field.
const (
	MaxMediaSize     = 100 << 20
	MaxThumbnailSize = 10 << 20
)

const (
	maxImageWidth = 1200
	jpegQuality   = 85
	keyPrefix     = "posts"
)

// ErrUnsupportedType is returned for uploads that are neither image nor video.
var ErrUnsupportedType = errors.New("media: unsupported content type")

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Backend() string
}

// Deleter is implemented by uploaders that can remove what they stored.
type Deleter interface {
	Delete(ctx context.Context, url string) error
}

// IsImage reports whether contentType is an image type.
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// decodableImageTypes are the image formats prepare can re-encode.
var decodableImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// IsDecodableImage reports whether contentType is an image format uploads
// can be decoded from. SVG and other vector or exotic types are not.
func IsDecodableImage(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return decodableImageTypes[mt]
}

// IsVideo reports whether contentType is a video type.
func IsVideo(contentType string) bool {
	return strings.HasPrefix(contentType, "video/")
}

// prepared is an upload ready to be written: images are re-encoded, videos
// pass through untouched.
type prepared struct {
	body        io.Reader
	contentType string
	key         string
}

func prepare(name, contentType string, r io.Reader) (prepared, error) {
	switch {
	case IsDecodableImage(contentType):
		data, err := processImage(r)
		if err != nil {
			return prepared{}, err
		}
		return prepared{
			body:        bytes.NewReader(data),
			contentType: "image/jpeg",
			key:         objectKey(".jpg"),
		}, nil
	case IsVideo(contentType):
		return prepared{
			body:        r,
			contentType: contentType,
			key:         objectKey(videoExt(name, contentType)),
		}, nil
	}
	return prepared{}, fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
}

// processImage decodes src, downscales it to maxImageWidth if wider, and
// encodes it as JPEG.
func processImage(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func objectKey(ext string) string {
	return keyPrefix + "/" + uuid.NewString() + ext
}

func videoExt(name, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" && len(ext) <= 5 {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	return ".mp4"
}
