package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLocalUploaderImage(t *testing.T) {
	dir := t.TempDir()
	u := NewLocalUploader(dir, "/public/uploads/")

	url, err := u.Upload(context.Background(), "wide.png", "image/png", bytes.NewReader(pngBytes(t, 2400, 200)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/public/uploads/posts/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	path := filepath.Join(dir, strings.TrimPrefix(url, "/public/uploads/"))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestLocalUploaderKeepsSmallImageSize(t *testing.T) {
	dir := t.TempDir()
	u := NewLocalUploader(dir, "/u")

	url, err := u.Upload(context.Background(), "small.png", "image/png", bytes.NewReader(pngBytes(t, 300, 40)))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/u/")))
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Width)
}

// 1x1 lossless WebP
var webpPixel = []byte{
	0x52, 0x49, 0x46, 0x46, 0x1a, 0x00, 0x00, 0x00, 0x57, 0x45, 0x42, 0x50,
	0x56, 0x50, 0x38, 0x4c, 0x0d, 0x00, 0x00, 0x00, 0x2f, 0x00, 0x00, 0x00,
	0x10, 0x07, 0x10, 0x11, 0x11, 0x88, 0x88, 0xfe, 0x07, 0x00,
}

func TestLocalUploaderWebP(t *testing.T) {
	dir := t.TempDir()
	u := NewLocalUploader(dir, "/u")

	url, err := u.Upload(context.Background(), "a.webp", "image/webp", bytes.NewReader(webpPixel))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/u/")))
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Width)
	assert.Equal(t, 1, cfg.Height)
}

func TestIsDecodableImage(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/PNG"} {
		assert.True(t, IsDecodableImage(ct), ct)
	}
	for _, ct := range []string{"image/svg+xml", "image/heic", "video/mp4", "", "image/"} {
		assert.False(t, IsDecodableImage(ct), ct)
	}
}

func TestLocalUploaderVideoAndDelete(t *testing.T) {
	dir := t.TempDir()
	u := NewLocalUploader(dir, "/u")
	payload := []byte("not really a video but bytes are bytes")

	url, err := u.Upload(context.Background(), "clip.WEBM", "video/webm", bytes.NewReader(payload))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".webm"))

	path := filepath.Join(dir, strings.TrimPrefix(url, "/u/"))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.NoError(t, u.Delete(context.Background(), url))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, u.Delete(context.Background(), url))
	assert.NoError(t, u.Delete(context.Background(), "https://elsewhere.test/a.jpg"))
	assert.NoError(t, u.Delete(context.Background(), "/u/../../etc/passwd"))
}

func TestLocalUploaderRejects(t *testing.T) {
	u := NewLocalUploader(t.TempDir(), "/u")

	_, err := u.Upload(context.Background(), "doc.pdf", "application/pdf", strings.NewReader("%PDF"))
	assert.True(t, errors.Is(err, ErrUnsupportedType))

	_, err = u.Upload(context.Background(), "logo.svg", "image/svg+xml", strings.NewReader("<svg/>"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = u.Upload(context.Background(), "bad.png", "image/png", strings.NewReader("garbage"))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = u.Upload(ctx, "a.mp4", "video/mp4", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVideoExt(t *testing.T) {
	assert.Equal(t, ".mov", videoExt("Holiday.MOV", "video/quicktime"))
	assert.Equal(t, ".mp4", videoExt("noext", "video/x-unknown"))
}

func TestS3PublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{"aws", S3Config{Bucket: "media", Region: "eu-west-1"}, "https://media.s3.eu-west-1.amazonaws.com/posts/a.jpg"},
		{"minio", S3Config{Bucket: "media", Endpoint: "http://localhost:9000", DisableSSL: true}, "http://localhost:9000/media/posts/a.jpg"},
		{"explicit", S3Config{Bucket: "media", PublicURL: "https://cdn.example.com/"}, "https://cdn.example.com/posts/a.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewS3Uploader(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, "s3", u.Backend())
			assert.Equal(t, tt.want, u.ObjectURL("posts/a.jpg"))
		})
	}

	_, err := NewS3Uploader(S3Config{})
	assert.Error(t, err)
}

func TestS3DeleteIgnoresForeignURL(t *testing.T) {
	u, err := NewS3Uploader(S3Config{Bucket: "media", PublicURL: "https://cdn.example.com"})
	require.NoError(t, err)
	assert.NoError(t, u.Delete(context.Background(), "https://other.example.com/posts/a.jpg"))
}
