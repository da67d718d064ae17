package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader writes uploads below Dir and serves them under URLPrefix.
type LocalUploader struct {
	Dir       string // e.g. "public/uploads"
	URLPrefix string // e.g. "/public/uploads"
}

// NewLocalUploader returns a LocalUploader rooted at dir.
func NewLocalUploader(dir, urlPrefix string) *LocalUploader {
	return &LocalUploader{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (u *LocalUploader) Backend() string { return "local" }

// Upload stores r and returns a site-relative URL.
func (u *LocalUploader) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := prepare(name, contentType, r)
	if err != nil {
		return "", err
	}

	path := filepath.Join(u.Dir, filepath.FromSlash(p.key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, p.body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	return u.URLPrefix + "/" + p.key, nil
}

// Delete removes a file previously returned by Upload. URLs outside
// URLPrefix are ignored.
func (u *LocalUploader) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, u.URLPrefix+"/")
	if !ok || strings.Contains(key, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(u.Dir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}
