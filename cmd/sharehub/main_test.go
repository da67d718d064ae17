package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/sharehub"
	"github.com/eringen/sharehub/content"
)

func TestSiteConfigFromEnv(t *testing.T) {
	t.Setenv("SITE_NAME", "Hub")
	t.Setenv("SITE_URL", "https://hub.example")
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_DRIVER", "pgx")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ANALYTICS_ENABLED", "false")
	t.Setenv("LINK_CACHE_TTL", "90s")

	cfg, err := siteConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "Hub", cfg.Name)
	assert.Equal(t, "https://hub.example", cfg.URL)
	assert.True(t, cfg.Development)
	assert.Equal(t, sharehub.DriverPostgres, cfg.DatabaseDriver)
	assert.True(t, cfg.CookieSecure)
	assert.False(t, cfg.AnalyticsEnabled)
	assert.Equal(t, 90*time.Second, cfg.LinkCacheTTL)
}

func TestSiteConfigFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("COOKIE_SECURE", "sometimes")
	_, err := siteConfigFromEnv()
	assert.ErrorContains(t, err, "COOKIE_SECURE")

	t.Setenv("COOKIE_SECURE", "")
	t.Setenv("LINK_CACHE_TTL", "soon")
	_, err = siteConfigFromEnv()
	assert.ErrorContains(t, err, "LINK_CACHE_TTL")
}

func TestUploaderFromEnv(t *testing.T) {
	t.Setenv("UPLOAD_BACKEND", "")
	u, err := uploaderFromEnv()
	require.NoError(t, err)
	assert.Nil(t, u)

	t.Setenv("UPLOAD_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "")
	_, err = uploaderFromEnv()
	assert.Error(t, err)

	t.Setenv("UPLOAD_BACKEND", "ftp")
	_, err = uploaderFromEnv()
	assert.ErrorContains(t, err, "ftp")
}

func TestPrintResolution(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResolution(&buf, "https://youtu.be/dQw4w9WgXcQ"))
	out := buf.String()
	assert.Contains(t, out, "youtube")
	assert.Contains(t, out, "dQw4w9WgXcQ")
	assert.Contains(t, out, "https://www.youtube.com/embed/dQw4w9WgXcQ")
	assert.Contains(t, out, "img.youtube.com")

	buf.Reset()
	require.NoError(t, printResolution(&buf, "https://cdn.example.com/clip.webm"))
	assert.Contains(t, buf.String(), "video/webm")

	assert.Error(t, printResolution(&buf, "https://example.com/article"))
}

func TestLinksTable(t *testing.T) {
	links := []content.GeneratedLink{{
		LinkID:    "abc123",
		Title:     "A very long title that should be truncated before it reaches the table edge",
		CreatedAt: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
	}}
	out := linksTable(links, "https://hub.example")
	assert.Contains(t, out, "https://hub.example/post/abc123")
	assert.Contains(t, out, "2024-05-01 10:30")
	assert.NotContains(t, out, "table edge")
}

func TestLinksCommandEmptyStore(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "links.db"))

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"links", "--env-file", filepath.Join(t.TempDir(), "missing.env")})
	err := cmd.Execute()
	require.Error(t, err, "an explicit env file that does not exist is an error")

	out.Reset()
	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"links"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "No links yet.", strings.TrimSpace(out.String()))
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "sharehub dev\n", out.String())
}
