package sharehub

import (
	"strings"
	"time"

	"github.com/eringen/sharehub/media"
	"github.com/eringen/sharehub/meta"
	"github.com/eringen/sharehub/metrics"
)

// SiteConfig holds all configuration for a sharehub server.
type SiteConfig struct {
	Name          string // Site name (default "Social Media Hub")
	URL           string // Explicit public URL; wins over every other domain source
	Description   string // Site description for RSS and the home page
	TwitterHandle string // twitter:site handle (default "@SocialMediaHub")
	DeploymentURL string // Platform-provided deployment host, scheme optional
	Development   bool   // Allow the localhost fallback domain

	Addr           string // Listen address (default ":3000")
	DatabaseDriver string // "sqlite" (default) or "pgx"
	DatabaseURL    string // DSN or SQLite path (default "data/sharehub.db")

	AnalyticsEnabled      bool   // Record page and crawler hits
	AnalyticsDatabasePath string // Analytics SQLite path (default "data/analytics.db")

	AdminPassword string // Required: shared access password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	RedisURL       string        // Optional shared link cache
	LinkCacheTTL   time.Duration // Link cache TTL (default 5min)
	MetricsEnabled bool          // Serve /metrics
	UploadDir      string        // Local upload directory (default "<static>/uploads")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Social Media Hub"
	}
	if c.TwitterHandle == "" {
		c.TwitterHandle = "@SocialMediaHub"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabaseDriver == "" {
		c.DatabaseDriver = DriverSQLite
	}
	if c.DatabaseURL == "" && c.DatabaseDriver == DriverSQLite {
		c.DatabaseURL = "data/sharehub.db"
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.LinkCacheTTL == 0 {
		c.LinkCacheTTL = 5 * time.Minute
	}
	c.URL = strings.TrimRight(strings.TrimSpace(c.URL), "/")
}

// ResolverConfig returns the metadata resolver settings derived from c.
func (c SiteConfig) ResolverConfig() meta.Config {
	return meta.Config{
		SiteURL:       c.URL,
		DeploymentURL: c.DeploymentURL,
		Development:   c.Development,
		SiteName:      c.Name,
		TwitterHandle: c.TwitterHandle,
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithUploader replaces the local-disk uploader, e.g. with a media.S3Uploader.
func WithUploader(u media.Uploader) Option {
	return func(a *App) {
		a.Uploader = u
	}
}

// WithLinkCache replaces the link cache built from RedisURL / LinkCacheTTL.
func WithLinkCache(c LinkCache) Option {
	return func(a *App) {
		a.Links = c
	}
}

// WithMetrics sets the metrics recorder. Without it, MetricsEnabled selects
// Prometheus or a no-op recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(a *App) {
		a.Metrics = r
	}
}

// WithViews overrides the page components.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
