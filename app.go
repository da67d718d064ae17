// Package sharehub turns submitted posts into shareable landing pages whose
// social-preview metadata is resolved server-side on every request.
//
// The App wires the store, link cache, metadata resolver, media uploader and
// page components behind an Echo server. Views can be swapped through
// ViewFuncs; everything else is driven by SiteConfig.
package sharehub

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/sharehub/analytics"
	"github.com/eringen/sharehub/media"
	"github.com/eringen/sharehub/meta"
	"github.com/eringen/sharehub/metrics"
)

// App is the central sharehub application.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Links    LinkCache
	Resolver *meta.Resolver
	Uploader media.Uploader
	Metrics  metrics.Recorder
	Views    ViewFuncs

	loginLimiter   *RateLimiter
	apiLimiter     *RateLimiter
	analyticsStore *analytics.Store
	stopCleanup    func()
	customRoutes   []func(*App)
	staticDir      string
}

// New creates a new App. Nothing is opened until Init or Start.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     DefaultViews(),
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the store and optional services and registers middleware and
// routes. Start calls it; tests call it directly and drive a.Echo.
func (a *App) Init(ctx context.Context) error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("sharehub: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("sharehub: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabaseDriver, a.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("sharehub: init store: %w", err)
	}
	a.Store = store

	if a.Links == nil {
		if a.Config.RedisURL != "" {
			rc, err := NewRedisLinkCache(ctx, a.Config.RedisURL, a.Config.LinkCacheTTL)
			if err != nil {
				return fmt.Errorf("sharehub: init link cache: %w", err)
			}
			a.Links = rc
		} else {
			a.Links = NewMemoryLinkCache(a.Config.LinkCacheTTL, 1000)
		}
	}

	if a.Metrics == nil {
		if a.Config.MetricsEnabled {
			a.Metrics = metrics.NewPrometheus()
		} else {
			a.Metrics = metrics.Nop{}
		}
	}

	if a.Uploader == nil {
		dir := a.Config.UploadDir
		if dir == "" {
			dir = filepath.Join(a.staticDir, "uploads")
		}
		a.Uploader = media.NewLocalUploader(dir, "/public/uploads")
	}

	a.Resolver = meta.NewResolver(a.Config.ResolverConfig())
	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.apiLimiter = NewRateLimiter(60, time.Minute)

	if a.Config.AnalyticsEnabled {
		if err := os.MkdirAll(filepath.Dir(a.Config.AnalyticsDatabasePath), 0o755); err != nil {
			return fmt.Errorf("sharehub: create analytics dir: %w", err)
		}
		analyticsStore, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("sharehub: init analytics: %w", err)
		}
		a.analyticsStore = analyticsStore
		if err := analytics.InitSalt(analyticsStore); err != nil {
			return fmt.Errorf("sharehub: init analytics salt: %w", err)
		}
		a.stopCleanup = analyticsStore.StartCleanupScheduler(365, 24*time.Hour)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and serves until the server stops.
func (a *App) Start() error {
	if err := a.Init(context.Background()); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets are served under /public/ and fall through to the
	// user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	for _, name := range []string{"overlay.js", "admin.js", "sharehub.css"} {
		e.GET("/public/"+name, echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	}

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/placeholder.svg", handlePlaceholder)
	e.HEAD("/placeholder.svg", handlePlaceholder)

	// Public landing page and its JSON API
	e.GET("/post/:linkId", a.handlePost)
	e.HEAD("/post/:linkId", a.handlePost)
	api := e.Group("/api/posts/:linkId", a.apiLimiter.Middleware)
	api.GET("/meta", a.handlePostMeta)
	api.GET("/comments", a.handleListComments)
	api.POST("/comments", a.handleAddComment)
	api.POST("/like", a.handleLike)
	api.DELETE("/like", a.handleUnlike)
	api.POST("/share", a.handleShare)

	// Gated creator pages
	e.GET("/", a.handleHome)
	e.POST("/login/", a.handleLogin)
	e.POST("/logout/", handleLogout)
	e.POST("/posts/", a.handleCreatePost)
	e.GET("/links/", a.handleLinks)
	e.DELETE("/links/:linkId/", a.handleDeleteLink)

	if a.Config.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler()), a.requireAdmin)
	}

	if a.analyticsStore != nil {
		analytics.NewHandler(a.analyticsStore).RegisterRoutes(e, a.requireAdmin)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.apiLimiter != nil {
		a.apiLimiter.Stop()
	}
	if rc, ok := a.Links.(*RedisLinkCache); ok {
		rc.Close()
	}
	if a.Store != nil {
		a.Store.Close()
	}
	if a.analyticsStore != nil {
		a.analyticsStore.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("sharehub: required environment variable %s is not set", key)
	}
	return v
}
