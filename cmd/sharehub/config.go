package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/eringen/sharehub"
	"github.com/eringen/sharehub/media"
)

// siteConfigFromEnv builds the server configuration from environment
// variables. Secrets are not checked here; App.Init rejects missing ones.
func siteConfigFromEnv() (sharehub.SiteConfig, error) {
	cfg := sharehub.SiteConfig{
		Name:           sharehub.EnvOr("SITE_NAME", ""),
		URL:            sharehub.EnvOr("SITE_URL", ""),
		Description:    sharehub.EnvOr("SITE_DESCRIPTION", ""),
		TwitterHandle:  sharehub.EnvOr("SITE_TWITTER", ""),
		DeploymentURL:  sharehub.EnvOr("DEPLOYMENT_URL", ""),
		Development:    sharehub.EnvOr("APP_ENV", "production") == "development",
		Addr:           sharehub.EnvOr("ADDR", ""),
		DatabaseDriver: sharehub.EnvOr("DATABASE_DRIVER", sharehub.DriverSQLite),
		DatabaseURL:    sharehub.EnvOr("DATABASE_URL", ""),
		AdminPassword:  sharehub.EnvOr("ADMIN_PASSWORD", ""),
		SessionSecret:  sharehub.EnvOr("SESSION_SECRET", ""),
		RedisURL:       sharehub.EnvOr("REDIS_URL", ""),
		UploadDir:      sharehub.EnvOr("UPLOAD_DIR", ""),
	}

	var err error
	if cfg.CookieSecure, err = envBool("COOKIE_SECURE", false); err != nil {
		return cfg, err
	}
	if cfg.AnalyticsEnabled, err = envBool("ANALYTICS_ENABLED", true); err != nil {
		return cfg, err
	}
	if cfg.MetricsEnabled, err = envBool("METRICS_ENABLED", false); err != nil {
		return cfg, err
	}
	if v := sharehub.EnvOr("LINK_CACHE_TTL", ""); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("LINK_CACHE_TTL: %w", err)
		}
		cfg.LinkCacheTTL = ttl
	}
	return cfg, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := sharehub.EnvOr(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// uploaderFromEnv returns the S3 uploader when UPLOAD_BACKEND=s3, or nil to
// keep the local default.
func uploaderFromEnv() (media.Uploader, error) {
	switch backend := sharehub.EnvOr("UPLOAD_BACKEND", "local"); backend {
	case "local":
		return nil, nil
	case "s3":
		disableSSL, err := envBool("S3_DISABLE_SSL", false)
		if err != nil {
			return nil, err
		}
		u, err := media.NewS3Uploader(media.S3Config{
			Bucket:          sharehub.EnvOr("S3_BUCKET", ""),
			Region:          sharehub.EnvOr("S3_REGION", ""),
			Endpoint:        sharehub.EnvOr("S3_ENDPOINT", ""),
			AccessKeyID:     sharehub.EnvOr("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: sharehub.EnvOr("AWS_SECRET_ACCESS_KEY", ""),
			PublicURL:       sharehub.EnvOr("S3_PUBLIC_URL", ""),
			DisableSSL:      disableSSL,
		})
		if err != nil {
			return nil, err
		}
		return u, nil
	default:
		return nil, fmt.Errorf("unsupported UPLOAD_BACKEND %q", backend)
	}
}
