package sharehub

import "embed"

// EmbeddedAssets holds the browser assets served under /public/:
// overlay.js, admin.js and sharehub.css, plus the placeholder.svg template.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
