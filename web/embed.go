// Package web provides embedded static assets (CSS, JS) served at /static/.
// In development, templates load HTMX from CDN; in production the vendored
// copy is embedded here alongside the compiled stylesheet.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree. Docker builds vendor the
// HTMX bundle into static/js/ before compiling; local development only needs
// the stylesheet.
//
//go:embed all:static
var StaticFS embed.FS
