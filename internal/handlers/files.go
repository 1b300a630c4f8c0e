package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"layerary/internal/filegw"
)

// Files proxies object-storage reads for pages that cannot link objects
// directly (mixed-origin assets, credentialed backends).
type Files struct {
	gateway *filegw.Gateway
}

// NewFiles creates a new Files handler group. gateway may be nil when no
// storage is configured; the proxy then 503s.
func NewFiles(gateway *filegw.Gateway) *Files {
	return &Files{gateway: gateway}
}

// Proxy serves GET /api/files?url=: stream the object back with derived
// Content-Type, Content-Length, Cache-Control, and ETag headers. Content
// addressed by a stable URL is immutable, so a matching If-None-Match
// short-circuits to 304 before touching storage.
func (f *Files) Proxy(w http.ResponseWriter, r *http.Request) {
	if f.gateway == nil {
		writeError(w, "Object storage is not configured.", http.StatusServiceUnavailable)
		return
	}

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, "url parameter is required", http.StatusBadRequest)
		return
	}

	etag := filegw.ETagFor(rawURL)
	if r.Header.Get("If-None-Match") == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	file, err := f.gateway.Fetch(r.Context(), rawURL)
	if err != nil {
		if errors.Is(err, filegw.ErrNotFound) {
			writeError(w, "file not found", http.StatusNotFound)
			return
		}
		slog.Error("file fetch failed", "url", rawURL, "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.Header().Set("Cache-Control", filegw.CacheImmutable)
	w.Header().Set("ETag", etag)
	w.Write(file.Data)
}

// Download serves GET /api/admin/files/download?url=: the same fetch but
// with a Content-Disposition attachment and private cache directives,
// since admin downloads are addressed by mutable identifiers.
func (f *Files) Download(w http.ResponseWriter, r *http.Request) {
	if f.gateway == nil {
		writeError(w, "Object storage is not configured.", http.StatusServiceUnavailable)
		return
	}

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, "url parameter is required", http.StatusBadRequest)
		return
	}

	file, err := f.gateway.Fetch(r.Context(), rawURL)
	if err != nil {
		if errors.Is(err, filegw.ErrNotFound) {
			writeError(w, "file not found", http.StatusNotFound)
			return
		}
		slog.Error("file fetch failed", "url", rawURL, "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "download"
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.Header().Set("Cache-Control", filegw.CachePrivate)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Write(file.Data)
}
