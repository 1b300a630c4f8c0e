// Package filegw brokers file reads for the web layer: it resolves an
// absolute object-storage URL to bytes plus serving metadata (MIME type,
// cache directives, ETag). URLs belonging to the app's own asset store
// are read through the S3 client; anything else is fetched over HTTP
// with a bearer credential from the token cache.
package filegw

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"layerary/internal/storage"
)

// Cache directives. Content addressed by a stable URL never changes at
// that URL, so it can be cached aggressively; admin-facing downloads are
// addressed by mutable identifiers and must not be.
const (
	CacheImmutable = "public, max-age=31536000, immutable"
	CachePrivate   = "private, max-age=0, no-cache"
)

// ErrNotFound is returned when the backing object does not exist.
var ErrNotFound = errors.New("filegw: file not found")

// etagLen truncates the encoded URL digest so ETags stay header-sized.
const etagLen = 24

// File is a fetched object ready to serve.
type File struct {
	Data        []byte
	ContentType string
}

// Gateway resolves file URLs to servable bytes.
type Gateway struct {
	store  *storage.Client
	tokens *storage.TokenSource
	client *http.Client
	logger *slog.Logger
}

// New builds a gateway over the given asset store. tokens may be nil
// when no external storage backend requiring credentials is configured.
func New(store *storage.Client, tokens *storage.TokenSource, logger *slog.Logger) *Gateway {
	return &Gateway{
		store:  store,
		tokens: tokens,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// Fetch resolves an absolute object URL to its bytes and content type.
// The content type is normalized through the extension table, so callers
// can serve the result as-is.
func (g *Gateway) Fetch(ctx context.Context, rawURL string) (*File, error) {
	if g.store != nil {
		if key, ok := g.store.ExtractKey(rawURL); ok {
			data, detected, err := g.store.Fetch(ctx, g.store.AssetBucket(), key)
			if err == storage.ErrNotFound {
				return nil, ErrNotFound
			}
			if err != nil {
				return nil, err
			}
			return &File{Data: data, ContentType: ResolveContentType(key, detected)}, nil
		}
	}
	return g.fetchExternal(ctx, rawURL)
}

// fetchExternal reads an object from a foreign storage backend over
// HTTP. A 401 means the cached credential went stale before its recorded
// expiry; the cache entry is dropped and the read is repeated once with
// a fresh credential.
func (g *Gateway) fetchExternal(ctx context.Context, rawURL string) (*File, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("filegw: invalid file url %q", rawURL)
	}

	file, status, tok, err := g.doExternal(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized && g.tokens != nil {
		g.tokens.Invalidate(tok)
		g.logger.Warn("storage credential rejected, refreshing", "url", rawURL)
		file, status, _, err = g.doExternal(ctx, rawURL)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case status == http.StatusNotFound:
		return nil, ErrNotFound
	case status != http.StatusOK:
		return nil, fmt.Errorf("filegw: upstream returned %d for %s", status, rawURL)
	}

	file.ContentType = ResolveContentType(path.Base(u.Path), file.ContentType)
	return file, nil
}

func (g *Gateway) doExternal(ctx context.Context, rawURL string) (*File, int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, "", fmt.Errorf("filegw: build request: %w", err)
	}

	var tok string
	if g.tokens != nil {
		tok, err = g.tokens.Token(ctx)
		if err != nil {
			return nil, 0, "", fmt.Errorf("filegw: storage credential: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, 0, tok, fmt.Errorf("filegw: fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &File{}, resp.StatusCode, tok, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, tok, fmt.Errorf("filegw: read body %s: %w", rawURL, err)
	}
	return &File{Data: data, ContentType: resp.Header.Get("Content-Type")}, resp.StatusCode, tok, nil
}

// ETagFor derives the ETag for a served file from a digest of its source
// URL. The tag changes when the URL changes, not when the object behind
// it does; paired with immutable caching this assumes objects are never
// replaced in place at the same URL.
func ETagFor(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	enc := base64.RawURLEncoding.EncodeToString(sum[:])
	return `"` + enc[:etagLen] + `"`
}
