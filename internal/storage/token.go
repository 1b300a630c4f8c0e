package storage

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Token is a storage-backend credential with an explicit expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// refreshSkew refreshes tokens slightly ahead of their expiry so a token
// handed to a caller does not expire mid-request.
const refreshSkew = 30 * time.Second

// TokenSource caches a backend auth token and refreshes it on expiry or
// explicit invalidation (a 401 from the backend). Concurrent callers
// hitting an expired token share one refresh via singleflight instead of
// stampeding the credential endpoint.
type TokenSource struct {
	fetch func(ctx context.Context) (Token, error)
	group singleflight.Group

	mu  sync.RWMutex
	tok Token
	now func() time.Time // test seam
}

// NewTokenSource wraps a credential fetch function in an expiring cache.
func NewTokenSource(fetch func(ctx context.Context) (Token, error)) *TokenSource {
	return &TokenSource{fetch: fetch, now: time.Now}
}

// Token returns a valid credential, refreshing when the cached one is
// absent or within the skew window of expiry.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.RLock()
	tok := ts.tok
	ts.mu.RUnlock()

	if tok.Value != "" && ts.now().Add(refreshSkew).Before(tok.ExpiresAt) {
		return tok.Value, nil
	}

	v, err, _ := ts.group.Do("refresh", func() (any, error) {
		// Re-check under the flight: a concurrent caller may have
		// already refreshed while this one waited.
		ts.mu.RLock()
		cur := ts.tok
		ts.mu.RUnlock()
		if cur.Value != "" && ts.now().Add(refreshSkew).Before(cur.ExpiresAt) {
			return cur.Value, nil
		}

		fresh, err := ts.fetch(ctx)
		if err != nil {
			return "", err
		}
		ts.mu.Lock()
		ts.tok = fresh
		ts.mu.Unlock()
		return fresh.Value, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token if it still matches the rejected
// value, forcing the next Token call to refresh. Called when the backend
// answers 401 for a token the cache considered valid.
func (ts *TokenSource) Invalidate(rejected string) {
	ts.mu.Lock()
	if ts.tok.Value == rejected {
		ts.tok = Token{}
	}
	ts.mu.Unlock()
}
