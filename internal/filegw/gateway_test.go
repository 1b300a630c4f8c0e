package filegw

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"layerary/internal/storage"
)

func TestResolveContentType(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		detected string
		want     string
	}{
		{"pptx over octet-stream", "x.pptx", "application/octet-stream",
			"application/vnd.openxmlformats-officedocument.presentationml.presentation"},
		{"pptx with no detection", "deck.pptx", "",
			"application/vnd.openxmlformats-officedocument.presentationml.presentation"},
		{"specific detection wins", "photo.png", "image/webp", "image/webp"},
		{"extension fills empty detection", "logo.svg", "", "image/svg+xml"},
		{"uppercase extension", "SCAN.PDF", "", "application/pdf"},
		{"unknown extension keeps detection", "data.xyz", "application/octet-stream", "application/octet-stream"},
		{"unknown extension no detection", "data.xyz", "", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveContentType(tt.filename, tt.detected); got != tt.want {
				t.Errorf("ResolveContentType(%q, %q) = %q, want %q", tt.filename, tt.detected, got, tt.want)
			}
		})
	}
}

func TestETagFor(t *testing.T) {
	long := "https://assets.example.com/bucket/2026/some-very-long-object-key-name.png"
	tag := ETagFor(long)
	if !strings.HasPrefix(tag, `"`) || !strings.HasSuffix(tag, `"`) {
		t.Errorf("ETag %q is not quoted", tag)
	}
	if len(tag) > etagLen+2 {
		t.Errorf("ETag %q longer than %d chars + quotes", tag, etagLen)
	}
	if ETagFor(long) != tag {
		t.Error("ETag must be deterministic for the same URL")
	}
	if ETagFor("https://assets.example.com/other.png") == tag {
		t.Error("different URLs should produce different ETags")
	}
	// Objects on the same host share a long URL prefix; their tags must
	// still differ or If-None-Match serves one file's cache for another.
	if ETagFor("https://assets.example.com/bucket/2026/a.png") ==
		ETagFor("https://assets.example.com/bucket/2026/b.png") {
		t.Error("same-host URLs should produce different ETags")
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGatewayFetchExternal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/deck.pptx":
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write([]byte("slides"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	g := New(nil, nil, testLogger())

	file, err := g.Fetch(context.Background(), srv.URL+"/deck.pptx")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(file.Data) != "slides" {
		t.Errorf("Data = %q, want slides", file.Data)
	}
	if want := "application/vnd.openxmlformats-officedocument.presentationml.presentation"; file.ContentType != want {
		t.Errorf("ContentType = %q, want %q", file.ContentType, want)
	}

	if _, err := g.Fetch(context.Background(), srv.URL+"/missing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing object: err = %v, want ErrNotFound", err)
	}
}

// TestGatewayRefreshesRejectedToken simulates a backend that rejects the
// first credential: the gateway must drop it, refresh, and repeat the
// read once.
func TestGatewayRefreshesRejectedToken(t *testing.T) {
	var issued atomic.Int32
	tokens := storage.NewTokenSource(func(ctx context.Context) (storage.Token, error) {
		n := issued.Add(1)
		tok := "tok-1"
		if n > 1 {
			tok = "tok-2"
		}
		return storage.Token{Value: tok, ExpiresAt: time.Now().Add(time.Hour)}, nil
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("asset"))
	}))
	defer srv.Close()

	g := New(nil, tokens, testLogger())

	file, err := g.Fetch(context.Background(), srv.URL+"/a.png")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(file.Data) != "asset" {
		t.Errorf("Data = %q, want asset", file.Data)
	}
	if n := issued.Load(); n != 2 {
		t.Errorf("credentials issued %d times, want 2", n)
	}
}

func TestGatewayRejectsNonHTTPURL(t *testing.T) {
	g := New(nil, nil, testLogger())
	if _, err := g.Fetch(context.Background(), "ftp://example.com/a.png"); err == nil {
		t.Error("expected error for non-http url")
	}
}
