package storage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTokenSourceCachesUntilExpiry(t *testing.T) {
	var calls atomic.Int32
	ts := NewTokenSource(func(ctx context.Context) (Token, error) {
		calls.Add(1)
		return Token{Value: "tok-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
	})

	for i := 0; i < 5; i++ {
		got, err := ts.Token(context.Background())
		if err != nil {
			t.Fatalf("Token: %v", err)
		}
		if got != "tok-1" {
			t.Errorf("Token = %q, want tok-1", got)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("fetch called %d times, want 1", n)
	}
}

func TestTokenSourceRefreshesExpired(t *testing.T) {
	var calls atomic.Int32
	ts := NewTokenSource(func(ctx context.Context) (Token, error) {
		n := calls.Add(1)
		if n == 1 {
			// Already inside the refresh window.
			return Token{Value: "stale", ExpiresAt: time.Now().Add(time.Second)}, nil
		}
		return Token{Value: "fresh", ExpiresAt: time.Now().Add(time.Hour)}, nil
	})

	if got, err := ts.Token(context.Background()); err != nil || got != "stale" {
		t.Fatalf("first Token = %q, %v", got, err)
	}
	if got, err := ts.Token(context.Background()); err != nil || got != "fresh" {
		t.Fatalf("second Token = %q, %v; want fresh", got, err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("fetch called %d times, want 2", n)
	}
}

func TestTokenSourceInvalidate(t *testing.T) {
	var calls atomic.Int32
	ts := NewTokenSource(func(ctx context.Context) (Token, error) {
		calls.Add(1)
		return Token{Value: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil
	})

	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Invalidating a value that no longer matches is a no-op.
	ts.Invalidate("other")
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("fetch called %d times after no-op invalidate, want 1", n)
	}

	ts.Invalidate("tok")
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("fetch called %d times after invalidate, want 2", n)
	}
}

// TestTokenSourceSingleFlight drives many goroutines at a cold cache and
// expects exactly one refresh.
func TestTokenSourceSingleFlight(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	ts := NewTokenSource(func(ctx context.Context) (Token, error) {
		calls.Add(1)
		<-release
		return Token{Value: "shared", ExpiresAt: time.Now().Add(time.Hour)}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := ts.Token(context.Background())
			if err != nil {
				t.Errorf("Token: %v", err)
				return
			}
			if got != "shared" {
				t.Errorf("Token = %q, want shared", got)
			}
		}()
	}

	// Give the goroutines time to pile onto the flight before releasing.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("fetch called %d times, want 1", n)
	}
}

func TestTokenSourceFetchError(t *testing.T) {
	wantErr := errors.New("credential endpoint down")
	ts := NewTokenSource(func(ctx context.Context) (Token, error) {
		return Token{}, wantErr
	})

	if _, err := ts.Token(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Token error = %v, want %v", err, wantErr)
	}
}
