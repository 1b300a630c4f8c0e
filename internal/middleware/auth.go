package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"layerary/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"
)

// RequestClass is the authorization class of a request path. The class is
// decided from the path alone, before any category or content lookup, so
// unauthenticated traffic never reaches the database.
type RequestClass int

const (
	// ClassPublic paths are always allowed, no session check.
	ClassPublic RequestClass = iota
	// ClassMember paths require any authenticated session.
	ClassMember
	// ClassAdminPage paths require an admin session; failures redirect
	// silently rather than rendering an error page.
	ClassAdminPage
	// ClassAdminAPI paths require an admin session; failures surface as
	// machine-readable 401/403 JSON.
	ClassAdminAPI
)

// twoFAVerifyPath is where sessions that still owe TOTP verification are
// sent. It lives under /api/auth/ so the redirect never loops through
// the gate.
const twoFAVerifyPath = "/api/auth/2fa/verify"

// publicPrefixes lists path prefixes that never require a session.
var publicPrefixes = []string{
	"/static/",
	"/api/auth/",
}

// publicPaths lists exact paths that never require a session.
var publicPaths = map[string]bool{
	"/":            true,
	"/login":       true,
	"/register":    true,
	"/health":      true,
	"/favicon.ico": true,
}

// Classify maps a request path to its authorization class.
func Classify(path string) RequestClass {
	if strings.HasPrefix(path, "/api/admin/") {
		return ClassAdminAPI
	}
	if path == "/admin" || strings.HasPrefix(path, "/admin/") {
		return ClassAdminPage
	}
	if publicPaths[path] {
		return ClassPublic
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return ClassPublic
		}
	}
	return ClassMember
}

// LoadSession retrieves the session from Valkey and stores it in the
// request context. Downstream handlers can access it via SessionFromCtx().
// This middleware does NOT enforce authentication; it just loads the
// session if one exists.
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				// Treat a lookup failure as unauthenticated.
				next.ServeHTTP(w, r)
				return
			}

			if data != nil {
				ctx := context.WithValue(r.Context(), SessionKey, data)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Gate enforces the authorization class of every request. Must be applied
// after LoadSession in the middleware chain.
//
// Member paths without a session redirect to the root. Admin pages with a
// missing or under-privileged session also redirect to the root, a silent
// downgrade, not an error page. Admin API paths return 401/403 JSON because
// API consumers need a status code, not a browser navigation.
//
// A session with TwoFADone false has proven a password but not the TOTP
// code, so it does not count as authenticated yet: pages send it to the
// verify form, API paths answer 401.
func Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())

		switch Classify(r.URL.Path) {
		case ClassPublic:
			// Fall through.

		case ClassMember:
			if sess == nil {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			if !sess.TwoFADone {
				http.Redirect(w, r, twoFAVerifyPath, http.StatusSeeOther)
				return
			}

		case ClassAdminPage:
			if sess == nil || sess.Role != "admin" {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			if !sess.TwoFADone {
				http.Redirect(w, r, twoFAVerifyPath, http.StatusSeeOther)
				return
			}

		case ClassAdminAPI:
			if sess == nil {
				writeAuthError(w, "authentication required", http.StatusUnauthorized)
				return
			}
			if !sess.TwoFADone {
				writeAuthError(w, "two-factor verification required", http.StatusUnauthorized)
				return
			}
			if sess.Role != "admin" {
				writeAuthError(w, "admin role required", http.StatusForbidden)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdminAPI re-checks the admin role at the handler boundary of
// write-mutating API endpoints. The Gate already covers /api/admin/*;
// this guard is defense in depth for mutations mounted elsewhere.
func RequireAdminAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())
		if sess == nil {
			writeAuthError(w, "authentication required", http.StatusUnauthorized)
			return
		}
		if !sess.TwoFADone {
			writeAuthError(w, "two-factor verification required", http.StatusUnauthorized)
			return
		}
		if sess.Role != "admin" {
			writeAuthError(w, "admin role required", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded (user is not authenticated).
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}

// writeAuthError writes a machine-readable JSON error body.
func writeAuthError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
