// Package router sets up all HTTP routes and middleware chains for
// LAYERARY. The authorization gate runs globally, classifying every
// request by path before any category or content lookup.
package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"layerary/internal/handlers"
	"layerary/internal/middleware"
	"layerary/internal/session"
	"layerary/web"
)

// New creates and returns the configured chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, auth *handlers.Auth, public *handlers.Public, nav *handlers.Nav, admin *handlers.Admin, media *handlers.Media, files *handlers.Files) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))
	r.Use(middleware.Gate)

	// Health check.
	r.Get("/health", healthHandler)

	// Static assets.
	staticFS, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Auth routes are public by path class; the handlers check sessions
	// themselves.
	r.Get("/login", auth.LoginPage)
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	r.Route("/api/auth", func(r chi.Router) {
		r.With(loginLimiter.Middleware).Post("/login", auth.LoginSubmit)
		r.Post("/logout", auth.Logout)
		r.Get("/2fa/setup", auth.TwoFASetupPage)
		r.Get("/2fa/verify", auth.TwoFAVerifyPage)
		r.Post("/2fa/verify", auth.TwoFAVerifySubmit)
	})

	// Member APIs.
	r.Get("/api/posts/{id}/navigation", nav.Adjacent)
	r.Get("/api/files", files.Proxy)

	// Admin API. The gate already guards the /api/admin prefix; mutations
	// carry the role re-check as defense in depth.
	r.Route("/api/admin", func(r chi.Router) {
		r.Get("/categories", admin.CategoriesList)
		r.Get("/categories/{id}/posts", admin.PostsByCategory)
		r.Get("/notices", admin.NoticesList)
		r.Get("/welcome-boards", admin.BoardsList)
		r.Get("/users", admin.UsersList)
		r.Get("/media", media.List)
		r.Get("/media/{id}", media.Serve)
		r.Get("/files/download", files.Download)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdminAPI)

			r.Post("/categories", admin.CategoryCreate)
			r.Put("/categories/{id}", admin.CategoryUpdate)
			r.Delete("/categories/{id}", admin.CategoryDelete)

			r.Post("/posts", admin.PostCreate)
			r.Put("/posts/{id}", admin.PostUpdate)
			r.Delete("/posts/{id}", admin.PostDelete)

			r.Post("/notices", admin.NoticeCreate)
			r.Put("/notices/{id}", admin.NoticeUpdate)
			r.Delete("/notices/{id}", admin.NoticeDelete)

			r.Post("/welcome-boards", admin.BoardCreate)
			r.Put("/welcome-boards/{id}", admin.BoardUpdate)
			r.Post("/welcome-boards/{id}/activate", admin.BoardActivate)
			r.Delete("/welcome-boards/{id}", admin.BoardDelete)

			r.Post("/users", admin.UserCreate)
			r.Put("/users/{id}/role", admin.UserSetRole)

			r.Post("/media", media.Upload)
			r.Delete("/media/{id}", media.Delete)
		})
	})

	// Member pages: home, category list, post detail.
	r.Get("/", public.Home)
	r.Get("/{slug}", public.CategoryPage)
	r.Get("/{slug}/{id}", public.PostPage)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
