// Package main is the entry point for the LAYERARY asset library server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"layerary/internal/cache"
	"layerary/internal/config"
	"layerary/internal/database"
	"layerary/internal/filegw"
	"layerary/internal/handlers"
	"layerary/internal/render"
	"layerary/internal/router"
	"layerary/internal/session"
	"layerary/internal/storage"
	"layerary/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey. Sessions and the page cache both live there, so
	// the app does not start without it.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark session cookies as Secure.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Data stores.
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	postStore := store.NewPostStore(db)
	noticeStore := store.NewNoticeStore(db)
	boardStore := store.NewWelcomeBoardStore(db)
	mediaStore := store.NewMediaStore(db)

	// Connect to S3-compatible object storage (optional, uploads are
	// disabled without it).
	var storageClient *storage.Client
	if cfg.StorageEndpoint != "" && cfg.StorageAccessKey != "" {
		storageClient, err = storage.New(
			cfg.StorageEndpoint, cfg.StorageRegion, cfg.StorageAccessKey, cfg.StorageSecretKey,
			cfg.StorageBucketPublic, cfg.StorageBucketPrivate, cfg.StoragePublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize object storage", "error", err)
			os.Exit(1)
		}
		if storageClient != nil {
			slog.Info("object storage connected",
				"endpoint", cfg.StorageEndpoint,
				"asset_bucket", cfg.StorageBucketPublic,
				"vault_bucket", cfg.StorageBucketPrivate,
			)
		}
	} else {
		slog.Warn("object storage not configured, media uploads disabled")
	}

	// Token source for the external file host. Nil when unconfigured; the
	// gateway then fetches foreign URLs without credentials.
	var tokens *storage.TokenSource
	if cfg.FileTokenURL != "" {
		tokens = storage.NewTokenSource(fileTokenFetcher(cfg.FileTokenURL, cfg.FileTokenKey))
	}
	gateway := filegw.New(storageClient, tokens, logger)

	// Full-page HTML cache for category list pages.
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	// Handler groups.
	authHandlers := handlers.NewAuth(renderer, sessionStore, userStore)
	publicHandlers := handlers.NewPublic(renderer, categoryStore, postStore, noticeStore, boardStore, pageCache)
	navHandlers := handlers.NewNav(categoryStore, postStore)
	adminHandlers := handlers.NewAdmin(categoryStore, postStore, noticeStore, boardStore, userStore, pageCache)
	mediaHandlers := handlers.NewMedia(mediaStore, storageClient)
	fileHandlers := handlers.NewFiles(gateway)

	r := router.New(sessionStore, authHandlers, publicHandlers, navHandlers, adminHandlers, mediaHandlers, fileHandlers)

	// WriteTimeout must accommodate large downloads proxied through the
	// file gateway.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// fileTokenFetcher exchanges the long-lived API key for a short-lived
// bearer token at the partner's credential endpoint.
func fileTokenFetcher(tokenURL, apiKey string) func(ctx context.Context) (storage.Token, error) {
	client := &http.Client{Timeout: 10 * time.Second}

	return func(ctx context.Context) (storage.Token, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, nil)
		if err != nil {
			return storage.Token{}, fmt.Errorf("build token request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := client.Do(req)
		if err != nil {
			return storage.Token{}, fmt.Errorf("fetch file token: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return storage.Token{}, fmt.Errorf("token endpoint returned %d", resp.StatusCode)
		}

		var body struct {
			Token     string `json:"token"`
			ExpiresIn int    `json:"expiresIn"` // seconds
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return storage.Token{}, fmt.Errorf("decode token response: %w", err)
		}
		if body.Token == "" {
			return storage.Token{}, fmt.Errorf("token endpoint returned an empty token")
		}

		return storage.Token{
			Value:     body.Token,
			ExpiresAt: time.Now().Add(time.Duration(body.ExpiresIn) * time.Second),
		}, nil
	}
}
