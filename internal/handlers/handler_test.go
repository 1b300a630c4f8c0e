// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"layerary/internal/cache"
	"layerary/internal/database"
	"layerary/internal/middleware"
	"layerary/internal/models"
	"layerary/internal/render"
	"layerary/internal/session"
	"layerary/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "layerary")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "layerary")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Valkey client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "page:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB            *sql.DB
	Valkey        *redis.Client
	Renderer      *render.Renderer
	Sessions      *session.Store
	CategoryStore *store.CategoryStore
	PostStore     *store.PostStore
	NoticeStore   *store.NoticeStore
	BoardStore    *store.WelcomeBoardStore
	UserStore     *store.UserStore
	PageCache     *cache.PageCache
	Admin         *Admin
	Auth          *Auth
	Public        *Public
	Nav           *Nav
}

// newTestEnv creates a complete test environment with all handler
// dependencies wired.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk, false)
	categoryStore := store.NewCategoryStore(db)
	postStore := store.NewPostStore(db)
	noticeStore := store.NewNoticeStore(db)
	boardStore := store.NewWelcomeBoardStore(db)
	userStore := store.NewUserStore(db)
	pageCache := cache.NewPageCache(vk, 1*time.Minute)

	return &testEnv{
		DB:            db,
		Valkey:        vk,
		Renderer:      renderer,
		Sessions:      sessions,
		CategoryStore: categoryStore,
		PostStore:     postStore,
		NoticeStore:   noticeStore,
		BoardStore:    boardStore,
		UserStore:     userStore,
		PageCache:     pageCache,
		Admin:         NewAdmin(categoryStore, postStore, noticeStore, boardStore, userStore, pageCache),
		Auth:          NewAuth(renderer, sessions, userStore),
		Public:        NewPublic(renderer, categoryStore, postStore, noticeStore, boardStore, pageCache),
		Nav:           NewNav(categoryStore, postStore),
	}
}

// testAdmin inserts a throwaway admin user and returns it.
func (env *testEnv) testAdmin(t *testing.T) *models.User {
	t.Helper()
	email := "admin-" + uuid.NewString()[:8] + "@layerary.local"
	u, err := env.UserStore.Create(context.Background(), email, "password123", "Test Admin", models.RoleAdmin)
	if err != nil {
		t.Fatalf("create test admin: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM users WHERE id = $1", u.ID)
	})
	return u
}

// testCategory inserts a throwaway category.
func (env *testEnv) testCategory(t *testing.T, catType models.CategoryType, pageType *string) *models.Category {
	t.Helper()
	c, err := env.CategoryStore.Create(context.Background(), &models.Category{
		Slug:     "cat-" + uuid.NewString()[:8],
		Name:     "Test Category",
		Type:     catType,
		PageType: pageType,
	})
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM posts WHERE category_id = $1", c.ID)
		env.DB.Exec("DELETE FROM categories WHERE id = $1", c.ID)
	})
	return c
}

// testPost inserts a published post into a category.
func (env *testEnv) testPost(t *testing.T, categoryID, authorID uuid.UUID, title string) *models.Post {
	t.Helper()
	p, err := env.PostStore.Create(context.Background(), &models.Post{
		CategoryID: categoryID,
		Title:      title,
		Status:     models.PostStatusPublished,
		AuthorID:   authorID,
	})
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	return p
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates session data for a user.
func testSession(userID uuid.UUID, role string) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       "test@layerary.local",
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   true,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
