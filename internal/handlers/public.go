package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"layerary/internal/cache"
	"layerary/internal/content"
	"layerary/internal/middleware"
	"layerary/internal/render"
	"layerary/internal/store"
)

// Public groups the handlers serving the member-facing pages: the home
// page and the per-category list/detail pages driven by the content
// router.
type Public struct {
	renderer      *render.Renderer
	categoryStore *store.CategoryStore
	postStore     *store.PostStore
	noticeStore   *store.NoticeStore
	boardStore    *store.WelcomeBoardStore
	pageCache     *cache.PageCache
}

// NewPublic creates a new Public handler group. pageCache may be nil
// when Valkey is unavailable; pages then render uncached.
func NewPublic(renderer *render.Renderer, categoryStore *store.CategoryStore, postStore *store.PostStore, noticeStore *store.NoticeStore, boardStore *store.WelcomeBoardStore, pageCache *cache.PageCache) *Public {
	return &Public{
		renderer:      renderer,
		categoryStore: categoryStore,
		postStore:     postStore,
		noticeStore:   noticeStore,
		boardStore:    boardStore,
		pageCache:     pageCache,
	}
}

// Home renders the landing page with the notice board.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := p.categoryStore.List(ctx)
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}
	notices, err := p.noticeStore.List(ctx)
	if err != nil {
		slog.Error("list notices failed", "error", err)
	}

	p.renderer.Page(w, r, "home", &render.PageData{
		Title:      "Home",
		Categories: categories,
		Session:    middleware.SessionFromCtx(ctx),
		Data:       map[string]any{"notices": notices},
	})
}

// CategoryPage serves GET /{slug}: resolve the category, derive its page
// type, and dispatch through the content router. List pages without an
// open overlay are cached whole; the cached HTML is identical for every
// signed-in viewer.
func (p *Public) CategoryPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	category, err := p.categoryStore.FindBySlug(ctx, slugParam)
	if err != nil {
		slog.Error("category lookup failed", "slug", slugParam, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		http.NotFound(w, r)
		return
	}

	openPostID := r.URL.Query().Get("postId")
	cacheable := p.pageCache != nil && openPostID == ""
	if cacheable {
		if html, ok := p.pageCache.Get(ctx, cache.ListKey(category.Slug)); ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(html)
			return
		}
	}

	decision := content.Route(category, category.ResolvePageType(), content.RequestList, "")

	data := map[string]any{"openPostID": openPostID}
	if decision.View != content.ViewPlaceholder {
		posts, err := p.postStore.ListPublishedByCategory(ctx, category.ID)
		if err != nil {
			slog.Error("list posts failed", "slug", category.Slug, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		data["posts"] = posts
	}
	if decision.View == content.ViewWelcomeBoard {
		board, err := p.boardStore.FindActive(ctx)
		if err != nil {
			slog.Error("active welcome board lookup failed", "error", err)
		}
		if board != nil {
			data["activeBoard"] = board
		}
	}

	categories, err := p.categoryStore.List(ctx)
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}

	html, err := p.renderer.HTML(decision.View, &render.PageData{
		Title:      category.Name,
		Category:   category,
		Categories: categories,
		Session:    middleware.SessionFromCtx(ctx),
		Data:       data,
	})
	if err != nil {
		slog.Error("render failed", "view", decision.View, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if cacheable {
		p.pageCache.Set(ctx, cache.ListKey(category.Slug), html)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// PostPage serves GET /{slug}/{id}. Only the gallery variant renders a
// standalone detail page; every other recognized variant redirects to
// the list route carrying the post id, where the list page opens the
// post in an overlay.
func (p *Public) PostPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")
	idParam := chi.URLParam(r, "id")

	category, err := p.categoryStore.FindBySlug(ctx, slugParam)
	if err != nil {
		slog.Error("category lookup failed", "slug", slugParam, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		http.NotFound(w, r)
		return
	}

	decision := content.Route(category, category.ResolvePageType(), content.RequestDetail, idParam)
	if decision.Redirect {
		http.Redirect(w, r, decision.Location, http.StatusFound)
		return
	}

	categories, err := p.categoryStore.List(ctx)
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}

	pageData := &render.PageData{
		Title:      category.Name,
		Category:   category,
		Categories: categories,
		Session:    middleware.SessionFromCtx(ctx),
		Data:       map[string]any{},
	}

	if decision.View == content.ViewGalleryDetail {
		id, err := uuid.Parse(idParam)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		post, err := p.postStore.FindByID(ctx, id)
		if err != nil {
			slog.Error("post lookup failed", "id", idParam, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if post == nil || post.CategoryID != category.ID || !post.IsPublished() {
			http.NotFound(w, r)
			return
		}
		pageData.Title = post.Title
		pageData.Data["post"] = post
	}

	p.renderer.Page(w, r, decision.View, pageData)
}
