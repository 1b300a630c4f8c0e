package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"layerary/internal/models"
	"layerary/internal/store"
)

// Nav serves the adjacent-post navigation API used by detail pages and
// overlays to step through a category's published posts.
type Nav struct {
	categoryStore *store.CategoryStore
	postStore     *store.PostStore
}

// NewNav creates a new Nav handler group.
func NewNav(categoryStore *store.CategoryStore, postStore *store.PostStore) *Nav {
	return &Nav{categoryStore: categoryStore, postStore: postStore}
}

// Adjacent serves GET /api/posts/{id}/navigation?categorySlug=.
// The response always has both keys; a missing neighbor is an explicit
// null, never an omitted field.
func (n *Nav) Adjacent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "invalid post id", http.StatusBadRequest)
		return
	}

	post, err := n.postStore.FindByID(ctx, id)
	if err != nil {
		slog.Error("post lookup failed", "id", id, "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if post == nil {
		writeError(w, "post not found", http.StatusNotFound)
		return
	}

	// Scope: the filter slug when it resolves to a real category,
	// otherwise the post's own category.
	scopeID := post.CategoryID
	if slugParam := r.URL.Query().Get("categorySlug"); slugParam != "" {
		category, err := n.categoryStore.FindBySlug(ctx, slugParam)
		if err != nil {
			slog.Error("category lookup failed", "slug", slugParam, "error", err)
			writeError(w, "internal error", http.StatusInternalServerError)
			return
		}
		if category != nil {
			scopeID = category.ID
		}
	}

	adj, err := n.postStore.FindAdjacent(ctx, post, scopeID)
	if err != nil {
		slog.Error("adjacent lookup failed", "id", id, "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]*models.NavEntry{
		"prevPost": models.NavEntryFor(adj.Prev),
		"nextPost": models.NavEntryFor(adj.Next),
	})
}
