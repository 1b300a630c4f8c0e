package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"layerary/internal/cache"
	"layerary/internal/middleware"
	"layerary/internal/models"
	"layerary/internal/slug"
	"layerary/internal/store"
)

// Admin groups the JSON API handlers behind /api/admin. Every route here
// sits behind the admin gate plus the per-mutation role re-check.
type Admin struct {
	categoryStore *store.CategoryStore
	postStore     *store.PostStore
	noticeStore   *store.NoticeStore
	boardStore    *store.WelcomeBoardStore
	userStore     *store.UserStore
	pageCache     *cache.PageCache
}

// NewAdmin creates a new Admin handler group. pageCache may be nil.
func NewAdmin(categoryStore *store.CategoryStore, postStore *store.PostStore, noticeStore *store.NoticeStore, boardStore *store.WelcomeBoardStore, userStore *store.UserStore, pageCache *cache.PageCache) *Admin {
	return &Admin{
		categoryStore: categoryStore,
		postStore:     postStore,
		noticeStore:   noticeStore,
		boardStore:    boardStore,
		userStore:     userStore,
		pageCache:     pageCache,
	}
}

// decodeBody decodes a JSON request body into v, returning a message for
// the 400 response on failure.
func decodeBody(r *http.Request, v any) string {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return "Request body is not valid JSON."
	}
	return ""
}

func parseIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// invalidateList drops a category's cached list page.
func (a *Admin) invalidateList(r *http.Request, categoryID uuid.UUID) {
	if a.pageCache == nil {
		return
	}
	category, err := a.categoryStore.FindByID(r.Context(), categoryID)
	if err != nil || category == nil {
		return
	}
	a.pageCache.Invalidate(r.Context(), cache.ListKey(category.Slug))
}

// --- Categories ---

// CategoriesList serves GET /api/admin/categories.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	categories, err := a.categoryStore.List(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// CategoryCreate serves POST /api/admin/categories. A missing slug is
// derived from the name.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if msg := decodeBody(r, &c); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	if c.Slug == "" {
		c.Slug = slug.Generate(c.Name)
	}
	if msg := validateCategory(&c); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}
	if !slug.Valid(c.Slug) {
		writeError(w, "A slug could not be derived from the name; set one explicitly.", http.StatusBadRequest)
		return
	}

	created, err := a.categoryStore.Create(r.Context(), &c)
	if err != nil {
		slog.Error("create category failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// CategoryUpdate serves PUT /api/admin/categories/{id}. The slug is
// immutable and ignored if present in the body.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeError(w, "invalid category id", http.StatusBadRequest)
		return
	}

	existing, err := a.categoryStore.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		writeError(w, "category not found", http.StatusNotFound)
		return
	}

	var c models.Category
	if msg := decodeBody(r, &c); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}
	c.ID = id
	c.Slug = existing.Slug
	if msg := validateCategory(&c); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	if err := a.categoryStore.Update(r.Context(), &c); err != nil {
		slog.Error("update category failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Type or override changes can swap the rendered view for this
	// category's list page.
	if a.pageCache != nil {
		a.pageCache.Invalidate(r.Context(), cache.ListKey(existing.Slug))
	}
	writeJSON(w, http.StatusOK, &c)
}

// CategoryDelete serves DELETE /api/admin/categories/{id}. Deletion is
// blocked while posts still reference the category.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeError(w, "invalid category id", http.StatusBadRequest)
		return
	}

	if err := a.categoryStore.Delete(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "violates foreign key") {
			writeError(w, "Category still has posts; move or delete them first.", http.StatusConflict)
			return
		}
		slog.Error("delete category failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	if a.pageCache != nil {
		a.pageCache.InvalidateAll(r.Context())
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Posts ---

// PostsByCategory serves GET /api/admin/categories/{id}/posts, all
// statuses included.
func (a *Admin) PostsByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeError(w, "invalid category id", http.StatusBadRequest)
		return
	}
	posts, err := a.postStore.ListByCategory(r.Context(), id)
	if err != nil {
		slog.Error("list posts failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// PostCreate serves POST /api/admin/posts.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	var p models.Post
	if msg := decodeBody(r, &p); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}
	if p.Status == "" {
		p.Status = models.PostStatusDraft
	}
	if msg := validatePost(&p); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	category, err := a.categoryStore.FindByID(r.Context(), p.CategoryID)
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		writeError(w, "category not found", http.StatusBadRequest)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	p.AuthorID = sess.UserID

	created, err := a.postStore.Create(r.Context(), &p)
	if err != nil {
		slog.Error("create post failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	if a.pageCache != nil {
		a.pageCache.Invalidate(r.Context(), cache.ListKey(category.Slug))
	}
	writeJSON(w, http.StatusCreated, created)
}

// PostUpdate serves PUT /api/admin/posts/{id}.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeError(w, "invalid post id", http.StatusBadRequest)
		return
	}

	existing, err := a.postStore.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("post lookup failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		writeError(w, "post not found", http.StatusNotFound)
		return
	}

	var p models.Post
	if msg := decodeBody(r, &p); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}
	p.ID = id
	if p.CategoryID == uuid.Nil {
		p.CategoryID = existing.CategoryID
	}
	if msg := validatePost(&p); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	if err := a.postStore.Update(r.Context(), &p); err != nil {
		slog.Error("update post failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	a.invalidateList(r, existing.CategoryID)
	if p.CategoryID != existing.CategoryID {
		a.invalidateList(r, p.CategoryID)
	}
	writeJSON(w, http.StatusOK, &p)
}

// PostDelete serves DELETE /api/admin/posts/{id}.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeError(w, "invalid post id", http.StatusBadRequest)
		return
	}

	existing, err := a.postStore.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("post lookup failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		writeError(w, "post not found", http.StatusNotFound)
		return
	}

	if err := a.postStore.Delete(r.Context(), id); err != nil {
		slog.Error("delete post failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	a.invalidateList(r, existing.CategoryID)
	w.WriteHeader(http.StatusNoContent)
}

// --- Notices ---

// NoticesList serves GET /api/admin/notices.
func (a *Admin) NoticesList(w http.ResponseWriter, r *http.Request) {
	notices, err := a.noticeStore.List(r.Context())
	if err != nil {
		slog.Error("list notices failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, notices)
}

// NoticeCreate serves POST /api/admin/notices.
func (a *Admin) NoticeCreate(w http.ResponseWriter, r *http.Request) {
	var n models.Notice
	if msg := decodeBody(r, &n); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}
	if msg := validateNotice(&n); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	n.AuthorID = middleware.SessionFromCtx(r.Context()).UserID
	created, err := a.noticeStore.Create(r.Context(), &n)
	if err != nil {
		slog.Error("create notice failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// NoticeUpdate serves PUT /api/admin/notices/{id}.
func (a *Admin) NoticeUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeError(w, "invalid notice id", http.StatusBadRequest)
		return
	}

	existing, err := a.noticeStore.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("notice lookup failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		writeError(w, "notice not found", http.StatusNotFound)
		return
	}

	var n models.Notice
	if msg := decodeBody(r, &n); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}
	n.ID = id
	if msg := validateNotice(&n); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	if err := a.noticeStore.Update(r.Context(), &n); err != nil {
		slog.Error("update notice failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, &n)
}

// NoticeDelete serves DELETE /api/admin/notices/{id}.
func (a *Admin) NoticeDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeError(w, "invalid notice id", http.StatusBadRequest)
		return
	}
	if err := a.noticeStore.Delete(r.Context(), id); err != nil {
		slog.Error("delete notice failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Welcome boards ---

// BoardsList serves GET /api/admin/welcome-boards.
func (a *Admin) BoardsList(w http.ResponseWriter, r *http.Request) {
	boards, err := a.boardStore.List(r.Context())
	if err != nil {
		slog.Error("list welcome boards failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, boards)
}

// BoardCreate serves POST /api/admin/welcome-boards.
func (a *Admin) BoardCreate(w http.ResponseWriter, r *http.Request) {
	var wb models.WelcomeBoard
	if msg := decodeBody(r, &wb); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}
	if msg := validateWelcomeBoard(&wb); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	wb.AuthorID = middleware.SessionFromCtx(r.Context()).UserID
	created, err := a.boardStore.Create(r.Context(), &wb)
	if err != nil {
		slog.Error("create welcome board failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// BoardUpdate serves PUT /api/admin/welcome-boards/{id}.
func (a *Admin) BoardUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeError(w, "invalid template id", http.StatusBadRequest)
		return
	}

	existing, err := a.boardStore.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("welcome board lookup failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		writeError(w, "template not found", http.StatusNotFound)
		return
	}

	var wb models.WelcomeBoard
	if msg := decodeBody(r, &wb); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}
	wb.ID = id
	if msg := validateWelcomeBoard(&wb); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	if err := a.boardStore.Update(r.Context(), &wb); err != nil {
		slog.Error("update welcome board failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, &wb)
}

// BoardActivate serves POST /api/admin/welcome-boards/{id}/activate.
// Exactly one template is active after a successful call.
func (a *Admin) BoardActivate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeError(w, "invalid template id", http.StatusBadRequest)
		return
	}

	if err := a.boardStore.Activate(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, "template not found", http.StatusNotFound)
			return
		}
		slog.Error("activate welcome board failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	// The welcomeboard list page embeds the active template.
	if a.pageCache != nil {
		a.pageCache.InvalidateAll(r.Context())
	}
	w.WriteHeader(http.StatusNoContent)
}

// BoardDelete serves DELETE /api/admin/welcome-boards/{id}.
func (a *Admin) BoardDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeError(w, "invalid template id", http.StatusBadRequest)
		return
	}
	if err := a.boardStore.Delete(r.Context(), id); err != nil {
		slog.Error("delete welcome board failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Users ---

// UsersList serves GET /api/admin/users.
func (a *Admin) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.userStore.List(r.Context())
	if err != nil {
		slog.Error("list users failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// UserCreate serves POST /api/admin/users.
func (a *Admin) UserCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string      `json:"email"`
		Password    string      `json:"password"`
		DisplayName string      `json:"display_name"`
		Role        models.Role `json:"role"`
	}
	if msg := decodeBody(r, &req); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Email) == "" || !strings.Contains(req.Email, "@") {
		writeError(w, "A valid email is required.", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		writeError(w, "Password must be at least 8 characters.", http.StatusBadRequest)
		return
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleMember {
		writeError(w, "Unknown role.", http.StatusBadRequest)
		return
	}

	existing, err := a.userStore.FindByEmail(r.Context(), req.Email)
	if err != nil {
		slog.Error("user lookup failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		writeError(w, "A user with that email already exists.", http.StatusConflict)
		return
	}

	created, err := a.userStore.Create(r.Context(), req.Email, req.Password, req.DisplayName, req.Role)
	if err != nil {
		slog.Error("create user failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UserSetRole serves PUT /api/admin/users/{id}/role. Admins cannot
// demote themselves; that would lock the last admin out mid-session.
func (a *Admin) UserSetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req struct {
		Role models.Role `json:"role"`
	}
	if msg := decodeBody(r, &req); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleMember {
		writeError(w, "Unknown role.", http.StatusBadRequest)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess.UserID == id && req.Role != models.RoleAdmin {
		writeError(w, "You cannot remove your own admin role.", http.StatusBadRequest)
		return
	}

	user, err := a.userStore.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("user lookup failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		writeError(w, "user not found", http.StatusNotFound)
		return
	}

	if err := a.userStore.SetRole(r.Context(), id, req.Role); err != nil {
		slog.Error("set role failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
