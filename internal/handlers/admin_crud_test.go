package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"layerary/internal/models"
)

func (env *testEnv) adminRequest(t *testing.T, method, url string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, url, &buf)
	admin := env.testAdmin(t)
	sess := testSession(admin.ID, "admin")
	return r.WithContext(ctxWithSession(r.Context(), sess))
}

func TestCategoryCreateAPI(t *testing.T) {
	env := newTestEnv(t)

	r := env.adminRequest(t, "POST", "/api/admin/categories", map[string]any{
		"name": "Brand Guidelines",
		"type": "WORK",
	})
	w := httptest.NewRecorder()
	env.Admin.CategoryCreate(w, r)

	if w.Code != 201 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var created models.Category
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM categories WHERE id = $1", created.ID)
	})

	// Slug derived from the name when omitted.
	if created.Slug != "brand-guidelines" {
		t.Errorf("Slug = %q, want brand-guidelines", created.Slug)
	}
}

// TestCategoryCreateValidation verifies a 400 carries the first violated
// rule's message in the error field.
func TestCategoryCreateValidation(t *testing.T) {
	env := newTestEnv(t)

	r := env.adminRequest(t, "POST", "/api/admin/categories", map[string]any{
		"name": "",
		"type": "NOT-A-TYPE",
	})
	w := httptest.NewRecorder()
	env.Admin.CategoryCreate(w, r)

	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["error"] != "Name is required." {
		t.Errorf("error = %q, want the first rule's message", resp["error"])
	}
}

// TestCategoryUpdateIgnoresSlug verifies the update API never rewrites
// the slug, even when the body carries one.
func TestCategoryUpdateIgnoresSlug(t *testing.T) {
	env := newTestEnv(t)
	cat := env.testCategory(t, models.CategoryTypeWork, nil)

	r := env.adminRequest(t, "PUT", "/api/admin/categories/"+cat.ID.String(), map[string]any{
		"name": "Renamed",
		"slug": "hijacked-slug",
		"type": "ETC",
	})
	r = withChiURLParam(r, "id", cat.ID.String())
	w := httptest.NewRecorder()
	env.Admin.CategoryUpdate(w, r)

	if w.Code != 200 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	stored, err := env.CategoryStore.FindByID(context.Background(), cat.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload category: %v", err)
	}
	if stored.Slug != cat.Slug {
		t.Errorf("slug changed to %q", stored.Slug)
	}
	if stored.Name != "Renamed" || stored.Type != models.CategoryTypeEtc {
		t.Errorf("update not applied: %+v", stored)
	}
}

func TestNoticeCRUD(t *testing.T) {
	env := newTestEnv(t)

	r := env.adminRequest(t, "POST", "/api/admin/notices", map[string]any{
		"title":  "Maintenance tonight",
		"body":   "Storage moves at 22:00.",
		"pinned": true,
	})
	w := httptest.NewRecorder()
	env.Admin.NoticeCreate(w, r)
	if w.Code != 201 {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	var created models.Notice
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM notices WHERE id = $1", created.ID)
	})
	if !created.Pinned {
		t.Error("pinned flag lost on create")
	}

	r = env.adminRequest(t, "PUT", "/api/admin/notices/"+created.ID.String(), map[string]any{
		"title": "Maintenance moved",
		"body":  "Now 23:00.",
	})
	r = withChiURLParam(r, "id", created.ID.String())
	w = httptest.NewRecorder()
	env.Admin.NoticeUpdate(w, r)
	if w.Code != 200 {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}

	r = env.adminRequest(t, "DELETE", "/api/admin/notices/"+created.ID.String(), nil)
	r = withChiURLParam(r, "id", created.ID.String())
	w = httptest.NewRecorder()
	env.Admin.NoticeDelete(w, r)
	if w.Code != 204 {
		t.Fatalf("delete status = %d", w.Code)
	}

	gone, err := env.NoticeStore.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if gone != nil {
		t.Error("notice still present after delete")
	}
}

func TestBoardActivateExclusive(t *testing.T) {
	env := newTestEnv(t)
	admin := env.testAdmin(t)

	mk := func(name string) *models.WelcomeBoard {
		wb, err := env.BoardStore.Create(context.Background(), &models.WelcomeBoard{
			Name:     name,
			Body:     "<p>hi</p>",
			AuthorID: admin.ID,
		})
		if err != nil {
			t.Fatalf("create board: %v", err)
		}
		t.Cleanup(func() {
			env.DB.Exec("DELETE FROM welcome_boards WHERE id = $1", wb.ID)
		})
		return wb
	}
	a := mk("Spring")
	b := mk("Summer")

	for _, wb := range []*models.WelcomeBoard{a, b} {
		r := env.adminRequest(t, "POST", "/api/admin/welcome-boards/"+wb.ID.String()+"/activate", nil)
		r = withChiURLParam(r, "id", wb.ID.String())
		w := httptest.NewRecorder()
		env.Admin.BoardActivate(w, r)
		if w.Code != 204 {
			t.Fatalf("activate status = %d", w.Code)
		}
	}

	active, err := env.BoardStore.FindActive(context.Background())
	if err != nil {
		t.Fatalf("FindActive: %v", err)
	}
	if active == nil || active.ID != b.ID {
		t.Errorf("active = %+v, want %s", active, b.ID)
	}
}

func TestPostCreateRequiresCategory(t *testing.T) {
	env := newTestEnv(t)

	r := env.adminRequest(t, "POST", "/api/admin/posts", map[string]any{
		"title":       "Orphan",
		"category_id": "00000000-0000-0000-0000-000000000001",
	})
	w := httptest.NewRecorder()
	env.Admin.PostCreate(w, r)
	if w.Code != 400 {
		t.Errorf("status = %d, want 400 for unknown category", w.Code)
	}
}
