package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"layerary/internal/models"
)

type navResponse struct {
	PrevPost *models.NavEntry `json:"prevPost"`
	NextPost *models.NavEntry `json:"nextPost"`
}

func (env *testEnv) doNav(t *testing.T, postID, categorySlug string) (int, navResponse, map[string]json.RawMessage) {
	t.Helper()
	url := "/api/posts/" + postID + "/navigation"
	if categorySlug != "" {
		url += "?categorySlug=" + categorySlug
	}
	r := httptest.NewRequest("GET", url, nil)
	r = withChiURLParam(r, "id", postID)
	w := httptest.NewRecorder()
	env.Nav.Adjacent(w, r)

	var resp navResponse
	var raw map[string]json.RawMessage
	if w.Code == 200 {
		body := w.Body.Bytes()
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			t.Fatalf("decode raw response: %v", err)
		}
	}
	return w.Code, resp, raw
}

func TestNavAdjacent(t *testing.T) {
	env := newTestEnv(t)
	admin := env.testAdmin(t)
	cat := env.testCategory(t, models.CategoryTypeWork, nil)

	first := env.testPost(t, cat.ID, admin.ID, "first")
	middle := env.testPost(t, cat.ID, admin.ID, "middle")
	last := env.testPost(t, cat.ID, admin.ID, "last")

	// Spread created_at so ordering is unambiguous.
	for i, p := range []*models.Post{first, middle, last} {
		if _, err := env.DB.Exec(
			`UPDATE posts SET created_at = NOW() - ($1 || ' hours')::interval WHERE id = $2`,
			3-i, p.ID,
		); err != nil {
			t.Fatalf("stagger created_at: %v", err)
		}
	}

	code, resp, _ := env.doNav(t, middle.ID.String(), cat.Slug)
	if code != 200 {
		t.Fatalf("status = %d", code)
	}
	if resp.PrevPost == nil || resp.PrevPost.ID != first.ID {
		t.Errorf("prevPost = %+v, want %s", resp.PrevPost, first.ID)
	}
	if resp.NextPost == nil || resp.NextPost.ID != last.ID {
		t.Errorf("nextPost = %+v, want %s", resp.NextPost, last.ID)
	}
}

// TestNavAdjacentNulls verifies missing neighbors come back as explicit
// JSON nulls, never omitted keys.
func TestNavAdjacentNulls(t *testing.T) {
	env := newTestEnv(t)
	admin := env.testAdmin(t)
	cat := env.testCategory(t, models.CategoryTypeWork, nil)
	lone := env.testPost(t, cat.ID, admin.ID, "lone")

	code, resp, raw := env.doNav(t, lone.ID.String(), "")
	if code != 200 {
		t.Fatalf("status = %d", code)
	}
	if resp.PrevPost != nil || resp.NextPost != nil {
		t.Errorf("lone post should have null neighbors: %+v", resp)
	}
	for _, key := range []string{"prevPost", "nextPost"} {
		v, ok := raw[key]
		if !ok {
			t.Errorf("%s key omitted; must be an explicit null", key)
			continue
		}
		if string(v) != "null" {
			t.Errorf("%s = %s, want null", key, v)
		}
	}
}

// TestNavAdjacentScopeFallback verifies a filter slug that doesn't
// resolve falls back to the post's own category.
func TestNavAdjacentScopeFallback(t *testing.T) {
	env := newTestEnv(t)
	admin := env.testAdmin(t)
	cat := env.testCategory(t, models.CategoryTypeWork, nil)

	a := env.testPost(t, cat.ID, admin.ID, "a")
	b := env.testPost(t, cat.ID, admin.ID, "b")
	if _, err := env.DB.Exec(`UPDATE posts SET created_at = NOW() - interval '1 hour' WHERE id = $1`, a.ID); err != nil {
		t.Fatalf("stagger created_at: %v", err)
	}

	code, resp, _ := env.doNav(t, b.ID.String(), "no-such-category")
	if code != 200 {
		t.Fatalf("status = %d", code)
	}
	if resp.PrevPost == nil || resp.PrevPost.ID != a.ID {
		t.Errorf("prevPost = %+v, want %s", resp.PrevPost, a.ID)
	}
}

func TestNavAdjacentMissingPost(t *testing.T) {
	env := newTestEnv(t)

	code, _, _ := env.doNav(t, uuid.NewString(), "")
	if code != 404 {
		t.Errorf("status = %d, want 404", code)
	}

	r := httptest.NewRequest("GET", "/api/posts/not-a-uuid/navigation", nil)
	r = withChiURLParam(r, "id", "not-a-uuid")
	w := httptest.NewRecorder()
	env.Nav.Adjacent(w, r)
	if w.Code != 400 {
		t.Errorf("bad id: status = %d, want 400", w.Code)
	}
}

// TestNavThumbnailProjection verifies the neighbor projection prefers
// the first image URL and falls back to the thumbnail field.
func TestNavThumbnailProjection(t *testing.T) {
	env := newTestEnv(t)
	admin := env.testAdmin(t)
	cat := env.testCategory(t, models.CategoryTypeWork, nil)

	thumbOnly := "https://cdn.example/fallback.png"
	prev, err := env.PostStore.Create(context.Background(), &models.Post{
		CategoryID:   cat.ID,
		Title:        "prev",
		Status:       models.PostStatusPublished,
		ThumbnailURL: &thumbOnly,
		AuthorID:     admin.ID,
	})
	if err != nil {
		t.Fatalf("create prev: %v", err)
	}
	if _, err := env.DB.Exec(`UPDATE posts SET created_at = NOW() - interval '1 hour' WHERE id = $1`, prev.ID); err != nil {
		t.Fatalf("stagger created_at: %v", err)
	}
	current := env.testPost(t, cat.ID, admin.ID, "current")

	_, resp, _ := env.doNav(t, current.ID.String(), cat.Slug)
	if resp.PrevPost == nil {
		t.Fatal("expected prevPost")
	}
	if resp.PrevPost.ThumbnailURL != thumbOnly {
		t.Errorf("thumbnailUrl = %q, want fallback %q", resp.PrevPost.ThumbnailURL, thumbOnly)
	}
}
