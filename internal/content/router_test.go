package content

import (
	"testing"

	"layerary/internal/models"
)

func workCategory(slug string) *models.Category {
	return &models.Category{Slug: slug, Name: "Works", Type: models.CategoryTypeWork}
}

func TestRouteListDispatch(t *testing.T) {
	tests := []struct {
		pageType string
		want     string
	}{
		{"gallery", ViewGalleryList},
		{"ci-bi", ViewCIBI},
		{"character", ViewCharacter},
		{"wapples", ViewWapples},
		{"damo", ViewDamo},
		{"isign", ViewISign},
		{"cloudbric", ViewCloudbric},
		{"ppt", ViewPPT},
		{"welcomeboard", ViewWelcomeBoard},
		{"icon", ViewIcon},
		{"editor", ViewPlaceholder},
		{"list", ViewPlaceholder},
		{"mystery-view", ViewPlaceholder},
	}
	for _, tt := range tests {
		t.Run(tt.pageType, func(t *testing.T) {
			d := Route(workCategory("works"), models.ParsePageType(tt.pageType), RequestList, "")
			if d.Redirect {
				t.Fatalf("list request must not redirect, got %+v", d)
			}
			if d.View != tt.want {
				t.Errorf("View = %q, want %q", d.View, tt.want)
			}
		})
	}
}

func TestRouteDetailGallery(t *testing.T) {
	d := Route(workCategory("works"), models.PageTypeGallery, RequestDetail, "42")
	if d.Redirect {
		t.Fatalf("gallery detail must render, got %+v", d)
	}
	if d.View != ViewGalleryDetail {
		t.Errorf("View = %q, want %q", d.View, ViewGalleryDetail)
	}
}

// TestRouteDetailRedirect verifies overlay-only variants redirect to the
// list route with exactly one query parameter.
func TestRouteDetailRedirect(t *testing.T) {
	for _, pageType := range []string{
		"ci-bi", "character", "wapples", "damo", "isign",
		"cloudbric", "ppt", "welcomeboard", "icon",
	} {
		t.Run(pageType, func(t *testing.T) {
			d := Route(workCategory("s"), models.ParsePageType(pageType), RequestDetail, "42")
			if !d.Redirect {
				t.Fatalf("expected redirect, got %+v", d)
			}
			if d.Location != "/s?postId=42" {
				t.Errorf("Location = %q, want /s?postId=42", d.Location)
			}
		})
	}
}

func TestRouteDetailFallthrough(t *testing.T) {
	for _, pageType := range []string{"editor", "list", "mystery-view"} {
		t.Run(pageType, func(t *testing.T) {
			d := Route(workCategory("works"), models.ParsePageType(pageType), RequestDetail, "42")
			if d.Redirect {
				t.Fatalf("expected placeholder render, got %+v", d)
			}
			if d.View != ViewPlaceholder {
				t.Errorf("View = %q, want %q", d.View, ViewPlaceholder)
			}
		})
	}
}
