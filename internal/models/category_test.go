package models

import "testing"

// TestResolvePageTypeDefaults verifies the type-to-default mapping when no
// override is configured: WORK renders the gallery, TEMPLATE the editor,
// and everything else the generic list.
func TestResolvePageTypeDefaults(t *testing.T) {
	tests := []struct {
		name    string
		catType CategoryType
		want    PageType
	}{
		{name: "work defaults to gallery", catType: CategoryTypeWork, want: PageTypeGallery},
		{name: "template defaults to editor", catType: CategoryTypeTemplate, want: PageTypeEditor},
		{name: "source defaults to list", catType: CategoryTypeSource, want: PageTypeList},
		{name: "brochure defaults to list", catType: CategoryTypeBrochure, want: PageTypeList},
		{name: "admin defaults to list", catType: CategoryTypeAdmin, want: PageTypeList},
		{name: "etc defaults to list", catType: CategoryTypeEtc, want: PageTypeList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Category{Type: tt.catType}
			got := c.ResolvePageType()
			if got != tt.want {
				t.Errorf("ResolvePageType() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestResolvePageTypeOverride verifies a non-null override wins verbatim
// regardless of the declared category type, including values outside the
// known vocabulary.
func TestResolvePageTypeOverride(t *testing.T) {
	tests := []struct {
		name     string
		catType  CategoryType
		override string
		wantKind PageKind
		wantStr  string
	}{
		{name: "work overridden to icon", catType: CategoryTypeWork, override: "icon", wantKind: PageKindIcon, wantStr: "icon"},
		{name: "etc overridden to ci-bi", catType: CategoryTypeEtc, override: "ci-bi", wantKind: PageKindCIBI, wantStr: "ci-bi"},
		{name: "template overridden to ppt", catType: CategoryTypeTemplate, override: "ppt", wantKind: PageKindPPT, wantStr: "ppt"},
		{name: "unrecognized override preserved", catType: CategoryTypeWork, override: "mystery-view", wantKind: PageKindUnknown, wantStr: "mystery-view"},
		{name: "empty override preserved", catType: CategoryTypeWork, override: "", wantKind: PageKindUnknown, wantStr: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Category{Type: tt.catType, PageType: &tt.override}
			got := c.ResolvePageType()
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %d, want %d", got.Kind, tt.wantKind)
			}
			if got.String() != tt.wantStr {
				t.Errorf("String() = %q, want %q", got.String(), tt.wantStr)
			}
		})
	}
}

// TestPageTypeHasDetailView verifies only the gallery variant owns a
// standalone detail page.
func TestPageTypeHasDetailView(t *testing.T) {
	if !PageTypeGallery.HasDetailView() {
		t.Error("gallery should have a detail view")
	}
	for _, pt := range []PageType{
		PageTypeList, PageTypeCIBI, PageTypeCharacter, PageTypeWapples,
		PageTypeDamo, PageTypeISign, PageTypeCloudbric, PageTypePPT,
		PageTypeWelcomeBoard, PageTypeIcon, PageTypeEditor,
		ParsePageType("mystery-view"),
	} {
		if pt.HasDetailView() {
			t.Errorf("%q should not have a detail view", pt)
		}
	}
}

// TestParsePageTypeRoundTrip verifies known vocabulary strings map to
// their kinds and round-trip through String().
func TestParsePageTypeRoundTrip(t *testing.T) {
	for _, name := range []string{
		"list", "gallery", "ci-bi", "character", "wapples", "damo",
		"isign", "cloudbric", "ppt", "welcomeboard", "icon", "editor",
	} {
		pt := ParsePageType(name)
		if pt.Kind == PageKindUnknown {
			t.Errorf("ParsePageType(%q) should be a known kind", name)
		}
		if pt.String() != name {
			t.Errorf("ParsePageType(%q).String() = %q", name, pt.String())
		}
	}
}
