// Package content maps a resolved category and page type to a concrete
// rendering decision. Routing is a pure dispatch over the page-type
// variant; it performs no I/O and no session checks, those happen
// before a request reaches this package.
package content

import (
	"layerary/internal/models"
)

// RequestKind is the navigational shape being dispatched.
type RequestKind int

const (
	RequestList RequestKind = iota
	RequestDetail
)

// Decision is the routing outcome: render a named view, or redirect the
// client. Exactly one of View/Location is set.
type Decision struct {
	Redirect bool
	View     string // template name when Redirect is false
	Location string // target URL when Redirect is true
}

// View names the templates the renderer registers. The placeholder view
// echoes the category name for variants whose dedicated page does not
// exist yet; it signals an incomplete feature, not an error.
const (
	ViewPlaceholder = "placeholder"

	ViewGalleryList   = "gallery_list"
	ViewGalleryDetail = "gallery_detail"
	ViewCIBI          = "cibi_list"
	ViewCharacter     = "character_list"
	ViewWapples       = "wapples_list"
	ViewDamo          = "damo_list"
	ViewISign         = "isign_list"
	ViewCloudbric     = "cloudbric_list"
	ViewPPT           = "ppt_list"
	ViewWelcomeBoard  = "welcomeboard_list"
	ViewIcon          = "icon_list"
)

// listViews dispatches List requests: every variant with its own list
// page maps to a distinct view.
var listViews = map[models.PageKind]string{
	models.PageKindGallery:      ViewGalleryList,
	models.PageKindCIBI:         ViewCIBI,
	models.PageKindCharacter:    ViewCharacter,
	models.PageKindWapples:      ViewWapples,
	models.PageKindDamo:         ViewDamo,
	models.PageKindISign:        ViewISign,
	models.PageKindCloudbric:    ViewCloudbric,
	models.PageKindPPT:          ViewPPT,
	models.PageKindWelcomeBoard: ViewWelcomeBoard,
	models.PageKindIcon:         ViewIcon,
}

// Route selects the rendering strategy for a category. For List
// requests, postID is ignored. For Detail requests, only the gallery
// variant has a standalone detail page; every other recognized variant
// redirects to the category's list route carrying the post id as the
// sole query parameter, and the list page opens the post in an overlay.
// Editor, list, and unrecognized overrides always land on the
// placeholder view.
func Route(category *models.Category, pt models.PageType, kind RequestKind, postID string) Decision {
	switch kind {
	case RequestDetail:
		if pt.Kind == models.PageKindGallery {
			return Decision{View: ViewGalleryDetail}
		}
		if _, hasList := listViews[pt.Kind]; hasList {
			return Decision{
				Redirect: true,
				Location: "/" + category.Slug + "?postId=" + postID,
			}
		}
		return Decision{View: ViewPlaceholder}
	default:
		if view, ok := listViews[pt.Kind]; ok {
			return Decision{View: view}
		}
		return Decision{View: ViewPlaceholder}
	}
}
