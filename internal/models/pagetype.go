package models

// PageKind enumerates the page variants the content router knows how to
// dispatch. PageKindUnknown covers manual overrides outside the vocabulary;
// the raw string is preserved so it can round-trip through admin screens.
type PageKind int

const (
	PageKindList PageKind = iota
	PageKindGallery
	PageKindCIBI
	PageKindCharacter
	PageKindWapples
	PageKindDamo
	PageKindISign
	PageKindCloudbric
	PageKindPPT
	PageKindWelcomeBoard
	PageKindIcon
	PageKindEditor
	PageKindUnknown
)

// PageType is the resolved page variant for a category: a closed set of
// known kinds plus an unknown variant carrying the raw override string.
type PageType struct {
	Kind PageKind
	raw  string
}

// Known page type values.
var (
	PageTypeList         = PageType{Kind: PageKindList, raw: "list"}
	PageTypeGallery      = PageType{Kind: PageKindGallery, raw: "gallery"}
	PageTypeCIBI         = PageType{Kind: PageKindCIBI, raw: "ci-bi"}
	PageTypeCharacter    = PageType{Kind: PageKindCharacter, raw: "character"}
	PageTypeWapples      = PageType{Kind: PageKindWapples, raw: "wapples"}
	PageTypeDamo         = PageType{Kind: PageKindDamo, raw: "damo"}
	PageTypeISign        = PageType{Kind: PageKindISign, raw: "isign"}
	PageTypeCloudbric    = PageType{Kind: PageKindCloudbric, raw: "cloudbric"}
	PageTypePPT          = PageType{Kind: PageKindPPT, raw: "ppt"}
	PageTypeWelcomeBoard = PageType{Kind: PageKindWelcomeBoard, raw: "welcomeboard"}
	PageTypeIcon         = PageType{Kind: PageKindIcon, raw: "icon"}
	PageTypeEditor       = PageType{Kind: PageKindEditor, raw: "editor"}
)

// pageTypesByName indexes the known vocabulary for parsing.
var pageTypesByName = map[string]PageType{
	"list":         PageTypeList,
	"gallery":      PageTypeGallery,
	"ci-bi":        PageTypeCIBI,
	"character":    PageTypeCharacter,
	"wapples":      PageTypeWapples,
	"damo":         PageTypeDamo,
	"isign":        PageTypeISign,
	"cloudbric":    PageTypeCloudbric,
	"ppt":          PageTypePPT,
	"welcomeboard": PageTypeWelcomeBoard,
	"icon":         PageTypeIcon,
	"editor":       PageTypeEditor,
}

// ParsePageType maps a string to its page type. Strings outside the known
// vocabulary produce an Unknown page type carrying the input verbatim;
// never an error, so a bad manual override degrades to the default view
// instead of breaking the category.
func ParsePageType(s string) PageType {
	if pt, ok := pageTypesByName[s]; ok {
		return pt
	}
	return PageType{Kind: PageKindUnknown, raw: s}
}

// String returns the page type's wire representation. Unknown values
// round-trip verbatim.
func (p PageType) String() string {
	return p.raw
}

// HasDetailView returns true when the variant owns a standalone detail
// page. Only the gallery variant does; every other recognized variant
// opens posts in an overlay on its list page.
func (p PageType) HasDetailView() bool {
	return p.Kind == PageKindGallery
}
