package models

import (
	"time"

	"github.com/google/uuid"
)

// CategoryType classifies what a category holds. It drives the default
// page variant when no explicit override is configured.
type CategoryType string

const (
	CategoryTypeWork     CategoryType = "WORK"
	CategoryTypeSource   CategoryType = "SOURCE"
	CategoryTypeTemplate CategoryType = "TEMPLATE"
	CategoryTypeBrochure CategoryType = "BROCHURE"
	CategoryTypeAdmin    CategoryType = "ADMIN"
	CategoryTypeEtc      CategoryType = "ETC"
)

// Category is a named, sluggable grouping of posts. The slug is globally
// unique and treated as immutable once content references it. PageType is
// an optional free-form override of the default page variant; it is stored
// verbatim and never validated against the known vocabulary; unrecognized
// values fall through to the default branch at dispatch time.
type Category struct {
	ID        uuid.UUID    `json:"id"`
	Slug      string       `json:"slug"`
	Name      string       `json:"name"`
	Type      CategoryType `json:"type"`
	PageType  *string      `json:"page_type,omitempty"`
	SortOrder int          `json:"sort_order"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// PostCount is a virtual field populated by store list methods.
	PostCount int `json:"post_count"`
}

// ResolvePageType derives the effective page variant for the category.
// The resolution is pure and total: a non-nil override wins verbatim,
// otherwise the category type maps to its default variant.
func (c *Category) ResolvePageType() PageType {
	if c.PageType != nil {
		return ParsePageType(*c.PageType)
	}
	switch c.Type {
	case CategoryTypeWork:
		return PageTypeGallery
	case CategoryTypeTemplate:
		return PageTypeEditor
	default:
		return PageTypeList
	}
}
