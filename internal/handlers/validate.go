package handlers

import (
	"strings"
	"unicode/utf8"

	"layerary/internal/models"
	"layerary/internal/slug"
)

// Validation limits for admin-submitted fields.
const (
	maxNameLen     = 200
	maxSlugLen     = 100
	maxTitleLen    = 300
	maxDescLen     = 10_000
	maxNoticeLen   = 50_000
	maxBoardLen    = 500_000
	maxImageCount  = 100
	maxPageTypeLen = 50
)

// categoryTypes is the accepted vocabulary for the type field.
var categoryTypes = map[models.CategoryType]bool{
	models.CategoryTypeWork:     true,
	models.CategoryTypeSource:   true,
	models.CategoryTypeTemplate: true,
	models.CategoryTypeBrochure: true,
	models.CategoryTypeAdmin:    true,
	models.CategoryTypeEtc:      true,
}

// validateCategory checks category inputs and returns the first error
// found, or "" when valid. The pageType override is deliberately NOT
// checked against the page-type vocabulary: unrecognized values fall
// through to the default view at dispatch time.
func validateCategory(c *models.Category) string {
	if strings.TrimSpace(c.Name) == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(c.Name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	if len(c.Slug) > maxSlugLen {
		return "Slug is too long (max 100 characters)."
	}
	if c.Slug != "" && !slug.Valid(c.Slug) {
		return "Slug may only contain lowercase letters, digits, and hyphens."
	}
	if !categoryTypes[c.Type] {
		return "Unknown category type."
	}
	if c.PageType != nil && utf8.RuneCountInString(*c.PageType) > maxPageTypeLen {
		return "Page type override is too long (max 50 characters)."
	}
	return ""
}

// validatePost checks post inputs and returns the first error found.
func validatePost(p *models.Post) string {
	if strings.TrimSpace(p.Title) == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(p.Title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(p.Description) > maxDescLen {
		return "Description is too long (max 10,000 characters)."
	}
	switch p.Status {
	case models.PostStatusDraft, models.PostStatusPublished, models.PostStatusArchived:
	default:
		return "Unknown post status."
	}
	if len(p.Images) > maxImageCount {
		return "Too many images (max 100)."
	}
	for _, img := range p.Images {
		if strings.TrimSpace(img.URL) == "" {
			return "Every image needs a URL."
		}
	}
	return ""
}

// validateNotice checks notice inputs and returns the first error found.
func validateNotice(n *models.Notice) string {
	if strings.TrimSpace(n.Title) == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(n.Title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(n.Body) > maxNoticeLen {
		return "Body is too long (max 50,000 characters)."
	}
	return ""
}

// validateWelcomeBoard checks template inputs and returns the first
// error found.
func validateWelcomeBoard(wb *models.WelcomeBoard) string {
	if strings.TrimSpace(wb.Name) == "" {
		return "Template name is required."
	}
	if utf8.RuneCountInString(wb.Name) > maxNameLen {
		return "Template name is too long (max 200 characters)."
	}
	if strings.TrimSpace(wb.Body) == "" {
		return "Template body is required."
	}
	if utf8.RuneCountInString(wb.Body) > maxBoardLen {
		return "Template body is too long (max 500,000 characters)."
	}
	return ""
}
