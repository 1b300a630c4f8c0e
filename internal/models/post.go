package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "DRAFT"
	PostStatusPublished PostStatus = "PUBLISHED"
	PostStatusArchived  PostStatus = "ARCHIVED"
)

// PostImage is one entry of a post's ordered image set.
type PostImage struct {
	URL   string `json:"url"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// ImageList is the normalized representation of a post's images column.
// Legacy rows stored the column in three shapes (a JSON array, a
// JSON-encoded string containing an array, or NULL). Normalization happens
// here, at the scan boundary, so ambiguous representations never reach
// business logic.
type ImageList []PostImage

// Scan implements sql.Scanner, accepting NULL, a JSON array, or a
// double-encoded JSON string.
func (l *ImageList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("images: unsupported scan type %T", src)
	}

	return l.UnmarshalJSON(raw)
}

// Value implements driver.Valuer, always writing the canonical array form.
func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal([]PostImage(l))
}

// UnmarshalJSON accepts either an array of image objects or a JSON string
// that itself contains an encoded array (the double-encoded legacy shape).
func (l *ImageList) UnmarshalJSON(data []byte) error {
	var imgs []PostImage
	if err := json.Unmarshal(data, &imgs); err == nil {
		*l = imgs
		return nil
	}

	var nested string
	if err := json.Unmarshal(data, &nested); err != nil {
		return fmt.Errorf("images: not an array or encoded string: %w", err)
	}
	if nested == "" {
		*l = nil
		return nil
	}
	if err := json.Unmarshal([]byte(nested), &imgs); err != nil {
		return fmt.Errorf("images: decode nested array: %w", err)
	}
	*l = imgs
	return nil
}

// First returns the leading image, or nil for an empty list.
func (l ImageList) First() *PostImage {
	if len(l) == 0 {
		return nil
	}
	return &l[0]
}

// Post is a content item belonging to one category.
type Post struct {
	ID           uuid.UUID  `json:"id"`
	CategoryID   uuid.UUID  `json:"category_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       PostStatus `json:"status"`
	Images       ImageList  `json:"images"`
	ThumbnailURL *string    `json:"thumbnail_url,omitempty"`
	AuthorID     uuid.UUID  `json:"author_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsPublished returns true if the post is visible to end users.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// Thumbnail derives the display thumbnail: the first image of the ordered
// set when one exists, otherwise the post's own thumbnail URL field.
func (p *Post) Thumbnail() string {
	if img := p.Images.First(); img != nil && img.URL != "" {
		return img.URL
	}
	if p.ThumbnailURL != nil {
		return *p.ThumbnailURL
	}
	return ""
}

// NavEntry is the projection of a neighboring post returned by the
// navigation API.
type NavEntry struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnailUrl"`
}

// NavEntryFor builds the navigation projection for a post.
func NavEntryFor(p *Post) *NavEntry {
	if p == nil {
		return nil
	}
	return &NavEntry{
		ID:           p.ID,
		Title:        p.Title,
		ThumbnailURL: p.Thumbnail(),
	}
}
