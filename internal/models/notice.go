package models

import (
	"time"

	"github.com/google/uuid"
)

// Notice is an entry on the organization-wide notice board. Pinned
// notices sort ahead of the rest regardless of date.
type Notice struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Pinned    bool      `json:"pinned"`
	AuthorID  uuid.UUID `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
