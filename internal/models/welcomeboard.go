package models

import (
	"time"

	"github.com/google/uuid"
)

// WelcomeBoard is a reusable welcome-board/eDM template. The body holds
// the template HTML edited in the visual editor; only one template is
// active at a time and drives the welcomeboard page variant.
type WelcomeBoard struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Body      string    `json:"body"`
	Active    bool      `json:"active"`
	AuthorID  uuid.UUID `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
