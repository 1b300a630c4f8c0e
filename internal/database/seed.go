package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin user and the standard category set. It is a no-op when users
// already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// Default admin. 2FA is not enabled; they must set it up on first login.
	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, "admin@layerary.local", string(hash), "Admin", "admin", false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	// Standard category set. Slugs are referenced by navigation links and
	// must stay stable once content exists.
	categories := []struct {
		slug     string
		name     string
		catType  string
		pageType *string
	}{
		{"works", "Works", "WORK", nil},
		{"ci-bi", "CI / BI", "SOURCE", strPtr("ci-bi")},
		{"characters", "Characters", "SOURCE", strPtr("character")},
		{"icons", "Icons", "SOURCE", strPtr("icon")},
		{"ppt", "Presentations", "TEMPLATE", strPtr("ppt")},
		{"welcomeboard", "Welcome Board", "TEMPLATE", strPtr("welcomeboard")},
		{"brochures", "Brochures", "BROCHURE", nil},
		{"edm", "eDM Editor", "TEMPLATE", nil},
	}
	for i, c := range categories {
		_, err := db.Exec(`
			INSERT INTO categories (slug, name, type, page_type, sort_order)
			VALUES ($1, $2, $3, $4, $5)
		`, c.slug, c.name, c.catType, c.pageType, i)
		if err != nil {
			return fmt.Errorf("seed insert category %s: %w", c.slug, err)
		}
	}

	slog.Info("database seeded with default admin user and categories",
		"email", "admin@layerary.local",
		"password", "admin",
	)

	return nil
}

func strPtr(s string) *string { return &s }
