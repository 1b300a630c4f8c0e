package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"layerary/internal/models"
)

// WelcomeBoardStore manages welcome-board/eDM templates in the database.
type WelcomeBoardStore struct {
	db *sql.DB
}

// NewWelcomeBoardStore returns a new WelcomeBoardStore.
func NewWelcomeBoardStore(db *sql.DB) *WelcomeBoardStore {
	return &WelcomeBoardStore{db: db}
}

const welcomeBoardColumns = `id, name, body, active, author_id, created_at, updated_at`

func scanWelcomeBoard(scanner interface{ Scan(...any) error }) (*models.WelcomeBoard, error) {
	var wb models.WelcomeBoard
	err := scanner.Scan(&wb.ID, &wb.Name, &wb.Body, &wb.Active, &wb.AuthorID, &wb.CreatedAt, &wb.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &wb, nil
}

// List returns all welcome-board templates, newest first.
func (s *WelcomeBoardStore) List(ctx context.Context) ([]models.WelcomeBoard, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+welcomeBoardColumns+` FROM welcome_boards ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list welcome boards: %w", err)
	}
	defer rows.Close()

	var items []models.WelcomeBoard
	for rows.Next() {
		wb, err := scanWelcomeBoard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan welcome board: %w", err)
		}
		items = append(items, *wb)
	}
	return items, rows.Err()
}

// FindByID retrieves a template by ID. Returns nil if not found.
func (s *WelcomeBoardStore) FindByID(ctx context.Context, id uuid.UUID) (*models.WelcomeBoard, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+welcomeBoardColumns+` FROM welcome_boards WHERE id = $1`, id)
	wb, err := scanWelcomeBoard(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find welcome board by id: %w", err)
	}
	return wb, nil
}

// FindActive returns the currently active template, or nil if none is active.
func (s *WelcomeBoardStore) FindActive(ctx context.Context) (*models.WelcomeBoard, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+welcomeBoardColumns+` FROM welcome_boards WHERE active LIMIT 1`)
	wb, err := scanWelcomeBoard(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active welcome board: %w", err)
	}
	return wb, nil
}

// Create inserts a new template and returns it.
func (s *WelcomeBoardStore) Create(ctx context.Context, wb *models.WelcomeBoard) (*models.WelcomeBoard, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO welcome_boards (name, body, author_id)
		VALUES ($1, $2, $3)
		RETURNING `+welcomeBoardColumns,
		wb.Name, wb.Body, wb.AuthorID,
	)
	result, err := scanWelcomeBoard(row)
	if err != nil {
		return nil, fmt.Errorf("create welcome board: %w", err)
	}
	return result, nil
}

// Update modifies an existing template.
func (s *WelcomeBoardStore) Update(ctx context.Context, wb *models.WelcomeBoard) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE welcome_boards SET name = $1, body = $2, updated_at = NOW()
		WHERE id = $3
	`, wb.Name, wb.Body, wb.ID)
	if err != nil {
		return fmt.Errorf("update welcome board: %w", err)
	}
	return nil
}

// Activate marks one template active and deactivates the rest, in a
// single transaction.
func (s *WelcomeBoardStore) Activate(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE welcome_boards SET active = FALSE WHERE active`); err != nil {
		return fmt.Errorf("deactivate welcome boards: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE welcome_boards SET active = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("activate welcome board: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

// Delete removes a template by ID.
func (s *WelcomeBoardStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM welcome_boards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete welcome board: %w", err)
	}
	return nil
}
