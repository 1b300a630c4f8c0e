package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"layerary/internal/models"
)

// NoticeStore manages notice board entries in the database.
type NoticeStore struct {
	db *sql.DB
}

// NewNoticeStore returns a new NoticeStore.
func NewNoticeStore(db *sql.DB) *NoticeStore {
	return &NoticeStore{db: db}
}

const noticeColumns = `id, title, body, pinned, author_id, created_at, updated_at`

func scanNotice(scanner interface{ Scan(...any) error }) (*models.Notice, error) {
	var n models.Notice
	err := scanner.Scan(&n.ID, &n.Title, &n.Body, &n.Pinned, &n.AuthorID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// List returns notices with pinned entries first, then newest first.
func (s *NoticeStore) List(ctx context.Context) ([]models.Notice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+noticeColumns+`
		FROM notices
		ORDER BY pinned DESC, created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	defer rows.Close()

	var items []models.Notice
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notice: %w", err)
		}
		items = append(items, *n)
	}
	return items, rows.Err()
}

// FindByID retrieves a notice by ID. Returns nil if not found.
func (s *NoticeStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Notice, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+noticeColumns+` FROM notices WHERE id = $1`, id)
	n, err := scanNotice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find notice by id: %w", err)
	}
	return n, nil
}

// Create inserts a new notice and returns it.
func (s *NoticeStore) Create(ctx context.Context, n *models.Notice) (*models.Notice, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO notices (title, body, pinned, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+noticeColumns,
		n.Title, n.Body, n.Pinned, n.AuthorID,
	)
	result, err := scanNotice(row)
	if err != nil {
		return nil, fmt.Errorf("create notice: %w", err)
	}
	return result, nil
}

// Update modifies an existing notice.
func (s *NoticeStore) Update(ctx context.Context, n *models.Notice) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notices SET title = $1, body = $2, pinned = $3, updated_at = NOW()
		WHERE id = $4
	`, n.Title, n.Body, n.Pinned, n.ID)
	if err != nil {
		return fmt.Errorf("update notice: %w", err)
	}
	return nil
}

// Delete removes a notice by ID.
func (s *NoticeStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	return nil
}
