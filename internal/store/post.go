package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"layerary/internal/models"
)

// PostStore handles all post-related database operations, including the
// adjacent-post navigation queries.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, category_id, title, description, status, images,
	thumbnail_url, author_id, created_at, updated_at`

// scanPost scans a post row. The images column is normalized into an
// ImageList here, at the boundary; handlers never see the raw shapes.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.CategoryID, &p.Title, &p.Description, &p.Status,
		&p.Images, &p.ThumbnailURL, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// ListPublishedByCategory returns a category's published posts, newest first.
func (s *PostStore) ListPublishedByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE category_id = $1 AND status = 'PUBLISHED'
		ORDER BY created_at DESC, id DESC
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// ListByCategory returns all posts in a category regardless of status,
// newest first. Used by admin screens.
func (s *PostStore) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE category_id = $1
		ORDER BY created_at DESC, id DESC
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Create inserts a new post and returns it with the generated ID.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (category_id, title, description, status, images, thumbnail_url, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+postColumns,
		p.CategoryID, p.Title, p.Description, p.Status, p.Images, p.ThumbnailURL, p.AuthorID,
	)
	result, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return result, nil
}

// Update modifies an existing post.
func (s *PostStore) Update(ctx context.Context, p *models.Post) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE posts SET
			category_id = $1, title = $2, description = $3, status = $4,
			images = $5, thumbnail_url = $6, updated_at = NOW()
		WHERE id = $7
	`, p.CategoryID, p.Title, p.Description, p.Status, p.Images, p.ThumbnailURL, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post by ID.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// Adjacent holds the chronological neighbors of a post. A missing
// neighbor is an explicit nil, never an error.
type Adjacent struct {
	Prev *models.Post
	Next *models.Post
}

// FindAdjacent returns the published posts chronologically adjacent to
// the given post within one category scope. Prev is the nearest earlier
// neighbor by created_at, Next the nearest later one. Ties on created_at
// are broken by id so the ordering is total and deterministic. The two
// lookups are independent and issued concurrently.
func (s *PostStore) FindAdjacent(ctx context.Context, p *models.Post, categoryID uuid.UUID) (*Adjacent, error) {
	adj := &Adjacent{}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		row := s.db.QueryRowContext(ctx, `
			SELECT `+postColumns+`
			FROM posts
			WHERE category_id = $1 AND status = 'PUBLISHED' AND id != $2
			  AND (created_at, id) < ($3, $2)
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		`, categoryID, p.ID, p.CreatedAt)
		prev, err := scanPost(row)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find prev post: %w", err)
		}
		adj.Prev = prev
		return nil
	})

	g.Go(func() error {
		row := s.db.QueryRowContext(ctx, `
			SELECT `+postColumns+`
			FROM posts
			WHERE category_id = $1 AND status = 'PUBLISHED' AND id != $2
			  AND (created_at, id) > ($3, $2)
			ORDER BY created_at ASC, id ASC
			LIMIT 1
		`, categoryID, p.ID, p.CreatedAt)
		next, err := scanPost(row)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find next post: %w", err)
		}
		adj.Next = next
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return adj, nil
}
