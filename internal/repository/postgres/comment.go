package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Leapblog/backend/internal/domain"
	"github.com/Leapblog/backend/pkg/database"
	apperrors "github.com/Leapblog/backend/pkg/errors"
	"github.com/Leapblog/backend/pkg/pagination"
)

// CommentRepository implements repository.CommentRepository using PostgreSQL.
type CommentRepository struct {
	db database.DBTX
}

// NewCommentRepository creates a new PostgreSQL-backed comment repository.
func NewCommentRepository(db database.DBTX) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a new comment into the database.
func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, author_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		c.ID,
		c.PostID,
		c.AuthorID,
		c.Content,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

// GetByID retrieves a comment by its ID.
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	query := `
		SELECT id, post_id, author_id, content, created_at, updated_at
		FROM comments
		WHERE id = $1`

	var c domain.Comment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.PostID,
		&c.AuthorID,
		&c.Content,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}

	return &c, nil
}

// ListByPostID returns comments on a post, oldest first, with the total count.
func (r *CommentRepository) ListByPostID(ctx context.Context, postID string, params pagination.Params) ([]domain.Comment, int, error) {
	query := `
		SELECT id, post_id, author_id, content, created_at, updated_at,
		       count(*) OVER() AS total_count
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, postID, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var (
		comments   []domain.Comment
		totalCount int
	)

	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(
			&c.ID,
			&c.PostID,
			&c.AuthorID,
			&c.Content,
			&c.CreatedAt,
			&c.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan comment row: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate comment rows: %w", err)
	}

	if comments == nil {
		comments = []domain.Comment{}
	}

	return comments, totalCount, nil
}

// Delete removes a comment from the database by its ID.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM comments WHERE id = $1`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("comment", id)
	}

	return nil
}
