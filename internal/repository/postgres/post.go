package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Leapblog/backend/internal/domain"
	"github.com/Leapblog/backend/pkg/database"
	apperrors "github.com/Leapblog/backend/pkg/errors"
	"github.com/Leapblog/backend/pkg/pagination"
)

// PostRepository implements repository.PostRepository using PostgreSQL.
type PostRepository struct {
	db database.DBTX
}

// NewPostRepository creates a new PostgreSQL-backed post repository.
func NewPostRepository(db database.DBTX) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a new post into the database.
func (r *PostRepository) Create(ctx context.Context, p *domain.Post) error {
	query := `
		INSERT INTO posts (id, author_id, title, slug, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.AuthorID,
		p.Title,
		p.Slug,
		p.Content,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("post", "slug", p.Slug)
		}
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

// GetByID retrieves a post by its ID, including comment and like counts.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	query := `
		SELECT p.id, p.author_id, p.title, p.slug, p.content, p.created_at, p.updated_at,
		       (SELECT count(*) FROM comments c WHERE c.post_id = p.id) AS comment_count,
		       (SELECT count(*) FROM likes l WHERE l.post_id = p.id) AS like_count
		FROM posts p
		WHERE p.id = $1`

	var p domain.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.AuthorID,
		&p.Title,
		&p.Slug,
		&p.Content,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.CommentCount,
		&p.LikeCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}

	return &p, nil
}

// List returns posts ordered newest first with the total count.
func (r *PostRepository) List(ctx context.Context, params pagination.Params) ([]domain.Post, int, error) {
	query := `
		SELECT p.id, p.author_id, p.title, p.slug, p.content, p.created_at, p.updated_at,
		       (SELECT count(*) FROM comments c WHERE c.post_id = p.id) AS comment_count,
		       (SELECT count(*) FROM likes l WHERE l.post_id = p.id) AS like_count,
		       count(*) OVER() AS total_count
		FROM posts p
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2`

	return r.listPosts(ctx, query, params.PerPage, params.Offset)
}

// ListByAuthor returns posts written by the given user, newest first.
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID string, params pagination.Params) ([]domain.Post, int, error) {
	query := `
		SELECT p.id, p.author_id, p.title, p.slug, p.content, p.created_at, p.updated_at,
		       (SELECT count(*) FROM comments c WHERE c.post_id = p.id) AS comment_count,
		       (SELECT count(*) FROM likes l WHERE l.post_id = p.id) AS like_count,
		       count(*) OVER() AS total_count
		FROM posts p
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3`

	return r.listPosts(ctx, query, authorID, params.PerPage, params.Offset)
}

// Update modifies an existing post in the database.
func (r *PostRepository) Update(ctx context.Context, p *domain.Post) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE posts
		SET title = $1, slug = $2, content = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.db.Exec(ctx, query,
		p.Title,
		p.Slug,
		p.Content,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("post", "slug", p.Slug)
		}
		return fmt.Errorf("update post: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("post", p.ID)
	}

	return nil
}

// Delete removes a post from the database. Comments and likes are removed by
// the ON DELETE CASCADE constraints.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM posts WHERE id = $1`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("post", id)
	}

	return nil
}

func (r *PostRepository) listPosts(ctx context.Context, query string, args ...any) ([]domain.Post, int, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var (
		posts      []domain.Post
		totalCount int
	)

	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(
			&p.ID,
			&p.AuthorID,
			&p.Title,
			&p.Slug,
			&p.Content,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.CommentCount,
			&p.LikeCount,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan post row: %w", err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate post rows: %w", err)
	}

	if posts == nil {
		posts = []domain.Post{}
	}

	return posts, totalCount, nil
}
