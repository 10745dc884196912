package postgres

import (
	"context"
	"fmt"

	"github.com/Leapblog/backend/internal/domain"
	"github.com/Leapblog/backend/pkg/database"
)

// LikeRepository implements repository.LikeRepository using PostgreSQL.
type LikeRepository struct {
	db database.DBTX
}

// NewLikeRepository creates a new PostgreSQL-backed like repository.
func NewLikeRepository(db database.DBTX) *LikeRepository {
	return &LikeRepository{db: db}
}

// Add records a like. The (post_id, user_id) unique constraint plus
// ON CONFLICT DO NOTHING makes repeated likes a no-op.
func (r *LikeRepository) Add(ctx context.Context, l *domain.Like) error {
	query := `
		INSERT INTO likes (id, post_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (post_id, user_id) DO NOTHING`

	_, err := r.db.Exec(ctx, query, l.ID, l.PostID, l.UserID, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert like: %w", err)
	}

	return nil
}

// Remove deletes a like. Removing a like that does not exist is a no-op.
func (r *LikeRepository) Remove(ctx context.Context, postID, userID string) error {
	query := `DELETE FROM likes WHERE post_id = $1 AND user_id = $2`

	if _, err := r.db.Exec(ctx, query, postID, userID); err != nil {
		return fmt.Errorf("delete like: %w", err)
	}

	return nil
}

// Exists reports whether the user has liked the post.
func (r *LikeRepository) Exists(ctx context.Context, postID, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM likes WHERE post_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, postID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}

	return exists, nil
}

// CountByPostID returns the number of likes on a post.
func (r *LikeRepository) CountByPostID(ctx context.Context, postID string) (int, error) {
	query := `SELECT count(*) FROM likes WHERE post_id = $1`

	var count int
	if err := r.db.QueryRow(ctx, query, postID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}

	return count, nil
}
