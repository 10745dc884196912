package repository

import (
	"context"
	"time"

	"github.com/Leapblog/backend/internal/domain"
	"github.com/Leapblog/backend/pkg/pagination"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByUsername retrieves a user by their username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error
}

// ProfileRepository defines the interface for profile persistence operations.
type ProfileRepository interface {
	// GetByUserID retrieves the profile belonging to a user.
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)

	// Upsert creates the profile on first write and updates it afterwards.
	Upsert(ctx context.Context, profile *domain.Profile) error
}

// PostRepository defines the interface for blog post persistence operations.
type PostRepository interface {
	// Create inserts a new post into the store.
	Create(ctx context.Context, post *domain.Post) error

	// GetByID retrieves a post by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Post, error)

	// List returns posts ordered newest first, with comment and like counts.
	List(ctx context.Context, params pagination.Params) ([]domain.Post, int, error)

	// ListByAuthor returns posts written by the given user, newest first.
	ListByAuthor(ctx context.Context, authorID string, params pagination.Params) ([]domain.Post, int, error)

	// Update modifies an existing post in the store.
	Update(ctx context.Context, post *domain.Post) error

	// Delete removes a post and its comments and likes.
	Delete(ctx context.Context, id string) error
}

// CommentRepository defines the interface for comment persistence operations.
type CommentRepository interface {
	// Create inserts a new comment into the store.
	Create(ctx context.Context, comment *domain.Comment) error

	// GetByID retrieves a comment by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Comment, error)

	// ListByPostID returns comments on a post, oldest first.
	ListByPostID(ctx context.Context, postID string, params pagination.Params) ([]domain.Comment, int, error)

	// Delete removes a comment from the store.
	Delete(ctx context.Context, id string) error
}

// LikeRepository defines the interface for like persistence operations.
type LikeRepository interface {
	// Add records a like. Adding an existing like is a no-op.
	Add(ctx context.Context, like *domain.Like) error

	// Remove deletes a like. Removing a missing like is a no-op.
	Remove(ctx context.Context, postID, userID string) error

	// Exists reports whether the user has liked the post.
	Exists(ctx context.Context, postID, userID string) (bool, error)

	// CountByPostID returns the number of likes on a post.
	CountByPostID(ctx context.Context, postID string) (int, error)
}

// BlacklistRepository defines the interface for the token revocation store.
type BlacklistRepository interface {
	// Revoke marks a token as revoked until its natural expiry.
	Revoke(ctx context.Context, token string, ttl time.Duration) error

	// IsRevoked reports whether the token has been revoked.
	IsRevoked(ctx context.Context, token string) (bool, error)
}
