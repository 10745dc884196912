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
)

// ProfileRepository implements repository.ProfileRepository using PostgreSQL.
type ProfileRepository struct {
	db database.DBTX
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(db database.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUserID retrieves the profile belonging to a user.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `
		SELECT id, user_id, bio, address, college, batch, website_url, linkedin_url, created_at, updated_at
		FROM profiles
		WHERE user_id = $1`

	var p domain.Profile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.ID,
		&p.UserID,
		&p.Bio,
		&p.Address,
		&p.College,
		&p.Batch,
		&p.WebsiteURL,
		&p.LinkedinURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	return &p, nil
}

// Upsert creates the profile on first write and updates it afterwards. The
// user_id unique constraint makes the insert-or-update atomic.
func (r *ProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	p.UpdatedAt = time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}

	query := `
		INSERT INTO profiles (id, user_id, bio, address, college, batch, website_url, linkedin_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE
		SET bio = EXCLUDED.bio, address = EXCLUDED.address, college = EXCLUDED.college,
		    batch = EXCLUDED.batch, website_url = EXCLUDED.website_url,
		    linkedin_url = EXCLUDED.linkedin_url, updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.Bio,
		p.Address,
		p.College,
		p.Batch,
		p.WebsiteURL,
		p.LinkedinURL,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	return nil
}
