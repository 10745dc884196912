package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Leapblog/backend/internal/domain"
	"github.com/Leapblog/backend/internal/repository"
	apperrors "github.com/Leapblog/backend/pkg/errors"
)

// UserService implements profile operations.
type UserService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	logger      *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// UpdateProfileInput holds the parameters for updating a user's profile.
// Nil fields are left unchanged.
type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	Bio         *string
	Address     *string
	College     *string
	Batch       *string
	WebsiteURL  *string
	LinkedinURL *string
}

// UserWithProfile bundles account fields with the optional profile.
type UserWithProfile struct {
	User    *domain.User    `json:"user"`
	Profile *domain.Profile `json:"profile,omitempty"`
}

// GetProfile returns the user's account fields and profile. A user who never
// saved a profile gets a nil profile, not an error.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*UserWithProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &UserWithProfile{User: user, Profile: profile}, nil
}

// UpdateProfile updates account name fields and profile fields in one call.
// The profile row is created on first write.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*UserWithProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user for update: %w", err)
	}

	if input.FirstName != nil || input.LastName != nil {
		if input.FirstName != nil {
			user.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			user.LastName = *input.LastName
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("get profile for update: %w", err)
		}
		profile = &domain.Profile{
			ID:        uuid.New().String(),
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		}
	}

	if input.Bio != nil {
		profile.Bio = *input.Bio
	}
	if input.Address != nil {
		profile.Address = *input.Address
	}
	if input.College != nil {
		profile.College = *input.College
	}
	if input.Batch != nil {
		profile.Batch = *input.Batch
	}
	if input.WebsiteURL != nil {
		profile.WebsiteURL = *input.WebsiteURL
	}
	if input.LinkedinURL != nil {
		profile.LinkedinURL = *input.LinkedinURL
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.logger.InfoContext(ctx, "profile updated",
		slog.String("user_id", userID),
	)

	return &UserWithProfile{User: user, Profile: profile}, nil
}
