package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Leapblog/backend/internal/auth"
	"github.com/Leapblog/backend/internal/domain"
	"github.com/Leapblog/backend/internal/event"
	"github.com/Leapblog/backend/internal/otp"
	"github.com/Leapblog/backend/internal/repository"
	apperrors "github.com/Leapblog/backend/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// envProduction is the environment in which accounts start inactive and must
// verify an emailed OTP before using the rest of the API.
const envProduction = "production"

// AuthService implements registration, login, token lifecycle, and OTP
// verification.
type AuthService struct {
	userRepo    repository.UserRepository
	blacklist   repository.BlacklistRepository
	tokens      *auth.TokenManager
	producer    *event.Producer
	environment string
	logger      *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	blacklist repository.BlacklistRepository,
	tokens *auth.TokenManager,
	producer *event.Producer,
	environment string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		blacklist:   blacklist,
		tokens:      tokens,
		producer:    producer,
		environment: environment,
		logger:      logger,
	}
}

// RegisterInput holds the parameters for registering a new account.
type RegisterInput struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	UserType        string
}

// LoginInput holds the parameters for logging in.
type LoginInput struct {
	Email    string
	Password string
}

// Register creates a new account and returns tokens. In production the
// account starts inactive and a 6-digit OTP is mailed for verification;
// everywhere else the account is active immediately.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Username == "" {
		return nil, nil, apperrors.InvalidInput("username is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, nil, apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if input.Password != input.ConfirmPassword {
		return nil, nil, apperrors.InvalidInput("passwords do not match")
	}

	userType := input.UserType
	if userType == "" {
		userType = domain.UserTypeUser
	}
	if !domain.IsValidUserType(userType) {
		return nil, nil, apperrors.InvalidInput("invalid user type")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		UserType:     userType,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if s.environment == envProduction {
		code, err := otp.Generate()
		if err != nil {
			return nil, nil, fmt.Errorf("generate otp: %w", err)
		}
		user.IsActive = false
		user.OTP = &code
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	if user.OTP != nil {
		s.requestOTPMail(ctx, user)
	}

	tokens, err := s.tokens.Issue(user)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
		slog.Bool("verification_required", user.OTP != nil),
	)

	return user, tokens, nil
}

// Login authenticates a user with email and password, returning tokens.
// Invalid credentials are reported as a forbidden error, matching the
// behavior clients already depend on.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, apperrors.Forbidden("Invalid credentials provided")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, apperrors.Forbidden("Invalid credentials provided")
	}

	tokens, err := s.tokens.Issue(user)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "failed to record last login",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, tokens, nil
}

// Refresh validates a refresh token and mints a new access token. The refresh
// token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperrors.InvalidInput("refresh token is required")
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", mapTokenError(err)
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", apperrors.Unauthorized("unknown user")
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}

	s.logger.InfoContext(ctx, "access token refreshed",
		slog.String("user_id", user.ID),
	)

	return accessToken, nil
}

// Logout revokes the presented access token for its remaining lifetime.
// Revoking an already-revoked token succeeds.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.tokens.VerifyAccessToken(rawToken)
	if err != nil {
		return mapTokenError(err)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.blacklist.Revoke(ctx, rawToken, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged out",
		slog.String("user_id", claims.UserID),
	)

	return nil
}

// VerifyOTP activates an account when the submitted code matches. The
// transition is one-way; a verified account cannot be re-verified.
func (s *AuthService) VerifyOTP(ctx context.Context, userID, code string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user for verification: %w", err)
	}

	if user.IsActive {
		return apperrors.InvalidInput("account is already verified")
	}

	if user.OTP == nil || *user.OTP != code {
		return apperrors.InvalidInput("OTP does not match")
	}

	user.IsActive = true
	user.OTP = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("activate user: %w", err)
	}

	if err := s.producer.PublishUserVerified(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.verified event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user verified",
		slog.String("user_id", user.ID),
	)

	return nil
}

// ResendOTP regenerates the verification code, overwrites the stored one, and
// requests a fresh delivery from the mail dispatcher.
func (s *AuthService) ResendOTP(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user for otp resend: %w", err)
	}

	if user.IsActive {
		return apperrors.InvalidInput("account is already verified")
	}

	code, err := otp.Generate()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	user.OTP = &code
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	s.requestOTPMail(ctx, user)

	s.logger.InfoContext(ctx, "otp resent",
		slog.String("user_id", user.ID),
	)

	return nil
}

// Authenticate resolves a raw Authorization header to a user. Absent or
// non-bearer headers are anonymous: both return values are nil. A present
// bearer token must verify, must not be revoked, and must resolve to a
// stored user.
func (s *AuthService) Authenticate(ctx context.Context, rawHeader string) (*domain.User, error) {
	token, ok := BearerToken(rawHeader)
	if !ok {
		return nil, nil
	}

	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, mapTokenError(err)
	}

	revoked, err := s.blacklist.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return nil, apperrors.Unauthorized("token has been revoked")
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("unknown user")
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	return user, nil
}

// BearerToken extracts the token from a "Bearer <token>" authorization header.
// The second return value is false when the header is absent or uses another
// scheme.
func BearerToken(rawHeader string) (string, bool) {
	const prefix = "Bearer "
	if rawHeader == "" || !strings.HasPrefix(rawHeader, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(rawHeader, prefix))
	if token == "" {
		return "", false
	}
	return token, true
}

// requestOTPMail hands mail delivery to the dispatcher by publishing a
// user.otp_requested event. Publish failure is logged, not surfaced; the
// user can always request a resend.
func (s *AuthService) requestOTPMail(ctx context.Context, user *domain.User) {
	if err := s.producer.PublishUserOTPRequested(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.otp_requested event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}
}

// mapTokenError converts token verification sentinels to API errors. Malformed
// tokens are a client formatting problem; everything else means the caller
// needs fresh credentials.
func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrMalformed):
		return apperrors.InvalidInput("token is malformed")
	case errors.Is(err, auth.ErrExpired):
		return apperrors.Unauthorized("token is expired")
	case errors.Is(err, auth.ErrInvalidSignature):
		return apperrors.Unauthorized("token signature is invalid")
	case errors.Is(err, auth.ErrInvalidTokenKind):
		return apperrors.Unauthorized("token is not of the expected kind")
	default:
		return apperrors.Unauthorized("invalid token")
	}
}
