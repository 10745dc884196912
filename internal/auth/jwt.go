package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Leapblog/backend/internal/domain"
)

// Token validation errors. Callers can match on these with errors.Is to map
// failures to the right HTTP response.
var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
	ErrMalformed        = errors.New("token is malformed")
	ErrInvalidTokenKind = errors.New("token is not of the expected kind")
)

// Claims represents the JWT claims for an access token. The Refresh field is
// never set when signing; it is parsed so refresh tokens presented as access
// tokens can be detected.
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Refresh bool   `json:"refresh,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims represents the JWT claims for a refresh token. The Refresh
// flag distinguishes refresh tokens from access tokens signed with the same
// secret.
type RefreshClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Refresh  bool   `json:"refresh"`
	jwt.RegisteredClaims
}

// TokenManager handles JWT token generation and validation.
type TokenManager struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewTokenManager creates a new token manager with the given secret and expiry durations.
func NewTokenManager(secret string, accessExpiry, refreshExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// AccessExpiry returns the configured access token lifetime.
func (m *TokenManager) AccessExpiry() time.Duration {
	return m.accessExpiry
}

// Issue generates a fresh access and refresh token pair for the user.
func (m *TokenManager) Issue(user *domain.User) (*domain.TokenPair, error) {
	access, err := m.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refresh, err := m.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// GenerateAccessToken creates a signed JWT access token containing the user ID and email.
func (m *TokenManager) GenerateAccessToken(userID, email string) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessExpiry)),
			Issuer:    "leapblog",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return signedToken, nil
}

// GenerateRefreshToken creates a signed JWT refresh token for the user.
func (m *TokenManager) GenerateRefreshToken(userID, username string) (string, error) {
	now := time.Now().UTC()
	claims := &RefreshClaims{
		UserID:   userID,
		Username: username,
		Refresh:  true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshExpiry)),
			Issuer:    "leapblog",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}

	return signedToken, nil
}

// VerifyAccessToken parses and validates an access token, returning its claims.
// Refresh tokens presented here are rejected with ErrInvalidTokenKind.
func (m *TokenManager) VerifyAccessToken(tokenString string) (*Claims, error) {
	var claims Claims
	if err := m.parse(tokenString, &claims); err != nil {
		return nil, err
	}

	if claims.Refresh {
		return nil, ErrInvalidTokenKind
	}

	return &claims, nil
}

// VerifyRefreshToken parses and validates a refresh token, returning its claims.
// Access tokens presented here are rejected with ErrInvalidTokenKind.
func (m *TokenManager) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := m.parse(tokenString, &claims); err != nil {
		return nil, err
	}

	if !claims.Refresh {
		return nil, ErrInvalidTokenKind
	}

	return &claims, nil
}

func (m *TokenManager) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return ErrMalformed
		case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
			return ErrMalformed
		default:
			return fmt.Errorf("parse token: %w", err)
		}
	}

	if !token.Valid {
		return ErrMalformed
	}

	return nil
}
