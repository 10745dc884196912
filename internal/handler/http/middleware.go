package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/Leapblog/backend/internal/domain"
	"github.com/Leapblog/backend/internal/service"
	apperrors "github.com/Leapblog/backend/pkg/errors"
	"github.com/Leapblog/backend/pkg/httputil"
	"github.com/Leapblog/backend/pkg/logger"
)

type contextKey string

const identityKey contextKey = "identity"

// ContentTypeJSON enforces that requests carrying a body declare
// Content-Type: application/json. Body-less requests, such as logout or an
// OTP resend, pass through regardless of method. A ContentLength of -1 means
// the length is unknown, so those are checked too.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength != 0 {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"success":false,"message":"Content-Type must be application/json"}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth authenticates the bearer token on every request and stores the
// resolved user in the request context. Anonymous requests (no bearer header)
// are rejected.
func RequireAuth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authService.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				httputil.WriteError(w, r, err, nil)
				return
			}
			if user == nil {
				httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), nil)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, user)
			ctx = logger.WithUserID(ctx, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the bearer token when present but lets anonymous
// requests through. Invalid tokens are still rejected.
func OptionalAuth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authService.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				httputil.WriteError(w, r, err, nil)
				return
			}

			ctx := r.Context()
			if user != nil {
				ctx = context.WithValue(ctx, identityKey, user)
				ctx = logger.WithUserID(ctx, user.ID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireVerified rejects authenticated but unverified users. Unverified
// accounts may only verify their OTP, request a new one, or log out.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := IdentityFromContext(r.Context())
		if user != nil && !user.IsActive {
			httputil.WriteError(w, r, apperrors.Forbidden("account is not verified"), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext returns the authenticated user stored by RequireAuth,
// or nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(identityKey).(*domain.User)
	return user
}
