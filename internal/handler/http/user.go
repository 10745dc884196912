package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Leapblog/backend/internal/service"
	apperrors "github.com/Leapblog/backend/pkg/errors"
	"github.com/Leapblog/backend/pkg/httputil"
	"github.com/Leapblog/backend/pkg/validator"
)

// UserHandler handles HTTP requests for profile endpoints.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// UpdateProfileRequest is the JSON request body for updating a profile.
// Omitted fields keep their current values.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,max=100"`
	Bio         *string `json:"bio" validate:"omitempty,max=2000"`
	Address     *string `json:"address" validate:"omitempty,max=255"`
	College     *string `json:"college" validate:"omitempty,max=255"`
	Batch       *string `json:"batch" validate:"omitempty,max=50"`
	WebsiteURL  *string `json:"website_url" validate:"omitempty,url"`
	LinkedinURL *string `json:"linkedin_url" validate:"omitempty,url"`
}

// GetProfile handles GET /api/v1/users/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := IdentityFromContext(r.Context())

	profile, err := h.service.GetProfile(r.Context(), user.ID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "", profile)
}

// UpdateProfile handles PUT /api/v1/users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	user := IdentityFromContext(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := service.UpdateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Bio:         req.Bio,
		Address:     req.Address,
		College:     req.College,
		Batch:       req.Batch,
		WebsiteURL:  req.WebsiteURL,
		LinkedinURL: req.LinkedinURL,
	}

	profile, err := h.service.UpdateProfile(r.Context(), user.ID, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "profile updated successfully", profile)
}
