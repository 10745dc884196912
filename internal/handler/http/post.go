package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Leapblog/backend/internal/service"
	apperrors "github.com/Leapblog/backend/pkg/errors"
	"github.com/Leapblog/backend/pkg/httputil"
	"github.com/Leapblog/backend/pkg/pagination"
	"github.com/Leapblog/backend/pkg/validator"
)

// PostHandler handles HTTP requests for posts, comments, and likes.
type PostHandler struct {
	service *service.BlogService
	logger  *slog.Logger
}

// NewPostHandler creates a new post HTTP handler.
func NewPostHandler(svc *service.BlogService, logger *slog.Logger) *PostHandler {
	return &PostHandler{service: svc, logger: logger}
}

// CreatePostRequest is the JSON request body for creating a post.
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=255"`
	Content string `json:"content" validate:"required"`
}

// UpdatePostRequest is the JSON request body for updating a post.
type UpdatePostRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=255"`
	Content *string `json:"content" validate:"omitempty,min=1"`
}

// CreateCommentRequest is the JSON request body for commenting on a post.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// List handles GET /api/v1/posts
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	result, err := h.service.ListPosts(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "", result)
}

// Get handles GET /api/v1/posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	viewerID := ""
	if user := IdentityFromContext(r.Context()); user != nil {
		viewerID = user.ID
	}

	post, err := h.service.GetPost(r.Context(), id, viewerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "", post)
}

// Create handles POST /api/v1/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	user := IdentityFromContext(r.Context())

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	post, err := h.service.CreatePost(r.Context(), user.ID, service.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, "post created successfully", post)
}

// Update handles PUT /api/v1/posts/{id}
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	user := IdentityFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	post, err := h.service.UpdatePost(r.Context(), user.ID, id, service.UpdatePostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "post updated successfully", post)
}

// Delete handles DELETE /api/v1/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := IdentityFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.DeletePost(r.Context(), user.ID, id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "post deleted successfully", nil)
}

// ListComments handles GET /api/v1/posts/{id}/comments
func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	params := pagination.FromRequest(r)

	result, err := h.service.ListComments(r.Context(), postID, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "", result)
}

// CreateComment handles POST /api/v1/posts/{id}/comments
func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	user := IdentityFromContext(r.Context())
	postID := chi.URLParam(r, "id")

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	comment, err := h.service.CreateComment(r.Context(), user.ID, postID, req.Content)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, "comment created successfully", comment)
}

// GetComment handles GET /api/v1/comments/{id}
func (h *PostHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	comment, err := h.service.GetComment(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "", comment)
}

// DeleteComment handles DELETE /api/v1/comments/{id}
func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	user := IdentityFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteComment(r.Context(), user.ID, id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "comment deleted successfully", nil)
}

// Like handles POST /api/v1/posts/{id}/like
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	user := IdentityFromContext(r.Context())
	postID := chi.URLParam(r, "id")

	if err := h.service.LikePost(r.Context(), user.ID, postID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "post liked", nil)
}

// Unlike handles DELETE /api/v1/posts/{id}/like
func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	user := IdentityFromContext(r.Context())
	postID := chi.URLParam(r, "id")

	if err := h.service.UnlikePost(r.Context(), user.ID, postID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "post unliked", nil)
}
