package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Leapblog/backend/internal/domain"
	"github.com/Leapblog/backend/internal/event"
	"github.com/Leapblog/backend/internal/repository"
	apperrors "github.com/Leapblog/backend/pkg/errors"
	"github.com/Leapblog/backend/pkg/pagination"
	"github.com/Leapblog/backend/pkg/slug"
)

// BlogService implements post, comment, and like operations.
type BlogService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
	producer    *event.Producer
	logger      *slog.Logger
}

// NewBlogService creates a new blog service.
func NewBlogService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *BlogService {
	return &BlogService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		producer:    producer,
		logger:      logger,
	}
}

// CreatePostInput holds the parameters for creating a post.
type CreatePostInput struct {
	Title   string
	Content string
}

// UpdatePostInput holds the parameters for updating a post. Nil fields are
// left unchanged.
type UpdatePostInput struct {
	Title   *string
	Content *string
}

// CreatePost creates a new post authored by the given user. The slug is
// derived from the title; a numeric suffix disambiguates duplicates.
func (s *BlogService) CreatePost(ctx context.Context, authorID string, input CreatePostInput) (*domain.Post, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if input.Content == "" {
		return nil, apperrors.InvalidInput("content is required")
	}

	now := time.Now().UTC()
	post := &domain.Post{
		ID:        uuid.New().String(),
		AuthorID:  authorID,
		Title:     input.Title,
		Slug:      slug.Generate(input.Title),
		Content:   input.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.postRepo.Create(ctx, post)
	for attempt := 2; err != nil && errors.Is(err, apperrors.ErrAlreadyExists) && attempt <= 5; attempt++ {
		post.Slug = fmt.Sprintf("%s-%d", slug.Generate(input.Title), attempt)
		err = s.postRepo.Create(ctx, post)
	}
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if err := s.producer.PublishPostCreated(ctx, post); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish post.created event",
			slog.String("post_id", post.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "post created",
		slog.String("post_id", post.ID),
		slog.String("author_id", authorID),
	)

	return post, nil
}

// GetPost retrieves a post with its counts. When viewerID is non-empty the
// Liked flag reflects whether that user liked the post.
func (s *BlogService) GetPost(ctx context.Context, id, viewerID string) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	if viewerID != "" {
		liked, err := s.likeRepo.Exists(ctx, id, viewerID)
		if err != nil {
			return nil, fmt.Errorf("check like: %w", err)
		}
		post.Liked = liked
	}

	return post, nil
}

// ListPosts returns posts newest first.
func (s *BlogService) ListPosts(ctx context.Context, params pagination.Params) (*pagination.Result[domain.Post], error) {
	posts, total, err := s.postRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	result := pagination.NewResult(posts, total, params)
	return &result, nil
}

// ListPostsByAuthor returns posts written by the given user, newest first.
func (s *BlogService) ListPostsByAuthor(ctx context.Context, authorID string, params pagination.Params) (*pagination.Result[domain.Post], error) {
	posts, total, err := s.postRepo.ListByAuthor(ctx, authorID, params)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}

	result := pagination.NewResult(posts, total, params)
	return &result, nil
}

// UpdatePost modifies a post. Only the author may update it.
func (s *BlogService) UpdatePost(ctx context.Context, userID, postID string, input UpdatePostInput) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post for update: %w", err)
	}

	if post.AuthorID != userID {
		return nil, apperrors.Forbidden("only the author can update this post")
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.InvalidInput("title must not be empty")
		}
		post.Title = *input.Title
		post.Slug = slug.Generate(*input.Title)
	}
	if input.Content != nil {
		if *input.Content == "" {
			return nil, apperrors.InvalidInput("content must not be empty")
		}
		post.Content = *input.Content
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	s.logger.InfoContext(ctx, "post updated",
		slog.String("post_id", postID),
		slog.String("author_id", userID),
	)

	return post, nil
}

// DeletePost removes a post. Only the author may delete it.
func (s *BlogService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("get post for delete: %w", err)
	}

	if post.AuthorID != userID {
		return apperrors.Forbidden("only the author can delete this post")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	s.logger.InfoContext(ctx, "post deleted",
		slog.String("post_id", postID),
		slog.String("author_id", userID),
	)

	return nil
}

// CreateComment adds a comment to a post.
func (s *BlogService) CreateComment(ctx context.Context, userID, postID, content string) (*domain.Comment, error) {
	if content == "" {
		return nil, apperrors.InvalidInput("content is required")
	}

	// Confirm the post exists before writing.
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, fmt.Errorf("get post for comment: %w", err)
	}

	now := time.Now().UTC()
	comment := &domain.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		AuthorID:  userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.logger.InfoContext(ctx, "comment created",
		slog.String("comment_id", comment.ID),
		slog.String("post_id", postID),
	)

	return comment, nil
}

// GetComment retrieves a comment by ID.
func (s *BlogService) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return comment, nil
}

// ListComments returns comments on a post, oldest first.
func (s *BlogService) ListComments(ctx context.Context, postID string, params pagination.Params) (*pagination.Result[domain.Comment], error) {
	comments, total, err := s.commentRepo.ListByPostID(ctx, postID, params)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	result := pagination.NewResult(comments, total, params)
	return &result, nil
}

// DeleteComment removes a comment. Only its author may delete it.
func (s *BlogService) DeleteComment(ctx context.Context, userID, commentID string) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("get comment for delete: %w", err)
	}

	if comment.AuthorID != userID {
		return apperrors.Forbidden("only the author can delete this comment")
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	s.logger.InfoContext(ctx, "comment deleted",
		slog.String("comment_id", commentID),
	)

	return nil
}

// LikePost records a like. Liking an already-liked post succeeds without a
// second row.
func (s *BlogService) LikePost(ctx context.Context, userID, postID string) error {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return fmt.Errorf("get post for like: %w", err)
	}

	like := &domain.Like{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.likeRepo.Add(ctx, like); err != nil {
		return fmt.Errorf("add like: %w", err)
	}

	if err := s.producer.PublishPostLiked(ctx, postID, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish post.liked event",
			slog.String("post_id", postID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// UnlikePost removes a like. Unliking a post that was never liked succeeds.
func (s *BlogService) UnlikePost(ctx context.Context, userID, postID string) error {
	if err := s.likeRepo.Remove(ctx, postID, userID); err != nil {
		return fmt.Errorf("remove like: %w", err)
	}
	return nil
}
