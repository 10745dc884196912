package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Leapblog/backend/internal/domain"
	apperrors "github.com/Leapblog/backend/pkg/errors"
	"github.com/Leapblog/backend/pkg/pagination"
)

type mockPostRepository struct {
	mock.Mock
}

func (m *mockPostRepository) Create(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *mockPostRepository) List(ctx context.Context, params pagination.Params) ([]domain.Post, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Post), args.Int(1), args.Error(2)
}

func (m *mockPostRepository) ListByAuthor(ctx context.Context, authorID string, params pagination.Params) ([]domain.Post, int, error) {
	args := m.Called(ctx, authorID, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Post), args.Int(1), args.Error(2)
}

func (m *mockPostRepository) Update(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockPostRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockCommentRepository struct {
	mock.Mock
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *mockCommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *mockCommentRepository) ListByPostID(ctx context.Context, postID string, params pagination.Params) ([]domain.Comment, int, error) {
	args := m.Called(ctx, postID, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Comment), args.Int(1), args.Error(2)
}

func (m *mockCommentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockLikeRepository struct {
	mock.Mock
}

func (m *mockLikeRepository) Add(ctx context.Context, like *domain.Like) error {
	args := m.Called(ctx, like)
	return args.Error(0)
}

func (m *mockLikeRepository) Remove(ctx context.Context, postID, userID string) error {
	args := m.Called(ctx, postID, userID)
	return args.Error(0)
}

func (m *mockLikeRepository) Exists(ctx context.Context, postID, userID string) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLikeRepository) CountByPostID(ctx context.Context, postID string) (int, error) {
	args := m.Called(ctx, postID)
	return args.Int(0), args.Error(1)
}

func newBlogService(postRepo *mockPostRepository, commentRepo *mockCommentRepository, likeRepo *mockLikeRepository) *BlogService {
	return NewBlogService(postRepo, commentRepo, likeRepo, newTestEventProducer(), newTestLogger())
}

const (
	testAuthorID = "550e8400-e29b-41d4-a716-446655440001"
	testPostID   = "550e8400-e29b-41d4-a716-446655440020"
)

func samplePost() *domain.Post {
	now := time.Now().UTC()
	return &domain.Post{
		ID:        testPostID,
		AuthorID:  testAuthorID,
		Title:     "Hello World",
		Slug:      "hello-world",
		Content:   "First post.",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ============================================================================
// Posts
// ============================================================================

func TestCreatePost_Success(t *testing.T) {
	postRepo := new(mockPostRepository)
	svc := newBlogService(postRepo, new(mockCommentRepository), new(mockLikeRepository))

	postRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Post")).Return(nil)

	post, err := svc.CreatePost(context.Background(), testAuthorID, CreatePostInput{
		Title:   "My First Post!",
		Content: "Some content.",
	})
	require.NoError(t, err)

	assert.Equal(t, testAuthorID, post.AuthorID)
	assert.Equal(t, "my-first-post", post.Slug)
	assert.NotEmpty(t, post.ID)
	postRepo.AssertExpectations(t)
}

func TestCreatePost_SlugCollisionGetsSuffix(t *testing.T) {
	postRepo := new(mockPostRepository)
	svc := newBlogService(postRepo, new(mockCommentRepository), new(mockLikeRepository))

	dup := apperrors.AlreadyExists("post", "slug", "hello-world")
	postRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Post) bool {
		return p.Slug == "hello-world"
	})).Return(dup).Once()
	postRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Post) bool {
		return p.Slug == "hello-world-2"
	})).Return(nil).Once()

	post, err := svc.CreatePost(context.Background(), testAuthorID, CreatePostInput{
		Title:   "Hello World",
		Content: "Again.",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello-world-2", post.Slug)
	postRepo.AssertExpectations(t)
}

func TestCreatePost_MissingTitle(t *testing.T) {
	svc := newBlogService(new(mockPostRepository), new(mockCommentRepository), new(mockLikeRepository))

	_, err := svc.CreatePost(context.Background(), testAuthorID, CreatePostInput{Content: "body"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestGetPost_SetsLikedForViewer(t *testing.T) {
	postRepo := new(mockPostRepository)
	likeRepo := new(mockLikeRepository)
	svc := newBlogService(postRepo, new(mockCommentRepository), likeRepo)

	postRepo.On("GetByID", mock.Anything, testPostID).Return(samplePost(), nil)
	likeRepo.On("Exists", mock.Anything, testPostID, "viewer-1").Return(true, nil)

	post, err := svc.GetPost(context.Background(), testPostID, "viewer-1")
	require.NoError(t, err)
	assert.True(t, post.Liked)
	likeRepo.AssertExpectations(t)
}

func TestGetPost_AnonymousSkipsLikeLookup(t *testing.T) {
	postRepo := new(mockPostRepository)
	likeRepo := new(mockLikeRepository)
	svc := newBlogService(postRepo, new(mockCommentRepository), likeRepo)

	postRepo.On("GetByID", mock.Anything, testPostID).Return(samplePost(), nil)

	post, err := svc.GetPost(context.Background(), testPostID, "")
	require.NoError(t, err)
	assert.False(t, post.Liked)
	likeRepo.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
}

func TestListPosts_WrapsInPagination(t *testing.T) {
	postRepo := new(mockPostRepository)
	svc := newBlogService(postRepo, new(mockCommentRepository), new(mockLikeRepository))

	params := pagination.Params{Page: 1, PerPage: 10}
	postRepo.On("List", mock.Anything, params).Return([]domain.Post{*samplePost()}, 23, nil)

	result, err := svc.ListPosts(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, result.Data, 1)
	assert.Equal(t, 23, result.TotalCount)
	assert.Equal(t, 3, result.TotalPages)
	assert.True(t, result.HasNext)
	postRepo.AssertExpectations(t)
}

func TestUpdatePost_AuthorOnly(t *testing.T) {
	postRepo := new(mockPostRepository)
	svc := newBlogService(postRepo, new(mockCommentRepository), new(mockLikeRepository))

	postRepo.On("GetByID", mock.Anything, testPostID).Return(samplePost(), nil)

	_, err := svc.UpdatePost(context.Background(), "someone-else", testPostID, UpdatePostInput{
		Title: strPtr("Hijacked"),
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	postRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdatePost_RegeneratesSlugOnTitleChange(t *testing.T) {
	postRepo := new(mockPostRepository)
	svc := newBlogService(postRepo, new(mockCommentRepository), new(mockLikeRepository))

	postRepo.On("GetByID", mock.Anything, testPostID).Return(samplePost(), nil)
	postRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Post")).Return(nil)

	post, err := svc.UpdatePost(context.Background(), testAuthorID, testPostID, UpdatePostInput{
		Title: strPtr("A Better Title"),
	})
	require.NoError(t, err)
	assert.Equal(t, "a-better-title", post.Slug)
	assert.Equal(t, "First post.", post.Content)
	postRepo.AssertExpectations(t)
}

func TestDeletePost_AuthorOnly(t *testing.T) {
	postRepo := new(mockPostRepository)
	svc := newBlogService(postRepo, new(mockCommentRepository), new(mockLikeRepository))

	postRepo.On("GetByID", mock.Anything, testPostID).Return(samplePost(), nil)

	err := svc.DeletePost(context.Background(), "someone-else", testPostID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	postRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeletePost_Success(t *testing.T) {
	postRepo := new(mockPostRepository)
	svc := newBlogService(postRepo, new(mockCommentRepository), new(mockLikeRepository))

	postRepo.On("GetByID", mock.Anything, testPostID).Return(samplePost(), nil)
	postRepo.On("Delete", mock.Anything, testPostID).Return(nil)

	err := svc.DeletePost(context.Background(), testAuthorID, testPostID)
	require.NoError(t, err)
	postRepo.AssertExpectations(t)
}

// ============================================================================
// Comments
// ============================================================================

func TestCreateComment_Success(t *testing.T) {
	postRepo := new(mockPostRepository)
	commentRepo := new(mockCommentRepository)
	svc := newBlogService(postRepo, commentRepo, new(mockLikeRepository))

	postRepo.On("GetByID", mock.Anything, testPostID).Return(samplePost(), nil)
	commentRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Comment")).Return(nil)

	comment, err := svc.CreateComment(context.Background(), "commenter-1", testPostID, "Nice post!")
	require.NoError(t, err)
	assert.Equal(t, testPostID, comment.PostID)
	assert.Equal(t, "commenter-1", comment.AuthorID)
	commentRepo.AssertExpectations(t)
}

func TestCreateComment_PostMustExist(t *testing.T) {
	postRepo := new(mockPostRepository)
	commentRepo := new(mockCommentRepository)
	svc := newBlogService(postRepo, commentRepo, new(mockLikeRepository))

	postRepo.On("GetByID", mock.Anything, "gone").Return(nil, apperrors.NotFound("post", "gone"))

	_, err := svc.CreateComment(context.Background(), "commenter-1", "gone", "Nice post!")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	commentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDeleteComment_AuthorOnly(t *testing.T) {
	commentRepo := new(mockCommentRepository)
	svc := newBlogService(new(mockPostRepository), commentRepo, new(mockLikeRepository))

	comment := &domain.Comment{ID: "c-1", PostID: testPostID, AuthorID: "commenter-1", Content: "mine"}
	commentRepo.On("GetByID", mock.Anything, "c-1").Return(comment, nil)

	err := svc.DeleteComment(context.Background(), "someone-else", "c-1")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	commentRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// ============================================================================
// Likes
// ============================================================================

func TestLikePost_Success(t *testing.T) {
	postRepo := new(mockPostRepository)
	likeRepo := new(mockLikeRepository)
	svc := newBlogService(postRepo, new(mockCommentRepository), likeRepo)

	postRepo.On("GetByID", mock.Anything, testPostID).Return(samplePost(), nil)
	likeRepo.On("Add", mock.Anything, mock.MatchedBy(func(l *domain.Like) bool {
		return l.PostID == testPostID && l.UserID == "liker-1"
	})).Return(nil)

	err := svc.LikePost(context.Background(), "liker-1", testPostID)
	require.NoError(t, err)
	likeRepo.AssertExpectations(t)
}

func TestLikePost_UnknownPost(t *testing.T) {
	postRepo := new(mockPostRepository)
	likeRepo := new(mockLikeRepository)
	svc := newBlogService(postRepo, new(mockCommentRepository), likeRepo)

	postRepo.On("GetByID", mock.Anything, "gone").Return(nil, apperrors.NotFound("post", "gone"))

	err := svc.LikePost(context.Background(), "liker-1", "gone")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	likeRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestUnlikePost_MissingLikeIsNoOp(t *testing.T) {
	likeRepo := new(mockLikeRepository)
	svc := newBlogService(new(mockPostRepository), new(mockCommentRepository), likeRepo)

	likeRepo.On("Remove", mock.Anything, testPostID, "liker-1").Return(nil)

	err := svc.UnlikePost(context.Background(), "liker-1", testPostID)
	require.NoError(t, err)
	likeRepo.AssertExpectations(t)
}
