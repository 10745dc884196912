package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/Leapblog/backend/pkg/kafka"

	"github.com/Leapblog/backend/internal/domain"
)

// Kafka topic constants for Leapblog domain events.
const (
	TopicUserRegistered   = "leapblog.user.registered"
	TopicUserVerified     = "leapblog.user.verified"
	TopicUserOTPRequested = "leapblog.user.otp_requested"
	TopicPostCreated      = "leapblog.post.created"
	TopicPostLiked        = "leapblog.post.liked"
)

// Aggregate type constants.
const (
	AggregateTypeUser = "user"
	AggregateTypePost = "post"
)

// Source identifier for events originating from this backend.
const SourceBackend = "leapblog-backend"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
	IsActive bool   `json:"is_active"`
}

// UserVerifiedData is the payload for a user.verified event.
type UserVerifiedData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// UserOTPRequestedData is the payload for a user.otp_requested event. The
// code itself is never published; the mail dispatcher reads the pending
// code from the user store when it delivers the mail.
type UserOTPRequestedData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// PostCreatedData is the payload for a post.created event.
type PostCreatedData struct {
	ID       string `json:"id"`
	AuthorID string `json:"author_id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
}

// PostLikedData is the payload for a post.liked event.
type PostLikedData struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
}

// Producer publishes Leapblog domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		UserType: user.UserType,
		IsActive: user.IsActive,
	}
	return p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, data)
}

// PublishUserVerified publishes a user.verified event.
func (p *Producer) PublishUserVerified(ctx context.Context, user *domain.User) error {
	data := UserVerifiedData{
		ID:    user.ID,
		Email: user.Email,
	}
	return p.publish(ctx, TopicUserVerified, user.ID, AggregateTypeUser, data)
}

// PublishUserOTPRequested publishes a user.otp_requested event.
func (p *Producer) PublishUserOTPRequested(ctx context.Context, user *domain.User) error {
	data := UserOTPRequestedData{
		ID:    user.ID,
		Email: user.Email,
	}
	return p.publish(ctx, TopicUserOTPRequested, user.ID, AggregateTypeUser, data)
}

// PublishPostCreated publishes a post.created event.
func (p *Producer) PublishPostCreated(ctx context.Context, post *domain.Post) error {
	data := PostCreatedData{
		ID:       post.ID,
		AuthorID: post.AuthorID,
		Title:    post.Title,
		Slug:     post.Slug,
	}
	return p.publish(ctx, TopicPostCreated, post.ID, AggregateTypePost, data)
}

// PublishPostLiked publishes a post.liked event.
func (p *Producer) PublishPostLiked(ctx context.Context, postID, userID string) error {
	data := PostLikedData{
		PostID: postID,
		UserID: userID,
	}
	return p.publish(ctx, TopicPostLiked, postID, AggregateTypePost, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceBackend, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
