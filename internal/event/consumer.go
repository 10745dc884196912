package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Leapblog/backend/internal/mailer"
	"github.com/Leapblog/backend/internal/repository"
	apperrors "github.com/Leapblog/backend/pkg/errors"
	pkgkafka "github.com/Leapblog/backend/pkg/kafka"
)

// MailDispatcherGroupID is the consumer group for the mail dispatcher.
const MailDispatcherGroupID = "leapblog-mail-dispatcher"

// dedupTTL bounds how long processed event IDs are remembered.
const dedupTTL = 24 * time.Hour

// MailDispatcher consumes user events and delivers the mail they call for.
// The verification code never travels through Kafka; the dispatcher reads
// the pending code from the user store at delivery time.
type MailDispatcher struct {
	users  repository.UserRepository
	mail   mailer.Mailer
	logger *slog.Logger
}

// NewMailDispatcher creates a dispatcher sending through the given mailer.
func NewMailDispatcher(users repository.UserRepository, mail mailer.Mailer, logger *slog.Logger) *MailDispatcher {
	return &MailDispatcher{
		users:  users,
		mail:   mail,
		logger: logger,
	}
}

// Handle routes an incoming Kafka event based on its event type.
func (d *MailDispatcher) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicUserOTPRequested:
		return d.handleOTPRequested(ctx, event)
	default:
		d.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// handleOTPRequested mails the pending verification code to the user named
// in the event. A user that verified or was deleted between publish and
// delivery has nothing pending; those events are dropped without error so
// they are not retried or dead-lettered.
func (d *MailDispatcher) handleOTPRequested(ctx context.Context, event *pkgkafka.Event) error {
	var data UserOTPRequestedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("decode user.otp_requested payload: %w", err)
	}
	if data.ID == "" {
		return errors.New("user.otp_requested payload has no user id")
	}

	user, err := d.users.GetByID(ctx, data.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			d.logger.WarnContext(ctx, "otp mail requested for unknown user",
				slog.String("user_id", data.ID),
			)
			return nil
		}
		return fmt.Errorf("load user for otp mail: %w", err)
	}

	if user.IsActive || user.OTP == nil {
		d.logger.InfoContext(ctx, "no pending verification code, skipping otp mail",
			slog.String("user_id", user.ID),
		)
		return nil
	}

	if err := d.mail.Send(ctx, mailer.OTPMail(user.Email, *user.OTP)); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}

	d.logger.InfoContext(ctx, "otp mail dispatched",
		slog.String("user_id", user.ID),
		slog.String("event_id", event.EventID),
	)

	return nil
}

// NewMailConsumer builds the Kafka consumer that feeds the dispatcher.
// Deliveries are deduplicated by event ID, and messages that exhaust their
// handler retries land on the dead-letter topic for the source topic.
func NewMailConsumer(brokers []string, dispatcher *MailDispatcher, logger *slog.Logger) *pkgkafka.Consumer {
	store := pkgkafka.NewMemoryIdempotencyStore(dedupTTL)

	consumer := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:  brokers,
		GroupID:  MailDispatcherGroupID,
		Topic:    TopicUserOTPRequested,
		MinBytes: 1,
		MaxBytes: 10e6,
	}, pkgkafka.IdempotentHandler(store, dispatcher.Handle, logger), logger)

	return consumer.WithDLQ(pkgkafka.NewDLQProducer(brokers, logger))
}
