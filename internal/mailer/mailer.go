// Package mailer delivers transactional email to users.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
)

// Mail is a single outbound message.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Mailer defines the interface for sending mail through a provider.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// OTPMail builds the verification message sent after registration.
func OTPMail(to, code string) Mail {
	return Mail{
		To:      to,
		Subject: "Verify your account!",
		Body:    fmt.Sprintf("Your OTP for verification is: %s", code),
	}
}

// LogMailer writes mail to the structured log instead of delivering it.
// Used in development and as the default when no provider is configured.
type LogMailer struct {
	sender string
	logger *slog.Logger
}

// NewLogMailer creates a mailer that logs instead of sending.
func NewLogMailer(sender string, logger *slog.Logger) *LogMailer {
	return &LogMailer{
		sender: sender,
		logger: logger,
	}
}

// Send logs the mail details and always succeeds.
func (m *LogMailer) Send(ctx context.Context, mail Mail) error {
	m.logger.InfoContext(ctx, "mail sent",
		slog.String("from", m.sender),
		slog.String("to", mail.To),
		slog.String("subject", mail.Subject),
		slog.String("body", mail.Body),
	)
	return nil
}
