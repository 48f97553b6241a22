// Package mailer sends transactional email. SendGrid is used when an API key
// is configured; the console mailer is the dev fallback.
package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Mailer delivers a single HTML message.
type Mailer interface {
	Send(ctx context.Context, toEmail, subject, bodyHTML string) error
}

// New picks SendGrid when apiKey is set, console otherwise.
func New(apiKey, fromName, fromAddr string, logger *zap.Logger) Mailer {
	if apiKey != "" {
		return NewSendGrid(apiKey, fromName, fromAddr)
	}
	return NewConsole(logger)
}

// SendGrid sends mail through the SendGrid v3 API.
type SendGrid struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
}

// NewSendGrid creates a SendGrid mailer.
func NewSendGrid(apiKey, fromName, fromAddr string) *SendGrid {
	return &SendGrid{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		fromAddr: fromAddr,
	}
}

// Send delivers one message and fails on any non-2xx response.
func (m *SendGrid) Send(ctx context.Context, toEmail, subject, bodyHTML string) error {
	from := sgmail.NewEmail(m.fromName, m.fromAddr)
	to := sgmail.NewEmail("", toEmail)
	msg := sgmail.NewSingleEmail(from, subject, to, "", bodyHTML)

	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// Console logs messages instead of sending them.
type Console struct {
	logger *zap.Logger
}

// NewConsole creates a console mailer.
func NewConsole(logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{logger: logger}
}

// Send logs the message.
func (m *Console) Send(_ context.Context, toEmail, subject, bodyHTML string) error {
	m.logger.Info("email (console mailer)",
		zap.String("to", toEmail),
		zap.String("subject", subject),
		zap.String("body", bodyHTML),
	)
	return nil
}
