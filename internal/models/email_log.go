package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailType identifies what an outbound email was for.
const (
	EmailTypeOTPVerification = "otp_verification"
	EmailTypePasswordReset   = "password_reset"
)

// EmailLogStatus for delivery.
const (
	EmailLogStatusPending = "pending"
	EmailLogStatusSent    = "sent"
	EmailLogStatusFailed  = "failed"
)

// EmailLog records verification/reset emails handed to the worker.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	EmailType      string     `json:"email_type"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject,omitempty"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
