// Package notification delivers operator notifications for the provisioning
// console.
//
// The only notification today is the failed-report mail sent to the
// administrator. Delivery is pluggable: inline, through a worker pool, or
// through River Queue (see internal/jobs).
//
// Import Path: hostconsole.io/provisioning/internal/notification
package notification

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "hostconsole.io/provisioning/internal/pkg/errors"
	"hostconsole.io/provisioning/internal/pkg/logger"
)

// Type constants.
const (
	TypeReportError = "REPORT_ERROR"
)

// Params holds the required fields for sending a notification.
type Params struct {
	ID           string `json:"id,omitempty"`  // Assigned by the sender when empty
	Recipient    string `json:"recipient"`     // Mail address of the recipient
	Type         string `json:"type"`          // One of Type* constants above
	Title        string `json:"title"`         // Mail subject
	Message      string `json:"message"`       // Body text
	ResourceType string `json:"resource_type"` // e.g. "report"
	ResourceID   string `json:"resource_id"`   // ID of the related resource
}

// Sender defines the interface for sending notifications.
type Sender interface {
	Send(ctx context.Context, params Params) error
}

// EmailSender delivers notifications as plain-text mail.
type EmailSender struct {
	mailer Mailer
	from   string
}

// NewEmailSender creates a sender that mails from the given address.
func NewEmailSender(mailer Mailer, from string) *EmailSender {
	return &EmailSender{mailer: mailer, from: from}
}

// Send validates params and hands one message to the mailer.
func (s *EmailSender) Send(ctx context.Context, params Params) error {
	if err := validateParams(params); err != nil {
		return apperrors.Wrap(err, apperrors.CodeNotificationInvalid, "notification params invalid")
	}
	if params.ID == "" {
		params.ID = uuid.NewString()
	}

	msg := Message{
		ID:      params.ID,
		From:    s.from,
		To:      params.Recipient,
		Subject: params.Title,
		Body:    params.Message,
	}
	if err := s.mailer.Deliver(ctx, msg); err != nil {
		return apperrors.Wrap(err, apperrors.CodeNotificationDelivery,
			fmt.Sprintf("deliver %s notification to %s", params.Type, params.Recipient))
	}

	logger.Debug("notification sent",
		zap.String("id", params.ID),
		zap.String("recipient", params.Recipient),
		zap.String("type", params.Type),
		zap.String("resource_id", params.ResourceID),
	)
	return nil
}

// compile-time check
var _ Sender = (*EmailSender)(nil)

func validateParams(p Params) error {
	if p.Recipient == "" {
		return fmt.Errorf("recipient is required")
	}
	if _, err := mail.ParseAddress(p.Recipient); err != nil {
		return fmt.Errorf("recipient %q: %w", p.Recipient, err)
	}
	if p.Title == "" {
		return fmt.Errorf("title is required")
	}
	if p.Message == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}
