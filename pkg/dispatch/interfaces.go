package dispatch

import (
	"context"

	"github.com/tinywideclouds/go-notihub/pkg/notification"
)

// Notifier defines the contract every provider adapter implements.
// A provider that cannot serve a channel still implements the method and
// returns an error matching ErrNotSupported, so callers can check capability
// with errors.Is.
type Notifier interface {
	// SendSMS sends one text message.
	SendSMS(ctx context.Context, req notification.SMSRequest) (*notification.Receipt, error)

	// SendEmail sends a templated email to the request's recipients.
	SendEmail(ctx context.Context, req notification.EmailRequest) (*notification.Receipt, error)

	// SendPush pushes a message to one or more targets.
	SendPush(ctx context.Context, req notification.PushRequest) (*notification.Receipt, error)
}
