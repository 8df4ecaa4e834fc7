// Package resend provides an email-only notifier backed by the Resend API.
// Templates are rendered locally before sending.
package resend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
	"github.com/tinywideclouds/go-notihub/pkg/dispatch"
	"github.com/tinywideclouds/go-notihub/pkg/notification"
	"github.com/tinywideclouds/go-notihub/pkg/templating"
)

const ProviderName = "resend"

// EmailSender is the part of the Resend emails service we call.
type EmailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Credentials are the API key and the default sender address.
type Credentials struct {
	APIKey string
	// From is used when a request carries no sender.
	From string
}

// Notifier sends locally rendered templates through Resend.
type Notifier struct {
	emails    EmailSender
	from      string
	templates *templating.Set
	logger    *slog.Logger
}

// New builds a Resend API client from the key.
func New(creds Credentials, templates *templating.Set, logger *slog.Logger) (*Notifier, error) {
	if creds.APIKey == "" {
		return nil, dispatch.Invalid("api_key", "Resend API key must be provided")
	}
	client := resend.NewClient(creds.APIKey)
	return NewWithSender(client.Emails, creds.From, templates, logger), nil
}

// NewWithSender uses an existing emails service. from is the default sender.
func NewWithSender(emails EmailSender, from string, templates *templating.Set, logger *slog.Logger) *Notifier {
	return &Notifier{
		emails:    emails,
		from:      from,
		templates: templates,
		logger:    logger.With("component", "ResendNotifier"),
	}
}

// SendEmail renders the request's template and sends it in one API call.
func (n *Notifier) SendEmail(ctx context.Context, req notification.EmailRequest) (*notification.Receipt, error) {
	sender := req.Sender
	if sender == "" {
		sender = n.from
	}
	if sender == "" {
		return nil, dispatch.Invalid("sender", "sender address must be provided")
	}
	if len(req.Recipients) == 0 {
		return nil, dispatch.Invalid("recipients", "at least one recipient must be provided")
	}
	if n.templates == nil {
		return nil, fmt.Errorf("email template %q: %w", req.Template, dispatch.ErrNotFound)
	}

	rendered, err := n.templates.Render(req.Template, req.Data, req.Subject)
	if err != nil {
		return nil, err
	}

	resp, err := n.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    sender,
		To:      req.Recipients,
		Cc:      req.CC,
		Bcc:     req.BCC,
		Subject: rendered.Subject,
		Html:    rendered.HTML,
		Text:    rendered.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("resend send failed: %w", err)
	}

	n.logger.Debug("Resend email sent", "id", resp.Id, "template", req.Template)
	return &notification.Receipt{Provider: ProviderName, MessageIDs: []string{resp.Id}, Raw: resp}, nil
}

func (n *Notifier) SendSMS(context.Context, notification.SMSRequest) (*notification.Receipt, error) {
	return nil, dispatch.NotSupported(ProviderName, "sms")
}

func (n *Notifier) SendPush(context.Context, notification.PushRequest) (*notification.Receipt, error) {
	return nil, dispatch.NotSupported(ProviderName, "push")
}

var _ dispatch.Notifier = (*Notifier)(nil)
