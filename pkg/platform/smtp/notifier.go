// Package smtp provides an email-only notifier that delivers through an SMTP
// relay. Templates are rendered locally.
package smtp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tinywideclouds/go-notihub/pkg/dispatch"
	"github.com/tinywideclouds/go-notihub/pkg/notification"
	"github.com/tinywideclouds/go-notihub/pkg/templating"
	"github.com/wneessen/go-mail"
)

const ProviderName = "smtp"

// MailSender is the part of *mail.Client we call.
type MailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Credentials for the relay. Encryption is "ssl_tls", "starttls" or "none".
type Credentials struct {
	Host       string
	Port       int
	Username   string
	Password   string
	Encryption string
	// From is used when a request carries no sender.
	From string
}

// Notifier sends locally rendered templates over SMTP.
type Notifier struct {
	client    MailSender
	from      string
	templates *templating.Set
	logger    *slog.Logger
}

// New builds the mail client. No connection is made until the first send.
func New(creds Credentials, templates *templating.Set, logger *slog.Logger) (*Notifier, error) {
	if creds.Host == "" {
		return nil, dispatch.Invalid("host", "SMTP host must be provided")
	}

	opts := []mail.Option{mail.WithTLSPolicy(tlsPolicyFromEncryption(creds.Encryption))}
	if creds.Port != 0 {
		opts = append(opts, mail.WithPort(creds.Port))
	}
	if creds.Encryption == "ssl_tls" {
		opts = append(opts, mail.WithSSL())
	}
	if creds.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(creds.Username),
			mail.WithPassword(creds.Password),
		)
	}

	client, err := mail.NewClient(creds.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return NewWithSender(client, creds.From, templates, logger), nil
}

// NewWithSender uses an existing mail client. from is the default sender.
func NewWithSender(client MailSender, from string, templates *templating.Set, logger *slog.Logger) *Notifier {
	return &Notifier{
		client:    client,
		from:      from,
		templates: templates,
		logger:    logger.With("component", "SMTPNotifier"),
	}
}

// SendEmail renders the template into a plain-text body with an optional
// HTML alternative and sends it in one SMTP session.
func (n *Notifier) SendEmail(ctx context.Context, req notification.EmailRequest) (*notification.Receipt, error) {
	m, err := n.BuildMessage(req)
	if err != nil {
		return nil, err
	}
	if err := n.client.DialAndSendWithContext(ctx, m); err != nil {
		return nil, fmt.Errorf("smtp send failed: %w", err)
	}

	id := m.GetMessageID()
	n.logger.Debug("SMTP email sent", "message_id", id, "template", req.Template)
	return &notification.Receipt{Provider: ProviderName, MessageIDs: []string{id}}, nil
}

// BuildMessage validates the request and renders it into a go-mail message.
func (n *Notifier) BuildMessage(req notification.EmailRequest) (*mail.Msg, error) {
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

	m := mail.NewMsg()
	if err := m.From(sender); err != nil {
		return nil, dispatch.Invalid("sender", fmt.Sprintf("invalid from address: %v", err))
	}
	if err := m.To(req.Recipients...); err != nil {
		return nil, dispatch.Invalid("recipients", fmt.Sprintf("invalid recipient: %v", err))
	}
	if len(req.CC) > 0 {
		if err := m.Cc(req.CC...); err != nil {
			return nil, dispatch.Invalid("cc", fmt.Sprintf("invalid cc address: %v", err))
		}
	}
	if len(req.BCC) > 0 {
		if err := m.Bcc(req.BCC...); err != nil {
			return nil, dispatch.Invalid("bcc", fmt.Sprintf("invalid bcc address: %v", err))
		}
	}
	m.Subject(rendered.Subject)
	m.SetMessageID()

	switch {
	case rendered.Text != "":
		m.SetBodyString(mail.TypeTextPlain, rendered.Text)
		if rendered.HTML != "" {
			m.AddAlternativeString(mail.TypeTextHTML, rendered.HTML)
		}
	default:
		m.SetBodyString(mail.TypeTextHTML, rendered.HTML)
	}
	return m, nil
}

func (n *Notifier) SendSMS(context.Context, notification.SMSRequest) (*notification.Receipt, error) {
	return nil, dispatch.NotSupported(ProviderName, "sms")
}

func (n *Notifier) SendPush(context.Context, notification.PushRequest) (*notification.Receipt, error) {
	return nil, dispatch.NotSupported(ProviderName, "push")
}

func tlsPolicyFromEncryption(enc string) mail.TLSPolicy {
	switch enc {
	case "ssl_tls":
		return mail.TLSMandatory
	case "starttls":
		return mail.TLSOpportunistic
	default:
		return mail.NoTLS
	}
}

var _ dispatch.Notifier = (*Notifier)(nil)
