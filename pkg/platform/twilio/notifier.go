// Package twilio provides an SMS-only notifier backed by the Twilio REST API.
package twilio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tinywideclouds/go-notihub/pkg/dispatch"
	"github.com/tinywideclouds/go-notihub/pkg/notification"
	twiliogo "github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

const ProviderName = "twilio"

// MessageCreator is the part of the Twilio API service we call.
// *twilioApi.ApiService satisfies it.
type MessageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Credentials for the Twilio account. PhoneNumber is the origin number and
// is only checked when an SMS is sent.
type Credentials struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
}

func (c Credentials) validate() error {
	if c.AccountSID == "" {
		return dispatch.Invalid("account_sid", "account SID must be provided")
	}
	if c.AuthToken == "" {
		return dispatch.Invalid("auth_token", "auth token must be provided")
	}
	return nil
}

// Notifier sends SMS through the Twilio Messages API.
type Notifier struct {
	client MessageCreator
	from   string
	logger *slog.Logger
}

// New validates the credentials and builds a REST client.
func New(creds Credentials, logger *slog.Logger) (*Notifier, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	client := twiliogo.NewRestClientWithParams(twiliogo.ClientParams{
		Username: creds.AccountSID,
		Password: creds.AuthToken,
	})
	return NewWithClient(client.Api, creds.PhoneNumber, logger), nil
}

// NewWithClient uses an existing message creator and origin number.
func NewWithClient(client MessageCreator, from string, logger *slog.Logger) *Notifier {
	return &Notifier{
		client: client,
		from:   from,
		logger: logger.With("component", "TwilioNotifier"),
	}
}

// SendSMS sends one message from the configured origin number.
func (n *Notifier) SendSMS(_ context.Context, req notification.SMSRequest) (*notification.Receipt, error) {
	if n.from == "" {
		return nil, dispatch.Invalid("phone_number", "origin phone number must be provided")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(req.PhoneNumber)
	params.SetFrom(n.from)
	params.SetBody(req.Message)

	msg, err := n.client.CreateMessage(params)
	if err != nil {
		return nil, fmt.Errorf("twilio create message: %w", err)
	}

	var sid string
	if msg.Sid != nil {
		sid = *msg.Sid
	}
	n.logger.Debug("Twilio SMS sent", "sid", sid)
	return &notification.Receipt{Provider: ProviderName, MessageIDs: []string{sid}, Raw: msg}, nil
}

func (n *Notifier) SendEmail(context.Context, notification.EmailRequest) (*notification.Receipt, error) {
	return nil, dispatch.NotSupported(ProviderName, "email")
}

func (n *Notifier) SendPush(context.Context, notification.PushRequest) (*notification.Receipt, error) {
	return nil, dispatch.NotSupported(ProviderName, "push")
}

var _ dispatch.Notifier = (*Notifier)(nil)
