// Package apns provides a push-only notifier for the Apple Push Notification Service.
package apns

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
	"github.com/tinywideclouds/go-notihub/pkg/dispatch"
	"github.com/tinywideclouds/go-notihub/pkg/notification"
)

const ProviderName = "apns"

// APNSClient defines the subset of the apns2.Client methods we use.
type APNSClient interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// Credentials holds what is needed to sign APNs provider tokens.
type Credentials struct {
	KeyID    string
	TeamID   string
	BundleID string
	// P8KeyContent is the raw content of the .p8 file.
	P8KeyContent string
	// Production selects api.push.apple.com over the sandbox host.
	Production bool
}

func (c Credentials) validate() error {
	switch {
	case c.KeyID == "":
		return dispatch.Invalid("key_id", "APNs key id must be provided")
	case c.TeamID == "":
		return dispatch.Invalid("team_id", "APNs team id must be provided")
	case c.BundleID == "":
		return dispatch.Invalid("bundle_id", "APNs bundle id must be provided")
	case c.P8KeyContent == "":
		return dispatch.Invalid("p8_key", "APNs signing key must be provided")
	}
	return nil
}

// Notifier pushes to Apple devices, one request per token.
type Notifier struct {
	client APNSClient
	topic  string
	logger *slog.Logger
}

// New parses the P8 key immediately so bad credentials fail at construction.
func New(creds Credentials, logger *slog.Logger) (*Notifier, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	authKey, err := token.AuthKeyFromBytes([]byte(creds.P8KeyContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse APNs P8 key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   creds.KeyID,
		TeamID:  creds.TeamID,
	})
	if creds.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}
	return NewWithClient(client, creds.BundleID, logger), nil
}

// NewWithClient uses an existing client. topic is the app bundle id.
func NewWithClient(client APNSClient, topic string, logger *slog.Logger) *Notifier {
	return &Notifier{
		client: client,
		topic:  topic,
		logger: logger.With("component", "APNSNotifier"),
	}
}

// SendPush sends one notification per device token. APNs has no multicast
// endpoint. The first transport error or rejection stops the send.
func (n *Notifier) SendPush(ctx context.Context, req notification.PushRequest) (*notification.Receipt, error) {
	p := BuildPayload(req)

	pushType, priority := apns2.PushTypeAlert, apns2.PriorityHigh
	if req.Silent {
		pushType, priority = apns2.PushTypeBackground, apns2.PriorityLow
	}
	var expiration time.Time
	if req.TimeToLive != nil {
		expiration = time.Now().Add(time.Duration(*req.TimeToLive) * time.Second)
	}

	ids := make([]string, 0, len(req.TargetIDs))
	responses := make([]*apns2.Response, 0, len(req.TargetIDs))
	for _, deviceToken := range req.TargetIDs {
		res, err := n.client.PushWithContext(ctx, &apns2.Notification{
			ApnsID:      uuid.NewString(),
			DeviceToken: deviceToken,
			Topic:       n.topic,
			Expiration:  expiration,
			Priority:    priority,
			PushType:    pushType,
			Payload:     p,
		})
		if err != nil {
			return nil, fmt.Errorf("apns transport failed for %s: %w", deviceToken, err)
		}
		if !res.Sent() {
			n.logger.Warn("APNs rejected notification", "token", deviceToken, "reason", res.Reason, "status", res.StatusCode)
			return nil, rejection(deviceToken, res)
		}
		ids = append(ids, res.ApnsID)
		responses = append(responses, res)
	}

	n.logger.Debug("APNs notifications sent", "count", len(ids))
	return &notification.Receipt{Provider: ProviderName, MessageIDs: ids, Raw: responses}, nil
}

func rejection(deviceToken string, res *apns2.Response) error {
	switch res.Reason {
	case apns2.ReasonBadDeviceToken, apns2.ReasonUnregistered, apns2.ReasonDeviceTokenNotForTopic:
		return fmt.Errorf("apns token %s: %s: %w", deviceToken, res.Reason, dispatch.ErrNotFound)
	default:
		return fmt.Errorf("apns token %s rejected: status %d: %s", deviceToken, res.StatusCode, res.Reason)
	}
}

func (n *Notifier) SendSMS(context.Context, notification.SMSRequest) (*notification.Receipt, error) {
	return nil, dispatch.NotSupported(ProviderName, "sms")
}

func (n *Notifier) SendEmail(context.Context, notification.EmailRequest) (*notification.Receipt, error) {
	return nil, dispatch.NotSupported(ProviderName, "email")
}

// BuildPayload applies the same aps rules as the Pinpoint APNs message:
// custom keys beside aps, alert or content-available, and mutable-content
// when an image is attached.
func BuildPayload(req notification.PushRequest) *payload.Payload {
	p := payload.NewPayload()
	for k, v := range req.EnrichedCustomData() {
		if k == "aps" {
			continue
		}
		p.Custom(k, v)
	}

	p.Sound("default")
	if req.Silent {
		p.ContentAvailable()
	} else {
		p.AlertTitle(req.Title).AlertBody(req.Body)
	}
	if req.ImageURL != "" {
		p.MutableContent()
	}
	return p
}

var _ dispatch.Notifier = (*Notifier)(nil)
