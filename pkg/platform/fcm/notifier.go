// Package fcm provides a push-only notifier backed by Firebase Cloud Messaging.
package fcm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/tinywideclouds/go-notihub/pkg/dispatch"
	"github.com/tinywideclouds/go-notihub/pkg/notification"
	"google.golang.org/api/option"
)

const ProviderName = "fcm"

// MessagingClient defines the subset of the Firebase Messaging API we use.
// *messaging.Client satisfies it.
type MessagingClient interface {
	SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Credentials selects the Firebase project. Both fields are optional: an
// empty CredentialsFile falls back to Application Default Credentials.
type Credentials struct {
	ProjectID       string
	CredentialsFile string
}

// Notifier pushes to Android, Apple and web clients through FCM.
type Notifier struct {
	client MessagingClient
	logger *slog.Logger
}

// New initializes a Firebase app and its messaging client.
func New(ctx context.Context, creds Credentials, logger *slog.Logger) (*Notifier, error) {
	var opts []option.ClientOption
	if creds.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(creds.CredentialsFile))
	}
	var fbCfg *firebase.Config
	if creds.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: creds.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}
	return NewWithClient(client, logger), nil
}

// NewWithClient uses an existing messaging client.
func NewWithClient(client MessagingClient, logger *slog.Logger) *Notifier {
	return &Notifier{
		client: client,
		logger: logger.With("component", "FCMNotifier"),
	}
}

// SendPush sends the request to every target token in one multicast call.
// Tokens that fail are logged; the call only fails when the whole batch
// fails or no token was accepted.
func (n *Notifier) SendPush(ctx context.Context, req notification.PushRequest) (*notification.Receipt, error) {
	if len(req.TargetIDs) == 0 {
		return nil, dispatch.Invalid("target_ids", "at least one device token must be provided")
	}

	msg, err := BuildMulticastMessage(req)
	if err != nil {
		return nil, err
	}

	br, err := n.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("fcm transport failed: %w", err)
	}

	ids := make([]string, 0, br.SuccessCount)
	var firstErr error
	for idx, resp := range br.Responses {
		if resp.Success {
			ids = append(ids, resp.MessageID)
			continue
		}
		token := req.TargetIDs[idx]
		tokenErr := fmt.Errorf("fcm token %s: %w", token, resp.Error)
		if messaging.IsRegistrationTokenNotRegistered(resp.Error) {
			tokenErr = fmt.Errorf("fcm token %s: %w: %w", token, dispatch.ErrNotFound, resp.Error)
		}
		n.logger.Warn("FCM rejected token", "token", token, "err", resp.Error)
		if firstErr == nil {
			firstErr = tokenErr
		}
	}

	if len(ids) == 0 && firstErr != nil {
		return nil, firstErr
	}

	n.logger.Debug("FCM multicast sent", "success", br.SuccessCount, "failure", br.FailureCount)
	return &notification.Receipt{Provider: ProviderName, MessageIDs: ids, Raw: br}, nil
}

func (n *Notifier) SendSMS(context.Context, notification.SMSRequest) (*notification.Receipt, error) {
	return nil, dispatch.NotSupported(ProviderName, "sms")
}

func (n *Notifier) SendEmail(context.Context, notification.EmailRequest) (*notification.Receipt, error) {
	return nil, dispatch.NotSupported(ProviderName, "email")
}

// BuildMulticastMessage maps a push request onto an FCM multicast message.
// Silent requests carry no notification block and wake the app through
// content-available on iOS.
func BuildMulticastMessage(req notification.PushRequest) (*messaging.MulticastMessage, error) {
	data, err := stringData(req.EnrichedCustomData())
	if err != nil {
		return nil, err
	}
	data["title"] = req.Title
	data["body"] = req.Body

	android := &messaging.AndroidConfig{Priority: req.Priority}
	if req.TimeToLive != nil {
		ttl := time.Duration(*req.TimeToLive) * time.Second
		android.TTL = &ttl
	}

	aps := &messaging.Aps{
		Sound:          "default",
		MutableContent: req.ImageURL != "",
	}
	apnsCfg := &messaging.APNSConfig{Payload: &messaging.APNSPayload{Aps: aps}}

	msg := &messaging.MulticastMessage{
		Tokens:  req.TargetIDs,
		Data:    data,
		Android: android,
		APNS:    apnsCfg,
	}

	if req.Silent {
		aps.ContentAvailable = true
		apnsCfg.Headers = map[string]string{
			"apns-push-type": "background",
			"apns-priority":  "5",
		}
		return msg, nil
	}

	aps.Alert = &messaging.ApsAlert{Title: req.Title, Body: req.Body}
	msg.Notification = &messaging.Notification{
		Title:    req.Title,
		Body:     req.Body,
		ImageURL: req.ImageURL,
	}
	if req.ImageURL != "" {
		apnsCfg.FCMOptions = &messaging.APNSFCMOptions{ImageURL: req.ImageURL}
	}
	return msg, nil
}

// stringData flattens custom data into FCM's string-only data map. Strings
// pass through, nil becomes "", anything else is JSON encoded.
func stringData(custom map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(custom)+2)
	for k, v := range custom {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		default:
			b, err := json.Marshal(val)
			if err != nil {
				return nil, fmt.Errorf("failed to encode data key %q: %w", k, err)
			}
			out[k] = string(b)
		}
	}
	return out, nil
}

var _ dispatch.Notifier = (*Notifier)(nil)
