// Package web provides a push-only notifier for browser Web Push (VAPID).
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/tinywideclouds/go-notihub/pkg/dispatch"
	"github.com/tinywideclouds/go-notihub/pkg/notification"
)

const ProviderName = "webpush"

// DefaultTTL is how long, in seconds, the push service keeps an undelivered
// message when the request sets no TTL.
const DefaultTTL = 60

// Credentials are the VAPID key pair and the contact sent to push services.
type Credentials struct {
	PublicKey       string
	PrivateKey      string
	SubscriberEmail string
}

func (c Credentials) validate() error {
	if c.PublicKey == "" || c.PrivateKey == "" {
		return dispatch.Invalid("vapid", "VAPID public and private keys must be provided")
	}
	if c.SubscriberEmail == "" {
		return dispatch.Invalid("vapid_subscriber", "VAPID subscriber must be provided")
	}
	return nil
}

// Notifier sends encrypted Web Push messages signed with VAPID.
type Notifier struct {
	creds      Credentials
	httpClient *http.Client
	logger     *slog.Logger
}

// New sends through a default http.Client.
func New(creds Credentials, logger *slog.Logger) (*Notifier, error) {
	return NewWithHTTPClient(creds, &http.Client{}, logger)
}

// NewWithHTTPClient sends through the given client instead of a default one.
func NewWithHTTPClient(creds Credentials, client *http.Client, logger *slog.Logger) (*Notifier, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	return &Notifier{
		creds:      creds,
		httpClient: client,
		logger:     logger.With("component", "WebPushNotifier"),
	}, nil
}

// SendPush delivers to each target, where every target id is a JSON encoded
// browser PushSubscription. A 404 or 410 from the push service means the
// subscription is gone and wraps dispatch.ErrNotFound. The first failure
// stops the send.
func (n *Notifier) SendPush(ctx context.Context, req notification.PushRequest) (*notification.Receipt, error) {
	subs := make([]*webpush.Subscription, 0, len(req.TargetIDs))
	for i, target := range req.TargetIDs {
		sub, err := ParseSubscription(target)
		if err != nil {
			return nil, dispatch.Invalid(fmt.Sprintf("target_ids[%d]", i), err.Error())
		}
		subs = append(subs, sub)
	}

	payload, err := BuildPayload(req)
	if err != nil {
		return nil, err
	}

	opts := &webpush.Options{
		Subscriber:      n.creds.SubscriberEmail,
		VAPIDPublicKey:  n.creds.PublicKey,
		VAPIDPrivateKey: n.creds.PrivateKey,
		TTL:             DefaultTTL,
		Urgency:         urgency(req),
		HTTPClient:      n.httpClient,
	}
	if req.TimeToLive != nil {
		opts.TTL = *req.TimeToLive
	}

	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		id, err := n.send(ctx, payload, sub, opts)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	n.logger.Debug("Web push sent", "count", len(ids))
	return &notification.Receipt{Provider: ProviderName, MessageIDs: ids}, nil
}

func (n *Notifier) send(ctx context.Context, payload []byte, sub *webpush.Subscription, opts *webpush.Options) (string, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, sub, opts)
	if err != nil {
		return "", fmt.Errorf("web push transport failed for %s: %w", sub.Endpoint, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// Push services return the message resource in Location.
		return resp.Header.Get("Location"), nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		n.logger.Warn("Web push subscription expired", "endpoint", sub.Endpoint, "status", resp.StatusCode)
		return "", fmt.Errorf("web push subscription %s: status %d: %w", sub.Endpoint, resp.StatusCode, dispatch.ErrNotFound)
	default:
		n.logger.Warn("Web push rejected", "endpoint", sub.Endpoint, "status", resp.StatusCode)
		return "", fmt.Errorf("web push rejected for %s: status %d", sub.Endpoint, resp.StatusCode)
	}
}

func (n *Notifier) SendSMS(context.Context, notification.SMSRequest) (*notification.Receipt, error) {
	return nil, dispatch.NotSupported(ProviderName, "sms")
}

func (n *Notifier) SendEmail(context.Context, notification.EmailRequest) (*notification.Receipt, error) {
	return nil, dispatch.NotSupported(ProviderName, "email")
}

// ParseSubscription decodes a browser PushSubscription JSON object.
func ParseSubscription(target string) (*webpush.Subscription, error) {
	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(target), &sub); err != nil {
		return nil, fmt.Errorf("invalid subscription JSON: %w", err)
	}
	if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return nil, fmt.Errorf("subscription needs endpoint, keys.p256dh and keys.auth")
	}
	return &sub, nil
}

// BuildPayload encodes the message the service worker receives. Silent
// requests carry data only.
func BuildPayload(req notification.PushRequest) ([]byte, error) {
	body := map[string]any{"data": req.EnrichedCustomData()}
	if !req.Silent {
		n := map[string]string{"title": req.Title, "body": req.Body}
		if req.ImageURL != "" {
			n["image"] = req.ImageURL
		}
		body["notification"] = n
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return b, nil
}

func urgency(req notification.PushRequest) webpush.Urgency {
	switch req.Priority {
	case "high":
		return webpush.UrgencyHigh
	case "low":
		return webpush.UrgencyLow
	case "very-low":
		return webpush.UrgencyVeryLow
	}
	if req.Silent {
		return webpush.UrgencyLow
	}
	return webpush.UrgencyNormal
}

var _ dispatch.Notifier = (*Notifier)(nil)
