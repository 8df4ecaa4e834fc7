package amazon

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pinpoint/types"
	"github.com/tinywideclouds/go-notihub/pkg/notification"
)

// APNSMessage is the iOS encoding of a push request.
type APNSMessage struct {
	Action     notification.Action `json:"Action"`
	RawContent string              `json:"RawContent"`
	URL        string              `json:"Url,omitempty"`
}

// GCMMessage is the Android encoding of a push request.
type GCMMessage struct {
	Action     notification.Action `json:"Action"`
	RawContent string              `json:"RawContent"`
	URL        string              `json:"Url,omitempty"`
}

// DefaultMessage is the fallback encoding for channels without rich payloads.
type DefaultMessage struct {
	Action notification.Action `json:"Action"`
	Title  string              `json:"Title"`
	Body   string              `json:"Body"`
	URL    string              `json:"Url,omitempty"`
}

// MessageConfiguration holds the three channel encodings of one request.
type MessageConfiguration struct {
	APNSMessage                    APNSMessage    `json:"APNSMessage"`
	GCMMessage                     GCMMessage     `json:"GCMMessage"`
	DefaultPushNotificationMessage DefaultMessage `json:"DefaultPushNotificationMessage"`
}

// EndpointConfig is the per-endpoint override block. Overrides are not used,
// so it is always empty.
type EndpointConfig struct{}

// MessageRequest is the envelope submitted to Pinpoint in a single call.
type MessageRequest struct {
	Endpoints            map[string]EndpointConfig `json:"Endpoints"`
	MessageConfiguration MessageConfiguration      `json:"MessageConfiguration"`
}

// BuildMessageRequest turns one push request into the tri-channel envelope.
// All three messages share the same action and the same enriched custom data.
func BuildMessageRequest(req notification.PushRequest) (MessageRequest, error) {
	action := req.Action()
	custom := req.EnrichedCustomData()

	apnsMsg, err := buildAPNSMessage(req, action, custom)
	if err != nil {
		return MessageRequest{}, err
	}
	gcmMsg, err := buildGCMMessage(req, action, custom)
	if err != nil {
		return MessageRequest{}, err
	}

	endpoints := make(map[string]EndpointConfig, len(req.TargetIDs))
	for _, id := range req.TargetIDs {
		endpoints[id] = EndpointConfig{}
	}

	return MessageRequest{
		Endpoints: endpoints,
		MessageConfiguration: MessageConfiguration{
			APNSMessage:                    apnsMsg,
			GCMMessage:                     gcmMsg,
			DefaultPushNotificationMessage: buildDefaultMessage(req, action),
		},
	}, nil
}

func buildAPNSMessage(req notification.PushRequest, action notification.Action, custom map[string]any) (APNSMessage, error) {
	raw, err := rawJSON(apnsPayload(req, custom))
	if err != nil {
		return APNSMessage{}, fmt.Errorf("failed to encode APNs payload: %w", err)
	}
	return APNSMessage{Action: action, RawContent: raw, URL: req.DeepLinkURL}, nil
}

func buildGCMMessage(req notification.PushRequest, action notification.Action, custom map[string]any) (GCMMessage, error) {
	raw, err := rawJSON(gcmPayload(req, custom))
	if err != nil {
		return GCMMessage{}, fmt.Errorf("failed to encode GCM payload: %w", err)
	}
	return GCMMessage{Action: action, RawContent: raw, URL: req.DeepLinkURL}, nil
}

func buildDefaultMessage(req notification.PushRequest, action notification.Action) DefaultMessage {
	return DefaultMessage{Action: action, Title: req.Title, Body: req.Body, URL: req.DeepLinkURL}
}

// apnsPayload builds the APNs root object: custom keys sit beside "aps", not inside it.
func apnsPayload(req notification.PushRequest, custom map[string]any) map[string]any {
	aps := map[string]any{"sound": "default"}
	if req.Silent {
		aps["content-available"] = 1
	} else {
		aps["alert"] = map[string]any{"title": req.Title, "body": req.Body}
	}
	// Tells the app's notification service extension to fetch the image before display.
	if req.ImageURL != "" {
		aps["mutable-content"] = 1
	}

	root := make(map[string]any, len(custom)+1)
	for k, v := range custom {
		root[k] = v
	}
	root["aps"] = aps
	return root
}

func gcmPayload(req notification.PushRequest, custom map[string]any) map[string]any {
	data := make(map[string]any, len(custom)+2)
	for k, v := range custom {
		data[k] = v
	}
	data["title"] = req.Title
	data["body"] = req.Body

	payload := map[string]any{"data": data}
	if req.Silent {
		payload["content_available"] = 1
	} else {
		n := map[string]any{"title": req.Title, "body": req.Body}
		if req.ImageURL != "" {
			n["image"] = req.ImageURL
		}
		payload["notification"] = n
	}
	if req.Priority != "" {
		payload["priority"] = req.Priority
	}
	if req.TimeToLive != nil {
		payload["time_to_live"] = *req.TimeToLive
	}
	return payload
}

// snsMessage encodes a push request for an SNS publish with MessageStructure "json".
func snsMessage(req notification.PushRequest) (string, error) {
	custom := req.EnrichedCustomData()
	apnsRaw, err := rawJSON(apnsPayload(req, custom))
	if err != nil {
		return "", fmt.Errorf("failed to encode APNs payload: %w", err)
	}
	gcmRaw, err := rawJSON(gcmPayload(req, custom))
	if err != nil {
		return "", fmt.Errorf("failed to encode GCM payload: %w", err)
	}
	return rawJSON(map[string]string{
		"default":      req.Body,
		"APNS":         apnsRaw,
		"APNS_SANDBOX": apnsRaw,
		"GCM":          gcmRaw,
	})
}

func rawJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// sdk converts the envelope into the Pinpoint SDK request type.
func (r MessageRequest) sdk() *types.MessageRequest {
	endpoints := make(map[string]types.EndpointSendConfiguration, len(r.Endpoints))
	for id := range r.Endpoints {
		endpoints[id] = types.EndpointSendConfiguration{}
	}

	cfg := r.MessageConfiguration
	return &types.MessageRequest{
		Endpoints: endpoints,
		MessageConfiguration: &types.DirectMessageConfiguration{
			APNSMessage: &types.APNSMessage{
				Action:     types.Action(cfg.APNSMessage.Action),
				RawContent: aws.String(cfg.APNSMessage.RawContent),
				Url:        optional(cfg.APNSMessage.URL),
			},
			GCMMessage: &types.GCMMessage{
				Action:     types.Action(cfg.GCMMessage.Action),
				RawContent: aws.String(cfg.GCMMessage.RawContent),
				Url:        optional(cfg.GCMMessage.URL),
			},
			DefaultPushNotificationMessage: &types.DefaultPushNotificationMessage{
				Action: types.Action(cfg.DefaultPushNotificationMessage.Action),
				Title:  aws.String(cfg.DefaultPushNotificationMessage.Title),
				Body:   aws.String(cfg.DefaultPushNotificationMessage.Body),
				Url:    optional(cfg.DefaultPushNotificationMessage.URL),
			},
		},
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}
