// Package notification contains the public domain models shared by every
// notifier: the per-channel request shapes and the receipt returned on success.
package notification

// SMSRequest is a single text message to one phone number.
type SMSRequest struct {
	PhoneNumber string
	Message     string
}

// EmailRequest sends a stored or locally registered template to a list of
// recipients. Data is substituted into the template.
type EmailRequest struct {
	Template   string
	Data       map[string]any
	Recipients []string
	Sender     string
	// Subject overrides the template's subject when non-empty.
	Subject string
	CC      []string
	BCC     []string
}

// PushRequest is a push notification to one or more opaque endpoint
// identifiers (device tokens, endpoint ids, ARNs or subscriptions, depending
// on the provider).
type PushRequest struct {
	TargetIDs   []string
	Title       string
	Body        string
	DeepLinkURL string
	ImageURL    string
	CustomData  map[string]any
	// Silent sends a background wake push with no visible alert.
	Silent bool
	// TimeToLive is in seconds. Nil leaves the provider default.
	TimeToLive *int
	Priority   string
}

// Action tells the client app how to route a tapped notification.
type Action string

const (
	ActionDeepLink Action = "DEEP_LINK"
	ActionOpenApp  Action = "OPEN_APP"
)

// Custom data keys that are always present after enrichment.
const (
	KeyDeepLink = "deeplink"
	KeyImageURL = "image_url"
)

// Action returns DEEP_LINK when a deep link is set, OPEN_APP otherwise.
func (r PushRequest) Action() Action {
	if r.DeepLinkURL != "" {
		return ActionDeepLink
	}
	return ActionOpenApp
}

// EnrichedCustomData is shorthand for EnrichCustomData on the request's own fields.
func (r PushRequest) EnrichedCustomData() map[string]any {
	return EnrichCustomData(r.CustomData, r.DeepLinkURL, r.ImageURL)
}

// EnrichCustomData returns a new map holding every key of custom plus the
// deeplink and image_url keys. Absent URLs are stored as nil so consumers
// always see the same schema. custom is never modified.
func EnrichCustomData(custom map[string]any, deepLinkURL, imageURL string) map[string]any {
	out := make(map[string]any, len(custom)+2)
	for k, v := range custom {
		out[k] = v
	}
	out[KeyDeepLink] = nilIfEmpty(deepLinkURL)
	out[KeyImageURL] = nilIfEmpty(imageURL)
	return out
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Receipt is the result of a successful send. Raw holds the provider's
// response unchanged.
type Receipt struct {
	Provider   string   `json:"provider"`
	MessageIDs []string `json:"message_ids,omitempty"`
	Raw        any      `json:"raw,omitempty"`
}

// MessageID returns the first message id, or "" when the provider returned none.
func (r *Receipt) MessageID() string {
	if r == nil || len(r.MessageIDs) == 0 {
		return ""
	}
	return r.MessageIDs[0]
}
