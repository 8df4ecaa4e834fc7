// Package shoutrrr provides a push-only notifier for the services shoutrrr
// supports (ntfy, gotify, pushover, telegram, discord, ...), addressed by
// service URL.
package shoutrrr

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"slices"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/tinywideclouds/go-notihub/pkg/dispatch"
	"github.com/tinywideclouds/go-notihub/pkg/notification"
)

const ProviderName = "shoutrrr"

// Sender is satisfied by *router.ServiceRouter.
type Sender interface {
	Send(message string, params *stypes.Params) []error
}

// Credentials lists the default service URLs. Service URLs embed their own
// tokens, so there is nothing else to configure.
type Credentials struct {
	URLs    []string
	Timeout time.Duration
}

// Notifier posts messages to chat and push services by URL.
type Notifier struct {
	sender  Sender
	timeout time.Duration
	logger  *slog.Logger
}

// New builds a router over the configured URLs, which validates them.
func New(creds Credentials, logger *slog.Logger) (*Notifier, error) {
	if len(creds.URLs) == 0 {
		return nil, dispatch.Invalid("urls", "at least one service URL must be provided")
	}
	sender, err := newRouter(creds.URLs, creds.Timeout)
	if err != nil {
		return nil, err
	}
	return &Notifier{
		sender:  sender,
		timeout: creds.Timeout,
		logger:  logger.With("component", "ShoutrrrNotifier"),
	}, nil
}

// NewWithSender uses an existing sender for the configured services.
func NewWithSender(sender Sender, logger *slog.Logger) *Notifier {
	return &Notifier{sender: sender, logger: logger.With("component", "ShoutrrrNotifier")}
}

func newRouter(urls []string, timeout time.Duration) (Sender, error) {
	router, err := shoutrrr.CreateSender(slices.Clone(urls)...)
	if err != nil {
		return nil, dispatch.Invalid("urls", fmt.Sprintf("invalid service URL: %v", err))
	}
	if timeout > 0 {
		router.Timeout = timeout
	}
	router.SetLogger(log.New(io.Discard, "", 0))
	return router, nil
}

// SendPush sends the title and body to every service. TargetIDs, when set,
// are service URLs that replace the configured ones for this request.
// Silent pushes have no meaning for chat-style services and are rejected.
func (n *Notifier) SendPush(_ context.Context, req notification.PushRequest) (*notification.Receipt, error) {
	if req.Silent {
		return nil, dispatch.Invalid("silent", "silent pushes are not supported by shoutrrr services")
	}

	sender := n.sender
	if len(req.TargetIDs) > 0 {
		var err error
		if sender, err = newRouter(req.TargetIDs, n.timeout); err != nil {
			return nil, err
		}
	}

	params := stypes.Params{}
	if req.Title != "" {
		params.SetTitle(req.Title)
	}

	if err := firstError(sender.Send(Message(req), &params)); err != nil {
		return nil, fmt.Errorf("shoutrrr send failed: %w", err)
	}

	n.logger.Debug("Shoutrrr message sent", "title", req.Title)
	return &notification.Receipt{Provider: ProviderName}, nil
}

// Message is the text body: the push body followed by the deep link and
// image URL when present, since most services only take plain text.
func Message(req notification.PushRequest) string {
	msg := req.Body
	for _, link := range []string{req.DeepLinkURL, req.ImageURL} {
		if link != "" {
			msg += "\n" + link
		}
	}
	return msg
}

func firstError(errs []error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func (n *Notifier) SendSMS(context.Context, notification.SMSRequest) (*notification.Receipt, error) {
	return nil, dispatch.NotSupported(ProviderName, "sms")
}

func (n *Notifier) SendEmail(context.Context, notification.EmailRequest) (*notification.Receipt, error) {
	return nil, dispatch.NotSupported(ProviderName, "email")
}

var _ dispatch.Notifier = (*Notifier)(nil)
