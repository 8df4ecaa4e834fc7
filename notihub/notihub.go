// Package notihub selects and builds a provider notifier. Every notifier it
// returns implements dispatch.Notifier, so call sites do not change when the
// provider does.
package notihub

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tinywideclouds/go-notihub/notihub/config"
	"github.com/tinywideclouds/go-notihub/pkg/dispatch"
	"github.com/tinywideclouds/go-notihub/pkg/platform/amazon"
	"github.com/tinywideclouds/go-notihub/pkg/platform/apns"
	"github.com/tinywideclouds/go-notihub/pkg/platform/fcm"
	"github.com/tinywideclouds/go-notihub/pkg/platform/resend"
	"github.com/tinywideclouds/go-notihub/pkg/platform/shoutrrr"
	"github.com/tinywideclouds/go-notihub/pkg/platform/smtp"
	"github.com/tinywideclouds/go-notihub/pkg/platform/twilio"
	"github.com/tinywideclouds/go-notihub/pkg/platform/web"
	"github.com/tinywideclouds/go-notihub/pkg/templating"
)

// Provider names a notification backend.
type Provider string

const (
	ProviderAWS      Provider = amazon.ProviderName
	ProviderTwilio   Provider = twilio.ProviderName
	ProviderFCM      Provider = fcm.ProviderName
	ProviderAPNS     Provider = apns.ProviderName
	ProviderWebPush  Provider = web.ProviderName
	ProviderResend   Provider = resend.ProviderName
	ProviderSMTP     Provider = smtp.ProviderName
	ProviderShoutrrr Provider = shoutrrr.ProviderName
)

// Providers lists every supported provider.
func Providers() []Provider {
	return []Provider{
		ProviderAWS, ProviderTwilio, ProviderFCM, ProviderAPNS,
		ProviderWebPush, ProviderResend, ProviderSMTP, ProviderShoutrrr,
	}
}

// NotifierClient is a stateless factory. Credential validation is left to
// each adapter's constructor.
type NotifierClient struct{}

// GetAWSNotifier builds the Pinpoint, SNS and SES notifier.
func (NotifierClient) GetAWSNotifier(ctx context.Context, creds amazon.Credentials, logger *slog.Logger) (*amazon.Notifier, error) {
	return amazon.New(ctx, creds, logger)
}

// GetTwilioNotifier builds the SMS-only Twilio notifier.
func (NotifierClient) GetTwilioNotifier(creds twilio.Credentials, logger *slog.Logger) (*twilio.Notifier, error) {
	return twilio.New(creds, logger)
}

// GetFCMNotifier builds the push-only Firebase Cloud Messaging notifier.
func (NotifierClient) GetFCMNotifier(ctx context.Context, creds fcm.Credentials, logger *slog.Logger) (*fcm.Notifier, error) {
	return fcm.New(ctx, creds, logger)
}

// GetAPNSNotifier builds the push-only APNs notifier with token auth.
func (NotifierClient) GetAPNSNotifier(creds apns.Credentials, logger *slog.Logger) (*apns.Notifier, error) {
	return apns.New(creds, logger)
}

// GetWebPushNotifier builds the push-only VAPID Web Push notifier.
func (NotifierClient) GetWebPushNotifier(creds web.Credentials, logger *slog.Logger) (*web.Notifier, error) {
	return web.New(creds, logger)
}

// GetResendNotifier builds the email-only Resend notifier over templates.
func (NotifierClient) GetResendNotifier(creds resend.Credentials, templates *templating.Set, logger *slog.Logger) (*resend.Notifier, error) {
	return resend.New(creds, templates, logger)
}

// GetSMTPNotifier builds the email-only SMTP notifier over templates.
func (NotifierClient) GetSMTPNotifier(creds smtp.Credentials, templates *templating.Set, logger *slog.Logger) (*smtp.Notifier, error) {
	return smtp.New(creds, templates, logger)
}

// GetShoutrrrNotifier builds the push-only notifier for shoutrrr service URLs.
func (NotifierClient) GetShoutrrrNotifier(creds shoutrrr.Credentials, logger *slog.Logger) (*shoutrrr.Notifier, error) {
	return shoutrrr.New(creds, logger)
}

// AWSCredentials picks static credentials when a key pair is configured and
// the ambient chain otherwise.
func AWSCredentials(cfg config.AWSConfig) amazon.Credentials {
	if cfg.Static() {
		creds := amazon.StaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.Region)
		creds.SessionToken = cfg.SessionToken
		return creds
	}
	return amazon.AmbientCredentials(cfg.Region)
}

// Get builds the notifier for provider from the matching config section.
func (c NotifierClient) Get(ctx context.Context, provider Provider, cfg *config.Config, logger *slog.Logger) (dispatch.Notifier, error) {
	switch provider {
	case ProviderAWS:
		return wrap(c.GetAWSNotifier(ctx, AWSCredentials(cfg.AWS), logger))
	case ProviderTwilio:
		return wrap(c.GetTwilioNotifier(twilio.Credentials{
			AccountSID:  cfg.Twilio.AccountSID,
			AuthToken:   cfg.Twilio.AuthToken,
			PhoneNumber: cfg.Twilio.PhoneNumber,
		}, logger))
	case ProviderFCM:
		return wrap(c.GetFCMNotifier(ctx, fcm.Credentials{
			ProjectID:       cfg.FCM.ProjectID,
			CredentialsFile: cfg.FCM.CredentialsFile,
		}, logger))
	case ProviderAPNS:
		key, err := cfg.APNS.KeyContent()
		if err != nil {
			return nil, err
		}
		return wrap(c.GetAPNSNotifier(apns.Credentials{
			KeyID:        cfg.APNS.KeyID,
			TeamID:       cfg.APNS.TeamID,
			BundleID:     cfg.APNS.BundleID,
			P8KeyContent: key,
			Production:   cfg.APNS.Production,
		}, logger))
	case ProviderWebPush:
		return wrap(c.GetWebPushNotifier(web.Credentials{
			PublicKey:       cfg.Vapid.PublicKey,
			PrivateKey:      cfg.Vapid.PrivateKey,
			SubscriberEmail: cfg.Vapid.SubscriberEmail,
		}, logger))
	case ProviderResend:
		templates, err := templating.NewSet(cfg.EmailTemplates)
		if err != nil {
			return nil, err
		}
		return wrap(c.GetResendNotifier(resend.Credentials{
			APIKey: cfg.Resend.APIKey,
			From:   cfg.Resend.From,
		}, templates, logger))
	case ProviderSMTP:
		templates, err := templating.NewSet(cfg.EmailTemplates)
		if err != nil {
			return nil, err
		}
		return wrap(c.GetSMTPNotifier(smtp.Credentials{
			Host:       cfg.SMTP.Host,
			Port:       cfg.SMTP.Port,
			Username:   cfg.SMTP.Username,
			Password:   cfg.SMTP.Password,
			Encryption: cfg.SMTP.Encryption,
			From:       cfg.SMTP.From,
		}, templates, logger))
	case ProviderShoutrrr:
		return wrap(c.GetShoutrrrNotifier(shoutrrr.Credentials{
			URLs:    cfg.Shoutrrr.URLs,
			Timeout: cfg.Shoutrrr.Timeout,
		}, logger))
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

// wrap keeps a nil concrete pointer from becoming a non-nil interface.
func wrap[T dispatch.Notifier](n T, err error) (dispatch.Notifier, error) {
	if err != nil {
		return nil, err
	}
	return n, nil
}
