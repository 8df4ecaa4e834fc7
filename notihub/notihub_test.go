package notihub_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-notihub/notihub"
	"github.com/tinywideclouds/go-notihub/notihub/config"
	"github.com/tinywideclouds/go-notihub/pkg/dispatch"
	"github.com/tinywideclouds/go-notihub/pkg/notification"
	"github.com/tinywideclouds/go-notihub/pkg/platform/amazon"
	"github.com/tinywideclouds/go-notihub/pkg/platform/twilio"
	"github.com/tinywideclouds/go-notihub/pkg/templating"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newP8Key(t *testing.T) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func TestNotifierClient_Get(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	client := notihub.NotifierClient{}

	cfg := &config.Config{
		AWS:    config.AWSConfig{Region: "eu-west-1"},
		Twilio: config.TwilioConfig{AccountSID: "AC1", AuthToken: "tok", PhoneNumber: "+15550000000"},
		APNS: config.APNSConfig{
			KeyID:    "KEY123",
			TeamID:   "TEAM123",
			BundleID: "com.example.app",
			P8Key:    newP8Key(t),
		},
		Vapid:    config.VapidConfig{PublicKey: "pub", PrivateKey: "priv", SubscriberEmail: "ops@example.com"},
		Resend:   config.ResendConfig{APIKey: "re_key", From: "noreply@example.com"},
		SMTP:     config.SMTPConfig{Host: "smtp.example.com", Port: 587, Encryption: "starttls"},
		Shoutrrr: config.ShoutrrrConfig{URLs: []string{"logger://"}},
		EmailTemplates: map[string]templating.Template{
			"welcome": {Subject: "Hi", Text: "Hello"},
		},
	}

	// FCM is left out: building it resolves Google credentials from the host.
	for _, provider := range []notihub.Provider{
		notihub.ProviderAWS,
		notihub.ProviderTwilio,
		notihub.ProviderAPNS,
		notihub.ProviderWebPush,
		notihub.ProviderResend,
		notihub.ProviderSMTP,
		notihub.ProviderShoutrrr,
	} {
		t.Run(string(provider), func(t *testing.T) {
			n, err := client.Get(ctx, provider, cfg, logger)
			require.NoError(t, err)
			require.NotNil(t, n)
		})
	}

	t.Run("Unknown provider", func(t *testing.T) {
		_, err := client.Get(ctx, "carrier-pigeon", cfg, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "carrier-pigeon")
	})

	t.Run("Adapter validation surfaces unchanged", func(t *testing.T) {
		n, err := client.Get(ctx, notihub.ProviderTwilio, &config.Config{}, logger)
		assert.ErrorIs(t, err, dispatch.ErrValidation)
		assert.Nil(t, n)
	})

	t.Run("Bad email template fails the build", func(t *testing.T) {
		bad := *cfg
		bad.EmailTemplates = map[string]templating.Template{"broken": {Text: "{{"}}
		_, err := client.Get(ctx, notihub.ProviderSMTP, &bad, logger)
		assert.Error(t, err)
	})
}

func TestNotifierClient_UnsupportedChannel(t *testing.T) {
	n, err := notihub.NotifierClient{}.GetTwilioNotifier(
		twilio.Credentials{AccountSID: "AC1", AuthToken: "tok"}, newTestLogger(),
	)
	require.NoError(t, err)

	var notifier dispatch.Notifier = n
	_, err = notifier.SendPush(context.Background(), notification.PushRequest{TargetIDs: []string{"x"}})
	assert.ErrorIs(t, err, dispatch.ErrNotSupported)
}

func TestAWSCredentials(t *testing.T) {
	ambient := notihub.AWSCredentials(config.AWSConfig{Region: "eu-west-1"})
	assert.Equal(t, amazon.CredentialsAmbient, ambient.Source)
	assert.Equal(t, "eu-west-1", ambient.Region)

	static := notihub.AWSCredentials(config.AWSConfig{AccessKeyID: "AKIA", SecretAccessKey: "s"})
	assert.Equal(t, amazon.CredentialsStatic, static.Source)
	assert.Equal(t, "AKIA", static.AccessKeyID)
	assert.Empty(t, static.SessionToken)

	temporary := notihub.AWSCredentials(config.AWSConfig{
		AccessKeyID:     "ASIAEXAMPLE",
		SecretAccessKey: "secret",
		SessionToken:    "session-token",
	})
	assert.Equal(t, amazon.CredentialsStatic, temporary.Source)
	assert.Equal(t, "session-token", temporary.SessionToken)
}

func TestProviders(t *testing.T) {
	assert.Len(t, notihub.Providers(), 8)
	assert.Contains(t, notihub.Providers(), notihub.Provider("aws"))
}
