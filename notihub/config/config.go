package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tinywideclouds/go-notihub/pkg/templating"
)

// DefaultProvider is used when neither the YAML file nor NOTIHUB_PROVIDER picks one.
const DefaultProvider = "aws"

type AWSConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	// SessionToken is set alongside temporary key pairs.
	SessionToken string
	Region       string
	// PinpointApplicationID is the default project for Pinpoint operations.
	PinpointApplicationID string
}

// Static reports whether an explicit key pair is configured. Without one the
// SDK's ambient credential chain is used.
func (c AWSConfig) Static() bool {
	return c.AccessKeyID != "" || c.SecretAccessKey != ""
}

type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
}

type FCMConfig struct {
	ProjectID       string
	CredentialsFile string
}

type APNSConfig struct {
	KeyID    string
	TeamID   string
	BundleID string
	// P8Key is the key content. P8KeyFile is read when P8Key is empty.
	P8Key      string
	P8KeyFile  string
	Production bool
}

// KeyContent returns the P8 key, reading P8KeyFile if needed.
func (c APNSConfig) KeyContent() (string, error) {
	if c.P8Key != "" || c.P8KeyFile == "" {
		return c.P8Key, nil
	}
	b, err := os.ReadFile(c.P8KeyFile)
	if err != nil {
		return "", fmt.Errorf("failed to read APNs key file: %w", err)
	}
	return string(b), nil
}

type VapidConfig struct {
	PublicKey       string
	PrivateKey      string
	SubscriberEmail string
}

type ResendConfig struct {
	APIKey string
	From   string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	Encryption string
	From       string
}

type ShoutrrrConfig struct {
	URLs    []string
	Timeout time.Duration
}

// Config defines the *single*, authoritative configuration.
type Config struct {
	Provider string

	AWS      AWSConfig
	Twilio   TwilioConfig
	FCM      FCMConfig
	APNS     APNSConfig
	Vapid    VapidConfig
	Resend   ResendConfig
	SMTP     SMTPConfig
	Shoutrrr ShoutrrrConfig

	EmailTemplates map[string]templating.Template
}

// LoadDotEnv loads KEY=value files into the process environment without
// overwriting variables that are already set. Missing files are skipped.
func LoadDotEnv(logger *slog.Logger, paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debug("No env file found", "path", p)
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
		logger.Debug("Loaded env file", "path", p)
	}
	return nil
}

// UpdateConfigWithEnvOverrides applies environment variables and final validation.
func UpdateConfigWithEnvOverrides(cfg *Config, logger *slog.Logger) (*Config, error) {
	logger.Debug("Applying environment variable overrides...")

	override := func(key string, dst *string) {
		if val := os.Getenv(key); val != "" {
			logger.Debug("Overriding config value", "key", key, "source", "env")
			*dst = val
		}
	}

	override("NOTIHUB_PROVIDER", &cfg.Provider)

	// AWS. AWS_SECRET_KEY is the older name and loses to AWS_SECRET_ACCESS_KEY.
	override("AWS_ACCESS_KEY_ID", &cfg.AWS.AccessKeyID)
	override("AWS_SECRET_KEY", &cfg.AWS.SecretAccessKey)
	override("AWS_SECRET_ACCESS_KEY", &cfg.AWS.SecretAccessKey)
	override("AWS_SESSION_TOKEN", &cfg.AWS.SessionToken)
	override("AWS_REGION", &cfg.AWS.Region)
	override("PINPOINT_APPLICATION_ID", &cfg.AWS.PinpointApplicationID)

	override("TWILIO_ACCOUNT_SID", &cfg.Twilio.AccountSID)
	override("TWILIO_AUTH_TOKEN", &cfg.Twilio.AuthToken)
	override("TWILIO_PHONE_NUMBER", &cfg.Twilio.PhoneNumber)

	override("FCM_PROJECT_ID", &cfg.FCM.ProjectID)
	override("FCM_CREDENTIALS_FILE", &cfg.FCM.CredentialsFile)

	override("APNS_KEY_ID", &cfg.APNS.KeyID)
	override("APNS_TEAM_ID", &cfg.APNS.TeamID)
	override("APNS_BUNDLE_ID", &cfg.APNS.BundleID)
	override("APNS_P8_KEY", &cfg.APNS.P8Key)
	override("APNS_P8_KEY_FILE", &cfg.APNS.P8KeyFile)
	if val := os.Getenv("APNS_PRODUCTION"); val != "" {
		production, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("APNS_PRODUCTION must be a boolean: %w", err)
		}
		logger.Debug("Overriding config value", "key", "APNS_PRODUCTION", "source", "env")
		cfg.APNS.Production = production
	}

	override("VAPID_PUBLIC_KEY", &cfg.Vapid.PublicKey)
	override("VAPID_PRIVATE_KEY", &cfg.Vapid.PrivateKey)
	override("VAPID_SUB_EMAIL", &cfg.Vapid.SubscriberEmail)

	override("RESEND_API_KEY", &cfg.Resend.APIKey)
	override("RESEND_FROM", &cfg.Resend.From)

	override("SMTP_HOST", &cfg.SMTP.Host)
	override("SMTP_USERNAME", &cfg.SMTP.Username)
	override("SMTP_PASSWORD", &cfg.SMTP.Password)
	override("SMTP_ENCRYPTION", &cfg.SMTP.Encryption)
	override("SMTP_FROM", &cfg.SMTP.From)
	if val := os.Getenv("SMTP_PORT"); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("SMTP_PORT must be a positive integer, got %q", val)
		}
		logger.Debug("Overriding config value", "key", "SMTP_PORT", "source", "env")
		cfg.SMTP.Port = port
	}

	if urls := os.Getenv("SHOUTRRR_URLS"); urls != "" {
		logger.Debug("Overriding config value", "key", "SHOUTRRR_URLS", "source", "env")
		cfg.Shoutrrr.URLs = splitList(urls)
	}

	// Final Validation
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	cfg.Provider = strings.ToLower(cfg.Provider)
	if cfg.AWS.Static() && (cfg.AWS.AccessKeyID == "" || cfg.AWS.SecretAccessKey == "") {
		return nil, fmt.Errorf("aws access key id and secret access key must be set together")
	}
	if cfg.AWS.SessionToken != "" && !cfg.AWS.Static() {
		return nil, fmt.Errorf("aws session token needs an access key id and secret access key")
	}
	switch cfg.SMTP.Encryption {
	case "", "none", "ssl_tls", "starttls":
	default:
		return nil, fmt.Errorf("smtp encryption must be one of none, ssl_tls, starttls, got %q", cfg.SMTP.Encryption)
	}

	logger.Debug("Configuration finalized and validated successfully", "provider", cfg.Provider)
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
