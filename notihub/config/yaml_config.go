package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/tinywideclouds/go-notihub/pkg/templating"
	"gopkg.in/yaml.v3"
)

type YamlAWSConfig struct {
	AccessKeyID           string `yaml:"access_key_id"`
	SecretAccessKey       string `yaml:"secret_access_key"`
	SessionToken          string `yaml:"session_token"`
	Region                string `yaml:"region"`
	PinpointApplicationID string `yaml:"pinpoint_application_id"`
}

type YamlTwilioConfig struct {
	AccountSID  string `yaml:"account_sid"`
	AuthToken   string `yaml:"auth_token"`
	PhoneNumber string `yaml:"phone_number"`
}

type YamlFCMConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

type YamlAPNSConfig struct {
	KeyID      string `yaml:"key_id"`
	TeamID     string `yaml:"team_id"`
	BundleID   string `yaml:"bundle_id"`
	P8Key      string `yaml:"p8_key"`
	P8KeyFile  string `yaml:"p8_key_file"`
	Production bool   `yaml:"production"`
}

type YamlVapidConfig struct {
	PublicKey       string `yaml:"public_key"`
	PrivateKey      string `yaml:"private_key"`
	SubscriberEmail string `yaml:"subscriber_email"`
}

type YamlResendConfig struct {
	APIKey string `yaml:"api_key"`
	From   string `yaml:"from"`
}

type YamlSMTPConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Encryption string `yaml:"encryption"`
	From       string `yaml:"from"`
}

type YamlShoutrrrConfig struct {
	URLs []string `yaml:"urls"`
	// Timeout is a Go duration string such as "10s".
	Timeout string `yaml:"timeout"`
}

// YamlConfig is the structure that mirrors the raw config.yaml file.
type YamlConfig struct {
	Provider       string                         `yaml:"provider"`
	AWSConfig      YamlAWSConfig                  `yaml:"aws"`
	TwilioConfig   YamlTwilioConfig               `yaml:"twilio"`
	FCMConfig      YamlFCMConfig                  `yaml:"fcm"`
	APNSConfig     YamlAPNSConfig                 `yaml:"apns"`
	VapidConfig    YamlVapidConfig                `yaml:"vapid"`
	ResendConfig   YamlResendConfig               `yaml:"resend"`
	SMTPConfig     YamlSMTPConfig                 `yaml:"smtp"`
	ShoutrrrConfig YamlShoutrrrConfig             `yaml:"shoutrrr"`
	EmailTemplates map[string]templating.Template `yaml:"email_templates"`
}

// ParseYaml decodes a config file. Unknown keys are rejected so a misspelt
// credential name fails loudly instead of being ignored.
func ParseYaml(data []byte) (*YamlConfig, error) {
	var yc YamlConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&yc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse yaml config: %w", err)
	}
	return &yc, nil
}

// NewConfigFromYaml converts the YamlConfig into a clean, base Config struct.
func NewConfigFromYaml(baseCfg *YamlConfig, logger *slog.Logger) (*Config, error) {
	logger.Debug("Mapping YAML config to base config struct")

	var timeout time.Duration
	if baseCfg.ShoutrrrConfig.Timeout != "" {
		var err error
		if timeout, err = time.ParseDuration(baseCfg.ShoutrrrConfig.Timeout); err != nil {
			return nil, fmt.Errorf("shoutrrr.timeout: %w", err)
		}
	}

	cfg := &Config{
		Provider: baseCfg.Provider,
		AWS: AWSConfig{
			AccessKeyID:           baseCfg.AWSConfig.AccessKeyID,
			SecretAccessKey:       baseCfg.AWSConfig.SecretAccessKey,
			SessionToken:          baseCfg.AWSConfig.SessionToken,
			Region:                baseCfg.AWSConfig.Region,
			PinpointApplicationID: baseCfg.AWSConfig.PinpointApplicationID,
		},
		Twilio: TwilioConfig{
			AccountSID:  baseCfg.TwilioConfig.AccountSID,
			AuthToken:   baseCfg.TwilioConfig.AuthToken,
			PhoneNumber: baseCfg.TwilioConfig.PhoneNumber,
		},
		FCM: FCMConfig{
			ProjectID:       baseCfg.FCMConfig.ProjectID,
			CredentialsFile: baseCfg.FCMConfig.CredentialsFile,
		},
		APNS: APNSConfig{
			KeyID:      baseCfg.APNSConfig.KeyID,
			TeamID:     baseCfg.APNSConfig.TeamID,
			BundleID:   baseCfg.APNSConfig.BundleID,
			P8Key:      baseCfg.APNSConfig.P8Key,
			P8KeyFile:  baseCfg.APNSConfig.P8KeyFile,
			Production: baseCfg.APNSConfig.Production,
		},
		Vapid: VapidConfig{
			PublicKey:       baseCfg.VapidConfig.PublicKey,
			PrivateKey:      baseCfg.VapidConfig.PrivateKey,
			SubscriberEmail: baseCfg.VapidConfig.SubscriberEmail,
		},
		Resend: ResendConfig{
			APIKey: baseCfg.ResendConfig.APIKey,
			From:   baseCfg.ResendConfig.From,
		},
		SMTP: SMTPConfig{
			Host:       baseCfg.SMTPConfig.Host,
			Port:       baseCfg.SMTPConfig.Port,
			Username:   baseCfg.SMTPConfig.Username,
			Password:   baseCfg.SMTPConfig.Password,
			Encryption: baseCfg.SMTPConfig.Encryption,
			From:       baseCfg.SMTPConfig.From,
		},
		Shoutrrr: ShoutrrrConfig{
			URLs:    baseCfg.ShoutrrrConfig.URLs,
			Timeout: timeout,
		},
		EmailTemplates: baseCfg.EmailTemplates,
	}

	logger.Debug("YAML config mapping complete",
		"provider", cfg.Provider,
		"aws_region", cfg.AWS.Region,
		"email_templates", len(cfg.EmailTemplates),
	)

	return cfg, nil
}
