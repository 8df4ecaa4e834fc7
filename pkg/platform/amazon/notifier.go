// Package amazon provides the AWS notifier: SMS and device push through SNS,
// templated email through SES, and multi-channel push through Pinpoint.
package amazon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/pinpoint"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/tinywideclouds/go-notihub/pkg/dispatch"
)

// ProviderName identifies receipts produced by this notifier.
const ProviderName = "aws"

// PinpointAPI defines the subset of the Pinpoint client we use.
type PinpointAPI interface {
	SendMessages(ctx context.Context, params *pinpoint.SendMessagesInput, optFns ...func(*pinpoint.Options)) (*pinpoint.SendMessagesOutput, error)
	GetEndpoint(ctx context.Context, params *pinpoint.GetEndpointInput, optFns ...func(*pinpoint.Options)) (*pinpoint.GetEndpointOutput, error)
	GetUserEndpoints(ctx context.Context, params *pinpoint.GetUserEndpointsInput, optFns ...func(*pinpoint.Options)) (*pinpoint.GetUserEndpointsOutput, error)
}

// SNSAPI defines the subset of the SNS client we use.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	CreateTopic(ctx context.Context, params *sns.CreateTopicInput, optFns ...func(*sns.Options)) (*sns.CreateTopicOutput, error)
	GetTopicAttributes(ctx context.Context, params *sns.GetTopicAttributesInput, optFns ...func(*sns.Options)) (*sns.GetTopicAttributesOutput, error)
	DeleteTopic(ctx context.Context, params *sns.DeleteTopicInput, optFns ...func(*sns.Options)) (*sns.DeleteTopicOutput, error)
	Subscribe(ctx context.Context, params *sns.SubscribeInput, optFns ...func(*sns.Options)) (*sns.SubscribeOutput, error)
}

// SESAPI defines the subset of the SES client we use.
type SESAPI interface {
	SendTemplatedEmail(ctx context.Context, params *ses.SendTemplatedEmailInput, optFns ...func(*ses.Options)) (*ses.SendTemplatedEmailOutput, error)
	CreateTemplate(ctx context.Context, params *ses.CreateTemplateInput, optFns ...func(*ses.Options)) (*ses.CreateTemplateOutput, error)
	UpdateTemplate(ctx context.Context, params *ses.UpdateTemplateInput, optFns ...func(*ses.Options)) (*ses.UpdateTemplateOutput, error)
	GetTemplate(ctx context.Context, params *ses.GetTemplateInput, optFns ...func(*ses.Options)) (*ses.GetTemplateOutput, error)
	DeleteTemplate(ctx context.Context, params *ses.DeleteTemplateInput, optFns ...func(*ses.Options)) (*ses.DeleteTemplateOutput, error)
	ListTemplates(ctx context.Context, params *ses.ListTemplatesInput, optFns ...func(*ses.Options)) (*ses.ListTemplatesOutput, error)
}

// CredentialSource selects how AWS credentials are resolved.
type CredentialSource int

const (
	// CredentialsAmbient uses the SDK's default chain (env, shared files, instance role).
	CredentialsAmbient CredentialSource = iota
	// CredentialsStatic uses the key pair carried in Credentials.
	CredentialsStatic
)

// Credentials configures the AWS clients. Region is optional in both modes.
type Credentials struct {
	Source          CredentialSource
	AccessKeyID     string
	SecretAccessKey string
	// SessionToken accompanies temporary static keys (STS, SSO, OIDC).
	SessionToken string
	Region       string
}

// AmbientCredentials resolves credentials from the environment.
func AmbientCredentials(region string) Credentials {
	return Credentials{Source: CredentialsAmbient, Region: region}
}

// StaticCredentials uses an explicit access key pair.
func StaticCredentials(accessKeyID, secretAccessKey, region string) Credentials {
	return Credentials{
		Source:          CredentialsStatic,
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
		Region:          region,
	}
}

func (c Credentials) loadOptions() ([]func(*config.LoadOptions) error, error) {
	var opts []func(*config.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, config.WithRegion(c.Region))
	}

	switch c.Source {
	case CredentialsAmbient:
	case CredentialsStatic:
		if c.AccessKeyID == "" {
			return nil, dispatch.Invalid("aws_access_key_id", "access key id must be provided for static credentials")
		}
		if c.SecretAccessKey == "" {
			return nil, dispatch.Invalid("aws_secret_access_key", "secret access key must be provided for static credentials")
		}
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken),
		))
	default:
		return nil, dispatch.Invalid("credential_source", fmt.Sprintf("unknown credential source %d", c.Source))
	}
	return opts, nil
}

// Notifier implements dispatch.Notifier on top of SNS and SES, and exposes
// the Pinpoint, topic and template operations directly.
type Notifier struct {
	pinpoint PinpointAPI
	sns      SNSAPI
	ses      SESAPI
	logger   *slog.Logger
}

// New resolves the AWS configuration and builds the three service clients.
func New(ctx context.Context, creds Credentials, logger *slog.Logger) (*Notifier, error) {
	opts, err := creds.loadOptions()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewWithClients(
		pinpoint.NewFromConfig(cfg),
		sns.NewFromConfig(cfg),
		ses.NewFromConfig(cfg),
		logger,
	), nil
}

// NewWithClients accepts already configured clients. The SDK clients satisfy
// the interfaces directly.
func NewWithClients(pinpointClient PinpointAPI, snsClient SNSAPI, sesClient SESAPI, logger *slog.Logger) *Notifier {
	return &Notifier{
		pinpoint: pinpointClient,
		sns:      snsClient,
		ses:      sesClient,
		logger:   logger.With("component", "AWSNotifier"),
	}
}

var _ dispatch.Notifier = (*Notifier)(nil)
