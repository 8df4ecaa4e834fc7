package amazon

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/tinywideclouds/go-notihub/pkg/notification"
)

// SendSMS publishes a text message directly to a phone number.
func (n *Notifier) SendSMS(ctx context.Context, req notification.SMSRequest) (*notification.Receipt, error) {
	out, err := n.sns.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(req.PhoneNumber),
		Message:     aws.String(req.Message),
	})
	if err != nil {
		return nil, fmt.Errorf("sns publish sms: %w", err)
	}
	return &notification.Receipt{
		Provider:   ProviderName,
		MessageIDs: []string{aws.ToString(out.MessageId)},
		Raw:        out,
	}, nil
}

// SendPush publishes to each target, which must be an SNS platform endpoint
// ARN. The message carries per-platform payloads so SNS delivers the APNs or
// GCM encoding that matches the endpoint. The first failure stops the send.
func (n *Notifier) SendPush(ctx context.Context, req notification.PushRequest) (*notification.Receipt, error) {
	message, err := snsMessage(req)
	if err != nil {
		return nil, err
	}

	outs := make([]*sns.PublishOutput, 0, len(req.TargetIDs))
	ids := make([]string, 0, len(req.TargetIDs))
	for _, arn := range req.TargetIDs {
		out, err := n.sns.Publish(ctx, &sns.PublishInput{
			TargetArn:        aws.String(arn),
			Message:          aws.String(message),
			MessageStructure: aws.String("json"),
		})
		if err != nil {
			return nil, fmt.Errorf("sns publish to %s: %w", arn, err)
		}
		outs = append(outs, out)
		ids = append(ids, aws.ToString(out.MessageId))
	}

	n.logger.Debug("SNS push published", "targets", len(req.TargetIDs))
	return &notification.Receipt{Provider: ProviderName, MessageIDs: ids, Raw: outs}, nil
}

// CreateTopic creates (or returns the existing) topic with the given name.
func (n *Notifier) CreateTopic(ctx context.Context, name string) (*sns.CreateTopicOutput, error) {
	out, err := n.sns.CreateTopic(ctx, &sns.CreateTopicInput{Name: aws.String(name)})
	if err != nil {
		return nil, fmt.Errorf("sns create topic: %w", err)
	}
	return out, nil
}

// GetTopic returns the topic's attributes.
func (n *Notifier) GetTopic(ctx context.Context, topicARN string) (*sns.GetTopicAttributesOutput, error) {
	out, err := n.sns.GetTopicAttributes(ctx, &sns.GetTopicAttributesInput{TopicArn: aws.String(topicARN)})
	if err != nil {
		return nil, fmt.Errorf("sns get topic: %w", err)
	}
	return out, nil
}

// DeleteTopic deletes the topic and its subscriptions.
func (n *Notifier) DeleteTopic(ctx context.Context, topicARN string) (*sns.DeleteTopicOutput, error) {
	out, err := n.sns.DeleteTopic(ctx, &sns.DeleteTopicInput{TopicArn: aws.String(topicARN)})
	if err != nil {
		return nil, fmt.Errorf("sns delete topic: %w", err)
	}
	return out, nil
}

// SubscribeToTopic subscribes an endpoint (email address, phone number, URL,
// queue ARN, ...) using the given protocol.
func (n *Notifier) SubscribeToTopic(ctx context.Context, topicARN, protocol, endpoint string) (*sns.SubscribeOutput, error) {
	out, err := n.sns.Subscribe(ctx, &sns.SubscribeInput{
		TopicArn: aws.String(topicARN),
		Protocol: aws.String(protocol),
		Endpoint: aws.String(endpoint),
	})
	if err != nil {
		return nil, fmt.Errorf("sns subscribe: %w", err)
	}
	return out, nil
}

// SendTopicNotification publishes a message to every subscriber of a topic.
func (n *Notifier) SendTopicNotification(ctx context.Context, topicARN, message, subject string) (*sns.PublishOutput, error) {
	out, err := n.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topicARN),
		Message:  aws.String(message),
		Subject:  optional(subject),
	})
	if err != nil {
		return nil, fmt.Errorf("sns publish to topic: %w", err)
	}
	return out, nil
}
