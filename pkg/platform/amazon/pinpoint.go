package amazon

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pinpoint"
	"github.com/aws/aws-sdk-go-v2/service/pinpoint/types"
	"github.com/tinywideclouds/go-notihub/pkg/notification"
)

// Lookup is the result of an endpoint lookup. When the endpoint does not
// exist, Result is nil and Error carries the provider's message.
type Lookup[T any] struct {
	Result T      `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Found reports whether the lookup returned a result.
func (l *Lookup[T]) Found() bool {
	return l != nil && l.Error == ""
}

// SendPinpointPush sends one push request to every target endpoint in a single
// Pinpoint call. The APNs, GCM and default encodings are all attached; Pinpoint
// picks the one matching each endpoint's channel at delivery time.
func (n *Notifier) SendPinpointPush(ctx context.Context, applicationID string, req notification.PushRequest) (*pinpoint.SendMessagesOutput, error) {
	msgReq, err := BuildMessageRequest(req)
	if err != nil {
		return nil, err
	}

	n.logger.Debug("Sending Pinpoint push",
		"application_id", applicationID,
		"endpoints", len(msgReq.Endpoints),
		"action", req.Action(),
		"silent", req.Silent,
	)

	out, err := n.pinpoint.SendMessages(ctx, &pinpoint.SendMessagesInput{
		ApplicationId:  aws.String(applicationID),
		MessageRequest: msgReq.sdk(),
	})
	if err != nil {
		return nil, fmt.Errorf("pinpoint send messages: %w", err)
	}
	return out, nil
}

// GetEndpoint fetches one endpoint. A missing endpoint is reported through
// Lookup.Error instead of an error.
func (n *Notifier) GetEndpoint(ctx context.Context, applicationID, endpointID string) (*Lookup[*pinpoint.GetEndpointOutput], error) {
	out, err := n.pinpoint.GetEndpoint(ctx, &pinpoint.GetEndpointInput{
		ApplicationId: aws.String(applicationID),
		EndpointId:    aws.String(endpointID),
	})
	if err != nil {
		if msg, ok := notFoundMessage(err); ok {
			n.logger.Debug("Pinpoint endpoint not found", "endpoint_id", endpointID)
			return &Lookup[*pinpoint.GetEndpointOutput]{Error: msg}, nil
		}
		return nil, fmt.Errorf("pinpoint get endpoint: %w", err)
	}
	return &Lookup[*pinpoint.GetEndpointOutput]{Result: out}, nil
}

// GetUserEndpoints fetches every endpoint registered for a user id.
func (n *Notifier) GetUserEndpoints(ctx context.Context, applicationID, userID string) (*Lookup[*pinpoint.GetUserEndpointsOutput], error) {
	out, err := n.pinpoint.GetUserEndpoints(ctx, &pinpoint.GetUserEndpointsInput{
		ApplicationId: aws.String(applicationID),
		UserId:        aws.String(userID),
	})
	if err != nil {
		if msg, ok := notFoundMessage(err); ok {
			n.logger.Debug("Pinpoint user has no endpoints", "user_id", userID)
			return &Lookup[*pinpoint.GetUserEndpointsOutput]{Error: msg}, nil
		}
		return nil, fmt.Errorf("pinpoint get user endpoints: %w", err)
	}
	return &Lookup[*pinpoint.GetUserEndpointsOutput]{Result: out}, nil
}

func notFoundMessage(err error) (string, bool) {
	var nf *types.NotFoundException
	if errors.As(err, &nf) {
		return nf.ErrorMessage(), true
	}
	return "", false
}
