package amazon_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pinpoint"
	"github.com/aws/aws-sdk-go-v2/service/pinpoint/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-notihub/pkg/notification"
	"github.com/tinywideclouds/go-notihub/pkg/platform/amazon"
)

func newPinpointNotifier(p *MockPinpoint) *amazon.Notifier {
	return amazon.NewWithClients(p, new(MockSNS), new(MockSES), newTestLogger())
}

func TestSendPinpointPush(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy Path - Envelope submitted in one call", func(t *testing.T) {
		mockPinpoint := new(MockPinpoint)
		notifier := newPinpointNotifier(mockPinpoint)

		expected := &pinpoint.SendMessagesOutput{MessageResponse: &types.MessageResponse{ApplicationId: aws.String("app-1")}}
		mockPinpoint.On("SendMessages", ctx, mock.MatchedBy(func(in *pinpoint.SendMessagesInput) bool {
			msg := in.MessageRequest
			return aws.ToString(in.ApplicationId) == "app-1" &&
				len(msg.Endpoints) == 2 &&
				msg.MessageConfiguration.APNSMessage.Action == types.ActionDeepLink &&
				aws.ToString(msg.MessageConfiguration.GCMMessage.Url) == "app://x" &&
				aws.ToString(msg.MessageConfiguration.DefaultPushNotificationMessage.Title) == "Hi"
		})).Return(expected, nil)

		out, err := notifier.SendPinpointPush(ctx, "app-1", notification.PushRequest{
			TargetIDs:   []string{"e1", "e2"},
			Title:       "Hi",
			Body:        "there",
			DeepLinkURL: "app://x",
		})

		require.NoError(t, err)
		assert.Same(t, expected, out)
		mockPinpoint.AssertExpectations(t)
	})

	t.Run("No deep link leaves Url unset", func(t *testing.T) {
		mockPinpoint := new(MockPinpoint)
		notifier := newPinpointNotifier(mockPinpoint)

		mockPinpoint.On("SendMessages", ctx, mock.MatchedBy(func(in *pinpoint.SendMessagesInput) bool {
			cfg := in.MessageRequest.MessageConfiguration
			return cfg.APNSMessage.Url == nil && cfg.GCMMessage.Url == nil &&
				cfg.DefaultPushNotificationMessage.Url == nil &&
				cfg.APNSMessage.Action == types.ActionOpenApp
		})).Return(&pinpoint.SendMessagesOutput{}, nil)

		_, err := notifier.SendPinpointPush(ctx, "app-1", notification.PushRequest{TargetIDs: []string{"e1"}})
		require.NoError(t, err)
		mockPinpoint.AssertExpectations(t)
	})

	t.Run("Transport failure propagates", func(t *testing.T) {
		mockPinpoint := new(MockPinpoint)
		notifier := newPinpointNotifier(mockPinpoint)
		cause := errors.New("throttled")
		mockPinpoint.On("SendMessages", ctx, mock.Anything).Return(nil, cause)

		_, err := notifier.SendPinpointPush(ctx, "app-1", notification.PushRequest{TargetIDs: []string{"e1"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
	})
}

func TestGetEndpoint(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		mockPinpoint := new(MockPinpoint)
		notifier := newPinpointNotifier(mockPinpoint)
		expected := &pinpoint.GetEndpointOutput{EndpointResponse: &types.EndpointResponse{Id: aws.String("e1")}}
		mockPinpoint.On("GetEndpoint", ctx, &pinpoint.GetEndpointInput{
			ApplicationId: aws.String("app-1"),
			EndpointId:    aws.String("e1"),
		}).Return(expected, nil)

		got, err := notifier.GetEndpoint(ctx, "app-1", "e1")
		require.NoError(t, err)
		assert.True(t, got.Found())
		assert.Same(t, expected, got.Result)
		assert.Empty(t, got.Error)
	})

	t.Run("Not found becomes an error result", func(t *testing.T) {
		mockPinpoint := new(MockPinpoint)
		notifier := newPinpointNotifier(mockPinpoint)
		mockPinpoint.On("GetEndpoint", ctx, mock.Anything).
			Return(nil, &types.NotFoundException{Message: aws.String("Resource not found")})

		got, err := notifier.GetEndpoint(ctx, "app-1", "missing")
		require.NoError(t, err)
		assert.False(t, got.Found())
		assert.Nil(t, got.Result)
		assert.Equal(t, "Resource not found", got.Error)
	})

	t.Run("Other failures propagate", func(t *testing.T) {
		mockPinpoint := new(MockPinpoint)
		notifier := newPinpointNotifier(mockPinpoint)
		mockPinpoint.On("GetEndpoint", ctx, mock.Anything).
			Return(nil, &types.ForbiddenException{Message: aws.String("denied")})

		got, err := notifier.GetEndpoint(ctx, "app-1", "e1")
		require.Error(t, err)
		assert.Nil(t, got)
		var forbidden *types.ForbiddenException
		assert.ErrorAs(t, err, &forbidden)
	})
}

func TestGetUserEndpoints(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		mockPinpoint := new(MockPinpoint)
		notifier := newPinpointNotifier(mockPinpoint)
		expected := &pinpoint.GetUserEndpointsOutput{EndpointsResponse: &types.EndpointsResponse{
			Item: []types.EndpointResponse{{Id: aws.String("e1")}, {Id: aws.String("e2")}},
		}}
		mockPinpoint.On("GetUserEndpoints", ctx, &pinpoint.GetUserEndpointsInput{
			ApplicationId: aws.String("app-1"),
			UserId:        aws.String("user-1"),
		}).Return(expected, nil)

		got, err := notifier.GetUserEndpoints(ctx, "app-1", "user-1")
		require.NoError(t, err)
		require.True(t, got.Found())
		assert.Len(t, got.Result.EndpointsResponse.Item, 2)
	})

	t.Run("Not found becomes an error result", func(t *testing.T) {
		mockPinpoint := new(MockPinpoint)
		notifier := newPinpointNotifier(mockPinpoint)
		mockPinpoint.On("GetUserEndpoints", ctx, mock.Anything).
			Return(nil, &types.NotFoundException{Message: aws.String("No endpoints for user")})

		got, err := notifier.GetUserEndpoints(ctx, "app-1", "ghost")
		require.NoError(t, err)
		assert.Equal(t, "No endpoints for user", got.Error)
	})

	t.Run("Other failures propagate", func(t *testing.T) {
		mockPinpoint := new(MockPinpoint)
		notifier := newPinpointNotifier(mockPinpoint)
		mockPinpoint.On("GetUserEndpoints", ctx, mock.Anything).Return(nil, errors.New("boom"))

		_, err := notifier.GetUserEndpoints(ctx, "app-1", "user-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}
