package shoutrrr_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-notihub/pkg/dispatch"
	"github.com/tinywideclouds/go-notihub/pkg/notification"
	"github.com/tinywideclouds/go-notihub/pkg/platform/shoutrrr"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(message string, params *stypes.Params) []error {
	args := m.Called(message, params)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]error)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestShoutrrr_SendPush(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy Path - Title passed as param", func(t *testing.T) {
		sender := new(MockSender)
		n := shoutrrr.NewWithSender(sender, newTestLogger())
		sender.On("Send", "Disk full\napp://disks/1", mock.MatchedBy(func(p *stypes.Params) bool {
			title, ok := p.Title()
			return ok && title == "Alert"
		})).Return(nil)

		receipt, err := n.SendPush(ctx, notification.PushRequest{
			Title:       "Alert",
			Body:        "Disk full",
			DeepLinkURL: "app://disks/1",
		})
		require.NoError(t, err)
		assert.Equal(t, shoutrrr.ProviderName, receipt.Provider)
		sender.AssertExpectations(t)
	})

	t.Run("First service error propagates", func(t *testing.T) {
		sender := new(MockSender)
		n := shoutrrr.NewWithSender(sender, newTestLogger())
		sender.On("Send", mock.Anything, mock.Anything).Return([]error{nil, errors.New("timed out")})

		_, err := n.SendPush(ctx, notification.PushRequest{Body: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timed out")
	})

	t.Run("Silent is rejected", func(t *testing.T) {
		sender := new(MockSender)
		n := shoutrrr.NewWithSender(sender, newTestLogger())

		_, err := n.SendPush(ctx, notification.PushRequest{Silent: true})
		assert.ErrorIs(t, err, dispatch.ErrValidation)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Target URLs replace the configured services", func(t *testing.T) {
		sender := new(MockSender)
		n := shoutrrr.NewWithSender(sender, newTestLogger())

		_, err := n.SendPush(ctx, notification.PushRequest{TargetIDs: []string{"logger://"}, Body: "hello"})
		require.NoError(t, err)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Invalid target URL", func(t *testing.T) {
		n := shoutrrr.NewWithSender(new(MockSender), newTestLogger())
		_, err := n.SendPush(ctx, notification.PushRequest{TargetIDs: []string{"nosuchservice://x"}, Body: "hello"})
		assert.ErrorIs(t, err, dispatch.ErrValidation)
	})
}

func TestShoutrrr_New(t *testing.T) {
	_, err := shoutrrr.New(shoutrrr.Credentials{}, newTestLogger())
	assert.ErrorIs(t, err, dispatch.ErrValidation)

	n, err := shoutrrr.New(shoutrrr.Credentials{URLs: []string{"logger://"}}, newTestLogger())
	require.NoError(t, err)

	_, err = n.SendPush(context.Background(), notification.PushRequest{Title: "t", Body: "b"})
	require.NoError(t, err)

	_, err = n.SendSMS(context.Background(), notification.SMSRequest{})
	assert.ErrorIs(t, err, dispatch.ErrNotSupported)
	_, err = n.SendEmail(context.Background(), notification.EmailRequest{})
	assert.ErrorIs(t, err, dispatch.ErrNotSupported)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "body", shoutrrr.Message(notification.PushRequest{Body: "body"}))
	assert.Equal(t, "body\napp://x\nhttp://i.png", shoutrrr.Message(notification.PushRequest{
		Body:        "body",
		DeepLinkURL: "app://x",
		ImageURL:    "http://i.png",
	}))
}
