package amazon_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/pinpoint"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// returnOrNil keeps the mock bodies short: a nil first return means "error only".
func returnOrNil[T any](args mock.Arguments) (*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

type MockPinpoint struct {
	mock.Mock
}

func (m *MockPinpoint) SendMessages(ctx context.Context, params *pinpoint.SendMessagesInput, _ ...func(*pinpoint.Options)) (*pinpoint.SendMessagesOutput, error) {
	return returnOrNil[pinpoint.SendMessagesOutput](m.Called(ctx, params))
}

func (m *MockPinpoint) GetEndpoint(ctx context.Context, params *pinpoint.GetEndpointInput, _ ...func(*pinpoint.Options)) (*pinpoint.GetEndpointOutput, error) {
	return returnOrNil[pinpoint.GetEndpointOutput](m.Called(ctx, params))
}

func (m *MockPinpoint) GetUserEndpoints(ctx context.Context, params *pinpoint.GetUserEndpointsInput, _ ...func(*pinpoint.Options)) (*pinpoint.GetUserEndpointsOutput, error) {
	return returnOrNil[pinpoint.GetUserEndpointsOutput](m.Called(ctx, params))
}

type MockSNS struct {
	mock.Mock
}

func (m *MockSNS) Publish(ctx context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return returnOrNil[sns.PublishOutput](m.Called(ctx, params))
}

func (m *MockSNS) CreateTopic(ctx context.Context, params *sns.CreateTopicInput, _ ...func(*sns.Options)) (*sns.CreateTopicOutput, error) {
	return returnOrNil[sns.CreateTopicOutput](m.Called(ctx, params))
}

func (m *MockSNS) GetTopicAttributes(ctx context.Context, params *sns.GetTopicAttributesInput, _ ...func(*sns.Options)) (*sns.GetTopicAttributesOutput, error) {
	return returnOrNil[sns.GetTopicAttributesOutput](m.Called(ctx, params))
}

func (m *MockSNS) DeleteTopic(ctx context.Context, params *sns.DeleteTopicInput, _ ...func(*sns.Options)) (*sns.DeleteTopicOutput, error) {
	return returnOrNil[sns.DeleteTopicOutput](m.Called(ctx, params))
}

func (m *MockSNS) Subscribe(ctx context.Context, params *sns.SubscribeInput, _ ...func(*sns.Options)) (*sns.SubscribeOutput, error) {
	return returnOrNil[sns.SubscribeOutput](m.Called(ctx, params))
}

type MockSES struct {
	mock.Mock
}

func (m *MockSES) SendTemplatedEmail(ctx context.Context, params *ses.SendTemplatedEmailInput, _ ...func(*ses.Options)) (*ses.SendTemplatedEmailOutput, error) {
	return returnOrNil[ses.SendTemplatedEmailOutput](m.Called(ctx, params))
}

func (m *MockSES) CreateTemplate(ctx context.Context, params *ses.CreateTemplateInput, _ ...func(*ses.Options)) (*ses.CreateTemplateOutput, error) {
	return returnOrNil[ses.CreateTemplateOutput](m.Called(ctx, params))
}

func (m *MockSES) UpdateTemplate(ctx context.Context, params *ses.UpdateTemplateInput, _ ...func(*ses.Options)) (*ses.UpdateTemplateOutput, error) {
	return returnOrNil[ses.UpdateTemplateOutput](m.Called(ctx, params))
}

func (m *MockSES) GetTemplate(ctx context.Context, params *ses.GetTemplateInput, _ ...func(*ses.Options)) (*ses.GetTemplateOutput, error) {
	return returnOrNil[ses.GetTemplateOutput](m.Called(ctx, params))
}

func (m *MockSES) DeleteTemplate(ctx context.Context, params *ses.DeleteTemplateInput, _ ...func(*ses.Options)) (*ses.DeleteTemplateOutput, error) {
	return returnOrNil[ses.DeleteTemplateOutput](m.Called(ctx, params))
}

func (m *MockSES) ListTemplates(ctx context.Context, params *ses.ListTemplatesInput, _ ...func(*ses.Options)) (*ses.ListTemplatesOutput, error) {
	return returnOrNil[ses.ListTemplatesOutput](m.Called(ctx, params))
}
