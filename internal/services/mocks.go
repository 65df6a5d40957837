package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/thomas-vilte/deckreport/internal/auth"
	"github.com/thomas-vilte/deckreport/internal/models"
)

type (
	MockTokenProvider struct {
		mock.Mock
	}

	MockUploader struct {
		mock.Mock
	}

	MockIssueClient struct {
		mock.Mock
	}

	MockIssueSyncer struct {
		mock.Mock
	}
)

func (m *MockTokenProvider) EnsureFreshToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockUploader) Upload(ctx context.Context, paths []string, token string) ([]string, error) {
	args := m.Called(ctx, paths, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockIssueClient) CreateIssue(ctx context.Context, title, body string, labels []string) (*models.RemoteIssue, error) {
	args := m.Called(ctx, title, body, labels)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RemoteIssue), args.Error(1)
}

func (m *MockIssueClient) EditIssue(ctx context.Context, number int, title, body string) (*models.RemoteIssue, error) {
	args := m.Called(ctx, number, title, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RemoteIssue), args.Error(1)
}

func (m *MockIssueClient) GetAuthenticatedUser(ctx context.Context) (*models.UserProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockIssueSyncer) Submit(ctx context.Context, draft models.Draft, templateBody []models.FormItem) (string, error) {
	args := m.Called(ctx, draft, templateBody)
	return args.String(0), args.Error(1)
}

func (m *MockIssueSyncer) Update(ctx context.Context, draft models.Draft, templateBody []models.FormItem, issueNumber int) (string, error) {
	args := m.Called(ctx, draft, templateBody, issueNumber)
	return args.String(0), args.Error(1)
}

type MockDeviceAuthorizer struct {
	mock.Mock
}

func (m *MockDeviceAuthorizer) Begin(ctx context.Context) (*auth.DeviceCode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.DeviceCode), args.Error(1)
}

func (m *MockDeviceAuthorizer) Poll(ctx context.Context, code *auth.DeviceCode) (auth.TokenBundle, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(auth.TokenBundle), args.Error(1)
}
