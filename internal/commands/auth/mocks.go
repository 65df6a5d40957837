package auth

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/thomas-vilte/deckreport/internal/models"
	"github.com/thomas-vilte/deckreport/internal/services"
)

type MockAuthManager struct {
	mock.Mock
}

func (m *MockAuthManager) Login(ctx context.Context, prompt services.PromptFunc) (*models.UserProfile, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockAuthManager) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAuthManager) Whoami(ctx context.Context) (*models.UserProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}
