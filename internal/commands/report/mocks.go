package report

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/thomas-vilte/deckreport/internal/models"
)

type MockGameDetailsFetcher struct {
	mock.Mock
}

func (m *MockGameDetailsFetcher) GameDetailsByAppID(ctx context.Context, appID int) (*models.GameDetails, error) {
	args := m.Called(ctx, appID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameDetails), args.Error(1)
}

func (m *MockGameDetailsFetcher) GameDetailsByName(ctx context.Context, name string) (*models.GameDetails, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameDetails), args.Error(1)
}
