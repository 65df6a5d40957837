package game

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/thomas-vilte/deckreport/internal/models"
)

type MockGameCatalog struct {
	mock.Mock
}

func (m *MockGameCatalog) SearchGames(ctx context.Context, term string) ([]models.GameSearchResult, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GameSearchResult), args.Error(1)
}

func (m *MockGameCatalog) GameDetailsByAppID(ctx context.Context, appID int) (*models.GameDetails, error) {
	args := m.Called(ctx, appID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameDetails), args.Error(1)
}

func (m *MockGameCatalog) GameDetailsByName(ctx context.Context, name string) (*models.GameDetails, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameDetails), args.Error(1)
}

func (m *MockGameCatalog) Devices(ctx context.Context) ([]models.Device, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Device), args.Error(1)
}
