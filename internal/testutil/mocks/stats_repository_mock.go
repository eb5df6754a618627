package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/neurobank/internal/models"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) FindByUserID(ctx context.Context, userID string) (*models.UserStatistics, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStatistics), args.Error(1)
}

func (m *MockStatsRepository) Create(ctx context.Context, stats models.UserStatistics) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

func (m *MockStatsRepository) Update(ctx context.Context, stats models.UserStatistics) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}
