package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/dominoscore/internal/models"
)

// MockReportRepository is a mock implementation of repository.ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Rebuild(ctx context.Context, records []models.GameRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockReportRepository) Standings(ctx context.Context, filter models.StandingFilter) ([]models.Standing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Standing), args.Error(1)
}

func (m *MockReportRepository) HighScores(ctx context.Context, limit int) ([]models.HighScore, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HighScore), args.Error(1)
}
