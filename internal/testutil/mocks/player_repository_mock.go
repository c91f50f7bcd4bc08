package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/dominoscore/internal/models"
)

// MockPlayerRepository is a mock implementation of repository.PlayerRepository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) Load(ctx context.Context) (models.Registry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Registry), args.Error(1)
}

func (m *MockPlayerRepository) Save(ctx context.Context, registry models.Registry) error {
	args := m.Called(ctx, registry)
	return args.Error(0)
}

func (m *MockPlayerRepository) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPlayerRepository) Path() string {
	args := m.Called()
	return args.String(0)
}
