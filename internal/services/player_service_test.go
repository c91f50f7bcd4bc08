package services_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/dominoscore/internal/errors"
	"github.com/vytor/dominoscore/internal/models"
	"github.com/vytor/dominoscore/internal/services"
	"github.com/vytor/dominoscore/internal/testutil/mocks"
)

func TestPlayerService_Register(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPlayerRepository)
	repo.On("Save", ctx, mock.AnythingOfType("models.Registry")).Return(nil).Once()

	svc := services.NewPlayerService(repo)
	registry := models.Registry{}

	p, err := svc.Register(ctx, registry, "  Alice ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)
	assert.Zero(t, p.Wins)
	assert.True(t, registry.Has("Alice"))
	repo.AssertExpectations(t)
}

func TestPlayerService_RegisterRejectsInvalidNames(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPlayerRepository)
	svc := services.NewPlayerService(repo)
	registry := models.Registry{"Alice": models.NewPlayer("Alice")}

	for _, name := range []string{"", "   ", "Alice", " Alice"} {
		_, err := svc.Register(ctx, registry, name)
		assert.ErrorIs(t, err, errors.ErrInvalidName, "name %q", name)
	}
	assert.Len(t, registry, 1)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPlayerService_RegisterRollsBackOnSaveFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPlayerRepository)
	repo.On("Save", ctx, mock.Anything).Return(stderrors.New("disk full"))

	svc := services.NewPlayerService(repo)
	registry := models.Registry{}

	_, err := svc.Register(ctx, registry, "Bob")
	assert.ErrorIs(t, err, errors.ErrInternal)
	assert.False(t, registry.Has("Bob"))
}

func TestPlayerService_LoadWrapsErrors(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPlayerRepository)
	repo.On("Load", ctx).Return(nil, stderrors.New("permission denied"))

	_, err := services.NewPlayerService(repo).Load(ctx)
	assert.ErrorIs(t, err, errors.ErrInternal)
}
