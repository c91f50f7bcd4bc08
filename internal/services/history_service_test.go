package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/dominoscore/internal/errors"
	"github.com/vytor/dominoscore/internal/models"
	"github.com/vytor/dominoscore/internal/services"
	"github.com/vytor/dominoscore/internal/testutil"
	"github.com/vytor/dominoscore/internal/testutil/mocks"
)

func TestHistoryService_RecentIsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockGameRepository)
	repo.On("List", ctx).Return([]models.GameRecord{
		testutil.FinishedRecord("a", "Alice", 300, "Bob", 0),
		testutil.FinishedRecord("b", "Alice", 300, "Bob", 0),
		testutil.FinishedRecord("c", "Alice", 300, "Bob", 0),
	}, nil)

	recent, err := services.NewHistoryService(repo).Recent(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "a", recent[2].ID)
}

func TestHistoryService_GetMissing(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockGameRepository)
	repo.On("Get", ctx, "nope").Return(nil, nil)

	_, err := services.NewHistoryService(repo).Get(ctx, "nope")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestHistoryService_EditRewritesTotalsAndKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	stored := testutil.FinishedRecord("g1", "Alice", 300, "Bob", 120)
	stored.Rounds = []models.Round{{Player: "Alice", Points: 300}, {Player: "Bob", Points: 120}}

	repo := new(mocks.MockGameRepository)
	repo.On("Get", ctx, "g1").Return(&stored, nil)
	repo.On("Upsert", ctx, mock.MatchedBy(func(r models.GameRecord) bool {
		return r.ID == "g1" && r.Totals["Alice"] == 150 && r.Totals["Bob"] == 200
	})).Return(nil).Once()

	newDate := time.Date(2024, time.June, 5, 18, 30, 0, 0, time.Local)
	rec, err := services.NewHistoryService(repo).Edit(ctx, "g1", map[string]int{"Alice": 150, " Bob ": 200}, &newDate)
	require.NoError(t, err)

	assert.False(t, rec.Finished, "lowering every total below the threshold reopens the game")
	assert.Nil(t, rec.Winner)
	assert.Empty(t, rec.Losers)
	assert.Equal(t, stored.Rounds, rec.Rounds)
	parsed, err := models.ParseDate(rec.Date)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(newDate))
	repo.AssertExpectations(t)
}

func TestHistoryService_EditKeepsDateWhenNil(t *testing.T) {
	ctx := context.Background()
	stored := testutil.FinishedRecord("g1", "Alice", 100, "Bob", 120)

	repo := new(mocks.MockGameRepository)
	repo.On("Get", ctx, "g1").Return(&stored, nil)
	repo.On("Upsert", ctx, mock.Anything).Return(nil)

	rec, err := services.NewHistoryService(repo).Edit(ctx, "g1", map[string]int{"Alice": 100, "Bob": 320}, nil)
	require.NoError(t, err)
	assert.Equal(t, stored.Date, rec.Date)
	require.NotNil(t, rec.Winner)
	assert.Equal(t, "Bob", *rec.Winner)
}

func TestHistoryService_EditValidation(t *testing.T) {
	ctx := context.Background()
	stored := testutil.FinishedRecord("g1", "Alice", 300, "Bob", 120)

	repo := new(mocks.MockGameRepository)
	repo.On("Get", ctx, "g1").Return(&stored, nil)
	repo.On("Get", ctx, "missing").Return(nil, nil)
	svc := services.NewHistoryService(repo)

	_, err := svc.Edit(ctx, "g1", map[string]int{"Alice": 10}, nil)
	assert.ErrorIs(t, err, errors.ErrInsufficientPlayers)

	_, err = svc.Edit(ctx, "g1", map[string]int{"Alice": 10, "  ": 5}, nil)
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, err = svc.Edit(ctx, "missing", map[string]int{"Alice": 10, "Bob": 5}, nil)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}
