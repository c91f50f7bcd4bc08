package services

import (
	"context"
	"time"

	"github.com/vytor/dominoscore/internal/errors"
	"github.com/vytor/dominoscore/internal/logger"
	"github.com/vytor/dominoscore/internal/models"
	"github.com/vytor/dominoscore/internal/repository"
)

// HistoryService handles the stored game history.
type HistoryService interface {
	List(ctx context.Context) ([]models.GameRecord, error)
	Recent(ctx context.Context) ([]models.GameRecord, error)
	Get(ctx context.Context, id string) (*models.GameRecord, error)
	Save(ctx context.Context, game *models.GameScore) (models.GameRecord, error)
	Edit(ctx context.Context, id string, totals map[string]int, date *time.Time) (models.GameRecord, error)
	Delete(ctx context.Context, ids []string) (int, error)
	MigrateIDs(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
}

type historyService struct {
	gameRepo repository.GameRepository
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(gameRepo repository.GameRepository) HistoryService {
	return &historyService{gameRepo: gameRepo}
}

// List returns history in storage order.
func (s *historyService) List(ctx context.Context) ([]models.GameRecord, error) {
	records, err := s.gameRepo.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list games: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return records, nil
}

// Recent returns history newest first, which is reverse storage order.
func (s *historyService) Recent(ctx context.Context) ([]models.GameRecord, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (s *historyService) Get(ctx context.Context, id string) (*models.GameRecord, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting game: id=%s", id)

	rec, err := s.gameRepo.Get(ctx, id)
	if err != nil {
		log.Error("failed to get game: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if rec == nil {
		return nil, errors.NewNotFoundError("game", id)
	}
	return rec, nil
}

// Save upserts the game keyed by its id.
func (s *historyService) Save(ctx context.Context, game *models.GameScore) (models.GameRecord, error) {
	log := logger.FromContext(ctx)

	rec := game.Record()
	if err := s.gameRepo.Upsert(ctx, rec); err != nil {
		log.Error("failed to save game %s: %v", rec.ID, err)
		return models.GameRecord{}, errors.NewInternalError(err)
	}
	log.Info("saved game %s: finished=%t", rec.ID, rec.Finished)
	return rec, nil
}

// Edit rewrites the totals (and optionally the date) of a stored game. The
// participant set becomes the keys of totals; the id and rounds are kept.
func (s *historyService) Edit(ctx context.Context, id string, totals map[string]int, date *time.Time) (models.GameRecord, error) {
	log := logger.FromContext(ctx)
	log.Debug("editing game: id=%s", id)

	stored, err := s.Get(ctx, id)
	if err != nil {
		return models.GameRecord{}, err
	}
	game, err := models.GameFromRecord(*stored)
	if err != nil {
		log.Warn("stored game %s cannot be edited: %v", id, err)
		return models.GameRecord{}, err
	}

	cleaned := make(map[string]int, len(totals))
	for name, total := range totals {
		name = models.NormalizeName(name)
		if name == "" {
			return models.GameRecord{}, errors.NewValidationError("totals", "contains a blank player name")
		}
		cleaned[name] = total
	}
	if len(cleaned) < 2 {
		return models.GameRecord{}, errors.NewInsufficientPlayersError(len(cleaned))
	}

	game.Totals = cleaned
	game.Players = models.GameRecord{Totals: cleaned}.Participants()
	if date != nil {
		game.Date = *date
	}
	return s.Save(ctx, game)
}

// Delete removes the games with the given ids; unknown ids are ignored.
func (s *historyService) Delete(ctx context.Context, ids []string) (int, error) {
	n, err := s.gameRepo.Delete(ctx, ids)
	if err != nil {
		logger.FromContext(ctx).Error("failed to delete games: %v", err)
		return 0, errors.NewInternalError(err)
	}
	return n, nil
}

// MigrateIDs assigns ids to legacy games that have none.
func (s *historyService) MigrateIDs(ctx context.Context) (int, error) {
	n, err := s.gameRepo.BackfillIDs(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to backfill game ids: %v", err)
		return 0, errors.NewInternalError(err)
	}
	return n, nil
}

func (s *historyService) Reset(ctx context.Context) error {
	if err := s.gameRepo.Reset(ctx); err != nil {
		logger.FromContext(ctx).Error("failed to reset history: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}
