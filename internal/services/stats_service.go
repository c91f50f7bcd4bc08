package services

import (
	"context"

	"github.com/vytor/dominoscore/internal/errors"
	"github.com/vytor/dominoscore/internal/logger"
	"github.com/vytor/dominoscore/internal/models"
	"github.com/vytor/dominoscore/internal/repository"
)

// StatsService derives player records and reports from game history. History
// is the only input; nothing here is incremented during play.
type StatsService interface {
	Compute(ctx context.Context) (map[string]models.PlayerStats, error)
	Apply(ctx context.Context, registry models.Registry) error
	Standings(ctx context.Context, filter models.StandingFilter) ([]models.Standing, error)
	HighScores(ctx context.Context, limit int) ([]models.HighScore, error)
}

type statsService struct {
	gameRepo   repository.GameRepository
	reportRepo repository.ReportRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(gameRepo repository.GameRepository, reportRepo repository.ReportRepository) StatsService {
	return &statsService{gameRepo: gameRepo, reportRepo: reportRepo}
}

// Compute replays history from scratch. Games that are unfinished or have no
// sole winner contribute nothing.
func (s *statsService) Compute(ctx context.Context) (map[string]models.PlayerStats, error) {
	log := logger.FromContext(ctx)

	records, err := s.gameRepo.List(ctx)
	if err != nil {
		log.Error("failed to list games for stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return ComputeStats(records), nil
}

// ComputeStats tallies wins and losses over records. A repeated id counts
// once, by its first record.
func ComputeStats(records []models.GameRecord) map[string]models.PlayerStats {
	stats := make(map[string]models.PlayerStats)
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true

		res := rec.Outcome()
		if !res.Finished || !res.HasWinner() {
			continue
		}
		w := stats[res.Winner]
		w.Wins++
		stats[res.Winner] = w
		for _, name := range res.Losers {
			l := stats[name]
			l.Losses++
			stats[name] = l
		}
	}
	return stats
}

// ApplyStats overwrites every registered player's record with stats, zeroing
// players that have none.
func ApplyStats(registry models.Registry, stats map[string]models.PlayerStats) {
	for name, p := range registry {
		st, ok := stats[name]
		if !ok {
			p.ResetStats()
			continue
		}
		p.Wins = st.Wins
		p.Losses = st.Losses
	}
}

func (s *statsService) Apply(ctx context.Context, registry models.Registry) error {
	stats, err := s.Compute(ctx)
	if err != nil {
		return err
	}
	ApplyStats(registry, stats)
	logger.FromContext(ctx).Debug("synchronized stats for %d players from history", len(registry))
	return nil
}

// refreshReport rebuilds the report database from the current history.
func (s *statsService) refreshReport(ctx context.Context) error {
	records, err := s.gameRepo.List(ctx)
	if err != nil {
		return err
	}
	return s.reportRepo.Rebuild(ctx, records)
}

func (s *statsService) Standings(ctx context.Context, filter models.StandingFilter) ([]models.Standing, error) {
	log := logger.FromContext(ctx)
	log.Debug("fetching standings: player=%s, limit=%d", filter.Player, filter.Limit)

	if filter.Limit < 0 {
		return nil, errors.NewValidationError("limit", "cannot be negative")
	}
	if err := s.refreshReport(ctx); err != nil {
		log.Error("failed to refresh report: %v", err)
		return nil, errors.NewInternalError(err)
	}
	rows, err := s.reportRepo.Standings(ctx, filter)
	if err != nil {
		log.Error("failed to fetch standings: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return rows, nil
}

func (s *statsService) HighScores(ctx context.Context, limit int) ([]models.HighScore, error) {
	log := logger.FromContext(ctx)

	if limit < 0 {
		return nil, errors.NewValidationError("limit", "cannot be negative")
	}
	if err := s.refreshReport(ctx); err != nil {
		log.Error("failed to refresh report: %v", err)
		return nil, errors.NewInternalError(err)
	}
	top, err := s.reportRepo.HighScores(ctx, limit)
	if err != nil {
		log.Error("failed to fetch high scores: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return top, nil
}
