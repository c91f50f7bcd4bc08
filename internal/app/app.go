// Package app holds the application state: the player registry and the single
// active game session. Every collaborator (the CLI, tests) goes through App.
package app

import (
	"context"
	"time"

	"github.com/vytor/dominoscore/internal/errors"
	"github.com/vytor/dominoscore/internal/logger"
	"github.com/vytor/dominoscore/internal/models"
	"github.com/vytor/dominoscore/internal/services"
)

// App is not safe for concurrent use; it is driven by one user at a time.
type App struct {
	players services.PlayerService
	history services.HistoryService
	stats   services.StatsService
	backup  services.BackupService

	registry models.Registry
	current  *models.GameScore
}

func New(players services.PlayerService, history services.HistoryService, stats services.StatsService, backup services.BackupService) *App {
	return &App{
		players:  players,
		history:  history,
		stats:    stats,
		backup:   backup,
		registry: models.Registry{},
	}
}

func (a *App) log(ctx context.Context) *logger.Logger {
	return logger.FromContext(ctx).WithPrefix("app")
}

// LoadPlayers reads the registry, migrates legacy history ids and rebuilds
// every player's record from history.
func (a *App) LoadPlayers(ctx context.Context) error {
	registry, err := a.players.Load(ctx)
	if err != nil {
		return err
	}
	if _, err := a.history.MigrateIDs(ctx); err != nil {
		return err
	}
	if err := a.stats.Apply(ctx, registry); err != nil {
		return err
	}
	a.registry = registry
	a.log(ctx).Info("loaded %d players", len(registry))
	return nil
}

func (a *App) SavePlayers(ctx context.Context) error {
	return a.players.Save(ctx, a.registry)
}

func (a *App) RegisterPlayer(ctx context.Context, name string) (*models.Player, error) {
	return a.players.Register(ctx, a.registry, name)
}

// Players returns the registry sorted by name.
func (a *App) Players() []models.Player {
	return a.registry.Sorted()
}

// CurrentGame returns a copy of the active session, or nil.
func (a *App) CurrentGame() *models.GameScore {
	if a.current == nil {
		return nil
	}
	return a.current.Clone()
}

// StartSession makes a new game among the registered players in names the
// active session. Unregistered names are dropped; fewer than two remaining
// is an error and leaves any active session in place.
func (a *App) StartSession(ctx context.Context, names []string) (*models.GameScore, error) {
	log := a.log(ctx)

	known := make([]string, 0, len(names))
	for _, name := range names {
		name = models.NormalizeName(name)
		if !a.registry.Has(name) {
			log.Warn("ignoring unregistered player %q", name)
			continue
		}
		known = append(known, name)
	}
	game, err := models.NewGameScore(known)
	if err != nil {
		log.Warn("not enough valid players to start game: %v", err)
		return nil, err
	}
	if a.current != nil {
		log.Warn("discarding unsaved game %s", a.current.ID)
	}
	a.current = game
	log.Info("started game %s with %v", game.ID, game.Players)
	return game.Clone(), nil
}

// AddPoints scores delta for name in the active session and returns the
// updated results.
func (a *App) AddPoints(ctx context.Context, name string, delta int) (models.Results, error) {
	log := a.log(ctx)

	if a.current == nil {
		err := errors.NewNoActiveSessionError()
		log.Warn("add points ignored: %v", err)
		return models.Results{}, err
	}
	if err := a.current.AddPoints(models.NormalizeName(name), delta); err != nil {
		log.Warn("add points ignored: %v", err)
		return a.current.Results(), err
	}
	res := a.current.Results()
	log.Debug("%s %+d, finished=%t", name, delta, res.Finished)
	return res, nil
}

// SaveSession stores the active session without ending it.
func (a *App) SaveSession(ctx context.Context) (models.GameRecord, error) {
	if a.current == nil {
		err := errors.NewNoActiveSessionError()
		a.log(ctx).Warn("save ignored: %v", err)
		return models.GameRecord{}, err
	}
	return a.history.Save(ctx, a.current)
}

// FinishSession stores the active session, clears the slot and re-syncs
// player records. It returns nil without error when nothing is active.
func (a *App) FinishSession(ctx context.Context) (*models.GameRecord, error) {
	log := a.log(ctx)

	if a.current == nil {
		log.Debug("finish ignored: no game in progress")
		return nil, nil
	}
	rec, err := a.history.Save(ctx, a.current)
	if err != nil {
		return nil, err
	}
	a.current = nil
	log.Info("finished game %s", rec.ID)
	if err := a.SyncStats(ctx); err != nil {
		return &rec, err
	}
	return &rec, nil
}

// ResumeSession makes a stored unfinished game the active session.
func (a *App) ResumeSession(ctx context.Context, id string) (*models.GameScore, error) {
	rec, err := a.history.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	game, err := models.GameFromRecord(*rec)
	if err != nil {
		return nil, err
	}
	if game.Finished() {
		return nil, errors.NewGameFinishedError(id)
	}
	if a.current != nil && a.current.ID != id {
		a.log(ctx).Warn("discarding unsaved game %s", a.current.ID)
	}
	a.current = game
	a.log(ctx).Info("resumed game %s", id)
	return game.Clone(), nil
}

// EditSession rewrites the totals and optionally the date of a stored game,
// then re-syncs player records. The active session cannot be edited here.
func (a *App) EditSession(ctx context.Context, id string, totals map[string]int, date *time.Time) (models.GameRecord, error) {
	if a.current != nil && a.current.ID == id {
		return models.GameRecord{}, errors.NewValidationError("id", "game is in progress")
	}
	rec, err := a.history.Edit(ctx, id, totals, date)
	if err != nil {
		return models.GameRecord{}, err
	}
	return rec, a.SyncStats(ctx)
}

// ListHistory returns stored games, newest first.
func (a *App) ListHistory(ctx context.Context) ([]models.GameRecord, error) {
	return a.history.Recent(ctx)
}

func (a *App) Game(ctx context.Context, id string) (*models.GameRecord, error) {
	return a.history.Get(ctx, id)
}

func (a *App) DeleteGames(ctx context.Context, ids []string) (int, error) {
	n, err := a.history.Delete(ctx, ids)
	if err != nil || n == 0 {
		return n, err
	}
	return n, a.SyncStats(ctx)
}

func (a *App) ComputeStats(ctx context.Context) (map[string]models.PlayerStats, error) {
	return a.stats.Compute(ctx)
}

// SyncStats overwrites every player's record from history and saves the registry.
func (a *App) SyncStats(ctx context.Context) error {
	if err := a.stats.Apply(ctx, a.registry); err != nil {
		return err
	}
	return a.players.Save(ctx, a.registry)
}

func (a *App) Standings(ctx context.Context, filter models.StandingFilter) ([]models.Standing, error) {
	return a.stats.Standings(ctx, filter)
}

func (a *App) HighScores(ctx context.Context, limit int) ([]models.HighScore, error) {
	return a.stats.HighScores(ctx, limit)
}

// Export copies the save documents to the export directory. An empty result
// means there was nothing to export.
func (a *App) Export(ctx context.Context) ([]string, error) {
	return a.backup.Export(ctx)
}

// Import restores the save documents from the export directory and reloads.
func (a *App) Import(ctx context.Context) ([]string, error) {
	copied, err := a.backup.Import(ctx)
	if err != nil || len(copied) == 0 {
		return copied, err
	}
	if err := a.LoadPlayers(ctx); err != nil {
		return copied, err
	}
	return copied, a.SavePlayers(ctx)
}

// Reset deletes all saved data and clears the in-memory state.
func (a *App) Reset(ctx context.Context) error {
	if err := a.players.Reset(ctx); err != nil {
		return err
	}
	if err := a.history.Reset(ctx); err != nil {
		return err
	}
	a.registry = models.Registry{}
	a.current = nil
	a.log(ctx).Info("all data reset")
	return nil
}
