package repository

import (
	"context"

	"github.com/vytor/dominoscore/internal/models"
)

// PlayerRepository persists the player registry as a single document.
type PlayerRepository interface {
	Load(ctx context.Context) (models.Registry, error)
	Save(ctx context.Context, registry models.Registry) error
	Reset(ctx context.Context) error
	Path() string
}

// GameRepository persists game history, at most one record per game id.
type GameRepository interface {
	List(ctx context.Context) ([]models.GameRecord, error)
	Get(ctx context.Context, id string) (*models.GameRecord, error)
	Upsert(ctx context.Context, record models.GameRecord) error
	Delete(ctx context.Context, ids []string) (int, error)
	BackfillIDs(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
	Path() string
}

// ReportRepository is a derived, disposable read model over game history.
type ReportRepository interface {
	Rebuild(ctx context.Context, records []models.GameRecord) error
	Standings(ctx context.Context, filter models.StandingFilter) ([]models.Standing, error)
	HighScores(ctx context.Context, limit int) ([]models.HighScore, error)
}
