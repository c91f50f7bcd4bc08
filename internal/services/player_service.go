package services

import (
	"context"

	"github.com/vytor/dominoscore/internal/errors"
	"github.com/vytor/dominoscore/internal/logger"
	"github.com/vytor/dominoscore/internal/models"
	"github.com/vytor/dominoscore/internal/repository"
)

// PlayerService handles the player registry.
type PlayerService interface {
	Load(ctx context.Context) (models.Registry, error)
	Register(ctx context.Context, registry models.Registry, name string) (*models.Player, error)
	Save(ctx context.Context, registry models.Registry) error
	Reset(ctx context.Context) error
}

type playerService struct {
	playerRepo repository.PlayerRepository
}

// NewPlayerService creates a new PlayerService
func NewPlayerService(playerRepo repository.PlayerRepository) PlayerService {
	return &playerService{playerRepo: playerRepo}
}

func (s *playerService) Load(ctx context.Context) (models.Registry, error) {
	log := logger.FromContext(ctx)
	log.Debug("loading players")

	registry, err := s.playerRepo.Load(ctx)
	if err != nil {
		log.Error("failed to load players: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return registry, nil
}

// Register adds name to registry and persists the whole registry. The
// registry is left unchanged when either step fails.
func (s *playerService) Register(ctx context.Context, registry models.Registry, name string) (*models.Player, error) {
	log := logger.FromContext(ctx)
	log.Debug("registering player: name=%q", name)

	p, err := registry.Add(name)
	if err != nil {
		log.Warn("rejected player name %q: %v", name, err)
		return nil, err
	}
	if err := s.playerRepo.Save(ctx, registry); err != nil {
		delete(registry, p.Name)
		log.Error("failed to save players: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("registered player %s", p.Name)
	return p, nil
}

func (s *playerService) Save(ctx context.Context, registry models.Registry) error {
	if err := s.playerRepo.Save(ctx, registry); err != nil {
		logger.FromContext(ctx).Error("failed to save players: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *playerService) Reset(ctx context.Context) error {
	if err := s.playerRepo.Reset(ctx); err != nil {
		logger.FromContext(ctx).Error("failed to reset players: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}
