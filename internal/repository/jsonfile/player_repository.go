package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vytor/dominoscore/internal/logger"
	"github.com/vytor/dominoscore/internal/models"
	"github.com/vytor/dominoscore/internal/repository"
	"github.com/vytor/dominoscore/internal/store"
)

const playersDocumentVersion = 1

type playersDocument struct {
	Version int                    `json:"version"`
	Players map[string]playerEntry `json:"players"`
}

type playerEntry struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

type playerRepository struct {
	path string
}

// NewPlayerRepository stores the registry as {"version": 1, "players": {...}} at path.
func NewPlayerRepository(path string) repository.PlayerRepository {
	return &playerRepository{path: path}
}

func (r *playerRepository) Path() string { return r.path }

// Load never fails on bad content: an unusable document yields an empty
// registry and is moved aside, and individual bad entries are skipped.
func (r *playerRepository) Load(ctx context.Context) (models.Registry, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")

	top, err := store.Load(r.path, map[string]json.RawMessage(nil))
	if err != nil {
		log.Error("failed to read players: %v", err)
		return nil, err
	}
	if top == nil {
		log.Debug("no usable players document at %s", r.path)
		return models.Registry{}, nil
	}

	entries, err := playerEntries(top)
	if err != nil {
		log.Error("players save file has invalid schema: %v", err)
		if _, qErr := store.Quarantine(r.path); qErr != nil {
			log.Warn("could not move corrupt players file aside: %v", qErr)
		}
		return models.Registry{}, nil
	}

	registry := make(models.Registry, len(entries))
	for name, raw := range entries {
		p, err := decodePlayer(name, raw)
		if err != nil {
			log.Warn("skipping invalid player entry %q: %v", name, err)
			continue
		}
		if registry.Has(p.Name) {
			log.Warn("skipping duplicate player entry %q", name)
			continue
		}
		registry[p.Name] = p
	}
	log.Debug("loaded %d players", len(registry))
	return registry, nil
}

// playerEntries accepts the versioned document and the older flat
// {name: {name, wins, losses}} form.
func playerEntries(top map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	raw, versioned := top["players"]
	if !versioned {
		if _, ok := top["version"]; ok {
			return nil, errors.New(`"players" is missing`)
		}
		return top, nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		return nil, errors.New(`"players" is not an object`)
	}
	return entries, nil
}

func decodePlayer(name string, raw json.RawMessage) (*models.Player, error) {
	name = models.NormalizeName(name)
	if name == "" {
		return nil, errors.New("blank name")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, errors.New("entry is not an object")
	}
	wins, err := coerceCount(fields["wins"])
	if err != nil {
		return nil, fmt.Errorf("wins: %w", err)
	}
	losses, err := coerceCount(fields["losses"])
	if err != nil {
		return nil, fmt.Errorf("losses: %w", err)
	}
	return &models.Player{Name: name, Wins: wins, Losses: losses}, nil
}

// coerceCount turns a JSON number or numeric string into a non-negative int.
// An absent field counts as zero.
func coerceCount(raw json.RawMessage) (int, error) {
	if raw == nil {
		return 0, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	var n int
	switch x := v.(type) {
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) || math.Abs(x) > math.MaxInt32 {
			return 0, fmt.Errorf("%v is out of range", x)
		}
		n = int(x)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", x)
		}
		n = i
	default:
		return 0, fmt.Errorf("%s is not an integer", string(raw))
	}
	if n < 0 {
		return 0, fmt.Errorf("%d is negative", n)
	}
	return n, nil
}

func (r *playerRepository) Save(ctx context.Context, registry models.Registry) error {
	log := logger.FromContext(ctx).WithPrefix("player_repo")

	doc := playersDocument{
		Version: playersDocumentVersion,
		Players: make(map[string]playerEntry, len(registry)),
	}
	for name, p := range registry {
		doc.Players[name] = playerEntry{Wins: p.Wins, Losses: p.Losses}
	}
	if err := store.Write(r.path, doc); err != nil {
		log.Error("failed to save players: %v", err)
		return err
	}
	log.Debug("saved %d players", len(registry))
	return nil
}

func (r *playerRepository) Reset(ctx context.Context) error {
	logger.FromContext(ctx).WithPrefix("player_repo").Info("removing players document %s", r.path)
	return store.Remove(r.path)
}
