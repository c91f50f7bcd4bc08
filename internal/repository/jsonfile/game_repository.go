package jsonfile

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/vytor/dominoscore/internal/logger"
	"github.com/vytor/dominoscore/internal/models"
	"github.com/vytor/dominoscore/internal/repository"
	"github.com/vytor/dominoscore/internal/store"
)

type gameRepository struct {
	path string
}

// NewGameRepository stores history as a JSON array of game records at path.
//
// Entries are kept as raw JSON between reads and writes, so an entry that
// cannot be decoded is hidden from List but survives every rewrite.
func NewGameRepository(path string) repository.GameRepository {
	return &gameRepository{path: path}
}

func (r *gameRepository) Path() string { return r.path }

func (r *gameRepository) readDocument(ctx context.Context) ([]json.RawMessage, error) {
	doc, err := store.Load(r.path, []json.RawMessage(nil))
	if err != nil {
		logger.FromContext(ctx).WithPrefix("game_repo").Error("failed to read games: %v", err)
		return nil, err
	}
	return doc, nil
}

// load reads the document and migrates legacy content in place: entries
// without an id get one, and repeated ids keep only their first entry. The
// document is rewritten once when anything changed; the number of assigned
// ids is returned.
func (r *gameRepository) load(ctx context.Context) ([]json.RawMessage, int, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")

	doc, err := r.readDocument(ctx)
	if err != nil {
		return nil, 0, err
	}
	assigned := 0
	for i, raw := range doc {
		patched, ok := withID(raw)
		if !ok {
			continue
		}
		doc[i] = patched
		assigned++
	}
	doc, dropped := firstPerID(doc)

	if assigned > 0 {
		log.Info("assigned ids to %d legacy games", assigned)
	}
	if dropped > 0 {
		log.Warn("dropped %d games with a repeated id", dropped)
	}
	if assigned > 0 || dropped > 0 {
		if err := store.Write(r.path, doc); err != nil {
			return nil, 0, err
		}
	}
	return doc, assigned, nil
}

// firstPerID keeps the first entry for every id. Entries without a readable
// id are kept as they are.
func firstPerID(doc []json.RawMessage) ([]json.RawMessage, int) {
	seen := make(map[string]bool, len(doc))
	out := make([]json.RawMessage, 0, len(doc))
	for _, raw := range doc {
		id := entryID(raw)
		if id != "" {
			if seen[id] {
				continue
			}
			seen[id] = true
		}
		out = append(out, raw)
	}
	return out, len(doc) - len(out)
}

// withID returns raw with a fresh id when raw is an object without a usable one.
func withID(raw json.RawMessage) (json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, false
	}
	if idRaw, ok := fields["id"]; ok {
		var id string
		if err := json.Unmarshal(idRaw, &id); err == nil && strings.TrimSpace(id) != "" {
			return nil, false
		}
	}
	idRaw, err := json.Marshal(uuid.NewString())
	if err != nil {
		return nil, false
	}
	fields["id"] = idRaw
	patched, err := json.Marshal(fields)
	if err != nil {
		return nil, false
	}
	return patched, true
}

func entryID(raw json.RawMessage) string {
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return ""
	}
	return head.ID
}

func (r *gameRepository) List(ctx context.Context) ([]models.GameRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")

	doc, _, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]models.GameRecord, 0, len(doc))
	for i, raw := range doc {
		var rec models.GameRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Warn("skipping unreadable game at index %d: %v", i, err)
			continue
		}
		if err := rec.Validate(); err != nil {
			log.Warn("skipping invalid game at index %d: %v", i, err)
			continue
		}
		records = append(records, rec.Normalized())
	}
	log.Debug("listed %d games", len(records))
	return records, nil
}

func (r *gameRepository) Get(ctx context.Context, id string) (*models.GameRecord, error) {
	records, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	logger.FromContext(ctx).WithPrefix("game_repo").Debug("game not found: id=%s", id)
	return nil, nil
}

// Upsert replaces the entry with the record's id or appends the record.
func (r *gameRepository) Upsert(ctx context.Context, record models.GameRecord) error {
	log := logger.FromContext(ctx).WithPrefix("game_repo")

	if err := record.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	doc, _, err := r.load(ctx)
	if err != nil {
		return err
	}

	out := make([]json.RawMessage, 0, len(doc)+1)
	replaced := false
	for _, entry := range doc {
		if entryID(entry) != record.ID {
			out = append(out, entry)
			continue
		}
		if !replaced {
			out = append(out, raw)
			replaced = true
		}
	}
	if !replaced {
		out = append(out, raw)
	}

	if err := store.Write(r.path, out); err != nil {
		log.Error("failed to save game %s: %v", record.ID, err)
		return err
	}
	log.Debug("saved game: id=%s replaced=%t", record.ID, replaced)
	return nil
}

// Delete removes every entry whose id is in ids. Nothing is written when no
// entry matches.
func (r *gameRepository) Delete(ctx context.Context, ids []string) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			drop[id] = true
		}
	}
	if len(drop) == 0 {
		return 0, nil
	}

	doc, _, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	kept := make([]json.RawMessage, 0, len(doc))
	for _, entry := range doc {
		if !drop[entryID(entry)] {
			kept = append(kept, entry)
		}
	}
	removed := len(doc) - len(kept)
	if removed == 0 {
		log.Debug("no games matched %d ids", len(drop))
		return 0, nil
	}
	if err := store.Write(r.path, kept); err != nil {
		log.Error("failed to delete games: %v", err)
		return 0, err
	}
	log.Info("deleted %d games", removed)
	return removed, nil
}

func (r *gameRepository) BackfillIDs(ctx context.Context) (int, error) {
	_, n, err := r.load(ctx)
	return n, err
}

func (r *gameRepository) Reset(ctx context.Context) error {
	logger.FromContext(ctx).WithPrefix("game_repo").Info("removing games document %s", r.path)
	return store.Remove(r.path)
}
