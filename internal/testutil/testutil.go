package testutil

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/dominoscore/internal/db"
	"github.com/vytor/dominoscore/internal/models"
)

// NewTestDB creates an in-memory report database with all migrations applied.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	return database.DB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// TempDataDir returns a fresh directory for save files, removed after the test.
func TempDataDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// Record builds a stored game with the outcome derived from totals, the way
// a session would have written it.
func Record(id string, date time.Time, totals map[string]int) models.GameRecord {
	players := make([]string, 0, len(totals))
	copied := make(map[string]int, len(totals))
	for name, total := range totals {
		players = append(players, name)
		copied[name] = total
	}
	sort.Strings(players)
	g := &models.GameScore{ID: id, Date: date, Players: players, Totals: copied}
	return g.Record()
}

// FinishedRecord builds a two-player game. It is finished only when one of
// the totals reaches the threshold.
func FinishedRecord(id, p1 string, t1 int, p2 string, t2 int) models.GameRecord {
	date := time.Date(2024, time.March, 1, 20, 0, 0, 0, time.Local)
	g := &models.GameScore{
		ID:      id,
		Date:    date,
		Players: []string{p1, p2},
		Totals:  map[string]int{p1: t1, p2: t2},
	}
	return g.Record()
}
