package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/dominoscore/internal/errors"
	"github.com/vytor/dominoscore/internal/models"
)

func newGame(t *testing.T, names ...string) *models.GameScore {
	t.Helper()
	g, err := models.NewGameScore(names)
	require.NoError(t, err)
	return g
}

func TestNewGameScore_InitialisesTotals(t *testing.T) {
	g := newGame(t, "Alice", " Bob ", "Alice", "")

	assert.NotEmpty(t, g.ID)
	assert.False(t, g.Date.IsZero())
	assert.Equal(t, []string{"Alice", "Bob"}, g.Players)
	assert.Equal(t, map[string]int{"Alice": 0, "Bob": 0}, g.Totals)
	assert.Empty(t, g.Rounds)
	assert.False(t, g.Finished())
}

func TestNewGameScore_InsufficientPlayers(t *testing.T) {
	tests := []struct {
		name  string
		names []string
	}{
		{"none", nil},
		{"one", []string{"Alice"}},
		{"duplicate collapses", []string{"Alice", "Alice"}},
		{"blank ignored", []string{"Alice", "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := models.NewGameScore(tt.names)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, errors.ErrInsufficientPlayers)
		})
	}
}

func TestNewGameScore_UniqueIDs(t *testing.T) {
	a := newGame(t, "Alice", "Bob")
	b := newGame(t, "Alice", "Bob")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAddPoints_TotalsEqualSumOfDeltas(t *testing.T) {
	g := newGame(t, "Alice", "Bob", "Carol")
	deltas := []struct {
		player string
		points int
	}{
		{"Alice", 10}, {"Bob", 20}, {"Alice", -5}, {"Carol", 5}, {"Bob", -5}, {"Alice", 15},
	}

	want := map[string]int{}
	for _, d := range deltas {
		require.NoError(t, g.AddPoints(d.player, d.points))
		want[d.player] += d.points
	}

	assert.Equal(t, want["Alice"], g.Totals["Alice"])
	assert.Equal(t, want["Bob"], g.Totals["Bob"])
	assert.Equal(t, want["Carol"], g.Totals["Carol"])
	assert.Len(t, g.Rounds, len(deltas))
	assert.Equal(t, models.Round{Player: "Bob", Points: -5}, g.Rounds[4])
}

func TestAddPoints_NegativeTotalsAllowed(t *testing.T) {
	g := newGame(t, "Alice", "Bob")
	require.NoError(t, g.AddPoints("Bob", -5))
	require.NoError(t, g.AddPoints("Bob", -5))
	assert.Equal(t, -10, g.Totals["Bob"])
}

func TestAddPoints_NonParticipant(t *testing.T) {
	g := newGame(t, "Alice", "Bob")

	err := g.AddPoints("Mallory", 10)
	assert.ErrorIs(t, err, errors.ErrNotParticipant)
	assert.NotContains(t, g.Totals, "Mallory")
	assert.Empty(t, g.Rounds)
}

func TestAddPoints_RejectedOnceFinished(t *testing.T) {
	g := newGame(t, "Alice", "Bob")
	require.NoError(t, g.AddPoints("Alice", 300))

	err := g.AddPoints("Bob", 50)
	assert.ErrorIs(t, err, errors.ErrGameFinished)
	assert.Equal(t, 0, g.Totals["Bob"])
	assert.Len(t, g.Rounds, 1)
}

func TestFinished_TracksThreshold(t *testing.T) {
	g := newGame(t, "Alice", "Bob")

	require.NoError(t, g.AddPoints("Alice", 295))
	assert.False(t, g.Finished())

	require.NoError(t, g.AddPoints("Alice", 5))
	assert.True(t, g.Finished())

	// An edit that lowers every total reopens the game.
	g.Totals["Alice"] = 120
	assert.False(t, g.Finished())
}

func TestResults_BeforeThreshold(t *testing.T) {
	g := newGame(t, "Alice", "Bob")
	require.NoError(t, g.AddPoints("Alice", 100))

	res := g.Results()
	assert.False(t, res.Finished)
	assert.False(t, res.HasWinner())
	assert.Empty(t, res.Losers)
	assert.Nil(t, res.HighScore)
}

func TestResults_SoleWinner(t *testing.T) {
	g := newGame(t, "Alice", "Bob", "Carol")
	require.NoError(t, g.AddPoints("Bob", 40))
	require.NoError(t, g.AddPoints("Alice", 300))

	res := g.Results()
	assert.True(t, res.Finished)
	assert.Equal(t, "Alice", res.Winner)
	assert.Equal(t, []string{"Bob", "Carol"}, res.Losers)
	require.NotNil(t, res.HighScore)
	assert.Equal(t, 300, *res.HighScore)
}

func TestResults_FullTie(t *testing.T) {
	g := newGame(t, "Alice", "Bob")
	g.Totals["Alice"] = 300
	g.Totals["Bob"] = 300

	res := g.Results()
	assert.True(t, res.Finished)
	assert.False(t, res.HasWinner())
	assert.True(t, res.IsTie())
	assert.Equal(t, []string{"Alice", "Bob"}, res.Tied)
	assert.Empty(t, res.Losers)
}

func TestResults_PartialTie(t *testing.T) {
	g := newGame(t, "Alice", "Bob", "Carol")
	g.Totals["Alice"] = 310
	g.Totals["Bob"] = 310
	g.Totals["Carol"] = 90

	res := g.Results()
	assert.True(t, res.Finished)
	assert.Empty(t, res.Winner)
	assert.ElementsMatch(t, []string{"Alice", "Bob"}, res.Tied)
	assert.Equal(t, []string{"Carol"}, res.Losers)
	assert.Equal(t, 310, *res.HighScore)
}

func TestResults_WinnerBelowOtherHighWhenAllNegative(t *testing.T) {
	g := newGame(t, "Alice", "Bob")
	g.Totals["Alice"] = -20
	g.Totals["Bob"] = 300

	res := g.Results()
	assert.Equal(t, "Bob", res.Winner)
	assert.Equal(t, []string{"Alice"}, res.Losers)
}

func TestRecord_RoundTrip(t *testing.T) {
	g := newGame(t, "Bob", "Alice")
	require.NoError(t, g.AddPoints("Alice", 150))
	require.NoError(t, g.AddPoints("Bob", 45))
	require.NoError(t, g.AddPoints("Alice", 155))

	data, err := json.Marshal(g.Record())
	require.NoError(t, err)

	var rec models.GameRecord
	require.NoError(t, json.Unmarshal(data, &rec))

	restored, err := models.GameFromRecord(rec)
	require.NoError(t, err)

	assert.Equal(t, g.ID, restored.ID)
	assert.True(t, g.Date.Equal(restored.Date), "date %v != %v", g.Date, restored.Date)
	assert.Equal(t, g.Totals, restored.Totals)
	assert.Equal(t, g.Rounds, restored.Rounds)
	assert.Equal(t, g.Results().Winner, restored.Results().Winner)
	assert.ElementsMatch(t, g.Results().Losers, restored.Results().Losers)
	assert.Equal(t, *g.Results().HighScore, *restored.Results().HighScore)
}

func TestRecord_WireShape(t *testing.T) {
	g := newGame(t, "Alice", "Bob")
	require.NoError(t, g.AddPoints("Alice", 300))

	data, err := json.Marshal(g.Record())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, g.ID, doc["id"])
	assert.Equal(t, true, doc["finished"])
	assert.Equal(t, "Alice", doc["winner"])
	assert.Equal(t, []any{"Bob"}, doc["losers"])
	assert.Equal(t, map[string]any{"Alice": float64(300), "Bob": float64(0)}, doc["totals"])
}

func TestRecord_UnfinishedHasNullWinnerAndEmptyLosers(t *testing.T) {
	g := newGame(t, "Alice", "Bob")

	data, err := json.Marshal(g.Record())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"winner":null`)
	assert.Contains(t, string(data), `"losers":[]`)
	assert.NotContains(t, string(data), `"rounds"`)
}

func TestOutcome_IgnoresStaleStoredFields(t *testing.T) {
	stale := "Bob"
	rec := models.GameRecord{
		ID:       "g1",
		Date:     "2024-05-01T20:00:00",
		Totals:   map[string]int{"Alice": 120, "Bob": 200},
		Finished: true,
		Winner:   &stale,
		Losers:   []string{"Alice"},
	}

	res := rec.Outcome()
	assert.False(t, res.Finished)
	assert.False(t, res.HasWinner())
}

func TestGameFromRecord_Validation(t *testing.T) {
	tests := []struct {
		name string
		rec  models.GameRecord
		code string
	}{
		{"missing id", models.GameRecord{Date: "2024-05-01", Totals: map[string]int{"A": 1, "B": 2}}, errors.ErrCodeValidation},
		{"empty totals", models.GameRecord{ID: "x", Date: "2024-05-01"}, errors.ErrCodeValidation},
		{"single player", models.GameRecord{ID: "x", Date: "2024-05-01", Totals: map[string]int{"A": 1}}, errors.ErrCodeInsufficientPlayers},
		{"bad date", models.GameRecord{ID: "x", Date: "Corrupted Date", Totals: map[string]int{"A": 1, "B": 2}}, errors.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := models.GameFromRecord(tt.rec)
			assert.Nil(t, g)
			assert.Equal(t, tt.code, errors.Code(err))
		})
	}
}

func TestValidate_RejectsNamesThatCollideWhenTrimmed(t *testing.T) {
	rec := models.GameRecord{ID: "x", Date: "2024-05-01", Totals: map[string]int{"Carol": 300, " Carol": 10}}
	assert.Equal(t, errors.ErrCodeValidation, errors.Code(rec.Validate()))
}

func TestNormalized_TrimsEveryName(t *testing.T) {
	carol := " Carol "
	rec := models.GameRecord{
		ID:     "x",
		Date:   "2024-05-01",
		Totals: map[string]int{" Carol ": 300, "Bob ": 10},
		Winner: &carol,
		Losers: []string{"Bob "},
		Rounds: []models.Round{{Player: " Carol ", Points: 300}},
	}

	got := rec.Normalized()
	assert.Equal(t, map[string]int{"Carol": 300, "Bob": 10}, got.Totals)
	assert.Equal(t, "Carol", *got.Winner)
	assert.Equal(t, []string{"Bob"}, got.Losers)
	assert.Equal(t, "Carol", got.Rounds[0].Player)
	assert.Equal(t, " Carol ", *rec.Winner, "the original is left alone")
	assert.Contains(t, rec.Totals, " Carol ")

	g, err := models.GameFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Carol"}, g.Players)
	assert.True(t, g.IsParticipant("Carol"))
}

func TestParseDate_AcceptsLegacyLayouts(t *testing.T) {
	tests := []string{
		"2024-05-01T20:15:30.123456",
		"2024-05-01T20:15:30",
		"2024-05-01T20:15:30.123456+02:00",
		"2024-05-01T20:15:30Z",
		"2024-05-01 20:15:30",
		"2024-05-01T20:15",
		"2024-05-01",
	}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			d, err := models.ParseDate(s)
			require.NoError(t, err)
			assert.Equal(t, 2024, d.Year())
			assert.Equal(t, time.May, d.Month())
		})
	}

	_, err := models.ParseDate("yesterday")
	assert.Error(t, err)
}

func TestClone_IsIndependent(t *testing.T) {
	g := newGame(t, "Alice", "Bob")
	require.NoError(t, g.AddPoints("Alice", 25))

	c := g.Clone()
	require.NoError(t, c.AddPoints("Bob", 40))

	assert.Equal(t, 0, g.Totals["Bob"])
	assert.Len(t, g.Rounds, 1)
	assert.Len(t, c.Rounds, 2)
	assert.Equal(t, g.ID, c.ID)
}
