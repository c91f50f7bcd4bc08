package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/vytor/dominoscore/internal/errors"
)

// MaxPoints ends a game once any participant's total reaches it.
const MaxPoints = 300

// Round is one entry of the scoring audit trail.
type Round struct {
	Player string `json:"player"`
	Points int    `json:"points"`
}

// GameScore is one scoring session. Finished, winner and losers are never
// stored on it; they are derived from Totals on every call.
type GameScore struct {
	ID      string
	Date    time.Time
	Players []string
	Totals  map[string]int
	Rounds  []Round
}

// Results is the outcome of a game as derived from its totals.
// Before the threshold is reached only Finished=false is meaningful.
type Results struct {
	Finished  bool     `json:"finished"`
	Winner    string   `json:"winner,omitempty"`
	Tied      []string `json:"tied,omitempty"`
	Losers    []string `json:"losers"`
	HighScore *int     `json:"high_score"`
}

func (r Results) HasWinner() bool {
	return r.Winner != ""
}

func (r Results) IsTie() bool {
	return len(r.Tied) > 1
}

// NewGameScore starts a session for the given names. Blank and repeated names
// are dropped; fewer than two remaining names is an error.
func NewGameScore(names []string) (*GameScore, error) {
	players := uniqueNames(names)
	if len(players) < 2 {
		return nil, errors.NewInsufficientPlayersError(len(players))
	}
	totals := make(map[string]int, len(players))
	for _, name := range players {
		totals[name] = 0
	}
	return &GameScore{
		ID:      uuid.NewString(),
		Date:    time.Now().Truncate(time.Microsecond),
		Players: players,
		Totals:  totals,
	}, nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = NormalizeName(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func (g *GameScore) IsParticipant(name string) bool {
	_, ok := g.Totals[name]
	return ok
}

// AddPoints applies delta (which may be negative) to name's total and logs the
// round. Finished games reject further points.
func (g *GameScore) AddPoints(name string, delta int) error {
	if !g.IsParticipant(name) {
		return errors.NewNotParticipantError(name)
	}
	if g.Finished() {
		return errors.NewGameFinishedError(g.ID)
	}
	g.Rounds = append(g.Rounds, Round{Player: name, Points: delta})
	g.Totals[name] += delta
	return nil
}

func (g *GameScore) Finished() bool {
	return reachedThreshold(g.Totals)
}

func (g *GameScore) Results() Results {
	return computeResults(g.Players, g.Totals)
}

// Clone returns a deep copy of the session.
func (g *GameScore) Clone() *GameScore {
	c := *g
	c.Players = append([]string(nil), g.Players...)
	c.Totals = make(map[string]int, len(g.Totals))
	for k, v := range g.Totals {
		c.Totals[k] = v
	}
	c.Rounds = append([]Round(nil), g.Rounds...)
	return &c
}

// Leader returns the current highest total and its holders, in player order.
func (g *GameScore) Leader() (int, []string) {
	return maxHolders(g.Players, g.Totals)
}

func reachedThreshold(totals map[string]int) bool {
	for _, total := range totals {
		if total >= MaxPoints {
			return true
		}
	}
	return false
}

func maxHolders(order []string, totals map[string]int) (int, []string) {
	high := 0
	var holders []string
	for i, name := range order {
		t := totals[name]
		switch {
		case i == 0 || t > high:
			high = t
			holders = []string{name}
		case t == high:
			holders = append(holders, name)
		}
	}
	return high, holders
}

// computeResults applies the tie rule: a unique maximum wins, a shared
// maximum produces no winner and the tied players are neither winners nor losers.
func computeResults(order []string, totals map[string]int) Results {
	if !reachedThreshold(totals) {
		return Results{Finished: false, Losers: []string{}}
	}
	high, holders := maxHolders(order, totals)
	top := make(map[string]bool, len(holders))
	for _, h := range holders {
		top[h] = true
	}
	losers := make([]string, 0, len(order))
	for _, name := range order {
		if !top[name] {
			losers = append(losers, name)
		}
	}
	res := Results{
		Finished:  true,
		Losers:    losers,
		HighScore: &high,
	}
	if len(holders) == 1 {
		res.Winner = holders[0]
	} else {
		res.Tied = holders
	}
	return res
}
