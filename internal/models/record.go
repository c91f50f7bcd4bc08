package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vytor/dominoscore/internal/errors"
)

// DateLayout is the ISO-8601 form written to the games document.
const DateLayout = "2006-01-02T15:04:05.000000Z07:00"

// Layouts accepted when reading dates. Zone-less forms are what older
// documents contain and are read as local time.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses an ISO-8601 date as written by this or older versions.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// GameRecord is the persisted form of a GameScore, one element of the games
// document. Finished, Winner and Losers are denormalised copies of the outcome
// and are re-derived from Totals whenever the record is read.
type GameRecord struct {
	ID       string         `json:"id"`
	Date     string         `json:"date"`
	Totals   map[string]int `json:"totals"`
	Finished bool           `json:"finished"`
	Winner   *string        `json:"winner"`
	Losers   []string       `json:"losers"`
	Rounds   []Round        `json:"rounds,omitempty"`
}

// Record serializes the game with its current outcome.
func (g *GameScore) Record() GameRecord {
	res := g.Results()
	totals := make(map[string]int, len(g.Totals))
	for k, v := range g.Totals {
		totals[k] = v
	}
	rec := GameRecord{
		ID:       g.ID,
		Date:     FormatDate(g.Date),
		Totals:   totals,
		Finished: res.Finished,
		Losers:   res.Losers,
	}
	if res.HasWinner() {
		w := res.Winner
		rec.Winner = &w
	}
	if len(g.Rounds) > 0 {
		rec.Rounds = append([]Round(nil), g.Rounds...)
	}
	return rec
}

// Participants returns the names in Totals in lexical order.
func (r GameRecord) Participants() []string {
	names := make([]string, 0, len(r.Totals))
	for name := range r.Totals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Outcome recomputes the results from Totals, ignoring the stored fields.
func (r GameRecord) Outcome() Results {
	return computeResults(r.Participants(), r.Totals)
}

// Validate checks the fields every stored game must have.
func (r GameRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.NewValidationError("id", "cannot be empty")
	}
	if len(r.Totals) == 0 {
		return errors.NewValidationError("totals", "cannot be empty")
	}
	seen := make(map[string]bool, len(r.Totals))
	for name := range r.Totals {
		name = NormalizeName(name)
		if name == "" {
			return errors.NewValidationError("totals", "contains a blank player name")
		}
		if seen[name] {
			return errors.NewValidationError("totals", fmt.Sprintf("player %q appears more than once", name))
		}
		seen[name] = true
	}
	return nil
}

// Normalized returns a copy of r with every player name trimmed the way
// registered names are. Validate must have passed, so no two names collide.
func (r GameRecord) Normalized() GameRecord {
	out := r
	out.Totals = make(map[string]int, len(r.Totals))
	for name, total := range r.Totals {
		out.Totals[NormalizeName(name)] = total
	}
	if r.Winner != nil {
		w := NormalizeName(*r.Winner)
		out.Winner = &w
	}
	if r.Losers != nil {
		out.Losers = make([]string, len(r.Losers))
		for i, name := range r.Losers {
			out.Losers[i] = NormalizeName(name)
		}
	}
	if r.Rounds != nil {
		out.Rounds = make([]Round, len(r.Rounds))
		for i, round := range r.Rounds {
			out.Rounds[i] = Round{Player: NormalizeName(round.Player), Points: round.Points}
		}
	}
	return out
}

// GameFromRecord rebuilds a playable session from its stored form.
func GameFromRecord(r GameRecord) (*GameScore, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	r = r.Normalized()
	if len(r.Totals) < 2 {
		return nil, errors.NewInsufficientPlayersError(len(r.Totals))
	}
	date, err := ParseDate(r.Date)
	if err != nil {
		return nil, errors.NewValidationError("date", err.Error())
	}
	totals := make(map[string]int, len(r.Totals))
	for k, v := range r.Totals {
		totals[k] = v
	}
	return &GameScore{
		ID:      r.ID,
		Date:    date,
		Players: r.Participants(),
		Totals:  totals,
		Rounds:  append([]Round(nil), r.Rounds...),
	}, nil
}
