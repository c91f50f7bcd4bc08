package models

import (
	"sort"
	"strings"

	"github.com/vytor/dominoscore/internal/errors"
)

// Player is a registered participant. Wins and Losses are a cache rebuilt from
// game history and are never incremented during play.
type Player struct {
	Name   string `json:"-"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

func NewPlayer(name string) *Player {
	return &Player{Name: name}
}

func (p *Player) ResetStats() {
	p.Wins = 0
	p.Losses = 0
}

func (p Player) GamesDecided() int {
	return p.Wins + p.Losses
}

// WinRate is a percentage rounded to one decimal place, 0 when no games are decided.
func (p Player) WinRate() float64 {
	n := p.GamesDecided()
	if n == 0 {
		return 0
	}
	return float64(int(1000.0*float64(p.Wins)/float64(n)+0.5)) / 10
}

// NormalizeName trims surrounding whitespace. Names are otherwise case-sensitive.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// Registry maps player name to player.
type Registry map[string]*Player

func (r Registry) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// Add registers a new player with a zero record.
func (r Registry) Add(name string) (*Player, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, errors.NewInvalidNameError(name, "is empty")
	}
	if r.Has(name) {
		return nil, errors.NewInvalidNameError(name, "is already registered")
	}
	p := NewPlayer(name)
	r[name] = p
	return p, nil
}

// Names returns registered names in lexical order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sorted returns copies of the players ordered by name.
func (r Registry) Sorted() []Player {
	players := make([]Player, 0, len(r))
	for _, name := range r.Names() {
		players = append(players, *r[name])
	}
	return players
}
