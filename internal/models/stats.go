package models

import "time"

// PlayerStats is a win/loss tally computed from finished games.
type PlayerStats struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// Standing is one row of the standings report.
type Standing struct {
	Player      string  `json:"player"`
	GamesPlayed int     `json:"games_played"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Ties        int     `json:"ties"`
	Unfinished  int     `json:"unfinished"`
	BestTotal   int     `json:"best_total"`
	AvgTotal    float64 `json:"avg_total"`
	WinRate     float64 `json:"win_rate"`
}

type StandingFilter struct {
	Player   string
	Since    *time.Time
	Limit    int
	OrderBy  string // "wins" (default), "win_rate", "games_played", "best_total"
	OrderDir string // "DESC" (default) or "ASC"
}

// HighScore is a single player's total in a single game.
type HighScore struct {
	GameID string    `json:"game_id"`
	Date   time.Time `json:"date"`
	Player string    `json:"player"`
	Total  int       `json:"total"`
	Won    bool      `json:"won"`
}
