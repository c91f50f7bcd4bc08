package sqlite

import (
	"context"
	"database/sql"
	"slices"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/dominoscore/internal/logger"
	"github.com/vytor/dominoscore/internal/models"
	"github.com/vytor/dominoscore/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

const defaultHighScoreLimit = 10

// Per-player outcome of one game as stored in game_scores.outcome.
const (
	outcomeWin  = "win"
	outcomeLoss = "loss"
	outcomeTie  = "tie"
	outcomeVoid = "void" // below a shared maximum: neither a win nor a loss
	outcomeOpen = "open"
)

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a ReportRepository over a migrated report database.
func NewReportRepository(db *sql.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

// Rebuild replaces the report tables with the given history.
func (r *reportRepository) Rebuild(ctx context.Context, records []models.GameRecord) error {
	log := logger.FromContext(ctx).WithPrefix("report_repo")
	log.Debug("rebuilding report from %d games", len(records))

	inserted := 0
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM game_scores`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM games`); err != nil {
			return err
		}

		seen := make(map[string]bool, len(records))
		for _, rec := range records {
			if err := rec.Validate(); err != nil {
				log.Warn("skipping invalid game: %v", err)
				continue
			}
			if seen[rec.ID] {
				log.Warn("skipping duplicate game id=%s", rec.ID)
				continue
			}
			seen[rec.ID] = true

			if err := insertGame(ctx, tx, rec); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		log.Error("failed to rebuild report: %v", err)
		return err
	}
	log.Debug("report rebuilt with %d games", inserted)
	return nil
}

func insertGame(ctx context.Context, tx *sql.Tx, rec models.GameRecord) error {
	res := rec.Outcome()

	var playedAt any
	if t, err := models.ParseDate(rec.Date); err == nil {
		playedAt = t.Unix()
	}
	var winner, highScore any
	if res.HasWinner() {
		winner = res.Winner
	}
	if res.HighScore != nil {
		highScore = *res.HighScore
	}

	query, args, err := sqlBuilder.Insert("games").
		Columns("id", "played_at", "finished", "winner", "high_score").
		Values(rec.ID, playedAt, res.Finished, winner, highScore).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	scores := sqlBuilder.Insert("game_scores").Columns("game_id", "player", "total", "outcome")
	for _, name := range rec.Participants() {
		scores = scores.Values(rec.ID, name, rec.Totals[name], playerOutcome(res, name))
	}
	query, args, err = scores.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

func playerOutcome(res models.Results, name string) string {
	switch {
	case !res.Finished:
		return outcomeOpen
	case res.Winner == name:
		return outcomeWin
	case slices.Contains(res.Tied, name):
		return outcomeTie
	case res.HasWinner():
		return outcomeLoss
	default:
		return outcomeVoid
	}
}

func countOutcome(outcome, alias string) string {
	return "SUM(CASE WHEN s.outcome = '" + outcome + "' THEN 1 ELSE 0 END) AS " + alias
}

func (r *reportRepository) Standings(ctx context.Context, filter models.StandingFilter) ([]models.Standing, error) {
	log := logger.FromContext(ctx).WithPrefix("report_repo")
	log.Debug("querying standings: player=%s, limit=%d, order_by=%s, order_dir=%s",
		filter.Player, filter.Limit, filter.OrderBy, filter.OrderDir)

	// Validate and set default ordering
	orderBy := "wins"
	switch filter.OrderBy {
	case "win_rate", "games_played", "best_total":
		orderBy = filter.OrderBy
	}
	orderDir := "DESC"
	if filter.OrderDir == "ASC" {
		orderDir = "ASC"
	}

	query := sqlBuilder.Select(
		"s.player",
		"COUNT(*) AS games_played",
		countOutcome(outcomeWin, "wins"),
		countOutcome(outcomeLoss, "losses"),
		countOutcome(outcomeTie, "ties"),
		countOutcome(outcomeOpen, "unfinished"),
		"MAX(s.total) AS best_total",
		"ROUND(AVG(s.total), 2) AS avg_total",
		"COALESCE(ROUND(100.0 * SUM(CASE WHEN s.outcome = 'win' THEN 1 ELSE 0 END) / "+
			"NULLIF(SUM(CASE WHEN s.outcome IN ('win', 'loss') THEN 1 ELSE 0 END), 0), 1), 0) AS win_rate",
	).
		From("game_scores s").
		Join("games g ON g.id = s.game_id").
		GroupBy("s.player").
		OrderBy(orderBy+" "+orderDir, "s.player ASC")

	if filter.Player != "" {
		query = query.Where(squirrel.Eq{"s.player": filter.Player})
	}
	if filter.Since != nil {
		query = query.Where(squirrel.GtOrEq{"g.played_at": filter.Since.Unix()})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build standings query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query standings: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.Standing
	for rows.Next() {
		var st models.Standing
		if err := rows.Scan(&st.Player, &st.GamesPlayed, &st.Wins, &st.Losses, &st.Ties,
			&st.Unfinished, &st.BestTotal, &st.AvgTotal, &st.WinRate); err != nil {
			log.Error("failed to scan standing: %v", err)
			return nil, err
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	log.Debug("standings returned %d players", len(out))
	return out, nil
}

func (r *reportRepository) HighScores(ctx context.Context, limit int) ([]models.HighScore, error) {
	log := logger.FromContext(ctx).WithPrefix("report_repo")
	if limit <= 0 {
		limit = defaultHighScoreLimit
	}

	sqlStr, args, err := sqlBuilder.Select("s.game_id", "g.played_at", "s.player", "s.total", "s.outcome").
		From("game_scores s").
		Join("games g ON g.id = s.game_id").
		OrderBy("s.total DESC", "g.played_at DESC", "s.player ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query high scores: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.HighScore
	for rows.Next() {
		var (
			hs       models.HighScore
			playedAt sql.NullInt64
			outcome  string
		)
		if err := rows.Scan(&hs.GameID, &playedAt, &hs.Player, &hs.Total, &outcome); err != nil {
			log.Error("failed to scan high score: %v", err)
			return nil, err
		}
		if playedAt.Valid {
			hs.Date = time.Unix(playedAt.Int64, 0)
		}
		hs.Won = outcome == outcomeWin
		out = append(out, hs)
	}
	return out, rows.Err()
}
