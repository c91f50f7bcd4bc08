package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vytor/dominoscore/internal/app"
	"github.com/vytor/dominoscore/internal/config"
	"github.com/vytor/dominoscore/internal/db"
	"github.com/vytor/dominoscore/internal/logger"
	"github.com/vytor/dominoscore/internal/repository/jsonfile"
	"github.com/vytor/dominoscore/internal/repository/sqlite"
	"github.com/vytor/dominoscore/internal/services"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, in io.Reader, out io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	// Initialize logger
	opts := []logger.Option{
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(cfg.LogColors),
	}
	if path := cfg.LogPath(); path != "" {
		f, err := logger.OpenFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot open log file: %v\n", err)
			return 1
		}
		defer f.Close()
		opts = append(opts, logger.WithOutput(f))
	}
	log := logger.New(opts...)
	logger.SetDefault(log)
	ctx := logger.NewContext(context.Background(), log)

	log.Info("domino score keeper starting")
	if log.Enabled(logger.DEBUG) {
		log.WithFields(map[string]any{
			"data_dir":     cfg.DataDir,
			"players_file": cfg.PlayersPath(),
			"games_file":   cfg.GamesPath(),
			"export_dir":   cfg.ExportPath(),
			"report_db":    cfg.ReportDBPath(),
		}).Debug("resolved paths")
	}

	// Open report database
	database, err := db.Open(ctx, cfg.ReportDBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open report database: %v\n", err)
		return 1
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Initialize repositories and services
	playerRepo := jsonfile.NewPlayerRepository(cfg.PlayersPath())
	gameRepo := jsonfile.NewGameRepository(cfg.GamesPath())
	reportRepo := sqlite.NewReportRepository(database.DB)

	a := app.New(
		services.NewPlayerService(playerRepo),
		services.NewHistoryService(gameRepo),
		services.NewStatsService(gameRepo, reportRepo),
		services.NewBackupService(cfg.ExportPath(), playerRepo.Path(), gameRepo.Path()),
	)
	if err := a.LoadPlayers(ctx); err != nil {
		fmt.Fprintf(out, "could not load saved data: %v\n", err)
		return 1
	}

	c := &cli{app: a, in: in, out: out}
	if err := c.dispatch(ctx, args); err != nil {
		log.Error("command failed: %v", err)
		fmt.Fprintln(out, errorStyle.Render(err.Error()))
		return 1
	}
	return 0
}
