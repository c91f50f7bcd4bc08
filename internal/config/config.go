package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/vytor/dominoscore/internal/logger"
)

type Config struct {
	DataDir     string `env:"DOMINO_DATA_DIR" envDefault:"."`
	PlayersFile string `env:"DOMINO_PLAYERS_FILE" envDefault:"players.dom"`
	GamesFile   string `env:"DOMINO_GAMES_FILE" envDefault:"games.dom"`
	ExportDir   string `env:"DOMINO_EXPORT_DIR" envDefault:"exports"`
	ReportDB    string `env:"DOMINO_REPORT_DB" envDefault:"report.db"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFile     string `env:"LOG_FILE" envDefault:"logs/domino.log"`
	LogColors   bool   `env:"LOG_COLORS" envDefault:"false"`
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() (Config, error) {
	// Ignore error so the app still starts when .env is absent.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("DOMINO_DATA_DIR cannot be empty"))
	}
	if c.PlayersFile == "" {
		errs = append(errs, errors.New("DOMINO_PLAYERS_FILE cannot be empty"))
	}
	if c.GamesFile == "" {
		errs = append(errs, errors.New("DOMINO_GAMES_FILE cannot be empty"))
	}
	if c.PlayersFile != "" && c.PlayersFile == c.GamesFile {
		errs = append(errs, errors.New("DOMINO_PLAYERS_FILE and DOMINO_GAMES_FILE must differ"))
	}
	if c.ExportDir == "" {
		errs = append(errs, errors.New("DOMINO_EXPORT_DIR cannot be empty"))
	}
	if c.ReportDB == "" {
		errs = append(errs, errors.New("DOMINO_REPORT_DB cannot be empty"))
	}
	if !logger.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	return errors.Join(errs...)
}

func (c Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// PlayersPath is the players document location.
func (c Config) PlayersPath() string { return c.resolve(c.PlayersFile) }

// GamesPath is the games document location.
func (c Config) GamesPath() string { return c.resolve(c.GamesFile) }

// ExportPath is the directory exports are written to and imported from.
func (c Config) ExportPath() string { return c.resolve(c.ExportDir) }

// ReportDBPath is the derived report database. ":memory:" is passed through.
func (c Config) ReportDBPath() string {
	if c.ReportDB == ":memory:" {
		return c.ReportDB
	}
	return c.resolve(c.ReportDB)
}

// LogPath is the log file, or "" to log to stderr.
func (c Config) LogPath() string {
	if c.LogFile == "" {
		return ""
	}
	return c.resolve(c.LogFile)
}
