package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/vytor/dominoscore/internal/app"
	"github.com/vytor/dominoscore/internal/errors"
	"github.com/vytor/dominoscore/internal/models"
)

const usage = `usage: domino <command> [arguments]

commands:
  players                          list registered players
  register NAME...                 register new players
  play NAME NAME...                start a game and keep score interactively
  resume ID                        continue a saved unfinished game
  history                          list games, newest first
  show ID                          show one game with its rounds
  edit [-date DATE] ID NAME=PTS... rewrite the totals of a stored game
  delete ID...                     delete games
  stats                            win/loss record computed from history
  standings [flags]                standings report (-player, -since, -limit, -order, -asc)
  highscores [-limit N]            best single-game totals
  export                           copy save files to the export directory
  import                           restore save files from the export directory
  reset -yes                       delete all players and games`

type cli struct {
	app *app.App
	in  io.Reader
	out io.Writer
}

func (c *cli) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *cli) printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.println(usage)
		return nil
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "players":
		c.println(renderPlayers(c.app.Players()))
		return nil
	case "register":
		return c.register(ctx, rest)
	case "play":
		return c.play(ctx, rest)
	case "resume":
		return c.resume(ctx, rest)
	case "history":
		return c.history(ctx)
	case "show":
		return c.show(ctx, rest)
	case "edit":
		return c.edit(ctx, rest)
	case "delete":
		return c.delete(ctx, rest)
	case "stats":
		stats, err := c.app.ComputeStats(ctx)
		if err != nil {
			return err
		}
		c.println(renderStats(stats))
		return nil
	case "standings":
		return c.standings(ctx, rest)
	case "highscores":
		return c.highScores(ctx, rest)
	case "export":
		return c.export(ctx)
	case "import":
		return c.importFiles(ctx)
	case "reset":
		return c.reset(ctx, rest)
	case "help", "-h", "--help":
		c.println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}

func (c *cli) register(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return errors.NewValidationError("name", "at least one name is required")
	}
	for _, name := range names {
		p, err := c.app.RegisterPlayer(ctx, name)
		if err != nil {
			return err
		}
		c.printf("registered %s\n", p.Name)
	}
	return nil
}

func (c *cli) play(ctx context.Context, names []string) error {
	game, err := c.app.StartSession(ctx, names)
	if err != nil {
		return err
	}
	c.printf("game %s started\n", game.ID)
	return c.scoreLoop(ctx)
}

func (c *cli) resume(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewValidationError("id", "exactly one game id is required")
	}
	game, err := c.app.ResumeSession(ctx, args[0])
	if err != nil {
		return err
	}
	c.printf("game %s resumed\n", game.ID)
	return c.scoreLoop(ctx)
}

const playHelp = `  NAME POINTS   add points (negative for penalties)
  score         show totals
  rounds        show every round so far
  save          save without finishing
  finish        record the game now
  quit          leave without saving`

// scoreLoop reads commands for the active session until it is finished,
// saved and left, or abandoned.
func (c *cli) scoreLoop(ctx context.Context) error {
	c.println(renderGame(c.app.CurrentGame()))
	c.println(playHelp)

	scanner := bufio.NewScanner(c.in)
	for {
		c.printf("> ")
		if !scanner.Scan() {
			c.println()
			if err := scanner.Err(); err != nil {
				return err
			}
			c.println("input closed, game left unsaved")
			return nil
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "score":
			c.println(renderGame(c.app.CurrentGame()))
		case "rounds":
			c.println(renderRounds(c.app.CurrentGame().Rounds))
		case "save":
			rec, err := c.app.SaveSession(ctx)
			if err != nil {
				return err
			}
			c.printf("saved game %s, resume with: domino resume %s\n", rec.ID, rec.ID)
			return nil
		case "finish":
			return c.finish(ctx)
		case "quit", "exit":
			c.println("game left unsaved")
			return nil
		case "help", "?":
			c.println(playHelp)
		default:
			if err := c.addPoints(ctx, fields); err != nil {
				c.println(errorStyle.Render(err.Error()))
				continue
			}
			game := c.app.CurrentGame()
			c.println(renderGame(game))
			if game.Finished() {
				return c.finish(ctx)
			}
		}
	}
}

// addPoints accepts "NAME POINTS" where NAME may contain spaces.
func (c *cli) addPoints(ctx context.Context, fields []string) error {
	if len(fields) < 2 {
		return errors.NewValidationError("input", "expected NAME POINTS")
	}
	points, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return errors.NewValidationError("points", fmt.Sprintf("%q is not a whole number", fields[len(fields)-1]))
	}
	name := strings.Join(fields[:len(fields)-1], " ")
	_, err = c.app.AddPoints(ctx, name, points)
	return err
}

func (c *cli) finish(ctx context.Context) error {
	rec, err := c.app.FinishSession(ctx)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	c.printf("game %s recorded: %s\n", rec.ID, describeResults(rec.Outcome()))
	c.println(renderPlayers(c.app.Players()))
	return nil
}

func (c *cli) history(ctx context.Context) error {
	records, err := c.app.ListHistory(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		c.println("no games yet")
		return nil
	}
	c.println(renderHistory(records))
	return nil
}

func (c *cli) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewValidationError("id", "exactly one game id is required")
	}
	rec, err := c.app.Game(ctx, args[0])
	if err != nil {
		return err
	}
	c.println(renderHistory([]models.GameRecord{*rec}))
	if len(rec.Rounds) > 0 {
		c.println(renderRounds(rec.Rounds))
	}
	return nil
}

func (c *cli) edit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(c.out)
	dateStr := fs.String("date", "", "new date, e.g. 2024-05-01T20:30")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 3 {
		return errors.NewValidationError("arguments", "expected ID NAME=POINTS NAME=POINTS...")
	}

	var date *time.Time
	if *dateStr != "" {
		t, err := models.ParseDate(*dateStr)
		if err != nil {
			return errors.NewValidationError("date", err.Error())
		}
		date = &t
	}

	totals := make(map[string]int, fs.NArg()-1)
	for _, arg := range fs.Args()[1:] {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return errors.NewValidationError("totals", fmt.Sprintf("%q is not NAME=POINTS", arg))
		}
		points, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return errors.NewValidationError("totals", fmt.Sprintf("%q is not a whole number", value))
		}
		totals[name] = points
	}

	rec, err := c.app.EditSession(ctx, fs.Arg(0), totals, date)
	if err != nil {
		return err
	}
	c.println(renderHistory([]models.GameRecord{rec}))
	return nil
}

func (c *cli) delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return errors.NewValidationError("id", "at least one game id is required")
	}
	n, err := c.app.DeleteGames(ctx, ids)
	if err != nil {
		return err
	}
	c.printf("deleted %d of %d games\n", n, len(ids))
	return nil
}

func (c *cli) standings(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("standings", flag.ContinueOnError)
	fs.SetOutput(c.out)
	player := fs.String("player", "", "only this player")
	since := fs.String("since", "", "only games on or after this date")
	limit := fs.Int("limit", 0, "maximum rows (0 = all)")
	order := fs.String("order", "wins", "wins, win_rate, games_played or best_total")
	asc := fs.Bool("asc", false, "ascending order")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := models.StandingFilter{
		Player:   models.NormalizeName(*player),
		Limit:    *limit,
		OrderBy:  *order,
		OrderDir: "DESC",
	}
	if *asc {
		filter.OrderDir = "ASC"
	}
	if *since != "" {
		t, err := models.ParseDate(*since)
		if err != nil {
			return errors.NewValidationError("since", err.Error())
		}
		filter.Since = &t
	}

	rows, err := c.app.Standings(ctx, filter)
	if err != nil {
		return err
	}
	c.println(renderStandings(rows))
	return nil
}

func (c *cli) highScores(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("highscores", flag.ContinueOnError)
	fs.SetOutput(c.out)
	limit := fs.Int("limit", 10, "number of entries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	top, err := c.app.HighScores(ctx, *limit)
	if err != nil {
		return err
	}
	c.println(renderHighScores(top))
	return nil
}

func (c *cli) export(ctx context.Context) error {
	copied, err := c.app.Export(ctx)
	if err != nil {
		return err
	}
	if len(copied) == 0 {
		c.println("nothing to export")
		return nil
	}
	c.printf("exported %s\n", strings.Join(copied, ", "))
	return nil
}

func (c *cli) importFiles(ctx context.Context) error {
	copied, err := c.app.Import(ctx)
	if err != nil {
		return err
	}
	if len(copied) == 0 {
		c.println("nothing to import")
		return nil
	}
	c.printf("imported %s\n", strings.Join(copied, ", "))
	return nil
}

func (c *cli) reset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	fs.SetOutput(c.out)
	yes := fs.Bool("yes", false, "confirm deleting all data")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		c.println("this deletes every player and game; run again with -yes to confirm")
		return nil
	}
	if err := c.app.Reset(ctx); err != nil {
		return err
	}
	c.println("all data deleted")
	return nil
}
