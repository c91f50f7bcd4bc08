package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/vytor/dominoscore/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	winnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		BorderHeader(true).
		BorderRow(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})
	return t.Render()
}

func renderPlayers(players []models.Player) string {
	rows := make([][]string, 0, len(players))
	for _, p := range players {
		rows = append(rows, []string{
			p.Name,
			fmt.Sprintf("%d", p.Wins),
			fmt.Sprintf("%d", p.Losses),
			fmt.Sprintf("%.1f%%", p.WinRate()),
		})
	}
	return renderTable([]string{"Player", "Wins", "Losses", "Win %"}, rows)
}

func renderStats(stats map[string]models.PlayerStats) string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		st := stats[name]
		rows = append(rows, []string{name, fmt.Sprintf("%d", st.Wins), fmt.Sprintf("%d", st.Losses)})
	}
	return renderTable([]string{"Player", "Wins", "Losses"}, rows)
}

// formatTotals lists totals highest first.
func formatTotals(totals map[string]int) string {
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if totals[names[i]] != totals[names[j]] {
			return totals[names[i]] > totals[names[j]]
		}
		return names[i] < names[j]
	})
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %d", name, totals[name]))
	}
	return strings.Join(parts, ", ")
}

func describeResults(res models.Results) string {
	switch {
	case !res.Finished:
		return dimStyle.Render("in progress")
	case res.HasWinner():
		return winnerStyle.Render(res.Winner + " wins")
	case res.IsTie():
		return "tie: " + strings.Join(res.Tied, ", ")
	default:
		return dimStyle.Render("no winner")
	}
}

func displayDate(s string) string {
	t, err := models.ParseDate(s)
	if err != nil {
		return s
	}
	return t.Local().Format("2006-01-02 15:04")
}

func renderHistory(records []models.GameRecord) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.ID,
			displayDate(rec.Date),
			formatTotals(rec.Totals),
			describeResults(rec.Outcome()),
		})
	}
	return renderTable([]string{"ID", "Date", "Totals", "Result"}, rows)
}

func renderGame(game *models.GameScore) string {
	res := game.Results()
	rows := make([][]string, 0, len(game.Players))
	for _, name := range game.Players {
		total := fmt.Sprintf("%d", game.Totals[name])
		if res.Winner == name {
			total = winnerStyle.Render(total)
		}
		rows = append(rows, []string{name, total, fmt.Sprintf("%d", models.MaxPoints-game.Totals[name])})
	}
	return renderTable([]string{"Player", "Total", "To go"}, rows) + "\n" + describeResults(res)
}

func renderRounds(rounds []models.Round) string {
	rows := make([][]string, 0, len(rounds))
	for i, r := range rounds {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), r.Player, fmt.Sprintf("%+d", r.Points)})
	}
	return renderTable([]string{"#", "Player", "Points"}, rows)
}

func renderStandings(rows []models.Standing) string {
	out := make([][]string, 0, len(rows))
	for _, st := range rows {
		out = append(out, []string{
			st.Player,
			fmt.Sprintf("%d", st.GamesPlayed),
			fmt.Sprintf("%d", st.Wins),
			fmt.Sprintf("%d", st.Losses),
			fmt.Sprintf("%d", st.Ties),
			fmt.Sprintf("%d", st.Unfinished),
			fmt.Sprintf("%d", st.BestTotal),
			fmt.Sprintf("%.1f", st.AvgTotal),
			fmt.Sprintf("%.1f%%", st.WinRate),
		})
	}
	return renderTable([]string{"Player", "Games", "W", "L", "Ties", "Open", "Best", "Avg", "Win %"}, out)
}

func renderHighScores(top []models.HighScore) string {
	rows := make([][]string, 0, len(top))
	for i, hs := range top {
		date := ""
		if !hs.Date.IsZero() {
			date = hs.Date.Format("2006-01-02")
		}
		won := ""
		if hs.Won {
			won = winnerStyle.Render("won")
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), hs.Player, fmt.Sprintf("%d", hs.Total), date, won})
	}
	return renderTable([]string{"#", "Player", "Total", "Date", ""}, rows)
}
