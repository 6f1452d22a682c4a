package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"SpotSim/internal/model"
	"SpotSim/internal/notifier"
	"SpotSim/internal/simulator"
)

var (
	subtle = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	up     = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	down   = lipgloss.AdaptiveColor{Light: "#D9534F", Dark: "#FF6B6B"}

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			MarginBottom(1)
	keyStyle   = lipgloss.NewStyle().Width(18).Foreground(lipgloss.Color("245"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(subtle).Padding(1, 2)
	errorStyle = lipgloss.NewStyle().Foreground(down).Bold(true)
)

func renderReport(r *simulator.Report) string {
	res := r.Result
	trendStyle := lipgloss.NewStyle().Bold(true).Foreground(down)
	if res.Trend == model.TrendUp {
		trendStyle = trendStyle.Foreground(up)
	}

	rows := [][2]string{
		{"Current price", res.CurrentPrice.StringFixed(8)},
		{"Trend", trendStyle.Render(string(res.Trend))},
		{"Investment", "$" + res.Investment.StringFixed(2)},
		{"Target price", fmt.Sprintf("%s (+%s%%)", res.TargetPrice.StringFixed(8), res.ProfitPct)},
		{"Tokens", res.TokenAmount.StringFixed(8)},
		{"Estimated profit", "$" + res.EstimatedProfit.StringFixed(2)},
		{"Suggested action", notifier.SuggestedAction(res.Allocation)},
	}
	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, titleStyle.Render("SpotSim | "+res.Symbol))
	for _, row := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(row[0]), row[1]))
	}
	if r.Chart != nil {
		lines = append(lines, "", chartLine(r.Chart))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// chartLine summarizes the last defined moving-average values.
func chartLine(c *model.Chart) string {
	idx := c.MA.Len() - 1
	short, okShort := c.MA.Short.At(idx)
	long, okLong := c.MA.Long.At(idx)
	if !okShort || !okLong {
		return keyStyle.Render("Chart") + fmt.Sprintf("%d points", len(c.Closes))
	}
	return keyStyle.Render("Chart") + fmt.Sprintf("%d points, MA%d %.8f, MA%d %.8f",
		len(c.Closes), c.MA.Short.Window, short, c.MA.Long.Window, long)
}
