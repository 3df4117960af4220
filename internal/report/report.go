// Package report renders the top-scorers leaderboard as a static HTML page.
package report

import (
	"fmt"
	"io"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"nbalake/internal/domain"
)

const pageStyle = `
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 48rem; color: #1a1a2e; }
h1 { font-size: 1.4rem; }
table { border-collapse: collapse; width: 100%; }
th, td { padding: 0.4rem 0.8rem; border-bottom: 1px solid #ddd; text-align: left; }
td.num, th.num { text-align: right; }
tr:nth-child(even) { background: #f7f7fb; }
`

// Render writes the leaderboard page for one season.
func Render(w io.Writer, season string, scorers []domain.TopScorer) error {
	return page(season, scorers).Render(w)
}

func page(season string, scorers []domain.TopScorer) Node {
	title := fmt.Sprintf("Top Scorers — %s", season)
	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			TitleEl(Text(title)),
			StyleEl(Raw(pageStyle)),
		),
		Body(
			H1(Text(title)),
			leaderboardTable(scorers),
		),
	)
}

func leaderboardTable(scorers []domain.TopScorer) Node {
	if len(scorers) == 0 {
		return P(Text("No ranked rows. Run the build first."))
	}

	rows := make([]Node, 0, len(scorers))
	for _, ts := range scorers {
		team := "—"
		if ts.TeamName != nil {
			team = *ts.TeamName
		}
		rows = append(rows, Tr(
			Td(Class("num"), Text(fmt.Sprintf("%d", ts.Rank))),
			Td(Text(ts.FullName)),
			Td(Text(team)),
			Td(Class("num"), Text(fmt.Sprintf("%.2f", ts.PointsPerGame))),
			Td(Class("num"), Text(fmt.Sprintf("%d", ts.GamesPlayed))),
		))
	}

	return Table(
		THead(Tr(
			Th(Class("num"), Text("Rank")),
			Th(Text("Player")),
			Th(Text("Team")),
			Th(Class("num"), Text("PPG")),
			Th(Class("num"), Text("GP")),
		)),
		TBody(Group(rows)),
	)
}
