package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbalake/internal/domain"
)

func TestRender(t *testing.T) {
	team := "Thunder"
	scorers := []domain.TopScorer{
		{PlayerID: 1628983, FullName: "Shai Gilgeous-Alexander", TeamName: &team,
			PointsPerGame: 32.7, GamesPlayed: 76, Season: "2024-2025", Rank: 1},
		{PlayerID: 999, FullName: "Unknown Player",
			PointsPerGame: 28.1, GamesPlayed: 68, Season: "2024-2025", Rank: 2},
	}

	var b strings.Builder
	require.NoError(t, Render(&b, "2024-2025", scorers))
	html := b.String()

	assert.Contains(t, html, `<html lang="en">`)
	assert.Contains(t, html, "2024-2025")
	assert.Contains(t, html, "Shai Gilgeous-Alexander")
	assert.Contains(t, html, "Thunder")
	assert.Contains(t, html, "32.70")
	// nil team renders a placeholder, not an empty cell
	assert.Contains(t, html, "—")
}

func TestRenderEmpty(t *testing.T) {
	var b strings.Builder
	require.NoError(t, Render(&b, "2024-2025", nil))

	html := b.String()
	assert.Contains(t, html, "Run the build first")
	assert.NotContains(t, html, "<table>")
}
