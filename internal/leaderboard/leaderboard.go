// Package leaderboard reads the ranked gold-layer table for display.
package leaderboard

import (
	"context"
	"database/sql"
	"fmt"

	"nbalake/internal/domain"
)

// Query returns top_scorers_by_season ordered by rank. limit <= 0
// returns every retained row (the table is already rank-bounded).
func Query(ctx context.Context, duck *sql.DB, limit int) ([]domain.TopScorer, error) {
	q := `SELECT player_id, full_name, team_name, points_per_game, games_played, season, player_rank
	      FROM main.top_scorers_by_season
	      ORDER BY player_rank, player_id`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := duck.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query top scorers (has the build run?): %w", err)
	}
	defer func() { _ = rows.Close() }()

	var scorers []domain.TopScorer
	for rows.Next() {
		var (
			ts       domain.TopScorer
			fullName sql.NullString
			teamName sql.NullString
			season   sql.NullString
		)
		if err := rows.Scan(&ts.PlayerID, &fullName, &teamName, &ts.PointsPerGame,
			&ts.GamesPlayed, &season, &ts.Rank); err != nil {
			return nil, fmt.Errorf("scan top scorer: %w", err)
		}
		ts.FullName = fullName.String
		ts.Season = season.String
		if teamName.Valid {
			ts.TeamName = &teamName.String
		}
		scorers = append(scorers, ts)
	}
	return scorers, rows.Err()
}
