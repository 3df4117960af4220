package domain

// TopScorer is one row of the top_scorers_by_season table. TeamName
// comes from the player dimension and is nil when the left join found
// no match.
type TopScorer struct {
	PlayerID      int64
	FullName      string
	TeamName      *string
	PointsPerGame float64
	GamesPlayed   int64
	Season        string
	Rank          int64
}
