package models

// TeamStanding is one row of a group's league table. It is derived state:
// recomputed in full from finished group matches on every request, never
// persisted.
type TeamStanding struct {
	Team           string  `json:"team"`
	Flag           *string `json:"flag,omitempty"`
	Played         int     `json:"played"`
	Won            int     `json:"won"`
	Drawn          int     `json:"drawn"`
	Lost           int     `json:"lost"`
	GoalsFor       int     `json:"goals_for"`
	GoalsAgainst   int     `json:"goals_against"`
	GoalDifference int     `json:"goal_difference"`
	Points         int     `json:"points"`
	Position       int     `json:"position"`
}

// RankingEntry is one leaderboard row built by the ranking aggregator.
type RankingEntry struct {
	UserID           int    `json:"user_id"`
	UserName         string `json:"user_name"`
	PredictionPoints int    `json:"prediction_points"`
	BracketPoints    int    `json:"bracket_points"`
	BonusPoints      int    `json:"bonus_points"`
	TriviaPoints     int    `json:"trivia_points"`
	TotalPoints      int    `json:"total_points"`
	Position         int    `json:"position"`
}
