package models

import "time"

// Prediction is a user's score guess for a single match, unique per
// (user, match). Points is derived state, recomputed whenever the match
// finishes or its result is corrected.
type Prediction struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	MatchID   int       `json:"match_id"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	Points    int       `json:"points"`
	UpdatedAt time.Time `json:"updated_at"`
}
