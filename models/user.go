package models

// User is the minimal identity the engine needs; accounts and sessions
// live in an external service. TotalGoalsGuess is the secondary
// tie-breaker: the user's guess at the tournament's total goal count.
type User struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	TotalGoalsGuess *int   `json:"total_goals_guess,omitempty"`
}
