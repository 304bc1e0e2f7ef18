package models

import "time"

type League struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	AccessCodeHash string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// LeagueParticipant links a user to a league. Blocked participants may not
// submit predictions or brackets. ExtraPoints holds manual point
// assignments by the league admin (trivia nights and the like); they count
// toward the league ranking only.
type LeagueParticipant struct {
	ID          int       `json:"id"`
	LeagueID    int       `json:"league_id"`
	UserID      int       `json:"user_id"`
	Blocked     bool      `json:"blocked"`
	ExtraPoints int       `json:"extra_points"`
	JoinedAt    time.Time `json:"joined_at"`
}
