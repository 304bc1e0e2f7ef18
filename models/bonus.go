package models

import "time"

// BonusQuestion is a free-form side bet ("who wins the golden boot?").
// LeagueID nil makes it part of the global question set. CorrectAnswer is
// nil until an admin resolves the question.
type BonusQuestion struct {
	ID            int       `json:"id"`
	LeagueID      *int      `json:"league_id,omitempty"`
	Question      string    `json:"question"`
	Points        int       `json:"points"`
	CorrectAnswer *string   `json:"correct_answer,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type BonusAnswer struct {
	ID         int       `json:"id"`
	QuestionID int       `json:"question_id"`
	UserID     int       `json:"user_id"`
	Answer     string    `json:"answer"`
	Points     int       `json:"points"`
	UpdatedAt  time.Time `json:"updated_at"`
}
