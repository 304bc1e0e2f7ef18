package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// BracketPicks maps match ID to the team name the user picked to win it.
// Stored as a JSONB column.
type BracketPicks map[int]string

func (p BracketPicks) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

func (p *BracketPicks) Scan(src interface{}) error {
	if src == nil {
		*p = BracketPicks{}
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("bracket picks: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, p)
}

// UserBracket is a user's knockout pick set, unique per (user, league);
// LeagueID nil means the global bracket. Points is derived and only grows
// as knockout matches finish, except through an explicit recalculation.
type UserBracket struct {
	ID        int          `json:"id"`
	UserID    int          `json:"user_id"`
	LeagueID  *int         `json:"league_id,omitempty"`
	Picks     BracketPicks `json:"picks"`
	Points    int          `json:"points"`
	UpdatedAt time.Time    `json:"updated_at"`
}
