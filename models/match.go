package models

import "time"

type MatchPhase string

const (
	PhaseGroup      MatchPhase = "GROUP"
	PhaseRoundOf16  MatchPhase = "ROUND_16"
	PhaseQuarter    MatchPhase = "QUARTER"
	PhaseSemi       MatchPhase = "SEMI"
	PhaseThirdPlace MatchPhase = "THIRD_PLACE"
	PhaseFinal      MatchPhase = "FINAL"
)

// KnockoutPhases lists every knockout-stage phase in play order.
var KnockoutPhases = []MatchPhase{
	PhaseRoundOf16, PhaseQuarter, PhaseSemi, PhaseThirdPlace, PhaseFinal,
}

func (p MatchPhase) IsKnockout() bool {
	for _, knockout := range KnockoutPhases {
		if p == knockout {
			return true
		}
	}
	return false
}

func (p MatchPhase) Valid() bool {
	return p == PhaseGroup || p.IsKnockout()
}

type MatchStatus string

const (
	StatusScheduled MatchStatus = "SCHEDULED"
	StatusPending   MatchStatus = "PENDING"
	StatusLive      MatchStatus = "LIVE"
	StatusFinished  MatchStatus = "FINISHED"
	// StatusCompleted is a historical alias for StatusFinished. Both must be
	// treated as the finished state everywhere scoring decisions are made.
	StatusCompleted MatchStatus = "COMPLETED"
)

func (s MatchStatus) IsFinished() bool {
	return s == StatusFinished || s == StatusCompleted
}

func (s MatchStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusPending, StatusLive, StatusFinished, StatusCompleted:
		return true
	}
	return false
}

type Match struct {
	ID              int         `json:"id"`
	ExternalID      *string     `json:"external_id,omitempty"`
	HomeTeam        string      `json:"home_team"`
	AwayTeam        string      `json:"away_team"`
	HomePlaceholder *string     `json:"home_placeholder,omitempty"`
	AwayPlaceholder *string     `json:"away_placeholder,omitempty"`
	HomeFlag        *string     `json:"home_flag,omitempty"`
	AwayFlag        *string     `json:"away_flag,omitempty"`
	HomeScore       *int        `json:"home_score,omitempty"`
	AwayScore       *int        `json:"away_score,omitempty"`
	Phase           MatchPhase  `json:"phase"`
	GroupLetter     *string     `json:"group,omitempty"`
	Status          MatchStatus `json:"status"`
	BracketID       *int        `json:"bracket_id,omitempty"`
	IsLocked        bool        `json:"is_locked"`
	KickoffAt       time.Time   `json:"kickoff_at"`
}

// Scoreable reports whether the match may contribute to prediction or
// bracket points: finished with both scores present.
func (m *Match) Scoreable() bool {
	return m.Status.IsFinished() && m.HomeScore != nil && m.AwayScore != nil
}

// Winner returns the winning team name of a scoreable match, or "" on a
// draw or when the match is not scoreable.
func (m *Match) Winner() string {
	if !m.Scoreable() {
		return ""
	}
	switch {
	case *m.HomeScore > *m.AwayScore:
		return m.HomeTeam
	case *m.AwayScore > *m.HomeScore:
		return m.AwayTeam
	}
	return ""
}

// Loser is the counterpart of Winner, used to resolve third-place slots.
func (m *Match) Loser() string {
	switch m.Winner() {
	case m.HomeTeam:
		return m.AwayTeam
	case m.AwayTeam:
		return m.HomeTeam
	}
	return ""
}
