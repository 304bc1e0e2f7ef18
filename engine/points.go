package engine

import "github.com/tippliga/tippliga/models"

const (
	PointsExactResult    = 5
	PointsCorrectMargin  = 3
	PointsCorrectOutcome = 1

	// MaxPredictionPoints is an explicit invariant: no rule combination can
	// exceed the exact-result award, but the scorer clamps anyway.
	MaxPredictionPoints = 5
)

// PredictionPoints scores a single prediction against a match result.
// Returns 0 unless the match is finished with both scores present.
//
//	exact score                   -> 5
//	correct outcome, same margin  -> 3
//	correct outcome               -> 1
//	anything else                 -> 0
func PredictionPoints(match *models.Match, pred *models.Prediction) int {
	if match == nil || pred == nil || !match.Scoreable() {
		return 0
	}

	actualHome, actualAway := *match.HomeScore, *match.AwayScore

	points := 0
	switch {
	case pred.HomeScore == actualHome && pred.AwayScore == actualAway:
		points = PointsExactResult
	case sign(actualHome-actualAway) == sign(pred.HomeScore-pred.AwayScore):
		if abs(actualHome-actualAway) == abs(pred.HomeScore-pred.AwayScore) {
			points = PointsCorrectMargin
		} else {
			points = PointsCorrectOutcome
		}
	}

	if points > MaxPredictionPoints {
		points = MaxPredictionPoints
	}
	return points
}

// bracketPhasePoints awards fixed points per knockout phase for a correct
// bracket pick. THIRD_PLACE is absent on purpose: that match earns nothing.
var bracketPhasePoints = map[models.MatchPhase]int{
	models.PhaseRoundOf16: 3,
	models.PhaseQuarter:   6,
	models.PhaseSemi:      10,
	models.PhaseFinal:     20,
}

// BracketPhasePoints returns the bracket award for a phase, 0 for phases
// outside the table.
func BracketPhasePoints(phase models.MatchPhase) int {
	return bracketPhasePoints[phase]
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
