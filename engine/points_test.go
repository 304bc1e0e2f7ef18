package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tippliga/tippliga/models"
)

func intPtr(v int) *int { return &v }

func finishedMatch(home, away int) *models.Match {
	return &models.Match{
		ID:        1,
		HomeTeam:  "Germany",
		AwayTeam:  "France",
		HomeScore: intPtr(home),
		AwayScore: intPtr(away),
		Phase:     models.PhaseGroup,
		Status:    models.StatusFinished,
	}
}

func TestPredictionPoints(t *testing.T) {
	tests := []struct {
		name       string
		actual     [2]int
		prediction [2]int
		want       int
	}{
		{"exact result", [2]int{2, 1}, [2]int{2, 1}, 5},
		{"correct outcome and margin", [2]int{2, 1}, [2]int{3, 2}, 3},
		{"correct outcome and margin, lower scores", [2]int{2, 1}, [2]int{1, 0}, 3},
		{"correct outcome only", [2]int{2, 1}, [2]int{3, 0}, 1},
		{"wrong outcome", [2]int{2, 1}, [2]int{1, 1}, 0},
		{"inverted outcome", [2]int{2, 1}, [2]int{0, 2}, 0},
		{"draw guessed, draw played, different score", [2]int{2, 2}, [2]int{1, 1}, 3},
		{"exact draw", [2]int{0, 0}, [2]int{0, 0}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := finishedMatch(tt.actual[0], tt.actual[1])
			pred := &models.Prediction{
				MatchID:   match.ID,
				HomeScore: tt.prediction[0],
				AwayScore: tt.prediction[1],
			}
			assert.Equal(t, tt.want, PredictionPoints(match, pred))
		})
	}
}

func TestPredictionPointsUnscoreableMatch(t *testing.T) {
	pred := &models.Prediction{HomeScore: 2, AwayScore: 1}

	live := finishedMatch(2, 1)
	live.Status = models.StatusLive
	assert.Equal(t, 0, PredictionPoints(live, pred))

	missingScore := finishedMatch(2, 1)
	missingScore.AwayScore = nil
	assert.Equal(t, 0, PredictionPoints(missingScore, pred))

	assert.Equal(t, 0, PredictionPoints(nil, pred))
	assert.Equal(t, 0, PredictionPoints(finishedMatch(2, 1), nil))
}

func TestPredictionPointsCompletedAlias(t *testing.T) {
	match := finishedMatch(2, 1)
	match.Status = models.StatusCompleted
	pred := &models.Prediction{HomeScore: 2, AwayScore: 1}
	assert.Equal(t, 5, PredictionPoints(match, pred))
}

func TestBracketPhasePoints(t *testing.T) {
	assert.Equal(t, 3, BracketPhasePoints(models.PhaseRoundOf16))
	assert.Equal(t, 6, BracketPhasePoints(models.PhaseQuarter))
	assert.Equal(t, 10, BracketPhasePoints(models.PhaseSemi))
	assert.Equal(t, 20, BracketPhasePoints(models.PhaseFinal))

	// The third-place match never pays bracket points.
	assert.Equal(t, 0, BracketPhasePoints(models.PhaseThirdPlace))
	assert.Equal(t, 0, BracketPhasePoints(models.PhaseGroup))
}
