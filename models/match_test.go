package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKnockoutPhasesMatchIsKnockout(t *testing.T) {
	for _, phase := range KnockoutPhases {
		assert.True(t, phase.IsKnockout(), "phase %s", phase)
		assert.True(t, phase.Valid(), "phase %s", phase)
	}
	assert.False(t, PhaseGroup.IsKnockout())
	assert.True(t, PhaseGroup.Valid())
	assert.False(t, MatchPhase("PLAYOFF").Valid())
}
