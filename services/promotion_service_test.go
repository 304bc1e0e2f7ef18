package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tippliga/tippliga/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int          { return &v }
func strPtr(s string) *string   { return &s }
func groupPtr(g string) *string { return &g }

func finishedGroupMatch(id int, group, home, away string, hs, as int) *models.Match {
	return &models.Match{
		ID:          id,
		HomeTeam:    home,
		AwayTeam:    away,
		HomeScore:   intPtr(hs),
		AwayScore:   intPtr(as),
		Phase:       models.PhaseGroup,
		GroupLetter: groupPtr(group),
		Status:      models.StatusFinished,
		KickoffAt:   time.Now().Add(-2 * time.Hour),
	}
}

func knockoutSlotMatch(id, bracketID int, phase models.MatchPhase, homeSlot, awaySlot string) *models.Match {
	return &models.Match{
		ID:              id,
		HomePlaceholder: strPtr(homeSlot),
		AwayPlaceholder: strPtr(awaySlot),
		Phase:           phase,
		Status:          models.StatusScheduled,
		BracketID:       &bracketID,
	}
}

func TestPromoteFromGroupResolvesSlots(t *testing.T) {
	// Full four-team round robin: Germany 7, Switzerland 5, Hungary 3,
	// Scotland 1.
	repo := newFakeMatchRepository(
		finishedGroupMatch(1, "A", "Germany", "Scotland", 5, 1),
		finishedGroupMatch(2, "A", "Hungary", "Switzerland", 1, 3),
		finishedGroupMatch(3, "A", "Germany", "Hungary", 2, 0),
		finishedGroupMatch(4, "A", "Scotland", "Switzerland", 1, 1),
		finishedGroupMatch(5, "A", "Switzerland", "Germany", 1, 1),
		finishedGroupMatch(6, "A", "Scotland", "Hungary", 0, 1),
		knockoutSlotMatch(101, 49, models.PhaseRoundOf16, "1A", "2B"),
		knockoutSlotMatch(102, 51, models.PhaseRoundOf16, "1B", "2A"),
	)
	svc := NewPromotionService(repo, nil, testLogger())

	require.NoError(t, svc.PromoteFromGroup(context.Background(), "A"))

	r16a, err := repo.GetByID(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "Germany", r16a.HomeTeam)
	assert.Nil(t, r16a.HomePlaceholder)
	// 2B belongs to another group and must stay untouched.
	require.NotNil(t, r16a.AwayPlaceholder)
	assert.Equal(t, "2B", *r16a.AwayPlaceholder)

	r16b, err := repo.GetByID(context.Background(), 102)
	require.NoError(t, err)
	assert.Equal(t, "Switzerland", r16b.AwayTeam)
	assert.Nil(t, r16b.AwayPlaceholder)
	require.NotNil(t, r16b.HomePlaceholder)
	assert.Equal(t, "1B", *r16b.HomePlaceholder)

	// Third and fourth place promote nowhere.
	assert.Equal(t, 2, repo.resolveCalls)
}

func TestPromoteFromGroupIdempotent(t *testing.T) {
	repo := newFakeMatchRepository(
		finishedGroupMatch(1, "A", "Germany", "Scotland", 5, 1),
		knockoutSlotMatch(101, 49, models.PhaseRoundOf16, "1A", "2B"),
	)
	svc := NewPromotionService(repo, nil, testLogger())

	require.NoError(t, svc.PromoteFromGroup(context.Background(), "A"))
	firstResolves := repo.resolveCalls
	assert.Equal(t, 1, firstResolves)

	// Redundant triggers from multiple finished-match events.
	require.NoError(t, svc.PromoteFromGroup(context.Background(), "A"))
	require.NoError(t, svc.PromoteFromGroup(context.Background(), "A"))
	assert.Equal(t, firstResolves, repo.resolveCalls)
}

func TestPromoteFromGroupIncompleteGroupIsNoOp(t *testing.T) {
	pending := finishedGroupMatch(2, "A", "Germany", "Hungary", 0, 0)
	pending.Status = models.StatusScheduled
	pending.HomeScore = nil
	pending.AwayScore = nil

	repo := newFakeMatchRepository(
		finishedGroupMatch(1, "A", "Germany", "Scotland", 5, 1),
		pending,
		knockoutSlotMatch(101, 49, models.PhaseRoundOf16, "1A", "2B"),
	)
	svc := NewPromotionService(repo, nil, testLogger())

	require.NoError(t, svc.PromoteFromGroup(context.Background(), "A"))
	assert.Equal(t, 0, repo.resolveCalls)
}

func TestPromoteFromGroupEmptyGroupIsNoOp(t *testing.T) {
	repo := newFakeMatchRepository(
		knockoutSlotMatch(101, 49, models.PhaseRoundOf16, "1A", "2B"),
	)
	svc := NewPromotionService(repo, nil, testLogger())

	require.NoError(t, svc.PromoteFromGroup(context.Background(), "A"))
	assert.Equal(t, 0, repo.resolveCalls)
}

func TestIsGroupComplete(t *testing.T) {
	live := finishedGroupMatch(2, "B", "France", "Poland", 1, 0)
	live.Status = models.StatusLive

	repo := newFakeMatchRepository(
		finishedGroupMatch(1, "B", "France", "Austria", 1, 0),
		live,
	)
	svc := NewPromotionService(repo, nil, testLogger())

	complete, err := svc.IsGroupComplete(context.Background(), "B")
	require.NoError(t, err)
	assert.False(t, complete)

	complete, err = svc.IsGroupComplete(context.Background(), "C")
	require.NoError(t, err)
	assert.False(t, complete, "empty group is not complete")

	live.Status = models.StatusCompleted
	complete, err = svc.IsGroupComplete(context.Background(), "B")
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestAdvanceWinnerResolvesDownstreamSlots(t *testing.T) {
	semi := &models.Match{
		ID:        161,
		HomeTeam:  "Spain",
		AwayTeam:  "France",
		HomeScore: intPtr(2),
		AwayScore: intPtr(1),
		Phase:     models.PhaseSemi,
		Status:    models.StatusFinished,
		BracketID: intPtr(61),
	}
	final := knockoutSlotMatch(164, 64, models.PhaseFinal, "W61", "W62")
	third := knockoutSlotMatch(163, 63, models.PhaseThirdPlace, "L61", "L62")

	repo := newFakeMatchRepository(semi, final, third)
	svc := NewPromotionService(repo, nil, testLogger())

	require.NoError(t, svc.AdvanceWinner(context.Background(), semi))

	gotFinal, err := repo.GetByID(context.Background(), 164)
	require.NoError(t, err)
	assert.Equal(t, "Spain", gotFinal.HomeTeam)
	assert.Nil(t, gotFinal.HomePlaceholder)

	gotThird, err := repo.GetByID(context.Background(), 163)
	require.NoError(t, err)
	assert.Equal(t, "France", gotThird.HomeTeam)
	assert.Nil(t, gotThird.HomePlaceholder)
}

func TestAdvanceWinnerSkipsDraw(t *testing.T) {
	quarter := &models.Match{
		ID:        157,
		HomeTeam:  "Spain",
		AwayTeam:  "France",
		HomeScore: intPtr(1),
		AwayScore: intPtr(1),
		Phase:     models.PhaseQuarter,
		Status:    models.StatusFinished,
		BracketID: intPtr(57),
	}
	semi := knockoutSlotMatch(161, 61, models.PhaseSemi, "W57", "W58")

	repo := newFakeMatchRepository(quarter, semi)
	svc := NewPromotionService(repo, nil, testLogger())

	require.NoError(t, svc.AdvanceWinner(context.Background(), quarter))
	assert.Equal(t, 0, repo.resolveCalls)
}

func TestPromoteAllCompletedGroupsIsolatesGroups(t *testing.T) {
	repo := newFakeMatchRepository(
		finishedGroupMatch(1, "A", "Germany", "Scotland", 5, 1),
		finishedGroupMatch(2, "C", "England", "Serbia", 1, 0),
		knockoutSlotMatch(101, 49, models.PhaseRoundOf16, "1A", "2B"),
		knockoutSlotMatch(103, 50, models.PhaseRoundOf16, "1C", "2D"),
	)
	svc := NewPromotionService(repo, nil, testLogger())

	require.NoError(t, svc.PromoteAllCompletedGroups(context.Background()))

	a, _ := repo.GetByID(context.Background(), 101)
	c, _ := repo.GetByID(context.Background(), 103)
	assert.Equal(t, "Germany", a.HomeTeam)
	assert.Equal(t, "England", c.HomeTeam)
}

