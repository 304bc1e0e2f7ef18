package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tippliga/tippliga/feed"
	"github.com/tippliga/tippliga/models"
)

type fakeResultsFeed struct {
	updates []feed.MatchUpdate
	err     error
}

func (f *fakeResultsFeed) FetchResults(ctx context.Context) ([]feed.MatchUpdate, error) {
	return f.updates, f.err
}

// fakeMatchService records finish pipeline invocations.
type fakeMatchService struct {
	MatchService

	processed []int
	processFn func(ctx context.Context, match *models.Match) error
}

func (f *fakeMatchService) ProcessFinishedMatch(ctx context.Context, match *models.Match) error {
	f.processed = append(f.processed, match.ID)
	if f.processFn != nil {
		return f.processFn(ctx, match)
	}
	return nil
}

func feedMatch(id int, externalID string, status models.MatchStatus) *models.Match {
	return &models.Match{
		ID:         id,
		ExternalID: &externalID,
		HomeTeam:   "Germany",
		AwayTeam:   "Scotland",
		Phase:      models.PhaseGroup,
		Status:     status,
		KickoffAt:  time.Now().Add(-time.Hour),
	}
}

func TestSyncOnceAppliesUpdatesAndRunsPipeline(t *testing.T) {
	matchRepo := newFakeMatchRepository(feedMatch(1, "ext-1", models.StatusLive))
	matchSvc := &fakeMatchService{}
	results := &fakeResultsFeed{updates: []feed.MatchUpdate{
		{ExternalID: "ext-1", Status: "finished", HomeScore: intPtr(2), AwayScore: intPtr(1)},
	}}
	svc := NewSyncService(results, matchRepo, matchSvc, testLogger())

	summary, err := svc.SyncOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Finished)
	assert.Equal(t, []int{1}, matchSvc.processed)

	stored, _ := matchRepo.GetByID(context.Background(), 1)
	assert.Equal(t, models.StatusFinished, stored.Status)
	assert.Equal(t, 2, *stored.HomeScore)
}

func TestSyncOnceSkipsLockedMatches(t *testing.T) {
	locked := feedMatch(1, "ext-1", models.StatusLive)
	locked.IsLocked = true
	matchRepo := newFakeMatchRepository(locked)
	matchSvc := &fakeMatchService{}
	results := &fakeResultsFeed{updates: []feed.MatchUpdate{
		{ExternalID: "ext-1", Status: "FINISHED", HomeScore: intPtr(9), AwayScore: intPtr(0)},
	}}
	svc := NewSyncService(results, matchRepo, matchSvc, testLogger())

	summary, err := svc.SyncOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, matchSvc.processed)

	stored, _ := matchRepo.GetByID(context.Background(), 1)
	assert.Nil(t, stored.HomeScore, "locked match must keep its state")
}

func TestSyncOnceSkipsUnknownExternalIDs(t *testing.T) {
	matchRepo := newFakeMatchRepository()
	matchSvc := &fakeMatchService{}
	results := &fakeResultsFeed{updates: []feed.MatchUpdate{
		{ExternalID: "ext-unknown", Status: "LIVE"},
	}}
	svc := NewSyncService(results, matchRepo, matchSvc, testLogger())

	summary, err := svc.SyncOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Updated)
}

func TestSyncOnceSkipsUnknownStatus(t *testing.T) {
	matchRepo := newFakeMatchRepository(feedMatch(1, "ext-1", models.StatusLive))
	matchSvc := &fakeMatchService{}
	results := &fakeResultsFeed{updates: []feed.MatchUpdate{
		{ExternalID: "ext-1", Status: "HALFTIME_SHOW"},
	}}
	svc := NewSyncService(results, matchRepo, matchSvc, testLogger())

	summary, err := svc.SyncOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
}

func TestSyncOnceIgnoresUnchangedState(t *testing.T) {
	match := feedMatch(1, "ext-1", models.StatusFinished)
	match.HomeScore = intPtr(2)
	match.AwayScore = intPtr(1)
	matchRepo := newFakeMatchRepository(match)
	matchSvc := &fakeMatchService{}
	results := &fakeResultsFeed{updates: []feed.MatchUpdate{
		{ExternalID: "ext-1", Status: "FINISHED", HomeScore: intPtr(2), AwayScore: intPtr(1)},
	}}
	svc := NewSyncService(results, matchRepo, matchSvc, testLogger())

	summary, err := svc.SyncOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SyncSummary{}, summary)
	assert.Empty(t, matchSvc.processed)
}

func TestSyncOnceDoesNotRerunPipelineForFinishedMatches(t *testing.T) {
	// Already finished, the feed corrects the score: apply the update but
	// do not re-trigger promotion and awards.
	match := feedMatch(1, "ext-1", models.StatusFinished)
	match.HomeScore = intPtr(1)
	match.AwayScore = intPtr(1)
	matchRepo := newFakeMatchRepository(match)
	matchSvc := &fakeMatchService{}
	results := &fakeResultsFeed{updates: []feed.MatchUpdate{
		{ExternalID: "ext-1", Status: "FINISHED", HomeScore: intPtr(2), AwayScore: intPtr(1)},
	}}
	svc := NewSyncService(results, matchRepo, matchSvc, testLogger())

	summary, err := svc.SyncOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 0, summary.Finished)
	assert.Empty(t, matchSvc.processed)
}

func TestSyncOnceIsolatesPipelineFailures(t *testing.T) {
	matchRepo := newFakeMatchRepository(
		feedMatch(1, "ext-1", models.StatusLive),
		feedMatch(2, "ext-2", models.StatusLive),
	)
	matchSvc := &fakeMatchService{
		processFn: func(ctx context.Context, match *models.Match) error {
			if match.ID == 1 {
				return assert.AnError
			}
			return nil
		},
	}
	results := &fakeResultsFeed{updates: []feed.MatchUpdate{
		{ExternalID: "ext-1", Status: "FINISHED", HomeScore: intPtr(1), AwayScore: intPtr(0)},
		{ExternalID: "ext-2", Status: "FINISHED", HomeScore: intPtr(3), AwayScore: intPtr(2)},
	}}
	svc := NewSyncService(results, matchRepo, matchSvc, testLogger())

	summary, err := svc.SyncOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Updated)
	assert.Equal(t, 1, summary.Finished)
	assert.Equal(t, []int{1, 2}, matchSvc.processed)
}
