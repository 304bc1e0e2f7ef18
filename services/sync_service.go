package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tippliga/tippliga/feed"
	"github.com/tippliga/tippliga/models"
	"github.com/tippliga/tippliga/repositories"
)

// ResultsFeed is what the sync pass needs from the external provider;
// satisfied by *feed.Client.
type ResultsFeed interface {
	FetchResults(ctx context.Context) ([]feed.MatchUpdate, error)
}

// SyncSummary reports one sync pass.
type SyncSummary struct {
	Updated  int `json:"updated"`
	Finished int `json:"finished"`
	Skipped  int `json:"skipped"`
}

type SyncService interface {
	// SyncOnce applies the current feed state to all non-locked matches
	// and runs the finish pipeline for every match that transitioned into
	// the finished state during this pass. Locked matches are never
	// overwritten: a manual correction always wins over the feed.
	SyncOnce(ctx context.Context) (SyncSummary, error)
}

type syncService struct {
	resultsFeed  ResultsFeed
	matchRepo    repositories.MatchRepository
	matchService MatchService
	logger       *slog.Logger
}

func NewSyncService(
	resultsFeed ResultsFeed,
	matchRepo repositories.MatchRepository,
	matchService MatchService,
	logger *slog.Logger,
) SyncService {
	return &syncService{
		resultsFeed:  resultsFeed,
		matchRepo:    matchRepo,
		matchService: matchService,
		logger:       logger,
	}
}

func (s *syncService) SyncOnce(ctx context.Context) (SyncSummary, error) {
	summary := SyncSummary{}

	updates, err := s.resultsFeed.FetchResults(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to fetch results feed: %w", err)
	}

	for _, update := range updates {
		status, ok := normalizeFeedStatus(update.Status)
		if !ok {
			s.logger.Warn("feed reported unknown status, skipping",
				slog.String("external_id", update.ExternalID),
				slog.String("status", update.Status))
			summary.Skipped++
			continue
		}

		match, err := s.matchRepo.GetByExternalID(ctx, update.ExternalID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				summary.Skipped++
				continue
			}
			return summary, fmt.Errorf("failed to look up external match %s: %w", update.ExternalID, err)
		}

		if match.IsLocked {
			summary.Skipped++
			continue
		}

		unchanged := match.Status == status &&
			equalScore(match.HomeScore, update.HomeScore) &&
			equalScore(match.AwayScore, update.AwayScore)
		if unchanged {
			continue
		}

		wasFinished := match.Status.IsFinished()
		if err := s.matchRepo.UpdateResult(ctx, nil, match.ID, update.HomeScore, update.AwayScore, status); err != nil {
			return summary, fmt.Errorf("failed to apply feed update to match %d: %w", match.ID, err)
		}
		summary.Updated++

		match.HomeScore = update.HomeScore
		match.AwayScore = update.AwayScore
		match.Status = status

		if !wasFinished && match.Scoreable() {
			if err := s.matchService.ProcessFinishedMatch(ctx, match); err != nil {
				// Isolate per match so one bad row does not stall the feed.
				s.logger.Error("finish pipeline failed",
					slog.Int("match_id", match.ID), slog.Any("error", err))
				continue
			}
			summary.Finished++
		}
	}

	s.logger.Info("feed sync complete",
		slog.Int("updated", summary.Updated),
		slog.Int("finished", summary.Finished),
		slog.Int("skipped", summary.Skipped))
	return summary, nil
}

func normalizeFeedStatus(raw string) (models.MatchStatus, bool) {
	status := models.MatchStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", false
	}
	return status, true
}

func equalScore(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
