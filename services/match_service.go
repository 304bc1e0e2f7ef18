package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tippliga/tippliga/engine"
	"github.com/tippliga/tippliga/models"
	"github.com/tippliga/tippliga/repositories"
)

// MatchUpdateInput carries a partial admin correction; nil fields are left
// untouched. Placeholder and phase edits are allowed so misseeded knockout
// rows can be repaired in place.
type MatchUpdateInput struct {
	HomeTeam        *string             `json:"home_team,omitempty"`
	AwayTeam        *string             `json:"away_team,omitempty"`
	HomePlaceholder *string             `json:"home_placeholder,omitempty"`
	AwayPlaceholder *string             `json:"away_placeholder,omitempty"`
	HomeScore       *int                `json:"home_score,omitempty"`
	AwayScore       *int                `json:"away_score,omitempty"`
	Phase           *models.MatchPhase  `json:"phase,omitempty"`
	Status          *models.MatchStatus `json:"status,omitempty"`
	IsLocked        *bool               `json:"is_locked,omitempty"`
	KickoffAt       *time.Time          `json:"kickoff_at,omitempty"`
}

type MatchService interface {
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ListGroupMatches(ctx context.Context, group string) ([]*models.Match, error)
	ListKnockoutMatches(ctx context.Context) ([]*models.Match, error)

	// FinishMatch records a final result by hand and locks the match so
	// the feed can never overwrite the correction, then runs the finish
	// pipeline.
	FinishMatch(ctx context.Context, matchID, homeScore, awayScore int) (*models.Match, error)

	// UpdateMatch applies a partial correction; when the corrected row is
	// scoreable the finish pipeline reruns so derived points converge.
	UpdateMatch(ctx context.Context, matchID int, input MatchUpdateInput) (*models.Match, error)

	// ProcessFinishedMatch is the single post-finish pipeline: score
	// predictions, then promote (group match) or advance + award bracket
	// points (knockout match). Invoked by admin finishes and feed syncs.
	ProcessFinishedMatch(ctx context.Context, match *models.Match) error

	// SeedKnockoutMatches (re)creates the knockout rows from the fixed
	// bracket template, all slots unresolved. ResetKnockoutMatches drops
	// them without reseeding.
	SeedKnockoutMatches(ctx context.Context) error
	ResetKnockoutMatches(ctx context.Context) error
}

type matchService struct {
	matchRepo       repositories.MatchRepository
	scoringService  ScoringService
	promotion       PromotionService
	bracketScoring  BracketScoringService
	hub             *engine.Hub
	logger          *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	scoringService ScoringService,
	promotion PromotionService,
	bracketScoring BracketScoringService,
	hub *engine.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:      matchRepo,
		scoringService: scoringService,
		promotion:      promotion,
		bracketScoring: bracketScoring,
		hub:            hub,
		logger:         logger,
	}
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) ListGroupMatches(ctx context.Context, group string) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByGroup(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of group %s: %w", group, err)
	}
	return matches, nil
}

func (s *matchService) ListKnockoutMatches(ctx context.Context) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListKnockout(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list knockout matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) FinishMatch(ctx context.Context, matchID, homeScore, awayScore int) (*models.Match, error) {
	if homeScore < 0 || awayScore < 0 {
		return nil, ErrInvalidScore
	}
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	match.HomeScore = &homeScore
	match.AwayScore = &awayScore
	match.Status = models.StatusFinished
	match.IsLocked = true
	if err := s.matchRepo.Update(ctx, nil, match); err != nil {
		return nil, fmt.Errorf("failed to finish match %d: %w", matchID, err)
	}

	s.logger.Info("match finished by admin",
		slog.Int("match_id", matchID),
		slog.Int("home", homeScore),
		slog.Int("away", awayScore))

	if err := s.ProcessFinishedMatch(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *matchService) UpdateMatch(ctx context.Context, matchID int, input MatchUpdateInput) (*models.Match, error) {
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if input.Status != nil && !input.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *input.Status)
	}
	if input.Phase != nil && !input.Phase.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPhase, *input.Phase)
	}
	if (input.HomeScore != nil && *input.HomeScore < 0) || (input.AwayScore != nil && *input.AwayScore < 0) {
		return nil, ErrInvalidScore
	}

	if input.HomeTeam != nil {
		match.HomeTeam = *input.HomeTeam
	}
	if input.AwayTeam != nil {
		match.AwayTeam = *input.AwayTeam
	}
	if input.HomePlaceholder != nil {
		match.HomePlaceholder = input.HomePlaceholder
	}
	if input.AwayPlaceholder != nil {
		match.AwayPlaceholder = input.AwayPlaceholder
	}
	if input.HomeScore != nil {
		match.HomeScore = input.HomeScore
	}
	if input.AwayScore != nil {
		match.AwayScore = input.AwayScore
	}
	if input.Phase != nil {
		match.Phase = *input.Phase
	}
	if input.Status != nil {
		match.Status = *input.Status
	}
	if input.IsLocked != nil {
		match.IsLocked = *input.IsLocked
	}
	if input.KickoffAt != nil {
		match.KickoffAt = *input.KickoffAt
	}

	if err := s.matchRepo.Update(ctx, nil, match); err != nil {
		return nil, fmt.Errorf("failed to update match %d: %w", matchID, err)
	}
	s.logger.Info("match updated by admin", slog.Int("match_id", matchID))

	if match.Scoreable() {
		if err := s.ProcessFinishedMatch(ctx, match); err != nil {
			return nil, err
		}
	}
	return match, nil
}

func (s *matchService) ProcessFinishedMatch(ctx context.Context, match *models.Match) error {
	if _, err := s.scoringService.ScoreMatch(ctx, match.ID); err != nil {
		return fmt.Errorf("scoring predictions of match %d: %w", match.ID, err)
	}

	if match.Phase == models.PhaseGroup {
		if match.GroupLetter == nil {
			s.logger.Warn("group match without group letter", slog.Int("match_id", match.ID))
			return nil
		}
		if err := s.promotion.PromoteFromGroup(ctx, *match.GroupLetter); err != nil {
			return fmt.Errorf("promoting group %s: %w", *match.GroupLetter, err)
		}
		return nil
	}

	if err := s.promotion.AdvanceWinner(ctx, match); err != nil {
		return err
	}
	if winner := match.Winner(); winner != "" {
		if _, err := s.bracketScoring.AwardPointsForMatch(ctx, match.ID, winner); err != nil {
			return fmt.Errorf("awarding bracket points for match %d: %w", match.ID, err)
		}
	}
	return nil
}

func (s *matchService) SeedKnockoutMatches(ctx context.Context) error {
	if err := s.matchRepo.DeleteByPhases(ctx, nil, models.KnockoutPhases); err != nil {
		return fmt.Errorf("failed to clear knockout matches: %w", err)
	}
	for _, slot := range engine.KnockoutTemplate {
		bracketID := slot.BracketID
		home, away := slot.Home, slot.Away
		match := &models.Match{
			HomePlaceholder: &home,
			AwayPlaceholder: &away,
			Phase:           slot.Phase,
			Status:          models.StatusScheduled,
			BracketID:       &bracketID,
			KickoffAt:       time.Now(),
		}
		if err := s.matchRepo.Create(ctx, nil, match); err != nil {
			return fmt.Errorf("failed to seed knockout slot %d: %w", slot.BracketID, err)
		}
	}
	s.logger.Info("knockout bracket seeded", slog.Int("matches", len(engine.KnockoutTemplate)))
	s.hub.Publish(engine.EventKnockoutSeeded, nil)
	return nil
}

func (s *matchService) ResetKnockoutMatches(ctx context.Context) error {
	if err := s.matchRepo.DeleteByPhases(ctx, nil, models.KnockoutPhases); err != nil {
		return fmt.Errorf("failed to reset knockout matches: %w", err)
	}
	s.logger.Info("knockout bracket reset")
	s.hub.Publish(engine.EventKnockoutReset, nil)
	return nil
}
