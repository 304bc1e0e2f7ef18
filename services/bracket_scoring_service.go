package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tippliga/tippliga/engine"
	"github.com/tippliga/tippliga/models"
	"github.com/tippliga/tippliga/repositories"
)

type BracketScoringService interface {
	// AwardPointsForMatch pays the phase award to every bracket that
	// picked the given winner for the match, across all leagues. The
	// (bracket, match) award ledger makes the operation at-most-once: a
	// redundant invocation finds the pairs already recorded and adds
	// nothing. Returns the number of brackets paid.
	AwardPointsForMatch(ctx context.Context, matchID int, winner string) (int, error)

	// RecalculateAll rebuilds every bracket total from scratch: reset to
	// zero, then replay all finished matches in order. Runs inside a
	// single transaction under a global recompute lock, so a failure
	// aborts the whole rebuild instead of leaving partial totals; the
	// caller must rerun the operation in full.
	RecalculateAll(ctx context.Context) error
}

type bracketScoringService struct {
	runTx       func(ctx context.Context, fn repositories.TxFunc) error
	matchRepo   repositories.MatchRepository
	bracketRepo repositories.BracketRepository
	hub         *engine.Hub
	logger      *slog.Logger

	// Serializes full recomputation; per-match awards stay concurrent.
	recomputeMu sync.Mutex
}

func NewBracketScoringService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	bracketRepo repositories.BracketRepository,
	hub *engine.Hub,
	logger *slog.Logger,
) BracketScoringService {
	return &bracketScoringService{
		runTx:       repositories.RunInTx(db),
		matchRepo:   matchRepo,
		bracketRepo: bracketRepo,
		hub:         hub,
		logger:      logger,
	}
}

func (s *bracketScoringService) AwardPointsForMatch(ctx context.Context, matchID int, winner string) (int, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return 0, ErrMatchNotFound
		}
		return 0, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}

	awarded := 0
	err = s.runTx(ctx, func(exec repositories.SQLExecutor) error {
		awarded, err = s.awardInTx(ctx, exec, match, winner)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to award brackets for match %d: %w", matchID, err)
	}

	if awarded > 0 {
		s.logger.Info("bracket points awarded",
			slog.Int("match_id", matchID),
			slog.String("winner", winner),
			slog.Int("brackets", awarded))
	}
	return awarded, nil
}

// awardInTx applies the per-match award against the given executor. Phases
// outside the award table (THIRD_PLACE among them) pay nothing.
func (s *bracketScoringService) awardInTx(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, winner string) (int, error) {
	points := engine.BracketPhasePoints(match.Phase)
	if points == 0 || winner == "" {
		return 0, nil
	}

	brackets, err := s.bracketRepo.ListAll(ctx, exec)
	if err != nil {
		return 0, fmt.Errorf("failed to list brackets: %w", err)
	}

	awarded := 0
	for _, bracket := range brackets {
		if bracket.Picks[match.ID] != winner {
			continue
		}
		inserted, err := s.bracketRepo.InsertAward(ctx, exec, bracket.ID, match.ID, points)
		if err != nil {
			return awarded, err
		}
		if !inserted {
			// Already paid for this match; keep the total as is.
			continue
		}
		if err := s.bracketRepo.AddPoints(ctx, exec, bracket.ID, points); err != nil {
			return awarded, err
		}
		awarded++
	}
	return awarded, nil
}

func (s *bracketScoringService) RecalculateAll(ctx context.Context) error {
	s.recomputeMu.Lock()
	defer s.recomputeMu.Unlock()

	replayed := 0
	err := s.runTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.bracketRepo.DeleteAllAwards(ctx, exec); err != nil {
			return err
		}
		if err := s.bracketRepo.ResetAllPoints(ctx, exec); err != nil {
			return err
		}

		finished, err := s.matchRepo.ListFinished(ctx, exec)
		if err != nil {
			return fmt.Errorf("failed to list finished matches: %w", err)
		}

		for _, match := range finished {
			winner := match.Winner()
			if winner == "" {
				continue
			}
			if _, err := s.awardInTx(ctx, exec, match, winner); err != nil {
				return fmt.Errorf("replay of match %d: %w", match.ID, err)
			}
			replayed++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRecalculationFailed, err)
	}

	s.logger.Info("bracket points recalculated", slog.Int("matches_replayed", replayed))
	s.hub.Publish(engine.EventBracketsRescore, map[string]interface{}{
		"matches_replayed": replayed,
	})
	return nil
}
