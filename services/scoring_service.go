package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tippliga/tippliga/engine"
	"github.com/tippliga/tippliga/models"
	"github.com/tippliga/tippliga/repositories"
)

type ScoringService interface {
	// Points is the pure per-prediction scoring rule; exposed so callers
	// can preview points without touching stored state.
	Points(match *models.Match, prediction *models.Prediction) int

	// ScoreMatch recomputes and persists the points of every prediction
	// for one match. Safe to rerun: it overwrites rather than increments,
	// so corrections converge on the right value. Returns the number of
	// predictions written.
	ScoreMatch(ctx context.Context, matchID int) (int, error)
}

type scoringService struct {
	matchRepo      repositories.MatchRepository
	predictionRepo repositories.PredictionRepository
	logger         *slog.Logger
}

func NewScoringService(
	matchRepo repositories.MatchRepository,
	predictionRepo repositories.PredictionRepository,
	logger *slog.Logger,
) ScoringService {
	return &scoringService{
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		logger:         logger,
	}
}

func (s *scoringService) Points(match *models.Match, prediction *models.Prediction) int {
	return engine.PredictionPoints(match, prediction)
}

func (s *scoringService) ScoreMatch(ctx context.Context, matchID int) (int, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return 0, ErrMatchNotFound
		}
		return 0, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}

	predictions, err := s.predictionRepo.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return 0, fmt.Errorf("failed to load predictions of match %d: %w", matchID, err)
	}

	scored := 0
	for _, prediction := range predictions {
		points := engine.PredictionPoints(match, prediction)
		if points == prediction.Points {
			continue
		}
		if err := s.predictionRepo.UpdatePoints(ctx, nil, prediction.ID, points); err != nil {
			return scored, fmt.Errorf("failed to persist points of prediction %d: %w", prediction.ID, err)
		}
		scored++
	}

	s.logger.Info("match predictions scored",
		slog.Int("match_id", matchID),
		slog.Int("predictions", len(predictions)),
		slog.Int("updated", scored))
	return scored, nil
}
