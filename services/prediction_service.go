package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tippliga/tippliga/models"
	"github.com/tippliga/tippliga/repositories"
)

type PredictionService interface {
	// SubmitPrediction stores or overwrites a user's score guess. Rejected
	// before any write when the match has kicked off, or when a league
	// context is given and the user is blocked there.
	SubmitPrediction(ctx context.Context, userID, matchID int, leagueID *int, homeScore, awayScore int) (*models.Prediction, error)
	ListUserPredictions(ctx context.Context, userID int) ([]*models.Prediction, error)
}

type predictionService struct {
	matchRepo      repositories.MatchRepository
	predictionRepo repositories.PredictionRepository
	leagueRepo     repositories.LeagueRepository
	now            func() time.Time
}

func NewPredictionService(
	matchRepo repositories.MatchRepository,
	predictionRepo repositories.PredictionRepository,
	leagueRepo repositories.LeagueRepository,
) PredictionService {
	return &predictionService{
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		leagueRepo:     leagueRepo,
		now:            time.Now,
	}
}

func (s *predictionService) SubmitPrediction(ctx context.Context, userID, matchID int, leagueID *int, homeScore, awayScore int) (*models.Prediction, error) {
	if homeScore < 0 || awayScore < 0 {
		return nil, ErrInvalidScore
	}

	if leagueID != nil {
		participant, err := s.leagueRepo.GetParticipant(ctx, *leagueID, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrParticipantNotFound) {
				return nil, ErrParticipantNotFound
			}
			return nil, fmt.Errorf("failed to check league membership: %w", err)
		}
		if participant.Blocked {
			return nil, ErrParticipantBlocked
		}
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}

	// Guesses lock at kickoff; a live or finished status closes them even
	// if the clock disagrees.
	if match.Status != models.StatusScheduled && match.Status != models.StatusPending {
		return nil, ErrPredictionClosed
	}
	if !s.now().Before(match.KickoffAt) {
		return nil, ErrPredictionClosed
	}

	prediction := &models.Prediction{
		UserID:    userID,
		MatchID:   matchID,
		HomeScore: homeScore,
		AwayScore: awayScore,
	}
	if err := s.predictionRepo.Upsert(ctx, nil, prediction); err != nil {
		return nil, fmt.Errorf("failed to store prediction: %w", err)
	}
	return prediction, nil
}

func (s *predictionService) ListUserPredictions(ctx context.Context, userID int) ([]*models.Prediction, error) {
	predictions, err := s.predictionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions of user %d: %w", userID, err)
	}
	return predictions, nil
}
