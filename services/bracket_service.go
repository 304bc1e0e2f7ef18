package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/tippliga/tippliga/models"
	"github.com/tippliga/tippliga/repositories"
)

type BracketService interface {
	// SubmitBracket stores or overwrites a user's knockout pick set for a
	// scope (league or global). Rejected once any knockout match has left
	// the scheduled state, and for blocked league participants, both
	// before any write.
	SubmitBracket(ctx context.Context, userID int, leagueID *int, picks models.BracketPicks) (*models.UserBracket, error)
	GetBracket(ctx context.Context, userID int, leagueID *int) (*models.UserBracket, error)
}

type bracketService struct {
	matchRepo   repositories.MatchRepository
	bracketRepo repositories.BracketRepository
	leagueRepo  repositories.LeagueRepository
}

func NewBracketService(
	matchRepo repositories.MatchRepository,
	bracketRepo repositories.BracketRepository,
	leagueRepo repositories.LeagueRepository,
) BracketService {
	return &bracketService{
		matchRepo:   matchRepo,
		bracketRepo: bracketRepo,
		leagueRepo:  leagueRepo,
	}
}

func (s *bracketService) SubmitBracket(ctx context.Context, userID int, leagueID *int, picks models.BracketPicks) (*models.UserBracket, error) {
	if len(picks) == 0 {
		return nil, ErrEmptyPicks
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

	knockout, err := s.matchRepo.ListKnockout(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load knockout matches: %w", err)
	}
	for _, m := range knockout {
		if m.Status != models.StatusScheduled && m.Status != models.StatusPending {
			return nil, ErrBracketClosed
		}
	}

	bracket := &models.UserBracket{
		UserID:   userID,
		LeagueID: leagueID,
		Picks:    picks,
	}
	if err := s.bracketRepo.Upsert(ctx, nil, bracket); err != nil {
		return nil, fmt.Errorf("failed to store bracket: %w", err)
	}
	return bracket, nil
}

func (s *bracketService) GetBracket(ctx context.Context, userID int, leagueID *int) (*models.UserBracket, error) {
	bracket, err := s.bracketRepo.GetByUserAndLeague(ctx, userID, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to load bracket of user %d: %w", userID, err)
	}
	return bracket, nil
}
