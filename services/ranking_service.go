package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/tippliga/tippliga/models"
	"github.com/tippliga/tippliga/repositories"
)

type RankingService interface {
	// GlobalRanking ranks every known user over the global scope: global
	// bracket, global bonus questions, no trivia points.
	GlobalRanking(ctx context.Context) ([]models.RankingEntry, error)

	// LeagueRanking ranks a league's participants. The bracket component
	// uses the league bracket when the user has one, otherwise their
	// global bracket.
	LeagueRanking(ctx context.Context, leagueID int) ([]models.RankingEntry, error)
}

type rankingService struct {
	rankingRepo repositories.RankingRepository
	bracketRepo repositories.BracketRepository
	matchRepo   repositories.MatchRepository
}

func NewRankingService(
	rankingRepo repositories.RankingRepository,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
) RankingService {
	return &rankingService{
		rankingRepo: rankingRepo,
		bracketRepo: bracketRepo,
		matchRepo:   matchRepo,
	}
}

func (s *rankingService) GlobalRanking(ctx context.Context) ([]models.RankingEntry, error) {
	return s.ranking(ctx, nil)
}

func (s *rankingService) LeagueRanking(ctx context.Context, leagueID int) ([]models.RankingEntry, error) {
	return s.ranking(ctx, &leagueID)
}

func (s *rankingService) ranking(ctx context.Context, leagueID *int) ([]models.RankingEntry, error) {
	users, err := s.rankingRepo.UsersForScope(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to load users for ranking: %w", err)
	}

	predictionPoints, err := s.rankingRepo.PredictionPointsByUser(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum prediction points: %w", err)
	}
	bonusPoints, err := s.rankingRepo.BonusPointsByUser(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum bonus points: %w", err)
	}

	triviaPoints := map[int]int{}
	if leagueID != nil {
		triviaPoints, err = s.rankingRepo.ExtraPointsByUser(ctx, *leagueID)
		if err != nil {
			return nil, fmt.Errorf("failed to load extra points: %w", err)
		}
	}

	bracketPoints, err := s.bracketPointsByUser(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	actualGoals, err := s.matchRepo.TotalGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute total goals: %w", err)
	}

	entries := make([]models.RankingEntry, 0, len(users))
	guesses := make(map[int]*int, len(users))
	for _, user := range users {
		entry := models.RankingEntry{
			UserID:           user.ID,
			UserName:         user.Name,
			PredictionPoints: predictionPoints[user.ID],
			BracketPoints:    bracketPoints[user.ID],
			BonusPoints:      bonusPoints[user.ID],
			TriviaPoints:     triviaPoints[user.ID],
		}
		entry.TotalPoints = entry.PredictionPoints + entry.BracketPoints + entry.BonusPoints + entry.TriviaPoints
		entries = append(entries, entry)
		guesses[user.ID] = user.TotalGoalsGuess
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		da := TieBreakDistance(guesses[a.UserID], actualGoals)
		db := TieBreakDistance(guesses[b.UserID], actualGoals)
		if da != db {
			return da < db
		}
		return a.UserID < b.UserID
	})

	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries, nil
}

// bracketPointsByUser applies the deterministic bracket-selection rule:
// one bracket per user per scope, the league-scoped bracket when present,
// the global bracket as fallback. A user never holds two relevant
// brackets at once, so nothing is silently discarded.
func (s *rankingService) bracketPointsByUser(ctx context.Context, leagueID *int) (map[int]int, error) {
	points := make(map[int]int)

	globals, err := s.bracketRepo.ListByLeague(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list global brackets: %w", err)
	}
	for _, b := range globals {
		points[b.UserID] = b.Points
	}

	if leagueID != nil {
		leagueBrackets, err := s.bracketRepo.ListByLeague(ctx, leagueID)
		if err != nil {
			return nil, fmt.Errorf("failed to list brackets of league %d: %w", *leagueID, err)
		}
		for _, b := range leagueBrackets {
			points[b.UserID] = b.Points
		}
	}
	return points, nil
}

// TieBreakDistance measures how far a user's total-goals guess lies from
// the actual aggregate. A missing guess counts as infinitely far, placing
// the user last among point-tied entrants.
func TieBreakDistance(guess *int, actual int) int {
	if guess == nil {
		return math.MaxInt
	}
	d := *guess - actual
	if d < 0 {
		return -d
	}
	return d
}
