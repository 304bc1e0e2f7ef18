package services

import (
	"context"
	"fmt"

	"github.com/tippliga/tippliga/engine"
	"github.com/tippliga/tippliga/models"
	"github.com/tippliga/tippliga/repositories"
)

type StandingsService interface {
	// GroupStandings derives the ranked table for one group from finished
	// group matches. Stateless: the same match log always yields the same
	// table.
	GroupStandings(ctx context.Context, group string) ([]models.TeamStanding, error)
	AllGroupStandings(ctx context.Context) (map[string][]models.TeamStanding, error)
}

type standingsService struct {
	matchRepo repositories.MatchRepository
}

func NewStandingsService(matchRepo repositories.MatchRepository) StandingsService {
	return &standingsService{matchRepo: matchRepo}
}

func (s *standingsService) GroupStandings(ctx context.Context, group string) ([]models.TeamStanding, error) {
	matches, err := s.matchRepo.ListByGroup(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches of group %s: %w", group, err)
	}
	return engine.ComputeStandings(matches), nil
}

func (s *standingsService) AllGroupStandings(ctx context.Context) (map[string][]models.TeamStanding, error) {
	tables := make(map[string][]models.TeamStanding, len(engine.GroupLetters))
	for _, group := range engine.GroupLetters {
		standings, err := s.GroupStandings(ctx, group)
		if err != nil {
			return nil, err
		}
		tables[group] = standings
	}
	return tables, nil
}
