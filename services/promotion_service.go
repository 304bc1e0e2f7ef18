package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tippliga/tippliga/engine"
	"github.com/tippliga/tippliga/models"
	"github.com/tippliga/tippliga/repositories"
)

type PromotionService interface {
	// IsGroupComplete reports whether the group has at least one match and
	// every one of them is finished.
	IsGroupComplete(ctx context.Context, group string) (bool, error)

	// PromoteFromGroup resolves the "1X"/"2X" round-of-16 slots of a
	// completed group. No-op when the group is incomplete, and idempotent:
	// a slot whose placeholder is already cleared is never written again,
	// so redundant triggers from multiple finished-match events are safe
	// without external locking.
	PromoteFromGroup(ctx context.Context, group string) error

	// PromoteAllCompletedGroups runs PromoteFromGroup over the fixed group
	// set. One group's failure is logged and does not stop the others.
	PromoteAllCompletedGroups(ctx context.Context) error

	// AdvanceWinner resolves "W<n>"/"L<n>" slots downstream of a finished
	// knockout match.
	AdvanceWinner(ctx context.Context, match *models.Match) error
}

type promotionService struct {
	matchRepo repositories.MatchRepository
	hub       *engine.Hub
	logger    *slog.Logger
}

func NewPromotionService(
	matchRepo repositories.MatchRepository,
	hub *engine.Hub,
	logger *slog.Logger,
) PromotionService {
	return &promotionService{
		matchRepo: matchRepo,
		hub:       hub,
		logger:    logger,
	}
}

func (s *promotionService) IsGroupComplete(ctx context.Context, group string) (bool, error) {
	matches, err := s.matchRepo.ListByGroup(ctx, group)
	if err != nil {
		return false, fmt.Errorf("failed to load matches of group %s: %w", group, err)
	}
	if len(matches) == 0 {
		return false, nil
	}
	for _, m := range matches {
		if !m.Status.IsFinished() {
			return false, nil
		}
	}
	return true, nil
}

func (s *promotionService) PromoteFromGroup(ctx context.Context, group string) error {
	complete, err := s.IsGroupComplete(ctx, group)
	if err != nil {
		return err
	}
	if !complete {
		return nil
	}

	matches, err := s.matchRepo.ListByGroup(ctx, group)
	if err != nil {
		return fmt.Errorf("failed to load matches of group %s: %w", group, err)
	}
	standings := engine.ComputeStandings(matches)
	if len(standings) < 2 {
		// Expected transiently while the tournament is only partially
		// seeded; skip instead of failing.
		s.logger.Warn("group complete but fewer than two standings rows, skipping promotion",
			slog.String("group", group), slog.Int("teams", len(standings)))
		return nil
	}

	winner, runnerUp := standings[0], standings[1]

	resolved, err := s.resolveSlots(ctx, map[string]models.TeamStanding{
		engine.GroupWinnerSlot(group):   winner,
		engine.GroupRunnerUpSlot(group): runnerUp,
	})
	if err != nil {
		return fmt.Errorf("failed to promote group %s: %w", group, err)
	}

	if resolved > 0 {
		s.logger.Info("group promoted",
			slog.String("group", group),
			slog.String("winner", winner.Team),
			slog.String("runner_up", runnerUp.Team),
			slog.Int("slots_resolved", resolved))
		s.hub.Publish(engine.EventGroupPromoted, map[string]interface{}{
			"group":     group,
			"winner":    winner.Team,
			"runner_up": runnerUp.Team,
		})
	}
	return nil
}

// resolveSlots writes each team into every knockout slot whose placeholder
// matches its code, skipping slots already carrying the team. Returns the
// number of slots written.
func (s *promotionService) resolveSlots(ctx context.Context, teamsBySlot map[string]models.TeamStanding) (int, error) {
	knockout, err := s.matchRepo.ListKnockout(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load knockout matches: %w", err)
	}

	resolved := 0
	for _, m := range knockout {
		if m.HomePlaceholder != nil {
			if team, ok := teamsBySlot[*m.HomePlaceholder]; ok && m.HomeTeam != team.Team {
				if err := s.matchRepo.ResolveSlot(ctx, nil, m.ID, repositories.SideHome, team.Team, team.Flag); err != nil {
					return resolved, err
				}
				resolved++
			}
		}
		if m.AwayPlaceholder != nil {
			if team, ok := teamsBySlot[*m.AwayPlaceholder]; ok && m.AwayTeam != team.Team {
				if err := s.matchRepo.ResolveSlot(ctx, nil, m.ID, repositories.SideAway, team.Team, team.Flag); err != nil {
					return resolved, err
				}
				resolved++
			}
		}
	}
	return resolved, nil
}

func (s *promotionService) PromoteAllCompletedGroups(ctx context.Context) error {
	for _, group := range engine.GroupLetters {
		if err := s.PromoteFromGroup(ctx, group); err != nil {
			// Isolate per group: log and keep going.
			s.logger.Error("group promotion failed",
				slog.String("group", group), slog.Any("error", err))
		}
	}
	return nil
}

func (s *promotionService) AdvanceWinner(ctx context.Context, match *models.Match) error {
	if match == nil || !match.Phase.IsKnockout() || match.BracketID == nil {
		return nil
	}
	winner := match.Winner()
	if winner == "" {
		// A drawn knockout result carries no decidable winner; the feed or
		// an admin correction supplies the post-shootout score later.
		s.logger.Warn("finished knockout match has no winner, skipping advancement",
			slog.Int("match_id", match.ID))
		return nil
	}

	winnerFlag := match.HomeFlag
	loserFlag := match.AwayFlag
	if winner == match.AwayTeam {
		winnerFlag, loserFlag = loserFlag, winnerFlag
	}

	teamsBySlot := map[string]models.TeamStanding{
		engine.WinnerSlot(*match.BracketID): {Team: winner, Flag: winnerFlag},
	}
	if loser := match.Loser(); loser != "" {
		teamsBySlot[engine.LoserSlot(*match.BracketID)] = models.TeamStanding{Team: loser, Flag: loserFlag}
	}

	resolved, err := s.resolveSlots(ctx, teamsBySlot)
	if err != nil {
		return fmt.Errorf("failed to advance winner of match %d: %w", match.ID, err)
	}
	if resolved > 0 {
		s.logger.Info("knockout winner advanced",
			slog.Int("match_id", match.ID),
			slog.String("winner", winner),
			slog.Int("slots_resolved", resolved))
		s.hub.Publish(engine.EventWinnerAdvanced, map[string]interface{}{
			"match_id": match.ID,
			"winner":   winner,
		})
	}
	return nil
}
