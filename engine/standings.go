package engine

import (
	"sort"

	"github.com/tippliga/tippliga/models"
)

// ComputeStandings derives a group table from the given matches. Only
// finished matches with both scores present contribute; everything else is
// skipped, so the result is a pure projection of the match log and two
// calls over the same input produce identical output.
//
// Ordering: points desc, goal difference desc, goals for desc, then team
// name asc as the stable key. No head-to-head tie-break is applied.
func ComputeStandings(matches []*models.Match) []models.TeamStanding {
	index := make(map[string]*models.TeamStanding)

	entry := func(team string, flag *string) *models.TeamStanding {
		if e, ok := index[team]; ok {
			if e.Flag == nil && flag != nil {
				e.Flag = flag
			}
			return e
		}
		e := &models.TeamStanding{Team: team, Flag: flag}
		index[team] = e
		return e
	}

	for _, m := range matches {
		if m == nil || !m.Scoreable() {
			continue
		}
		if m.HomeTeam == "" || m.AwayTeam == "" {
			continue
		}

		home := entry(m.HomeTeam, m.HomeFlag)
		away := entry(m.AwayTeam, m.AwayFlag)

		hs, as := *m.HomeScore, *m.AwayScore

		home.Played++
		away.Played++
		home.GoalsFor += hs
		home.GoalsAgainst += as
		away.GoalsFor += as
		away.GoalsAgainst += hs

		switch {
		case hs > as:
			home.Won++
			home.Points += 3
			away.Lost++
		case as > hs:
			away.Won++
			away.Points += 3
			home.Lost++
		default:
			home.Drawn++
			away.Drawn++
			home.Points++
			away.Points++
		}
	}

	standings := make([]models.TeamStanding, 0, len(index))
	for _, e := range index {
		e.GoalDifference = e.GoalsFor - e.GoalsAgainst
		standings = append(standings, *e)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.Team < b.Team
	})

	for i := range standings {
		standings[i].Position = i + 1
	}
	return standings
}
