package engine

import (
	"fmt"

	"github.com/tippliga/tippliga/models"
)

// GroupLetters is the fixed set of group identifiers for the tournament.
var GroupLetters = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// KnockoutSlot is an unresolved side of a knockout match: "1A"/"2A" point
// at a group's final table, "W49"/"L61" at another knockout match's
// outcome.
type KnockoutSlot struct {
	BracketID int
	Phase     models.MatchPhase
	Home      string
	Away      string
}

// KnockoutTemplate is the fixed bracket layout, FIFA match numbering:
// 49-56 round of 16, 57-60 quarters, 61-62 semis, 63 third place, 64 final.
// The promotion resolver relies on this map never changing mid-tournament.
var KnockoutTemplate = []KnockoutSlot{
	{49, models.PhaseRoundOf16, "1A", "2B"},
	{50, models.PhaseRoundOf16, "1C", "2D"},
	{51, models.PhaseRoundOf16, "1B", "2A"},
	{52, models.PhaseRoundOf16, "1D", "2C"},
	{53, models.PhaseRoundOf16, "1E", "2F"},
	{54, models.PhaseRoundOf16, "1G", "2H"},
	{55, models.PhaseRoundOf16, "1F", "2E"},
	{56, models.PhaseRoundOf16, "1H", "2G"},
	{57, models.PhaseQuarter, "W49", "W50"},
	{58, models.PhaseQuarter, "W53", "W54"},
	{59, models.PhaseQuarter, "W51", "W52"},
	{60, models.PhaseQuarter, "W55", "W56"},
	{61, models.PhaseSemi, "W57", "W58"},
	{62, models.PhaseSemi, "W59", "W60"},
	{63, models.PhaseThirdPlace, "L61", "L62"},
	{64, models.PhaseFinal, "W61", "W62"},
}

// GroupWinnerSlot and GroupRunnerUpSlot build the placeholder codes a
// completed group resolves ("1A", "2B", ...).
func GroupWinnerSlot(group string) string   { return "1" + group }
func GroupRunnerUpSlot(group string) string { return "2" + group }

// WinnerSlot and LoserSlot build the placeholder codes a finished knockout
// match resolves.
func WinnerSlot(bracketID int) string { return fmt.Sprintf("W%d", bracketID) }
func LoserSlot(bracketID int) string  { return fmt.Sprintf("L%d", bracketID) }
