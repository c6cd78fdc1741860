package state

import "github.com/ruleforge/dungeon/pkg/rules"

// EvaluateOutcome checks the end conditions and transitions the session
// to a terminal outcome when one is met. Terminal states are sticky;
// re-evaluating a finished session is a no-op.
//
// Precedence: an explicit lose flag always wins. Otherwise a satisfied
// win condition is checked before turn-limit expiry, so winning on the
// final turn counts as a win.
func EvaluateOutcome(gs *GameState, rs *rules.RuleSet) {
	if gs.IsEnded() {
		return
	}

	for _, flag := range rs.EndConditions.LoseAnyFlags {
		if gs.Flag(flag) {
			gs.Outcome = OutcomeLost
			return
		}
	}

	if len(rs.EndConditions.WinAllFlags) > 0 {
		won := true
		for _, flag := range rs.EndConditions.WinAllFlags {
			if !gs.Flag(flag) {
				won = false
				break
			}
		}
		if won {
			gs.Outcome = OutcomeWon
			return
		}
	}

	if gs.Turn >= rs.EndConditions.MaxTurns {
		gs.Outcome = OutcomeLost
		return
	}

	gs.Outcome = OutcomeInProgress
}
