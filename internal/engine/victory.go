package engine

import (
	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/world"
)

// TimelineReason is the defeat reason when the calendar runs out.
const TimelineReason = "The timeline ended before you reached your goals."

// Evaluate decides whether st is terminal. Defeat is checked first and
// wins over victory, so at most one outcome is ever returned. Rulesets
// that declare their own victory rules accept any one of them; otherwise
// the role's rules apply.
func Evaluate(st *State, cat *catalog.Catalog) *Outcome {
	rs, ok := cat.Rulesets[string(st.Ruleset)]
	if !ok {
		return nil
	}
	role, ok := cat.Roles[st.Role]
	if !ok {
		return nil
	}
	at := func(o Outcome) *Outcome {
		o.Turn, o.Year, o.Week = st.Time.Turn, st.Time.Year, st.Time.Week
		return &o
	}

	if rs.Defeat {
		for _, d := range role.Defeat {
			r, ok := rs.Resolve(d.Resource)
			if ok && st.Ledger[r] <= d.AtMost {
				return at(Outcome{Kind: OutcomeDefeat, Reason: d.Reason})
			}
		}
	}

	rules := rs.Victory
	if len(rules) == 0 {
		rules = role.Victory
	}
	for _, v := range rules {
		if ruleMet(st, rs, v) {
			return at(Outcome{Kind: OutcomeVictory, VictoryKind: v.Kind})
		}
	}

	if timelineOver(rs, st.Time) {
		return at(Outcome{Kind: OutcomeDefeat, Reason: TimelineReason})
	}
	return nil
}

func ruleMet(st *State, rs *catalog.Ruleset, v catalog.VictoryRule) bool {
	if len(v.All) == 0 {
		return false
	}
	for _, cond := range v.All {
		if !conditionMet(st, rs, cond) {
			return false
		}
	}
	return true
}

func conditionMet(st *State, rs *catalog.Ruleset, cond catalog.Condition) bool {
	switch {
	case cond.Resource != "":
		r, ok := rs.Resolve(cond.Resource)
		return ok && st.Ledger[r] >= cond.AtLeast
	case cond.OwnedCells > 0:
		return st.OwnedCells() >= cond.OwnedCells
	case cond.CellType != "":
		return st.Grid.CountType(world.CellType(cond.CellType)) > st.Grid.CountType(world.CellType(cond.Exceeds))
	}
	return false
}
