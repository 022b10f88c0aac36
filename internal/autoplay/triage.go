package autoplay

import (
	"sort"

	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/engine"
	"github.com/talgya/agro-hegemony/internal/world"
)

// Assessment holds signals derived from a snapshot before any decision.
// Deterministic and cheap.
type Assessment struct {
	Plots    bool
	Income   catalog.Resource // money in plots, economic otherwise
	Owned    []*world.Cell
	Ready    []*world.Cell // ready crops
	Empty    []*world.Cell // owned, nothing planted
	Idle     []*world.Cell // owned, no production
	Frontier []*world.Cell // acquirable next

	Weakest      catalog.Resource
	WeakestValue int
}

// Assess derives an Assessment from snap.
func Assess(snap *Snapshot) *Assessment {
	st := snap.State
	a := &Assessment{Plots: st.Ruleset == engine.RulesetPlots, Income: catalog.Economic}
	if a.Plots {
		a.Income = catalog.Money
	}
	if st.Grid == nil {
		return a
	}

	for i := range st.Grid.Cells {
		c := &st.Grid.Cells[i]
		if c.Owner != st.Role {
			continue
		}
		a.Owned = append(a.Owned, c)
		switch {
		case c.Crop != nil && c.Crop.Ready:
			a.Ready = append(a.Ready, c)
		case c.Crop == nil:
			a.Empty = append(a.Empty, c)
		}
		if c.Production == "" {
			a.Idle = append(a.Idle, c)
		}
	}

	for i := range st.Grid.Cells {
		c := &st.Grid.Cells[i]
		if c.Owned() || !c.Ownable() {
			continue
		}
		if len(a.Owned) > 0 && !st.Grid.AdjacentToOwner(c.Pos, st.Role) {
			continue
		}
		a.Frontier = append(a.Frontier, c)
	}
	// Healthiest land first, ties by id for stable play.
	sort.SliceStable(a.Frontier, func(i, j int) bool {
		if a.Frontier[i].Health != a.Frontier[j].Health {
			return a.Frontier[i].Health > a.Frontier[j].Health
		}
		return a.Frontier[i].ID < a.Frontier[j].ID
	})

	keys := make([]string, 0, len(st.Ledger))
	for r := range st.Ledger {
		keys = append(keys, string(r))
	}
	sort.Strings(keys)
	for i, k := range keys {
		v := st.Ledger[catalog.Resource(k)]
		if i == 0 || v < a.WeakestValue {
			a.Weakest, a.WeakestValue = catalog.Resource(k), v
		}
	}
	return a
}
