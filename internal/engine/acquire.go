package engine

import (
	"math"

	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/world"
)

// AcquisitionCost returns what acquiring the next cell costs the player and,
// for threshold-gated rulesets, the standing required before paying.
func AcquisitionCost(st *State, rs *catalog.Ruleset, role *catalog.Role) (cost map[catalog.Resource]int, gate map[catalog.Resource]int) {
	acq := rs.Acquisition
	if acq.RoleCost {
		return role.AcquireCost, nil
	}

	owned := st.OwnedCells()
	cost = map[catalog.Resource]int{catalog.Economic: acq.BasePrice * owned}
	if len(acq.Thresholds) == 0 {
		return cost, nil
	}
	i := clampInt(owned-acq.InitialCells, 0, len(acq.Thresholds)-1)
	th := acq.Thresholds[i]
	gate = map[catalog.Resource]int{
		catalog.Influence:  th.Influence,
		catalog.Reputation: th.Reputation,
	}
	cost[catalog.Influence] = int(math.Floor(float64(th.Influence) * acq.InfluenceShare))
	cost[catalog.Reputation] = int(math.Floor(float64(th.Reputation) * acq.ReputationShare))
	return cost, gate
}

// acquire transfers an unowned, ownable cell to the player. Once the player
// holds land, new cells must touch it when the ruleset asks for adjacency.
func (c *Core) acquire(st *State, rs *catalog.Ruleset, role *catalog.Role, cellID string) bool {
	cell := st.Grid.Get(cellID)
	if cell == nil || cell.Owned() || !cell.Ownable() {
		return false
	}
	if rs.Acquisition.Adjacency && st.OwnedCells() > 0 && !st.Grid.AdjacentToOwner(cell.Pos, st.Role) {
		return false
	}

	cost, gate := AcquisitionCost(st, rs, role)
	if !canAfford(st, rs, gate) || !canAfford(st, rs, cost) {
		return false
	}
	pay(st, rs, cost)

	cell.Owner = st.Role
	switch {
	case rs.Layout == world.LayoutPlots:
		cell.Type = world.TypePlayer
	case role.HomeType != "":
		cell.Type = world.CellType(role.HomeType)
	}
	return true
}
