// Territory production: choosing what a cell produces and improving it.
package engine

import (
	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/world"
)

// Production level constants.
const (
	initialLevel     = 50
	levelStep        = 10
	improveBaseCost  = 50
	improveLevelCost = 2 // one unit of cost per improveLevelCost levels
)

// ownedCell returns the cell with id when the player holds it.
func ownedCell(st *State, id string) *world.Cell {
	cell := st.Grid.Get(id)
	if cell == nil || cell.Owner != st.Role {
		return nil
	}
	return cell
}

// ImproveCost is the economic price of raising a cell at level by one step.
func ImproveCost(level int) int {
	return improveBaseCost + level/improveLevelCost
}

func (c *Core) setProduction(st *State, rs *catalog.Ruleset, cellID, production string) bool {
	cell := ownedCell(st, cellID)
	if cell == nil {
		return false
	}
	p, ok := c.Catalog.Productions[production]
	if !ok {
		return false
	}
	cost := map[catalog.Resource]int{catalog.Economic: p.Cost}
	if !canAfford(st, rs, cost) {
		return false
	}
	pay(st, rs, cost)
	cell.Production = p.ID
	cell.ProductionLevel = initialLevel
	return true
}

func (c *Core) improveProduction(st *State, rs *catalog.Ruleset, cellID string) bool {
	cell := ownedCell(st, cellID)
	if cell == nil || cell.Production == "" || cell.ProductionLevel >= world.MaxProductionLevel {
		return false
	}
	cost := map[catalog.Resource]int{catalog.Economic: ImproveCost(cell.ProductionLevel)}
	if !canAfford(st, rs, cost) {
		return false
	}
	pay(st, rs, cost)
	cell.ProductionLevel = min(world.MaxProductionLevel, cell.ProductionLevel+levelStep)
	return true
}

func (c *Core) sustainablePractice(st *State, rs *catalog.Ruleset, cellID string) bool {
	cell := ownedCell(st, cellID)
	if cell == nil {
		return false
	}
	pr := c.Catalog.Practice
	if !canAfford(st, rs, pr.Cost) {
		return false
	}
	pay(st, rs, pr.Cost)
	gain(st, rs, pr.Gain)
	cell.AddHealth(pr.Health)
	return true
}
