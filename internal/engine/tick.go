package engine

import (
	"math"

	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/economy"
	"github.com/talgya/agro-hegemony/internal/entropy"
	"github.com/talgya/agro-hegemony/internal/weather"
	"github.com/talgya/agro-hegemony/internal/world"
)

// Territory drift constants.
const (
	regeneration    = 2  // health regained per turn by protected and indigenous land
	degradedHealth  = 30 // below this a producing cell loses output
	thrivingHealth  = 70 // above this a producing cell gains output
	degradeStep     = 10
	improveStep     = 5
	minDriftedLevel = 10
)

// advance moves the game one turn forward. Each stage runs in order:
//
//	clock → weather → growth → production → contracts → market → events → history
//
// The turn is refused while any active event is unresolved.
func (c *Core) advance(st *State, rs *catalog.Ruleset, src entropy.Source) bool {
	if len(st.Active) > 0 {
		return false
	}

	st.Time = stepClock(rs, st.Time)
	st.Time.Weather = weather.Roll(st.Time.Season, src)

	c.growCrops(st, rs)
	c.accrueProduction(st, rs)

	economy.ExpireContracts(st.Contracts, st.Time.Turn)
	boundary := seasonBoundary(rs, st.Time)
	st.Market.Update(c.Catalog, st.Time.Turn, rs.Clock.DaysPerTurn, st.Time.Season, boundary, src, func() string {
		return st.nextID("news")
	})

	c.enqueue(st, rs, c.Generate(st, rs, src))
	c.record(st, rs)
	return true
}

// accrueProduction pays out every producing cell the player holds and
// drifts cell health and output.
func (c *Core) accrueProduction(st *State, rs *catalog.Ruleset) {
	for i := range st.Grid.Cells {
		cell := &st.Grid.Cells[i]
		switch cell.Type {
		case world.TypeProtected, world.TypeIndigenous:
			cell.AddHealth(regeneration)
			continue
		}
		if cell.Owner != st.Role || cell.Production == "" {
			continue
		}
		p, ok := c.Catalog.Productions[cell.Production]
		if !ok {
			continue
		}
		income := int(math.Round(float64(p.Income) * float64(cell.ProductionLevel) / 100))
		credit(st, rs, catalog.Economic, income)
		credit(st, rs, catalog.Environmental, p.Environment)
		cell.AddHealth(p.Health)

		switch {
		case cell.Health < degradedHealth:
			cell.ProductionLevel = max(minDriftedLevel, cell.ProductionLevel-degradeStep)
		case cell.Health > thrivingHealth:
			cell.ProductionLevel = min(world.MaxProductionLevel, cell.ProductionLevel+improveStep)
		}
	}
}

// record appends a history sample, keeping the most recent HistoryLimit.
func (c *Core) record(st *State, rs *catalog.Ruleset) {
	st.History = append(st.History, TurnRecord{
		Turn:       st.Time.Turn,
		Year:       st.Time.Year,
		Week:       st.Time.Week,
		Season:     st.Time.Season,
		Ledger:     st.Ledger.Clone(),
		OwnedCells: st.OwnedCells(),
	})
	if n := rs.HistoryLimit; n > 0 && len(st.History) > n {
		st.History = st.History[len(st.History)-n:]
	}
}
