package engine

import (
	"fmt"

	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/economy"
	"github.com/talgya/agro-hegemony/internal/weather"
	"github.com/talgya/agro-hegemony/internal/world"
)

// Normalize fills in substructures missing from older or partial snapshots
// so that a loaded state can be dispatched against. It mutates st in place
// and fails only when the ruleset or role is unknown.
func Normalize(st *State, cat *catalog.Catalog) error {
	if st.Ruleset == "" {
		st.Ruleset = RulesetTerritories
	}
	rs, ok := cat.Rulesets[string(st.Ruleset)]
	if !ok {
		return fmt.Errorf("normalize: unknown ruleset %q", st.Ruleset)
	}
	role, ok := cat.Roles[st.Role]
	if !ok {
		return fmt.Errorf("normalize: unknown role %q", st.Role)
	}
	if st.Version == 0 {
		st.Version = 1
	}

	if st.Time.Year == 0 {
		st.Time.Year = rs.Clock.StartYear
	}
	if st.Time.Week < 1 || st.Time.Week > 52 {
		st.Time.Week = 1
	}
	if !st.Time.Season.Valid() {
		st.Time.Season = seasonAt(rs, st.Time)
	}
	if st.Time.Weather == "" {
		st.Time.Weather = weather.Sunny
	}

	if st.Grid == nil || len(st.Grid.Cells) == 0 {
		var homes []world.Home
		for _, id := range cat.RoleOrder {
			r := cat.Roles[id]
			if r.HomeType != "" {
				homes = append(homes, world.Home{Role: r.ID, Type: world.CellType(r.HomeType), Production: r.HomeProduction})
			}
		}
		g, err := world.Build(world.LayoutConfig{Kind: rs.Layout, Seed: st.Seed, Jitter: healthJitter}, homes, role.ID)
		if err != nil {
			return fmt.Errorf("normalize: %w", err)
		}
		st.Grid = g
	}

	if st.Ledger == nil {
		st.Ledger = make(Ledger, len(rs.Resources))
		for res, v := range role.Presets[rs.ID] {
			if r, ok := rs.Resolve(res); ok {
				st.Ledger[r] = v
			}
		}
	}
	clampLedger(st, rs)

	if st.Market == nil {
		st.Market = economy.NewMarket(cat)
	}
	if st.Market.News == nil {
		st.Market.News = []economy.News{}
	}
	if st.Market.History == nil {
		st.Market.History = make(map[string][]economy.PricePoint, len(cat.Crops))
	}
	if st.Contracts == nil {
		st.Contracts = []economy.Contract{}
	}
	if st.Harvested == nil {
		st.Harvested = map[string]int{}
	}
	if st.ExportDestination == "" || st.Market.Region(st.ExportDestination) == nil {
		st.ExportDestination = catalog.ScopeLocal
	}

	if st.Active == nil {
		st.Active = []GameEvent{}
	}
	if st.Pending == nil {
		st.Pending = []GameEvent{}
	}
	if st.Completed == nil {
		st.Completed = []GameEvent{}
	}
	if st.Fired == nil {
		st.Fired = []string{}
	}
	if st.History == nil {
		st.History = []TurnRecord{}
	}
	if st.GameCompleted && st.Outcome == nil {
		st.Outcome = Evaluate(st, cat)
	}
	return nil
}
