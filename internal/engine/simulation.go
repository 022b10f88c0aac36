// Package engine is the simulation core: a total, side-effect-free reducer
// that turns a State and an Action into the next State.
package engine

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/economy"
	"github.com/talgya/agro-hegemony/internal/entropy"
	"github.com/talgya/agro-hegemony/internal/weather"
	"github.com/talgya/agro-hegemony/internal/world"
)

// healthJitter is the +/- variation applied to open land in seeded games.
const healthJitter = 5

// Core holds the reference data and random source the reducer reads.
type Core struct {
	Catalog *catalog.Catalog

	// Source overrides the random source. When nil each dispatch draws
	// from a source seeded by the state seed and version, which keeps
	// replays of the same action log identical.
	Source entropy.Source
}

// New creates a core over cat.
func New(cat *catalog.Catalog) *Core {
	return &Core{Catalog: cat}
}

// GameOptions selects the variant and role of a new game.
type GameOptions struct {
	GameID  string
	Ruleset Ruleset
	Role    string
	Seed    int64
}

// NewGame builds the initial state for opts.
func (c *Core) NewGame(opts GameOptions) (*State, error) {
	if opts.Ruleset == "" {
		opts.Ruleset = RulesetTerritories
	}
	rs, ok := c.Catalog.Rulesets[string(opts.Ruleset)]
	if !ok {
		return nil, fmt.Errorf("unknown ruleset %q", opts.Ruleset)
	}
	role, ok := c.Catalog.Roles[opts.Role]
	if !ok {
		return nil, fmt.Errorf("unknown role %q", opts.Role)
	}
	if opts.GameID == "" {
		opts.GameID = uuid.NewString()
	}

	var homes []world.Home
	for _, id := range c.Catalog.RoleOrder {
		r := c.Catalog.Roles[id]
		if r.HomeType != "" {
			homes = append(homes, world.Home{Role: r.ID, Type: world.CellType(r.HomeType), Production: r.HomeProduction})
		}
	}
	grid, err := world.Build(world.LayoutConfig{Kind: rs.Layout, Seed: opts.Seed, Jitter: healthJitter}, homes, role.ID)
	if err != nil {
		return nil, fmt.Errorf("build %s grid: %w", rs.ID, err)
	}

	st := &State{
		GameID:            opts.GameID,
		Version:           1,
		Seed:              opts.Seed,
		Ruleset:           opts.Ruleset,
		Role:              role.ID,
		Time:              startTime(rs),
		Ledger:            make(Ledger, len(rs.Resources)),
		Grid:              grid,
		Active:            []GameEvent{},
		Pending:           []GameEvent{},
		Completed:         []GameEvent{},
		Fired:             []string{},
		Market:            economy.NewMarket(c.Catalog),
		Contracts:         []economy.Contract{},
		Harvested:         map[string]int{},
		ExportDestination: catalog.ScopeLocal,
		History:           []TurnRecord{},
	}
	for res, v := range role.Presets[rs.ID] {
		if r, ok := rs.Resolve(res); ok {
			st.Ledger[r] = v
		}
	}
	clampLedger(st, rs)

	c.enqueue(st, rs, c.scripted(st, rs))
	return st, nil
}

// Dispatch applies act to st and returns the next state. It never fails:
// an action whose preconditions do not hold returns st itself, untouched.
// Once the game is completed only ActReset has an effect.
func (c *Core) Dispatch(st *State, act Action) *State {
	if st == nil {
		return nil
	}
	if st.GameCompleted && act.Kind != ActReset {
		return st
	}
	rs, ok := c.Catalog.Rulesets[string(st.Ruleset)]
	if !ok {
		return st
	}
	role, ok := c.Catalog.Roles[st.Role]
	if !ok {
		return st
	}

	if act.Kind == ActReset {
		next, err := c.NewGame(GameOptions{GameID: st.GameID, Ruleset: st.Ruleset, Role: st.Role, Seed: st.Seed})
		if err != nil {
			return st
		}
		next.Version = st.Version + 1
		return next
	}

	src := c.source(st)
	next := st.Clone()
	var changed bool
	switch act.Kind {
	case ActAdvanceTurn:
		changed = c.advance(next, rs, src)
	case ActResolveEvent:
		changed = c.resolve(next, rs, role, act.EventID, act.OptionID)
	case ActAcquireCell:
		changed = c.acquire(next, rs, role, act.CellID)
	case ActSetProduction:
		changed = c.setProduction(next, rs, act.CellID, act.Production)
	case ActImproveProduction:
		changed = c.improveProduction(next, rs, act.CellID)
	case ActSustainablePractice:
		changed = c.sustainablePractice(next, rs, act.CellID)
	case ActCampaign:
		changed = c.campaign(next, rs, act.Campaign)
	case ActPlantCrop:
		changed = c.plant(next, rs, act.CellID, act.CropID)
	case ActHarvestCrop:
		changed = c.harvest(next, rs, act.CellID, src)
	case ActSetExportDestination:
		changed = c.setExportDestination(next, act.Region)
	case ActCreateContract:
		changed = c.createContract(next, rs, act, src)
	case ActFulfillContract:
		changed = c.fulfillContract(next, rs, act.ContractID, act.Amount)
	}
	if !changed {
		return st
	}

	clampLedger(next, rs)
	if out := Evaluate(next, c.Catalog); out != nil {
		next.Outcome = out
		next.GameCompleted = true
	}
	next.Version++
	return next
}

// Apply dispatches a sequence of actions in order.
func (c *Core) Apply(st *State, acts ...Action) *State {
	for _, a := range acts {
		st = c.Dispatch(st, a)
	}
	return st
}

func (c *Core) source(st *State) entropy.Source {
	if c.Source != nil {
		return c.Source
	}
	return entropy.NewSeeded(st.Seed*1_000_003 + int64(st.Version))
}

func startTime(rs *catalog.Ruleset) Time {
	t := Time{
		Year:    rs.Clock.StartYear,
		Week:    rs.Clock.StartWeek,
		Weather: weather.Sunny,
	}
	if t.Week < 1 {
		t.Week = 1
	}
	t.Season = seasonAt(rs, t)
	return t
}

// credit adds delta to res after aliasing. Untracked resources are ignored.
func credit(st *State, rs *catalog.Ruleset, res catalog.Resource, delta int) {
	r, ok := rs.Resolve(res)
	if !ok {
		return
	}
	st.Ledger[r] = clampInt(st.Ledger[r]+delta, rs.Min, rs.Max)
}

// canAfford reports whether every tracked cost is covered.
func canAfford(st *State, rs *catalog.Ruleset, cost map[catalog.Resource]int) bool {
	for res, amt := range cost {
		r, ok := rs.Resolve(res)
		if !ok {
			continue
		}
		if st.Ledger[r] < amt {
			return false
		}
	}
	return true
}

func pay(st *State, rs *catalog.Ruleset, cost map[catalog.Resource]int) {
	for res, amt := range cost {
		credit(st, rs, res, -amt)
	}
}

func gain(st *State, rs *catalog.Ruleset, g map[catalog.Resource]int) {
	for res, amt := range g {
		credit(st, rs, res, amt)
	}
}

// clampLedger keeps every tracked resource inside the ruleset bounds.
func clampLedger(st *State, rs *catalog.Ruleset) {
	if st.Ledger == nil {
		st.Ledger = make(Ledger, len(rs.Resources))
	}
	for _, r := range rs.Resources {
		st.Ledger[r] = clampInt(st.Ledger[r], rs.Min, rs.Max)
	}
}

// roundHalfUp rounds halves toward positive infinity, so -32.5 becomes -32.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
