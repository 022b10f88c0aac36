package engine

import (
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/economy"
	"github.com/talgya/agro-hegemony/internal/weather"
	"github.com/talgya/agro-hegemony/internal/world"
)

// Ruleset selects one of the two game variants.
type Ruleset string

const (
	RulesetTerritories Ruleset = "territories"
	RulesetPlots       Ruleset = "plots"
)

// Event categories produced by the generator.
const (
	CategoryAssembly = "assembly"
)

// completedLimit caps the resolved-event history kept in state.
const completedLimit = 100

// Ledger maps each resource kind to its current value.
type Ledger map[catalog.Resource]int

// Clone returns a copy of the ledger.
func (l Ledger) Clone() Ledger {
	return maps.Clone(l)
}

// Time is the simulated calendar position.
type Time struct {
	Turn    int            `json:"turn"` // turns since game start
	Year    int            `json:"year"`
	Week    int            `json:"week"` // 1..52
	Season  weather.Season `json:"season"`
	Weather weather.Kind   `json:"weather"`
}

// GameEvent is a narrative event. Options are immutable once instantiated.
type GameEvent struct {
	ID             string           `json:"id"`
	TemplateID     string           `json:"template_id"`
	Category       string           `json:"category"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Year           int              `json:"year"`
	Week           int              `json:"week"`
	Turn           int              `json:"turn"`
	Options        []catalog.Option `json:"options"`
	Resolved       bool             `json:"resolved"`
	ResolvedOption string           `json:"resolved_option,omitempty"`
	ResolvedTurn   int              `json:"resolved_turn,omitempty"`
}

// Option returns the option with the given id, or nil.
func (e *GameEvent) Option(id string) *catalog.Option {
	for i := range e.Options {
		if e.Options[i].ID == id {
			return &e.Options[i]
		}
	}
	return nil
}

// Outcome kinds.
const (
	OutcomeVictory = "victory"
	OutcomeDefeat  = "defeat"
)

// Outcome is a terminal game result.
type Outcome struct {
	Kind        string `json:"kind"`
	VictoryKind string `json:"victory_kind,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Turn        int    `json:"turn"`
	Year        int    `json:"year"`
	Week        int    `json:"week"`
}

// Victory reports whether the outcome is a win.
func (o *Outcome) Victory() bool {
	return o != nil && o.Kind == OutcomeVictory
}

// TurnRecord is one sample of the per-turn history.
type TurnRecord struct {
	Turn       int            `json:"turn"`
	Year       int            `json:"year"`
	Week       int            `json:"week"`
	Season     weather.Season `json:"season"`
	Ledger     Ledger         `json:"ledger"`
	OwnedCells int            `json:"owned_cells"`
}

// State is a full game snapshot. A State is never mutated after Dispatch
// returns it; every action produces a new version.
type State struct {
	GameID  string  `json:"game_id"`
	Version uint64  `json:"version"`
	Seed    int64   `json:"seed"`
	Seq     uint64  `json:"seq"`
	Ruleset Ruleset `json:"ruleset"`
	Role    string  `json:"role"`

	Time   Time        `json:"time"`
	Ledger Ledger      `json:"ledger"`
	Grid   *world.Grid `json:"grid"`

	Active    []GameEvent `json:"active_events"`
	Pending   []GameEvent `json:"pending_events"`
	Completed []GameEvent `json:"completed_events"`
	Fired     []string    `json:"fired_templates"`

	Market            *economy.Market    `json:"market"`
	Contracts         []economy.Contract `json:"contracts"`
	Harvested         map[string]int     `json:"harvested"`
	ExportDestination string             `json:"export_destination"`
	AssemblyScheduled bool               `json:"assembly_scheduled"`

	History []TurnRecord `json:"history"`

	GameCompleted bool     `json:"game_completed"`
	Outcome       *Outcome `json:"outcome,omitempty"`
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Ledger = maps.Clone(s.Ledger)
	out.Grid = s.Grid.Clone()
	out.Active = slices.Clone(s.Active)
	out.Pending = slices.Clone(s.Pending)
	out.Completed = slices.Clone(s.Completed)
	out.Fired = slices.Clone(s.Fired)
	out.Market = s.Market.Clone()
	out.Contracts = slices.Clone(s.Contracts)
	out.Harvested = maps.Clone(s.Harvested)
	out.History = slices.Clone(s.History)
	for i := range out.History {
		out.History[i].Ledger = maps.Clone(out.History[i].Ledger)
	}
	if s.Outcome != nil {
		o := *s.Outcome
		out.Outcome = &o
	}
	return &out
}

// OwnedCells counts the cells held by the player's role.
func (s *State) OwnedCells() int {
	if s.Grid == nil {
		return 0
	}
	return s.Grid.OwnedBy(s.Role)
}

// Contract returns the contract with id, or nil.
func (s *State) Contract(id string) *economy.Contract {
	for i := range s.Contracts {
		if s.Contracts[i].ID == id {
			return &s.Contracts[i]
		}
	}
	return nil
}

func (s *State) hasFired(templateID string) bool {
	for _, id := range s.Fired {
		if id == templateID {
			return true
		}
	}
	return false
}

// idSpace namespaces the deterministic ids minted inside a game.
var idSpace = uuid.MustParse("6f0c3c1e-3f43-4d53-9a5c-5b1b2c7f0e11")

// nextID mints a deterministic id from the game id and sequence counter.
func (s *State) nextID(kind string) string {
	s.Seq++
	name := fmt.Sprintf("%s/%s/%d", s.GameID, kind, s.Seq)
	return uuid.NewSHA1(idSpace, []byte(name)).String()
}
