// Package catalog loads the static reference data of the game: crops, roles,
// rulesets, market regions and event tables. The data ships embedded as YAML
// and can be overridden file by file from a directory.
package catalog

import (
	"math"

	"github.com/talgya/agro-hegemony/internal/weather"
)

// Resource names one counter of the ledger.
type Resource string

const (
	Economic      Resource = "economic"
	Influence     Resource = "influence"
	Social        Resource = "social"
	Environmental Resource = "environmental"
	Money         Resource = "money"
	Reputation    Resource = "reputation"
)

// Catalog is the full set of reference data.
type Catalog struct {
	Rulesets    map[string]*Ruleset
	Roles       map[string]*Role
	RoleOrder   []string
	Crops       []Crop
	Productions map[string]Production
	Campaigns   map[string]Campaign
	Practice    Practice
	Regions     []Region
	Trends      map[weather.Season][]TrendWeight
	News        NewsRules
	Events      Events

	// Digest is a sha256 over the raw files the catalog was built from.
	Digest string
}

// Crop is a plantable crop. Reference data, never mutated at runtime.
type Crop struct {
	ID            string           `yaml:"id" json:"id"`
	Name          string           `yaml:"name" json:"name"`
	BasePrice     float64          `yaml:"base_price" json:"base_price"`
	Yield         int              `yaml:"yield" json:"yield"`
	Seasons       []weather.Season `yaml:"seasons" json:"seasons"`
	GrowthDays    int              `yaml:"growth_days" json:"growth_days"`
	RainSensitive bool             `yaml:"rain_sensitive,omitempty" json:"rain_sensitive,omitempty"`
}

// InSeason reports whether s is one of the crop's eligible seasons.
func (c Crop) InSeason(s weather.Season) bool {
	for _, v := range c.Seasons {
		if v == s {
			return true
		}
	}
	return false
}

// GrowthTurns is the growth duration expressed in turns of daysPerTurn days.
func (c Crop) GrowthTurns(daysPerTurn int) int {
	if daysPerTurn <= 0 {
		daysPerTurn = 7
	}
	n := int(math.Ceil(float64(c.GrowthDays) / float64(daysPerTurn)))
	if n < 1 {
		n = 1
	}
	return n
}

// PlantingCost is the share of the base price paid to plant the crop.
func (c Crop) PlantingCost(share float64) int {
	return int(math.Floor(c.BasePrice * share))
}

// Crop looks up a crop by id.
func (c *Catalog) Crop(id string) (Crop, bool) {
	for _, cr := range c.Crops {
		if cr.ID == id {
			return cr, true
		}
	}
	return Crop{}, false
}

// Condition is one clause of a victory rule. Exactly one form is set:
// a resource floor, an owned-cell count, or a cell-type comparison.
type Condition struct {
	Resource   Resource `yaml:"resource,omitempty" json:"resource,omitempty"`
	AtLeast    int      `yaml:"at_least,omitempty" json:"at_least,omitempty"`
	OwnedCells int      `yaml:"owned_cells,omitempty" json:"owned_cells,omitempty"`
	CellType   string   `yaml:"cell_type,omitempty" json:"cell_type,omitempty"`
	Exceeds    string   `yaml:"exceeds,omitempty" json:"exceeds,omitempty"`
}

// VictoryRule is met when all of its conditions hold.
type VictoryRule struct {
	Kind string      `yaml:"kind" json:"kind"`
	All  []Condition `yaml:"all" json:"all"`
}

// DefeatRule ends the game when Resource falls to AtMost or below.
type DefeatRule struct {
	Resource Resource `yaml:"resource" json:"resource"`
	AtMost   int      `yaml:"at_most" json:"at_most"`
	Reason   string   `yaml:"reason" json:"reason"`
}

// Role is the per-role configuration record.
type Role struct {
	ID             string                      `yaml:"id"`
	Name           string                      `yaml:"name"`
	Description    string                      `yaml:"description"`
	HomeType       string                      `yaml:"home_type"`
	HomeProduction string                      `yaml:"home_production"`
	Presets        map[string]map[Resource]int `yaml:"presets"`
	AcquireCost    map[Resource]int            `yaml:"acquire_cost"`
	Multipliers    map[Resource]float64        `yaml:"multipliers"`
	Victory        []VictoryRule               `yaml:"victory"`
	Defeat         []DefeatRule                `yaml:"defeat"`
}

// Multiplier returns the consequence multiplier for r (1 when unset).
func (r *Role) Multiplier(res Resource) float64 {
	if m, ok := r.Multipliers[res]; ok && m > 0 {
		return m
	}
	return 1
}

// Production is a territory production type.
type Production struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Cost        int    `yaml:"cost" json:"cost"`
	Income      int    `yaml:"income" json:"income"`
	Environment int    `yaml:"environment" json:"environment"`
	Health      int    `yaml:"health" json:"health"`
}

// Campaign is a fixed cost/payoff action. An empty Roles list allows any role.
type Campaign struct {
	ID    string           `yaml:"id" json:"id"`
	Name  string           `yaml:"name" json:"name"`
	Roles []string         `yaml:"roles" json:"roles,omitempty"`
	Cost  map[Resource]int `yaml:"cost" json:"cost"`
	Gain  map[Resource]int `yaml:"gain" json:"gain"`
}

// Allows reports whether role may run the campaign.
func (c Campaign) Allows(role string) bool {
	if len(c.Roles) == 0 {
		return true
	}
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Practice is the sustainable practice applied to a single cell.
type Practice struct {
	Cost   map[Resource]int `yaml:"cost"`
	Gain   map[Resource]int `yaml:"gain"`
	Health int              `yaml:"health"`
}

// Region scopes.
const (
	ScopeLocal    = "local"
	ScopeNational = "national"
	ScopeForeign  = "foreign"
)

// Region is the starting profile of a market region.
type Region struct {
	ID          string             `yaml:"id" json:"id"`
	Name        string             `yaml:"name" json:"name"`
	Scope       string             `yaml:"scope" json:"scope"`
	Trend       string             `yaml:"trend" json:"trend"`
	Transport   float64            `yaml:"transport" json:"transport"`
	Demand      int                `yaml:"demand" json:"demand"`
	Multipliers map[string]float64 `yaml:"multipliers" json:"multipliers,omitempty"`
}

// TrendWeight is one entry of a seasonal trend distribution.
type TrendWeight struct {
	Trend  string  `yaml:"trend"`
	Weight float64 `yaml:"weight"`
}

// NewsRules controls how market news is drawn.
type NewsRules struct {
	Chance      float64        `yaml:"chance"`
	Draws       int            `yaml:"draws"`
	SeasonDraws int            `yaml:"season_draws"`
	Templates   []NewsTemplate `yaml:"templates"`
}

// NewsTemplate is a market headline. Empty Crop or Region act as wildcards.
type NewsTemplate struct {
	ID          string  `yaml:"id"`
	Headline    string  `yaml:"headline"`
	Description string  `yaml:"description"`
	Crop        string  `yaml:"crop"`
	Region      string  `yaml:"region"`
	Impact      float64 `yaml:"impact"`
	Weeks       int     `yaml:"weeks"`
}
