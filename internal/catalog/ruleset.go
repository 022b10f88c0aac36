package catalog

// Clock describes how far one turn moves the calendar.
type Clock struct {
	StartYear    int `yaml:"start_year"`
	StartWeek    int `yaml:"start_week"`
	EndYear      int `yaml:"end_year"`
	WeeksPerTurn int `yaml:"weeks_per_turn"`
	YearsPerTurn int `yaml:"years_per_turn"`
	DaysPerTurn  int `yaml:"days_per_turn"`
}

// Threshold gates plot acquisition by standing.
type Threshold struct {
	Influence  int `yaml:"influence"`
	Reputation int `yaml:"reputation"`
}

// Acquisition configures how cells are bought.
type Acquisition struct {
	Adjacency       bool        `yaml:"adjacency"`
	RoleCost        bool        `yaml:"role_cost"`
	BasePrice       int         `yaml:"base_price"`
	InitialCells    int         `yaml:"initial_cells"`
	InfluenceShare  float64     `yaml:"influence_share"`
	ReputationShare float64     `yaml:"reputation_share"`
	Thresholds      []Threshold `yaml:"thresholds"`
}

// Ruleset selects which resource set, clock and victory mode is active.
type Ruleset struct {
	ID             string                `yaml:"id"`
	Name           string                `yaml:"name"`
	Layout         string                `yaml:"layout"`
	Resources      []Resource            `yaml:"resources"`
	Min            int                   `yaml:"min"`
	Max            int                   `yaml:"max"`
	Aliases        map[Resource]Resource `yaml:"aliases"`
	Clock          Clock                 `yaml:"clock"`
	ActiveCap      int                   `yaml:"active_cap"`
	Categories     []string              `yaml:"categories"`
	Assembly       bool                  `yaml:"assembly"`
	Scripted       bool                  `yaml:"scripted"`
	Victory        []VictoryRule         `yaml:"victory"`
	Defeat         bool                  `yaml:"defeat"`
	Acquisition    Acquisition           `yaml:"acquisition"`
	PlantCostShare float64               `yaml:"plant_cost_share"`
	Income         Resource              `yaml:"income"`
	HarvestScale   float64               `yaml:"harvest_scale"`
	HistoryLimit   int                   `yaml:"history_limit"`
}

// Resolve maps a resource through the ruleset aliases. The second result is
// false when the resource does not exist in this ruleset.
func (r *Ruleset) Resolve(res Resource) (Resource, bool) {
	if a, ok := r.Aliases[res]; ok {
		res = a
	}
	for _, k := range r.Resources {
		if k == res {
			return res, true
		}
	}
	return res, false
}

// Has reports whether the ruleset tracks res, after aliasing.
func (r *Ruleset) Has(res Resource) bool {
	_, ok := r.Resolve(res)
	return ok
}

// Weekly reports whether a turn is a single week.
func (r *Ruleset) Weekly() bool {
	return r.Clock.WeeksPerTurn > 0
}
