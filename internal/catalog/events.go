package catalog

import "github.com/talgya/agro-hegemony/internal/weather"

// Consequence is a signed change to one resource.
type Consequence struct {
	Resource    Resource `yaml:"resource" json:"resource"`
	Delta       int      `yaml:"delta" json:"delta"`
	Description string   `yaml:"description" json:"description"`
}

// MarketEffect turns into a market news item when the option is chosen.
type MarketEffect struct {
	Crop   string  `yaml:"crop" json:"crop,omitempty"`
	Region string  `yaml:"region" json:"region,omitempty"`
	Impact float64 `yaml:"impact" json:"impact"`
	Weeks  int     `yaml:"weeks" json:"weeks"`
}

// Option is one choice of an event template.
type Option struct {
	ID           string         `yaml:"id" json:"id"`
	Description  string         `yaml:"description" json:"description"`
	Consequences []Consequence  `yaml:"consequences" json:"consequences"`
	CropGrowth   int            `yaml:"crop_growth" json:"crop_growth,omitempty"`
	Market       []MarketEffect `yaml:"market" json:"market,omitempty"`
}

// EventTemplate is the static shape of a narrative event.
type EventTemplate struct {
	ID          string   `yaml:"id"`
	Category    string   `yaml:"category"`
	Role        string   `yaml:"role"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Year        int      `yaml:"year"`
	Options     []Option `yaml:"options"`
}

// Category is a weekly event table with its own trigger probability.
type Category struct {
	ID           string                     `yaml:"id"`
	Chance       float64                    `yaml:"chance"`
	SeasonChance map[weather.Season]float64 `yaml:"season_chance"`
	Templates    []EventTemplate            `yaml:"templates"`
}

// ChanceIn returns the trigger probability for a season.
func (c Category) ChanceIn(s weather.Season) float64 {
	if p, ok := c.SeasonChance[s]; ok {
		return p
	}
	return c.Chance
}

// SeasonalAssembly flavours the assembly for one season.
type SeasonalAssembly struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Option      Option `yaml:"option"`
}

// Assembly is the community assembly template.
type Assembly struct {
	Chance      float64                             `yaml:"chance"`
	Title       string                              `yaml:"title"`
	Description string                              `yaml:"description"`
	Options     []Option                            `yaml:"options"`
	Seasonal    map[weather.Season]SeasonalAssembly `yaml:"seasonal"`
}

// Events holds every event table.
type Events struct {
	WindowYears  int             `yaml:"window_years"`
	Historical   []EventTemplate `yaml:"historical"`
	RoleScripted []EventTemplate `yaml:"role_scripted"`
	Categories   []Category      `yaml:"categories"`
	Assembly     Assembly        `yaml:"assembly"`
}

// Category looks up a weekly category by id.
func (e Events) Category(id string) (Category, bool) {
	for _, c := range e.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
