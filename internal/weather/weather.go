// Package weather rolls seasonal weather and maps it to crop growth modifiers.
package weather

import (
	"github.com/talgya/agro-hegemony/internal/entropy"
)

// Season is one quarter of the farming year.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Fall   Season = "fall"
	Winter Season = "winter"
)

// Seasons lists the seasons in calendar order.
var Seasons = []Season{Spring, Summer, Fall, Winter}

// WeeksPerSeason splits a 52-week year into four equal seasons.
const WeeksPerSeason = 13

// Valid reports whether s names a known season.
func (s Season) Valid() bool {
	switch s {
	case Spring, Summer, Fall, Winter:
		return true
	}
	return false
}

// ForWeek derives the season from a 1-based week of the year.
func ForWeek(week int) Season {
	if week < 1 {
		week = 1
	}
	idx := ((week - 1) / WeeksPerSeason) % len(Seasons)
	return Seasons[idx]
}

// ForIndex returns the season at position i, wrapping around the year.
func ForIndex(i int) Season {
	n := len(Seasons)
	return Seasons[((i%n)+n)%n]
}

// Kind is the weather rolled for a turn.
type Kind string

const (
	Sunny   Kind = "sunny"
	Rainy   Kind = "rainy"
	Cloudy  Kind = "cloudy"
	Stormy  Kind = "stormy"
	Drought Kind = "drought"
)

var kinds = []Kind{Sunny, Rainy, Cloudy, Stormy, Drought}

// probabilities per season, in the order of kinds.
var probabilities = map[Season][]float64{
	Spring: {0.5, 0.3, 0.15, 0.05, 0},
	Summer: {0.6, 0.15, 0.05, 0.1, 0.1},
	Fall:   {0.3, 0.4, 0.2, 0.1, 0},
	Winter: {0.2, 0.3, 0.4, 0.1, 0},
}

// Probabilities returns the weather distribution for a season.
func Probabilities(season Season) map[Kind]float64 {
	out := make(map[Kind]float64, len(kinds))
	for i, p := range probabilities[season] {
		out[kinds[i]] = p
	}
	return out
}

// Roll draws the weather for a season from its distribution.
func Roll(season Season, src entropy.Source) Kind {
	table, ok := probabilities[season]
	if !ok {
		return Sunny
	}
	return kinds[entropy.Weighted(src, table)]
}

// GrowthModifier scales a crop's weekly growth under the given weather.
// Rain helps most crops but slows rain-sensitive ones.
func GrowthModifier(k Kind, rainSensitive bool) float64 {
	switch k {
	case Rainy:
		if rainSensitive {
			return 0.8
		}
		return 1.2
	case Cloudy:
		return 0.9
	case Stormy:
		return 0.5
	case Drought:
		return 0.3
	default:
		return 1.0
	}
}

// Describe returns a short narrative line for the weather in a season.
func Describe(k Kind, season Season) string {
	switch k {
	case Rainy:
		return "steady rain over the fields"
	case Cloudy:
		return "grey skies and mild air"
	case Stormy:
		return "violent storms batter the region"
	case Drought:
		return "a dry spell parches the soil"
	}
	switch season {
	case Summer:
		return "hot summer sun"
	case Fall:
		return "clear autumn days"
	case Winter:
		return "crisp dry winter days"
	default:
		return "mild spring sunshine"
	}
}
