// Calendar, seasons and crop growth.
package engine

import (
	"math"

	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/weather"
	"github.com/talgya/agro-hegemony/internal/world"
)

// Growth constants.
const (
	OffSeasonFactor = 0.25 // growth penalty for crops outside their seasons
	FullGrowth      = 100.0
	growthEpsilon   = 1e-6
)

// seasonAt derives the season for a calendar position. Weekly rulesets use
// the week of the year; multi-year rulesets rotate one season per turn.
func seasonAt(rs *catalog.Ruleset, t Time) weather.Season {
	if rs.Weekly() {
		return weather.ForWeek(t.Week)
	}
	return weather.ForIndex(t.Turn)
}

// seasonBoundary reports whether t is the first turn of a season.
func seasonBoundary(rs *catalog.Ruleset, t Time) bool {
	if rs.Weekly() {
		return (t.Week-1)%weather.WeeksPerSeason == 0
	}
	return true
}

// stepClock moves t forward by one turn.
func stepClock(rs *catalog.Ruleset, t Time) Time {
	t.Turn++
	if rs.Weekly() {
		t.Week += rs.Clock.WeeksPerTurn
		for t.Week > 52 {
			t.Week -= 52
			t.Year++
		}
	} else {
		t.Year += rs.Clock.YearsPerTurn
	}
	t.Season = seasonAt(rs, t)
	return t
}

// timelineOver reports whether the clock has passed the ruleset end year.
func timelineOver(rs *catalog.Ruleset, t Time) bool {
	return rs.Clock.EndYear > 0 && t.Year > rs.Clock.EndYear
}

// GrowthStep is the growth percentage a crop gains in one turn.
func GrowthStep(crop catalog.Crop, rs *catalog.Ruleset, season weather.Season, w weather.Kind) float64 {
	step := FullGrowth / float64(crop.GrowthTurns(rs.Clock.DaysPerTurn))
	if !crop.InSeason(season) {
		step *= OffSeasonFactor
	}
	return step * weather.GrowthModifier(w, crop.RainSensitive)
}

// addGrowth raises a crop's growth, never lowering it, and marks it ready
// once it reaches full growth.
func addGrowth(pc *world.PlantedCrop, delta float64) {
	if delta <= 0 || pc.Ready {
		return
	}
	pc.Growth = math.Min(FullGrowth, pc.Growth+delta)
	if pc.Growth >= FullGrowth-growthEpsilon {
		pc.Growth = FullGrowth
		pc.Ready = true
	}
}

// growCrops advances every planted crop on the grid.
func (c *Core) growCrops(st *State, rs *catalog.Ruleset) {
	for i := range st.Grid.Cells {
		pc := st.Grid.Cells[i].Crop
		if pc == nil {
			continue
		}
		crop, ok := c.Catalog.Crop(pc.CropID)
		if !ok {
			continue
		}
		addGrowth(pc, GrowthStep(crop, rs, st.Time.Season, st.Time.Weather))
	}
}
