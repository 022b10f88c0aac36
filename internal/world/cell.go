// Package world provides the square grid of cells the game is played on.
// Cells are created once by a layout function and never deleted.
package world

import "fmt"

// Position is an integer grid coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Neighbors4 returns the four orthogonal neighbours of p.
func (p Position) Neighbors4() [4]Position {
	return [4]Position{
		{p.X + 1, p.Y},
		{p.X - 1, p.Y},
		{p.X, p.Y + 1},
		{p.X, p.Y - 1},
	}
}

func (p Position) String() string {
	return fmt.Sprintf("%d-%d", p.X, p.Y)
}

// CellType tags what occupies a cell.
type CellType string

const (
	TypeAgribusiness CellType = "agribusiness" // export monoculture
	TypeFamilyFarm   CellType = "family_farm"  // smallholder production
	TypeProtected    CellType = "protected"    // conservation unit
	TypeIndigenous   CellType = "indigenous"   // demarcated indigenous land
	TypeUrban        CellType = "urban"        // town
	TypeUnoccupied   CellType = "unoccupied"   // open land
	TypePlayer       CellType = "player"       // plot farmed by the player
	TypeLandlord     CellType = "landlord"     // plot held by a landowner
	TypeLocked       CellType = "locked"       // mountain, river or reserve
)

// Ownable reports whether a cell of this type can ever change hands.
func (t CellType) Ownable() bool {
	switch t {
	case TypeProtected, TypeIndigenous, TypeUrban, TypeLocked:
		return false
	}
	return true
}

// Health bounds.
const (
	MinHealth = 0
	MaxHealth = 100
)

// Production level bounds.
const (
	MinProductionLevel = 0
	MaxProductionLevel = 100
)

// PlantedCrop is the growth state of a crop in a cell.
type PlantedCrop struct {
	CropID      string  `json:"crop_id"`
	PlantedTurn int     `json:"planted_turn"`
	PlantedWeek int     `json:"planted_week"`
	Growth      float64 `json:"growth"` // 0..100
	Ready       bool    `json:"ready"`
}

// Cell is one unit of the grid.
type Cell struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Pos             Position     `json:"pos"`
	Owner           string       `json:"owner,omitempty"`
	Type            CellType     `json:"type"`
	Production      string       `json:"production,omitempty"`
	ProductionLevel int          `json:"production_level"`
	Health          int          `json:"health"` // 0..100
	Crop            *PlantedCrop `json:"crop,omitempty"`
}

// Ownable reports whether the cell may be acquired at all.
func (c *Cell) Ownable() bool {
	return c.Type.Ownable()
}

// Owned reports whether any role holds the cell.
func (c *Cell) Owned() bool {
	return c.Owner != ""
}

// AddHealth shifts health by delta within bounds.
func (c *Cell) AddHealth(delta int) {
	c.Health = clamp(c.Health+delta, MinHealth, MaxHealth)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
