package world

import (
	"fmt"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Layout kinds.
const (
	LayoutTerritories = "territories"
	LayoutPlots       = "plots"
)

// LayoutConfig holds grid layout parameters.
type LayoutConfig struct {
	Kind   string
	Seed   int64 // 0 disables health jitter
	Jitter int   // max +/- health variation on open land
}

// Home is a role's starting cell.
type Home struct {
	Role       string
	Type       CellType
	Production string
}

// starting environmental health per territory type.
var baseHealth = map[CellType]int{
	TypeProtected:    100,
	TypeIndigenous:   90,
	TypeFamilyFarm:   70,
	TypeAgribusiness: 40,
	TypeUrban:        20,
}

const (
	defaultHealth   = 60
	startingLevel   = 50
	territoriesSize = 5
	plotsSize       = 6
)

// Build lays out a grid for cfg.Kind. homes seed the territories layout,
// player owns the starting plots of the plots layout.
func Build(cfg LayoutConfig, homes []Home, player string) (*Grid, error) {
	switch cfg.Kind {
	case LayoutTerritories:
		return Territories(cfg, homes), nil
	case LayoutPlots:
		return Plots(cfg, player), nil
	default:
		return nil, fmt.Errorf("unknown layout %q", cfg.Kind)
	}
}

// Territories creates the 5x5 territory map. The first two homes take
// opposite corners; the centre is protected land, the north-east corner
// indigenous land and the south-west corner a town.
func Territories(cfg LayoutConfig, homes []Home) *Grid {
	n := territoriesSize
	g := NewGrid(n, n)
	corners := []Position{{0, 0}, {n - 1, n - 1}}

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			p := Position{x, y}
			c := Cell{
				ID:   "t-" + p.String(),
				Name: "Territory " + p.String(),
				Pos:  p,
				Type: TypeUnoccupied,
			}
			switch p {
			case Position{n / 2, n / 2}:
				c.Type = TypeProtected
			case Position{n - 1, 0}:
				c.Type = TypeIndigenous
			case Position{0, n - 1}:
				c.Type = TypeUrban
			}
			for i, h := range homes {
				if i < len(corners) && corners[i] == p {
					c.Owner = h.Role
					c.Type = h.Type
					c.Production = h.Production
				}
			}
			if c.Production != "" {
				c.ProductionLevel = startingLevel
			}
			c.Health = startingHealth(c.Type)
			g.Cells = append(g.Cells, c)
		}
	}
	jitterHealth(g, cfg)
	return g
}

// Plots creates the 6x6 farm map. The border is locked, two central plots
// start with player and the rest belong to landowners.
func Plots(cfg LayoutConfig, player string) *Grid {
	n := plotsSize
	g := NewGrid(n, n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			p := Position{x, y}
			c := Cell{
				ID:     "plot-" + p.String(),
				Name:   "Plot " + p.String(),
				Pos:    p,
				Type:   TypeLandlord,
				Health: defaultHealth,
			}
			switch {
			case p == Position{2, 2} || p == Position{3, 2}:
				c.Type = TypePlayer
				c.Owner = player
			case x == 0 || y == 0 || x == n-1 || y == n-1:
				c.Type = TypeLocked
			}
			g.Cells = append(g.Cells, c)
		}
	}
	jitterHealth(g, cfg)
	return g
}

func startingHealth(t CellType) int {
	if h, ok := baseHealth[t]; ok {
		return h
	}
	return defaultHealth
}

// jitterHealth varies the health of open land with simplex noise so that
// seeded games differ while staying reproducible.
func jitterHealth(g *Grid, cfg LayoutConfig) {
	if cfg.Seed == 0 || cfg.Jitter <= 0 {
		return
	}
	noise := opensimplex.NewNormalized(cfg.Seed)
	for i := range g.Cells {
		c := &g.Cells[i]
		if c.Owned() || (c.Type != TypeUnoccupied && c.Type != TypeLandlord) {
			continue
		}
		v := noise.Eval2(float64(c.Pos.X)*0.35, float64(c.Pos.Y)*0.35)
		delta := int(math.Round((v*2 - 1) * float64(cfg.Jitter)))
		c.AddHealth(delta)
	}
}
