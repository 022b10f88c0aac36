package world

import "fmt"

// Grid is a fixed-size rectangle of cells stored row-major.
type Grid struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Cells  []Cell `json:"cells"`
}

// NewGrid creates an empty grid of the given size.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Cells:  make([]Cell, 0, width*height),
	}
}

// InBounds returns true if p lies on the grid.
func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.Width && p.Y < g.Height
}

// At returns the cell at p, or nil if out of bounds.
func (g *Grid) At(p Position) *Cell {
	if !g.InBounds(p) {
		return nil
	}
	i := p.Y*g.Width + p.X
	if i >= len(g.Cells) {
		return nil
	}
	return &g.Cells[i]
}

// Get returns the cell with the given id, or nil.
func (g *Grid) Get(id string) *Cell {
	for i := range g.Cells {
		if g.Cells[i].ID == id {
			return &g.Cells[i]
		}
	}
	return nil
}

// Neighbors returns the in-bounds 4-neighbourhood of p.
func (g *Grid) Neighbors(p Position) []*Cell {
	out := make([]*Cell, 0, 4)
	for _, n := range p.Neighbors4() {
		if c := g.At(n); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// AdjacentToOwner reports whether any 4-neighbour of p belongs to owner.
func (g *Grid) AdjacentToOwner(p Position, owner string) bool {
	for _, c := range g.Neighbors(p) {
		if c.Owner == owner {
			return true
		}
	}
	return false
}

// OwnedBy counts the cells held by owner.
func (g *Grid) OwnedBy(owner string) int {
	n := 0
	for i := range g.Cells {
		if g.Cells[i].Owner == owner {
			n++
		}
	}
	return n
}

// CountType counts cells of type t.
func (g *Grid) CountType(t CellType) int {
	n := 0
	for i := range g.Cells {
		if g.Cells[i].Type == t {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	out := &Grid{Width: g.Width, Height: g.Height, Cells: make([]Cell, len(g.Cells))}
	copy(out.Cells, g.Cells)
	for i := range out.Cells {
		if c := g.Cells[i].Crop; c != nil {
			cp := *c
			out.Cells[i].Crop = &cp
		}
	}
	return out
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, cells=%d)", g.Width, g.Height, len(g.Cells))
}
