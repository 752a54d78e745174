// Package grid provides the static battlefield model: positions, terrain cells, and maps.
package grid

import (
	"encoding/json"
	"fmt"
)

// Position is an integer grid coordinate. X grows east, Y grows south.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add returns p offset by (dx, dy).
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// String returns "(x,y)".
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Manhattan returns the taxicab distance between a and b.
//
// Postcondition: Returns >= 0; Manhattan(a, b) == Manhattan(b, a).
func Manhattan(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Step is one orthogonal neighbour offset.
type Step struct {
	DX, DY int
}

// NeighborOrder is the fixed neighbour visiting order used by every search:
// north, east, south, west. Reachability and pathfinding depend on this order
// for reproducible tie-breaking.
var NeighborOrder = [...]Step{
	{DX: 0, DY: -1},
	{DX: 1, DY: 0},
	{DX: 0, DY: 1},
	{DX: -1, DY: 0},
}

// Terrain identifies the kind of ground a cell holds.
type Terrain string

// Known terrain kinds.
const (
	Floor  Terrain = "floor"
	Grass  Terrain = "grass"
	Sand   Terrain = "sand"
	Water  Terrain = "water"
	Lava   Terrain = "lava"
	Wall   Terrain = "wall"
	Pillar Terrain = "pillar"
	Tree   Terrain = "tree"
)

// KnownTerrains lists every terrain kind accepted by loaders.
var KnownTerrains = []Terrain{Floor, Grass, Sand, Water, Lava, Wall, Pillar, Tree}

// IsKnown reports whether t is one of KnownTerrains.
func (t Terrain) IsKnown() bool {
	for _, k := range KnownTerrains {
		if t == k {
			return true
		}
	}
	return false
}

// Opaque reports whether the terrain blocks line of sight.
func (t Terrain) Opaque() bool {
	switch t {
	case Wall, Pillar, Tree:
		return true
	default:
		return false
	}
}

// DefaultWalkable reports whether a freshly placed cell of this terrain is walkable.
func (t Terrain) DefaultWalkable() bool {
	switch t {
	case Floor, Grass, Sand:
		return true
	default:
		return false
	}
}

// Cell is one tile of a Map. Cells are values; edits replace them wholesale.
type Cell struct {
	Terrain  Terrain `json:"terrain"`
	Walkable bool    `json:"walkable"`
	Sprite   string  `json:"sprite,omitempty"`
}

// NewCell returns a cell of terrain t with its default walkability.
func NewCell(t Terrain) Cell {
	return Cell{Terrain: t, Walkable: t.DefaultWalkable()}
}

// Map is a fixed width × height array of cells stored row-major.
//
// Invariant: len(cells) == width*height; width >= 1; height >= 1.
type Map struct {
	width  int
	height int
	cells  []Cell
}

// NewMap creates a width × height map filled with fill.
//
// Precondition: width >= 1 and height >= 1.
// Postcondition: Returns a map whose every cell equals NewCell(fill), or an error.
func NewMap(width, height int, fill Terrain) (*Map, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("grid: map dimensions must be >= 1, got %dx%d", width, height)
	}
	cells := make([]Cell, width*height)
	for i := range cells {
		cells[i] = NewCell(fill)
	}
	return &Map{width: width, height: height, cells: cells}, nil
}

// Width returns the number of columns.
func (m *Map) Width() int { return m.width }

// Height returns the number of rows.
func (m *Map) Height() int { return m.height }

// InBounds reports whether p lies inside the map.
func (m *Map) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.width && p.Y < m.height
}

func (m *Map) index(p Position) int {
	return p.Y*m.width + p.X
}

// Cell returns the cell at p.
//
// Postcondition: ok is false iff p is out of bounds.
func (m *Map) Cell(p Position) (Cell, bool) {
	if !m.InBounds(p) {
		return Cell{}, false
	}
	return m.cells[m.index(p)], true
}

// SetCell replaces the cell at p.
//
// Precondition: p is in bounds; c.Terrain is a known terrain.
func (m *Map) SetCell(p Position, c Cell) error {
	if !m.InBounds(p) {
		return fmt.Errorf("grid: position %s out of bounds %dx%d", p, m.width, m.height)
	}
	if !c.Terrain.IsKnown() {
		return fmt.Errorf("grid: unknown terrain %q at %s", c.Terrain, p)
	}
	m.cells[m.index(p)] = c
	return nil
}

// IsWalkable reports whether p is in bounds and its cell is walkable.
func (m *Map) IsWalkable(p Position) bool {
	c, ok := m.Cell(p)
	return ok && c.Walkable
}

// Neighbors returns the in-bounds orthogonal neighbours of p in NeighborOrder.
func (m *Map) Neighbors(p Position) []Position {
	out := make([]Position, 0, len(NeighborOrder))
	for _, s := range NeighborOrder {
		n := p.Add(s.DX, s.DY)
		if m.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// Positions returns every position of the map in row-major order.
func (m *Map) Positions() []Position {
	out := make([]Position, 0, len(m.cells))
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			out = append(out, Position{X: x, Y: y})
		}
	}
	return out
}

// LineOfSight reports whether no opaque cell lies strictly between from and to
// on the Bresenham line joining them. The endpoints themselves are not tested.
//
// Precondition: from and to are in bounds.
func (m *Map) LineOfSight(from, to Position) bool {
	x0, y0 := from.X, from.Y
	dx := abs(to.X - x0)
	dy := -abs(to.Y - y0)
	sx, sy := 1, 1
	if x0 > to.X {
		sx = -1
	}
	if y0 > to.Y {
		sy = -1
	}
	e := dx + dy
	for {
		if x0 == to.X && y0 == to.Y {
			return true
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
		p := Position{X: x0, Y: y0}
		if p == to {
			return true
		}
		if c, ok := m.Cell(p); !ok || c.Terrain.Opaque() {
			return false
		}
	}
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	cells := make([]Cell, len(m.cells))
	copy(cells, m.cells)
	return &Map{width: m.width, height: m.height, cells: cells}
}

type mapJSON struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Cells  []Cell `json:"cells"`
}

// MarshalJSON encodes the map as its dimensions plus a row-major cell list.
func (m *Map) MarshalJSON() ([]byte, error) {
	return json.Marshal(mapJSON{Width: m.width, Height: m.height, Cells: m.cells})
}

// UnmarshalJSON decodes the projection written by MarshalJSON.
//
// Postcondition: Returns an error if the cell count does not match the dimensions
// or any terrain is unknown.
func (m *Map) UnmarshalJSON(data []byte) error {
	var raw mapJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("grid: decoding map: %w", err)
	}
	if raw.Width < 1 || raw.Height < 1 {
		return fmt.Errorf("grid: map dimensions must be >= 1, got %dx%d", raw.Width, raw.Height)
	}
	if len(raw.Cells) != raw.Width*raw.Height {
		return fmt.Errorf("grid: map has %d cells, want %d", len(raw.Cells), raw.Width*raw.Height)
	}
	for i, c := range raw.Cells {
		if !c.Terrain.IsKnown() {
			return fmt.Errorf("grid: cell %d has unknown terrain %q", i, c.Terrain)
		}
	}
	m.width, m.height, m.cells = raw.Width, raw.Height, raw.Cells
	return nil
}
