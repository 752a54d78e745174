package grid

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultLegend maps layout glyphs to terrain when a Layout provides no legend.
var DefaultLegend = map[string]Terrain{
	".": Floor,
	",": Grass,
	":": Sand,
	"~": Water,
	"^": Lava,
	"#": Wall,
	"O": Pillar,
	"T": Tree,
}

// SpriteOverride attaches a decorative sprite reference to one cell.
type SpriteOverride struct {
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Sprite string `yaml:"sprite"`
}

// WalkOverride forces the walkable flag of one cell, e.g. a bridge over water.
type WalkOverride struct {
	X        int  `yaml:"x"`
	Y        int  `yaml:"y"`
	Walkable bool `yaml:"walkable"`
}

// Layout is the authored YAML form of a map: one string per row, one glyph per cell.
type Layout struct {
	Legend   map[string]Terrain `yaml:"legend"`
	Rows     []string           `yaml:"rows"`
	Sprites  []SpriteOverride   `yaml:"sprites"`
	Walkable []WalkOverride     `yaml:"walkable"`
}

// Build converts the layout into a Map.
//
// Precondition: all rows have the same rune length; every glyph is in the legend.
// Postcondition: Returns a Map of len(Rows[0]) × len(Rows) or a descriptive error.
func (l Layout) Build() (*Map, error) {
	if len(l.Rows) == 0 {
		return nil, fmt.Errorf("grid: layout has no rows")
	}
	legend := l.Legend
	if len(legend) == 0 {
		legend = DefaultLegend
	}
	width := len([]rune(l.Rows[0]))
	m, err := NewMap(width, len(l.Rows), Floor)
	if err != nil {
		return nil, err
	}
	for y, row := range l.Rows {
		runes := []rune(row)
		if len(runes) != width {
			return nil, fmt.Errorf("grid: row %d has width %d, want %d", y, len(runes), width)
		}
		for x, r := range runes {
			t, ok := legend[string(r)]
			if !ok {
				return nil, fmt.Errorf("grid: row %d col %d: glyph %q not in legend", y, x, string(r))
			}
			if err := m.SetCell(Position{X: x, Y: y}, NewCell(t)); err != nil {
				return nil, err
			}
		}
	}
	for _, s := range l.Sprites {
		p := Position{X: s.X, Y: s.Y}
		c, ok := m.Cell(p)
		if !ok {
			return nil, fmt.Errorf("grid: sprite %q at %s out of bounds", s.Sprite, p)
		}
		c.Sprite = s.Sprite
		_ = m.SetCell(p, c)
	}
	for _, w := range l.Walkable {
		p := Position{X: w.X, Y: w.Y}
		c, ok := m.Cell(p)
		if !ok {
			return nil, fmt.Errorf("grid: walkable override at %s out of bounds", p)
		}
		c.Walkable = w.Walkable
		_ = m.SetCell(p, c)
	}
	return m, nil
}

// LoadLayoutFromBytes parses a YAML layout document and builds the Map.
//
// Precondition: data must be YAML conforming to Layout.
// Postcondition: Returns a built Map or a non-nil error.
func LoadLayoutFromBytes(data []byte) (*Map, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("grid: parsing layout YAML: %w", err)
	}
	return l.Build()
}
