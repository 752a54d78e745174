// Package stat names the numeric attributes shared by units, classes, equipment,
// and ability effects, and provides the Block value that carries one of each.
package stat

import (
	"fmt"
	"strings"
)

// Name identifies one attribute.
type Name string

// Attribute names.
const (
	Health     Name = "health"
	Mana       Name = "mana"
	PPower     Name = "ppower"
	MPower     Name = "mpower"
	Speed      Name = "speed"
	Move       Name = "move"
	PEvade     Name = "pevade"
	MEvade     Name = "mevade"
	Courage    Name = "courage"
	Attunement Name = "attunement"
)

// All lists every attribute in display order.
var All = []Name{Health, Mana, PPower, MPower, Speed, Move, PEvade, MEvade, Courage, Attunement}

var titles = map[Name]string{
	Health:     "Health",
	Mana:       "Mana",
	PPower:     "PPower",
	MPower:     "MPower",
	Speed:      "Speed",
	Move:       "Move",
	PEvade:     "PEvade",
	MEvade:     "MEvade",
	Courage:    "Courage",
	Attunement: "Attunement",
}

// Title returns the display form used in logs and formulas, e.g. "PPower".
func (n Name) Title() string {
	if t, ok := titles[n]; ok {
		return t
	}
	return string(n)
}

// Parse resolves s case-insensitively, ignoring '-' and '_'.
//
// Postcondition: Returns an error for unknown names.
func Parse(s string) (Name, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	for _, n := range All {
		if string(n) == norm {
			return n, nil
		}
	}
	return "", fmt.Errorf("stat: unknown attribute %q", s)
}

// Block holds one value per attribute.
type Block struct {
	Health     int `yaml:"health" json:"health"`
	Mana       int `yaml:"mana" json:"mana"`
	PPower     int `yaml:"ppower" json:"ppower"`
	MPower     int `yaml:"mpower" json:"mpower"`
	Speed      int `yaml:"speed" json:"speed"`
	Move       int `yaml:"move" json:"move"`
	PEvade     int `yaml:"pevade" json:"pevade"`
	MEvade     int `yaml:"mevade" json:"mevade"`
	Courage    int `yaml:"courage" json:"courage"`
	Attunement int `yaml:"attunement" json:"attunement"`
}

func (b *Block) field(n Name) *int {
	switch n {
	case Health:
		return &b.Health
	case Mana:
		return &b.Mana
	case PPower:
		return &b.PPower
	case MPower:
		return &b.MPower
	case Speed:
		return &b.Speed
	case Move:
		return &b.Move
	case PEvade:
		return &b.PEvade
	case MEvade:
		return &b.MEvade
	case Courage:
		return &b.Courage
	case Attunement:
		return &b.Attunement
	default:
		return nil
	}
}

// Get returns the value of n, or 0 for unknown names.
func (b Block) Get(n Name) int {
	if f := b.field(n); f != nil {
		return *f
	}
	return 0
}

// With returns a copy of b with n set to v. Unknown names leave b unchanged.
func (b Block) With(n Name, v int) Block {
	if f := b.field(n); f != nil {
		*f = v
	}
	return b
}

// Add returns the attribute-wise sum of b and o.
func (b Block) Add(o Block) Block {
	for _, n := range All {
		b = b.With(n, b.Get(n)+o.Get(n))
	}
	return b
}

// FloorZero returns b with every negative attribute raised to zero.
func (b Block) FloorZero() Block {
	for _, n := range All {
		if b.Get(n) < 0 {
			b = b.With(n, 0)
		}
	}
	return b
}

// Map returns b as a name → value map, used by formula evaluation.
func (b Block) Map() map[Name]int {
	out := make(map[Name]int, len(All))
	for _, n := range All {
		out[n] = b.Get(n)
	}
	return out
}
