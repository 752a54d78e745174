package predicate

import (
	"encoding/json"
	"fmt"
)

// Spec is the serialized form of a predicate, shared by JSON and YAML.
type Spec struct {
	Type     Type   `json:"type" yaml:"type"`
	Turns    int    `json:"turns,omitempty" yaml:"turns,omitempty"`
	Unit     string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Children []Spec `json:"children,omitempty" yaml:"children,omitempty"`
}

// Build converts s into a Predicate.
//
// Postcondition: returns an error for an unknown type, a turn limit below 1,
// or an unnamed unit-defeated leaf.
func Build(s Spec) (Predicate, error) {
	switch s.Type {
	case TypeAllEnemiesDefeated:
		return AllEnemiesDefeated{}, nil
	case TypeAllPlayersDefeated:
		return AllPlayersDefeated{}, nil
	case TypeTurnLimit:
		if s.Turns < 1 {
			return nil, fmt.Errorf("predicate: turn-limit needs turns >= 1, got %d", s.Turns)
		}
		return TurnLimit{Turns: s.Turns}, nil
	case TypeUnitDefeated:
		if s.Unit == "" {
			return nil, fmt.Errorf("predicate: unit-defeated needs a unit name")
		}
		return UnitDefeated{Name: s.Unit}, nil
	case TypeAnd, TypeOr:
		children, err := BuildAll(s.Children)
		if err != nil {
			return nil, fmt.Errorf("predicate: %s: %w", s.Type, err)
		}
		if s.Type == TypeAnd {
			return And{Children: children}, nil
		}
		return Or{Children: children}, nil
	default:
		return nil, fmt.Errorf("predicate: unknown type %q", s.Type)
	}
}

// BuildAll converts every spec, failing on the first error.
func BuildAll(specs []Spec) ([]Predicate, error) {
	out := make([]Predicate, 0, len(specs))
	for i, s := range specs {
		p, err := Build(s)
		if err != nil {
			return nil, fmt.Errorf("predicate %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ToSpec returns the serialized form of p.
func ToSpec(p Predicate) Spec {
	switch v := p.(type) {
	case TurnLimit:
		return Spec{Type: TypeTurnLimit, Turns: v.Turns}
	case UnitDefeated:
		return Spec{Type: TypeUnitDefeated, Unit: v.Name}
	case And:
		return Spec{Type: TypeAnd, Children: ToSpecs(v.Children)}
	case Or:
		return Spec{Type: TypeOr, Children: ToSpecs(v.Children)}
	default:
		return Spec{Type: p.Type()}
	}
}

// ToSpecs converts every predicate.
func ToSpecs(ps []Predicate) []Spec {
	out := make([]Spec, len(ps))
	for i, p := range ps {
		out[i] = ToSpec(p)
	}
	return out
}

// Marshal encodes p as JSON.
func Marshal(p Predicate) ([]byte, error) {
	return json.Marshal(ToSpec(p))
}

// Unmarshal decodes a JSON predicate written by Marshal.
func Unmarshal(data []byte) (Predicate, error) {
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("predicate: decoding: %w", err)
	}
	return Build(s)
}

// List is an ordered predicate list that serializes as a JSON array of specs.
type List []Predicate

// MarshalJSON encodes the list as an array of specs.
func (l List) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToSpecs(l))
}

// UnmarshalJSON decodes an array of specs.
func (l *List) UnmarshalJSON(data []byte) error {
	var specs []Spec
	if err := json.Unmarshal(data, &specs); err != nil {
		return fmt.Errorf("predicate: decoding list: %w", err)
	}
	ps, err := BuildAll(specs)
	if err != nil {
		return err
	}
	*l = ps
	return nil
}
