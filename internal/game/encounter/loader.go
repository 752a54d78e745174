package encounter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/predicate"
	"github.com/cory-johannsen/tactics/internal/game/registry"
)

// Definition is the authored YAML form of an encounter.
type Definition struct {
	ID             string           `yaml:"id"`
	Name           string           `yaml:"name"`
	Description    string           `yaml:"description"`
	Tileset        string           `yaml:"tileset"`
	Layout         grid.Layout      `yaml:"layout"`
	Victory        []predicate.Spec `yaml:"victory"`
	Defeat         []predicate.Spec `yaml:"defeat"`
	Deployment     []grid.Position  `yaml:"deployment"`
	Placements     []Placement      `yaml:"placements"`
	GuaranteedLoot []string         `yaml:"guaranteed_loot"`
}

// Build resolves the tileset and predicates and constructs the Encounter.
//
// Postcondition: an unknown tileset, a bad layout, an unknown predicate type,
// or an invalid tile is an error. An empty tileset uses grid.DefaultLegend.
func (d Definition) Build(tilesets *grid.TilesetRegistry, deps Deps) (*Encounter, error) {
	ts := &grid.Tileset{}
	if d.Tileset != "" {
		var ok bool
		if ts, ok = tilesets.Get(d.Tileset); !ok {
			return nil, fmt.Errorf("encounter %q: unknown tileset %q", d.ID, d.Tileset)
		}
	}
	m, err := ts.Build(d.Layout)
	if err != nil {
		return nil, fmt.Errorf("encounter %q: %w", d.ID, err)
	}
	victory, err := predicate.BuildAll(d.Victory)
	if err != nil {
		return nil, fmt.Errorf("encounter %q: victory: %w", d.ID, err)
	}
	defeat, err := predicate.BuildAll(d.Defeat)
	if err != nil {
		return nil, fmt.Errorf("encounter %q: defeat: %w", d.ID, err)
	}
	e, err := New(d.ID, d.Name, m, d.Deployment, d.Placements, deps)
	if err != nil {
		return nil, err
	}
	e.Description = d.Description
	e.Tileset = d.Tileset
	e.Victory = victory
	e.Defeat = defeat
	e.guaranteedLoot = append([]string(nil), d.GuaranteedLoot...)
	return e, nil
}

// Registry holds encounters keyed by ID.
type Registry = registry.Registry[*Encounter]

// NewRegistry returns an empty encounter registry.
func NewRegistry() *Registry {
	return registry.New[*Encounter]("encounter")
}

// LoadFromBytes parses one or more YAML encounter documents and builds them.
//
// Postcondition: returns an error if any document fails to parse or build.
func LoadFromBytes(data []byte, tilesets *grid.TilesetRegistry, deps Deps) ([]*Encounter, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var out []*Encounter
	for {
		var d Definition
		err := dec.Decode(&d)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("encounter: parsing YAML: %w", err)
		}
		e, err := d.Build(tilesets, deps)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// LoadDirectory reads every *.yaml file in dir into a registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns an error on any parse, build, or duplicate-ID failure.
func LoadDirectory(dir string, tilesets *grid.TilesetRegistry, deps Deps) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("encounter: reading dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, ent.Name()))
		if err != nil {
			return nil, fmt.Errorf("encounter: reading %s: %w", ent.Name(), err)
		}
		es, err := LoadFromBytes(data, tilesets, deps)
		if err != nil {
			return nil, fmt.Errorf("encounter: %s: %w", ent.Name(), err)
		}
		for _, e := range es {
			if err := reg.Register(e); err != nil {
				return nil, err
			}
		}
	}
	return reg, nil
}
