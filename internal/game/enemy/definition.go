// Package enemy provides enemy definitions, their loot tables, and spawning of
// live units from definitions.
package enemy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tactics/internal/game/inventory"
	"github.com/cory-johannsen/tactics/internal/game/registry"
	"github.com/cory-johannsen/tactics/internal/game/stat"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

// Definition is a reusable enemy archetype loaded from YAML. Placements refer
// to definitions by ID; live units are created by Spawn.
type Definition struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Kind        unit.Kind  `yaml:"kind"` // empty = monster
	Class       string     `yaml:"class"`
	Stats       stat.Block `yaml:"stats"`
	XPValue     int        `yaml:"xp_value"`
	GoldValue   int        `yaml:"gold_value"`
	// Weapon is the natural weapon of a monster; nil means unarmed.
	Weapon    *inventory.WeaponProfile  `yaml:"weapon"`
	Equipment map[inventory.Slot]string `yaml:"equipment"`
	Abilities []string                  `yaml:"abilities"`
	Reaction  string                    `yaml:"reaction"`
	AIProfile string                    `yaml:"ai_profile"`
	Loot      *LootTable                `yaml:"loot"`
}

// Key returns the definition ID.
func (d *Definition) Key() string { return d.ID }

// UnitKind returns the configured kind, defaulting to Monster.
func (d *Definition) UnitKind() unit.Kind {
	if d.Kind == "" {
		return unit.Monster
	}
	return d.Kind
}

// Validate checks that the definition satisfies basic invariants.
//
// Precondition: d must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Health >= 1, the
// rewards are non-negative, and the loot table is valid.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("enemy definition: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("enemy definition %q: name must not be empty", d.ID)
	}
	if k := d.UnitKind(); k != unit.Monster && k != unit.Humanoid {
		return fmt.Errorf("enemy definition %q: unknown kind %q", d.ID, d.Kind)
	}
	if d.Stats.Health < 1 {
		return fmt.Errorf("enemy definition %q: stats.health must be >= 1", d.ID)
	}
	if d.XPValue < 0 || d.GoldValue < 0 {
		return fmt.Errorf("enemy definition %q: xp_value and gold_value must be >= 0", d.ID)
	}
	if len(d.Equipment) > 0 && d.UnitKind() != unit.Humanoid {
		return fmt.Errorf("enemy definition %q: only humanoids carry equipment", d.ID)
	}
	if d.Loot != nil {
		if err := d.Loot.Validate(); err != nil {
			return fmt.Errorf("enemy definition %q: %w", d.ID, err)
		}
	}
	return nil
}

// Registry holds enemy definitions keyed by ID.
type Registry = registry.Registry[*Definition]

// NewRegistry returns an empty enemy registry.
func NewRegistry() *Registry {
	return registry.New[*Definition]("enemy")
}

// LoadDefinitionsFromBytes parses one or more enemy definitions from YAML.
//
// Postcondition: Returns validated definitions, or an error.
func LoadDefinitionsFromBytes(data []byte) ([]*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var out []*Definition
	for {
		var d Definition
		err := dec.Decode(&d)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing enemy YAML: %w", err)
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, nil
}

// LoadDirectory reads all *.yaml files in dir into a new Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns the registry or an error on the first parse, validate,
// or duplicate-id failure.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading enemy dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		defs, err := LoadDefinitionsFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		for _, d := range defs {
			if err := reg.Register(d); err != nil {
				return nil, fmt.Errorf("loading %q: %w", path, err)
			}
		}
	}
	return reg, nil
}
