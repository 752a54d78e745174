// Package content loads an authored content directory into the game registries.
//
// The directory holds one subdirectory per kind: abilities/, classes/,
// equipment/, enemies/, ai/, tilesets/, encounters/ and party/. A missing
// subdirectory yields an empty registry; a malformed file is an error.
package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/ability"
	"github.com/cory-johannsen/tactics/internal/game/ai"
	"github.com/cory-johannsen/tactics/internal/game/encounter"
	"github.com/cory-johannsen/tactics/internal/game/enemy"
	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/inventory"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

// Subdirectory names.
const (
	DirAbilities  = "abilities"
	DirClasses    = "classes"
	DirEquipment  = "equipment"
	DirEnemies    = "enemies"
	DirAI         = "ai"
	DirTilesets   = "tilesets"
	DirEncounters = "encounters"
	DirParty      = "party"
)

// Options configures how encounters resolve their references.
type Options struct {
	// Loot rolls enemy loot tables; nil disables rolled loot.
	Loot enemy.LootRoller
	// MaxRewardItems caps encounter item rewards; <= 0 uses the encounter default.
	MaxRewardItems int
	Logger         *zap.Logger
}

// Library is every registry loaded from one content directory.
type Library struct {
	Abilities  *ability.Registry
	Classes    *unit.ClassRegistry
	Equipment  *inventory.Registry
	Enemies    *enemy.Registry
	Profiles   []*ai.Profile
	Tilesets   *grid.TilesetRegistry
	Encounters *encounter.Registry
	Parties    []*Party

	logger *zap.Logger
}

// Load reads dir into a Library. Definitions are loaded in dependency order so
// encounters can resolve enemies, tilesets, and equipment.
//
// Precondition: dir is a readable directory.
// Postcondition: returns an error on any parse, validation, or duplicate-id failure.
func Load(dir string, opts Options) (*Library, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if info, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("content: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("content: %q is not a directory", dir)
	}
	lib := &Library{logger: opts.Logger}
	var err error
	sub := func(name string) (string, bool) {
		p := filepath.Join(dir, name)
		info, statErr := os.Stat(p)
		return p, statErr == nil && info.IsDir()
	}

	if p, ok := sub(DirAbilities); ok {
		if lib.Abilities, err = ability.LoadDirectory(p); err != nil {
			return nil, fmt.Errorf("content: %w", err)
		}
	} else {
		lib.Abilities = ability.NewRegistry()
	}
	if p, ok := sub(DirClasses); ok {
		if lib.Classes, err = unit.LoadClasses(p); err != nil {
			return nil, fmt.Errorf("content: %w", err)
		}
	} else {
		lib.Classes = unit.NewClassRegistry()
	}
	if p, ok := sub(DirEquipment); ok {
		if lib.Equipment, err = inventory.LoadDirectory(p); err != nil {
			return nil, fmt.Errorf("content: %w", err)
		}
	} else {
		lib.Equipment = inventory.NewRegistry()
	}
	if p, ok := sub(DirEnemies); ok {
		if lib.Enemies, err = enemy.LoadDirectory(p); err != nil {
			return nil, fmt.Errorf("content: %w", err)
		}
	} else {
		lib.Enemies = enemy.NewRegistry()
	}
	if p, ok := sub(DirAI); ok {
		if lib.Profiles, err = ai.LoadProfiles(p); err != nil {
			return nil, fmt.Errorf("content: %w", err)
		}
	}
	if p, ok := sub(DirTilesets); ok {
		if lib.Tilesets, err = grid.LoadTilesets(p); err != nil {
			return nil, fmt.Errorf("content: %w", err)
		}
	} else {
		lib.Tilesets = grid.NewTilesetRegistry()
	}
	if p, ok := sub(DirEncounters); ok {
		if lib.Encounters, err = encounter.LoadDirectory(p, lib.Tilesets, lib.EncounterDeps(opts)); err != nil {
			return nil, fmt.Errorf("content: %w", err)
		}
	} else {
		lib.Encounters = encounter.NewRegistry()
	}
	if p, ok := sub(DirParty); ok {
		if lib.Parties, err = loadParties(p); err != nil {
			return nil, fmt.Errorf("content: %w", err)
		}
	}

	opts.Logger.Info("content loaded",
		zap.String("dir", dir),
		zap.Int("abilities", lib.Abilities.Len()),
		zap.Int("classes", lib.Classes.Len()),
		zap.Int("equipment", lib.Equipment.Len()),
		zap.Int("enemies", lib.Enemies.Len()),
		zap.Int("ai_profiles", len(lib.Profiles)),
		zap.Int("tilesets", lib.Tilesets.Len()),
		zap.Int("encounters", lib.Encounters.Len()),
		zap.Int("parties", len(lib.Parties)),
	)
	return lib, nil
}

// EncounterDeps returns the collaborators encounters built from this library use.
func (l *Library) EncounterDeps(opts Options) encounter.Deps {
	logger := opts.Logger
	if logger == nil {
		logger = l.logger
	}
	return encounter.Deps{
		Enemies: l.Enemies,
		Spawner: enemy.Spawner{
			Abilities: l.Abilities,
			Equipment: l.Equipment,
			Classes:   l.Classes,
			Logger:    logger,
		},
		Loot:      opts.Loot,
		Equipment: l.Equipment,
		MaxItems:  opts.MaxRewardItems,
		Logger:    logger,
	}
}

// AIRegistry builds an ai.Registry holding every loaded profile.
//
// Postcondition: returns an error on a duplicate id or an invalid behaviour.
func (l *Library) AIRegistry(eval ai.ConditionEvaluator) (*ai.Registry, error) {
	reg := ai.NewRegistry(eval, l.logger)
	var errs []error
	for _, p := range l.Profiles {
		if err := reg.Register(p); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("content: %w", errors.Join(errs...))
	}
	return reg, nil
}

// Party returns the party with id.
func (l *Library) Party(id string) (*Party, bool) {
	for _, p := range l.Parties {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Deploy instantiates p as fresh player units with new instance ids, resolving
// class, ability, and equipment references against the library. Unknown
// references are logged at Warn and skipped.
func (l *Library) Deploy(p *Party) ([]*unit.Unit, error) {
	res := unit.Resolver{
		Classes:   l.Classes,
		Abilities: l.Abilities,
		Equipment: l.Equipment,
		Logger:    l.logger,
	}
	out := make([]*unit.Unit, 0, len(p.Members))
	for _, m := range p.Members {
		u, err := res.FromRecord(m.Record(unit.NewID()))
		if err != nil {
			return nil, fmt.Errorf("content: party %q: %w", p.ID, err)
		}
		out = append(out, u)
	}
	return out, nil
}
