package grid

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tactics/internal/game/registry"
)

// Tileset is a named visual theme: the glyph legend its layouts are authored
// in and the default sprite for each terrain.
type Tileset struct {
	ID      string             `yaml:"id"`
	Name    string             `yaml:"name"`
	Legend  map[string]Terrain `yaml:"legend"`
	Sprites map[Terrain]string `yaml:"sprites"`
}

// Key returns the tileset ID.
func (t *Tileset) Key() string { return t.ID }

// Validate checks that every legend and sprite entry names a known terrain.
func (t *Tileset) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	for glyph, terrain := range t.Legend {
		if len([]rune(glyph)) != 1 {
			errs = append(errs, fmt.Errorf("legend glyph %q must be one character", glyph))
		}
		if !terrain.IsKnown() {
			errs = append(errs, fmt.Errorf("legend glyph %q: unknown terrain %q", glyph, terrain))
		}
	}
	for terrain := range t.Sprites {
		if !terrain.IsKnown() {
			errs = append(errs, fmt.Errorf("sprite for unknown terrain %q", terrain))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("tileset %q: %w", t.ID, errors.Join(errs...))
	}
	return nil
}

// Build renders l in this tileset: l's own legend wins, otherwise the
// tileset's legend, otherwise DefaultLegend. Cells without an explicit sprite
// take the tileset's sprite for their terrain.
func (t *Tileset) Build(l Layout) (*Map, error) {
	if len(l.Legend) == 0 {
		l.Legend = t.Legend
	}
	m, err := l.Build()
	if err != nil {
		return nil, err
	}
	if len(t.Sprites) == 0 {
		return m, nil
	}
	for i, c := range m.cells {
		if c.Sprite == "" {
			m.cells[i].Sprite = t.Sprites[c.Terrain]
		}
	}
	return m, nil
}

// TilesetRegistry holds tilesets keyed by ID.
type TilesetRegistry = registry.Registry[*Tileset]

// NewTilesetRegistry returns an empty tileset registry.
func NewTilesetRegistry() *TilesetRegistry {
	return registry.New[*Tileset]("tileset")
}

// LoadTilesetsFromBytes parses one or more YAML tileset documents.
//
// Postcondition: returns an error if any document fails to parse or validate.
func LoadTilesetsFromBytes(data []byte) ([]*Tileset, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var out []*Tileset
	for {
		var t Tileset
		err := dec.Decode(&t)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("grid: parsing tileset YAML: %w", err)
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, nil
}

// LoadTilesets reads every *.yaml file in dir into a registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns an error on any parse, validation, or duplicate-ID failure.
func LoadTilesets(dir string) (*TilesetRegistry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("grid: reading tileset dir %q: %w", dir, err)
	}
	reg := NewTilesetRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("grid: reading %s: %w", e.Name(), err)
		}
		ts, err := LoadTilesetsFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("grid: %s: %w", e.Name(), err)
		}
		for _, t := range ts {
			if err := reg.Register(t); err != nil {
				return nil, err
			}
		}
	}
	return reg, nil
}
