package unit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tactics/internal/game/registry"
	"github.com/cory-johannsen/tactics/internal/game/stat"
)

// Class defines a unit class: its stat modifiers and learnable-ability pool.
//
// Precondition: ID and Name must be non-empty after loading.
type Class struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Modifiers   stat.Block `yaml:"modifiers"`
	// Abilities lists the ids of abilities a unit of this class may learn.
	Abilities []string `yaml:"abilities"`
}

// Key returns the class ID.
func (c *Class) Key() string { return c.ID }

// CanLearn reports whether abilityID is in the class pool.
func (c *Class) CanLearn(abilityID string) bool {
	for _, id := range c.Abilities {
		if id == abilityID {
			return true
		}
	}
	return false
}

// ClassRegistry holds classes keyed by ID.
type ClassRegistry = registry.Registry[*Class]

// NewClassRegistry returns an empty class registry.
func NewClassRegistry() *ClassRegistry {
	return registry.New[*Class]("class")
}

// LoadClassesFromBytes decodes one or more YAML class documents.
//
// Postcondition: Returns all parsed classes or a non-nil error.
func LoadClassesFromBytes(data []byte) ([]*Class, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var out []*Class
	for {
		var c Class
		err := dec.Decode(&c)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing class YAML: %w", err)
		}
		if c.ID == "" || c.Name == "" {
			return nil, fmt.Errorf("class %q: id and name must not be empty", c.ID)
		}
		out = append(out, &c)
	}
	return out, nil
}

// LoadClasses reads all .yaml files in dir into a new ClassRegistry.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns the populated registry or a non-nil error.
func LoadClasses(dir string) (*ClassRegistry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading class dir %q: %w", dir, err)
	}
	reg := NewClassRegistry()
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		classes, err := LoadClassesFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, c := range classes {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	return reg, nil
}
