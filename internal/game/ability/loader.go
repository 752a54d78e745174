package ability

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFromBytes decodes one or more YAML documents of abilities.
// Unknown fields are rejected.
//
// Postcondition: every returned ability passed Validate.
func LoadFromBytes(data []byte) ([]*Ability, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var out []*Ability
	for {
		var a Ability
		err := dec.Decode(&a)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing ability YAML: %w", err)
		}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, nil
}

// LoadDirectory reads every *.yaml file in dir into a new Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a populated Registry, or an error naming the first bad file.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading ability dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		abilities, err := LoadFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, a := range abilities {
			if err := reg.Register(a); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	return reg, nil
}
