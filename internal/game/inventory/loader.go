package inventory

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LoadFromBytes decodes one or more YAML documents of equipment definitions.
//
// Postcondition: every returned definition passed Validate.
func LoadFromBytes(data []byte) ([]*EquipmentDef, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var out []*EquipmentDef
	for {
		var d EquipmentDef
		err := dec.Decode(&d)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing equipment YAML: %w", err)
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, nil
}

// LoadDirectory reads every *.yaml file in dir into a new Registry.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns a populated Registry or the first encountered error.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadDirectory: cannot read directory %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadDirectory: cannot read file %q: %w", path, err)
		}
		defs, err := LoadFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("LoadDirectory: %q: %w", path, err)
		}
		for _, d := range defs {
			if err := reg.Register(d); err != nil {
				return nil, fmt.Errorf("LoadDirectory: %q: %w", path, err)
			}
		}
	}
	return reg, nil
}

// Resolve converts equipment ids (typically rolled loot) into definitions.
// Unknown ids are logged at Warn and skipped.
//
// Postcondition: result preserves the order of ids minus the unknown ones.
func Resolve(reg *Registry, ids []string, logger *zap.Logger) []*EquipmentDef {
	out := make([]*EquipmentDef, 0, len(ids))
	for _, id := range ids {
		d, ok := reg.Get(id)
		if !ok {
			logger.Warn("unknown equipment id", zap.String("equipment_id", id))
			continue
		}
		out = append(out, d)
	}
	return out
}
