package ai

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile is a named, authored set of behaviours.
//
// Invariant: ID is non-empty; Behaviors is non-empty and every spec validates.
type Profile struct {
	ID          string         `yaml:"id"`
	Description string         `yaml:"description"`
	Behaviors   []BehaviorSpec `yaml:"behaviors"`
}

// Validate checks all required fields.
//
// Postcondition: nil return guarantees a non-empty ID and at least one valid behaviour.
func (p *Profile) Validate() error {
	if p.ID == "" {
		return errors.New("ai.Profile: ID must not be empty")
	}
	if len(p.Behaviors) == 0 {
		return fmt.Errorf("ai.Profile %q: must have at least one behavior", p.ID)
	}
	var errs []error
	for i, s := range p.Behaviors {
		if err := s.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("behavior %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("ai.Profile %q: %w", p.ID, errors.Join(errs...))
	}
	return nil
}

// DefaultProfile is used for units whose profile is empty or unknown.
func DefaultProfile() *Profile {
	return &Profile{
		ID:          "default",
		Description: "Finish off the wounded, fight what is in reach, then close in.",
		Behaviors: []BehaviorSpec{
			{Type: BehaviorAttackLethal, Priority: 100},
			{Type: BehaviorAttackInRange, Priority: 90},
			{Type: BehaviorMoveAndAttack, Priority: 80},
			{Type: BehaviorAdvance, Priority: 10},
			{Type: BehaviorWait, Priority: 0},
		},
	}
}

// yamlProfileFile wraps the YAML top-level key.
type yamlProfileFile struct {
	Profile *Profile `yaml:"profile"`
}

// LoadProfilesFromBytes parses one or more YAML documents, each holding a
// top-level 'profile' key.
//
// Postcondition: returns an error if any document fails to parse or validate.
func LoadProfilesFromBytes(data []byte) ([]*Profile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var out []*Profile
	for {
		var f yamlProfileFile
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ai: parsing profile YAML: %w", err)
		}
		if f.Profile == nil {
			return nil, errors.New("ai: document missing top-level 'profile' key")
		}
		if err := f.Profile.Validate(); err != nil {
			return nil, err
		}
		out = append(out, f.Profile)
	}
	return out, nil
}

// LoadProfiles reads all *.yaml files from dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any YAML file fails to parse or validate.
func LoadProfiles(dir string) ([]*Profile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadProfiles: reading %q: %w", dir, err)
	}
	var profiles []*Profile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("ai.LoadProfiles: reading %s: %w", e.Name(), err)
		}
		ps, err := LoadProfilesFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("ai.LoadProfiles: %s: %w", e.Name(), err)
		}
		profiles = append(profiles, ps...)
	}
	return profiles, nil
}
