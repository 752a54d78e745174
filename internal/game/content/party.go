package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tactics/internal/game/inventory"
	"github.com/cory-johannsen/tactics/internal/game/stat"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

// Member is the authored form of one player-controlled unit.
type Member struct {
	ID        string                    `yaml:"id"`
	Name      string                    `yaml:"name"`
	Kind      unit.Kind                 `yaml:"kind"`
	Class     string                    `yaml:"class"`
	Stats     stat.Block                `yaml:"stats"`
	Abilities []string                  `yaml:"abilities"`
	Reaction  string                    `yaml:"reaction"`
	Passive   string                    `yaml:"passive"`
	Movement  string                    `yaml:"movement"`
	Equipment map[inventory.Slot]string `yaml:"equipment"`
	AIProfile string                    `yaml:"ai_profile"`
}

// Validate checks the member's own fields. References are resolved later.
func (m Member) Validate() error {
	var errs []error
	if m.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if m.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if m.Kind != "" && m.Kind != unit.Humanoid && m.Kind != unit.Monster {
		errs = append(errs, fmt.Errorf("unknown kind %q", m.Kind))
	}
	if m.Stats.Health < 1 {
		errs = append(errs, fmt.Errorf("health must be >= 1, got %d", m.Stats.Health))
	}
	if len(errs) > 0 {
		return fmt.Errorf("party member %q: %w", m.ID, errors.Join(errs...))
	}
	return nil
}

// Record converts the member into a player-controlled unit record with the
// given instance id.
func (m Member) Record(id unit.ID) unit.Record {
	kind := m.Kind
	if kind == "" {
		kind = unit.Humanoid
	}
	return unit.Record{
		ID:         id,
		Name:       m.Name,
		Kind:       kind,
		Controller: unit.Player,
		Class:      m.Class,
		Base:       m.Stats,
		AIProfile:  m.AIProfile,
		Learned:    m.Abilities,
		Reaction:   m.Reaction,
		Passive:    m.Passive,
		Movement:   m.Movement,
		Equipment:  m.Equipment,
	}
}

// Party is a named roster of members.
type Party struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Members []Member `yaml:"members"`
}

// Key returns the party ID.
func (p *Party) Key() string { return p.ID }

// Validate checks the party and every member, collecting all violations.
func (p *Party) Validate() error {
	var errs []error
	if p.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if len(p.Members) == 0 {
		errs = append(errs, errors.New("party has no members"))
	}
	seen := make(map[string]bool, len(p.Members))
	for _, m := range p.Members {
		if err := m.Validate(); err != nil {
			errs = append(errs, err)
		}
		if seen[m.ID] {
			errs = append(errs, fmt.Errorf("duplicate member id %q", m.ID))
		}
		seen[m.ID] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("party %q: %w", p.ID, errors.Join(errs...))
	}
	return nil
}

// LoadPartiesFromBytes parses one or more YAML party documents.
//
// Postcondition: returns an error if any document fails to parse or validate.
func LoadPartiesFromBytes(data []byte) ([]*Party, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var out []*Party
	for {
		var p Party
		err := dec.Decode(&p)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing party YAML: %w", err)
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, nil
}

func loadParties(dir string) ([]*Party, error) {
	var out []*Party
	err := eachYAML(dir, func(path string, data []byte) error {
		ps, err := LoadPartiesFromBytes(data)
		if err != nil {
			return err
		}
		for _, p := range ps {
			for _, prev := range out {
				if prev.ID == p.ID {
					return fmt.Errorf("party id %q already loaded", p.ID)
				}
			}
			out = append(out, p)
		}
		return nil
	})
	return out, err
}

// eachYAML calls fn with every *.yaml file in dir, in directory order.
func eachYAML(dir string, fn func(path string, data []byte) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		if err := fn(path, data); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
