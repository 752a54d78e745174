// Package condition tracks timed stat modifiers (buffs and debuffs) applied to a unit.
package condition

import (
	"fmt"

	"github.com/cory-johannsen/tactics/internal/game/stat"
)

// Permanent marks a modifier that never expires through Tick.
const Permanent = -1

// Modifier is one signed adjustment to a stat, usually produced by an ability effect.
type Modifier struct {
	// Source is the id of the ability that produced the modifier.
	Source   string    `json:"source" yaml:"source"`
	Stat     stat.Name `json:"stat" yaml:"stat"`
	Amount   int       `json:"amount" yaml:"amount"`
	Duration int       `json:"duration" yaml:"duration"` // turns; Permanent = -1
}

// Key identifies the slot a modifier occupies; reapplying the same key refreshes it.
func (m Modifier) Key() string {
	return m.Source + "/" + string(m.Stat)
}

// ActiveModifier is a Modifier plus its remaining turns.
type ActiveModifier struct {
	Modifier
	Remaining int `json:"remaining"`
}

// ActiveSet tracks all modifiers currently applied to one unit, in application order.
// It is not safe for concurrent use; the caller must serialise access.
type ActiveSet struct {
	mods []*ActiveModifier
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{}
}

// Apply adds m, or refreshes the modifier already occupying m.Key().
//
// Precondition: m.Stat is a known stat; m.Duration is Permanent or > 0.
// Postcondition: Has(m.Key()) is true; on refresh Amount is replaced and
// Remaining becomes max(existing, m.Duration), permanent winning over timed.
func (s *ActiveSet) Apply(m Modifier) error {
	if _, err := stat.Parse(string(m.Stat)); err != nil {
		return fmt.Errorf("condition: %w", err)
	}
	if m.Duration == 0 || m.Duration < Permanent {
		return fmt.Errorf("condition: modifier %s has invalid duration %d", m.Key(), m.Duration)
	}
	for _, am := range s.mods {
		if am.Key() != m.Key() {
			continue
		}
		am.Amount = m.Amount
		switch {
		case m.Duration == Permanent || am.Remaining == Permanent:
			am.Remaining = Permanent
		case m.Duration > am.Remaining:
			am.Remaining = m.Duration
		}
		am.Duration = am.Remaining
		return nil
	}
	s.mods = append(s.mods, &ActiveModifier{Modifier: m, Remaining: m.Duration})
	return nil
}

// Remove deletes the modifier with the given key. Missing keys are a no-op.
//
// Postcondition: Has(key) is false.
func (s *ActiveSet) Remove(key string) {
	for i, am := range s.mods {
		if am.Key() == key {
			s.mods = append(s.mods[:i], s.mods[i+1:]...)
			return
		}
	}
}

// Tick decrements every timed modifier by one turn and removes the ones that reach zero.
//
// Postcondition: Permanent modifiers are unaffected; the returned modifiers are no
// longer in the set.
func (s *ActiveSet) Tick() []Modifier {
	var expired []Modifier
	kept := s.mods[:0]
	for _, am := range s.mods {
		if am.Remaining != Permanent {
			am.Remaining--
			if am.Remaining <= 0 {
				expired = append(expired, am.Modifier)
				continue
			}
		}
		kept = append(kept, am)
	}
	s.mods = kept
	return expired
}

// Has reports whether a modifier with key is active.
func (s *ActiveSet) Has(key string) bool {
	for _, am := range s.mods {
		if am.Key() == key {
			return true
		}
	}
	return false
}

// Len returns the number of active modifiers.
func (s *ActiveSet) Len() int { return len(s.mods) }

// All returns copies of the active modifiers in application order.
func (s *ActiveSet) All() []ActiveModifier {
	out := make([]ActiveModifier, 0, len(s.mods))
	for _, am := range s.mods {
		out = append(out, *am)
	}
	return out
}

// Clone returns an independent copy of s.
func (s *ActiveSet) Clone() *ActiveSet {
	c := &ActiveSet{mods: make([]*ActiveModifier, 0, len(s.mods))}
	for _, am := range s.mods {
		cp := *am
		c.mods = append(c.mods, &cp)
	}
	return c
}
