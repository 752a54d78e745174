// Package ability defines the immutable Ability content type and the data-defined
// Effects an ability applies when executed.
package ability

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cory-johannsen/tactics/internal/game/registry"
	"github.com/cory-johannsen/tactics/internal/game/stat"
)

// Type determines which slot an ability may occupy and when it is eligible.
type Type string

const (
	TypeAction   Type = "action"
	TypeReaction Type = "reaction"
	TypePassive  Type = "passive"
	TypeMovement Type = "movement"
)

// Valid reports whether t is a known ability type.
func (t Type) Valid() bool {
	switch t {
	case TypeAction, TypeReaction, TypePassive, TypeMovement:
		return true
	}
	return false
}

// Reaction trigger tags. Tag membership on a reaction ability decides which
// attack-event phase it responds to.
const (
	TriggerBeforeAttack   = "before-attack"
	TriggerAfterAttack    = "after-attack"
	TriggerBeforeAttacked = "before-attacked"
	TriggerAfterAttacked  = "after-attacked"
)

// Triggers lists the reaction trigger tags in attack-event order.
var Triggers = []string{TriggerBeforeAttack, TriggerBeforeAttacked, TriggerAfterAttack, TriggerAfterAttacked}

// Range is the optional min/max Manhattan band an ability reaches.
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Ability is a content-defined, shared, immutable ability. Units reference the
// same *Ability; nothing mutates it after load.
type Ability struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Type        Type     `yaml:"type" json:"type"`
	XPPrice     int      `yaml:"xp_price" json:"xp_price"`
	Tags        []string `yaml:"tags" json:"tags,omitempty"`
	Effects     []Effect `yaml:"effects" json:"effects,omitempty"`
	Range       *Range   `yaml:"range" json:"range,omitempty"`
	Icon        string   `yaml:"icon" json:"icon,omitempty"`
}

// Key returns the ability ID.
func (a *Ability) Key() string { return a.ID }

// HasTag reports whether tag is in the ability's tag set.
func (a *Ability) HasTag(tag string) bool {
	return slices.Contains(a.Tags, tag)
}

// RequiresTarget reports whether any effect uses a selector that needs an
// explicit target (target, ally, enemy).
func (a *Ability) RequiresTarget() bool {
	for _, e := range a.Effects {
		if e.Target.RequiresTarget() {
			return true
		}
	}
	return false
}

// ManaCost returns the sum of literal mana-cost effect values.
func (a *Ability) ManaCost() int {
	total := 0
	for _, e := range a.Effects {
		if e.Kind == EffectManaCost {
			if v, ok := e.Value.Literal(); ok {
				total += v
			}
		}
	}
	return total
}

// Reach returns the ability's range, defaulting to melee (1..1).
func (a *Ability) Reach() Range {
	if a.Range == nil {
		return Range{Min: 1, Max: 1}
	}
	return *a.Range
}

// Validate checks the structural invariants of a content definition. Unknown
// effect kinds and selectors are not structural: the executor rejects them with
// a warning at use time.
//
// Postcondition: returns nil iff all structural fields are valid.
func (a *Ability) Validate() error {
	var errs []error
	if a.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if a.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !a.Type.Valid() {
		errs = append(errs, fmt.Errorf("unknown type %q", a.Type))
	}
	if a.XPPrice < 0 {
		errs = append(errs, errors.New("xp_price must be >= 0"))
	}
	if a.Range != nil && (a.Range.Min < 0 || a.Range.Max < a.Range.Min) {
		errs = append(errs, fmt.Errorf("invalid range %d..%d", a.Range.Min, a.Range.Max))
	}
	for i, e := range a.Effects {
		if err := e.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("effect %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("ability %q: %w", a.ID, errors.Join(errs...))
	}
	return nil
}

// Registry holds abilities keyed by ID.
type Registry = registry.Registry[*Ability]

// NewRegistry returns an empty ability registry.
func NewRegistry() *Registry {
	return registry.New[*Ability]("ability")
}

// statNeeded reports whether kind reads Effect.Stat.
func statNeeded(k EffectKind) bool {
	return k == EffectStatBonus || k == EffectStatPenalty
}

func validStat(n stat.Name) bool {
	_, err := stat.Parse(string(n))
	return err == nil
}
