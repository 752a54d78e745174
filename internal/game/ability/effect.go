package ability

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/game/stat"
)

// EffectKind names what an effect does.
type EffectKind string

const (
	EffectDamagePhysical   EffectKind = "damage-physical"
	EffectDamageMagical    EffectKind = "damage-magical"
	EffectHeal             EffectKind = "heal"
	EffectStatBonus        EffectKind = "stat-bonus"
	EffectStatPenalty      EffectKind = "stat-penalty"
	EffectManaRestore      EffectKind = "mana-restore"
	EffectManaCost         EffectKind = "mana-cost"
	EffectActionTimerShift EffectKind = "action-timer-modify"
)

// IsDamage reports whether k deals wounds and therefore rolls to hit.
func (k EffectKind) IsDamage() bool {
	return k == EffectDamagePhysical || k == EffectDamageMagical
}

// Selector chooses which units an effect applies to.
type Selector string

const (
	TargetSelf       Selector = "self"
	TargetTarget     Selector = "target"
	TargetAlly       Selector = "ally"
	TargetEnemy      Selector = "enemy"
	TargetAllAllies  Selector = "all-allies"
	TargetAllEnemies Selector = "all-enemies"
)

// RequiresTarget reports whether s needs an explicitly supplied target.
func (s Selector) RequiresTarget() bool {
	return s == TargetTarget || s == TargetAlly || s == TargetEnemy
}

// Effect is one data-defined consequence of an ability.
type Effect struct {
	Kind     EffectKind `yaml:"kind" json:"kind"`
	Target   Selector   `yaml:"target" json:"target"`
	Value    Value      `yaml:"value" json:"value"`
	Duration int        `yaml:"duration" json:"duration,omitempty"`
	// HitChance, when set, replaces the computed hit chance (percent).
	HitChance *int      `yaml:"hit_chance" json:"hit_chance,omitempty"`
	AutoHit   bool      `yaml:"auto_hit" json:"auto_hit,omitempty"`
	Stat      stat.Name `yaml:"stat" json:"stat,omitempty"`
}

// Validate checks kind-specific parameters.
func (e Effect) Validate() error {
	var errs []error
	if statNeeded(e.Kind) && !validStat(e.Stat) {
		errs = append(errs, fmt.Errorf("%s needs a known stat, got %q", e.Kind, e.Stat))
	}
	if e.Kind == EffectManaCost {
		if v, ok := e.Value.Literal(); !ok || v < 0 {
			errs = append(errs, errors.New("mana-cost value must be a non-negative literal"))
		}
	}
	if e.HitChance != nil && (*e.HitChance < 0 || *e.HitChance > 100) {
		errs = append(errs, fmt.Errorf("hit_chance %d outside 0..100", *e.HitChance))
	}
	if e.Duration < -1 {
		errs = append(errs, fmt.Errorf("duration %d must be >= -1", e.Duration))
	}
	return errors.Join(errs...)
}

// ValueKind distinguishes the three shapes an effect value may take.
type ValueKind int

const (
	ValueLiteral ValueKind = iota
	ValueDice
	ValueFormula
)

// String returns the lower-case name of k.
func (k ValueKind) String() string {
	switch k {
	case ValueLiteral:
		return "literal"
	case ValueDice:
		return "dice"
	default:
		return "formula"
	}
}

// Value is an effect magnitude: a literal integer, a dice expression such as
// "2d6+1", or a formula over caster and target stats such as "PPower * 1.5".
type Value struct {
	raw  string
	kind ValueKind
	lit  int
}

// Lit returns a literal value.
func Lit(n int) Value {
	return Value{raw: strconv.Itoa(n), kind: ValueLiteral, lit: n}
}

// ParseValue classifies raw. The empty string is the literal 0.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Lit(0)
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Value{raw: s, kind: ValueLiteral, lit: n}
	}
	if dice.IsExpression(s) {
		return Value{raw: s, kind: ValueDice}
	}
	return Value{raw: s, kind: ValueFormula}
}

// Kind returns the value's shape.
func (v Value) Kind() ValueKind { return v.kind }

// Raw returns the authored text.
func (v Value) Raw() string {
	if v.raw == "" {
		return "0"
	}
	return v.raw
}

// Literal returns the integer value and true when v is a literal.
func (v Value) Literal() (int, bool) {
	return v.lit, v.kind == ValueLiteral
}

// UnmarshalYAML accepts a scalar integer or string.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: effect value must be a scalar", node.Line)
	}
	*v = ParseValue(node.Value)
	return nil
}

// MarshalYAML writes literals as integers and everything else as strings.
func (v Value) MarshalYAML() (any, error) {
	if n, ok := v.Literal(); ok {
		return n, nil
	}
	return v.raw, nil
}

// MarshalJSON writes literals as numbers and everything else as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if n, ok := v.Literal(); ok {
		return json.Marshal(n)
	}
	return json.Marshal(v.raw)
}

// UnmarshalJSON accepts a number or a string.
func (v *Value) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Lit(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("effect value must be a number or string: %w", err)
	}
	*v = ParseValue(s)
	return nil
}
