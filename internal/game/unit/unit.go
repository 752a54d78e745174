// Package unit defines combat units and the Manifest that tracks where they stand.
package unit

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/tactics/internal/game/ability"
	"github.com/cory-johannsen/tactics/internal/game/condition"
	"github.com/cory-johannsen/tactics/internal/game/inventory"
	"github.com/cory-johannsen/tactics/internal/game/stat"
)

// ErrInsufficientMana is returned by SpendMana when the unit cannot pay.
var ErrInsufficientMana = errors.New("not enough mana")

// ID is the stable handle of a unit. Spawned units receive a fresh uuid.
type ID string

// NewID returns a fresh random unit ID.
func NewID() ID { return ID(uuid.NewString()) }

// Kind distinguishes the unit variants.
type Kind string

const (
	Humanoid Kind = "humanoid"
	Monster  Kind = "monster"
)

// Controller is the side a unit fights for.
type Controller string

const (
	Player Controller = "player"
	Enemy  Controller = "enemy"
)

// Opposes reports whether c and o are on different sides.
func (c Controller) Opposes(o Controller) bool { return c != o }

// Unit is one combatant. Units never own their position; see Manifest.
//
// Invariant: 0 <= wounds; 0 <= manaUsed; 0 <= actionTimer.
type Unit struct {
	ID         ID
	Name       string
	Kind       Kind
	Controller Controller
	Class      *Class
	Base       stat.Block
	// DefinitionID is the enemy definition a spawned unit came from.
	DefinitionID string
	// NaturalWeapon is the built-in weapon of a monster; nil means unarmed.
	NaturalWeapon *inventory.WeaponProfile
	// AIProfile names the behaviour profile that drives an AI-controlled unit.
	AIProfile string

	Learned  []*ability.Ability
	Reaction *ability.Ability
	Passive  *ability.Ability
	Movement *ability.Ability

	// Equipment is non-nil for humanoids only.
	Equipment *inventory.Equipment
	Modifiers *condition.ActiveSet

	wounds      int
	manaUsed    int
	actionTimer int
}

// New creates a unit with no wounds, full mana, and an empty action timer.
//
// Postcondition: Humanoids have a non-nil Equipment; Modifiers is non-nil.
func New(id ID, name string, kind Kind, ctrl Controller, base stat.Block) *Unit {
	u := &Unit{
		ID:         id,
		Name:       name,
		Kind:       kind,
		Controller: ctrl,
		Base:       base,
		Modifiers:  condition.NewActiveSet(),
	}
	if kind == Humanoid {
		u.Equipment = inventory.NewEquipment()
	}
	return u
}

// Stats returns the effective stats: base + class + equipment + modifiers, floored at 0.
func (u *Unit) Stats() stat.Block {
	s := u.Base
	if u.Class != nil {
		s = s.Add(u.Class.Modifiers)
	}
	if u.Equipment != nil {
		s = s.Add(u.Equipment.Bonus())
	}
	if u.Modifiers != nil {
		s = s.Add(u.Modifiers.Bonus())
	}
	return s.FloorZero()
}

// Stat returns one effective stat.
func (u *Unit) Stat(n stat.Name) int { return u.Stats().Get(n) }

// MaxHealth returns the effective Health stat.
func (u *Unit) MaxHealth() int { return u.Stat(stat.Health) }

// Wounds returns the health consumed so far.
func (u *Unit) Wounds() int { return u.wounds }

// CurrentHealth returns MaxHealth - Wounds, never below 0.
func (u *Unit) CurrentHealth() int {
	if h := u.MaxHealth() - u.wounds; h > 0 {
		return h
	}
	return 0
}

// IsKO reports whether wounds meet or exceed max health.
func (u *Unit) IsKO() bool { return u.wounds >= u.MaxHealth() }

// ManaUsed returns the mana spent so far.
func (u *Unit) ManaUsed() int { return u.manaUsed }

// Mana returns the mana still available.
func (u *Unit) Mana() int {
	if m := u.Stat(stat.Mana) - u.manaUsed; m > 0 {
		return m
	}
	return 0
}

// ActionTimer returns the action-turn gauge.
func (u *Unit) ActionTimer() int { return u.actionTimer }

// TakeDamage adds n wounds, capped so wounds never exceed max health.
//
// Postcondition: Returns the wounds actually added (>= 0).
func (u *Unit) TakeDamage(n int) int {
	if n <= 0 {
		return 0
	}
	room := u.MaxHealth() - u.wounds
	if room < 0 {
		room = 0
	}
	if n > room {
		n = room
	}
	u.wounds += n
	return n
}

// Heal removes up to n wounds.
//
// Postcondition: Returns the wounds actually removed (>= 0).
func (u *Unit) Heal(n int) int {
	if n <= 0 {
		return 0
	}
	if n > u.wounds {
		n = u.wounds
	}
	u.wounds -= n
	return n
}

// SpendMana consumes n mana.
//
// Postcondition: Returns ErrInsufficientMana and changes nothing if Mana() < n.
func (u *Unit) SpendMana(n int) error {
	if n <= 0 {
		return nil
	}
	if u.Mana() < n {
		return fmt.Errorf("%s needs %d mana, has %d: %w", u.Name, n, u.Mana(), ErrInsufficientMana)
	}
	u.manaUsed += n
	return nil
}

// RestoreMana refunds up to n spent mana.
//
// Postcondition: Returns the mana actually restored (>= 0).
func (u *Unit) RestoreMana(n int) int {
	if n <= 0 {
		return 0
	}
	if n > u.manaUsed {
		n = u.manaUsed
	}
	u.manaUsed -= n
	return n
}

// AdjustActionTimer shifts the action gauge by delta, never below 0.
//
// Postcondition: Returns the new timer value.
func (u *Unit) AdjustActionTimer(delta int) int {
	u.actionTimer += delta
	if u.actionTimer < 0 {
		u.actionTimer = 0
	}
	return u.actionTimer
}

// ApplyModifier adds or refreshes a timed stat modifier.
func (u *Unit) ApplyModifier(m condition.Modifier) error {
	return u.Modifiers.Apply(m)
}

// TickModifiers advances every timed modifier by one turn.
//
// Postcondition: Returns the modifiers that expired.
func (u *Unit) TickModifiers() []condition.Modifier {
	return u.Modifiers.Tick()
}

// Learn adds a to the learned set. Learning twice is a no-op.
//
// Postcondition: Returns an error if the unit's class pool excludes a.
func (u *Unit) Learn(a *ability.Ability) error {
	if a == nil {
		return errors.New("unit: cannot learn nil ability")
	}
	if u.Class != nil && len(u.Class.Abilities) > 0 && !u.Class.CanLearn(a.ID) {
		return fmt.Errorf("unit %s: class %q cannot learn %q", u.Name, u.Class.ID, a.ID)
	}
	if u.Knows(a.ID) {
		return nil
	}
	u.Learned = append(u.Learned, a)
	return nil
}

// Knows reports whether abilityID has been learned.
func (u *Unit) Knows(abilityID string) bool {
	for _, a := range u.Learned {
		if a.ID == abilityID {
			return true
		}
	}
	return false
}

// Actions returns the learned abilities of type action, in learn order.
func (u *Unit) Actions() []*ability.Ability {
	var out []*ability.Ability
	for _, a := range u.Learned {
		if a.Type == ability.TypeAction {
			out = append(out, a)
		}
	}
	return out
}

// Assign places a in the slot matching its type.
//
// Precondition: a.Type is reaction, passive, or movement.
func (u *Unit) Assign(a *ability.Ability) error {
	if a == nil {
		return errors.New("unit: cannot assign nil ability")
	}
	switch a.Type {
	case ability.TypeReaction:
		u.Reaction = a
	case ability.TypePassive:
		u.Passive = a
	case ability.TypeMovement:
		u.Movement = a
	default:
		return fmt.Errorf("unit %s: %s ability %q has no slot", u.Name, a.Type, a.ID)
	}
	return nil
}

// Weapons returns one profile per attack the unit makes: every equipped weapon
// for humanoids, the natural weapon for monsters, or Unarmed.
//
// Postcondition: len(result) >= 1.
func (u *Unit) Weapons() []inventory.WeaponProfile {
	var out []inventory.WeaponProfile
	if u.Equipment != nil {
		for _, d := range u.Equipment.Weapons() {
			out = append(out, *d.Weapon)
		}
	}
	if len(out) == 0 && u.NaturalWeapon != nil {
		out = append(out, *u.NaturalWeapon)
	}
	if len(out) == 0 {
		out = append(out, inventory.Unarmed)
	}
	return out
}

// BestWeapon returns the weapon with the widest reach.
func (u *Unit) BestWeapon() inventory.WeaponProfile {
	ws := u.Weapons()
	best := ws[0]
	for _, w := range ws[1:] {
		if w.MaxRange > best.MaxRange {
			best = w
		}
	}
	return best
}

// Clone returns a deep copy that shares only immutable content definitions.
func (u *Unit) Clone() *Unit {
	c := *u
	c.Learned = append([]*ability.Ability(nil), u.Learned...)
	if u.Equipment != nil {
		c.Equipment = u.Equipment.Clone()
	}
	if u.Modifiers != nil {
		c.Modifiers = u.Modifiers.Clone()
	}
	return &c
}

// String returns the unit name.
func (u *Unit) String() string { return u.Name }
