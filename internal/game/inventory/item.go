// Package inventory provides equipment definitions, per-unit equipment slots,
// and the loaders and registry that hold them.
package inventory

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/tactics/internal/game/registry"
	"github.com/cory-johannsen/tactics/internal/game/stat"
)

// Category is the kind of slot an equipment definition fits.
type Category string

const (
	CategoryHand      Category = "hand"
	CategoryHead      Category = "head"
	CategoryBody      Category = "body"
	CategoryAccessory Category = "accessory"
)

// DamageType selects which power and evade stats a weapon uses.
type DamageType string

const (
	DamagePhysical DamageType = "physical"
	DamageMagical  DamageType = "magical"
)

// WeaponProfile is the range and damage profile of a weapon.
type WeaponProfile struct {
	MinRange   int        `yaml:"min_range" json:"min_range"`
	MaxRange   int        `yaml:"max_range" json:"max_range"`
	Power      int        `yaml:"power" json:"power"`
	DamageType DamageType `yaml:"damage_type" json:"damage_type"`
}

// Unarmed is the implicit profile of a unit with no weapon equipped.
var Unarmed = WeaponProfile{MinRange: 1, MaxRange: 1, Power: 0, DamageType: DamagePhysical}

// IsMelee reports whether the weapon only reaches adjacent tiles.
func (w WeaponProfile) IsMelee() bool {
	return w.MaxRange <= 1
}

// EquipmentDef is the static definition of an equippable item loaded from YAML.
type EquipmentDef struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Category    Category       `yaml:"category"`
	Weapon      *WeaponProfile `yaml:"weapon"`
	Bonuses     stat.Block     `yaml:"bonuses"`
	// Value is the sale price in gold.
	Value int `yaml:"value"`
}

// Key returns the equipment ID.
func (d *EquipmentDef) Key() string { return d.ID }

// IsWeapon reports whether d carries a weapon profile.
func (d *EquipmentDef) IsWeapon() bool { return d.Weapon != nil }

// Fits reports whether d may occupy slot.
func (d *EquipmentDef) Fits(slot Slot) bool {
	switch d.Category {
	case CategoryHand:
		return slot == SlotMainHand || slot == SlotOffHand
	case CategoryHead:
		return slot == SlotHead
	case CategoryBody:
		return slot == SlotBody
	case CategoryAccessory:
		return slot == SlotAccessory
	}
	return false
}

// Validate checks that d satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *EquipmentDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	switch d.Category {
	case CategoryHand, CategoryHead, CategoryBody, CategoryAccessory:
	default:
		errs = append(errs, fmt.Errorf("unknown category %q", d.Category))
	}
	if w := d.Weapon; w != nil {
		if d.Category != CategoryHand {
			errs = append(errs, errors.New("only hand items may carry a weapon profile"))
		}
		if w.MinRange < 1 || w.MaxRange < w.MinRange {
			errs = append(errs, fmt.Errorf("invalid weapon range %d..%d", w.MinRange, w.MaxRange))
		}
		if w.DamageType != DamagePhysical && w.DamageType != DamageMagical {
			errs = append(errs, fmt.Errorf("unknown damage_type %q", w.DamageType))
		}
	}
	if d.Value < 0 {
		errs = append(errs, errors.New("value must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("equipment %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Registry holds equipment definitions keyed by ID.
type Registry = registry.Registry[*EquipmentDef]

// NewRegistry returns an empty equipment registry.
func NewRegistry() *Registry {
	return registry.New[*EquipmentDef]("equipment")
}
