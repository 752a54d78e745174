package inventory

import (
	"fmt"

	"github.com/cory-johannsen/tactics/internal/game/stat"
)

// Slot identifies one equipment slot of a humanoid unit.
type Slot string

const (
	SlotMainHand  Slot = "main_hand"
	SlotOffHand   Slot = "off_hand"
	SlotHead      Slot = "head"
	SlotBody      Slot = "body"
	SlotAccessory Slot = "accessory"
)

// Slots lists every slot in display order.
var Slots = []Slot{SlotMainHand, SlotOffHand, SlotHead, SlotBody, SlotAccessory}

var slotDisplayNames = map[Slot]string{
	SlotMainHand:  "Main Hand",
	SlotOffHand:   "Off Hand",
	SlotHead:      "Head",
	SlotBody:      "Body",
	SlotAccessory: "Accessory",
}

// SlotDisplayName returns the human-readable label for slot, or slot itself if unknown.
func SlotDisplayName(slot Slot) string {
	if label, ok := slotDisplayNames[slot]; ok {
		return label
	}
	return string(slot)
}

// Equipment holds the items a unit has equipped, one per slot.
// It is not safe for concurrent use.
type Equipment struct {
	slots map[Slot]*EquipmentDef
}

// NewEquipment returns an Equipment with every slot empty.
func NewEquipment() *Equipment {
	return &Equipment{slots: make(map[Slot]*EquipmentDef)}
}

// Equip places def in slot, returning whatever was there before.
//
// Precondition: def is non-nil.
// Postcondition: returns an error and leaves the slot untouched if def does not fit.
func (e *Equipment) Equip(slot Slot, def *EquipmentDef) (*EquipmentDef, error) {
	if def == nil {
		return nil, fmt.Errorf("inventory: cannot equip nil into %s", slot)
	}
	if !def.Fits(slot) {
		return nil, fmt.Errorf("inventory: %q (%s) does not fit slot %s", def.ID, def.Category, slot)
	}
	prev := e.slots[slot]
	e.slots[slot] = def
	return prev, nil
}

// Unequip empties slot and returns what was there, or nil.
func (e *Equipment) Unequip(slot Slot) *EquipmentDef {
	prev := e.slots[slot]
	delete(e.slots, slot)
	return prev
}

// Get returns the item in slot.
func (e *Equipment) Get(slot Slot) (*EquipmentDef, bool) {
	d, ok := e.slots[slot]
	return d, ok
}

// Weapons returns the equipped weapons, main hand first.
//
// Postcondition: len(result) <= 2; every element has a non-nil Weapon.
func (e *Equipment) Weapons() []*EquipmentDef {
	var out []*EquipmentDef
	for _, s := range []Slot{SlotMainHand, SlotOffHand} {
		if d := e.slots[s]; d != nil && d.IsWeapon() {
			out = append(out, d)
		}
	}
	return out
}

// BestWeapon returns the profile with the widest reach, or Unarmed.
func (e *Equipment) BestWeapon() WeaponProfile {
	best := Unarmed
	found := false
	for _, d := range e.Weapons() {
		if !found || d.Weapon.MaxRange > best.MaxRange {
			best = *d.Weapon
			found = true
		}
	}
	return best
}

// Bonus returns the summed stat bonuses of every equipped item.
func (e *Equipment) Bonus() stat.Block {
	var b stat.Block
	for _, s := range Slots {
		if d := e.slots[s]; d != nil {
			b = b.Add(d.Bonuses)
		}
	}
	return b
}

// IDs returns slot → equipment id for every occupied slot.
func (e *Equipment) IDs() map[Slot]string {
	out := make(map[Slot]string, len(e.slots))
	for s, d := range e.slots {
		out[s] = d.ID
	}
	return out
}

// Clone returns a copy sharing the immutable definitions.
func (e *Equipment) Clone() *Equipment {
	c := NewEquipment()
	for s, d := range e.slots {
		c.slots[s] = d
	}
	return c
}
