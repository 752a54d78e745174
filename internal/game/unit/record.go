package unit

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/ability"
	"github.com/cory-johannsen/tactics/internal/game/condition"
	"github.com/cory-johannsen/tactics/internal/game/inventory"
	"github.com/cory-johannsen/tactics/internal/game/stat"
)

// Record is the id-referenced JSON projection of a Unit.
type Record struct {
	ID            ID                         `json:"id"`
	Name          string                     `json:"name"`
	Kind          Kind                       `json:"kind"`
	Controller    Controller                 `json:"controller"`
	Class         string                     `json:"class,omitempty"`
	Base          stat.Block                 `json:"base"`
	Wounds        int                        `json:"wounds"`
	ManaUsed      int                        `json:"mana_used"`
	ActionTimer   int                        `json:"action_timer"`
	DefinitionID  string                     `json:"definition_id,omitempty"`
	AIProfile     string                     `json:"ai_profile,omitempty"`
	NaturalWeapon *inventory.WeaponProfile   `json:"natural_weapon,omitempty"`
	Learned       []string                   `json:"learned,omitempty"`
	Reaction      string                     `json:"reaction,omitempty"`
	Passive       string                     `json:"passive,omitempty"`
	Movement      string                     `json:"movement,omitempty"`
	Equipment     map[inventory.Slot]string  `json:"equipment,omitempty"`
	Modifiers     []condition.ActiveModifier `json:"modifiers,omitempty"`
}

// Record projects u into its id-referenced form.
func (u *Unit) Record() Record {
	r := Record{
		ID:            u.ID,
		Name:          u.Name,
		Kind:          u.Kind,
		Controller:    u.Controller,
		Base:          u.Base,
		Wounds:        u.wounds,
		ManaUsed:      u.manaUsed,
		ActionTimer:   u.actionTimer,
		DefinitionID:  u.DefinitionID,
		AIProfile:     u.AIProfile,
		NaturalWeapon: u.NaturalWeapon,
	}
	if u.Class != nil {
		r.Class = u.Class.ID
	}
	for _, a := range u.Learned {
		r.Learned = append(r.Learned, a.ID)
	}
	if u.Reaction != nil {
		r.Reaction = u.Reaction.ID
	}
	if u.Passive != nil {
		r.Passive = u.Passive.ID
	}
	if u.Movement != nil {
		r.Movement = u.Movement.ID
	}
	if u.Equipment != nil {
		if ids := u.Equipment.IDs(); len(ids) > 0 {
			r.Equipment = ids
		}
	}
	if u.Modifiers != nil && u.Modifiers.Len() > 0 {
		r.Modifiers = u.Modifiers.All()
	}
	return r
}

// Resolver supplies the registries a Record's references are resolved against.
type Resolver struct {
	Classes   *ClassRegistry
	Abilities *ability.Registry
	Equipment *inventory.Registry
	Logger    *zap.Logger
}

// FromRecord rebuilds a Unit. Unknown class, ability, and equipment ids are
// logged at Warn and left unset.
//
// Postcondition: returns an error only for structurally invalid records.
func (res Resolver) FromRecord(r Record) (*Unit, error) {
	if r.ID == "" || r.Name == "" {
		return nil, fmt.Errorf("unit record: id and name must not be empty")
	}
	if r.Kind != Humanoid && r.Kind != Monster {
		return nil, fmt.Errorf("unit record %s: unknown kind %q", r.ID, r.Kind)
	}
	if r.Controller != Player && r.Controller != Enemy {
		return nil, fmt.Errorf("unit record %s: unknown controller %q", r.ID, r.Controller)
	}
	logger := res.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	u := New(r.ID, r.Name, r.Kind, r.Controller, r.Base)
	u.DefinitionID = r.DefinitionID
	u.AIProfile = r.AIProfile
	u.NaturalWeapon = r.NaturalWeapon
	if r.Class != "" {
		if c, ok := res.Classes.Get(r.Class); ok {
			u.Class = c
		} else {
			logger.Warn("unknown class id", zap.String("unit", r.Name), zap.String("class_id", r.Class))
		}
	}
	resolveAbility := func(id string) *ability.Ability {
		if id == "" {
			return nil
		}
		if a, ok := res.Abilities.Get(id); ok {
			return a
		}
		logger.Warn("unknown ability id", zap.String("unit", r.Name), zap.String("ability_id", id))
		return nil
	}
	for _, id := range r.Learned {
		if a := resolveAbility(id); a != nil {
			u.Learned = append(u.Learned, a)
		}
	}
	u.Reaction = resolveAbility(r.Reaction)
	u.Passive = resolveAbility(r.Passive)
	u.Movement = resolveAbility(r.Movement)
	if u.Equipment != nil {
		for _, slot := range inventory.Slots {
			id, ok := r.Equipment[slot]
			if !ok {
				continue
			}
			def, found := res.Equipment.Get(id)
			if !found {
				logger.Warn("unknown equipment id", zap.String("unit", r.Name), zap.String("equipment_id", id))
				continue
			}
			if _, err := u.Equipment.Equip(slot, def); err != nil {
				return nil, fmt.Errorf("unit record %s: %w", r.ID, err)
			}
		}
	}
	for _, am := range r.Modifiers {
		m := am.Modifier
		m.Duration = am.Remaining
		if err := u.ApplyModifier(m); err != nil {
			return nil, fmt.Errorf("unit record %s: %w", r.ID, err)
		}
	}
	u.wounds = max(r.Wounds, 0)
	u.manaUsed = max(r.ManaUsed, 0)
	u.actionTimer = max(r.ActionTimer, 0)
	return u, nil
}
