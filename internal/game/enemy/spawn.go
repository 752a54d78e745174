package enemy

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/ability"
	"github.com/cory-johannsen/tactics/internal/game/inventory"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

// Spawner instantiates live units from definitions.
type Spawner struct {
	Abilities *ability.Registry
	Equipment *inventory.Registry
	Classes   *unit.ClassRegistry
	Logger    *zap.Logger
}

// Spawn creates a fresh enemy-controlled unit from d. Every call yields a new ID.
// Unknown ability, class, and equipment ids are logged at Warn and skipped.
//
// Precondition: d has passed Validate.
// Postcondition: the unit has no wounds, full mana, and a zero action timer.
func (s Spawner) Spawn(d *Definition) *unit.Unit {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	u := unit.New(unit.NewID(), d.Name, d.UnitKind(), unit.Enemy, d.Stats)
	u.DefinitionID = d.ID
	u.AIProfile = d.AIProfile
	if d.Weapon != nil {
		w := *d.Weapon
		u.NaturalWeapon = &w
	}
	if d.Class != "" {
		if c, ok := s.Classes.Get(d.Class); ok {
			u.Class = c
		} else {
			logger.Warn("unknown class id", zap.String("enemy", d.ID), zap.String("class_id", d.Class))
		}
	}
	for _, id := range d.Abilities {
		a, ok := s.Abilities.Get(id)
		if !ok {
			logger.Warn("unknown ability id", zap.String("enemy", d.ID), zap.String("ability_id", id))
			continue
		}
		u.Learned = append(u.Learned, a)
	}
	if d.Reaction != "" {
		a, ok := s.Abilities.Get(d.Reaction)
		switch {
		case !ok:
			logger.Warn("unknown ability id", zap.String("enemy", d.ID), zap.String("ability_id", d.Reaction))
		default:
			if err := u.Assign(a); err != nil {
				logger.Warn("reaction not assignable", zap.String("enemy", d.ID), zap.Error(err))
			}
		}
	}
	if u.Equipment != nil {
		for _, slot := range inventory.Slots {
			id, ok := d.Equipment[slot]
			if !ok {
				continue
			}
			def, found := s.Equipment.Get(id)
			if !found {
				logger.Warn("unknown equipment id", zap.String("enemy", d.ID), zap.String("equipment_id", id))
				continue
			}
			if _, err := u.Equipment.Equip(slot, def); err != nil {
				logger.Warn("equipment not equippable", zap.String("enemy", d.ID), zap.Error(err))
			}
		}
	}
	return u
}
