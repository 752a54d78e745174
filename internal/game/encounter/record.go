package encounter

import (
	"encoding/json"
	"fmt"

	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/predicate"
)

// Record is the id-referenced JSON projection of an Encounter. Enemies and
// items appear by id only.
type Record struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Tileset        string          `json:"tileset,omitempty"`
	Map            *grid.Map       `json:"map"`
	Victory        predicate.List  `json:"victory"`
	Defeat         predicate.List  `json:"defeat"`
	Deployment     []grid.Position `json:"deployment"`
	Placements     []Placement     `json:"placements"`
	GuaranteedLoot []string        `json:"guaranteed_loot,omitempty"`
	// Rewards is the cached payout, absent when invalidated.
	Rewards *Rewards `json:"rewards,omitempty"`
}

// Record projects e. The rewards cache is included only when populated.
func (e *Encounter) Record() Record {
	r := Record{
		ID:             e.ID,
		Name:           e.Name,
		Description:    e.Description,
		Tileset:        e.Tileset,
		Map:            e.Map,
		Victory:        predicate.List(e.Victory),
		Defeat:         predicate.List(e.Defeat),
		Deployment:     e.DeploymentZones(),
		Placements:     e.Placements(),
		GuaranteedLoot: e.GuaranteedLoot(),
	}
	if e.rewards != nil {
		cached := e.rewards.clone()
		r.Rewards = &cached
	}
	return r
}

// FromRecord rebuilds an Encounter from its projection, resolving references
// through deps. A cached Rewards value is restored as the cache.
func FromRecord(r Record, deps Deps) (*Encounter, error) {
	e, err := New(r.ID, r.Name, r.Map, r.Deployment, r.Placements, deps)
	if err != nil {
		return nil, err
	}
	e.Description = r.Description
	e.Tileset = r.Tileset
	e.Victory = []predicate.Predicate(r.Victory)
	e.Defeat = []predicate.Predicate(r.Defeat)
	e.guaranteedLoot = append([]string(nil), r.GuaranteedLoot...)
	if r.Rewards != nil {
		cached := r.Rewards.clone()
		e.rewards = &cached
	}
	return e, nil
}

// Marshal encodes e as JSON.
func Marshal(e *Encounter) ([]byte, error) {
	return json.Marshal(e.Record())
}

// Unmarshal decodes JSON written by Marshal.
func Unmarshal(data []byte, deps Deps) (*Encounter, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("encounter: decoding: %w", err)
	}
	return FromRecord(r, deps)
}
