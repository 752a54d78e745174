package unit

import (
	"fmt"

	"github.com/cory-johannsen/tactics/internal/game/grid"
)

// Entry pairs a unit with its position.
type Entry struct {
	Unit     *Unit
	Position grid.Position
}

// Manifest is the authoritative unit ↔ position table for one combat.
//
// Invariant: every unit appears at most once; no two units share a position.
// KO'd units stay in the manifest and keep occupying their tile.
type Manifest struct {
	order []ID
	units map[ID]*Unit
	pos   map[ID]grid.Position
	at    map[grid.Position]ID
}

// NewManifest returns an empty Manifest.
func NewManifest() *Manifest {
	return &Manifest{
		units: make(map[ID]*Unit),
		pos:   make(map[ID]grid.Position),
		at:    make(map[grid.Position]ID),
	}
}

// Add places u at p.
//
// Precondition: u is non-nil.
// Postcondition: returns an error if u is already present or p is occupied.
func (m *Manifest) Add(u *Unit, p grid.Position) error {
	if u == nil {
		return fmt.Errorf("manifest: cannot add nil unit")
	}
	if _, ok := m.units[u.ID]; ok {
		return fmt.Errorf("manifest: unit %s (%s) already present", u.Name, u.ID)
	}
	if other, ok := m.at[p]; ok {
		return fmt.Errorf("manifest: %s already occupied by %s", p, m.units[other].Name)
	}
	m.order = append(m.order, u.ID)
	m.units[u.ID] = u
	m.pos[u.ID] = p
	m.at[p] = u.ID
	return nil
}

// Move relocates unit id to p.
//
// Postcondition: returns an error if id is absent or p is held by another unit.
func (m *Manifest) Move(id ID, p grid.Position) error {
	from, ok := m.pos[id]
	if !ok {
		return fmt.Errorf("manifest: unit %s not present", id)
	}
	if other, ok := m.at[p]; ok && other != id {
		return fmt.Errorf("manifest: %s already occupied by %s", p, m.units[other].Name)
	}
	delete(m.at, from)
	m.pos[id] = p
	m.at[p] = id
	return nil
}

// Remove deletes unit id. It reports whether the unit was present.
func (m *Manifest) Remove(id ID) bool {
	p, ok := m.pos[id]
	if !ok {
		return false
	}
	delete(m.at, p)
	delete(m.pos, id)
	delete(m.units, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the unit with id.
func (m *Manifest) Get(id ID) (*Unit, bool) {
	u, ok := m.units[id]
	return u, ok
}

// PositionOf returns the position of unit id.
func (m *Manifest) PositionOf(id ID) (grid.Position, bool) {
	p, ok := m.pos[id]
	return p, ok
}

// UnitAt returns the unit standing on p, living or KO'd.
func (m *Manifest) UnitAt(p grid.Position) (*Unit, bool) {
	id, ok := m.at[p]
	if !ok {
		return nil, false
	}
	return m.units[id], true
}

// Occupied reports whether any unit, living or KO'd, stands on p.
func (m *Manifest) Occupied(p grid.Position) bool {
	_, ok := m.at[p]
	return ok
}

// Len returns the number of units in the manifest.
func (m *Manifest) Len() int { return len(m.order) }

// Entries returns every unit with its position in insertion order.
func (m *Manifest) Entries() []Entry {
	out := make([]Entry, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, Entry{Unit: m.units[id], Position: m.pos[id]})
	}
	return out
}

// Living returns the entries whose unit is not KO'd, in insertion order.
func (m *Manifest) Living() []Entry {
	out := make([]Entry, 0, len(m.order))
	for _, id := range m.order {
		if u := m.units[id]; !u.IsKO() {
			out = append(out, Entry{Unit: u, Position: m.pos[id]})
		}
	}
	return out
}

// CountLiving returns the number of living units controlled by c.
func (m *Manifest) CountLiving(c Controller) int {
	n := 0
	for _, e := range m.Living() {
		if e.Unit.Controller == c {
			n++
		}
	}
	return n
}

// Snapshot returns a deep copy: units are cloned so evaluation against the
// copy can never mutate live state.
func (m *Manifest) Snapshot() *Manifest {
	c := NewManifest()
	for _, id := range m.order {
		u := m.units[id].Clone()
		c.order = append(c.order, id)
		c.units[id] = u
		c.pos[id] = m.pos[id]
		c.at[m.pos[id]] = id
	}
	return c
}
