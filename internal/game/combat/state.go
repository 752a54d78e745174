// Package combat resolves tactical combat: movement and attack geometry,
// pathfinding, hit chances, ability execution, reactions, and weapon attacks.
package combat

import (
	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/unit"
)

// Phase tags the current stage of the turn pipeline.
type Phase string

const (
	PhaseDeploy  Phase = "deploy"
	PhaseTick    Phase = "tick"
	PhaseAction  Phase = "action"
	PhaseVictory Phase = "victory"
	PhaseDefeat  Phase = "defeat"
)

// State is the combat state handed through the turn pipeline. It is passed by
// value; the Manifest is the single shared mutable resource and is changed only
// through its own Add/Move/Remove operations.
type State struct {
	Turn     int
	Map      *grid.Map
	Tileset  string
	Phase    Phase
	Manifest *unit.Manifest
	Tick     int
}

// Snapshot returns a copy whose manifest and units are deep-copied, for
// read-only evaluation that must never observe later mutations.
func (s State) Snapshot() State {
	c := s
	if s.Manifest != nil {
		c.Manifest = s.Manifest.Snapshot()
	}
	return c
}

// Allies returns the living units on u's side other than u, in manifest order.
func (s State) Allies(u *unit.Unit) []unit.Entry {
	var out []unit.Entry
	for _, e := range s.Manifest.Living() {
		if e.Unit.ID != u.ID && e.Unit.Controller == u.Controller {
			out = append(out, e)
		}
	}
	return out
}

// Enemies returns the living units opposing u, in manifest order.
func (s State) Enemies(u *unit.Unit) []unit.Entry {
	var out []unit.Entry
	for _, e := range s.Manifest.Living() {
		if e.Unit.Controller.Opposes(u.Controller) {
			out = append(out, e)
		}
	}
	return out
}
