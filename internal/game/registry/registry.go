// Package registry provides the id-keyed lookup tables for content definitions
// (abilities, classes, enemies, equipment, tilesets). Registries are explicit
// values passed to the components that need them; there is no process-wide state.
package registry

import (
	"fmt"
	"sort"
)

// Identified is implemented by every registrable definition.
type Identified interface {
	comparable
	Key() string
}

// Registry holds definitions of one kind keyed by ID.
//
// A Registry is not safe for concurrent mutation; it is populated at load time
// and read-only afterwards.
type Registry[T Identified] struct {
	kind string
	defs map[string]T
}

// New returns an empty registry. kind names the definition kind in errors.
func New[T Identified](kind string) *Registry[T] {
	return &Registry[T]{kind: kind, defs: make(map[string]T)}
}

// Register adds def.
//
// Precondition: def.Key() must be non-empty.
// Postcondition: Get(def.Key()) returns def; returns an error on a duplicate ID.
func (r *Registry[T]) Register(def T) error {
	var zero T
	if def == zero {
		return fmt.Errorf("%s registry: definition must not be nil", r.kind)
	}
	id := def.Key()
	if id == "" {
		return fmt.Errorf("%s registry: id must not be empty", r.kind)
	}
	if _, exists := r.defs[id]; exists {
		return fmt.Errorf("%s registry: id %q already registered", r.kind, id)
	}
	r.defs[id] = def
	return nil
}

// Replace swaps the definition registered under def.Key().
//
// Postcondition: returns an error if no definition is registered under that ID.
func (r *Registry[T]) Replace(def T) error {
	id := def.Key()
	if _, exists := r.defs[id]; !exists {
		return fmt.Errorf("%s registry: id %q not registered", r.kind, id)
	}
	r.defs[id] = def
	return nil
}

// Unregister removes id. It reports whether a definition was removed.
func (r *Registry[T]) Unregister(id string) bool {
	if _, exists := r.defs[id]; !exists {
		return false
	}
	delete(r.defs, id)
	return true
}

// Get returns the definition for id. A nil registry holds nothing.
func (r *Registry[T]) Get(id string) (T, bool) {
	if r == nil {
		var zero T
		return zero, false
	}
	d, ok := r.defs[id]
	return d, ok
}

// Has reports whether id is registered.
func (r *Registry[T]) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// All returns every definition sorted by ID.
func (r *Registry[T]) All() []T {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.defs[id])
	}
	return out
}

// Len returns the number of registered definitions.
func (r *Registry[T]) Len() int {
	if r == nil {
		return 0
	}
	return len(r.defs)
}

// Kind returns the definition kind this registry was created for.
func (r *Registry[T]) Kind() string { return r.kind }
