package ai

import (
	"fmt"

	"go.uber.org/zap"
)

// Registry indexes Engines by profile ID.
//
// Invariant: each profile ID is registered at most once.
type Registry struct {
	engines  map[string]*Engine
	fallback *Engine
	eval     ConditionEvaluator
	logger   *zap.Logger
}

// NewRegistry returns a Registry holding only the default profile's engine.
//
// Precondition: logger must be non-nil.
func NewRegistry(eval ConditionEvaluator, logger *zap.Logger) *Registry {
	r := &Registry{engines: make(map[string]*Engine), eval: eval, logger: logger}
	fallback, err := r.build(DefaultProfile())
	if err != nil {
		panic(fmt.Sprintf("ai.NewRegistry: default profile: %v", err))
	}
	r.fallback = fallback
	return r
}

// Register builds and stores an Engine for p.
//
// Postcondition: returns error on ID collision, an unknown behaviour type, or
// an invalid behaviour parameter.
func (r *Registry) Register(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, exists := r.engines[p.ID]; exists {
		return fmt.Errorf("ai.Registry: profile %q already registered", p.ID)
	}
	e, err := r.build(p)
	if err != nil {
		return err
	}
	r.engines[p.ID] = e
	return nil
}

func (r *Registry) build(p *Profile) (*Engine, error) {
	behaviors := make([]Behavior, 0, len(p.Behaviors))
	for i, s := range p.Behaviors {
		b, err := NewBehavior(s)
		if err != nil {
			return nil, fmt.Errorf("ai.Registry: profile %q behavior %d: %w", p.ID, i, err)
		}
		behaviors = append(behaviors, b)
	}
	return NewEngine(behaviors, r.eval, r.logger), nil
}

// EngineFor returns the Engine for profileID, or false if not registered.
func (r *Registry) EngineFor(profileID string) (*Engine, bool) {
	e, ok := r.engines[profileID]
	return e, ok
}

// Resolve returns the Engine for profileID, falling back to the default
// profile with a warning when the ID is unknown.
func (r *Registry) Resolve(profileID string) *Engine {
	if profileID == "" {
		return r.fallback
	}
	if e, ok := r.engines[profileID]; ok {
		return e
	}
	r.logger.Warn("unknown ai profile; using default", zap.String("profile", profileID))
	return r.fallback
}
