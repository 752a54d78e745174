package ai

import (
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/scripting"
)

// ConditionEvaluator evaluates behaviour condition scripts.
// *scripting.Evaluator satisfies it.
type ConditionEvaluator interface {
	Bool(expr string, vars scripting.Vars) (bool, error)
}

// Engine picks a Decision by walking behaviours in priority order.
//
// Invariant: behaviors is sorted by descending priority, ties in registration order.
type Engine struct {
	behaviors []Behavior
	eval      ConditionEvaluator
	logger    *zap.Logger
}

// NewEngine sorts behaviors once and returns an Engine over them.
//
// Precondition: logger must be non-nil. eval may be nil, in which case any
// behaviour with a condition never fires.
func NewEngine(behaviors []Behavior, eval ConditionEvaluator, logger *zap.Logger) *Engine {
	sorted := append([]Behavior(nil), behaviors...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return &Engine{behaviors: sorted, eval: eval, logger: logger}
}

// Behaviors returns the behaviours in evaluation order.
func (e *Engine) Behaviors() []Behavior {
	return append([]Behavior(nil), e.behaviors...)
}

// Decide returns the Decision of the first behaviour whose condition and guard
// pass and which produces one. A guard that passes followed by a nil decision
// falls through to the next behaviour.
//
// Postcondition: returns nil when no behaviour decides; the unit then does nothing.
// Deterministic for identical contexts.
func (e *Engine) Decide(c *Context) *Decision {
	var vars scripting.Vars
	for _, b := range e.behaviors {
		if cond := b.Condition(); cond != "" {
			if vars == nil {
				vars = c.Vars()
			}
			if !e.conditionHolds(b, cond, vars) {
				continue
			}
		}
		if !b.Guard(c) {
			continue
		}
		if d := b.Decide(c); d != nil {
			e.logger.Debug("ai decision",
				zap.String("unit", c.Self.Name),
				zap.String("behavior", b.Name()),
				zap.String("order", string(d.Order)),
			)
			return d
		}
	}
	return nil
}

// conditionHolds treats script failures as false.
func (e *Engine) conditionHolds(b Behavior, cond string, vars scripting.Vars) bool {
	if e.eval == nil {
		e.logger.Warn("behavior condition without evaluator", zap.String("behavior", b.Name()))
		return false
	}
	ok, err := e.eval.Bool(cond, vars)
	if err != nil {
		e.logger.Warn("behavior condition failed",
			zap.String("behavior", b.Name()),
			zap.String("condition", cond),
			zap.Error(err),
		)
		return false
	}
	return ok
}
