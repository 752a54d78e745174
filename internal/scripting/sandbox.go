// Package scripting provides a sandboxed GopherLua environment for content
// formulas: effect values such as "PPower * 1.5" and behaviour guard conditions.
// It has no dependency on combat packages; callers bind variables per evaluation.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// evaluation when no override is configured.
const DefaultInstructionLimit = 100_000

// countingContext is a context.Context that cancels itself after Done() has
// been called limit times. GopherLua's mainLoopWithContext calls Done() once
// per opcode, making this an exact instruction-count limit.
type countingContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

// Done returns the underlying cancellation channel. Each call decrements the
// remaining counter; when it reaches zero the cancel function fires,
// terminating the Lua VM on the next opcode boundary.
func (c *countingContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

// newCountingContext returns a context that cancels after limit calls to Done().
// Precondition: limit > 0.
func newCountingContext(limit int) (context.Context, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	rem := &atomic.Int64{}
	rem.Store(int64(limit))
	return &countingContext{
		Context:   base,
		cancel:    cancel,
		remaining: rem,
	}, cancel
}

// NewSandboxedState creates a GopherLua LState with:
//   - Only safe stdlib loaded: base, table, string, math
//   - Host-reaching globals removed: dofile, loadfile, load, loadstring,
//     collectgarbage, require, print
//
// The instruction limit is applied per call by runLimited, so one state can
// serve many evaluations.
//
// Postcondition: The caller owns the LState and must call L.Close() when done.
func NewSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require", "print"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// runLimited runs fn with L bound to a fresh context that cancels after limit opcodes.
//
// Precondition: limit > 0.
func runLimited(L *lua.LState, limit int, fn func() error) error {
	ctx, cancel := newCountingContext(limit)
	defer cancel()
	L.SetContext(ctx)
	defer L.RemoveContext()
	return fn()
}
