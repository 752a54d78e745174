package scripting

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/dice"
)

// Vars binds names to values for one evaluation. Supported value types are
// int, float64, bool, string, and nested Vars (exposed as Lua tables).
type Vars map[string]any

// Evaluator compiles and evaluates single-expression Lua formulas.
//
// Evaluator is safe for concurrent use; evaluations are serialised on one VM.
type Evaluator struct {
	mu       sync.Mutex
	L        *lua.LState
	limit    int
	logger   *zap.Logger
	compiled map[string]*lua.LFunction
}

// NewEvaluator creates an Evaluator with its own sandboxed VM.
//
// Precondition: logger must be non-nil; instLimit <= 0 uses DefaultInstructionLimit.
// Postcondition: The caller must call Close when done.
func NewEvaluator(instLimit int, roller *dice.Roller, logger *zap.Logger) *Evaluator {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	L := NewSandboxedState()
	registerHelpers(L, roller)
	return &Evaluator{
		L:        L,
		limit:    instLimit,
		logger:   logger,
		compiled: make(map[string]*lua.LFunction),
	}
}

// Close releases the VM.
func (e *Evaluator) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.L.Close()
}

// Compile checks that expr is a syntactically valid expression. Loaders use it
// to reject broken content before a battle starts.
func (e *Evaluator) Compile(expr string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.compile(expr)
	return err
}

func (e *Evaluator) compile(expr string) (*lua.LFunction, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("scripting: empty expression")
	}
	if fn, ok := e.compiled[expr]; ok {
		return fn, nil
	}
	fn, err := e.L.LoadString("return " + expr)
	if err != nil {
		return nil, fmt.Errorf("scripting: compiling %q: %w", expr, err)
	}
	e.compiled[expr] = fn
	return fn, nil
}

// Number evaluates expr and returns its numeric result.
//
// Postcondition: returns an error for syntax errors, runtime errors, the
// instruction limit, or a non-numeric result.
func (e *Evaluator) Number(expr string, vars Vars) (float64, error) {
	v, err := e.eval(expr, vars)
	if err != nil {
		return 0, err
	}
	n, ok := v.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("scripting: %q yielded %s, want number", expr, v.Type().String())
	}
	return float64(n), nil
}

// Bool evaluates expr with Lua truthiness: nil and false are false, all else true.
func (e *Evaluator) Bool(expr string, vars Vars) (bool, error) {
	v, err := e.eval(expr, vars)
	if err != nil {
		return false, err
	}
	return lua.LVAsBool(v), nil
}

func (e *Evaluator) eval(expr string, vars Vars) (lua.LValue, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn, err := e.compile(expr)
	if err != nil {
		return lua.LNil, err
	}
	fn.Env = e.env(vars)
	var ret lua.LValue = lua.LNil
	err = runLimited(e.L, e.limit, func() error {
		if err := e.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
			return err
		}
		ret = e.L.Get(-1)
		e.L.Pop(1)
		return nil
	})
	if err != nil {
		e.logger.Debug("scripting: evaluation failed", zap.String("expr", expr), zap.Error(err))
		return lua.LNil, fmt.Errorf("scripting: evaluating %q: %w", expr, err)
	}
	return ret, nil
}

// env builds a fresh global table holding vars that falls back to the sandbox globals.
func (e *Evaluator) env(vars Vars) *lua.LTable {
	env := e.toTable(vars)
	mt := e.L.NewTable()
	mt.RawSetString("__index", e.L.Get(lua.GlobalsIndex))
	e.L.SetMetatable(env, mt)
	return env
}

func (e *Evaluator) toTable(vars Vars) *lua.LTable {
	t := e.L.NewTable()
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.RawSetString(k, e.toValue(vars[k]))
	}
	return t
}

func (e *Evaluator) toValue(v any) lua.LValue {
	switch x := v.(type) {
	case int:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case bool:
		return lua.LBool(x)
	case string:
		return lua.LString(x)
	case Vars:
		return e.toTable(x)
	case map[string]any:
		return e.toTable(Vars(x))
	default:
		return lua.LNil
	}
}
