package scripting

import (
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/tactics/internal/game/dice"
)

// registerHelpers installs the formula helper functions as globals:
// roll(expr), floor(x), ceil(x), min(a, b), max(a, b), clamp(x, lo, hi).
//
// Precondition: L must be from NewSandboxedState.
func registerHelpers(L *lua.LState, roller *dice.Roller) {
	L.SetGlobal("roll", L.NewFunction(func(L *lua.LState) int {
		expr := L.CheckString(1)
		if roller == nil {
			L.RaiseError("roll: no dice roller configured")
			return 0
		}
		res, err := roller.RollExpr(expr)
		if err != nil {
			L.RaiseError("roll: %s", err.Error())
			return 0
		}
		L.Push(lua.LNumber(res.Total()))
		return 1
	}))
	unary := func(f func(float64) float64) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			L.Push(lua.LNumber(f(float64(L.CheckNumber(1)))))
			return 1
		})
	}
	L.SetGlobal("floor", unary(math.Floor))
	L.SetGlobal("ceil", unary(math.Ceil))
	L.SetGlobal("min", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(math.Min(float64(L.CheckNumber(1)), float64(L.CheckNumber(2)))))
		return 1
	}))
	L.SetGlobal("max", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(math.Max(float64(L.CheckNumber(1)), float64(L.CheckNumber(2)))))
		return 1
	}))
	L.SetGlobal("clamp", L.NewFunction(func(L *lua.LState) int {
		v, lo, hi := float64(L.CheckNumber(1)), float64(L.CheckNumber(2)), float64(L.CheckNumber(3))
		L.Push(lua.LNumber(math.Max(lo, math.Min(hi, v))))
		return 1
	}))
}
