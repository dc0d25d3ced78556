// Package filter implements the optional Lua trace-narrowing hook (§3
// domain stack). The teacher embeds gopher-lua as its general scripting
// mechanism; we reuse it here for a feature spec.md's distillation left
// no room for: letting a user narrow the trace below the region window
// without recompiling, by supplying a small script.
package filter

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Filter evaluates a user-supplied "filter(vaddr, paddr, size, kind)"
// Lua function. A nil *Filter always allows — the feature is opt-in and
// off by default.
type Filter struct {
	state *lua.LState
	fn    *lua.LFunction
}

// Load compiles the script at path and binds its global "filter"
// function.
func Load(path string) (*Filter, error) {
	state := lua.NewState()

	if err := state.DoFile(path); err != nil {
		state.Close()
		return nil, fmt.Errorf("filter: loading %q: %w", path, err)
	}

	fn, ok := state.GetGlobal("filter").(*lua.LFunction)
	if !ok {
		state.Close()
		return nil, fmt.Errorf("filter: %q does not define a filter(vaddr, paddr, size, kind) function", path)
	}

	return &Filter{state: state, fn: fn}, nil
}

// Allow reports whether the access should still be traced. kind is one
// of "load", "store", "fetch". A scripting error fails open: a broken
// filter must never silence the trace the region window already allowed.
func (f *Filter) Allow(vaddr, paddr uint64, size uint32, kind string) bool {
	if f == nil {
		return true
	}

	err := f.state.CallByParam(lua.P{
		Fn:      f.fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(vaddr), lua.LNumber(paddr), lua.LNumber(size), lua.LString(kind))
	if err != nil {
		return true
	}

	ret := f.state.Get(-1)
	f.state.Pop(1)

	return lua.LVAsBool(ret)
}

// Close releases the Lua VM. Safe to call on a nil *Filter.
func (f *Filter) Close() {
	if f != nil && f.state != nil {
		f.state.Close()
	}
}
