package wazero

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/internal/wasm"
)

// moduleInstance adapts a *wasm.ModuleInstance to api.Module, the surface
// an embedder gets back from Runtime.InstantiateModule.
type moduleInstance struct {
	r    *runtime
	inst *wasm.ModuleInstance
}

// String implements fmt.Stringer.
func (m *moduleInstance) String() string { return fmt.Sprintf("Module[%s]", m.inst.Name) }

// Name implements api.Module.Name.
func (m *moduleInstance) Name() string { return m.inst.Name }

// Memory implements api.Module.Memory: the first memory in the instance's
// combined (imports-first) memory index space, or nil if it has none.
func (m *moduleInstance) Memory() api.Memory {
	if len(m.inst.Memories) == 0 {
		return nil
	}
	return m.inst.Memories[0]
}

// ExportedFunction implements api.Module.ExportedFunction.
func (m *moduleInstance) ExportedFunction(name string) api.Function {
	exp, ok := m.inst.Exports[name]
	if !ok || exp.Type != api.ExternTypeFunc {
		return nil
	}
	return &guestFunction{inst: m.inst, fn: m.inst.Functions[exp.Index]}
}

// ExportedMemory implements api.Module.ExportedMemory.
func (m *moduleInstance) ExportedMemory(name string) api.Memory {
	exp, ok := m.inst.Exports[name]
	if !ok || exp.Type != api.ExternTypeMemory {
		return nil
	}
	return m.inst.Memories[exp.Index]
}

// ExportedGlobal implements api.Module.ExportedGlobal.
func (m *moduleInstance) ExportedGlobal(name string) api.Global {
	exp, ok := m.inst.Exports[name]
	if !ok || exp.Type != api.ExternTypeGlobal {
		return nil
	}
	g := m.inst.Globals[exp.Index]
	if g.Type.Mutable {
		return mutableGlobal{g}
	}
	return immutableGlobal{g}
}

// InternalModuleInstance exposes the *wasm.ModuleInstance backing m, for
// advanced callers outside this package (experimental/table) that need to
// resolve a table entry directly. Not part of api.Module.
func (m *moduleInstance) InternalModuleInstance() *wasm.ModuleInstance { return m.inst }

// Close implements api.Closer.Close.
func (m *moduleInstance) Close(ctx context.Context) error { return m.CloseWithExitCode(ctx, 0) }

// CloseWithExitCode implements api.Module.CloseWithExitCode. This engine
// allocates no external resources per module (no open files, no WASI
// preopens), so closing only deregisters the instance's name.
func (m *moduleInstance) CloseWithExitCode(context.Context, uint32) error {
	m.r.store.Deregister(m.inst)
	return nil
}

// guestFunction adapts a *wasm.FunctionInstance reached through a
// ModuleInstance's export table to api.Function.
type guestFunction struct {
	inst *wasm.ModuleInstance
	fn   *wasm.FunctionInstance
}

// WrapFunction adapts fn, reached through inst (e.g. a table entry), to
// api.Function. Exported for experimental/table's LookupFunction, which
// resolves a table entry outside the normal export-name lookup path.
func WrapFunction(inst *wasm.ModuleInstance, fn *wasm.FunctionInstance) api.Function {
	return &guestFunction{inst: inst, fn: fn}
}

// Definition implements api.Function.Definition.
func (f *guestFunction) Definition() api.FunctionDefinition { return f.fn.Definition() }

// Call implements api.Function.Call.
func (f *guestFunction) Call(ctx context.Context, params ...uint64) ([]uint64, error) {
	return f.inst.Engine.Call(ctxOrBackground(ctx), f.fn.Idx, params)
}

// immutableGlobal adapts a *wasm.GlobalInstance to api.Global.
type immutableGlobal struct{ g *wasm.GlobalInstance }

func (g immutableGlobal) String() string             { return fmt.Sprintf("Global(%v)", g.g.Get()) }
func (g immutableGlobal) Type() api.ValueType        { return g.g.Type.ValType }
func (g immutableGlobal) Get(context.Context) uint64 { return g.g.Get() }

// mutableGlobal adapts a mutable *wasm.GlobalInstance to api.MutableGlobal.
type mutableGlobal struct{ g *wasm.GlobalInstance }

func (g mutableGlobal) String() string                  { return fmt.Sprintf("Global(%v)", g.g.Get()) }
func (g mutableGlobal) Type() api.ValueType             { return g.g.Type.ValType }
func (g mutableGlobal) Get(context.Context) uint64      { return g.g.Get() }
func (g mutableGlobal) Set(_ context.Context, v uint64) { g.g.Set(v) }
