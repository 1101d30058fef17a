// Package table exposes a narrow, advanced escape hatch for embedders that
// need to resolve a table entry to a callable api.Function themselves,
// bypassing a call_indirect instruction entirely.
package table

import (
	wazero "github.com/tetratelabs/wazerocore"
	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/internal/wasm"
	"github.com/tetratelabs/wazerocore/internal/wasmruntime"
)

// internalModule is implemented by wazero's api.Module, letting this
// package reach the *wasm.ModuleInstance backing it without that internal
// package being part of api.Module's public surface.
type internalModule interface {
	InternalModuleInstance() *wasm.ModuleInstance
}

// LookupFunction resolves the table entry at tableOffset in the tableIndex'th
// table of module to an api.Function, applying the same checks and trap
// semantics as the call_indirect instruction:
// https://www.w3.org/TR/2022/WD-wasm-core-2-20220419/exec/instructions.html#xref-syntax-instructions-syntax-instr-control-mathsf-call-indirect-x-y
//
// This panics with a *wasmruntime.Trap, not an error return, matching
// call_indirect: an out-of-range tableIndex or tableOffset traps with
// TrapKindOutOfBoundsTableAccess, an unset entry traps with
// TrapKindUninitializedElement, and a signature mismatch against
// expectedParamTypes/expectedResultTypes traps with
// TrapKindIndirectCallTypeMismatch.
//
// The returned api.Function is always non-nil if this returns without
// panicking.
func LookupFunction(
	module api.Module, tableIndex, tableOffset uint32,
	expectedParamTypes, expectedResultTypes []api.ValueType,
) api.Function {
	im, ok := module.(internalModule)
	if !ok {
		panic("table: module was not created by wazero.Runtime")
	}
	m := im.InternalModuleInstance()

	if int(tableIndex) >= len(m.Tables) {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindOutOfBoundsTableAccess))
	}
	ref, ok := m.Tables[tableIndex].Get(tableOffset)
	if !ok {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindOutOfBoundsTableAccess))
	}
	if ref.IsNull() {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindUninitializedElement))
	}

	fn := wasm.FunctionFromReference(ref)
	want := api.FunctionType{Params: expectedParamTypes, Results: expectedResultTypes}
	if !fn.Type.EqualTo(&want) {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindIndirectCallTypeMismatch))
	}

	return wazero.WrapFunction(m, fn)
}
