// Package interpreter implements the register-based execution engine
// (spec.md §4.5 "Execution Loop"): a direct-threaded switch over the
// wazeroir instruction IR, operating on a flat per-Call register file
// instead of the operand stack a naive interpreter would use.
package interpreter

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/experimental"
	"github.com/tetratelabs/wazerocore/internal/wasm"
	"github.com/tetratelabs/wazerocore/internal/wasmdebug"
	"github.com/tetratelabs/wazerocore/internal/wasmruntime"
)

// engine is engine-wide interpreter state: the set of modules it has
// compiled (made ready for their functions' lazy per-call translation) and
// the feature set new translations are validated against.
type engine struct {
	enabledFeatures api.CoreFeatures
	compiled        map[*wasm.Module]struct{}
	mux             sync.RWMutex
}

// NewEngine returns an empty interpreter engine accepting enabledFeatures.
func NewEngine(enabledFeatures api.CoreFeatures) *engine {
	return &engine{enabledFeatures: enabledFeatures, compiled: map[*wasm.Module]struct{}{}}
}

// CompiledModuleCount reports how many distinct modules this engine has
// compiled.
func (e *engine) CompiledModuleCount() uint32 {
	e.mux.RLock()
	defer e.mux.RUnlock()
	return uint32(len(e.compiled))
}

// DeleteCompiledModule forgets module, freeing its cache entry.
func (e *engine) DeleteCompiledModule(module *wasm.Module) {
	e.mux.Lock()
	defer e.mux.Unlock()
	delete(e.compiled, module)
}

// CompileModule registers module as known to this engine. It does not
// translate any function body: CodeBody defers that to its first call
// (spec.md §4.4), so compiling a module this engine will never instantiate
// costs nothing beyond this map entry.
func (e *engine) CompileModule(_ context.Context, module *wasm.Module) error {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.compiled[module] = struct{}{}
	return nil
}

// function is a module-bound, possibly-not-yet-translated callable: a
// FunctionInstance plus whichever of Wasm/Host payload it carries.
type function struct {
	source *wasm.FunctionInstance
}

// moduleEngine binds one ModuleInstance's functions (imports-first, the
// same index space as the instance itself) to this engine, implementing
// wasm.ModuleEngine so wasm.ModuleInstance never has to import this
// package.
type moduleEngine struct {
	name                  string
	functions             []*function
	parentEngine          *engine
	importedFunctionCount uint32
}

// NewModuleEngine builds the moduleEngine for a freshly instantiated
// module. instance.Functions is already imports-first; importedFunctionCount
// is the split point. The return type is the wasm.ModuleEngine interface,
// not the concrete type, so callers outside this package never need to name
// an unexported type to hold the result.
func (e *engine) NewModuleEngine(instance *wasm.ModuleInstance, importedFunctionCount uint32) wasm.ModuleEngine {
	me := &moduleEngine{name: instance.Name, parentEngine: e, importedFunctionCount: importedFunctionCount}
	me.functions = make([]*function, len(instance.Functions))
	for i, f := range instance.Functions {
		me.functions[i] = &function{source: f}
	}
	return me
}

// Call implements wasm.ModuleEngine. args are already type-checked and
// encoded per api.ValueType's convention; the returned results are encoded
// the same way.
//
// If a experimental.FunctionListenerFactory is attached to ctx, its
// Before/After are invoked around this call. This only covers the
// entry-point call a caller makes directly: nested wasm-to-wasm or
// call_indirect calls made while running fn are not individually
// intercepted, since the register engine never recurses back through
// moduleEngine.Call for them (see exec.go's run loop).
func (me *moduleEngine) Call(ctx context.Context, funcIdx uint32, args []uint64) (results []uint64, err error) {
	if int(funcIdx) >= len(me.functions) {
		return nil, wasmruntime.NewTrap(wasmruntime.TrapKindInvalidFunctionIndex)
	}
	fn := me.functions[funcIdx]

	var listener experimental.FunctionListener
	if factory, ok := ctx.Value(experimental.FunctionListenerFactoryKey{}).(experimental.FunctionListenerFactory); ok {
		def := fn.source.Definition()
		if listener = factory.NewListener(def); listener != nil {
			ctx = listener.Before(ctx, def, args)
			defer func() { listener.After(ctx, def, err, results) }()
		}
	}

	ce := newCallEngine()
	defer func() {
		if r := recover(); r != nil {
			err = recoveredToError(r, ce)
		}
	}()
	results = ce.call(ctx, me, fn, args)
	return
}

// recoveredToError converts a panic raised by the execution loop (always
// either *wasmruntime.Trap or an error bubbling up from a host function)
// into a returned error, attaching the wasm call stack still held in ce at
// the moment of the panic.
func recoveredToError(r any, ce *callEngine) error {
	cause, ok := r.(error)
	if !ok {
		cause = fmt.Errorf("%v", r)
	}
	eb := wasmdebug.NewErrorBuilder()
	for i := len(ce.frames) - 1; i >= 0; i-- {
		f := ce.frames[i].fn.source
		name := wasmdebug.FuncName(f.Module.Name, f.DebugName, f.Idx)
		eb.AddFrame(name, f.Type.Params, f.Type.Results)
	}
	return eb.FromRecovered(cause)
}
