// Package wazero is the embedder-facing API (spec.md §6): compiling an
// already-decoded module, instantiating it against a Runtime, and invoking
// or inspecting its exports. The WebAssembly binary/text format decoder is
// an explicit non-goal (spec.md §1): callers hand this package a
// *wasm.Module built however they like (a hand decoder, a test fixture, a
// HostModuleBuilder) instead of raw bytes.
package wazero

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/internal/engine/interpreter"
	"github.com/tetratelabs/wazerocore/internal/wasm"
)

// Runtime instantiates and manages WebAssembly modules, all sharing one
// Store and so able to import from one another by name.
type Runtime interface {
	// NewHostModuleBuilder starts building a module of embedder-implemented
	// functions exported under moduleName, for import by modules
	// instantiated later against this Runtime.
	NewHostModuleBuilder(moduleName string) HostModuleBuilder

	// CompileModule registers module's types and functions with this
	// Runtime's engine. The returned CompiledModule can be instantiated any
	// number of times, including concurrently.
	CompileModule(ctx context.Context, module *wasm.Module) (CompiledModule, error)

	// InstantiateModule runs compiled's module-linking algorithm (spec.md
	// §4.2) against this Runtime's Store: imports are resolved against
	// already-instantiated modules sharing this Store, and the result is
	// registered under moduleConfig's name (or compiled's own module name
	// if moduleConfig is nil). If the module declares a start function, it
	// is invoked before this returns; a trap there is returned as the
	// error, though the (otherwise fully initialized) Module is still
	// returned alongside it per spec.md §4.2's closing paragraph.
	InstantiateModule(ctx context.Context, compiled CompiledModule, moduleConfig *ModuleConfig) (api.Module, error)

	// Instantiate is InstantiateModule with a nil ModuleConfig.
	Instantiate(ctx context.Context, compiled CompiledModule) (api.Module, error)

	// Module returns the already-instantiated module registered under
	// name, or nil if none is.
	Module(name string) api.Module

	// CloseWithExitCode closes every module still instantiated against
	// this Runtime, as though each received a CloseWithExitCode(exitCode)
	// call, then releases the Runtime's own resources.
	CloseWithExitCode(ctx context.Context, exitCode uint32) error

	api.Closer
}

// compileEngine is the subset of the interpreter engine a Runtime drives.
// Declaring it here (rather than naming interpreter.engine, an unexported
// type) is what lets interpreter.NewEngine's result be held as a runtime
// field despite its concrete type never being nameable outside that
// package.
type compileEngine interface {
	CompileModule(ctx context.Context, module *wasm.Module) error
	NewModuleEngine(instance *wasm.ModuleInstance, importedFunctionCount uint32) wasm.ModuleEngine
}

type runtime struct {
	store  *wasm.Store
	engine compileEngine
}

// NewRuntime returns a Runtime accepting CoreFeaturesV2 with no resource
// limiter. Equivalent to NewRuntimeWithConfig(ctx, NewRuntimeConfig()).
func NewRuntime(ctx context.Context) Runtime {
	return NewRuntimeWithConfig(ctx, NewRuntimeConfig())
}

// NewRuntimeWithConfig returns a Runtime configured by config.
func NewRuntimeWithConfig(ctx context.Context, config *RuntimeConfig) Runtime {
	store := wasm.NewStore(config.enabledFeatures)
	if config.limiter != nil {
		store.SetResourceLimiter(config.limiter)
	}
	return &runtime{store: store, engine: interpreter.NewEngine(config.enabledFeatures)}
}

// CompiledModule is module's decoded representation, made ready for
// repeated instantiation (spec.md §6, "decoded, validated ... module").
type CompiledModule interface {
	// Name is the module name carried on the underlying *wasm.Module,
	// used as InstantiateModule's default registration name.
	Name() string
	api.Closer
}

type compiledModule struct {
	module *wasm.Module
}

func (c *compiledModule) Name() string                { return c.module.ModuleName }
func (c *compiledModule) Close(context.Context) error { return nil }

// CompileModule implements Runtime.CompileModule.
func (r *runtime) CompileModule(ctx context.Context, module *wasm.Module) (CompiledModule, error) {
	if err := validateModule(module); err != nil {
		return nil, err
	}
	if err := r.engine.CompileModule(ctx, module); err != nil {
		return nil, err
	}
	return &compiledModule{module: module}, nil
}

// validateModule checks the structural invariant Instantiate assumes a
// decoder already enforced: every export names an entity that actually
// exists in its index space. There is no decoder in this module (spec.md
// §1), so a hand-built *wasm.Module reaching CompileModule may not have had
// this checked yet.
func validateModule(module *wasm.Module) error {
	var importFunc, importTable, importMem, importGlobal int
	for _, imp := range module.ImportSection {
		switch imp.Type {
		case api.ExternTypeFunc:
			importFunc++
		case api.ExternTypeTable:
			importTable++
		case api.ExternTypeMemory:
			importMem++
		case api.ExternTypeGlobal:
			importGlobal++
		}
	}
	funcCount := len(module.FunctionSection) + importFunc
	tableCount := len(module.TableSection) + importTable
	memCount := len(module.MemorySection) + importMem
	globalCount := len(module.GlobalSection) + importGlobal

	for _, exp := range module.ExportSection {
		var count int
		switch exp.Type {
		case api.ExternTypeFunc:
			count = funcCount
		case api.ExternTypeTable:
			count = tableCount
		case api.ExternTypeMemory:
			count = memCount
		case api.ExternTypeGlobal:
			count = globalCount
		}
		if int(exp.Index) >= count {
			return &wasm.ExportIndexOutOfBoundsError{Kind: api.ExternTypeName(exp.Type), Index: exp.Index, Count: count}
		}
	}
	return nil
}

// Instantiate implements Runtime.Instantiate.
func (r *runtime) Instantiate(ctx context.Context, compiled CompiledModule) (api.Module, error) {
	return r.InstantiateModule(ctx, compiled, nil)
}

// InstantiateModule implements Runtime.InstantiateModule.
func (r *runtime) InstantiateModule(ctx context.Context, compiled CompiledModule, moduleConfig *ModuleConfig) (api.Module, error) {
	switch c := compiled.(type) {
	case *compiledModule:
		name := c.module.ModuleName
		if moduleConfig != nil && moduleConfig.name != "" {
			name = moduleConfig.name
		}

		inst, err := wasm.Instantiate(r.store, c.module, name)
		if err != nil {
			return nil, err
		}
		importedFuncCount := uint32(len(inst.Functions)) - uint32(len(c.module.FunctionSection))
		inst.Engine = r.engine.NewModuleEngine(inst, importedFuncCount)

		m := &moduleInstance{r: r, inst: inst}
		if inst.StartFuncIdx != nil {
			if _, err := inst.Engine.Call(ctxOrBackground(ctx), *inst.StartFuncIdx, nil); err != nil {
				return m, err
			}
		}
		return m, nil

	case *compiledHostModule:
		name := c.moduleName
		if moduleConfig != nil && moduleConfig.name != "" {
			name = moduleConfig.name
		}

		inst, err := wasm.InstantiateHostModule(r.store, name, c.defs)
		if err != nil {
			return nil, err
		}
		inst.Engine = r.engine.NewModuleEngine(inst, 0)
		return &moduleInstance{r: r, inst: inst}, nil

	default:
		return nil, fmt.Errorf("wazero: compiled module not created by this package")
	}
}

// Module implements Runtime.Module.
func (r *runtime) Module(name string) api.Module {
	inst, ok := r.store.Module(name)
	if !ok {
		return nil
	}
	return &moduleInstance{r: r, inst: inst}
}

// Close implements api.Closer.Close.
func (r *runtime) Close(ctx context.Context) error { return r.CloseWithExitCode(ctx, 0) }

// CloseWithExitCode implements Runtime.CloseWithExitCode.
func (r *runtime) CloseWithExitCode(ctx context.Context, exitCode uint32) error {
	for _, inst := range r.store.Modules() {
		m := &moduleInstance{r: r, inst: inst}
		if err := m.CloseWithExitCode(ctx, exitCode); err != nil {
			return err
		}
	}
	return nil
}
