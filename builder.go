package wazero

import (
	"context"
	"fmt"
	"reflect"

	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/internal/wasm"
)

// HostFunctionBuilder defines a host function (in Go), so that a module
// instantiated later against the same Runtime can import and call it.
//
// Here's an example of an addition function:
//
//	hostModuleBuilder.NewFunctionBuilder().
//		WithFunc(func(ctx context.Context, x, y uint32) uint32 {
//			return x + y
//		}).
//		Export("add")
//
// # Memory
//
// All host functions act on the importing api.Module, including any memory
// it exports. A function that declares api.Module as its second parameter
// (after context.Context) can read or write it directly:
//
//	builder.WithFunc(func(ctx context.Context, m api.Module, offset uint32) uint32 {
//		x, _ := m.Memory().ReadUint32Le(ctx, offset)
//		return x
//	})
type HostFunctionBuilder interface {
	// WithGoFunction is an advanced alternative to WithFunc for callers who
	// want to operate directly on the raw value stack instead of paying for
	// a reflect.Call per invocation.
	WithGoFunction(fn api.GoFunction, params, results []api.ValueType) HostFunctionBuilder

	// WithGoModuleFunction is WithGoFunction for a function that also needs
	// access to the calling api.Module.
	WithGoModuleFunction(fn api.GoModuleFunction, params, results []api.ValueType) HostFunctionBuilder

	// WithFunc uses reflection to derive a WebAssembly signature from a Go
	// func's parameter and result types. The first parameter may be
	// context.Context, optionally followed by api.Module; remaining
	// parameters and every result must be one of uint32, int32, uint64,
	// int64, float32 or float64, or uintptr for an externref.
	WithFunc(fn interface{}) HostFunctionBuilder

	// WithName defines the optional module-local name of this function,
	// used in traps and stack traces. This need not match the Export name.
	WithName(name string) HostFunctionBuilder

	// Export exports this function from the enclosing HostModuleBuilder
	// under exportName.
	Export(exportName string) HostModuleBuilder
}

// HostModuleBuilder defines a module of embedder-implemented functions, for
// import by modules instantiated later against the same Runtime.
//
// For example, this defines and instantiates a module named "env" with one
// function:
//
//	env, _ := r.NewHostModuleBuilder("env").
//		NewFunctionBuilder().WithFunc(func() { println("hello!") }).Export("hello").
//		Instantiate(ctx)
//
// If the same module will be instantiated multiple times, compile it once
// and instantiate the result repeatedly:
//
//	compiled, _ := r.NewHostModuleBuilder("env").
//		NewFunctionBuilder().WithFunc(getRandomString).Export("get_random_string").
//		Compile(ctx)
//
//	env1, _ := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("env.1"))
//	env2, _ := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("env.2"))
//
// HostModuleBuilder is mutable: each method returns the same instance for
// chaining. Functions are indexed in the order NewFunctionBuilder was
// called, since some ABIs depend on a stable function index space.
type HostModuleBuilder interface {
	// NewFunctionBuilder begins the definition of a host function.
	NewFunctionBuilder() HostFunctionBuilder

	// Compile returns a CompiledModule that can be instantiated by Runtime,
	// any number of times.
	Compile(context.Context) (CompiledModule, error)

	// Instantiate is a convenience that calls Compile, then
	// Runtime.InstantiateModule.
	Instantiate(context.Context) (api.Module, error)
}

type hostModuleBuilder struct {
	r           *runtime
	moduleName  string
	exportOrder []string
	exports     map[string]wasm.HostFunctionDef
}

// NewHostModuleBuilder implements Runtime.NewHostModuleBuilder.
func (r *runtime) NewHostModuleBuilder(moduleName string) HostModuleBuilder {
	return &hostModuleBuilder{r: r, moduleName: moduleName, exports: map[string]wasm.HostFunctionDef{}}
}

func (b *hostModuleBuilder) NewFunctionBuilder() HostFunctionBuilder {
	return &hostFunctionBuilder{b: b}
}

func (b *hostModuleBuilder) addExport(name string, def wasm.HostFunctionDef) {
	if _, exists := b.exports[name]; !exists {
		b.exportOrder = append(b.exportOrder, name)
	}
	b.exports[name] = def
}

// Compile implements HostModuleBuilder.Compile.
func (b *hostModuleBuilder) Compile(context.Context) (CompiledModule, error) {
	defs := make([]wasm.HostFunctionDef, len(b.exportOrder))
	for i, name := range b.exportOrder {
		defs[i] = b.exports[name]
	}
	return &compiledHostModule{moduleName: b.moduleName, defs: defs}, nil
}

// Instantiate implements HostModuleBuilder.Instantiate.
func (b *hostModuleBuilder) Instantiate(ctx context.Context) (api.Module, error) {
	compiled, err := b.Compile(ctx)
	if err != nil {
		return nil, err
	}
	return b.r.InstantiateModule(ctx, compiled, NewModuleConfig())
}

// compiledHostModule is the CompiledModule produced by HostModuleBuilder.
// Unlike compiledModule, it has no *wasm.Module behind it: instantiation
// builds the ModuleInstance directly from defs, since host functions have
// no CodeSection body for Instantiate's wasm-function path to translate.
type compiledHostModule struct {
	moduleName string
	defs       []wasm.HostFunctionDef
}

func (c *compiledHostModule) Name() string               { return c.moduleName }
func (c *compiledHostModule) Close(context.Context) error { return nil }

type hostFunctionBuilder struct {
	b          *hostModuleBuilder
	def        *wasm.HostFunctionDef
	reflectErr error
	name       string
}

func (h *hostFunctionBuilder) WithGoFunction(fn api.GoFunction, params, results []api.ValueType) HostFunctionBuilder {
	h.def = &wasm.HostFunctionDef{
		Type: api.FunctionType{Params: params, Results: results},
		Func: wasm.HostFunctionEntity{Func: fn},
	}
	return h
}

func (h *hostFunctionBuilder) WithGoModuleFunction(fn api.GoModuleFunction, params, results []api.ValueType) HostFunctionBuilder {
	h.def = &wasm.HostFunctionDef{
		Type: api.FunctionType{Params: params, Results: results},
		Func: wasm.HostFunctionEntity{ModuleFunc: fn, NeedsModule: true},
	}
	return h
}

func (h *hostFunctionBuilder) WithFunc(fn interface{}) HostFunctionBuilder {
	def, err := reflectHostFunc(fn)
	if err != nil {
		h.reflectErr = err
		return h
	}
	h.def = &def
	return h
}

func (h *hostFunctionBuilder) WithName(name string) HostFunctionBuilder {
	h.name = name
	return h
}

func (h *hostFunctionBuilder) Export(exportName string) HostModuleBuilder {
	if h.reflectErr != nil {
		// Compile has no earlier point to surface this: a host module's
		// functions are plain Go values, never validated until Export
		// wires them into the builder. Panicking here matches this
		// package's exported functions not returning an error.
		panic(h.reflectErr)
	}
	def := *h.def
	if h.name != "" {
		def.Func.Name = h.name
	} else {
		def.Func.Name = exportName
	}
	def.ExportName = exportName
	h.b.addExport(exportName, def)
	return h.b
}

// reflectHostFunc derives a wasm.HostFunctionDef from an arbitrary Go func,
// the same way NewCodeBody derives a wasm function's signature from its
// decoded type, except the source here is a reflect.Type instead of a
// binary-format signature. The first parameter may be context.Context,
// optionally followed by api.Module; every remaining parameter and result
// must be a numeric type with a direct WebAssembly value type.
func reflectHostFunc(fn interface{}) (wasm.HostFunctionDef, error) {
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return wasm.HostFunctionDef{}, fmt.Errorf("wazero: not a function: %s", t)
	}

	in := 0
	passCtx, passMod := false, false
	if in < t.NumIn() && t.In(in) == ctxType {
		passCtx = true
		in++
	}
	if in < t.NumIn() && t.In(in) == moduleType {
		passMod = true
		in++
	}

	params := make([]api.ValueType, t.NumIn()-in)
	for i := in; i < t.NumIn(); i++ {
		vt, err := valueTypeOf(t.In(i))
		if err != nil {
			return wasm.HostFunctionDef{}, fmt.Errorf("wazero: param[%d]: %w", i, err)
		}
		params[i-in] = vt
	}
	results := make([]api.ValueType, t.NumOut())
	for i := 0; i < t.NumOut(); i++ {
		vt, err := valueTypeOf(t.Out(i))
		if err != nil {
			return wasm.HostFunctionDef{}, fmt.Errorf("wazero: result[%d]: %w", i, err)
		}
		results[i] = vt
	}

	goFn := api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
		args := make([]reflect.Value, t.NumIn())
		i := 0
		if passCtx {
			args[i] = reflect.ValueOf(ctx)
			i++
		}
		if passMod {
			args[i] = reflect.ValueOf(mod)
			i++
		}
		for p := 0; p < len(params); p++ {
			args[i+p] = decodeValue(params[p], t.In(i+p), stack[p])
		}
		outs := v.Call(args)
		for r, out := range outs {
			stack[r] = encodeValue(results[r], out)
		}
	})

	return wasm.HostFunctionDef{
		Type: api.FunctionType{Params: params, Results: results},
		Func: wasm.HostFunctionEntity{ModuleFunc: goFn, NeedsModule: true},
	}, nil
}

var (
	ctxType    = reflect.TypeOf((*context.Context)(nil)).Elem()
	moduleType = reflect.TypeOf((*api.Module)(nil)).Elem()
)

func valueTypeOf(t reflect.Type) (api.ValueType, error) {
	switch t.Kind() {
	case reflect.Uint32, reflect.Int32:
		return api.ValueTypeI32, nil
	case reflect.Uint64, reflect.Int64:
		return api.ValueTypeI64, nil
	case reflect.Float32:
		return api.ValueTypeF32, nil
	case reflect.Float64:
		return api.ValueTypeF64, nil
	case reflect.Uintptr:
		return api.ValueTypeExternref, nil
	default:
		return 0, fmt.Errorf("unsupported type: %s", t)
	}
}

func decodeValue(vt api.ValueType, t reflect.Type, raw uint64) reflect.Value {
	switch vt {
	case api.ValueTypeI32:
		if t.Kind() == reflect.Int32 {
			return reflect.ValueOf(api.DecodeI32(raw)).Convert(t)
		}
		return reflect.ValueOf(api.DecodeU32(raw)).Convert(t)
	case api.ValueTypeI64:
		if t.Kind() == reflect.Int64 {
			return reflect.ValueOf(int64(raw)).Convert(t)
		}
		return reflect.ValueOf(raw).Convert(t)
	case api.ValueTypeF32:
		return reflect.ValueOf(api.DecodeF32(raw))
	case api.ValueTypeF64:
		return reflect.ValueOf(api.DecodeF64(raw))
	case api.ValueTypeExternref:
		return reflect.ValueOf(uintptr(raw)).Convert(t)
	}
	panic(fmt.Errorf("BUG: unhandled value type %#x", vt))
}

func encodeValue(vt api.ValueType, v reflect.Value) uint64 {
	switch vt {
	case api.ValueTypeI32:
		if v.Kind() == reflect.Int32 {
			return api.EncodeI32(int32(v.Int()))
		}
		return uint64(uint32(v.Uint()))
	case api.ValueTypeI64:
		if v.Kind() == reflect.Int64 {
			return uint64(v.Int())
		}
		return v.Uint()
	case api.ValueTypeF32:
		return api.EncodeF32(float32(v.Float()))
	case api.ValueTypeF64:
		return api.EncodeF64(v.Float())
	case api.ValueTypeExternref:
		return uint64(v.Uint())
	}
	panic(fmt.Errorf("BUG: unhandled value type %#x", vt))
}
