package wazero_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	wazero "github.com/tetratelabs/wazerocore"
	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/internal/wasm"
	"github.com/tetratelabs/wazerocore/internal/wazeroir"
)

// addModule exports add(i32,i32)->i32 and a mutable global seeded to 100,
// exercising function call, export lookup, and global access together.
func addModule(moduleName string) *wasm.Module {
	return &wasm.Module{
		ModuleName:      moduleName,
		TypeSection:     []api.FunctionType{{Params: []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, Results: []api.ValueType{api.ValueTypeI32}}},
		FunctionSection: []uint32{0},
		FunctionNames:   map[uint32]string{0: "add"},
		CodeSection: []wasm.Code{{Body: []wazeroir.Expr{
			{Op: wazeroir.OpExprLocalGet, Idx: 0},
			{Op: wazeroir.OpExprLocalGet, Idx: 1},
			{Op: wazeroir.OpExprNumeric, Numeric: wazeroir.NumericI32Add},
			{Op: wazeroir.OpExprEnd},
		}}},
		MemorySection: []wasm.MemoryType{{Min: 1}},
		GlobalSection: []wasm.GlobalInit{{
			Type: wasm.GlobalType{ValType: api.ValueTypeI32, Mutable: true},
			Init: wasm.ConstantExpression{Kind: wasm.ConstantExpressionI32, I32: 100},
		}},
		ExportSection: []wasm.Export{
			{Name: "add", Type: api.ExternTypeFunc, Index: 0},
			{Name: "memory", Type: api.ExternTypeMemory, Index: 0},
			{Name: "counter", Type: api.ExternTypeGlobal, Index: 0},
		},
	}
}

func TestRuntime_InstantiateAndCall(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	compiled, err := r.CompileModule(ctx, addModule("math"))
	require.NoError(t, err)

	mod, err := r.Instantiate(ctx, compiled)
	require.NoError(t, err)
	require.Equal(t, "math", mod.Name())

	results, err := mod.ExportedFunction("add").Call(ctx, 3, 4)
	require.NoError(t, err)
	require.Equal(t, []uint64{7}, results)

	require.NotNil(t, mod.Memory())
	require.Equal(t, mod.Memory(), mod.ExportedMemory("memory"))

	counter := mod.ExportedGlobal("counter")
	require.Equal(t, uint64(100), counter.Get(ctx))
	mutable, ok := counter.(api.MutableGlobal)
	require.True(t, ok)
	mutable.Set(ctx, 200)
	require.Equal(t, uint64(200), counter.Get(ctx))

	require.Nil(t, mod.ExportedFunction("missing"))
	require.Nil(t, mod.ExportedMemory("missing"))
	require.Nil(t, mod.ExportedGlobal("missing"))
}

func TestRuntime_InstantiateModuleWithName(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	compiled, err := r.CompileModule(ctx, addModule("math"))
	require.NoError(t, err)

	mod, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("math2"))
	require.NoError(t, err)
	require.Equal(t, "math2", mod.Name())
	require.Same(t, mod, r.Module("math2"))
	require.Nil(t, r.Module("math"))
}

func TestRuntime_ModuleClose(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	compiled, err := r.CompileModule(ctx, addModule("math"))
	require.NoError(t, err)
	mod, err := r.Instantiate(ctx, compiled)
	require.NoError(t, err)

	require.NoError(t, mod.Close(ctx))
	require.Nil(t, r.Module("math"))

	// The name is free again for a fresh instantiation.
	mod2, err := r.Instantiate(ctx, compiled)
	require.NoError(t, err)
	require.Equal(t, "math", mod2.Name())
}

func TestRuntime_CloseWithExitCodeClosesEveryModule(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)

	c1, err := r.CompileModule(ctx, addModule("a"))
	require.NoError(t, err)
	_, err = r.Instantiate(ctx, c1)
	require.NoError(t, err)

	c2, err := r.CompileModule(ctx, addModule("b"))
	require.NoError(t, err)
	_, err = r.Instantiate(ctx, c2)
	require.NoError(t, err)

	require.NoError(t, r.CloseWithExitCode(ctx, 0))
	require.Nil(t, r.Module("a"))
	require.Nil(t, r.Module("b"))
}

func TestRuntime_StartFunction(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	startIdx := uint32(1)
	module := &wasm.Module{
		ModuleName:      "starter",
		TypeSection:     []api.FunctionType{{Results: []api.ValueType{api.ValueTypeI32}}, {}},
		FunctionSection: []uint32{0, 1},
		FunctionNames:   map[uint32]string{0: "value", 1: "start"},
		CodeSection: []wasm.Code{
			{Body: []wazeroir.Expr{{Op: wazeroir.OpExprConstI32, I32: 42}, {Op: wazeroir.OpExprEnd}}},
			{Body: []wazeroir.Expr{{Op: wazeroir.OpExprEnd}}},
		},
		StartSection:  &startIdx,
		ExportSection: []wasm.Export{{Name: "value", Type: api.ExternTypeFunc, Index: 0}},
	}

	compiled, err := r.CompileModule(ctx, module)
	require.NoError(t, err)
	mod, err := r.Instantiate(ctx, compiled)
	require.NoError(t, err)

	results, err := mod.ExportedFunction("value").Call(ctx)
	require.NoError(t, err)
	require.Equal(t, []uint64{42}, results)
}

func TestRuntime_CompileModule_InvalidExportIndex(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	module := &wasm.Module{
		ExportSection: []wasm.Export{{Name: "missing", Type: api.ExternTypeFunc, Index: 0}},
	}
	_, err := r.CompileModule(ctx, module)
	require.Error(t, err)
	require.Equal(t, &wasm.ExportIndexOutOfBoundsError{Kind: "func", Index: 0, Count: 0}, err)
}

func TestHostModuleBuilder_GoFunctionAndWasmInterop(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	var observed []uint32
	_, err := r.NewHostModuleBuilder("env").
		NewFunctionBuilder().
		WithFunc(func(x, y uint32) uint32 {
			observed = append(observed, x, y)
			return x + y
		}).
		Export("double_add").
		Instantiate(ctx)
	require.NoError(t, err)

	host := r.Module("env")
	require.NotNil(t, host)

	results, err := host.ExportedFunction("double_add").Call(ctx, 10, 20)
	require.NoError(t, err)
	require.Equal(t, []uint64{30}, results)
	require.Equal(t, []uint32{10, 20}, observed)
}

func TestHostModuleBuilder_WithGoModuleFunction(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	var sawModuleName string
	fn := api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
		sawModuleName = mod.Name()
		stack[0] = stack[0] * 2
	})

	_, err := r.NewHostModuleBuilder("env").
		NewFunctionBuilder().
		WithGoModuleFunction(fn, []api.ValueType{api.ValueTypeI32}, []api.ValueType{api.ValueTypeI32}).
		Export("double").
		Instantiate(ctx)
	require.NoError(t, err)

	results, err := r.Module("env").ExportedFunction("double").Call(ctx, 21)
	require.NoError(t, err)
	require.Equal(t, []uint64{42}, results)
	require.Equal(t, "env", sawModuleName)
}
