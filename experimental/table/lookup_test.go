package table_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	wazero "github.com/tetratelabs/wazerocore"
	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/experimental/table"
	"github.com/tetratelabs/wazerocore/internal/wasm"
	"github.com/tetratelabs/wazerocore/internal/wasmruntime"
	"github.com/tetratelabs/wazerocore/internal/wazeroir"
)

// buildTestModule declares two functions exposed only through a table, one
// returning a constant and one swapping its two i32 params, so
// LookupFunction has something to resolve without a call_indirect.
func buildTestModule() *wasm.Module {
	constFT := api.FunctionType{Results: []api.ValueType{api.ValueTypeI32}}
	swapFT := api.FunctionType{
		Params:  []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
		Results: []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
	}
	max := uint32(100)
	return &wasm.Module{
		TypeSection:     []api.FunctionType{constFT, swapFT},
		FunctionSection: []uint32{0, 1},
		CodeSection: []wasm.Code{
			{Body: []wazeroir.Expr{
				{Op: wazeroir.OpExprConstI32, I32: 1},
				{Op: wazeroir.OpExprEnd},
			}},
			{Body: []wazeroir.Expr{
				{Op: wazeroir.OpExprLocalGet, Idx: 1},
				{Op: wazeroir.OpExprLocalGet, Idx: 0},
				{Op: wazeroir.OpExprEnd},
			}},
		},
		TableSection: []wasm.TableType{{ElemType: api.ValueTypeFuncref, Min: 100, Max: &max}},
		ElementSection: []wasm.ElementSegment{{
			TableIndex: 0,
			Offset:     wasm.ConstantExpression{Kind: wasm.ConstantExpressionI32, I32: 0},
			Init:       []uint32{0, 1},
		}},
	}
}

func TestLookupFunction(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	compiled, err := r.CompileModule(ctx, buildTestModule())
	require.NoError(t, err)
	m, err := r.Instantiate(ctx, compiled)
	require.NoError(t, err)

	i32 := api.ValueTypeI32

	t.Run("constant function", func(t *testing.T) {
		f := table.LookupFunction(m, 0, 0, nil, []api.ValueType{i32})
		results, err := f.Call(ctx)
		require.NoError(t, err)
		require.Equal(t, []uint64{1}, results)
	})

	t.Run("swap function", func(t *testing.T) {
		f := table.LookupFunction(m, 0, 1, []api.ValueType{i32, i32}, []api.ValueType{i32, i32})
		results, err := f.Call(ctx, 100, 200)
		require.NoError(t, err)
		require.Equal(t, []uint64{200, 100}, results)
	})

	t.Run("table index out of range traps", func(t *testing.T) {
		require.PanicsWithValue(t, wasmruntime.NewTrap(wasmruntime.TrapKindOutOfBoundsTableAccess), func() {
			table.LookupFunction(m, 9, 0, nil, []api.ValueType{i32})
		})
	})

	t.Run("table offset out of range traps", func(t *testing.T) {
		require.PanicsWithValue(t, wasmruntime.NewTrap(wasmruntime.TrapKindOutOfBoundsTableAccess), func() {
			table.LookupFunction(m, 0, 2000, nil, []api.ValueType{i32})
		})
	})

	t.Run("uninitialized element traps", func(t *testing.T) {
		require.PanicsWithValue(t, wasmruntime.NewTrap(wasmruntime.TrapKindUninitializedElement), func() {
			table.LookupFunction(m, 0, 50, nil, []api.ValueType{i32})
		})
	})

	t.Run("signature mismatch traps", func(t *testing.T) {
		require.PanicsWithValue(t, wasmruntime.NewTrap(wasmruntime.TrapKindIndirectCallTypeMismatch), func() {
			table.LookupFunction(m, 0, 0, nil, []api.ValueType{api.ValueTypeF32})
		})
	})
}
