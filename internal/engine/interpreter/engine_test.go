package interpreter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/internal/wasm"
	"github.com/tetratelabs/wazerocore/internal/wasmruntime"
	"github.com/tetratelabs/wazerocore/internal/wazeroir"
)

// instantiate builds and runs module against a fresh Store and wires its
// moduleEngine, the same sequence wazero.Runtime.Instantiate performs minus
// the start-function invocation this package doesn't know about.
func instantiate(t *testing.T, module *wasm.Module, name string) (*wasm.Store, *wasm.ModuleInstance, wasm.ModuleEngine) {
	t.Helper()
	store := wasm.NewStore(api.CoreFeaturesV2)
	inst, err := wasm.Instantiate(store, module, name)
	require.NoError(t, err)
	e := NewEngine(api.CoreFeaturesV2)
	require.NoError(t, e.CompileModule(context.Background(), module))
	me := e.NewModuleEngine(inst, uint32(len(module.ImportSection)))
	inst.Engine = me
	return store, inst, me
}

func i32ft(params, results int) api.FunctionType {
	ft := api.FunctionType{}
	for i := 0; i < params; i++ {
		ft.Params = append(ft.Params, api.ValueTypeI32)
	}
	for i := 0; i < results; i++ {
		ft.Results = append(ft.Results, api.ValueTypeI32)
	}
	return ft
}

func TestModuleEngine_Add(t *testing.T) {
	ft := i32ft(2, 1)
	module := &wasm.Module{
		TypeSection:     []api.FunctionType{ft},
		FunctionSection: []uint32{0},
		CodeSection: []wasm.Code{{
			Body: []wazeroir.Expr{
				{Op: wazeroir.OpExprLocalGet, Idx: 0},
				{Op: wazeroir.OpExprLocalGet, Idx: 1},
				{Op: wazeroir.OpExprNumeric, Numeric: wazeroir.NumericI32Add},
				{Op: wazeroir.OpExprEnd},
			},
		}},
	}
	_, _, me := instantiate(t, module, "m")

	results, err := me.Call(context.Background(), 0, []uint64{api.EncodeI32(40), api.EncodeI32(2)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.EqualValues(t, 42, api.DecodeI32(results[0]))
}

// TestModuleEngine_RecursiveFactorial exercises direct calls across nested
// callFrames: fn 0 is "if n == 0 { 1 } else { n * fn(n-1) }".
func TestModuleEngine_RecursiveFactorial(t *testing.T) {
	ft := i32ft(1, 1)
	module := &wasm.Module{
		TypeSection:     []api.FunctionType{ft},
		FunctionSection: []uint32{0},
		CodeSection: []wasm.Code{{
			Body: []wazeroir.Expr{
				{Op: wazeroir.OpExprLocalGet, Idx: 0},
				{Op: wazeroir.OpExprNumeric, Numeric: wazeroir.NumericI32Eqz},
				{Op: wazeroir.OpExprIf, Block: wazeroir.BlockType{Results: []api.ValueType{api.ValueTypeI32}}},
				{Op: wazeroir.OpExprConstI32, I32: 1},
				{Op: wazeroir.OpExprElse},
				{Op: wazeroir.OpExprLocalGet, Idx: 0},
				{Op: wazeroir.OpExprLocalGet, Idx: 0},
				{Op: wazeroir.OpExprConstI32, I32: 1},
				{Op: wazeroir.OpExprNumeric, Numeric: wazeroir.NumericI32Sub},
				{Op: wazeroir.OpExprCall, Idx: 0, NumParams: 1, NumResults: 1},
				{Op: wazeroir.OpExprNumeric, Numeric: wazeroir.NumericI32Mul},
				{Op: wazeroir.OpExprEnd},
				{Op: wazeroir.OpExprEnd},
			},
		}},
	}
	_, _, me := instantiate(t, module, "m")

	results, err := me.Call(context.Background(), 0, []uint64{api.EncodeI32(5)})
	require.NoError(t, err)
	require.EqualValues(t, 120, api.DecodeI32(results[0]))
}

func TestModuleEngine_MemoryLoadStoreGrow(t *testing.T) {
	// fn: memory.grow(1); i32.store(0, 99); return i32.load(0), memory.size()
	ft := api.FunctionType{Results: []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}}
	module := &wasm.Module{
		TypeSection:     []api.FunctionType{ft},
		FunctionSection: []uint32{0},
		MemorySection:   []wasm.MemoryType{{Min: 1}},
		CodeSection: []wasm.Code{{
			Body: []wazeroir.Expr{
				{Op: wazeroir.OpExprConstI32, I32: 1},
				{Op: wazeroir.OpExprMemoryGrow},
				{Op: wazeroir.OpExprDrop},
				{Op: wazeroir.OpExprConstI32, I32: 0},
				{Op: wazeroir.OpExprConstI32, I32: 99},
				{Op: wazeroir.OpExprStore, Numeric: wazeroir.NumericStoreI32},
				{Op: wazeroir.OpExprConstI32, I32: 0},
				{Op: wazeroir.OpExprLoad, Numeric: wazeroir.NumericLoadI32},
				{Op: wazeroir.OpExprMemorySize},
				{Op: wazeroir.OpExprEnd},
			},
		}},
	}
	_, inst, me := instantiate(t, module, "m")
	require.EqualValues(t, 1, inst.Memories[0].Pages())

	results, err := me.Call(context.Background(), 0, nil)
	require.NoError(t, err)
	require.EqualValues(t, 99, api.DecodeI32(results[0]))
	require.EqualValues(t, 2, api.DecodeI32(results[1]))
	require.EqualValues(t, 2, inst.Memories[0].Pages())
}

// TestModuleEngine_CallIndirectTypeMismatch builds two functions of
// different signatures, an element segment pointing the table at the
// wrong one, and a caller whose call_indirect declares the signature the
// table entry does NOT have.
func TestModuleEngine_CallIndirectTypeMismatch(t *testing.T) {
	wrongFT := i32ft(1, 1) // the table holds a function of this type...
	callerFT := api.FunctionType{Results: []api.ValueType{api.ValueTypeI32}}
	declaredFT := i32ft(2, 1) // ...but the call site declares this one instead

	max := uint32(1)
	module := &wasm.Module{
		TypeSection:     []api.FunctionType{wrongFT, callerFT, declaredFT},
		FunctionSection: []uint32{0, 1},
		TableSection:    []wasm.TableType{{ElemType: api.ValueTypeFuncref, Min: 1, Max: &max}},
		ElementSection: []wasm.ElementSegment{{
			TableIndex: 0,
			Offset:     wasm.ConstantExpression{Kind: wasm.ConstantExpressionI32, I32: 0},
			Init:       []uint32{0},
		}},
		CodeSection: []wasm.Code{
			{Body: []wazeroir.Expr{ // fn 0: wrongFT, i32->i32
				{Op: wazeroir.OpExprLocalGet, Idx: 0},
				{Op: wazeroir.OpExprEnd},
			}},
			{Body: []wazeroir.Expr{ // fn 1 (caller): callerFT, ()->i32
				{Op: wazeroir.OpExprConstI32, I32: 0}, // table element index
				{Op: wazeroir.OpExprCallIndirect, Idx: 2, Idx2: 0, NumParams: 0, NumResults: 1},
				{Op: wazeroir.OpExprEnd},
			}},
		},
	}
	store, _, me := instantiate(t, module, "m")
	// Intern the declared type at the id the caller's call_indirect names,
	// mirroring what a real decoder does before handing Expr.Idx to
	// VisitCallIndirect: declaredFT must be interned under id 2.
	store.Intern(wrongFT)
	store.Intern(callerFT)
	declaredID := store.Intern(declaredFT)
	require.EqualValues(t, 2, declaredID)

	_, err := me.Call(context.Background(), 1, nil)
	require.Error(t, err)
	var trap *wasmruntime.Trap
	require.True(t, errors.As(err, &trap))
	require.Equal(t, wasmruntime.TrapKindIndirectCallTypeMismatch, trap.Kind)
}

func TestModuleEngine_CallStackExhausted(t *testing.T) {
	orig := callStackCeiling
	callStackCeiling = 8
	defer func() { callStackCeiling = orig }()

	ft := api.FunctionType{}
	module := &wasm.Module{
		TypeSection:     []api.FunctionType{ft},
		FunctionSection: []uint32{0},
		CodeSection: []wasm.Code{{
			Body: []wazeroir.Expr{
				{Op: wazeroir.OpExprCall, Idx: 0, NumParams: 0, NumResults: 0},
				{Op: wazeroir.OpExprEnd},
			},
		}},
	}
	_, _, me := instantiate(t, module, "m")

	_, err := me.Call(context.Background(), 0, nil)
	require.Error(t, err)
	var trap *wasmruntime.Trap
	require.True(t, errors.As(err, &trap))
	require.Equal(t, wasmruntime.TrapKindCallStackExhausted, trap.Kind)
}
