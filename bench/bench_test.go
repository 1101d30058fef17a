package bench

import (
	"context"
	"testing"

	wazero "github.com/tetratelabs/wazerocore"
	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/internal/wasm"
	"github.com/tetratelabs/wazerocore/internal/wazeroir"
)

// addModule is the hand-built equivalent of addWasm (testdata.go), used by
// this engine directly since no binary decoder lives in this repository.
func addModule() *wasm.Module {
	return &wasm.Module{
		TypeSection:     []api.FunctionType{{Params: []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, Results: []api.ValueType{api.ValueTypeI32}}},
		FunctionSection: []uint32{0},
		CodeSection: []wasm.Code{{Body: []wazeroir.Expr{
			{Op: wazeroir.OpExprLocalGet, Idx: 0},
			{Op: wazeroir.OpExprLocalGet, Idx: 1},
			{Op: wazeroir.OpExprNumeric, Numeric: wazeroir.NumericI32Add},
			{Op: wazeroir.OpExprEnd},
		}}},
		ExportSection: []wasm.Export{{Name: "add", Type: api.ExternTypeFunc, Index: 0}},
	}
}

// BenchmarkInterpreterAdd measures this engine's call overhead against the
// same add(i32,i32)->i32 function wasmtime/wasmer benchmark against the
// binary-encoded equivalent (see bench_wasmtime_test.go, bench_wasmer_test.go).
func BenchmarkInterpreterAdd(b *testing.B) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	compiled, err := r.CompileModule(ctx, addModule())
	if err != nil {
		b.Fatal(err)
	}
	mod, err := r.Instantiate(ctx, compiled)
	if err != nil {
		b.Fatal(err)
	}
	add := mod.ExportedFunction("add")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := add.Call(ctx, 1, 2); err != nil {
			b.Fatal(err)
		}
	}
}
