//go:build amd64 && cgo

package bench

import (
	"testing"

	"github.com/bytecodealliance/wasmtime-go"
)

// BenchmarkWasmtimeAdd runs the same add(i32,i32)->i32 workload as
// BenchmarkInterpreterAdd (bench_test.go) against wasmtime-go, the
// dependency the teacher's go.mod declares "only used in benchmarks".
func BenchmarkWasmtimeAdd(b *testing.B) {
	engine := wasmtime.NewEngine()
	module, err := wasmtime.NewModule(engine, addWasm)
	if err != nil {
		b.Fatal(err)
	}
	store := wasmtime.NewStore(engine)
	linker := wasmtime.NewLinker(engine)
	instance, err := linker.Instantiate(store, module)
	if err != nil {
		b.Fatal(err)
	}
	add := instance.GetFunc(store, "add")
	if add == nil {
		b.Fatal("add is not an exported function")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := add.Call(store, int32(1), int32(2)); err != nil {
			b.Fatal(err)
		}
	}
}
