package bench

// addWasm is the binary encoding of a module exporting a single function,
// "add", computing the sum of its two i32 params. Kept as a literal byte
// encoding (rather than a file on disk) since no WebAssembly binary
// decoder or assembler lives in this repository: wasmtime-go and
// wasmer-go consume it directly, while the interpreter benchmark in
// bench_test.go builds the equivalent *wasm.Module by hand instead of decoding these
// same bytes.
var addWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic, version
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f, // type section: (i32,i32)->i32
	0x03, 0x02, 0x01, 0x00, // function section: func 0 uses type 0
	0x07, 0x07, 0x01, 0x03, 0x61, 0x64, 0x64, 0x00, 0x00, // export section: "add" -> func 0
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b, // code: local.get 0; local.get 1; i32.add; end
}
