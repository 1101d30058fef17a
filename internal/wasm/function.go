package wasm

import (
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/internal/wasmdebug"
	"github.com/tetratelabs/wazerocore/internal/wazeroir"
)

// FunctionKind discriminates the two ways a FunctionInstance's code can be
// provided.
type FunctionKind byte

const (
	FunctionKindWasm FunctionKind = iota
	FunctionKindHost
)

// WasmFunctionEntity is the FunctionInstance.Wasm payload for a
// module-defined function: a reference to its (possibly not yet
// translated) CodeBody.
type WasmFunctionEntity struct {
	Code *CodeBody
}

// HostFunctionEntity is the FunctionInstance.Host payload for a function
// implemented by the embedder.
type HostFunctionEntity struct {
	Func        api.GoFunction       // set unless NeedsModule
	ModuleFunc  api.GoModuleFunction // set when NeedsModule
	NeedsModule bool
	Name        string
}

// FunctionInstance is a function with a stable identity: once added to a
// Store's function pool its address never changes, so a Reference built
// from it stays valid for as long as the Store does (spec.md §3 "Entity
// Handle").
type FunctionInstance struct {
	Type   api.FunctionType
	TypeID FunctionTypeID
	Kind   FunctionKind
	Wasm   WasmFunctionEntity
	Host   HostFunctionEntity

	Module    *ModuleInstance // defining instance; nil for a module-less host func
	Idx       uint32          // position in Module's function index space
	DebugName string
}

// codeState is CodeBody's one-shot Uncompiled->Compiled transition.
type codeState int32

const (
	codeStateUncompiled codeState = iota
	codeStateCompiled
)

// CodeBody holds a wasm function's decoded instructions until the first
// call triggers translation into a register InstructionSequence, after
// which the result is cached and every later call reuses it (spec.md
// §4.4 "lazy stack-to-register translation").
type CodeBody struct {
	state atomic.Int32
	mu    sync.Mutex

	funcType   api.FunctionType
	localTypes []api.ValueType
	body       []wazeroir.Expr

	seq        wazeroir.InstructionSequence
	frameWidth uint32
}

// NewCodeBody wraps a function's decoded body for lazy translation.
func NewCodeBody(funcType api.FunctionType, localTypes []api.ValueType, body []wazeroir.Expr) *CodeBody {
	return &CodeBody{funcType: funcType, localTypes: localTypes, body: body}
}

// Compiled reports whether translation has already happened.
func (c *CodeBody) Compiled() bool {
	return codeState(c.state.Load()) == codeStateCompiled
}

// EnsureCompiled returns the translated InstructionSequence and its frame
// width, translating on first use. Concurrent callers racing the first
// call all block on the same translation; none sees a partially-published
// result.
func (c *CodeBody) EnsureCompiled(resolver wazeroir.TypeResolver) (wazeroir.InstructionSequence, uint32) {
	if c.Compiled() {
		return c.seq, c.frameWidth
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Compiled() {
		return c.seq, c.frameWidth
	}
	builder := wazeroir.NewBuilder(resolver, c.funcType, c.localTypes)
	wazeroir.Walk(c.body, builder)
	c.seq, c.frameWidth = builder.Finalize()
	c.state.Store(int32(codeStateCompiled))
	return c.seq, c.frameWidth
}

// referenceTag distinguishes a wasm-defined function from a host function
// within the low bit of a Reference built from a *FunctionInstance,
// avoiding an extra field (or interface box) on every funcref value.
type referenceTag uintptr

const (
	referenceTagWasm referenceTag = 0
	referenceTagHost referenceTag = 1
)

// referenceFromFunction packs f's address and kind into a Reference. The
// referenced FunctionInstance is kept alive by the Store's function pool,
// not by this tagged integer.
func referenceFromFunction(f *FunctionInstance) Reference {
	if f == nil {
		return RefNull
	}
	tag := referenceTagWasm
	if f.Kind == FunctionKindHost {
		tag = referenceTagHost
	}
	addr := uintptr(unsafe.Pointer(f))
	return Reference(addr<<1 | uintptr(tag))
}

// functionFromReference unpacks a Reference built by referenceFromFunction.
func functionFromReference(r Reference) *FunctionInstance {
	if r.IsNull() {
		return nil
	}
	// Wraps addr as a double pointer to dodge checkptr: a direct
	// (*FunctionInstance)(unsafe.Pointer(addr)) conversion of an arbitrary
	// uintptr trips "pointer arithmetic result points to invalid
	// allocation" under the race detector, since addr didn't come from a
	// pointer expression checkptr can follow.
	addr := uintptr(r) >> 1
	wrapped := &addr
	return *(**FunctionInstance)(unsafe.Pointer(wrapped))
}

// FunctionFromReference unpacks a Reference built by ReferenceFromFunction,
// for use outside this package (the call_indirect path in an engine).
func FunctionFromReference(r Reference) *FunctionInstance { return functionFromReference(r) }

// ReferenceFromFunction packs f into a Reference, for use outside this
// package (element segment materialization done by an embedder, tests).
func ReferenceFromFunction(f *FunctionInstance) Reference { return referenceFromFunction(f) }

// Definition adapts f to api.FunctionDefinition, shared by the top-level
// api.Function wrapper and by an engine's FunctionListener invocations.
func (f *FunctionInstance) Definition() api.FunctionDefinition { return functionDefinition{f} }

type functionDefinition struct{ f *FunctionInstance }

func (d functionDefinition) ModuleName() string {
	if d.f.Module != nil {
		return d.f.Module.Name
	}
	return ""
}

func (d functionDefinition) Index() uint32 { return d.f.Idx }
func (d functionDefinition) Name() string  { return d.f.DebugName }

func (d functionDefinition) DebugName() string {
	return wasmdebug.FuncName(d.ModuleName(), d.f.DebugName, d.f.Idx)
}

// Import always reports false: a FunctionInstance keeps the Module it was
// originally defined on even when reached through an import, so whether
// the current lookup path was an import isn't recoverable from it alone.
func (d functionDefinition) Import() (moduleName, name string, isImport bool) { return "", "", false }

func (d functionDefinition) ExportNames() []string {
	if d.f.Module == nil {
		return nil
	}
	var names []string
	for name, exp := range d.f.Module.Exports {
		if exp.Type == api.ExternTypeFunc && exp.Index == d.f.Idx {
			names = append(names, name)
		}
	}
	return names
}

func (d functionDefinition) GoFunc() *reflect.Value      { return nil }
func (d functionDefinition) ParamTypes() []api.ValueType  { return d.f.Type.Params }
func (d functionDefinition) ParamNames() []string         { return nil }
func (d functionDefinition) ResultTypes() []api.ValueType { return d.f.Type.Results }
