package wasm

import (
	"context"

	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/internal/wasmruntime"
)

// ModuleEngine is the dependency-inverted boundary between a ModuleInstance
// and whatever engine actually runs its functions. It is defined here, not
// in the engine package, so this package never imports an engine
// implementation; the runtime layer assigns ModuleInstance.Engine once the
// engine has compiled the instance's functions, after Instantiate returns.
type ModuleEngine interface {
	Call(ctx context.Context, funcIdx uint32, args []uint64) ([]uint64, error)
}

// ModuleInstance is the set of entities produced by instantiating a Module
// against a Store: its combined (imports-first) function, table, memory and
// global index spaces, and its export table.
type ModuleInstance struct {
	Name   string
	Store  *Store
	Engine ModuleEngine // assigned by the runtime layer after Instantiate returns

	Functions []*FunctionInstance
	Tables    []*TableInstance
	Memories  []*MemoryInstance
	Globals   []*GlobalInstance

	Exports map[string]Export

	elementSegments []elementSegmentState
	dataSegments     []dataSegmentState

	StartFuncIdx *uint32
}

type elementSegmentState struct {
	refs    []Reference
	dropped bool
}

type dataSegmentState struct {
	bytes   []byte
	dropped bool
}

// ElementSegment returns the materialized references of the idx'th element
// segment, or nil and false if it has been dropped or idx is out of range.
func (m *ModuleInstance) ElementSegment(idx uint32) ([]Reference, bool) {
	if int(idx) >= len(m.elementSegments) || m.elementSegments[idx].dropped {
		return nil, false
	}
	return m.elementSegments[idx].refs, true
}

// DropElement marks the idx'th element segment as dropped, per the
// elem.drop instruction.
func (m *ModuleInstance) DropElement(idx uint32) { m.elementSegments[idx].dropped = true }

// DataSegment returns the bytes of the idx'th data segment, or nil and
// false if it has been dropped or idx is out of range.
func (m *ModuleInstance) DataSegment(idx uint32) ([]byte, bool) {
	if int(idx) >= len(m.dataSegments) || m.dataSegments[idx].dropped {
		return nil, false
	}
	return m.dataSegments[idx].bytes, true
}

// DropData marks the idx'th data segment as dropped, per the data.drop
// instruction.
func (m *ModuleInstance) DropData(idx uint32) { m.dataSegments[idx].dropped = true }

// evalConstantExpression evaluates a global initializer or a segment's
// offset expression against the globals and functions already allocated in
// the instance under construction.
func evalConstantExpression(m *ModuleInstance, ce ConstantExpression) uint64 {
	switch ce.Kind {
	case ConstantExpressionI32:
		return api.EncodeI32(ce.I32)
	case ConstantExpressionI64:
		return api.EncodeI64(ce.I64)
	case ConstantExpressionF32:
		return api.EncodeF32(ce.F32)
	case ConstantExpressionF64:
		return api.EncodeF64(ce.F64)
	case ConstantExpressionGlobalGet:
		return m.Globals[ce.Index].Get()
	case ConstantExpressionRefNull:
		return uint64(RefNull)
	case ConstantExpressionRefFunc:
		return uint64(referenceFromFunction(m.Functions[ce.Index]))
	}
	return 0
}

// Instantiate runs the alloc-module algorithm (spec.md §4.2): it resolves
// the module's imports, allocates every entity in import-then-defined
// order, evaluates global initializers and element/data segment offsets,
// applies active segments, and publishes the resulting ModuleInstance under
// name. Module-defined function bodies are not translated here: that is
// deferred to the first call, per CodeBody's lazy compilation.
//
// The start function, if present, is named on the returned instance via
// StartFuncIdx but is not invoked: the caller (wazero.Runtime.Instantiate)
// invokes it once the instance is otherwise fully usable.
func Instantiate(store *Store, module *Module, name string) (*ModuleInstance, error) {
	m := &ModuleInstance{Name: name, Store: store, Exports: map[string]Export{}}

	importedFuncs, importedTables, importedMems, importedGlobals, err := resolveImports(store, module)
	if err != nil {
		return nil, err
	}
	m.Functions = append(m.Functions, importedFuncs...)
	m.Tables = append(m.Tables, importedTables...)
	m.Memories = append(m.Memories, importedMems...)
	m.Globals = append(m.Globals, importedGlobals...)

	importFuncCount := len(importedFuncs)
	for i, typeIdx := range module.FunctionSection {
		ft := module.TypeSection[typeIdx]
		code := module.CodeSection[i]
		fn := store.functions.Add(FunctionInstance{
			Type:      ft,
			TypeID:    FunctionTypeID(store.Intern(ft)),
			Kind:      FunctionKindWasm,
			Wasm:      WasmFunctionEntity{Code: NewCodeBody(ft, code.LocalTypes, code.Body)},
			Module:    m,
			Idx:       uint32(importFuncCount + i),
			DebugName: debugNameOf(module, uint32(importFuncCount+i)),
		})
		m.Functions = append(m.Functions, fn)
	}

	for _, tt := range module.TableSection {
		max := uint32(1 << 32 - 1)
		if tt.Max != nil {
			max = *tt.Max
		}
		m.Tables = append(m.Tables, NewTableInstance(tt.ElemType, tt.Min, max, name, store.limiter))
	}

	for _, mt := range module.MemorySection {
		max := uint32(65536)
		if mt.Max != nil {
			max = *mt.Max
		}
		m.Memories = append(m.Memories, NewMemoryInstance(mt.Min, max, name, store.limiter))
	}

	for _, g := range module.GlobalSection {
		m.Globals = append(m.Globals, NewGlobalInstance(g.Type, evalConstantExpression(m, g.Init)))
	}

	if err := instantiateElements(m, module); err != nil {
		return nil, err
	}
	if err := instantiateData(m, module); err != nil {
		return nil, err
	}

	for _, exp := range module.ExportSection {
		m.Exports[exp.Name] = exp
	}
	m.StartFuncIdx = module.StartSection

	if err := store.registerModule(m); err != nil {
		return nil, err
	}
	return m, nil
}

func debugNameOf(module *Module, funcIdx uint32) string {
	if n, ok := module.FunctionNames[funcIdx]; ok {
		return n
	}
	return ""
}

func resolveImports(store *Store, module *Module) (funcs []*FunctionInstance, tables []*TableInstance, mems []*MemoryInstance, globals []*GlobalInstance, err error) {
	for _, imp := range module.ImportSection {
		dep, ok := store.Module(imp.Module)
		if !ok {
			cause := &UnknownImportError{ModuleName: imp.Module, Name: imp.Name, Type: imp.Type}
			return nil, nil, nil, nil, &wasmruntime.InstantiationError{
				Kind: wasmruntime.InstantiationErrorUnknownImport, Message: cause.Error(), Cause: cause,
			}
		}
		exp, ok := dep.Exports[imp.Name]
		if !ok {
			cause := &UnknownImportError{ModuleName: imp.Module, Name: imp.Name, Type: imp.Type}
			return nil, nil, nil, nil, &wasmruntime.InstantiationError{
				Kind: wasmruntime.InstantiationErrorUnknownImport, Message: cause.Error(), Cause: cause,
			}
		}
		if exp.Type != imp.Type {
			cause := &ImportTypeMismatchError{
				ModuleName: imp.Module, Name: imp.Name,
				Expected: api.ExternTypeName(imp.Type), Actual: api.ExternTypeName(exp.Type),
			}
			return nil, nil, nil, nil, &wasmruntime.InstantiationError{
				Kind: wasmruntime.InstantiationErrorImportTypeMismatch, Message: cause.Error(), Cause: cause,
			}
		}
		switch imp.Type {
		case api.ExternTypeFunc:
			f := dep.Functions[exp.Index]
			want := module.TypeSection[imp.DescFunc]
			if !f.Type.EqualTo(&want) {
				cause := &ImportTypeMismatchError{
					ModuleName: imp.Module, Name: imp.Name,
					Expected: want.String(), Actual: f.Type.String(),
				}
				return nil, nil, nil, nil, &wasmruntime.InstantiationError{
					Kind: wasmruntime.InstantiationErrorImportTypeMismatch, Message: cause.Error(), Cause: cause,
				}
			}
			funcs = append(funcs, f)
		case api.ExternTypeTable:
			tables = append(tables, dep.Tables[exp.Index])
		case api.ExternTypeMemory:
			mems = append(mems, dep.Memories[exp.Index])
		case api.ExternTypeGlobal:
			globals = append(globals, dep.Globals[exp.Index])
		}
	}
	return
}

func instantiateElements(m *ModuleInstance, module *Module) error {
	m.elementSegments = make([]elementSegmentState, len(module.ElementSection))
	for i, seg := range module.ElementSection {
		refs := make([]Reference, len(seg.Init))
		for j, fidx := range seg.Init {
			if fidx == RefNullElement {
				refs[j] = RefNull
			} else {
				refs[j] = referenceFromFunction(m.Functions[fidx])
			}
		}
		m.elementSegments[i] = elementSegmentState{refs: refs, dropped: seg.Declarative}
		if seg.Passive || seg.Declarative {
			continue
		}
		offset := api.DecodeU32(evalConstantExpression(m, seg.Offset))
		table := m.Tables[seg.TableIndex]
		if !table.Init(offset, refs, 0, uint32(len(refs))) {
			return &wasmruntime.InstantiationError{
				Kind:    wasmruntime.InstantiationErrorElementSegmentOutOfBounds,
				Message: "active element segment out of bounds",
			}
		}
	}
	return nil
}

func instantiateData(m *ModuleInstance, module *Module) error {
	m.dataSegments = make([]dataSegmentState, len(module.DataSection))
	for i, seg := range module.DataSection {
		m.dataSegments[i] = dataSegmentState{bytes: seg.Init}
		if seg.Passive {
			continue
		}
		offset := api.DecodeU32(evalConstantExpression(m, seg.Offset))
		mem := m.Memories[seg.MemoryIndex]
		if !mem.Write(nil, offset, seg.Init) {
			return &wasmruntime.InstantiationError{
				Kind:    wasmruntime.InstantiationErrorDataSegmentOutOfBounds,
				Message: "active data segment out of bounds",
			}
		}
	}
	return nil
}
