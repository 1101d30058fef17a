package wasm

import (
	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/internal/wazeroir"
)

// GlobalType describes the value type and mutability of a global, either
// imported or module-defined.
type GlobalType struct {
	ValType api.ValueType
	Mutable bool
}

// TableType describes a table's element type and size limits.
type TableType struct {
	ElemType api.ValueType // api.ValueTypeFuncref or api.ValueTypeExternref
	Min      uint32
	Max      *uint32
}

// MemoryType describes a memory's size limits, in 64KiB pages.
type MemoryType struct {
	Min uint32
	Max *uint32
}

// ConstantExpressionKind discriminates the seven forms a constant expression
// (used for global initializers and element/data segment offsets) can take.
type ConstantExpressionKind byte

const (
	ConstantExpressionI32 ConstantExpressionKind = iota
	ConstantExpressionI64
	ConstantExpressionF32
	ConstantExpressionF64
	ConstantExpressionGlobalGet
	ConstantExpressionRefNull
	ConstantExpressionRefFunc
)

// ConstantExpression is a side-effect-free initializer evaluated once at
// instantiation time (spec.md §4.2).
type ConstantExpression struct {
	Kind   ConstantExpressionKind
	I32    int32
	I64    int64
	F32    float32
	F64    float64
	Index  uint32 // global or function index, for GlobalGet/RefFunc
}

// Import describes one entry of the import section. Exactly one of the
// Desc* fields is meaningful, selected by Type.
type Import struct {
	Module, Name string
	Type         api.ExternType
	DescFunc     uint32 // type index
	DescTable    TableType
	DescMemory   MemoryType
	DescGlobal   GlobalType
}

// Export describes one entry of the export section.
type Export struct {
	Name  string
	Type  api.ExternType
	Index uint32
}

// GlobalInit pairs a module-defined global's type with its initializer.
type GlobalInit struct {
	Type GlobalType
	Init ConstantExpression
}

// ElementSegment populates a range of a table with function references,
// either actively at instantiation or passively for later table.init use.
type ElementSegment struct {
	TableIndex uint32
	Offset     ConstantExpression
	Passive    bool
	Declarative bool
	Init       []uint32 // function indexes; RefNull entries use ^uint32(0)
}

// RefNullElement marks a null entry within an ElementSegment.Init.
const RefNullElement = ^uint32(0)

// DataSegment populates a range of linear memory, either actively at
// instantiation or passively for later memory.init use.
type DataSegment struct {
	MemoryIndex uint32
	Offset      ConstantExpression
	Passive     bool
	Init        []byte
}

// Code is a function's body as decoded from the binary format: its
// additionally-declared local types and its instruction list. Translation
// into a register InstructionSequence happens lazily, the first time the
// function is called (spec.md §4.4).
type Code struct {
	LocalTypes []api.ValueType
	Body       []wazeroir.Expr
}

// Module is the decoded, not-yet-instantiated representation of a wasm
// binary: every section, indexed the way the binary format indexes it
// (imports first, then module-defined entries, in each index space).
type Module struct {
	TypeSection     []api.FunctionType
	ImportSection   []Import
	FunctionSection []uint32 // type index per module-defined function
	TableSection    []TableType
	MemorySection   []MemoryType
	GlobalSection   []GlobalInit
	ExportSection   []Export
	StartSection    *uint32
	ElementSection  []ElementSegment
	CodeSection     []Code
	DataSection     []DataSegment

	// ModuleName and FunctionNames hold the optional debug names carried in
	// the custom "name" section. A function index absent from FunctionNames
	// has no recorded name.
	ModuleName    string
	FunctionNames map[uint32]string
}

func (m *Module) importCount(t api.ExternType) (n int) {
	for _, i := range m.ImportSection {
		if i.Type == t {
			n++
		}
	}
	return
}

// FunctionTypeOf returns the FunctionType of the funcIdx'th function in the
// module's combined (imports-first) function index space.
func (m *Module) FunctionTypeOf(funcIdx uint32) *api.FunctionType {
	importFuncs := m.importCount(api.ExternTypeFunc)
	if int(funcIdx) < importFuncs {
		i := 0
		for _, imp := range m.ImportSection {
			if imp.Type != api.ExternTypeFunc {
				continue
			}
			if uint32(i) == funcIdx {
				return &m.TypeSection[imp.DescFunc]
			}
			i++
		}
	}
	typeIdx := m.FunctionSection[int(funcIdx)-importFuncs]
	return &m.TypeSection[typeIdx]
}
