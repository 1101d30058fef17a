package wazeroir

import "github.com/tetratelabs/wazerocore/api"

// Visitor is the translator's boundary with a Wasm decoder: one method per
// instruction category, taking pre-decoded operands only. A decoder never
// hands the Builder raw bytes or LEB128-encoded integers; it calls the
// matching Visit method once per decoded instruction, in program order.
//
// This is the only way this module accepts Wasm code bodies. No binary or
// text format parser lives in this package or module: per spec.md, decoding
// is out of scope and owned by an external collaborator.
type Visitor interface {
	VisitUnreachable()
	VisitNop()

	VisitBlock(bt BlockType)
	VisitLoop(bt BlockType)
	VisitIf(bt BlockType)
	VisitElse()
	VisitEnd()

	VisitBr(relativeDepth uint32)
	VisitBrIf(relativeDepth uint32)
	VisitBrTable(targetDepths []uint32, defaultDepth uint32)
	VisitReturn()
	// VisitCall and VisitCallIndirect take the callee signature's arity
	// directly: Builder has no module to resolve funcIdx/typeIdx against,
	// so the decoder (which does) hands over numParams/numResults instead.
	VisitCall(funcIdx uint32, numParams, numResults int)
	VisitCallIndirect(typeIdx, tableIdx uint32, numParams, numResults int)

	VisitDrop()
	VisitSelect()

	VisitLocalGet(idx uint32)
	VisitLocalSet(idx uint32)
	VisitLocalTee(idx uint32)
	VisitGlobalGet(idx uint32)
	VisitGlobalSet(idx uint32)

	VisitLoad(op NumericOp, arg MemArg)
	VisitStore(op NumericOp, arg MemArg)
	VisitMemorySize()
	VisitMemoryGrow()
	VisitMemoryCopy()
	VisitMemoryFill()
	VisitMemoryInit(dataIdx uint32)
	VisitDataDrop(dataIdx uint32)

	VisitTableGet(tableIdx uint32)
	VisitTableSet(tableIdx uint32)
	VisitTableSize(tableIdx uint32)
	VisitTableGrow(tableIdx uint32)
	VisitTableFill(tableIdx uint32)
	VisitTableCopy(dstTableIdx, srcTableIdx uint32)
	VisitTableInit(elemIdx, tableIdx uint32)
	VisitElemDrop(elemIdx uint32)

	VisitRefNull(valType api.ValueType)
	VisitRefFunc(funcIdx uint32)
	VisitRefIsNull()

	VisitConstI32(v int32)
	VisitConstI64(v int64)
	VisitConstF32(v float32)
	VisitConstF64(v float64)

	VisitNumeric(op NumericOp)
}

// Op names a decoded instruction for the Expr stand-in below. It mirrors the
// method names of Visitor, minus the "Visit" prefix.
type Op byte

const (
	OpExprUnreachable Op = iota
	OpExprNop
	OpExprBlock
	OpExprLoop
	OpExprIf
	OpExprElse
	OpExprEnd
	OpExprBr
	OpExprBrIf
	OpExprBrTable
	OpExprReturn
	OpExprCall
	OpExprCallIndirect
	OpExprDrop
	OpExprSelect
	OpExprLocalGet
	OpExprLocalSet
	OpExprLocalTee
	OpExprGlobalGet
	OpExprGlobalSet
	OpExprLoad
	OpExprStore
	OpExprMemorySize
	OpExprMemoryGrow
	OpExprMemoryCopy
	OpExprMemoryFill
	OpExprMemoryInit
	OpExprDataDrop
	OpExprTableGet
	OpExprTableSet
	OpExprTableSize
	OpExprTableGrow
	OpExprTableFill
	OpExprTableCopy
	OpExprTableInit
	OpExprElemDrop
	OpExprRefNull
	OpExprRefFunc
	OpExprRefIsNull
	OpExprConstI32
	OpExprConstI64
	OpExprConstF32
	OpExprConstF64
	OpExprNumeric
)

// Expr is a single decoded Wasm instruction: a minimal in-module stand-in
// for whatever real decoder output would otherwise drive a Visitor. It
// exists so tests (and wasm.Code.Body, see internal/wasm) can hold and
// replay instruction sequences without a real binary-format parser in this
// module. A production embedding wires its own decoder directly against
// Visitor instead of constructing Expr values.
type Expr struct {
	Op Op

	Idx, Idx2 uint32 // index operands: func/type/table/local/global/data/elem idx
	I32       int32
	I64       int64
	F32       float32
	F64       float64
	ValType   api.ValueType
	Mem       MemArg
	Numeric   NumericOp
	Block     BlockType
	Targets   []uint32 // VisitBrTable target depths; Idx holds the default depth

	NumParams, NumResults uint32 // VisitCall/VisitCallIndirect callee arity
}

// Walk replays a decoded instruction sequence against a Visitor, in order.
func Walk(exprs []Expr, v Visitor) {
	for _, e := range exprs {
		switch e.Op {
		case OpExprUnreachable:
			v.VisitUnreachable()
		case OpExprNop:
			v.VisitNop()
		case OpExprBlock:
			v.VisitBlock(e.Block)
		case OpExprLoop:
			v.VisitLoop(e.Block)
		case OpExprIf:
			v.VisitIf(e.Block)
		case OpExprElse:
			v.VisitElse()
		case OpExprEnd:
			v.VisitEnd()
		case OpExprBr:
			v.VisitBr(e.Idx)
		case OpExprBrIf:
			v.VisitBrIf(e.Idx)
		case OpExprBrTable:
			v.VisitBrTable(e.Targets, e.Idx)
		case OpExprReturn:
			v.VisitReturn()
		case OpExprCall:
			v.VisitCall(e.Idx, int(e.NumParams), int(e.NumResults))
		case OpExprCallIndirect:
			v.VisitCallIndirect(e.Idx, e.Idx2, int(e.NumParams), int(e.NumResults))
		case OpExprDrop:
			v.VisitDrop()
		case OpExprSelect:
			v.VisitSelect()
		case OpExprLocalGet:
			v.VisitLocalGet(e.Idx)
		case OpExprLocalSet:
			v.VisitLocalSet(e.Idx)
		case OpExprLocalTee:
			v.VisitLocalTee(e.Idx)
		case OpExprGlobalGet:
			v.VisitGlobalGet(e.Idx)
		case OpExprGlobalSet:
			v.VisitGlobalSet(e.Idx)
		case OpExprLoad:
			v.VisitLoad(e.Numeric, e.Mem)
		case OpExprStore:
			v.VisitStore(e.Numeric, e.Mem)
		case OpExprMemorySize:
			v.VisitMemorySize()
		case OpExprMemoryGrow:
			v.VisitMemoryGrow()
		case OpExprMemoryCopy:
			v.VisitMemoryCopy()
		case OpExprMemoryFill:
			v.VisitMemoryFill()
		case OpExprMemoryInit:
			v.VisitMemoryInit(e.Idx)
		case OpExprDataDrop:
			v.VisitDataDrop(e.Idx)
		case OpExprTableGet:
			v.VisitTableGet(e.Idx)
		case OpExprTableSet:
			v.VisitTableSet(e.Idx)
		case OpExprTableSize:
			v.VisitTableSize(e.Idx)
		case OpExprTableGrow:
			v.VisitTableGrow(e.Idx)
		case OpExprTableFill:
			v.VisitTableFill(e.Idx)
		case OpExprTableCopy:
			v.VisitTableCopy(e.Idx, e.Idx2)
		case OpExprTableInit:
			v.VisitTableInit(e.Idx, e.Idx2)
		case OpExprElemDrop:
			v.VisitElemDrop(e.Idx)
		case OpExprRefNull:
			v.VisitRefNull(e.ValType)
		case OpExprRefFunc:
			v.VisitRefFunc(e.Idx)
		case OpExprRefIsNull:
			v.VisitRefIsNull()
		case OpExprConstI32:
			v.VisitConstI32(e.I32)
		case OpExprConstI64:
			v.VisitConstI64(e.I64)
		case OpExprConstF32:
			v.VisitConstF32(e.F32)
		case OpExprConstF64:
			v.VisitConstF64(e.F64)
		case OpExprNumeric:
			v.VisitNumeric(e.Numeric)
		}
	}
}
