// Package wazeroir implements the lazy stack-to-register translator
// (spec.md §4.4) and defines the register-based Instruction IR it produces
// (spec.md §2 "Instruction IR"). A Builder (this package's Visitor
// implementation) is fed one decoded Wasm instruction at a time by an
// external parser; it never decodes raw bytes or LEB128 itself.
package wazeroir

import "github.com/tetratelabs/wazerocore/api"

// Reg is an index into the active frame's register array. It is not a CPU
// register: it addresses StackContext-managed storage.
type Reg uint32

// Kind identifies the shape of an Instruction; most of Instruction's fields
// are opaque and only meaningful in the context of a particular Kind.
type Kind byte

const (
	OpUnreachable Kind = iota
	OpBr
	OpBrIf
	OpBrTable
	OpReturn
	OpCall
	OpCallIndirect
	OpDrop
	OpSelect
	OpMove // register-to-register copy, emitted when a value can't be forwarded in place
	OpConstI32
	OpConstI64
	OpConstF32
	OpConstF64
	OpGlobalGet
	OpGlobalSet
	OpGlobalGetCached // fast path for global index 0, spec.md §4.6
	OpGlobalSetCached
	OpLoad
	OpStore
	OpMemorySize
	OpMemoryGrow
	OpMemoryCopy
	OpMemoryFill
	OpMemoryInit
	OpDataDrop
	OpTableGet
	OpTableSet
	OpTableSize
	OpTableGrow
	OpTableFill
	OpTableCopy
	OpTableInit
	OpElemDrop
	OpRefNull
	OpRefFunc
	OpRefIsNull
	OpNumeric       // arithmetic/comparison/conversion; see Instruction.Numeric
	OpEndOfFunction // terminal marker; the Builder never emits it (a body ends in OpReturn)
)

// NumericOp discriminates the arithmetic, comparison, conversion and
// load/store-width family of instructions so the Visitor interface does not
// need one method per Wasm opcode.
type NumericOp byte

const (
	NumericI32Add NumericOp = iota
	NumericI32Sub
	NumericI32Mul
	NumericI32DivS
	NumericI32DivU
	NumericI32RemS
	NumericI32RemU
	NumericI32And
	NumericI32Or
	NumericI32Xor
	NumericI32Shl
	NumericI32ShrS
	NumericI32ShrU
	NumericI32Rotl
	NumericI32Rotr
	NumericI32Clz
	NumericI32Ctz
	NumericI32Popcnt
	NumericI32Eqz
	NumericI32Eq
	NumericI32Ne
	NumericI32LtS
	NumericI32LtU
	NumericI32GtS
	NumericI32GtU
	NumericI32LeS
	NumericI32LeU
	NumericI32GeS
	NumericI32GeU

	NumericI64Add
	NumericI64Sub
	NumericI64Mul
	NumericI64DivS
	NumericI64DivU
	NumericI64RemS
	NumericI64RemU
	NumericI64And
	NumericI64Or
	NumericI64Xor
	NumericI64Shl
	NumericI64ShrS
	NumericI64ShrU
	NumericI64Rotl
	NumericI64Rotr
	NumericI64Clz
	NumericI64Ctz
	NumericI64Popcnt
	NumericI64Eqz
	NumericI64Eq
	NumericI64Ne
	NumericI64LtS
	NumericI64LtU
	NumericI64GtS
	NumericI64GtU
	NumericI64LeS
	NumericI64LeU
	NumericI64GeS
	NumericI64GeU

	NumericF32Add
	NumericF32Sub
	NumericF32Mul
	NumericF32Div
	NumericF32Min
	NumericF32Max
	NumericF32Copysign
	NumericF32Abs
	NumericF32Neg
	NumericF32Ceil
	NumericF32Floor
	NumericF32Trunc
	NumericF32Nearest
	NumericF32Sqrt
	NumericF32Eq
	NumericF32Ne
	NumericF32Lt
	NumericF32Gt
	NumericF32Le
	NumericF32Ge

	NumericF64Add
	NumericF64Sub
	NumericF64Mul
	NumericF64Div
	NumericF64Min
	NumericF64Max
	NumericF64Copysign
	NumericF64Abs
	NumericF64Neg
	NumericF64Ceil
	NumericF64Floor
	NumericF64Trunc
	NumericF64Nearest
	NumericF64Sqrt
	NumericF64Eq
	NumericF64Ne
	NumericF64Lt
	NumericF64Gt
	NumericF64Le
	NumericF64Ge

	// Conversions.
	NumericI32WrapI64
	NumericI64ExtendI32S
	NumericI64ExtendI32U
	NumericI32TruncF32S
	NumericI32TruncF32U
	NumericI32TruncF64S
	NumericI32TruncF64U
	NumericI64TruncF32S
	NumericI64TruncF32U
	NumericI64TruncF64S
	NumericI64TruncF64U
	NumericI32TruncSatF32S
	NumericI32TruncSatF32U
	NumericI32TruncSatF64S
	NumericI32TruncSatF64U
	NumericI64TruncSatF32S
	NumericI64TruncSatF32U
	NumericI64TruncSatF64S
	NumericI64TruncSatF64U
	NumericF32ConvertI32S
	NumericF32ConvertI32U
	NumericF32ConvertI64S
	NumericF32ConvertI64U
	NumericF64ConvertI32S
	NumericF64ConvertI32U
	NumericF64ConvertI64S
	NumericF64ConvertI64U
	NumericF32DemoteF64
	NumericF64PromoteF32
	NumericI32ReinterpretF32
	NumericI64ReinterpretF64
	NumericF32ReinterpretI32
	NumericF64ReinterpretI64
	NumericI32Extend8S
	NumericI32Extend16S
	NumericI64Extend8S
	NumericI64Extend16S
	NumericI64Extend32S

	// Load/store widths.
	NumericLoadI32
	NumericLoadI64
	NumericLoadF32
	NumericLoadF64
	NumericLoadI32_8S
	NumericLoadI32_8U
	NumericLoadI32_16S
	NumericLoadI32_16U
	NumericLoadI64_8S
	NumericLoadI64_8U
	NumericLoadI64_16S
	NumericLoadI64_16U
	NumericLoadI64_32S
	NumericLoadI64_32U
	NumericStoreI32
	NumericStoreI64
	NumericStoreF32
	NumericStoreF64
	NumericStoreI32_8
	NumericStoreI32_16
	NumericStoreI64_8
	NumericStoreI64_16
	NumericStoreI64_32
)

// MemArg is the decoded operand of a memory instruction.
type MemArg struct {
	Offset uint32
	Align  uint32 // informational only, per spec.md §4.4
}

// BlockType is the decoded operand of block/loop/if: the arity and value
// types flowing in and out of the structured control construct.
type BlockType struct {
	Params, Results []api.ValueType
}

// BrTarget is a resolved branch target: an absolute index into the owning
// InstructionSequence.
type BrTarget struct {
	PC uint32
}

// Instruction is one entry of the translated register IR.
type Instruction struct {
	Kind    Kind
	Numeric NumericOp

	Dst, Src1, Src2 Reg

	I32    int32
	I64    int64
	F32    float32
	F64    float64
	U32    uint32 // local/global/func/table/type index, branch target PC, align
	U32b   uint32 // secondary index, e.g. type idx for call_indirect
	Offset uint32 // memory/table op byte offset

	SPAddend uint32 // call/callIndirect: base register of the argument block in the caller's frame

	BrTable []BrTarget // only for OpBrTable; last entry is the default target
	NumArgs uint32     // call/callIndirect: number of argument registers starting at SPAddend
	Regs    []Reg      // OpReturn: result registers to return; OpCall/OpCallIndirect: registers to receive the callee's results
}

// InstructionSequence is a pointer+length view over a slice of Instruction
// owned by a per-store iseq arena (spec.md §3 "InstructionSequence").
// Copying an InstructionSequence value is cheap and always observes the same
// underlying data, matching the spec's "pointer remains valid" invariant.
type InstructionSequence struct {
	body []Instruction
}

// At returns the instruction at the given program counter.
func (s InstructionSequence) At(pc uint32) *Instruction { return &s.body[pc] }

// Len returns the number of instructions in the sequence.
func (s InstructionSequence) Len() uint32 { return uint32(len(s.body)) }

// IsZero reports whether this is the zero-value (unset) sequence.
func (s InstructionSequence) IsZero() bool { return s.body == nil }

// NewInstructionSequence wraps an arena-owned slice as an InstructionSequence.
// Called only by TypeResolver.AllocInstructions implementations, which own
// the arena and are responsible for body never being mutated or resized
// after this call.
func NewInstructionSequence(body []Instruction) InstructionSequence {
	return InstructionSequence{body: body}
}
