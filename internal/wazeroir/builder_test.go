package wazeroir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wazerocore/api"
)

type stubResolver struct{}

func (stubResolver) Intern(api.FunctionType) uint32 { return 0 }

func (stubResolver) AllocInstructions(body []Instruction) InstructionSequence {
	return NewInstructionSequence(append([]Instruction(nil), body...))
}

func i32i32_i32() api.FunctionType {
	return api.FunctionType{
		Params:  []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
		Results: []api.ValueType{api.ValueTypeI32},
	}
}

func build(ft api.FunctionType, locals []api.ValueType, exprs []Expr) (InstructionSequence, uint32) {
	b := NewBuilder(stubResolver{}, ft, locals)
	Walk(exprs, b)
	return b.Finalize()
}

func TestBuilder_Add(t *testing.T) {
	seq, width := build(i32i32_i32(), nil, []Expr{
		{Op: OpExprLocalGet, Idx: 0},
		{Op: OpExprLocalGet, Idx: 1},
		{Op: OpExprNumeric, Numeric: NumericI32Add},
		{Op: OpExprEnd},
	})
	require.EqualValues(t, 3, width) // 2 param registers + 1 destination register

	require.Equal(t, OpNumeric, seq.At(0).Kind)
	require.Equal(t, NumericI32Add, seq.At(0).Numeric)
	require.Equal(t, Reg(0), seq.At(0).Src1)
	require.Equal(t, Reg(1), seq.At(0).Src2)

	ret := seq.At(1)
	require.Equal(t, OpReturn, ret.Kind)
	require.Equal(t, []Reg{seq.At(0).Dst}, ret.Regs)
}

func TestBuilder_LocalSetAndTee(t *testing.T) {
	ft := api.FunctionType{Params: []api.ValueType{api.ValueTypeI32}, Results: []api.ValueType{api.ValueTypeI32}}
	seq, _ := build(ft, []api.ValueType{api.ValueTypeI32}, []Expr{
		{Op: OpExprLocalGet, Idx: 0},
		{Op: OpExprLocalTee, Idx: 1},
		{Op: OpExprDrop},
		{Op: OpExprLocalGet, Idx: 1},
		{Op: OpExprEnd},
	})
	// LocalTee emits a Move into local 1 without consuming the stack value.
	require.Equal(t, OpMove, seq.At(0).Kind)
	require.Equal(t, Reg(1), seq.At(0).Dst)
	require.Equal(t, Reg(0), seq.At(0).Src1)

	ret := seq.At(1)
	require.Equal(t, OpReturn, ret.Kind)
	require.Equal(t, []Reg{1}, ret.Regs)
}

func TestBuilder_IfElse(t *testing.T) {
	ft := api.FunctionType{Params: []api.ValueType{api.ValueTypeI32}, Results: []api.ValueType{api.ValueTypeI32}}
	seq, _ := build(ft, nil, []Expr{
		{Op: OpExprLocalGet, Idx: 0},
		{Op: OpExprIf, Block: BlockType{Results: []api.ValueType{api.ValueTypeI32}}},
		{Op: OpExprConstI32, I32: 1},
		{Op: OpExprElse},
		{Op: OpExprConstI32, I32: 2},
		{Op: OpExprEnd},
		{Op: OpExprEnd},
	})

	// Instruction 0: i32.eqz on the condition; 1: BrIf to the false branch.
	require.Equal(t, OpNumeric, seq.At(0).Kind)
	require.Equal(t, NumericI32Eqz, seq.At(0).Numeric)
	require.Equal(t, OpBrIf, seq.At(1).Kind)

	// The BrIf target must land after the true arm's const+unconditional br.
	falseTarget := seq.At(1).U32
	require.Equal(t, OpConstI32, seq.At(falseTarget).Kind)
	require.EqualValues(t, 2, seq.At(falseTarget).I32)

	last := seq.Len() - 1
	require.Equal(t, OpReturn, seq.At(last).Kind)
}

func TestBuilder_LoopBranchesBackToStart(t *testing.T) {
	ft := api.FunctionType{}
	seq, _ := build(ft, nil, []Expr{
		{Op: OpExprLoop, Block: BlockType{}},
		{Op: OpExprConstI32, I32: 0},
		{Op: OpExprBrIf, Idx: 0},
		{Op: OpExprEnd},
		{Op: OpExprEnd},
	})
	// The inner BrIf (relative depth 0, the loop) must target PC 0: a loop's
	// label is its start, resolved immediately rather than via endFixups.
	var brIf *Instruction
	for i := uint32(0); i < seq.Len(); i++ {
		if seq.At(i).Kind == OpBrIf {
			brIf = seq.At(i)
			break
		}
	}
	require.NotNil(t, brIf)
	require.EqualValues(t, 0, brIf.U32)
}

func TestBuilder_Call(t *testing.T) {
	ft := api.FunctionType{}
	seq, width := build(ft, nil, []Expr{
		{Op: OpExprConstI32, I32: 10},
		{Op: OpExprConstI32, I32: 20},
		{Op: OpExprCall, Idx: 3, NumParams: 2, NumResults: 1},
		{Op: OpExprDrop},
		{Op: OpExprEnd},
	})

	var call *Instruction
	for i := uint32(0); i < seq.Len(); i++ {
		if seq.At(i).Kind == OpCall {
			call = seq.At(i)
			break
		}
	}
	require.NotNil(t, call)
	require.EqualValues(t, 3, call.U32)
	require.EqualValues(t, 2, call.NumArgs)
	require.Len(t, call.Regs, 1)
	// The two const registers must sit contiguously at call.SPAddend,
	// call.SPAddend+1, wide enough that the frame width accounts for them.
	require.Greater(t, width, call.SPAddend+call.NumArgs)
}

func TestBuilder_CallIndirectCarriesInternedType(t *testing.T) {
	ft := api.FunctionType{}
	seq, _ := build(ft, nil, []Expr{
		{Op: OpExprConstI32, I32: 0}, // table element index
		{Op: OpExprCallIndirect, Idx: 7, Idx2: 1, NumParams: 0, NumResults: 0},
		{Op: OpExprEnd},
	})
	var call *Instruction
	for i := uint32(0); i < seq.Len(); i++ {
		if seq.At(i).Kind == OpCallIndirect {
			call = seq.At(i)
			break
		}
	}
	require.NotNil(t, call)
	require.EqualValues(t, 7, call.U32b) // the declared (interned) type id
	require.EqualValues(t, 1, call.U32)  // table index
}
