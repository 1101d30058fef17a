package wazeroir

import "github.com/tetratelabs/wazerocore/api"

// TypeResolver interns function types and allocates finalized instruction
// sequences, letting Builder hand Finalize's result a stable home without
// importing the package that owns the interning table and iseq arena
// (which would create an import cycle: that package holds an
// InstructionSequence inside its Code type). Builder itself never calls
// Intern: call_indirect's type operand reaches VisitCallIndirect already
// interned and is stored as given.
type TypeResolver interface {
	Intern(ft api.FunctionType) uint32

	// AllocInstructions copies body into the resolver's iseq arena and
	// returns a sequence backed by that stable copy. Implementations must
	// copy body rather than retain the slice itself.
	AllocInstructions(body []Instruction) InstructionSequence
}

type controlFrameKind byte

const (
	frameFunction controlFrameKind = iota
	frameBlock
	frameLoop
	frameIf
)

// controlFrame tracks one level of structured control during translation.
//
// targetRegs are the registers a `br` targeting this frame moves its
// operands into before jumping to labelPC. For a loop, targetRegs are the
// loop's own parameter registers (re-entry consumes new values into the
// same slots the body already reads from) and labelPC is known immediately,
// at VisitLoop. For block/if/function, targetRegs are freshly allocated and
// labelPC is unresolved until VisitEnd, when every branch recorded in
// endFixups is patched to the frame's exit point.
type controlFrame struct {
	kind       controlFrameKind
	blockType  BlockType
	paramRegs  []Reg
	targetRegs []Reg
	labelPC    uint32
	labelKnown bool
	endFixups  []fixup // patched to the frame's exit PC once VisitEnd resolves it

	ifFalseFixup int // index of the invert+BrIf emitted by VisitIf; -1 once patched or n/a
	sawElse      bool

	stackBase int // value stack height at frame entry (includes paramRegs)
}

// fixup records a deferred patch of a branch's target PC once the owning
// frame's exit point is known. tableIdx is -1 for a plain Br/BrIf (patches
// Instruction.U32) or the index within a BrTable's target list otherwise.
type fixup struct {
	instrIdx int
	tableIdx int
}

// Builder translates one function body's decoded instructions into a
// register IR InstructionSequence. It implements Visitor: an external
// decoder calls its Visit methods in program order, once per instruction,
// with operands already decoded.
//
// Builder performs no register reuse optimization: every value that needs a
// register gets a fresh one. This keeps translation a single linear pass
// with no liveness analysis, at the cost of a larger register file per
// frame than an optimizing compiler would produce.
type Builder struct {
	resolver TypeResolver

	numLocals int
	nextReg   Reg

	instrs []Instruction
	frames []controlFrame
	stack  []Reg

	results []api.ValueType
}

// NewBuilder starts translating a function of the given type with the given
// declared locals (in addition to its parameters). Parameter i occupies
// register i; declared local j occupies register len(params)+j.
func NewBuilder(resolver TypeResolver, funcType api.FunctionType, declaredLocals []api.ValueType) *Builder {
	b := &Builder{resolver: resolver}
	b.numLocals = len(funcType.Params) + len(declaredLocals)
	b.nextReg = Reg(b.numLocals)
	b.results = funcType.Results

	params := make([]Reg, len(funcType.Params))
	for i := range params {
		params[i] = Reg(i)
	}
	b.stack = append(b.stack, params...)
	b.frames = append(b.frames, controlFrame{
		kind:      frameFunction,
		blockType: BlockType{Params: funcType.Params, Results: funcType.Results},
		paramRegs: params,
		stackBase: len(b.stack),
	})
	return b
}

func (b *Builder) alloc() Reg {
	r := b.nextReg
	b.nextReg++
	return r
}

func (b *Builder) push(r Reg)   { b.stack = append(b.stack, r) }
func (b *Builder) pushAll(rs []Reg) { b.stack = append(b.stack, rs...) }
func (b *Builder) pop() Reg     { r := b.stack[len(b.stack)-1]; b.stack = b.stack[:len(b.stack)-1]; return r }
func (b *Builder) top() Reg     { return b.stack[len(b.stack)-1] }
func (b *Builder) popN(n int) []Reg {
	regs := append([]Reg{}, b.stack[len(b.stack)-n:]...)
	b.stack = b.stack[:len(b.stack)-n]
	return regs
}

func (b *Builder) emit(i Instruction) int {
	b.instrs = append(b.instrs, i)
	return len(b.instrs) - 1
}

func (b *Builder) curFrame() *controlFrame { return &b.frames[len(b.frames)-1] }

// frameAt returns the frame relativeDepth levels up from the current one;
// 0 is the innermost enclosing frame, matching br's relative depth operand.
func (b *Builder) frameAt(relativeDepth uint32) *controlFrame {
	return &b.frames[len(b.frames)-1-int(relativeDepth)]
}

// moveOperandsTo emits Move instructions copying the top len(dst) stack
// values into dst, popping them, skipping any that are already in place.
func (b *Builder) moveOperandsTo(dst []Reg) {
	src := b.popN(len(dst))
	for i, d := range dst {
		if src[i] == d {
			continue
		}
		b.emit(Instruction{Kind: OpMove, Dst: d, Src1: src[i]})
	}
}

// branchTo emits the operand-forwarding moves and the jump instruction for
// a branch (conditional or not) targeting frame f.
func (b *Builder) branchTo(f *controlFrame, kind Kind, cond Reg) {
	saved := append([]Reg{}, b.stack...)
	b.moveOperandsTo(f.targetRegs)
	instr := Instruction{Kind: kind}
	if kind == OpBrIf {
		instr.Src1 = cond
	}
	idx := b.emit(instr)
	if f.labelKnown {
		b.instrs[idx].U32 = f.labelPC
	} else {
		f.endFixups = append(f.endFixups, fixup{instrIdx: idx, tableIdx: -1})
	}
	// Conditional branches fall through when not taken: restore the stack
	// to its pre-branch state for the straight-line continuation.
	if kind == OpBrIf {
		b.stack = saved
	}
}

func (b *Builder) patchFixups(fixups []fixup, pc uint32) {
	for _, fx := range fixups {
		if fx.tableIdx < 0 {
			b.instrs[fx.instrIdx].U32 = pc
		} else {
			b.instrs[fx.instrIdx].BrTable[fx.tableIdx].PC = pc
		}
	}
}

// VisitUnreachable implements Visitor.
func (b *Builder) VisitUnreachable() { b.emit(Instruction{Kind: OpUnreachable}) }

// VisitNop implements Visitor.
func (b *Builder) VisitNop() {}

// VisitBlock implements Visitor.
func (b *Builder) VisitBlock(bt BlockType) {
	params := b.popN(len(bt.Params))
	b.stack = append(b.stack, params...)
	target := make([]Reg, len(bt.Results))
	for i := range target {
		target[i] = b.alloc()
	}
	b.frames = append(b.frames, controlFrame{
		kind:       frameBlock,
		blockType:  bt,
		paramRegs:  params,
		targetRegs: target,
		stackBase:  len(b.stack),
	})
}

// VisitLoop implements Visitor.
func (b *Builder) VisitLoop(bt BlockType) {
	params := b.popN(len(bt.Params))
	b.stack = append(b.stack, params...)
	b.frames = append(b.frames, controlFrame{
		kind:       frameLoop,
		blockType:  bt,
		paramRegs:  params,
		targetRegs: params,
		labelPC:    uint32(len(b.instrs)),
		labelKnown: true,
		stackBase:  len(b.stack),
	})
}

// VisitIf implements Visitor.
func (b *Builder) VisitIf(bt BlockType) {
	cond := b.pop()
	params := b.popN(len(bt.Params))
	b.stack = append(b.stack, params...)

	inv := b.alloc()
	b.emit(Instruction{Kind: OpNumeric, Numeric: NumericI32Eqz, Src1: cond, Dst: inv})
	falseFixup := b.emit(Instruction{Kind: OpBrIf, Src1: inv})

	target := make([]Reg, len(bt.Results))
	for i := range target {
		target[i] = b.alloc()
	}
	b.frames = append(b.frames, controlFrame{
		kind:         frameIf,
		blockType:    bt,
		paramRegs:    params,
		targetRegs:   target,
		stackBase:    len(b.stack),
		ifFalseFixup: falseFixup,
	})
}

// VisitElse implements Visitor.
func (b *Builder) VisitElse() {
	f := b.curFrame()
	b.moveOperandsTo(f.targetRegs)
	endBr := b.emit(Instruction{Kind: OpBr})
	f.endFixups = append(f.endFixups, fixup{instrIdx: endBr, tableIdx: -1})

	b.instrs[f.ifFalseFixup].U32 = uint32(len(b.instrs))
	f.ifFalseFixup = -1
	f.sawElse = true

	b.stack = b.stack[:f.stackBase]
	b.stack = append(b.stack, f.paramRegs...)
}

// VisitEnd implements Visitor.
func (b *Builder) VisitEnd() {
	f := b.curFrame()
	switch f.kind {
	case frameLoop:
		// br targeting a loop always jumps to its start (targetRegs ==
		// paramRegs); falling off the end needs no register movement, the
		// loop's result values are already wherever the body left them.
	case frameIf:
		if f.ifFalseFixup >= 0 {
			// No explicit else: the true path must skip synthesized
			// identity code that feeds the false path's values forward.
			b.moveOperandsTo(f.targetRegs)
			skip := b.emit(Instruction{Kind: OpBr})
			f.endFixups = append(f.endFixups, fixup{instrIdx: skip, tableIdx: -1})

			b.instrs[f.ifFalseFixup].U32 = uint32(len(b.instrs))
			b.stack = b.stack[:f.stackBase]
			b.stack = append(b.stack, f.paramRegs...)
			b.moveOperandsTo(f.targetRegs)
		} else {
			b.moveOperandsTo(f.targetRegs)
		}
		b.patchFixups(f.endFixups, uint32(len(b.instrs)))
		b.stack = b.stack[:f.stackBase-len(f.paramRegs)]
		b.stack = append(b.stack, f.targetRegs...)
	case frameBlock:
		b.moveOperandsTo(f.targetRegs)
		b.patchFixups(f.endFixups, uint32(len(b.instrs)))
		b.stack = b.stack[:f.stackBase-len(f.paramRegs)]
		b.stack = append(b.stack, f.targetRegs...)
	case frameFunction:
		b.patchFixups(f.endFixups, uint32(len(b.instrs)))
		results := b.popN(len(b.results))
		b.emit(Instruction{Kind: OpReturn, Regs: results})
	}
	b.frames = b.frames[:len(b.frames)-1]
}

// VisitBr implements Visitor.
func (b *Builder) VisitBr(relativeDepth uint32) {
	b.branchTo(b.frameAt(relativeDepth), OpBr, 0)
}

// VisitBrIf implements Visitor.
func (b *Builder) VisitBrIf(relativeDepth uint32) {
	cond := b.pop()
	b.branchTo(b.frameAt(relativeDepth), OpBrIf, cond)
}

// VisitBrTable implements Visitor.
func (b *Builder) VisitBrTable(targetDepths []uint32, defaultDepth uint32) {
	idxReg := b.pop()
	// br_table forwards the same operands to every arm; all arms must share
	// the same result arity by validation, so forward against the default.
	def := b.frameAt(defaultDepth)
	saved := append([]Reg{}, b.stack...)
	b.moveOperandsTo(def.targetRegs)

	targets := make([]BrTarget, 0, len(targetDepths)+1)
	for _, d := range targetDepths {
		f := b.frameAt(d)
		if f.labelKnown {
			targets = append(targets, BrTarget{PC: f.labelPC})
		} else {
			targets = append(targets, BrTarget{})
		}
	}
	if def.labelKnown {
		targets = append(targets, BrTarget{PC: def.labelPC})
	} else {
		targets = append(targets, BrTarget{})
	}

	idx := b.emit(Instruction{Kind: OpBrTable, Src1: idxReg, BrTable: targets})
	for i, d := range targetDepths {
		if f := b.frameAt(d); !f.labelKnown {
			f.endFixups = append(f.endFixups, fixup{instrIdx: idx, tableIdx: i})
		}
	}
	if !def.labelKnown {
		def.endFixups = append(def.endFixups, fixup{instrIdx: idx, tableIdx: len(targetDepths)})
	}
	b.stack = saved
}

// VisitReturn implements Visitor.
func (b *Builder) VisitReturn() {
	results := b.popN(len(b.results))
	b.emit(Instruction{Kind: OpReturn, Regs: results})
}

// argsBase reserves a contiguous block of numParams fresh registers
// starting at the function's current register high-water mark, moves the
// top numParams stack values into it (skipping any already in place), and
// returns the block's base register. A callee's own frame starts its
// parameters at register 0, so SPAddend/NumArgs on the resulting Call
// instruction tell the engine where in the caller's frame to read the
// arguments it must copy into the new callee frame.
func (b *Builder) argsBase(numParams int) Reg {
	args := b.popN(numParams)
	base := b.nextReg
	for range args {
		b.alloc()
	}
	for i, src := range args {
		dst := base + Reg(i)
		if src != dst {
			b.emit(Instruction{Kind: OpMove, Dst: dst, Src1: src})
		}
	}
	return base
}

// VisitCall implements Visitor.
func (b *Builder) VisitCall(funcIdx uint32, numParams, numResults int) {
	base := b.argsBase(numParams)
	results := make([]Reg, numResults)
	for i := range results {
		results[i] = b.alloc()
	}
	b.emit(Instruction{Kind: OpCall, U32: funcIdx, SPAddend: uint32(base), NumArgs: uint32(numParams), Regs: results})
	b.pushAll(results)
}

// VisitCallIndirect implements Visitor.
func (b *Builder) VisitCallIndirect(typeIdx, tableIdx uint32, numParams, numResults int) {
	elemIdx := b.pop()
	base := b.argsBase(numParams)
	results := make([]Reg, numResults)
	for i := range results {
		results[i] = b.alloc()
	}
	b.emit(Instruction{
		Kind: OpCallIndirect, Src1: elemIdx, U32: tableIdx, U32b: typeIdx,
		SPAddend: uint32(base), NumArgs: uint32(numParams), Regs: results,
	})
	b.pushAll(results)
}

// VisitDrop implements Visitor.
func (b *Builder) VisitDrop() { b.pop() }

// VisitSelect implements Visitor.
func (b *Builder) VisitSelect() {
	cond := b.pop()
	val2 := b.pop()
	val1 := b.pop()
	dst := b.alloc()
	// U32 carries the condition register; Select only has two value slots
	// (Src1/Src2) plus Dst in the shared Instruction layout.
	b.emit(Instruction{Kind: OpSelect, Dst: dst, Src1: val1, Src2: val2, U32: uint32(cond)})
	b.push(dst)
}

// VisitLocalGet implements Visitor.
func (b *Builder) VisitLocalGet(idx uint32) { b.push(Reg(idx)) }

// VisitLocalSet implements Visitor.
func (b *Builder) VisitLocalSet(idx uint32) {
	src := b.pop()
	b.emit(Instruction{Kind: OpMove, Dst: Reg(idx), Src1: src})
}

// VisitLocalTee implements Visitor.
func (b *Builder) VisitLocalTee(idx uint32) {
	src := b.top()
	b.emit(Instruction{Kind: OpMove, Dst: Reg(idx), Src1: src})
}

// VisitGlobalGet implements Visitor.
func (b *Builder) VisitGlobalGet(idx uint32) {
	dst := b.alloc()
	kind := OpGlobalGet
	if idx == 0 {
		kind = OpGlobalGetCached
	}
	b.emit(Instruction{Kind: kind, Dst: dst, U32: idx})
	b.push(dst)
}

// VisitGlobalSet implements Visitor.
func (b *Builder) VisitGlobalSet(idx uint32) {
	src := b.pop()
	kind := OpGlobalSet
	if idx == 0 {
		kind = OpGlobalSetCached
	}
	b.emit(Instruction{Kind: kind, Src1: src, U32: idx})
}

// VisitLoad implements Visitor.
func (b *Builder) VisitLoad(op NumericOp, arg MemArg) {
	addr := b.pop()
	dst := b.alloc()
	b.emit(Instruction{Kind: OpLoad, Numeric: op, Src1: addr, Dst: dst, Offset: arg.Offset, U32: arg.Align})
	b.push(dst)
}

// VisitStore implements Visitor.
func (b *Builder) VisitStore(op NumericOp, arg MemArg) {
	val := b.pop()
	addr := b.pop()
	b.emit(Instruction{Kind: OpStore, Numeric: op, Src1: addr, Src2: val, Offset: arg.Offset, U32: arg.Align})
}

// VisitMemorySize implements Visitor.
func (b *Builder) VisitMemorySize() {
	dst := b.alloc()
	b.emit(Instruction{Kind: OpMemorySize, Dst: dst})
	b.push(dst)
}

// VisitMemoryGrow implements Visitor.
func (b *Builder) VisitMemoryGrow() {
	delta := b.pop()
	dst := b.alloc()
	b.emit(Instruction{Kind: OpMemoryGrow, Src1: delta, Dst: dst})
	b.push(dst)
}

// VisitMemoryCopy implements Visitor.
func (b *Builder) VisitMemoryCopy() {
	n := b.pop()
	src := b.pop()
	dst := b.pop()
	b.emit(Instruction{Kind: OpMemoryCopy, Dst: dst, Src1: src, Src2: n})
}

// VisitMemoryFill implements Visitor.
func (b *Builder) VisitMemoryFill() {
	n := b.pop()
	val := b.pop()
	dst := b.pop()
	b.emit(Instruction{Kind: OpMemoryFill, Dst: dst, Src1: val, Src2: n})
}

// VisitMemoryInit implements Visitor.
func (b *Builder) VisitMemoryInit(dataIdx uint32) {
	n := b.pop()
	src := b.pop()
	dst := b.pop()
	b.emit(Instruction{Kind: OpMemoryInit, Dst: dst, Src1: src, Src2: n, U32: dataIdx})
}

// VisitDataDrop implements Visitor.
func (b *Builder) VisitDataDrop(dataIdx uint32) {
	b.emit(Instruction{Kind: OpDataDrop, U32: dataIdx})
}

// VisitTableGet implements Visitor.
func (b *Builder) VisitTableGet(tableIdx uint32) {
	idx := b.pop()
	dst := b.alloc()
	b.emit(Instruction{Kind: OpTableGet, Src1: idx, Dst: dst, U32: tableIdx})
	b.push(dst)
}

// VisitTableSet implements Visitor.
func (b *Builder) VisitTableSet(tableIdx uint32) {
	val := b.pop()
	idx := b.pop()
	b.emit(Instruction{Kind: OpTableSet, Src1: idx, Src2: val, U32: tableIdx})
}

// VisitTableSize implements Visitor.
func (b *Builder) VisitTableSize(tableIdx uint32) {
	dst := b.alloc()
	b.emit(Instruction{Kind: OpTableSize, Dst: dst, U32: tableIdx})
	b.push(dst)
}

// VisitTableGrow implements Visitor.
func (b *Builder) VisitTableGrow(tableIdx uint32) {
	delta := b.pop()
	val := b.pop()
	dst := b.alloc()
	b.emit(Instruction{Kind: OpTableGrow, Src1: val, Src2: delta, Dst: dst, U32: tableIdx})
	b.push(dst)
}

// VisitTableFill implements Visitor.
func (b *Builder) VisitTableFill(tableIdx uint32) {
	n := b.pop()
	val := b.pop()
	dst := b.pop()
	b.emit(Instruction{Kind: OpTableFill, Dst: dst, Src1: val, Src2: n, U32: tableIdx})
}

// VisitTableCopy implements Visitor.
func (b *Builder) VisitTableCopy(dstTableIdx, srcTableIdx uint32) {
	n := b.pop()
	src := b.pop()
	dst := b.pop()
	b.emit(Instruction{Kind: OpTableCopy, Dst: dst, Src1: src, Src2: n, U32: dstTableIdx, U32b: srcTableIdx})
}

// VisitTableInit implements Visitor.
func (b *Builder) VisitTableInit(elemIdx, tableIdx uint32) {
	n := b.pop()
	src := b.pop()
	dst := b.pop()
	b.emit(Instruction{Kind: OpTableInit, Dst: dst, Src1: src, Src2: n, U32: tableIdx, U32b: elemIdx})
}

// VisitElemDrop implements Visitor.
func (b *Builder) VisitElemDrop(elemIdx uint32) {
	b.emit(Instruction{Kind: OpElemDrop, U32: elemIdx})
}

// VisitRefNull implements Visitor.
func (b *Builder) VisitRefNull(valType api.ValueType) {
	dst := b.alloc()
	b.emit(Instruction{Kind: OpRefNull, Dst: dst})
	b.push(dst)
}

// VisitRefFunc implements Visitor.
func (b *Builder) VisitRefFunc(funcIdx uint32) {
	dst := b.alloc()
	b.emit(Instruction{Kind: OpRefFunc, Dst: dst, U32: funcIdx})
	b.push(dst)
}

// VisitRefIsNull implements Visitor.
func (b *Builder) VisitRefIsNull() {
	src := b.pop()
	dst := b.alloc()
	b.emit(Instruction{Kind: OpRefIsNull, Src1: src, Dst: dst})
	b.push(dst)
}

// VisitConstI32 implements Visitor.
func (b *Builder) VisitConstI32(v int32) {
	dst := b.alloc()
	b.emit(Instruction{Kind: OpConstI32, Dst: dst, I32: v})
	b.push(dst)
}

// VisitConstI64 implements Visitor.
func (b *Builder) VisitConstI64(v int64) {
	dst := b.alloc()
	b.emit(Instruction{Kind: OpConstI64, Dst: dst, I64: v})
	b.push(dst)
}

// VisitConstF32 implements Visitor.
func (b *Builder) VisitConstF32(v float32) {
	dst := b.alloc()
	b.emit(Instruction{Kind: OpConstF32, Dst: dst, F32: v})
	b.push(dst)
}

// VisitConstF64 implements Visitor.
func (b *Builder) VisitConstF64(v float64) {
	dst := b.alloc()
	b.emit(Instruction{Kind: OpConstF64, Dst: dst, F64: v})
	b.push(dst)
}

var unaryNumericOps = map[NumericOp]bool{
	NumericI32Clz: true, NumericI32Ctz: true, NumericI32Popcnt: true, NumericI32Eqz: true,
	NumericI64Clz: true, NumericI64Ctz: true, NumericI64Popcnt: true, NumericI64Eqz: true,
	NumericF32Abs: true, NumericF32Neg: true, NumericF32Ceil: true, NumericF32Floor: true,
	NumericF32Trunc: true, NumericF32Nearest: true, NumericF32Sqrt: true,
	NumericF64Abs: true, NumericF64Neg: true, NumericF64Ceil: true, NumericF64Floor: true,
	NumericF64Trunc: true, NumericF64Nearest: true, NumericF64Sqrt: true,
	NumericI32WrapI64: true, NumericI64ExtendI32S: true, NumericI64ExtendI32U: true,
	NumericI32TruncF32S: true, NumericI32TruncF32U: true, NumericI32TruncF64S: true, NumericI32TruncF64U: true,
	NumericI64TruncF32S: true, NumericI64TruncF32U: true, NumericI64TruncF64S: true, NumericI64TruncF64U: true,
	NumericI32TruncSatF32S: true, NumericI32TruncSatF32U: true, NumericI32TruncSatF64S: true, NumericI32TruncSatF64U: true,
	NumericI64TruncSatF32S: true, NumericI64TruncSatF32U: true, NumericI64TruncSatF64S: true, NumericI64TruncSatF64U: true,
	NumericF32ConvertI32S: true, NumericF32ConvertI32U: true, NumericF32ConvertI64S: true, NumericF32ConvertI64U: true,
	NumericF64ConvertI32S: true, NumericF64ConvertI32U: true, NumericF64ConvertI64S: true, NumericF64ConvertI64U: true,
	NumericF32DemoteF64: true, NumericF64PromoteF32: true,
	NumericI32ReinterpretF32: true, NumericI64ReinterpretF64: true,
	NumericF32ReinterpretI32: true, NumericF64ReinterpretI64: true,
	NumericI32Extend8S: true, NumericI32Extend16S: true, NumericI64Extend8S: true, NumericI64Extend16S: true, NumericI64Extend32S: true,
}

// VisitNumeric implements Visitor.
func (b *Builder) VisitNumeric(op NumericOp) {
	dst := b.alloc()
	if unaryNumericOps[op] {
		src := b.pop()
		b.emit(Instruction{Kind: OpNumeric, Numeric: op, Src1: src, Dst: dst})
	} else {
		rhs := b.pop()
		lhs := b.pop()
		b.emit(Instruction{Kind: OpNumeric, Numeric: op, Src1: lhs, Src2: rhs, Dst: dst})
	}
	b.push(dst)
}

// Finalize completes translation and returns the assembled
// InstructionSequence along with the number of registers the function's
// frame needs (its width, used by the caller to size the callee's slice of
// the shared register stack). The returned sequence is backed by the
// resolver's iseq arena, not by b.instrs.
func (b *Builder) Finalize() (InstructionSequence, uint32) {
	return b.resolver.AllocInstructions(b.instrs), uint32(b.nextReg)
}
