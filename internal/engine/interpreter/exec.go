package interpreter

import (
	"context"
	"math"
	"math/bits"

	"github.com/tetratelabs/wazerocore/api"
	"github.com/tetratelabs/wazerocore/internal/moremath"
	"github.com/tetratelabs/wazerocore/internal/wasm"
	"github.com/tetratelabs/wazerocore/internal/wasmruntime"
	"github.com/tetratelabs/wazerocore/internal/wazeroir"
)

// call runs fn to completion (host or wasm) and returns its results. A wasm
// call never recurses through the Go stack for nested wasm-to-wasm calls:
// run's loop pushes a new callFrame and continues, so callStackCeiling, not
// Go's own stack, is what bounds recursion depth.
func (ce *callEngine) call(ctx context.Context, me *moduleEngine, fn *function, args []uint64) []uint64 {
	if fn.source.Kind == wasm.FunctionKindHost {
		return ce.callHost(ctx, fn, args)
	}
	seq, width := fn.source.Wasm.Code.EnsureCompiled(fn.source.Module.Store)
	ce.pushFrame(fn, seq, 0, width, nil, 0)
	copy(ce.registers[:len(args)], args)
	return ce.run(ctx, me)
}

// callHost invokes a host-defined function directly, without pushing a
// callFrame: GoFunction/GoModuleFunction operate on a raw stack slice
// holding first the arguments then (after Call returns) the results, the
// same convention the register file already uses for call operands.
func (ce *callEngine) callHost(ctx context.Context, fn *function, args []uint64) []uint64 {
	width := len(fn.source.Type.Params)
	if n := len(fn.source.Type.Results); n > width {
		width = n
	}
	stack := make([]uint64, width)
	copy(stack, args)
	if fn.source.Host.NeedsModule {
		// Called from wasm, a host function acts on its caller's instance;
		// called directly as the entry point it has no caller and gets its
		// own (host) module.
		mod := fn.source.Module
		if n := len(ce.frames); n > 0 {
			mod = ce.frames[n-1].fn.source.Module
		}
		fn.source.Host.ModuleFunc.Call(ctx, hostModule{mod}, stack)
	} else {
		fn.source.Host.Func.Call(ctx, stack)
	}
	return stack[:len(fn.source.Type.Results)]
}

func (ce *callEngine) run(ctx context.Context, me *moduleEngine) []uint64 {
	for {
		frame := ce.current()
		instr := frame.seq.At(frame.pc)
		switch instr.Kind {
		case wazeroir.OpUnreachable:
			panic(wasmruntime.NewTrap(wasmruntime.TrapKindUnreachable))

		case wazeroir.OpBr:
			frame.pc = instr.U32
			continue

		case wazeroir.OpBrIf:
			if ce.get(frame, instr.Src1) != 0 {
				frame.pc = instr.U32
			} else {
				frame.pc++
			}
			continue

		case wazeroir.OpBrTable:
			idx := uint32(ce.get(frame, instr.Src1))
			if last := uint32(len(instr.BrTable) - 1); idx > last {
				idx = last
			}
			frame.pc = instr.BrTable[idx].PC
			continue

		case wazeroir.OpReturn:
			results := make([]uint64, len(instr.Regs))
			for i, r := range instr.Regs {
				results[i] = ce.get(frame, r)
			}
			finished := ce.popFrame()
			if len(ce.frames) == 0 {
				return results
			}
			caller := ce.current()
			for i, r := range finished.resultRegs {
				ce.set(caller, r, results[i])
			}
			caller.pc++
			continue

		case wazeroir.OpCall:
			ce.execCall(ctx, frame, me, instr.U32, instr)
			continue

		case wazeroir.OpCallIndirect:
			ce.execCallIndirect(ctx, frame, instr)
			continue

		case wazeroir.OpDrop:
			frame.pc++
			continue

		case wazeroir.OpSelect:
			if ce.registers[frame.base+instr.U32] != 0 {
				ce.set(frame, instr.Dst, ce.get(frame, instr.Src1))
			} else {
				ce.set(frame, instr.Dst, ce.get(frame, instr.Src2))
			}
			frame.pc++
			continue

		case wazeroir.OpMove:
			ce.set(frame, instr.Dst, ce.get(frame, instr.Src1))
			frame.pc++
			continue

		case wazeroir.OpConstI32:
			ce.set(frame, instr.Dst, api.EncodeI32(instr.I32))
			frame.pc++
			continue
		case wazeroir.OpConstI64:
			ce.set(frame, instr.Dst, api.EncodeI64(instr.I64))
			frame.pc++
			continue
		case wazeroir.OpConstF32:
			ce.set(frame, instr.Dst, api.EncodeF32(instr.F32))
			frame.pc++
			continue
		case wazeroir.OpConstF64:
			ce.set(frame, instr.Dst, api.EncodeF64(instr.F64))
			frame.pc++
			continue

		case wazeroir.OpGlobalGet, wazeroir.OpGlobalGetCached:
			g := frame.fn.source.Module.Globals[instr.U32]
			ce.set(frame, instr.Dst, g.Get())
			frame.pc++
			continue
		case wazeroir.OpGlobalSet, wazeroir.OpGlobalSetCached:
			g := frame.fn.source.Module.Globals[instr.U32]
			g.Set(ce.get(frame, instr.Src1))
			frame.pc++
			continue

		case wazeroir.OpLoad:
			ce.execLoad(ctx, frame, instr)
			frame.pc++
			continue
		case wazeroir.OpStore:
			ce.execStore(ctx, frame, instr)
			frame.pc++
			continue

		case wazeroir.OpMemorySize:
			mem := frame.fn.source.Module.Memories[0]
			ce.set(frame, instr.Dst, uint64(mem.Pages()))
			frame.pc++
			continue
		case wazeroir.OpMemoryGrow:
			mem := frame.fn.source.Module.Memories[0]
			before, ok := mem.Grow(ctx, uint32(ce.get(frame, instr.Src1)))
			if !ok {
				ce.set(frame, instr.Dst, api.EncodeI32(-1))
			} else {
				ce.set(frame, instr.Dst, uint64(before))
			}
			frame.pc++
			continue
		case wazeroir.OpMemoryCopy:
			ce.execMemoryCopy(ctx, frame, instr)
			frame.pc++
			continue
		case wazeroir.OpMemoryFill:
			ce.execMemoryFill(ctx, frame, instr)
			frame.pc++
			continue
		case wazeroir.OpMemoryInit:
			ce.execMemoryInit(ctx, frame, instr)
			frame.pc++
			continue
		case wazeroir.OpDataDrop:
			frame.fn.source.Module.DropData(instr.U32)
			frame.pc++
			continue

		case wazeroir.OpTableGet:
			ce.execTableGet(frame, instr)
			frame.pc++
			continue
		case wazeroir.OpTableSet:
			ce.execTableSet(frame, instr)
			frame.pc++
			continue
		case wazeroir.OpTableSize:
			t := frame.fn.source.Module.Tables[instr.U32]
			ce.set(frame, instr.Dst, uint64(t.Size()))
			frame.pc++
			continue
		case wazeroir.OpTableGrow:
			ce.execTableGrow(ctx, frame, instr)
			frame.pc++
			continue
		case wazeroir.OpTableFill:
			ce.execTableFill(frame, instr)
			frame.pc++
			continue
		case wazeroir.OpTableCopy:
			ce.execTableCopy(frame, instr)
			frame.pc++
			continue
		case wazeroir.OpTableInit:
			ce.execTableInit(frame, instr)
			frame.pc++
			continue
		case wazeroir.OpElemDrop:
			frame.fn.source.Module.DropElement(instr.U32)
			frame.pc++
			continue

		case wazeroir.OpRefNull:
			ce.set(frame, instr.Dst, uint64(wasm.RefNull))
			frame.pc++
			continue
		case wazeroir.OpRefFunc:
			ref := wasm.ReferenceFromFunction(frame.fn.source.Module.Functions[instr.U32])
			ce.set(frame, instr.Dst, uint64(ref))
			frame.pc++
			continue
		case wazeroir.OpRefIsNull:
			v := wasm.Reference(ce.get(frame, instr.Src1))
			ce.set(frame, instr.Dst, api.EncodeI32(boolToI32(v.IsNull())))
			frame.pc++
			continue

		case wazeroir.OpNumeric:
			ce.execNumeric(frame, instr)
			frame.pc++
			continue

		case wazeroir.OpEndOfFunction:
			panic(wasmruntime.NewCustomTrap("fell off the end of a function body without a return"))
		}
	}
}

func boolToI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// execCall pushes a new frame for a direct call. Arguments are already in
// place at frame.base+instr.SPAddend (Builder emitted them there), so the
// callee's frame simply starts at that same register range: no argument
// copy is needed.
func (ce *callEngine) execCall(ctx context.Context, frame *callFrame, me *moduleEngine, funcIdx uint32, instr *wazeroir.Instruction) {
	target := me.functions[funcIdx]
	argsBase := frame.base + instr.SPAddend
	if target.source.Kind == wasm.FunctionKindHost {
		args := append([]uint64{}, ce.registers[argsBase:argsBase+instr.NumArgs]...)
		results := ce.callHost(ctx, target, args)
		for i, r := range instr.Regs {
			ce.set(frame, r, results[i])
		}
		frame.pc++
		return
	}
	seq, width := target.source.Wasm.Code.EnsureCompiled(target.source.Module.Store)
	if width < instr.NumArgs {
		width = instr.NumArgs
	}
	ce.pushFrame(target, seq, argsBase, width, instr.Regs, frame.base)
}

func (ce *callEngine) execCallIndirect(ctx context.Context, frame *callFrame, instr *wazeroir.Instruction) {
	elemIdx := uint32(ce.get(frame, instr.Src1))
	table := frame.fn.source.Module.Tables[instr.U32]
	ref, ok := table.Get(elemIdx)
	if !ok {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindOutOfBoundsTableAccess))
	}
	if ref.IsNull() {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindUninitializedElement))
	}
	target := wasm.FunctionFromReference(ref)
	if uint32(target.TypeID) != instr.U32b {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindIndirectCallTypeMismatch))
	}

	argsBase := frame.base + instr.SPAddend
	if target.Kind == wasm.FunctionKindHost {
		args := append([]uint64{}, ce.registers[argsBase:argsBase+instr.NumArgs]...)
		results := ce.callHost(ctx, &function{source: target}, args)
		for i, r := range instr.Regs {
			ce.set(frame, r, results[i])
		}
		frame.pc++
		return
	}
	seq, width := target.Wasm.Code.EnsureCompiled(target.Module.Store)
	if width < instr.NumArgs {
		width = instr.NumArgs
	}
	ce.pushFrame(&function{source: target}, seq, argsBase, width, instr.Regs, frame.base)
}

// effectiveAddr sums base and offset without wrapping: both are added as
// uint64 first, so a base near the top of the u32 range traps instead of
// wrapping back into bounds (spec.md §4.6).
func effectiveAddr(base, offset uint32) (uint32, bool) {
	sum := uint64(base) + uint64(offset)
	if sum > math.MaxUint32 {
		return 0, false
	}
	return uint32(sum), true
}

func (ce *callEngine) execLoad(ctx context.Context, frame *callFrame, instr *wazeroir.Instruction) {
	mem := frame.fn.source.Module.Memories[0]
	oob := func() { panic(wasmruntime.NewTrap(wasmruntime.TrapKindOutOfBoundsMemoryAccess)) }
	addr, ok := effectiveAddr(uint32(ce.get(frame, instr.Src1)), instr.Offset)
	if !ok {
		oob()
	}
	switch instr.Numeric {
	case wazeroir.NumericLoadI32:
		v, ok := mem.ReadUint32Le(ctx, addr)
		if !ok {
			oob()
		}
		ce.set(frame, instr.Dst, api.EncodeU32(v))
	case wazeroir.NumericLoadI64:
		v, ok := mem.ReadUint64Le(ctx, addr)
		if !ok {
			oob()
		}
		ce.set(frame, instr.Dst, v)
	case wazeroir.NumericLoadF32:
		v, ok := mem.ReadFloat32Le(ctx, addr)
		if !ok {
			oob()
		}
		ce.set(frame, instr.Dst, api.EncodeF32(v))
	case wazeroir.NumericLoadF64:
		v, ok := mem.ReadFloat64Le(ctx, addr)
		if !ok {
			oob()
		}
		ce.set(frame, instr.Dst, api.EncodeF64(v))
	case wazeroir.NumericLoadI32_8S:
		v, ok := mem.ReadByte(ctx, addr)
		if !ok {
			oob()
		}
		ce.set(frame, instr.Dst, api.EncodeI32(int32(int8(v))))
	case wazeroir.NumericLoadI32_8U:
		v, ok := mem.ReadByte(ctx, addr)
		if !ok {
			oob()
		}
		ce.set(frame, instr.Dst, api.EncodeU32(uint32(v)))
	case wazeroir.NumericLoadI32_16S:
		v, ok := mem.ReadUint16Le(ctx, addr)
		if !ok {
			oob()
		}
		ce.set(frame, instr.Dst, api.EncodeI32(int32(int16(v))))
	case wazeroir.NumericLoadI32_16U:
		v, ok := mem.ReadUint16Le(ctx, addr)
		if !ok {
			oob()
		}
		ce.set(frame, instr.Dst, api.EncodeU32(uint32(v)))
	case wazeroir.NumericLoadI64_8S:
		v, ok := mem.ReadByte(ctx, addr)
		if !ok {
			oob()
		}
		ce.set(frame, instr.Dst, api.EncodeI64(int64(int8(v))))
	case wazeroir.NumericLoadI64_8U:
		v, ok := mem.ReadByte(ctx, addr)
		if !ok {
			oob()
		}
		ce.set(frame, instr.Dst, uint64(v))
	case wazeroir.NumericLoadI64_16S:
		v, ok := mem.ReadUint16Le(ctx, addr)
		if !ok {
			oob()
		}
		ce.set(frame, instr.Dst, api.EncodeI64(int64(int16(v))))
	case wazeroir.NumericLoadI64_16U:
		v, ok := mem.ReadUint16Le(ctx, addr)
		if !ok {
			oob()
		}
		ce.set(frame, instr.Dst, uint64(v))
	case wazeroir.NumericLoadI64_32S:
		v, ok := mem.ReadUint32Le(ctx, addr)
		if !ok {
			oob()
		}
		ce.set(frame, instr.Dst, api.EncodeI64(int64(int32(v))))
	case wazeroir.NumericLoadI64_32U:
		v, ok := mem.ReadUint32Le(ctx, addr)
		if !ok {
			oob()
		}
		ce.set(frame, instr.Dst, uint64(v))
	}
}

func (ce *callEngine) execStore(ctx context.Context, frame *callFrame, instr *wazeroir.Instruction) {
	mem := frame.fn.source.Module.Memories[0]
	val := ce.get(frame, instr.Src2)
	oob := func() { panic(wasmruntime.NewTrap(wasmruntime.TrapKindOutOfBoundsMemoryAccess)) }
	addr, ok := effectiveAddr(uint32(ce.get(frame, instr.Src1)), instr.Offset)
	if !ok {
		oob()
	}
	switch instr.Numeric {
	case wazeroir.NumericStoreI32, wazeroir.NumericStoreF32:
		ok = mem.WriteUint32Le(ctx, addr, uint32(val))
	case wazeroir.NumericStoreI64, wazeroir.NumericStoreF64:
		ok = mem.WriteUint64Le(ctx, addr, val)
	case wazeroir.NumericStoreI32_8, wazeroir.NumericStoreI64_8:
		ok = mem.WriteByte(ctx, addr, byte(val))
	case wazeroir.NumericStoreI32_16, wazeroir.NumericStoreI64_16:
		ok = mem.WriteUint16Le(ctx, addr, uint16(val))
	case wazeroir.NumericStoreI64_32:
		ok = mem.WriteUint32Le(ctx, addr, uint32(val))
	}
	if !ok {
		oob()
	}
}

func (ce *callEngine) execMemoryCopy(ctx context.Context, frame *callFrame, instr *wazeroir.Instruction) {
	mem := frame.fn.source.Module.Memories[0]
	dst := uint32(ce.get(frame, instr.Dst))
	src := uint32(ce.get(frame, instr.Src1))
	n := uint32(ce.get(frame, instr.Src2))
	b, ok := mem.Read(ctx, src, n)
	if !ok || !mem.Write(ctx, dst, append([]byte{}, b...)) {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindOutOfBoundsMemoryAccess))
	}
}

func (ce *callEngine) execMemoryFill(ctx context.Context, frame *callFrame, instr *wazeroir.Instruction) {
	mem := frame.fn.source.Module.Memories[0]
	dst := uint32(ce.get(frame, instr.Dst))
	val := byte(ce.get(frame, instr.Src1))
	n := uint32(ce.get(frame, instr.Src2))
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = val
	}
	if !mem.Write(ctx, dst, buf) {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindOutOfBoundsMemoryAccess))
	}
}

func (ce *callEngine) execMemoryInit(ctx context.Context, frame *callFrame, instr *wazeroir.Instruction) {
	mem := frame.fn.source.Module.Memories[0]
	dst := uint32(ce.get(frame, instr.Dst))
	src := uint32(ce.get(frame, instr.Src1))
	n := uint32(ce.get(frame, instr.Src2))
	data, ok := frame.fn.source.Module.DataSegment(instr.U32)
	if !ok || uint64(src)+uint64(n) > uint64(len(data)) || !mem.Write(ctx, dst, data[src:src+n]) {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindOutOfBoundsMemoryAccess))
	}
}

func (ce *callEngine) execTableGet(frame *callFrame, instr *wazeroir.Instruction) {
	t := frame.fn.source.Module.Tables[instr.U32]
	ref, ok := t.Get(uint32(ce.get(frame, instr.Src1)))
	if !ok {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindOutOfBoundsTableAccess))
	}
	ce.set(frame, instr.Dst, uint64(ref))
}

func (ce *callEngine) execTableSet(frame *callFrame, instr *wazeroir.Instruction) {
	t := frame.fn.source.Module.Tables[instr.U32]
	idx := uint32(ce.get(frame, instr.Src1))
	ref := wasm.Reference(ce.get(frame, instr.Src2))
	if !t.Set(idx, ref) {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindOutOfBoundsTableAccess))
	}
}

func (ce *callEngine) execTableGrow(ctx context.Context, frame *callFrame, instr *wazeroir.Instruction) {
	t := frame.fn.source.Module.Tables[instr.U32]
	init := wasm.Reference(ce.get(frame, instr.Src1))
	delta := uint32(ce.get(frame, instr.Src2))
	before, ok := t.Grow(ctx, delta, init)
	if !ok {
		ce.set(frame, instr.Dst, api.EncodeI32(-1))
	} else {
		ce.set(frame, instr.Dst, uint64(before))
	}
}

func (ce *callEngine) execTableFill(frame *callFrame, instr *wazeroir.Instruction) {
	t := frame.fn.source.Module.Tables[instr.U32]
	offset := uint32(ce.get(frame, instr.Dst))
	val := wasm.Reference(ce.get(frame, instr.Src1))
	n := uint32(ce.get(frame, instr.Src2))
	if !t.Fill(offset, n, val) {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindOutOfBoundsTableAccess))
	}
}

func (ce *callEngine) execTableCopy(frame *callFrame, instr *wazeroir.Instruction) {
	tables := frame.fn.source.Module.Tables
	dstT, srcT := tables[instr.U32], tables[instr.U32b]
	dst := uint32(ce.get(frame, instr.Dst))
	src := uint32(ce.get(frame, instr.Src1))
	n := uint32(ce.get(frame, instr.Src2))
	if !wasm.CopyWithin(dstT, srcT, dst, src, n) {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindOutOfBoundsTableAccess))
	}
}

func (ce *callEngine) execTableInit(frame *callFrame, instr *wazeroir.Instruction) {
	t := frame.fn.source.Module.Tables[instr.U32]
	dst := uint32(ce.get(frame, instr.Dst))
	src := uint32(ce.get(frame, instr.Src1))
	n := uint32(ce.get(frame, instr.Src2))
	refs, ok := frame.fn.source.Module.ElementSegment(instr.U32b)
	if !ok || !t.Init(dst, refs, src, n) {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindOutOfBoundsTableAccess))
	}
}

// execNumeric dispatches the arithmetic/comparison/conversion family.
// Operands are read and the result written through the frame's registers;
// unary ops read only Src1.
func (ce *callEngine) execNumeric(frame *callFrame, instr *wazeroir.Instruction) {
	switch instr.Numeric {
	// i32 arithmetic
	case wazeroir.NumericI32Add:
		ce.setI32(frame, instr, i32(ce, frame, instr.Src1)+i32(ce, frame, instr.Src2))
	case wazeroir.NumericI32Sub:
		ce.setI32(frame, instr, i32(ce, frame, instr.Src1)-i32(ce, frame, instr.Src2))
	case wazeroir.NumericI32Mul:
		ce.setI32(frame, instr, i32(ce, frame, instr.Src1)*i32(ce, frame, instr.Src2))
	case wazeroir.NumericI32DivS:
		a, b := i32(ce, frame, instr.Src1), i32(ce, frame, instr.Src2)
		if b == 0 {
			panic(wasmruntime.NewTrap(wasmruntime.TrapKindIntegerDivideByZero))
		}
		if a == math.MinInt32 && b == -1 {
			panic(wasmruntime.NewTrap(wasmruntime.TrapKindIntegerOverflow))
		}
		ce.setI32(frame, instr, a/b)
	case wazeroir.NumericI32DivU:
		a, b := u32(ce, frame, instr.Src1), u32(ce, frame, instr.Src2)
		if b == 0 {
			panic(wasmruntime.NewTrap(wasmruntime.TrapKindIntegerDivideByZero))
		}
		ce.setU32(frame, instr, a/b)
	case wazeroir.NumericI32RemS:
		a, b := i32(ce, frame, instr.Src1), i32(ce, frame, instr.Src2)
		if b == 0 {
			panic(wasmruntime.NewTrap(wasmruntime.TrapKindIntegerDivideByZero))
		}
		if a == math.MinInt32 && b == -1 {
			ce.setI32(frame, instr, 0)
		} else {
			ce.setI32(frame, instr, a%b)
		}
	case wazeroir.NumericI32RemU:
		a, b := u32(ce, frame, instr.Src1), u32(ce, frame, instr.Src2)
		if b == 0 {
			panic(wasmruntime.NewTrap(wasmruntime.TrapKindIntegerDivideByZero))
		}
		ce.setU32(frame, instr, a%b)
	case wazeroir.NumericI32And:
		ce.setU32(frame, instr, u32(ce, frame, instr.Src1)&u32(ce, frame, instr.Src2))
	case wazeroir.NumericI32Or:
		ce.setU32(frame, instr, u32(ce, frame, instr.Src1)|u32(ce, frame, instr.Src2))
	case wazeroir.NumericI32Xor:
		ce.setU32(frame, instr, u32(ce, frame, instr.Src1)^u32(ce, frame, instr.Src2))
	case wazeroir.NumericI32Shl:
		ce.setU32(frame, instr, u32(ce, frame, instr.Src1)<<(u32(ce, frame, instr.Src2)&31))
	case wazeroir.NumericI32ShrS:
		ce.setI32(frame, instr, i32(ce, frame, instr.Src1)>>(u32(ce, frame, instr.Src2)&31))
	case wazeroir.NumericI32ShrU:
		ce.setU32(frame, instr, u32(ce, frame, instr.Src1)>>(u32(ce, frame, instr.Src2)&31))
	case wazeroir.NumericI32Rotl:
		ce.setU32(frame, instr, bits.RotateLeft32(u32(ce, frame, instr.Src1), int(u32(ce, frame, instr.Src2))))
	case wazeroir.NumericI32Rotr:
		ce.setU32(frame, instr, bits.RotateLeft32(u32(ce, frame, instr.Src1), -int(u32(ce, frame, instr.Src2))))
	case wazeroir.NumericI32Clz:
		ce.setU32(frame, instr, uint32(bits.LeadingZeros32(u32(ce, frame, instr.Src1))))
	case wazeroir.NumericI32Ctz:
		ce.setU32(frame, instr, uint32(bits.TrailingZeros32(u32(ce, frame, instr.Src1))))
	case wazeroir.NumericI32Popcnt:
		ce.setU32(frame, instr, uint32(bits.OnesCount32(u32(ce, frame, instr.Src1))))
	case wazeroir.NumericI32Eqz:
		ce.setI32(frame, instr, boolToI32(u32(ce, frame, instr.Src1) == 0))
	case wazeroir.NumericI32Eq:
		ce.setI32(frame, instr, boolToI32(i32(ce, frame, instr.Src1) == i32(ce, frame, instr.Src2)))
	case wazeroir.NumericI32Ne:
		ce.setI32(frame, instr, boolToI32(i32(ce, frame, instr.Src1) != i32(ce, frame, instr.Src2)))
	case wazeroir.NumericI32LtS:
		ce.setI32(frame, instr, boolToI32(i32(ce, frame, instr.Src1) < i32(ce, frame, instr.Src2)))
	case wazeroir.NumericI32LtU:
		ce.setI32(frame, instr, boolToI32(u32(ce, frame, instr.Src1) < u32(ce, frame, instr.Src2)))
	case wazeroir.NumericI32GtS:
		ce.setI32(frame, instr, boolToI32(i32(ce, frame, instr.Src1) > i32(ce, frame, instr.Src2)))
	case wazeroir.NumericI32GtU:
		ce.setI32(frame, instr, boolToI32(u32(ce, frame, instr.Src1) > u32(ce, frame, instr.Src2)))
	case wazeroir.NumericI32LeS:
		ce.setI32(frame, instr, boolToI32(i32(ce, frame, instr.Src1) <= i32(ce, frame, instr.Src2)))
	case wazeroir.NumericI32LeU:
		ce.setI32(frame, instr, boolToI32(u32(ce, frame, instr.Src1) <= u32(ce, frame, instr.Src2)))
	case wazeroir.NumericI32GeS:
		ce.setI32(frame, instr, boolToI32(i32(ce, frame, instr.Src1) >= i32(ce, frame, instr.Src2)))
	case wazeroir.NumericI32GeU:
		ce.setI32(frame, instr, boolToI32(u32(ce, frame, instr.Src1) >= u32(ce, frame, instr.Src2)))

	// i64 arithmetic
	case wazeroir.NumericI64Add:
		ce.setI64(frame, instr, i64(ce, frame, instr.Src1)+i64(ce, frame, instr.Src2))
	case wazeroir.NumericI64Sub:
		ce.setI64(frame, instr, i64(ce, frame, instr.Src1)-i64(ce, frame, instr.Src2))
	case wazeroir.NumericI64Mul:
		ce.setI64(frame, instr, i64(ce, frame, instr.Src1)*i64(ce, frame, instr.Src2))
	case wazeroir.NumericI64DivS:
		a, b := i64(ce, frame, instr.Src1), i64(ce, frame, instr.Src2)
		if b == 0 {
			panic(wasmruntime.NewTrap(wasmruntime.TrapKindIntegerDivideByZero))
		}
		if a == math.MinInt64 && b == -1 {
			panic(wasmruntime.NewTrap(wasmruntime.TrapKindIntegerOverflow))
		}
		ce.setI64(frame, instr, a/b)
	case wazeroir.NumericI64DivU:
		a, b := u64(ce, frame, instr.Src1), u64(ce, frame, instr.Src2)
		if b == 0 {
			panic(wasmruntime.NewTrap(wasmruntime.TrapKindIntegerDivideByZero))
		}
		ce.setU64(frame, instr, a/b)
	case wazeroir.NumericI64RemS:
		a, b := i64(ce, frame, instr.Src1), i64(ce, frame, instr.Src2)
		if b == 0 {
			panic(wasmruntime.NewTrap(wasmruntime.TrapKindIntegerDivideByZero))
		}
		if a == math.MinInt64 && b == -1 {
			ce.setI64(frame, instr, 0)
		} else {
			ce.setI64(frame, instr, a%b)
		}
	case wazeroir.NumericI64RemU:
		a, b := u64(ce, frame, instr.Src1), u64(ce, frame, instr.Src2)
		if b == 0 {
			panic(wasmruntime.NewTrap(wasmruntime.TrapKindIntegerDivideByZero))
		}
		ce.setU64(frame, instr, a%b)
	case wazeroir.NumericI64And:
		ce.setU64(frame, instr, u64(ce, frame, instr.Src1)&u64(ce, frame, instr.Src2))
	case wazeroir.NumericI64Or:
		ce.setU64(frame, instr, u64(ce, frame, instr.Src1)|u64(ce, frame, instr.Src2))
	case wazeroir.NumericI64Xor:
		ce.setU64(frame, instr, u64(ce, frame, instr.Src1)^u64(ce, frame, instr.Src2))
	case wazeroir.NumericI64Shl:
		ce.setU64(frame, instr, u64(ce, frame, instr.Src1)<<(u64(ce, frame, instr.Src2)&63))
	case wazeroir.NumericI64ShrS:
		ce.setI64(frame, instr, i64(ce, frame, instr.Src1)>>(u64(ce, frame, instr.Src2)&63))
	case wazeroir.NumericI64ShrU:
		ce.setU64(frame, instr, u64(ce, frame, instr.Src1)>>(u64(ce, frame, instr.Src2)&63))
	case wazeroir.NumericI64Rotl:
		ce.setU64(frame, instr, bits.RotateLeft64(u64(ce, frame, instr.Src1), int(u64(ce, frame, instr.Src2))))
	case wazeroir.NumericI64Rotr:
		ce.setU64(frame, instr, bits.RotateLeft64(u64(ce, frame, instr.Src1), -int(u64(ce, frame, instr.Src2))))
	case wazeroir.NumericI64Clz:
		ce.setU64(frame, instr, uint64(bits.LeadingZeros64(u64(ce, frame, instr.Src1))))
	case wazeroir.NumericI64Ctz:
		ce.setU64(frame, instr, uint64(bits.TrailingZeros64(u64(ce, frame, instr.Src1))))
	case wazeroir.NumericI64Popcnt:
		ce.setU64(frame, instr, uint64(bits.OnesCount64(u64(ce, frame, instr.Src1))))
	case wazeroir.NumericI64Eqz:
		ce.setI32(frame, instr, boolToI32(u64(ce, frame, instr.Src1) == 0))
	case wazeroir.NumericI64Eq:
		ce.setI32(frame, instr, boolToI32(i64(ce, frame, instr.Src1) == i64(ce, frame, instr.Src2)))
	case wazeroir.NumericI64Ne:
		ce.setI32(frame, instr, boolToI32(i64(ce, frame, instr.Src1) != i64(ce, frame, instr.Src2)))
	case wazeroir.NumericI64LtS:
		ce.setI32(frame, instr, boolToI32(i64(ce, frame, instr.Src1) < i64(ce, frame, instr.Src2)))
	case wazeroir.NumericI64LtU:
		ce.setI32(frame, instr, boolToI32(u64(ce, frame, instr.Src1) < u64(ce, frame, instr.Src2)))
	case wazeroir.NumericI64GtS:
		ce.setI32(frame, instr, boolToI32(i64(ce, frame, instr.Src1) > i64(ce, frame, instr.Src2)))
	case wazeroir.NumericI64GtU:
		ce.setI32(frame, instr, boolToI32(u64(ce, frame, instr.Src1) > u64(ce, frame, instr.Src2)))
	case wazeroir.NumericI64LeS:
		ce.setI32(frame, instr, boolToI32(i64(ce, frame, instr.Src1) <= i64(ce, frame, instr.Src2)))
	case wazeroir.NumericI64LeU:
		ce.setI32(frame, instr, boolToI32(u64(ce, frame, instr.Src1) <= u64(ce, frame, instr.Src2)))
	case wazeroir.NumericI64GeS:
		ce.setI32(frame, instr, boolToI32(i64(ce, frame, instr.Src1) >= i64(ce, frame, instr.Src2)))
	case wazeroir.NumericI64GeU:
		ce.setI32(frame, instr, boolToI32(u64(ce, frame, instr.Src1) >= u64(ce, frame, instr.Src2)))

	// f32 arithmetic
	case wazeroir.NumericF32Add:
		ce.setF32(frame, instr, f32(ce, frame, instr.Src1)+f32(ce, frame, instr.Src2))
	case wazeroir.NumericF32Sub:
		ce.setF32(frame, instr, f32(ce, frame, instr.Src1)-f32(ce, frame, instr.Src2))
	case wazeroir.NumericF32Mul:
		ce.setF32(frame, instr, f32(ce, frame, instr.Src1)*f32(ce, frame, instr.Src2))
	case wazeroir.NumericF32Div:
		ce.setF32(frame, instr, f32(ce, frame, instr.Src1)/f32(ce, frame, instr.Src2))
	case wazeroir.NumericF32Min:
		ce.setF32(frame, instr, float32(moremath.WasmCompatMin(float64(f32(ce, frame, instr.Src1)), float64(f32(ce, frame, instr.Src2)))))
	case wazeroir.NumericF32Max:
		ce.setF32(frame, instr, float32(moremath.WasmCompatMax(float64(f32(ce, frame, instr.Src1)), float64(f32(ce, frame, instr.Src2)))))
	case wazeroir.NumericF32Copysign:
		ce.setF32(frame, instr, float32(math.Copysign(float64(f32(ce, frame, instr.Src1)), float64(f32(ce, frame, instr.Src2)))))
	case wazeroir.NumericF32Abs:
		ce.setF32(frame, instr, float32(math.Abs(float64(f32(ce, frame, instr.Src1)))))
	case wazeroir.NumericF32Neg:
		ce.setF32(frame, instr, -f32(ce, frame, instr.Src1))
	case wazeroir.NumericF32Ceil:
		ce.setF32(frame, instr, float32(math.Ceil(float64(f32(ce, frame, instr.Src1)))))
	case wazeroir.NumericF32Floor:
		ce.setF32(frame, instr, float32(math.Floor(float64(f32(ce, frame, instr.Src1)))))
	case wazeroir.NumericF32Trunc:
		ce.setF32(frame, instr, float32(math.Trunc(float64(f32(ce, frame, instr.Src1)))))
	case wazeroir.NumericF32Nearest:
		ce.setF32(frame, instr, moremath.WasmCompatNearestF32(f32(ce, frame, instr.Src1)))
	case wazeroir.NumericF32Sqrt:
		ce.setF32(frame, instr, float32(math.Sqrt(float64(f32(ce, frame, instr.Src1)))))
	case wazeroir.NumericF32Eq:
		ce.setI32(frame, instr, boolToI32(f32(ce, frame, instr.Src1) == f32(ce, frame, instr.Src2)))
	case wazeroir.NumericF32Ne:
		ce.setI32(frame, instr, boolToI32(f32(ce, frame, instr.Src1) != f32(ce, frame, instr.Src2)))
	case wazeroir.NumericF32Lt:
		ce.setI32(frame, instr, boolToI32(f32(ce, frame, instr.Src1) < f32(ce, frame, instr.Src2)))
	case wazeroir.NumericF32Gt:
		ce.setI32(frame, instr, boolToI32(f32(ce, frame, instr.Src1) > f32(ce, frame, instr.Src2)))
	case wazeroir.NumericF32Le:
		ce.setI32(frame, instr, boolToI32(f32(ce, frame, instr.Src1) <= f32(ce, frame, instr.Src2)))
	case wazeroir.NumericF32Ge:
		ce.setI32(frame, instr, boolToI32(f32(ce, frame, instr.Src1) >= f32(ce, frame, instr.Src2)))

	// f64 arithmetic
	case wazeroir.NumericF64Add:
		ce.setF64(frame, instr, f64(ce, frame, instr.Src1)+f64(ce, frame, instr.Src2))
	case wazeroir.NumericF64Sub:
		ce.setF64(frame, instr, f64(ce, frame, instr.Src1)-f64(ce, frame, instr.Src2))
	case wazeroir.NumericF64Mul:
		ce.setF64(frame, instr, f64(ce, frame, instr.Src1)*f64(ce, frame, instr.Src2))
	case wazeroir.NumericF64Div:
		ce.setF64(frame, instr, f64(ce, frame, instr.Src1)/f64(ce, frame, instr.Src2))
	case wazeroir.NumericF64Min:
		ce.setF64(frame, instr, moremath.WasmCompatMin(f64(ce, frame, instr.Src1), f64(ce, frame, instr.Src2)))
	case wazeroir.NumericF64Max:
		ce.setF64(frame, instr, moremath.WasmCompatMax(f64(ce, frame, instr.Src1), f64(ce, frame, instr.Src2)))
	case wazeroir.NumericF64Copysign:
		ce.setF64(frame, instr, math.Copysign(f64(ce, frame, instr.Src1), f64(ce, frame, instr.Src2)))
	case wazeroir.NumericF64Abs:
		ce.setF64(frame, instr, math.Abs(f64(ce, frame, instr.Src1)))
	case wazeroir.NumericF64Neg:
		ce.setF64(frame, instr, -f64(ce, frame, instr.Src1))
	case wazeroir.NumericF64Ceil:
		ce.setF64(frame, instr, math.Ceil(f64(ce, frame, instr.Src1)))
	case wazeroir.NumericF64Floor:
		ce.setF64(frame, instr, math.Floor(f64(ce, frame, instr.Src1)))
	case wazeroir.NumericF64Trunc:
		ce.setF64(frame, instr, math.Trunc(f64(ce, frame, instr.Src1)))
	case wazeroir.NumericF64Nearest:
		ce.setF64(frame, instr, moremath.WasmCompatNearestF64(f64(ce, frame, instr.Src1)))
	case wazeroir.NumericF64Sqrt:
		ce.setF64(frame, instr, math.Sqrt(f64(ce, frame, instr.Src1)))
	case wazeroir.NumericF64Eq:
		ce.setI32(frame, instr, boolToI32(f64(ce, frame, instr.Src1) == f64(ce, frame, instr.Src2)))
	case wazeroir.NumericF64Ne:
		ce.setI32(frame, instr, boolToI32(f64(ce, frame, instr.Src1) != f64(ce, frame, instr.Src2)))
	case wazeroir.NumericF64Lt:
		ce.setI32(frame, instr, boolToI32(f64(ce, frame, instr.Src1) < f64(ce, frame, instr.Src2)))
	case wazeroir.NumericF64Gt:
		ce.setI32(frame, instr, boolToI32(f64(ce, frame, instr.Src1) > f64(ce, frame, instr.Src2)))
	case wazeroir.NumericF64Le:
		ce.setI32(frame, instr, boolToI32(f64(ce, frame, instr.Src1) <= f64(ce, frame, instr.Src2)))
	case wazeroir.NumericF64Ge:
		ce.setI32(frame, instr, boolToI32(f64(ce, frame, instr.Src1) >= f64(ce, frame, instr.Src2)))

	// conversions
	case wazeroir.NumericI32WrapI64:
		ce.setU32(frame, instr, uint32(u64(ce, frame, instr.Src1)))
	case wazeroir.NumericI64ExtendI32S:
		ce.setI64(frame, instr, int64(i32(ce, frame, instr.Src1)))
	case wazeroir.NumericI64ExtendI32U:
		ce.setU64(frame, instr, uint64(u32(ce, frame, instr.Src1)))
	case wazeroir.NumericI32Extend8S:
		ce.setI32(frame, instr, int32(int8(u32(ce, frame, instr.Src1))))
	case wazeroir.NumericI32Extend16S:
		ce.setI32(frame, instr, int32(int16(u32(ce, frame, instr.Src1))))
	case wazeroir.NumericI64Extend8S:
		ce.setI64(frame, instr, int64(int8(u64(ce, frame, instr.Src1))))
	case wazeroir.NumericI64Extend16S:
		ce.setI64(frame, instr, int64(int16(u64(ce, frame, instr.Src1))))
	case wazeroir.NumericI64Extend32S:
		ce.setI64(frame, instr, int64(int32(u64(ce, frame, instr.Src1))))
	case wazeroir.NumericF32DemoteF64:
		ce.setF32(frame, instr, float32(f64(ce, frame, instr.Src1)))
	case wazeroir.NumericF64PromoteF32:
		ce.setF64(frame, instr, float64(f32(ce, frame, instr.Src1)))
	case wazeroir.NumericF32ConvertI32S:
		ce.setF32(frame, instr, float32(i32(ce, frame, instr.Src1)))
	case wazeroir.NumericF32ConvertI32U:
		ce.setF32(frame, instr, float32(u32(ce, frame, instr.Src1)))
	case wazeroir.NumericF32ConvertI64S:
		ce.setF32(frame, instr, float32(i64(ce, frame, instr.Src1)))
	case wazeroir.NumericF32ConvertI64U:
		ce.setF32(frame, instr, float32(u64(ce, frame, instr.Src1)))
	case wazeroir.NumericF64ConvertI32S:
		ce.setF64(frame, instr, float64(i32(ce, frame, instr.Src1)))
	case wazeroir.NumericF64ConvertI32U:
		ce.setF64(frame, instr, float64(u32(ce, frame, instr.Src1)))
	case wazeroir.NumericF64ConvertI64S:
		ce.setF64(frame, instr, float64(i64(ce, frame, instr.Src1)))
	case wazeroir.NumericF64ConvertI64U:
		ce.setF64(frame, instr, float64(u64(ce, frame, instr.Src1)))
	case wazeroir.NumericI32ReinterpretF32:
		ce.setU32(frame, instr, math.Float32bits(f32(ce, frame, instr.Src1)))
	case wazeroir.NumericI64ReinterpretF64:
		ce.setU64(frame, instr, math.Float64bits(f64(ce, frame, instr.Src1)))
	case wazeroir.NumericF32ReinterpretI32:
		ce.setF32(frame, instr, math.Float32frombits(u32(ce, frame, instr.Src1)))
	case wazeroir.NumericF64ReinterpretI64:
		ce.setF64(frame, instr, math.Float64frombits(u64(ce, frame, instr.Src1)))

	case wazeroir.NumericI32TruncF32S:
		ce.setI32(frame, instr, truncToI32(float64(f32(ce, frame, instr.Src1))))
	case wazeroir.NumericI32TruncF32U:
		ce.setU32(frame, instr, truncToU32(float64(f32(ce, frame, instr.Src1))))
	case wazeroir.NumericI32TruncF64S:
		ce.setI32(frame, instr, truncToI32(f64(ce, frame, instr.Src1)))
	case wazeroir.NumericI32TruncF64U:
		ce.setU32(frame, instr, truncToU32(f64(ce, frame, instr.Src1)))
	case wazeroir.NumericI64TruncF32S:
		ce.setI64(frame, instr, truncToI64(float64(f32(ce, frame, instr.Src1))))
	case wazeroir.NumericI64TruncF32U:
		ce.setU64(frame, instr, truncToU64(float64(f32(ce, frame, instr.Src1))))
	case wazeroir.NumericI64TruncF64S:
		ce.setI64(frame, instr, truncToI64(f64(ce, frame, instr.Src1)))
	case wazeroir.NumericI64TruncF64U:
		ce.setU64(frame, instr, truncToU64(f64(ce, frame, instr.Src1)))

	case wazeroir.NumericI32TruncSatF32S:
		ce.setI32(frame, instr, truncSatToI32(float64(f32(ce, frame, instr.Src1))))
	case wazeroir.NumericI32TruncSatF32U:
		ce.setU32(frame, instr, truncSatToU32(float64(f32(ce, frame, instr.Src1))))
	case wazeroir.NumericI32TruncSatF64S:
		ce.setI32(frame, instr, truncSatToI32(f64(ce, frame, instr.Src1)))
	case wazeroir.NumericI32TruncSatF64U:
		ce.setU32(frame, instr, truncSatToU32(f64(ce, frame, instr.Src1)))
	case wazeroir.NumericI64TruncSatF32S:
		ce.setI64(frame, instr, truncSatToI64(float64(f32(ce, frame, instr.Src1))))
	case wazeroir.NumericI64TruncSatF32U:
		ce.setU64(frame, instr, truncSatToU64(float64(f32(ce, frame, instr.Src1))))
	case wazeroir.NumericI64TruncSatF64S:
		ce.setI64(frame, instr, truncSatToI64(f64(ce, frame, instr.Src1)))
	case wazeroir.NumericI64TruncSatF64U:
		ce.setU64(frame, instr, truncSatToU64(f64(ce, frame, instr.Src1)))
	}
}

func i32(ce *callEngine, f *callFrame, r wazeroir.Reg) int32   { return api.DecodeI32(ce.get(f, r)) }
func u32(ce *callEngine, f *callFrame, r wazeroir.Reg) uint32  { return api.DecodeU32(ce.get(f, r)) }
func i64(ce *callEngine, f *callFrame, r wazeroir.Reg) int64   { return api.DecodeI64(ce.get(f, r)) }
func u64(ce *callEngine, f *callFrame, r wazeroir.Reg) uint64  { return ce.get(f, r) }
func f32(ce *callEngine, f *callFrame, r wazeroir.Reg) float32 { return api.DecodeF32(ce.get(f, r)) }
func f64(ce *callEngine, f *callFrame, r wazeroir.Reg) float64 { return api.DecodeF64(ce.get(f, r)) }

func (ce *callEngine) setI32(f *callFrame, i *wazeroir.Instruction, v int32)   { ce.set(f, i.Dst, api.EncodeI32(v)) }
func (ce *callEngine) setU32(f *callFrame, i *wazeroir.Instruction, v uint32)  { ce.set(f, i.Dst, api.EncodeU32(v)) }
func (ce *callEngine) setI64(f *callFrame, i *wazeroir.Instruction, v int64)   { ce.set(f, i.Dst, api.EncodeI64(v)) }
func (ce *callEngine) setU64(f *callFrame, i *wazeroir.Instruction, v uint64)  { ce.set(f, i.Dst, v) }
func (ce *callEngine) setF32(f *callFrame, i *wazeroir.Instruction, v float32) { ce.set(f, i.Dst, api.EncodeF32(v)) }
func (ce *callEngine) setF64(f *callFrame, i *wazeroir.Instruction, v float64) { ce.set(f, i.Dst, api.EncodeF64(v)) }

// truncTo* implement the trapping (non-sat) truncation instructions: NaN
// and out-of-range inputs trap instead of saturating.
func truncToI32(f float64) int32 {
	checkTruncInput(f, math.MinInt32, math.MaxInt32+1)
	return int32(math.Trunc(f))
}

func truncToU32(f float64) uint32 {
	checkTruncInput(f, 0, math.MaxUint32+1)
	return uint32(math.Trunc(f))
}

func truncToI64(f float64) int64 {
	checkTruncInput(f, math.MinInt64, 9223372036854775808.0)
	return int64(math.Trunc(f))
}

func truncToU64(f float64) uint64 {
	checkTruncInput(f, 0, 18446744073709551616.0)
	return uint64(math.Trunc(f))
}

func checkTruncInput(f, min, max float64) {
	if math.IsNaN(f) {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindInvalidConversionToInteger))
	}
	if t := math.Trunc(f); t < min || t >= max {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindIntegerOverflow))
	}
}

func truncSatToI32(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f < math.MinInt32:
		return math.MinInt32
	case f >= math.MaxInt32+1:
		return math.MaxInt32
	}
	return int32(math.Trunc(f))
}

func truncSatToU32(f float64) uint32 {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f >= math.MaxUint32+1:
		return math.MaxUint32
	}
	return uint32(math.Trunc(f))
}

func truncSatToI64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f < math.MinInt64:
		return math.MinInt64
	case f >= 9223372036854775808.0:
		return math.MaxInt64
	}
	return int64(math.Trunc(f))
}

func truncSatToU64(f float64) uint64 {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f >= 18446744073709551616.0:
		return math.MaxUint64
	}
	return uint64(math.Trunc(f))
}

// hostModule adapts a *wasm.ModuleInstance to api.Module for
// GoModuleFunction calls; it is deliberately minimal, since a host
// function's most common need is the calling module's memory.
type hostModule struct {
	m *wasm.ModuleInstance
}

func (h hostModule) String() string { return h.m.Name }
func (h hostModule) Name() string   { return h.m.Name }
func (h hostModule) Memory() api.Memory {
	if len(h.m.Memories) == 0 {
		return nil
	}
	return h.m.Memories[0]
}
func (h hostModule) ExportedFunction(string) api.Function    { return nil }
func (h hostModule) ExportedMemory(string) api.Memory        { return nil }
func (h hostModule) ExportedGlobal(string) api.Global        { return nil }
func (h hostModule) CloseWithExitCode(context.Context, uint32) error { return nil }
func (h hostModule) Close(context.Context) error                    { return nil }
