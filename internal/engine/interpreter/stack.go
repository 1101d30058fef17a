package interpreter

import (
	"github.com/tetratelabs/wazerocore/internal/buildoptions"
	"github.com/tetratelabs/wazerocore/internal/wasmruntime"
	"github.com/tetratelabs/wazerocore/internal/wazeroir"
)

// callStackCeiling bounds how many frames a call chain may push before the
// interpreter raises TrapKindCallStackExhausted instead of growing
// ce.registers without limit. A var, not a const, so tests can lower it to
// exercise the trap cheaply.
var callStackCeiling = buildoptions.CallStackCeiling

// callFrame is one activation record: a position within a function's
// translated InstructionSequence and the absolute offset into ce.registers
// where its registers begin.
//
// resultRegs and callerBase describe where this frame's eventual OpReturn
// values are written back to in the *caller's* frame; both are zero for the
// outermost frame, whose results instead end the whole Call.
type callFrame struct {
	pc   uint32
	base uint32
	seq  wazeroir.InstructionSequence
	fn   *function

	resultRegs []wazeroir.Reg
	callerBase uint32
}

// callEngine is the execution context of one Call: a single flat register
// file (StackContext, spec.md §3) shared by every frame on the call stack,
// addressed by each frame's base offset plus an instruction's register
// operand.
type callEngine struct {
	registers []uint64
	frames    []*callFrame
}

func newCallEngine() *callEngine {
	return &callEngine{registers: make([]uint64, 0, 256)}
}

// ensureRegisters grows the register file so indices up to n-1 are valid,
// zero-filling the new space.
func (ce *callEngine) ensureRegisters(n uint32) {
	if int(n) <= len(ce.registers) {
		return
	}
	ce.registers = append(ce.registers, make([]uint64, int(n)-len(ce.registers))...)
}

// pushFrame allocates width registers starting at base and activates a new
// frame over them. Because every register access goes through ce.registers
// directly (never a cached sub-slice), growing the backing array on a later
// push never strands an outstanding frame's reads or writes.
func (ce *callEngine) pushFrame(fn *function, seq wazeroir.InstructionSequence, base, width uint32, resultRegs []wazeroir.Reg, callerBase uint32) *callFrame {
	if callStackCeiling <= len(ce.frames) {
		panic(wasmruntime.NewTrap(wasmruntime.TrapKindCallStackExhausted))
	}
	ce.ensureRegisters(base + width)
	f := &callFrame{seq: seq, fn: fn, base: base, resultRegs: resultRegs, callerBase: callerBase}
	ce.frames = append(ce.frames, f)
	return f
}

func (ce *callEngine) popFrame() *callFrame {
	n := len(ce.frames) - 1
	f := ce.frames[n]
	ce.frames = ce.frames[:n]
	return f
}

func (ce *callEngine) current() *callFrame { return ce.frames[len(ce.frames)-1] }

func (ce *callEngine) get(f *callFrame, r wazeroir.Reg) uint64 { return ce.registers[f.base+uint32(r)] }

func (ce *callEngine) set(f *callFrame, r wazeroir.Reg, v uint64) { ce.registers[f.base+uint32(r)] = v }
