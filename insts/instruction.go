package insts

import (
	"fmt"

	"github.com/sarchlab/tomasim/emu"
)

// Instruction is a parsed instruction together with its lifecycle timing.
//
// Cycle numbers start at 1; a zero cycle field means the stage has not been
// reached yet.
type Instruction struct {
	Op   Op       // Operation code
	Dest emu.Unit // Destination unit (the stored register for SD)
	Src1 *emu.Value
	Src2 *emu.Value

	// Latency is the number of calculating cycles. Zero selects the opcode
	// default at Emit.
	Latency uint64

	// EmitCycle is the cycle the instruction was issued into a station.
	EmitCycle uint64
	// StartCycle is the first calculating cycle.
	StartCycle uint64
	// ExecCycle is the last calculating cycle.
	ExecCycle uint64
	// WriteCycle is the cycle the result was written back.
	WriteCycle uint64

	remaining   uint64
	calculating bool
}

// Clone returns a copy with the timing state cleared. Operand values are
// immutable and stay shared.
func (i *Instruction) Clone() *Instruction {
	return &Instruction{
		Op:      i.Op,
		Dest:    i.Dest,
		Src1:    i.Src1,
		Src2:    i.Src2,
		Latency: i.Latency,
	}
}

// Emit marks the instruction as issued and arms the latency countdown.
func (i *Instruction) Emit(cycle uint64) {
	if i.Latency == 0 {
		i.Latency = i.Op.DefaultLatency()
	}

	i.EmitCycle = cycle
	i.remaining = i.Latency
	i.calculating = true
}

// Advance performs one calculating cycle and reports whether the
// instruction has finished.
//
// The call that finds the countdown already at zero reports the finish and
// stamps the previous cycle as ExecCycle. Completion is thus observed one
// cycle after the last calculating cycle, in the same cycle as the
// write-back.
func (i *Instruction) Advance(cycle uint64) bool {
	if !i.calculating {
		return false
	}

	if i.remaining == 0 {
		i.calculating = false
		i.ExecCycle = cycle - 1
		return true
	}

	if i.remaining == i.Latency {
		i.StartCycle = cycle
	}
	i.remaining--

	return false
}

// Remaining returns the number of calculating cycles left.
func (i *Instruction) Remaining() uint64 {
	return i.remaining
}

// Write stamps the write-back cycle.
func (i *Instruction) Write(cycle uint64) {
	i.WriteCycle = cycle
}

// Completed returns true once the instruction has been written back.
func (i *Instruction) Completed() bool {
	return i.WriteCycle != 0
}

// String renders the instruction in its source form with canonical units.
func (i *Instruction) String() string {
	return fmt.Sprintf("%s %s %s %s", i.Op, i.Dest, i.Src1, i.Src2)
}
