package tomasulo

import (
	"fmt"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
)

// Tag identifies a reservation station. Tags double as rename tags: a
// functional unit owned by a tag receives that station's result, and an
// operand waiting on a tag is delivered by that station's broadcast.
type Tag struct {
	Kind  insts.StationKind
	Index uint8
}

// String renders the tag as kind and index, e.g. MULT1.
func (t Tag) String() string {
	return fmt.Sprintf("%s%d", t.Kind, t.Index)
}

func tagRef(t Tag) *Tag {
	return &t
}

func sameTag(ref *Tag, t Tag) bool {
	return ref != nil && *ref == t
}

// State is the state of a reservation station.
type State uint8

// Station states, in lifecycle order.
const (
	// StateFree means the station holds nothing.
	StateFree State = iota
	// StateBusy means an instruction is waiting for its operands.
	StateBusy
	// StateCalculating means the operands are resolved and the latency
	// countdown is running.
	StateCalculating
	// StateReady means the result is available for write-back.
	StateReady
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateFree:
		return "Free"
	case StateBusy:
		return "Busy"
	case StateCalculating:
		return "Calculating"
	case StateReady:
		return "Ready"
	default:
		return "Unknown"
	}
}

// Station is a reservation station slot.
//
// Vj and Vk hold resolved source values. Qj and Qk name the station that
// will produce a source that is not available yet. At most one of Vj/Qj
// (and Vk/Qk) is set at a time.
type Station struct {
	Tag   Tag
	State State
	Inst  *insts.Instruction

	// Vj is the first source (the stored value for SD).
	Vj *emu.Value
	// Vk is the second source (the offset for LD and SD).
	Vk *emu.Value
	Qj *Tag
	Qk *Tag

	// Addr is the base address of LD and SD.
	Addr *emu.Value
}

// resolved returns true when no operand is pending.
func (s *Station) resolved() bool {
	return s.Qj == nil && s.Qk == nil
}

// poll resolves pending operands from the functional unit table.
func (s *Station) poll(fu *FUTable) {
	if s.Qj != nil {
		if v, ok := fu.TryGetValue(*s.Qj); ok {
			s.Vj, s.Qj = v, nil
		}
	}

	if s.Qk != nil {
		if v, ok := fu.TryGetValue(*s.Qk); ok {
			s.Vk, s.Qk = v, nil
		}
	}
}

// capture delivers a broadcast value. It returns true if an operand was
// waiting on the producer.
func (s *Station) capture(producer Tag, value *emu.Value) bool {
	captured := false

	if sameTag(s.Qj, producer) {
		s.Vj, s.Qj = value, nil
		captured = true
	}

	if sameTag(s.Qk, producer) {
		s.Vk, s.Qk = value, nil
		captured = true
	}

	return captured
}

// Result returns the value computed by the held instruction. Arithmetic
// results are folded into constants when fold is set and both operands are
// numeric.
func (s *Station) Result(fold bool) *emu.Value {
	if s.Inst == nil {
		return nil
	}

	switch s.Inst.Op {
	case insts.OpLD:
		return emu.MemAddr(emu.Op(emu.OpAdd, s.Vk, s.Addr))
	case insts.OpSD:
		return s.Vj
	}

	if fold {
		return emu.Apply(s.Inst.Op.Operator(), s.Vj, s.Vk)
	}

	return emu.Op(s.Inst.Op.Operator(), s.Vj, s.Vk)
}

func (s *Station) clear() {
	s.State = StateFree
	s.Inst = nil
	s.Vj, s.Vk = nil, nil
	s.Qj, s.Qk = nil, nil
	s.Addr = nil
}
