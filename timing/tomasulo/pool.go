package tomasulo

import (
	"fmt"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
)

// Pool is the fixed set of reservation stations. Stations are created once,
// grouped by kind in the order ADD, MULT, LOAD, STORE, and recycled after
// every write-back.
type Pool struct {
	stations []*Station
}

// NewPool creates a pool with the given number of stations per kind.
func NewPool(config StationConfig) *Pool {
	p := &Pool{}

	for kind := insts.StationKind(0); kind < insts.NumStationKinds; kind++ {
		for i := 0; i < config.Count(kind); i++ {
			p.stations = append(p.stations, &Station{
				Tag: Tag{Kind: kind, Index: uint8(i)},
			})
		}
	}

	return p
}

// Stations returns all stations in pool order.
func (p *Pool) Stations() []*Station {
	return p.stations
}

// Station returns the station of a tag, nil if there is none.
func (p *Pool) Station(tag Tag) *Station {
	for _, s := range p.stations {
		if s.Tag == tag {
			return s
		}
	}
	return nil
}

// Busy returns the number of stations that are not free.
func (p *Pool) Busy() int {
	n := 0
	for _, s := range p.stations {
		if s.State != StateFree {
			n++
		}
	}
	return n
}

// Reset frees every station.
func (p *Pool) Reset() {
	for _, s := range p.stations {
		s.clear()
	}
}

// FindFree returns the first free station of a kind.
func (p *Pool) FindFree(kind insts.StationKind) (Tag, bool) {
	for _, s := range p.stations {
		if s.Tag.Kind == kind && s.State == StateFree {
			return s.Tag, true
		}
	}
	return Tag{}, false
}

// Apply places an instruction into a free station and resolves its
// operands against the functional unit table.
//
// LD and SD take their base address as is and resolve the offset into
// Vk/Qk. SD also resolves the stored register, named by its DEST field,
// into Vj/Qj. Arithmetic resolves both sources, which must be functional
// units. The station is left untouched if an error is returned.
func (p *Pool) Apply(
	tag Tag,
	inst *insts.Instruction,
	fu *FUTable,
	cycle uint64,
) error {
	s := p.Station(tag)
	if s == nil {
		return &InvariantError{Inst: inst.String(), Reason: fmt.Sprintf("no station %s", tag)}
	}

	if s.State != StateFree {
		return &InvariantError{
			Inst:   inst.String(),
			Reason: fmt.Sprintf("station %s is %s", tag, s.State),
		}
	}

	if inst.Op.Station() != tag.Kind {
		return &InvariantError{
			Inst:   inst.String(),
			Reason: fmt.Sprintf("%s cannot issue into %s", inst.Op, tag),
		}
	}

	if inst.Op.IsMemory() {
		p.applyMemory(s, inst, fu)
	} else if err := p.applyArithmetic(s, inst, fu); err != nil {
		return err
	}

	inst.Emit(cycle)
	s.Inst = inst
	s.State = StateBusy

	return nil
}

func (p *Pool) applyMemory(s *Station, inst *insts.Instruction, fu *FUTable) {
	s.Addr = inst.Src2
	s.Vk, s.Qk = resolve(inst.Src1, fu)

	if inst.Op == insts.OpSD {
		s.Vj, s.Qj = fu.Lookup(inst.Dest)
	}
}

func (p *Pool) applyArithmetic(s *Station, inst *insts.Instruction, fu *FUTable) error {
	j, err := fpOperand(inst, inst.Src1)
	if err != nil {
		return err
	}

	k, err := fpOperand(inst, inst.Src2)
	if err != nil {
		return err
	}

	s.Vj, s.Qj = fu.Lookup(j)
	s.Vk, s.Qk = fu.Lookup(k)

	return nil
}

func fpOperand(inst *insts.Instruction, v *emu.Value) (emu.Unit, error) {
	u, ok := v.AsUnit()
	if !ok || !u.IsFP() {
		return emu.Unit{}, &InvariantError{
			Inst:   inst.String(),
			Reason: fmt.Sprintf("operand %s is not a functional unit", v),
		}
	}
	return u, nil
}

// resolve looks functional units up in the table. Any other operand is
// already a value.
func resolve(v *emu.Value, fu *FUTable) (*emu.Value, *Tag) {
	if u, ok := v.AsUnit(); ok && u.IsFP() {
		return fu.Lookup(u)
	}
	return v, nil
}

// Tick runs the execute phase of one cycle.
//
// Busy stations whose operands are all resolved start calculating; the
// others poll the functional unit table for the values they wait on. Then
// every calculating station advances its instruction. Stations that finish
// become Ready and are returned in pool order.
func (p *Pool) Tick(fu *FUTable, cycle uint64) []Tag {
	for _, s := range p.stations {
		if s.State != StateBusy {
			continue
		}

		if s.resolved() {
			s.State = StateCalculating
			continue
		}

		s.poll(fu)
	}

	var ready []Tag
	for _, s := range p.stations {
		if s.State != StateCalculating {
			continue
		}

		if s.Inst.Advance(cycle) {
			s.State = StateReady
			ready = append(ready, s.Tag)
		}
	}

	return ready
}

// Broadcast delivers the result of producer to every busy or calculating
// station waiting on it. It returns the number of stations that captured
// the value.
func (p *Pool) Broadcast(producer Tag, value *emu.Value) int {
	n := 0

	for _, s := range p.stations {
		if s.Tag == producer {
			continue
		}

		if s.State != StateBusy && s.State != StateCalculating {
			continue
		}

		if s.capture(producer, value) {
			n++
		}
	}

	return n
}

// Release frees a Ready station.
func (p *Pool) Release(tag Tag) error {
	s := p.Station(tag)
	if s == nil || s.State != StateReady {
		return &InvariantError{Reason: fmt.Sprintf("cannot release %s: not ready", tag)}
	}

	s.clear()
	return nil
}
