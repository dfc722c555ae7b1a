package tomasulo

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
)

// Hook positions invoked by the Executer.
var (
	// HookPosInstIssued triggers after an instruction is applied to a
	// station. Item is the *insts.Instruction, Detail the station Tag.
	HookPosInstIssued = &sim.HookPos{Name: "InstIssued"}

	// HookPosInstWritten triggers when an instruction is written back.
	// Item is the *insts.Instruction, Detail the station Tag.
	HookPosInstWritten = &sim.HookPos{Name: "InstWritten"}

	// HookPosCycleEnd triggers once per cycle after write-back and
	// broadcast, before Ready stations are released. Item is a Snapshot.
	HookPosCycleEnd = &sim.HookPos{Name: "CycleEnd"}
)

// StationSnapshot is the state of one reservation station.
type StationSnapshot struct {
	Tag   Tag
	State State
	// Inst is a copy of the held instruction, nil for a free station.
	Inst *insts.Instruction

	Vj, Vk *emu.Value
	Qj, Qk *Tag
	Addr   *emu.Value
}

// UnitSnapshot is the state of one functional unit.
type UnitSnapshot struct {
	Unit  emu.Unit
	Owner *Tag
	Value *emu.Value
}

// Snapshot is the observable machine state at the end of a cycle.
type Snapshot struct {
	Cycle    uint64
	Finished bool

	// Pending is the number of instructions not issued yet.
	Pending int
	// Completed is the number of instructions written back so far.
	Completed int

	Stations []StationSnapshot
	Units    []UnitSnapshot
}

func snapshotStation(s *Station) StationSnapshot {
	snap := StationSnapshot{
		Tag:   s.Tag,
		State: s.State,
		Vj:    s.Vj,
		Vk:    s.Vk,
		Addr:  s.Addr,
	}

	if s.Inst != nil {
		inst := *s.Inst
		snap.Inst = &inst
	}

	if s.Qj != nil {
		snap.Qj = tagRef(*s.Qj)
	}

	if s.Qk != nil {
		snap.Qk = tagRef(*s.Qk)
	}

	return snap
}

func snapshotUnits(fu *FUTable) []UnitSnapshot {
	slots := fu.Slots()
	units := make([]UnitSnapshot, len(slots))

	for i, s := range slots {
		units[i] = UnitSnapshot{
			Unit:  emu.FP(uint8(2 * i)),
			Value: s.Value,
		}

		if s.Owner != nil {
			units[i].Owner = tagRef(*s.Owner)
		}
	}

	return units
}
