package tomasulo

import (
	"fmt"

	"github.com/sarchlab/tomasim/emu"
)

// FUSlot is one entry of the functional unit table.
type FUSlot struct {
	// Owner is the station that will write the next value, nil if no
	// instruction has claimed the unit.
	Owner *Tag
	// Value is the resident value, nil while the owner has not written.
	Value *emu.Value
}

// FUTable tracks, for every functional unit F0-F30, which station owns it
// and the value it currently holds. It is the rename table of the machine.
type FUTable struct {
	slots [emu.NumFPUnits]FUSlot
}

// NewFUTable creates a table seeded with F<2i> = 2i.
func NewFUTable() *FUTable {
	t := &FUTable{}
	t.Reset()
	return t
}

// Reset drops all owners and restores the seed values.
func (t *FUTable) Reset() {
	for i := range t.slots {
		t.slots[i] = FUSlot{Value: emu.Float(float64(2 * i))}
	}
}

func (t *FUTable) slot(u emu.Unit) *FUSlot {
	if !u.IsFP() {
		panic(fmt.Sprintf("%s is not a functional unit", u))
	}
	return &t.slots[u.Slot()]
}

// MarkBusy hands the unit to a new owner and clears its value.
//
// Any other unit still labelled with the same tag loses the label but keeps
// its value. The tag is being recycled, and the earlier result it names has
// already been written and broadcast.
func (t *FUTable) MarkBusy(u emu.Unit, owner Tag) {
	for i := range t.slots {
		if sameTag(t.slots[i].Owner, owner) {
			t.slots[i].Owner = nil
		}
	}

	s := t.slot(u)
	s.Owner = tagRef(owner)
	s.Value = nil
}

// MarkReady installs a value written by owner. The write is dropped if the
// unit has been claimed by another station since, so a slow instruction can
// never overwrite the result of a younger one. It returns true if the value
// was installed.
func (t *FUTable) MarkReady(u emu.Unit, owner Tag, value *emu.Value) bool {
	s := t.slot(u)
	if !sameTag(s.Owner, owner) {
		return false
	}

	s.Value = value
	return true
}

// TryGetValue returns the value of the unit currently owned by owner, if
// that value has been written.
func (t *FUTable) TryGetValue(owner Tag) (*emu.Value, bool) {
	for i := range t.slots {
		s := &t.slots[i]
		if sameTag(s.Owner, owner) && s.Value != nil {
			return s.Value, true
		}
	}
	return nil, false
}

// Lookup resolves a source operand at issue time. It returns the resident
// value, or the tag to wait on when the owner has not written yet.
func (t *FUTable) Lookup(u emu.Unit) (*emu.Value, *Tag) {
	s := t.slot(u)
	if s.Value != nil {
		return s.Value, nil
	}
	return nil, tagRef(*s.Owner)
}

// Slot returns a copy of the entry of unit u.
func (t *FUTable) Slot(u emu.Unit) FUSlot {
	return *t.slot(u)
}

// Slots returns a copy of all entries, indexed by unit id / 2.
func (t *FUTable) Slots() []FUSlot {
	slots := make([]FUSlot, len(t.slots))
	copy(slots, t.slots[:])
	return slots
}
