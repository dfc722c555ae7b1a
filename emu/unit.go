package emu

import (
	"fmt"
	"strconv"
)

// NumFPUnits is the number of floating-point functional units (F0-F30).
// Functional units are addressed by even ids only.
const NumFPUnits = 16

// UnitKind tells which file a unit reference points into.
type UnitKind uint8

const (
	// UnitFP is a floating-point functional unit (F0, F2, ..., F30).
	UnitFP UnitKind = iota
	// UnitReg is an integer address register (R0-R255).
	UnitReg
)

// Unit references a functional unit or an address register.
type Unit struct {
	Kind UnitKind
	ID   uint8
}

// FP returns a reference to functional unit F<id>. It panics if id is odd or
// out of range, use ParseUnit for untrusted input.
func FP(id uint8) Unit {
	if id%2 != 0 || int(id) >= 2*NumFPUnits {
		panic(fmt.Sprintf("invalid functional unit F%d", id))
	}

	return Unit{Kind: UnitFP, ID: id}
}

// Reg returns a reference to address register R<id>.
func Reg(id uint8) Unit {
	return Unit{Kind: UnitReg, ID: id}
}

// IsFP returns true if the unit is a floating-point functional unit.
func (u Unit) IsFP() bool {
	return u.Kind == UnitFP
}

// Slot returns the index of a functional unit in a table of NumFPUnits slots.
func (u Unit) Slot() int {
	return int(u.ID) / 2
}

// String renders F units with two digits (F06) and registers as R<n>.
func (u Unit) String() string {
	if u.Kind == UnitFP {
		return fmt.Sprintf("F%02d", u.ID)
	}

	return fmt.Sprintf("R%d", u.ID)
}

// ParseUnit parses "F<n>" or "R<n>". Functional unit ids must be even and
// below 2*NumFPUnits.
func ParseUnit(s string) (Unit, error) {
	if len(s) < 2 {
		return Unit{}, fmt.Errorf("invalid unit %q", s)
	}

	id, err := strconv.ParseUint(s[1:], 10, 8)
	if err != nil {
		return Unit{}, fmt.Errorf("invalid unit %q", s)
	}

	switch s[0] {
	case 'F':
		if id%2 != 0 || id >= 2*NumFPUnits {
			return Unit{}, fmt.Errorf(
				"functional unit %q must be even and below F%d", s, 2*NumFPUnits)
		}
		return Unit{Kind: UnitFP, ID: uint8(id)}, nil
	case 'R':
		return Unit{Kind: UnitReg, ID: uint8(id)}, nil
	default:
		return Unit{}, fmt.Errorf("invalid unit %q", s)
	}
}
