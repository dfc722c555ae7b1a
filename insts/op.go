package insts

import "github.com/sarchlab/tomasim/emu"

// Op represents a floating-point opcode.
type Op uint8

// Opcodes.
const (
	OpUnknown Op = iota
	OpADDD
	OpSUBD
	OpMULTD
	OpDIVD
	OpLD
	OpSD
)

var opNames = map[Op]string{
	OpADDD:  "ADDD",
	OpSUBD:  "SUBD",
	OpMULTD: "MULTD",
	OpDIVD:  "DIVD",
	OpLD:    "LD",
	OpSD:    "SD",
}

// String returns the mnemonic.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseOp parses a mnemonic. Mnemonics are case sensitive.
func ParseOp(s string) (Op, bool) {
	for op, name := range opNames {
		if name == s {
			return op, true
		}
	}
	return OpUnknown, false
}

// StationKind is the class of reservation station an opcode issues into.
type StationKind uint8

// Station kinds.
const (
	StationAdd StationKind = iota
	StationMult
	StationLoad
	StationStore
)

// NumStationKinds is the number of station kinds.
const NumStationKinds = 4

// String returns the station class name.
func (k StationKind) String() string {
	switch k {
	case StationAdd:
		return "ADD"
	case StationMult:
		return "MULT"
	case StationLoad:
		return "LOAD"
	case StationStore:
		return "STORE"
	default:
		return "UNKNOWN"
	}
}

// Station returns the kind of reservation station the opcode needs.
func (op Op) Station() StationKind {
	switch op {
	case OpMULTD, OpDIVD:
		return StationMult
	case OpLD:
		return StationLoad
	case OpSD:
		return StationStore
	default:
		return StationAdd
	}
}

// Operator returns the arithmetic operator of ADDD, SUBD, MULTD and DIVD.
// Memory opcodes compute addresses and report OpAdd.
func (op Op) Operator() emu.Operator {
	switch op {
	case OpSUBD:
		return emu.OpSub
	case OpMULTD:
		return emu.OpMul
	case OpDIVD:
		return emu.OpDiv
	default:
		return emu.OpAdd
	}
}

// IsMemory returns true for LD and SD.
func (op Op) IsMemory() bool {
	return op == OpLD || op == OpSD
}

// WritesUnit returns true if the opcode produces a functional unit result.
// Only SD does not: its DEST field names the register being stored.
func (op Op) WritesUnit() bool {
	return op != OpSD && op != OpUnknown
}

// DefaultLatency returns the number of calculating cycles of the opcode.
func (op Op) DefaultLatency() uint64 {
	switch op {
	case OpMULTD:
		return 10
	case OpDIVD:
		return 20
	default:
		return 2
	}
}
