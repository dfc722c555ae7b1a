// Package insts provides the floating-point instruction set of the simulator
// and its textual form.
//
// The instruction set has six opcodes: ADDD, SUBD, MULTD, DIVD, LD and SD.
// Each line of a program is one instruction:
//
//	OPCODE DEST SRC1 SRC2
//
// DEST is a functional unit (F0, F2, ..., F30). SRC1 and SRC2 are functional
// units, address registers (R<n>) or signed integers. Memory offsets may carry
// a trailing '+', as in "LD F6 34+ R2".
//
// Usage:
//
//	parser := insts.NewParser()
//	inst, err := parser.Parse("MULTD F0 F2 F4")
//	fmt.Printf("Op: %v, Dest: %v, Latency: %d\n", inst.Op, inst.Dest, inst.Latency)
package insts
