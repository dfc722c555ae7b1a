// Package emu provides the symbolic functional model of the simulator.
//
// Values never hold real memory contents. A result is either a numeric leaf
// or an expression tree describing how it was produced, for example
// M[(34+R2)] for a load or ((F02*F04)/F06) for a chain of arithmetic.
package emu

import (
	"fmt"
	"strconv"
)

// Operator is a binary arithmetic operator carried by an operation value.
type Operator uint8

// Operators.
const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
)

// Symbol returns the infix symbol of the operator.
func (o Operator) Symbol() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

// Kind is the variant tag of a Value.
type Kind uint8

// Value kinds.
const (
	KindImm Kind = iota
	KindFloat
	KindUnit
	KindMemAddr
	KindOp
)

// Value is an immutable symbolic operand or result.
//
// Values are built only through the constructors of this package, so every
// child exists before its parent and the structure is always acyclic. A
// *Value can be shared freely between stations and functional units.
type Value struct {
	kind Kind

	imm   int64
	float float64
	unit  Unit

	op          Operator
	left, right *Value
}

// Imm creates an immediate integer value.
func Imm(v int64) *Value {
	return &Value{kind: KindImm, imm: v}
}

// Float creates a floating-point constant.
func Float(v float64) *Value {
	return &Value{kind: KindFloat, float: v}
}

// UnitRef creates a reference to a functional unit or register.
func UnitRef(u Unit) *Value {
	return &Value{kind: KindUnit, unit: u}
}

// MemAddr wraps an address expression into a memory reference.
func MemAddr(addr *Value) *Value {
	mustNotBeNil(addr)
	return &Value{kind: KindMemAddr, left: addr}
}

// Op creates a deferred binary operation. It never folds.
func Op(op Operator, left, right *Value) *Value {
	mustNotBeNil(left)
	mustNotBeNil(right)

	return &Value{kind: KindOp, op: op, left: left, right: right}
}

// Apply creates the result of applying op to left and right. When both
// operands are numeric leaves the result is folded into a Float, except for
// a division by zero, which is kept symbolic.
func Apply(op Operator, left, right *Value) *Value {
	if !left.IsNumeric() || !right.IsNumeric() {
		return Op(op, left, right)
	}

	l, r := left.number(), right.number()

	switch op {
	case OpAdd:
		return Float(l + r)
	case OpSub:
		return Float(l - r)
	case OpMul:
		return Float(l * r)
	case OpDiv:
		if r == 0 {
			return Op(op, left, right)
		}
		return Float(l / r)
	}

	return Op(op, left, right)
}

func mustNotBeNil(v *Value) {
	if v == nil {
		panic("value must not be nil")
	}
}

// Kind returns the variant tag of the value.
func (v *Value) Kind() Kind {
	return v.kind
}

// IsNumeric returns true for immediate and float leaves.
func (v *Value) IsNumeric() bool {
	return v != nil && (v.kind == KindImm || v.kind == KindFloat)
}

func (v *Value) number() float64 {
	if v.kind == KindImm {
		return float64(v.imm)
	}
	return v.float
}

// AsImm returns the integer of an immediate leaf.
func (v *Value) AsImm() (int64, bool) {
	return v.imm, v.kind == KindImm
}

// AsFloat returns the constant of a float leaf.
func (v *Value) AsFloat() (float64, bool) {
	return v.float, v.kind == KindFloat
}

// AsUnit returns the referenced unit of a unit leaf.
func (v *Value) AsUnit() (Unit, bool) {
	return v.unit, v.kind == KindUnit
}

// Inner returns the address expression of a memory reference.
func (v *Value) Inner() *Value {
	if v.kind != KindMemAddr {
		return nil
	}
	return v.left
}

// Operator returns the operator of an operation value.
func (v *Value) Operator() Operator {
	return v.op
}

// Operands returns both sides of an operation value.
func (v *Value) Operands() (left, right *Value) {
	if v.kind != KindOp {
		return nil, nil
	}
	return v.left, v.right
}

// Equal compares two values structurally. Two nil values are equal.
func Equal(a, b *Value) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindImm:
		return a.imm == b.imm
	case KindFloat:
		return a.float == b.float
	case KindUnit:
		return a.unit == b.unit
	case KindMemAddr:
		return Equal(a.left, b.left)
	case KindOp:
		return a.op == b.op && Equal(a.left, b.left) && Equal(a.right, b.right)
	}

	return false
}

// String renders the full expression, e.g. M[(34+R2)].
func (v *Value) String() string {
	if v == nil {
		return "-"
	}

	switch v.kind {
	case KindImm:
		return strconv.FormatInt(v.imm, 10)
	case KindFloat:
		return fmt.Sprintf("%.2f", v.float)
	case KindUnit:
		return v.unit.String()
	case KindMemAddr:
		return "M[" + v.left.String() + "]"
	case KindOp:
		return "(" + v.left.String() + v.op.Symbol() + v.right.String() + ")"
	}

	return "?"
}

// Brief renders leaves in full and composites abbreviated, so that deep
// trees fit into a station table cell.
func (v *Value) Brief() string {
	if v == nil {
		return "-"
	}

	switch v.kind {
	case KindMemAddr:
		return "M[..]"
	case KindOp:
		return ".." + v.op.Symbol() + ".."
	}

	return v.String()
}
