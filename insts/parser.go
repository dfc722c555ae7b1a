package insts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/tomasim/emu"
)

// ParseError reports a malformed instruction line.
type ParseError struct {
	// Text is the offending line.
	Text string
	// Field names the part that failed: "line", "opcode", "dest", "src1"
	// or "src2".
	Field string
	// Reason describes the failure.
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s in %q: %s", e.Field, e.Text, e.Reason)
}

// Parser turns instruction text into instructions.
type Parser struct{}

// NewParser creates a new instruction parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses a single line of the form "OPCODE DEST SRC1 SRC2".
func (p *Parser) Parse(line string) (*Instruction, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return nil, &ParseError{
			Text:   line,
			Field:  "line",
			Reason: fmt.Sprintf("expected 4 fields, got %d", len(fields)),
		}
	}

	op, ok := ParseOp(fields[0])
	if !ok {
		return nil, &ParseError{Text: line, Field: "opcode", Reason: "unknown opcode " + fields[0]}
	}

	dest, err := emu.ParseUnit(fields[1])
	if err != nil {
		return nil, &ParseError{Text: line, Field: "dest", Reason: err.Error()}
	}
	if !dest.IsFP() {
		return nil, &ParseError{Text: line, Field: "dest", Reason: "destination must be a functional unit"}
	}

	src1, err := p.parseOperand(fields[2])
	if err != nil {
		return nil, &ParseError{Text: line, Field: "src1", Reason: err.Error()}
	}

	src2, err := p.parseOperand(fields[3])
	if err != nil {
		return nil, &ParseError{Text: line, Field: "src2", Reason: err.Error()}
	}

	return &Instruction{
		Op:      op,
		Dest:    dest,
		Src1:    src1,
		Src2:    src2,
		Latency: op.DefaultLatency(),
	}, nil
}

// parseOperand accepts a unit reference or a signed integer. Offsets may be
// written with trailing '+' signs, which are dropped.
func (p *Parser) parseOperand(s string) (*emu.Value, error) {
	if s[0] == 'F' || s[0] == 'R' {
		u, err := emu.ParseUnit(s)
		if err != nil {
			return nil, err
		}
		return emu.UnitRef(u), nil
	}

	n, err := strconv.ParseInt(strings.TrimRight(s, "+"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid literal %q", s)
	}

	return emu.Imm(n), nil
}
