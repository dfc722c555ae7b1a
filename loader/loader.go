// Package loader reads instruction programs from text.
//
// A program is one instruction per line in the form "OPCODE DEST SRC1 SRC2".
// Anything after '#' or "//" is a comment, and blank lines are skipped.
package loader

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/sarchlab/tomasim/insts"
)

// Program is a loaded instruction sequence ready for scheduling.
type Program struct {
	// Name identifies the program, usually the file name.
	Name string
	// Insts holds the instructions in program order.
	Insts []*insts.Instruction
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Insts)
}

// Text renders the program back into source form.
func (p *Program) Text() string {
	var b strings.Builder
	for _, inst := range p.Insts {
		b.WriteString(inst.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Load reads a program from a file. The program is named after the file
// without its extension.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open program file")
	}
	defer func() { _ = f.Close() }()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	prog, err := Parse(name, f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}

	return prog, nil
}

// ParseString parses a program held in a string.
func ParseString(name, text string) (*Program, error) {
	return Parse(name, strings.NewReader(text))
}

// Parse reads a program from r. A single malformed line rejects the whole
// program; the error carries the line number and wraps the
// *insts.ParseError.
func Parse(name string, r io.Reader) (*Program, error) {
	parser := insts.NewParser()
	prog := &Program{Name: name}

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}

		inst, err := parser.Parse(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}

		prog.Insts = append(prog.Insts, inst)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read program")
	}

	return prog, nil
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}

	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}

	return strings.TrimSpace(line)
}
