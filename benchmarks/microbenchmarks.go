// Package benchmarks provides named scheduler programs and a harness that
// times them.
package benchmarks

import (
	"fmt"

	"github.com/sarchlab/tomasim/loader"
)

// GetReferencePrograms returns the two classic Tomasulo programs.
func GetReferencePrograms() []Benchmark {
	return []Benchmark{
		referenceLoop(),
		referenceStore(),
	}
}

// GetMicrobenchmarks returns small programs that each isolate one scheduler
// characteristic.
//
// ExpectedCycles holds the cycle count under the default configuration.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		independentAdds(),
		dependencyChain(),
		multiplyPressure(),
		divideLatency(),
		loadStore(),
		wawRename(),
	}
}

// All returns every named program.
func All() []Benchmark {
	return append(GetReferencePrograms(), GetMicrobenchmarks()...)
}

// Find returns the program with the given name.
func Find(name string) (Benchmark, bool) {
	for _, b := range All() {
		if b.Name == name {
			return b, true
		}
	}
	return Benchmark{}, false
}

// Load parses the program text of a benchmark.
func (b Benchmark) Load() (*loader.Program, error) {
	prog, err := loader.ParseString(b.Name, b.Program)
	if err != nil {
		return nil, fmt.Errorf("benchmark %s: %w", b.Name, err)
	}
	return prog, nil
}

func referenceLoop() Benchmark {
	return Benchmark{
		Name:        "reference_loop",
		Description: "two loads feeding a multiply, a divide and an add chain",
		Program: `
LD F6 34+ R2
LD F2 45+ R3
MULTD F0 F2 F4
SUBD F8 F6 F2
DIVD F10 F0 F6
ADDD F6 F8 F2
`,
		ExpectedCycles: 36,
	}
}

func referenceStore() Benchmark {
	return Benchmark{
		Name:        "reference_store",
		Description: "renamed multiplies stored twice; stalls on the MULT stations",
		Program: `
LD F2 0 R2
LD F4 0 R3
DIVD F0 F4 F2
MULTD F6 F0 F2
ADDD F0 F4 F2
SD F6 0 R3
MULTD F6 F0 F2
SD F6 0 R1
`,
		ExpectedCycles: 39,
	}
}

// 1. Independent adds - one issue per cycle with recycled ADD stations
func independentAdds() Benchmark {
	return Benchmark{
		Name:        "independent_adds",
		Description: "5 independent ADDD - measures issue throughput",
		Program: `
ADDD F0 F2 F4
ADDD F6 F2 F4
ADDD F8 F2 F4
ADDD F10 F2 F4
ADDD F12 F2 F4
`,
		ExpectedCycles: 7,
	}
}

// 2. Dependency chain - every link pays the latency plus the broadcast
func dependencyChain() Benchmark {
	return Benchmark{
		Name:        "dependency_chain",
		Description: "4 dependent ADDD - measures broadcast to start latency",
		Program: `
ADDD F0 F2 F4
ADDD F6 F0 F2
ADDD F8 F6 F2
ADDD F10 F8 F2
`,
		ExpectedCycles: 12,
	}
}

// 3. Multiply pressure - more multiplies than MULT stations
func multiplyPressure() Benchmark {
	return Benchmark{
		Name:        "multiply_pressure",
		Description: "4 independent MULTD on 2 MULT stations - measures structural stalls",
		Program: `
MULTD F0 F2 F4
MULTD F6 F2 F4
MULTD F8 F2 F4
MULTD F10 F2 F4
`,
		ExpectedCycles: 23,
	}
}

// 4. Divide latency - a consumer waiting on a divide
func divideLatency() Benchmark {
	return Benchmark{
		Name:        "divide_latency",
		Description: "ADDD waiting on DIVD - measures the divide latency",
		Program: `
DIVD F0 F2 F4
ADDD F6 F0 F2
`,
		ExpectedCycles: 24,
	}
}

// 5. Load and store - data flows from a load through a multiply into a store
func loadStore() Benchmark {
	return Benchmark{
		Name:        "load_store",
		Description: "LD -> MULTD -> SD - measures the memory path",
		Program: `
LD F2 0 R1
MULTD F4 F2 F2
SD F4 0 R2
`,
		ExpectedCycles: 17,
	}
}

// 6. WAW rename - a younger write overtakes an older one
func wawRename() Benchmark {
	return Benchmark{
		Name:        "waw_rename",
		Description: "ADDD overwrites the DIVD destination - measures renaming",
		Program: `
DIVD F0 F2 F4
ADDD F0 F4 F6
ADDD F8 F0 F2
`,
		ExpectedCycles: 21,
	}
}
