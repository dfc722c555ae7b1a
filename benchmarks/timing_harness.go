package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

// Version is reported in the JSON metadata.
const Version = "0.3.0"

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the scheduler
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsCompleted is the number of written back instructions
	InstructionsCompleted uint64 `json:"instructions_completed"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// StructuralStalls is the number of cycles issue waited for a station
	StructuralStalls uint64 `json:"structural_stalls"`

	// OperandWaitCycles sums the cycles stations waited for operands
	OperandWaitCycles uint64 `json:"operand_wait_cycles"`

	// Broadcasts is the number of operands delivered by broadcast
	Broadcasts uint64 `json:"broadcasts"`

	// ExpectedCycles is the reference cycle count, 0 if unknown
	ExpectedCycles uint64 `json:"expected_cycles,omitempty"`

	// Timings holds the lifecycle cycles of every instruction
	Timings []InstTiming `json:"timings,omitempty"`

	// Error is set if the program failed to load or run
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Matched returns true if the run produced the expected cycle count.
func (r BenchmarkResult) Matched() bool {
	return r.Error == "" &&
		(r.ExpectedCycles == 0 || r.ExpectedCycles == r.SimulatedCycles)
}

// InstTiming is the lifecycle of one instruction in a result.
type InstTiming struct {
	Instruction string `json:"instruction"`
	Issue       uint64 `json:"issue"`
	Start       uint64 `json:"start"`
	Exec        uint64 `json:"exec"`
	Write       uint64 `json:"write"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Program is the instruction text, one instruction per line
	Program string

	// ExpectedCycles is the cycle count under the default configuration
	ExpectedCycles uint64
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Scheduler configures the reservation stations and the cycle ceiling
	Scheduler tomasulo.Config

	// Timing sets the instruction latencies (default: nil, opcode defaults)
	Timing *latency.TimingConfig

	// Freq is the core frequency used by the engine
	Freq sim.Freq

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Scheduler: tomasulo.DefaultConfig(),
		Freq:      1 * sim.GHz,
		Output:    os.Stdout,
		Verbose:   false,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
	hooks      []sim.Hook
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Freq == 0 {
		config.Freq = 1 * sim.GHz
	}
	if config.Scheduler == (tomasulo.Config{}) {
		config.Scheduler = tomasulo.DefaultConfig()
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// AcceptHook registers a hook with the core of every benchmark run.
func (h *Harness) AcceptHook(hook sim.Hook) {
	h.hooks = append(h.hooks, hook)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

// runBenchmark executes a single benchmark on a fresh engine and core.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:           bench.Name,
		Description:    bench.Description,
		ExpectedCycles: bench.ExpectedCycles,
	}

	prog, err := bench.Load()
	if err != nil {
		result.Error = err.Error()
		return result
	}

	latencyTable := latency.NewTable()
	if h.config.Timing != nil {
		latencyTable = latency.NewTableWithConfig(h.config.Timing)
	}

	executer := tomasulo.NewExecuter(
		tomasulo.WithConfig(h.config.Scheduler),
		tomasulo.WithLatencyTable(latencyTable),
	)
	executer.AddInsts(prog.Insts)

	engine := sim.NewSerialEngine()
	c := core.MakeBuilder().
		WithEngine(engine).
		WithFreq(h.config.Freq).
		WithExecuter(executer).
		Build("Core")

	for _, hook := range h.hooks {
		c.AcceptHook(hook)
	}

	start := time.Now()
	err = c.Run()
	result.WallTime = time.Since(start)

	if err != nil {
		result.Error = err.Error()
	}

	stats := c.Stats()
	result.SimulatedCycles = stats.Cycles
	result.InstructionsCompleted = stats.Instructions
	result.CPI = stats.CPI()
	result.StructuralStalls = stats.StructuralStalls
	result.OperandWaitCycles = stats.OperandWaitCycles
	result.Broadcasts = stats.Broadcasts
	result.Timings = timings(executer.Results())

	if h.config.Verbose {
		_, _ = fmt.Fprintf(h.config.Output, "ran %s: %d cycles\n",
			bench.Name, stats.Cycles)
	}

	return result
}

func timings(results []*insts.Instruction) []InstTiming {
	out := make([]InstTiming, 0, len(results))
	for _, inst := range results {
		out = append(out, InstTiming{
			Instruction: inst.String(),
			Issue:       inst.EmitCycle,
			Start:       inst.StartCycle,
			Exec:        inst.ExecCycle,
			Write:       inst.WriteCycle,
		})
	}
	return out
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Tomasulo Scheduler Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		if r.Error != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Error: %s\n", r.Error)
		}
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:       %d\n", r.SimulatedCycles)
		if r.ExpectedCycles > 0 {
			_, _ = fmt.Fprintf(h.config.Output, "  Expected Cycles:        %d\n", r.ExpectedCycles)
		}
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Completed: %d\n", r.InstructionsCompleted)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                    %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Structural Stalls:      %d\n", r.StructuralStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Operand Wait Cycles:    %d\n", r.OperandWaitCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Broadcasts:             %d\n", r.Broadcasts)
		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,expected_cycles,instructions,cpi,structural_stalls,operand_wait_cycles,broadcasts")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%.3f,%d,%d,%d\n",
			r.Name,
			r.SimulatedCycles,
			r.ExpectedCycles,
			r.InstructionsCompleted,
			r.CPI,
			r.StructuralStalls,
			r.OperandWaitCycles,
			r.Broadcasts,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Version of the simulator
	Version string `json:"version"`

	// Config describes the scheduler configuration
	Config tomasulo.Config `json:"config"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// Mismatched is the number of benchmarks that failed or missed their
	// expected cycle count
	Mismatched int `json:"mismatched"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalInstructions is the sum of all completed instructions
	TotalInstructions uint64 `json:"total_instructions"`

	// AverageCPI is the average cycles per instruction
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// Summarize computes aggregate statistics over results.
func Summarize(results []BenchmarkResult) ReportSummary {
	s := ReportSummary{TotalBenchmarks: len(results)}

	for _, r := range results {
		s.TotalCycles += r.SimulatedCycles
		s.TotalInstructions += r.InstructionsCompleted
		s.TotalWallTime += r.WallTime
		if !r.Matched() {
			s.Mismatched++
		}
	}

	if s.TotalInstructions > 0 {
		s.AverageCPI = float64(s.TotalCycles) / float64(s.TotalInstructions)
	}

	return s
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   Version,
			Config:    h.config.Scheduler,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
