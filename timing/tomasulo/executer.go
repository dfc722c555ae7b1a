// Package tomasulo implements Tomasulo's dynamic scheduling algorithm.
//
// # Reading Guide
//
//   - station.go: a reservation station and its Free → Busy → Calculating →
//     Ready state machine
//   - futable.go: the functional unit table used for register renaming
//   - pool.go: the station pool, operand resolution and the broadcast
//   - executer.go: the cycle driver
//
// Every cycle the Executer runs five phases in a fixed order:
//
//  1. Issue the oldest pending instruction, if a station of its kind is free.
//  2. Execute: start stations with resolved operands, advance the others.
//  3. Write back every station that finished this cycle.
//  4. Broadcast the written results to the stations waiting on them.
//  5. Report the cycle through hooks, then release the written stations.
//
// Stalled instructions are not woken by callbacks. They poll the functional
// unit table every cycle and receive values through the broadcast of the
// same cycle the result is written.
package tomasulo

import (
	"log"
	"sort"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
)

// Statistics holds scheduler performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions written back.
	Instructions uint64
	// StructuralStalls is the number of cycles issue was blocked because no
	// station of the needed kind was free.
	StructuralStalls uint64
	// OperandWaitCycles sums, over all cycles, the stations left waiting
	// for an operand after the execute phase.
	OperandWaitCycles uint64
	// Broadcasts is the number of operands delivered by broadcast.
	Broadcasts uint64
}

// CPI returns the cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Option is a functional option for configuring the Executer.
type Option func(*Executer)

// WithConfig sets the scheduler configuration.
func WithConfig(config Config) Option {
	return func(e *Executer) {
		e.config = config
	}
}

// WithLatencyTable sets the latency table used to time added instructions.
func WithLatencyTable(table *latency.Table) Option {
	return func(e *Executer) {
		e.latencyTable = table
	}
}

// WithLogger enables debug logging of issue and write-back events.
func WithLogger(logger *log.Logger) Option {
	return func(e *Executer) {
		e.logger = logger
	}
}

type writeResult struct {
	tag   Tag
	value *emu.Value
}

// Executer owns the program backlog, the station pool and the functional
// unit table, and drives them cycle by cycle.
type Executer struct {
	sim.HookableBase

	config       Config
	latencyTable *latency.Table
	logger       *log.Logger

	pool *Pool
	fu   *FUTable

	backlog   []*insts.Instruction
	completed []*insts.Instruction
	total     int

	cycle  uint64
	stats  Statistics
	trace  []Snapshot
	failed error
}

// NewExecuter creates an Executer. It panics if the configuration is
// invalid.
func NewExecuter(opts ...Option) *Executer {
	e := &Executer{
		config:       DefaultConfig(),
		latencyTable: latency.NewTable(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := e.config.Validate(); err != nil {
		log.Panicf("invalid scheduler config: %v", err)
	}

	e.pool = NewPool(e.config.Stations)
	e.fu = NewFUTable()

	return e
}

// AddInsts appends instructions to the backlog. The Executer works on
// copies; the given instructions are not modified.
func (e *Executer) AddInsts(list []*insts.Instruction) {
	for _, inst := range list {
		c := inst.Clone()
		if e.latencyTable != nil {
			e.latencyTable.Assign(c)
		}

		e.backlog = append(e.backlog, c)
	}

	e.total += len(list)
}

// Config returns the scheduler configuration.
func (e *Executer) Config() Config {
	return e.config
}

// Pool returns the reservation station pool.
func (e *Executer) Pool() *Pool {
	return e.pool
}

// FUTable returns the functional unit table.
func (e *Executer) FUTable() *FUTable {
	return e.fu
}

// Cycle returns the number of the last simulated cycle.
func (e *Executer) Cycle() uint64 {
	return e.cycle
}

// Pending returns the instructions that have not been issued yet.
func (e *Executer) Pending() []*insts.Instruction {
	return e.backlog
}

// Finished returns true once every added instruction has been written back.
func (e *Executer) Finished() bool {
	return len(e.completed) == e.total
}

// Stats returns the scheduler statistics.
func (e *Executer) Stats() Statistics {
	return e.stats
}

// Trace returns the snapshots of all cycles simulated so far.
func (e *Executer) Trace() []Snapshot {
	return e.trace
}

// Results returns the completed instructions ordered by issue cycle.
func (e *Executer) Results() []*insts.Instruction {
	results := make([]*insts.Instruction, len(e.completed))
	copy(results, e.completed)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].EmitCycle < results[j].EmitCycle
	})

	return results
}

// Run executes cycles until every instruction is written back or an error
// stops the run.
func (e *Executer) Run() error {
	for !e.Finished() {
		if err := e.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// RunCycles executes at most the given number of cycles. It returns true if
// the program is still running.
func (e *Executer) RunCycles(cycles uint64) (bool, error) {
	for i := uint64(0); i < cycles && !e.Finished(); i++ {
		if err := e.Tick(); err != nil {
			return false, err
		}
	}
	return !e.Finished(), nil
}

// Tick executes one cycle. Once a cycle fails, every later call returns the
// same error.
func (e *Executer) Tick() error {
	if e.failed != nil {
		return e.failed
	}

	if e.Finished() {
		return nil
	}

	if e.cycle >= e.config.MaxCycles {
		return e.fail(&DivergenceError{
			MaxCycles: e.config.MaxCycles,
			Completed: len(e.completed),
			Total:     e.total,
			Trace:     e.trace,
		})
	}

	e.cycle++
	e.stats.Cycles++

	if err := e.issue(); err != nil {
		return e.fail(err)
	}

	ready := e.pool.Tick(e.fu, e.cycle)
	e.countOperandWaits()

	results := e.writeBack(ready)
	e.broadcast(results)
	e.report()

	for _, tag := range ready {
		if err := e.pool.Release(tag); err != nil {
			return e.fail(err)
		}
	}

	return nil
}

func (e *Executer) fail(err error) error {
	e.failed = err
	e.logf("cycle %d: %v", e.cycle, err)
	return err
}

func (e *Executer) issue() error {
	if len(e.backlog) == 0 {
		return nil
	}

	inst := e.backlog[0]

	tag, ok := e.pool.FindFree(inst.Op.Station())
	if !ok {
		e.stats.StructuralStalls++
		e.logf("cycle %d: %s stalled, no free %s station",
			e.cycle, inst, inst.Op.Station())
		return nil
	}

	if err := e.pool.Apply(tag, inst, e.fu, e.cycle); err != nil {
		return err
	}

	e.backlog = e.backlog[1:]

	if inst.Op.WritesUnit() {
		e.fu.MarkBusy(inst.Dest, tag)
	}

	e.logf("cycle %d: issue %s -> %s", e.cycle, inst, tag)
	e.InvokeHook(sim.HookCtx{
		Domain: e,
		Pos:    HookPosInstIssued,
		Item:   inst,
		Detail: tag,
	})

	return nil
}

func (e *Executer) countOperandWaits() {
	for _, s := range e.pool.Stations() {
		if s.State == StateBusy && !s.resolved() {
			e.stats.OperandWaitCycles++
		}
	}
}

func (e *Executer) writeBack(ready []Tag) []writeResult {
	var results []writeResult

	for _, tag := range ready {
		s := e.pool.Station(tag)
		inst := s.Inst
		value := s.Result(e.config.FoldConstants)

		if inst.Op.WritesUnit() {
			if !e.fu.MarkReady(inst.Dest, tag, value) {
				e.logf("cycle %d: %s result for %s superseded",
					e.cycle, tag, inst.Dest)
			}
			results = append(results, writeResult{tag: tag, value: value})
		}

		inst.Write(e.cycle)
		e.completed = append(e.completed, inst)
		e.stats.Instructions++

		e.logf("cycle %d: write %s from %s = %s", e.cycle, inst, tag, value)
		e.InvokeHook(sim.HookCtx{
			Domain: e,
			Pos:    HookPosInstWritten,
			Item:   inst,
			Detail: tag,
		})
	}

	return results
}

func (e *Executer) broadcast(results []writeResult) {
	for _, r := range results {
		e.stats.Broadcasts += uint64(e.pool.Broadcast(r.tag, r.value))
	}
}

func (e *Executer) report() {
	snap := e.Snapshot()
	e.trace = append(e.trace, snap)

	e.InvokeHook(sim.HookCtx{
		Domain: e,
		Pos:    HookPosCycleEnd,
		Item:   snap,
	})
}

// Snapshot captures the current state of all stations and functional units.
func (e *Executer) Snapshot() Snapshot {
	snap := Snapshot{
		Cycle:     e.cycle,
		Finished:  e.Finished(),
		Pending:   len(e.backlog),
		Completed: len(e.completed),
		Units:     snapshotUnits(e.fu),
	}

	for _, s := range e.pool.Stations() {
		snap.Stations = append(snap.Stations, snapshotStation(s))
	}

	return snap
}

// Reset clears the program, the stations, the functional units and the
// statistics. Configuration and hooks are kept.
func (e *Executer) Reset() {
	e.pool.Reset()
	e.fu.Reset()
	e.backlog = nil
	e.completed = nil
	e.total = 0
	e.cycle = 0
	e.stats = Statistics{}
	e.trace = nil
	e.failed = nil
}

func (e *Executer) logf(format string, args ...interface{}) {
	if e.logger == nil {
		return
	}
	e.logger.Printf(format, args...)
}
