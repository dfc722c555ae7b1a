// Package core provides the cycle-accurate scheduler core model.
// It wraps the Tomasulo executer into an akita ticking component, so that a
// run is driven by the simulation engine and cycle N executes at time N/freq.
package core

import (
	"log"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/timing/tomasulo"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions written back.
	Instructions uint64
	// StructuralStalls is the number of cycles issue waited for a station.
	StructuralStalls uint64
	// OperandWaitCycles sums the cycles stations waited for operands.
	OperandWaitCycles uint64
	// Broadcasts is the number of operands delivered by broadcast.
	Broadcasts uint64
}

// CPI returns the cycles per instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Core represents a cycle-accurate Tomasulo core.
type Core struct {
	*sim.TickingComponent

	engine   sim.Engine
	executer *tomasulo.Executer
	err      error
}

// Tick executes one scheduler cycle. It returns false once the program has
// completed or the run failed, which stops the ticking.
func (c *Core) Tick() bool {
	if c.err != nil || c.executer.Finished() {
		return false
	}

	if err := c.executer.Tick(); err != nil {
		c.err = err
		return false
	}

	return !c.executer.Finished()
}

// Run schedules the first tick and runs the engine until the core stops
// ticking. It returns the error that stopped the scheduler, if any.
func (c *Core) Run() error {
	if c.executer.Finished() {
		return c.err
	}

	c.TickLater()

	if err := c.engine.Run(); err != nil {
		return err
	}

	return c.err
}

// Err returns the error that stopped the scheduler, nil if none.
func (c *Core) Err() error {
	return c.err
}

// Executer returns the wrapped scheduler.
func (c *Core) Executer() *tomasulo.Executer {
	return c.executer
}

// AcceptHook registers a hook with the scheduler. Hooks are invoked at the
// tomasulo hook positions.
func (c *Core) AcceptHook(hook sim.Hook) {
	c.executer.AcceptHook(hook)
}

// Halted returns true if the core will not tick anymore.
func (c *Core) Halted() bool {
	return c.err != nil || c.executer.Finished()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	s := c.executer.Stats()
	return Stats{
		Cycles:            s.Cycles,
		Instructions:      s.Instructions,
		StructuralStalls:  s.StructuralStalls,
		OperandWaitCycles: s.OperandWaitCycles,
		Broadcasts:        s.Broadcasts,
	}
}

// Reset clears all core state. The engine time is not rewound.
func (c *Core) Reset() {
	c.executer.Reset()
	c.err = nil
}

// Builder can build cores.
type Builder struct {
	engine   sim.Engine
	freq     sim.Freq
	executer *tomasulo.Executer
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq: 1 * sim.GHz,
	}
}

// WithEngine sets the engine that drives the core.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithExecuter sets the scheduler to wrap. A default executer is created if
// none is given.
func (b Builder) WithExecuter(executer *tomasulo.Executer) Builder {
	b.executer = executer
	return b
}

// Build creates a core with the given name. The name must be a valid akita
// component name, such as "Core".
func (b Builder) Build(name string) *Core {
	if b.engine == nil {
		log.Panic("engine is not set")
	}

	c := &Core{
		engine:   b.engine,
		executer: b.executer,
	}

	if c.executer == nil {
		c.executer = tomasulo.NewExecuter()
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	return c
}
