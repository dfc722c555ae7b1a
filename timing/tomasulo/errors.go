package tomasulo

import "fmt"

// InvariantError reports a scheduler state that must never occur, such as
// an arithmetic operand that is not a functional unit. The run that hits it
// cannot continue.
type InvariantError struct {
	// Inst is the instruction being processed, empty if none.
	Inst string
	// Reason describes the violated invariant.
	Reason string
}

func (e *InvariantError) Error() string {
	if e.Inst == "" {
		return "invariant violation: " + e.Reason
	}
	return fmt.Sprintf("invariant violation at %q: %s", e.Inst, e.Reason)
}

// DivergenceError reports a run that did not complete within the cycle
// ceiling. It carries the per-cycle trace recorded so far.
type DivergenceError struct {
	MaxCycles uint64
	Completed int
	Total     int
	Trace     []Snapshot
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf(
		"simulation did not finish within %d cycles (%d/%d instructions completed)",
		e.MaxCycles, e.Completed, e.Total)
}
