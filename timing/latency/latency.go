// Package latency provides the instruction timing model of the simulator.
//
// The latency values can be configured via TimingConfig.
package latency

import (
	"github.com/sarchlab/tomasim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the calculating latency in cycles for the given opcode.
func (t *Table) GetLatency(op insts.Op) uint64 {
	switch op {
	case insts.OpADDD:
		return t.config.AddLatency
	case insts.OpSUBD:
		return t.config.SubLatency
	case insts.OpMULTD:
		return t.config.MultiplyLatency
	case insts.OpDIVD:
		return t.config.DivideLatency
	case insts.OpLD:
		return t.config.LoadLatency
	case insts.OpSD:
		return t.config.StoreLatency
	default:
		return 1
	}
}

// Assign sets the latency of the instruction from the table.
func (t *Table) Assign(inst *insts.Instruction) {
	if inst == nil {
		return
	}
	inst.Latency = t.GetLatency(inst.Op)
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
