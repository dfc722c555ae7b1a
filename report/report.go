// Package report renders scheduler state as plain text.
//
// The scheduler itself never formats output. A CycleHook attached to an
// executer or a core prints the snapshot of every cycle, and the table
// writers render results once a run has completed.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

// CycleHook prints the snapshot of each cycle.
type CycleHook struct {
	w io.Writer

	// ShowFree also prints free stations.
	ShowFree bool
	// ShowAllUnits also prints unclaimed functional units.
	ShowAllUnits bool

	err error
}

// NewCycleHook creates a hook that writes to w.
func NewCycleHook(w io.Writer) *CycleHook {
	return &CycleHook{w: w}
}

// Func prints the snapshot carried by a cycle-end hook context. Other
// positions are ignored.
func (h *CycleHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != tomasulo.HookPosCycleEnd {
		return
	}

	snap, ok := ctx.Item.(tomasulo.Snapshot)
	if !ok {
		return
	}

	if err := h.write(snap); err != nil && h.err == nil {
		h.err = err
	}
}

// Err returns the first write error, if any.
func (h *CycleHook) Err() error {
	return h.err
}

func (h *CycleHook) write(snap tomasulo.Snapshot) error {
	if _, err := fmt.Fprintf(h.w, "Cycle %d (pending %d, completed %d)\n",
		snap.Cycle, snap.Pending, snap.Completed); err != nil {
		return err
	}

	if err := WriteStations(h.w, snap, h.ShowFree); err != nil {
		return err
	}

	if err := WriteUnits(h.w, snap, h.ShowAllUnits); err != nil {
		return err
	}

	_, err := fmt.Fprintln(h.w)
	return err
}

// WriteStations renders the reservation stations of a snapshot. Operand
// values are abbreviated.
func WriteStations(w io.Writer, snap tomasulo.Snapshot, showFree bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Station\tState\tInstruction\tVj\tVk\tQj\tQk\tAddr")

	for _, s := range snap.Stations {
		if s.State == tomasulo.StateFree && !showFree {
			continue
		}

		inst := "-"
		if s.Inst != nil {
			inst = s.Inst.String()
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Tag, s.State, inst,
			s.Vj.Brief(), s.Vk.Brief(),
			tagName(s.Qj), tagName(s.Qk),
			s.Addr.Brief())
	}

	return tw.Flush()
}

// WriteUnits renders the functional unit table of a snapshot with full
// values. Unless all is set, only units claimed by a station are shown.
func WriteUnits(w io.Writer, snap tomasulo.Snapshot, all bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Unit\tOwner\tValue")

	for _, u := range snap.Units {
		if u.Owner == nil && !all {
			continue
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\n", u.Unit, tagName(u.Owner), u.Value)
	}

	return tw.Flush()
}

// WriteTimingTable renders the lifecycle cycles of completed instructions,
// in the given order.
func WriteTimingTable(w io.Writer, results []*insts.Instruction) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Instruction\tIssue\tStart\tExec\tWrite\t")

	for _, inst := range results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t\n",
			inst.String(),
			inst.EmitCycle, inst.StartCycle, inst.ExecCycle, inst.WriteCycle)
	}

	return tw.Flush()
}

// WriteStats renders scheduler statistics.
func WriteStats(w io.Writer, stats tomasulo.Statistics) error {
	_, err := fmt.Fprintf(w,
		"Total Instructions: %d\n"+
			"Total Cycles: %d\n"+
			"CPI: %.2f\n"+
			"Structural stalls: %d\n"+
			"Operand wait cycles: %d\n"+
			"Broadcasts: %d\n",
		stats.Instructions, stats.Cycles, stats.CPI(),
		stats.StructuralStalls, stats.OperandWaitCycles, stats.Broadcasts)
	return err
}

func tagName(t *tomasulo.Tag) string {
	if t == nil {
		return "-"
	}
	return t.String()
}
