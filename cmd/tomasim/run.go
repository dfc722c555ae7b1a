package main

import (
	"errors"
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/spf13/cobra"

	"github.com/sarchlab/tomasim/benchmarks"
	"github.com/sarchlab/tomasim/loader"
	"github.com/sarchlab/tomasim/record"
	"github.com/sarchlab/tomasim/report"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

var runCmd = &cobra.Command{
	Use:   "run [program file]",
	Short: "Schedule one program and print its timing table.",
	Long: "`run program.txt` schedules the instructions in a file, one per " +
		"line. `run --program NAME` schedules a built-in program instead.",
	Args: cobra.MaximumNArgs(1),
	RunE: runProgram,
}

var (
	programName string
	recordPath  string
	recordRun   bool
	quiet       bool
	showFree    bool
	freqGHz     float64
)

func init() {
	flags := runCmd.Flags()
	flags.StringVarP(&programName, "program", "p", "",
		"Name of a built-in program (see `tomasim programs`)")
	flags.BoolVar(&recordRun, "record", false,
		"Record the run into an SQLite database")
	flags.StringVar(&recordPath, "record-file", "",
		"Database path without extension (default: generated)")
	flags.BoolVarP(&quiet, "quiet", "q", false,
		"Do not print the per-cycle state")
	flags.BoolVar(&showFree, "show-free", false,
		"Also print free stations and unclaimed units")
	flags.Float64Var(&freqGHz, "freq", 1,
		"Core frequency in GHz")

	rootCmd.AddCommand(runCmd)
}

func loadProgram(args []string) (*loader.Program, error) {
	switch {
	case programName != "" && len(args) > 0:
		return nil, errors.New("give either a program file or --program, not both")
	case programName != "":
		b, ok := benchmarks.Find(programName)
		if !ok {
			return nil, fmt.Errorf("unknown program %q", programName)
		}
		return b.Load()
	case len(args) > 0:
		return loader.Load(args[0])
	default:
		return nil, errors.New("no program given")
	}
}

func runProgram(cmd *cobra.Command, args []string) error {
	prog, err := loadProgram(args)
	if err != nil {
		return err
	}

	config, err := schedulerConfig()
	if err != nil {
		return err
	}

	timing, err := timingConfig()
	if err != nil {
		return err
	}

	executer := tomasulo.NewExecuter(
		tomasulo.WithConfig(config),
		tomasulo.WithLatencyTable(latency.NewTableWithConfig(timing)),
		tomasulo.WithLogger(logger()),
	)
	executer.AddInsts(prog.Insts)

	c := core.MakeBuilder().
		WithEngine(sim.NewSerialEngine()).
		WithFreq(sim.Freq(freqGHz) * sim.GHz).
		WithExecuter(executer).
		Build("Core")

	out := cmd.OutOrStdout()

	var cycleHook *report.CycleHook
	if !quiet {
		cycleHook = report.NewCycleHook(out)
		cycleHook.ShowFree = showFree
		cycleHook.ShowAllUnits = showFree
		c.AcceptHook(cycleHook)
	}

	var recorder *record.Recorder
	if recordRun {
		recorder, err = record.New(recordPath)
		if err != nil {
			return err
		}
		c.AcceptHook(recorder)
	}

	runErr := c.Run()

	if cycleHook != nil && cycleHook.Err() != nil {
		return cycleHook.Err()
	}

	fmt.Fprintf(out, "Program: %s\n", prog.Name)
	if err := report.WriteTimingTable(out, executer.Results()); err != nil {
		return err
	}
	fmt.Fprintln(out)
	if err := report.WriteStats(out, executer.Stats()); err != nil {
		return err
	}

	if recorder != nil {
		recorder.RecordRun(prog.Name, executer.Results(), executer.Stats())
		if err := recorder.Close(); err != nil {
			return err
		}
	}

	var divergence *tomasulo.DivergenceError
	if errors.As(runErr, &divergence) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d instructions completed\n",
			divergence.Completed, divergence.Total)
	}

	return runErr
}
