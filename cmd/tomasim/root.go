package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

var rootCmd = &cobra.Command{
	Use:   "tomasim",
	Short: "tomasim is a cycle-accurate Tomasulo scheduling simulator.",
	Long: `tomasim issues floating-point instructions into reservation ` +
		`stations, renames their operands and reports the issue, start, ` +
		`execute and write-back cycle of every instruction.`,
	SilenceUsage: true,
}

var (
	configPath        string
	latencyConfigPath string
	maxCycles         uint64
	noFold            bool
	verbose           bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "",
		"Path to the scheduler configuration JSON file")
	flags.StringVar(&latencyConfigPath, "latency-config", "",
		"Path to the instruction latency JSON file")
	flags.Uint64Var(&maxCycles, "max-cycles", 0,
		"Cycle ceiling, overrides the configuration file")
	flags.BoolVar(&noFold, "no-fold", false,
		"Keep constant arithmetic as expressions")
	flags.BoolVarP(&verbose, "verbose", "v", false,
		"Log scheduler decisions to stderr")
}

// Execute runs the root command and exits through atexit so that registered
// handlers, such as pending recordings, run first.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

// schedulerConfig assembles the scheduler configuration from the
// configuration file and the command-line overrides.
func schedulerConfig() (tomasulo.Config, error) {
	config := tomasulo.DefaultConfig()

	if configPath != "" {
		var err error
		config, err = tomasulo.LoadConfig(configPath)
		if err != nil {
			return config, err
		}
	}

	if maxCycles > 0 {
		config.MaxCycles = maxCycles
	}
	if noFold {
		config.FoldConstants = false
	}

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid scheduler config: %w", err)
	}

	return config, nil
}

func timingConfig() (*latency.TimingConfig, error) {
	if latencyConfigPath == "" {
		return latency.DefaultTimingConfig(), nil
	}

	config, err := latency.LoadConfig(latencyConfigPath)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid latency config: %w", err)
	}

	return config, nil
}

func logger() *log.Logger {
	if !verbose {
		return nil
	}
	return log.New(os.Stderr, "tomasim: ", 0)
}
