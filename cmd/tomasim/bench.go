package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/tomasim/benchmarks"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the built-in programs and compare their cycle counts.",
	Long: "`bench` schedules every built-in program and reports its cycle " +
		"count, CPI and stall statistics. Expected cycle counts hold for " +
		"the default configuration only.",
	Args: cobra.NoArgs,
	RunE: runBench,
}

var (
	benchFormat string
	benchNames  []string
)

func init() {
	flags := benchCmd.Flags()
	flags.StringVarP(&benchFormat, "format", "f", "text",
		"Output format: text, csv or json")
	flags.StringSliceVarP(&benchNames, "name", "n", nil,
		"Run only the named programs")

	rootCmd.AddCommand(benchCmd)
}

func selectBenchmarks() ([]benchmarks.Benchmark, error) {
	if len(benchNames) == 0 {
		return benchmarks.All(), nil
	}

	selected := make([]benchmarks.Benchmark, 0, len(benchNames))
	for _, name := range benchNames {
		b, ok := benchmarks.Find(name)
		if !ok {
			return nil, fmt.Errorf("unknown program %q", name)
		}
		selected = append(selected, b)
	}

	return selected, nil
}

func runBench(cmd *cobra.Command, _ []string) error {
	selected, err := selectBenchmarks()
	if err != nil {
		return err
	}

	scheduler, err := schedulerConfig()
	if err != nil {
		return err
	}

	timing, err := timingConfig()
	if err != nil {
		return err
	}

	config := benchmarks.DefaultConfig()
	config.Scheduler = scheduler
	config.Timing = timing
	config.Output = cmd.OutOrStdout()
	config.Verbose = verbose

	harness := benchmarks.NewHarness(config)
	harness.AddBenchmarks(selected)

	results := harness.RunAll()

	switch benchFormat {
	case "text":
		harness.PrintResults(results)
		summary := benchmarks.Summarize(results)
		fmt.Fprintf(config.Output, "%d benchmarks, %d mismatched, average CPI %.3f\n",
			summary.TotalBenchmarks, summary.Mismatched, summary.AverageCPI)
	case "csv":
		harness.PrintCSV(results)
	case "json":
		if err := harness.PrintJSON(results); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", benchFormat)
	}

	for _, r := range results {
		if r.Error != "" {
			return fmt.Errorf("benchmark %s failed", r.Name)
		}
	}

	return nil
}
