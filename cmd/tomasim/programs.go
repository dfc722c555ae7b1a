package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/tomasim/benchmarks"
)

var programsCmd = &cobra.Command{
	Use:   "programs [name]",
	Short: "List the built-in programs, or print the text of one.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			b, ok := benchmarks.Find(args[0])
			if !ok {
				return fmt.Errorf("unknown program %q", args[0])
			}

			prog, err := b.Load()
			if err != nil {
				return err
			}

			fmt.Fprint(out, prog.Text())
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Name\tCycles\tDescription")
		for _, b := range benchmarks.All() {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", b.Name, b.ExpectedCycles, b.Description)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(programsCmd)
}
