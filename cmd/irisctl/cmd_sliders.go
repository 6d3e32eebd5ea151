package main

import (
	"fmt"
	"text/tabwriter"

	"iris-app/internal/dashboard"

	"github.com/spf13/cobra"
)

func newSlidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sliders",
		Short: "Print the prediction controls and their bounds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tLABEL\tMIN\tMAX\tDEFAULT\tSTEP")
			for _, s := range dashboard.Sliders() {
				fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f\t%.1f\t%.1f\n", s.Key, s.Label, s.Min, s.Max, s.Default, s.Step)
			}
			return tw.Flush()
		},
	}
}
