package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"iris-app/internal/client"
	"iris-app/internal/dataset"

	"github.com/spf13/cobra"
)

func newDescribeCmd() *cobra.Command {
	var (
		remote  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the dataset statistics table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var summary dataset.Summary
			if remote != "" {
				s, err := client.New(remote, timeout).Stats()
				if err != nil {
					return err
				}
				summary = s
			} else {
				ds, err := dataset.Load()
				if err != nil {
					return err
				}
				summary = dataset.Describe(ds)
			}
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "dashboard URL; compute locally when empty")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "remote request timeout")
	return cmd
}

func printSummary(w io.Writer, summary dataset.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "\t")
	for _, c := range summary.Columns {
		fmt.Fprintf(tw, "%s\t", c.Column)
	}
	fmt.Fprintln(tw)

	for i, name := range dataset.StatNames {
		fmt.Fprintf(tw, "%s\t", name)
		for _, c := range summary.Columns {
			fmt.Fprintf(tw, "%.6f\t", c.Values()[i])
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
