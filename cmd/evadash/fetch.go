package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/scarnyc/spacewalks/pkg/dataset"
	"github.com/scarnyc/spacewalks/pkg/figure"
)

func newFetchCommand(opts *options) *cobra.Command {
	var snapshot string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Load the dataset and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			loader := dataset.NewLoader(cfg.Dataset)
			if snapshot != "" {
				loader.SnapshotPath = snapshot
				loader.WriteSnapshot = true
			}

			table, err := loader.Load(cmd.Context())
			if err != nil {
				return err
			}

			printSummary(cmd.OutOrStdout(), table)

			return nil
		},
	}

	cmd.Flags().StringVar(&snapshot, "snapshot", "", "Write a snappy-compressed snapshot of the dataset to this path")

	return cmd
}

func printSummary(w io.Writer, table *dataset.Table) {
	fmt.Fprintf(w, "source:   %s\n", table.Source)
	fmt.Fprintf(w, "records:  %d\n", table.Len())

	first, last := table.DateRange()
	fmt.Fprintf(w, "dates:    %s to %s\n", first.Format(time.DateOnly), last.Format(time.DateOnly))

	if longest := table.Longest(); longest != nil {
		fmt.Fprintf(w, "longest:  %.0f minutes on %s (%s)\n",
			longest.DurationMinutes, longest.Date.Format(time.DateOnly), longest.Vehicle)
	}

	counts := make(map[string]int)
	for _, r := range table.Records {
		counts[r.Country]++
	}

	for _, country := range table.Countries() {
		fmt.Fprintf(w, "country:  %s %d\n", country, counts[country])
	}

	for _, skipped := range table.Skipped {
		fmt.Fprintf(w, "skipped:  %v\n", skipped)
	}

	for _, mismatch := range figure.CheckAnnotations(table) {
		fmt.Fprintf(w, "warning:  %s\n", mismatch)
	}
}
