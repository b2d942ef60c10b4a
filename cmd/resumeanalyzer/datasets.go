package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"resume-analyzer-go/internal/dataset"
)

var datasetRows int

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Load the configured CSV datasets and show their shape",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		if len(app.cfg.Datasets) == 0 {
			fmt.Fprintln(out, "No datasets configured")
			return nil
		}

		loaded := 0
		for _, ds := range app.cfg.Datasets {
			d, err := dataset.Load(app.cfg.ResolvePath(ds.Path), ds.Name, app.logger)
			if err != nil {
				fmt.Fprintf(out, "%s: failed to load %s: %v\n", ds.Name, ds.Path, err)
				continue
			}
			loaded++
			rows, cols := d.Shape()
			fmt.Fprintf(out, "%s: %d rows x %d columns\n", ds.Name, rows, cols)
			fmt.Fprintf(out, "  columns: %s\n", strings.Join(d.Columns, ", "))
			for _, row := range d.Head(datasetRows) {
				fmt.Fprintf(out, "  %s\n", strings.Join(row, " | "))
			}
		}
		if loaded == 0 {
			return fmt.Errorf("none of the %d configured datasets could be loaded", len(app.cfg.Datasets))
		}
		return nil
	},
}

func init() {
	datasetsCmd.Flags().IntVarP(&datasetRows, "rows", "n", dataset.SampleRows, "number of sample rows to show")
	rootCmd.AddCommand(datasetsCmd)
}
