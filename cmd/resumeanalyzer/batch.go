package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"resume-analyzer-go/internal/constants"
	"resume-analyzer-go/internal/output"
	"resume-analyzer-go/internal/processor"
)

// batch 命令参数
var (
	batchOutput  string
	batchFormat  string
	batchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Analyze every resume in a directory",
	Long:  "Analyze all PDF, DOCX and text files in a directory (default data/resumes) concurrently and write the reports to output/results.json.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "results file (default <output.dir>/results.<format>)")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "", "output format: json or yaml (default from config)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "number of concurrent workers (default from config)")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := app.cfg

	dir := cfg.ResolvePath(constants.ResumesDir)
	if len(args) == 1 {
		dir = args[0]
	}
	if batchWorkers > 0 {
		cfg.Extraction.Workers = batchWorkers
	}
	format := formatOrDefault(batchFormat)

	target := batchOutput
	if target == "" {
		target = filepath.Join(cfg.ResolvePath(cfg.Output.Dir), output.FileName(constants.DefaultResultsFile, format))
	}

	analyzer, err := processor.BuildResumeAnalyzer(ctx, cfg, app.logger)
	if err != nil {
		return err
	}

	reports, err := analyzer.AnalyzeDir(ctx, dir)
	if err != nil {
		return err
	}
	if err := output.WriteFile(target, reports, format, cfg.Output.Pretty); err != nil {
		return err
	}

	failed := 0
	for _, r := range reports {
		if r.Error != "" {
			failed++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Analyzed %d resumes (%d failed), results written to %s\n", len(reports), failed, target)
	return nil
}
