package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resume-analyzer-go/internal/logger"
	"resume-analyzer-go/internal/scaffold"
)

var initCmd = &cobra.Command{
	Use:         "init [dir]",
	Short:       "Create the workspace layout",
	Long:        "Create data/resumes, data/skills, logs and output, a sample config.yaml, the default skill taxonomy and an empty results file. Existing files are kept.",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{skipSetupAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if workspace != "" {
			root = workspace
		}
		if len(args) == 1 {
			root = args[0]
		}

		res, err := scaffold.Init(root, &logger.Logger)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, p := range res.Created {
			fmt.Fprintf(out, "created  %s\n", p)
		}
		for _, p := range res.Skipped {
			fmt.Fprintf(out, "exists   %s\n", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
