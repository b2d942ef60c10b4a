package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"resume-analyzer-go/internal/output"
	"resume-analyzer-go/internal/processor"
)

// extract 命令参数
var (
	extractShowText bool
	extractFormat   string
	extractMaxLen   int
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Analyze a single resume",
	Long:  "Decode one PDF, DOCX or text resume and print the extraction report. With --show-text every pipeline stage is printed.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractShowText, "show-text", false, "print decoded text and each extraction stage")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "", "output format: json or yaml (default from config)")
	extractCmd.Flags().IntVar(&extractMaxLen, "maxlen", 1000, "max characters of decoded text to show, -1 for all")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("无法获取文件的绝对路径: %w", err)
	}

	analyzer, err := processor.BuildResumeAnalyzer(ctx, app.cfg, app.logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !extractShowText {
		report, analyzeErr := analyzer.AnalyzeFile(ctx, path)
		if report != nil {
			if err := output.WriteValue(out, report, formatOrDefault(extractFormat), app.cfg.Output.Pretty); err != nil {
				return err
			}
		}
		return analyzeErr
	}

	start := time.Now()
	text, meta, err := analyzer.Decoder.Decode(ctx, path)
	if err != nil {
		return err
	}
	printInspection(out, analyzer.Inspect(ctx, text), meta, time.Since(start))
	return nil
}

// printInspection 逐段打印流水线每一步的结果
func printInspection(w io.Writer, ins *processor.Inspection, meta map[string]interface{}, elapsed time.Duration) {
	section := func(title string) {
		fmt.Fprintf(w, "\n===== %s =====\n", title)
	}

	section(fmt.Sprintf("Extracted text (%d chars, %v)", len(ins.Text), elapsed.Round(time.Millisecond)))
	fmt.Fprintln(w, truncate(ins.Text, extractMaxLen))
	if len(meta) > 0 {
		keys := make([]string, 0, len(meta))
		for k := range meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %v\n", k, meta[k])
		}
	}

	section("Cleaned text")
	fmt.Fprintln(w, truncate(ins.Cleaned, extractMaxLen))

	section(fmt.Sprintf("Words (%d)", len(ins.Words)))
	fmt.Fprintln(w, truncate(strings.Join(ins.Words, " | "), extractMaxLen))

	section(fmt.Sprintf("Sentences (%d)", len(ins.Sentences)))
	for i, s := range ins.Sentences {
		fmt.Fprintf(w, "%d. %s\n", i+1, s)
	}

	section("Contact")
	fmt.Fprintf(w, "Name:  %s\n", ins.Name)
	fmt.Fprintf(w, "Email: %s\n", orNone(ins.Email))
	fmt.Fprintf(w, "Phone: %s\n", orNone(ins.Phone))

	section("Skills")
	fmt.Fprintf(w, "Literal:    %s\n", joinOrNone(ins.LiteralSkills))
	if ins.ContextError != "" {
		fmt.Fprintf(w, "Contextual: unavailable (%s)\n", ins.ContextError)
	} else {
		fmt.Fprintf(w, "Contextual: %s\n", joinOrNone(ins.ContextSkills))
	}
	fmt.Fprintf(w, "Combined:   %s\n", joinOrNone(ins.Combined))
}

func truncate(s string, maxLen int) string {
	if maxLen < 0 || len(s) <= maxLen {
		return s
	}
	// 按字符截断，避免切开多字节字符
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + fmt.Sprintf("\n... (%d more characters)", len(runes)-maxLen)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

// formatOrDefault 命令行未指定格式时使用配置中的格式
func formatOrDefault(format string) string {
	if format != "" {
		return format
	}
	return app.cfg.Output.Format
}
