package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"resume-analyzer-go/internal/config"
	"resume-analyzer-go/internal/constants"
	"resume-analyzer-go/internal/output"
	"resume-analyzer-go/internal/processor"
	"resume-analyzer-go/internal/ratelimit"
)

// watch 命令参数，零值表示使用配置
var (
	watchSettle time.Duration
	watchRate   int
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Analyze resumes as they appear in a directory",
	Long:  "Watch a directory (default data/resumes) and print one JSON report per line for every new or modified resume until interrupted.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 0, "wait this long after the last write before analyzing (default from config)")
	watchCmd.Flags().IntVar(&watchRate, "rate", 0, "max files analyzed per minute (default from config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := app.cfg
	dir := cfg.ResolvePath(constants.ResumesDir)
	if len(args) == 1 {
		dir = args[0]
	}

	analyzer, err := processor.BuildResumeAnalyzer(ctx, cfg, app.logger)
	if err != nil {
		return err
	}

	settle := watchSettle
	if settle <= 0 {
		settle = config.GetDuration(cfg.Watch.SettleDelay, processor.DefaultSettleDelay)
	}
	rate := cfg.Watch.RatePerMinute
	if watchRate > 0 {
		rate = watchRate
	}
	limiter := ratelimit.NewLimiter(rate, 0).
		WithRetryPolicy(config.GetDuration(cfg.Watch.RetryWait, 500*time.Millisecond), cfg.Watch.MaxRetries)

	watcher := processor.NewWatcher(analyzer,
		processor.WithSettleDelay(settle),
		processor.WithRateLimiter(limiter),
		processor.WithWatcherLogger(app.logger),
	)
	reports, err := watcher.Watch(ctx, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", dir)

	for report := range reports {
		if err := output.WriteValue(cmd.OutOrStdout(), report, output.FormatJSON, false); err != nil {
			return err
		}
	}
	return nil
}
