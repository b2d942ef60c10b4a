package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"resume-analyzer-go/internal/config"
	"resume-analyzer-go/internal/logger"
	"resume-analyzer-go/internal/tracing"
)

var version = "dev"

// 全局命令行参数
var (
	configPath string
	workspace  string
	verbose    bool
)

// skipSetupAnnotation 标记不需要加载配置和初始化日志的命令
const skipSetupAnnotation = "skip-setup"

// appState 命令执行期间共享的配置和资源
type appState struct {
	cfg      *config.Config
	logger   *zerolog.Logger
	logFile  io.Closer
	shutdown tracing.ShutdownFunc
}

var app = &appState{}

var rootCmd = &cobra.Command{
	Use:           "resumeanalyzer",
	Short:         "Extract names, contacts and skills from resumes",
	Long:          "resumeanalyzer decodes PDF, DOCX and text resumes and extracts the candidate name, email, phone and skills.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Annotations[skipSetupAnnotation] == "true" {
			return nil
		}
		return app.setup(cmd)
	},
}

// execute 运行命令，成功或失败都会关闭日志文件和追踪
func execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if tdErr := app.teardown(ctx); tdErr != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "释放资源失败: %v\n", tdErr)
		if err == nil {
			err = tdErr
		}
	}
	return err
}

func init() {
	bindGlobalFlags(rootCmd.PersistentFlags())
}

// bindGlobalFlags 注册所有子命令共享的参数
func bindGlobalFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&configPath, "config", "c", "", "config file (default: search ./config.yaml and parents)")
	flags.StringVarP(&workspace, "workspace", "w", "", "workspace root for relative paths")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// setup 加载 .env 和配置，初始化日志和链路追踪
func (a *appState) setup(cmd *cobra.Command) error {
	envFile := ".env"
	if workspace != "" {
		envFile = filepath.Join(workspace, ".env")
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("加载 %s 失败: %w", envFile, err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if workspace != "" {
		cfg.Workspace = workspace
	}
	if verbose {
		cfg.Logger.Level = "debug"
	}

	logCfg := cfg.Logger
	logCfg.File = cfg.ResolvePath(logCfg.File)
	logCfg.Writer = cmd.ErrOrStderr()
	closer, err := logger.Init(logCfg)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}

	shutdown, err := tracing.InitTracer(cmd.Context(), cfg.Tracing)
	if err != nil {
		closer.Close()
		return fmt.Errorf("初始化链路追踪失败: %w", err)
	}

	a.cfg = cfg
	a.logger = &logger.Logger
	a.logFile = closer
	a.shutdown = shutdown
	a.logger.Debug().Str("workspace", cfg.Workspace).Str("pdf_backend", cfg.Decoder.PDFBackend).Msg("配置加载完成")
	return nil
}

// teardown 刷新追踪数据并关闭日志文件
func (a *appState) teardown(ctx context.Context) error {
	var errs []error
	if a.shutdown != nil {
		if err := a.shutdown(context.WithoutCancel(ctx)); err != nil {
			errs = append(errs, err)
		}
		a.shutdown = nil
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			errs = append(errs, err)
		}
		a.logFile = nil
	}
	return errors.Join(errs...)
}
