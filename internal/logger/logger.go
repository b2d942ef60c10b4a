package logger // 日志记录器组件

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Logger 默认的全局日志实例
	Logger = log.Logger
)

// documentIDKey 是文档ID在日志上下文中的字段名
const documentIDKey = "document_id"

// Config 日志配置结构体
type Config struct {
	Level        string `json:"level" yaml:"level"`                 // 日志级别：debug, info, warn, error
	Format       string `json:"format" yaml:"format"`               // 日志格式：json 或 pretty
	TimeFormat   string `json:"time_format" yaml:"time_format"`     // 时间戳格式
	ReportCaller bool   `json:"report_caller" yaml:"report_caller"` // 是否报告调用者文件名和行号
	File         string `json:"file" yaml:"file"`                   // 可选：同时写入的日志文件，例如 logs/app.log

	// Writer 控制台输出目标，默认 os.Stdout；命令行把日志写到 stderr 以免混入结果
	Writer io.Writer `json:"-" yaml:"-"`
}

// Init 根据配置初始化日志系统
// 返回的 io.Closer 用于关闭日志文件（未配置文件时为空操作）
func Init(config Config) (io.Closer, error) {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel // 解析失败时默认使用Info级别
	}
	zerolog.SetGlobalLevel(level)

	var console io.Writer = os.Stdout
	if config.Writer != nil {
		console = config.Writer
	}
	output := console
	if config.Format == "pretty" {
		output = zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: config.TimeFormat,
			NoColor:    false,
		}
	}

	if config.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	var closer io.Closer = nopCloser{}
	if config.File != "" {
		if err := os.MkdirAll(filepath.Dir(config.File), 0o755); err != nil {
			return nil, fmt.Errorf("创建日志目录失败: %w", err)
		}
		f, err := os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		// 文件中始终写入JSON格式，便于后续检索
		output = zerolog.MultiLevelWriter(output, f)
		closer = f
	}

	contextLogger := zerolog.New(output).
		Level(level).
		With().
		Timestamp()

	if config.ReportCaller {
		contextLogger = contextLogger.Caller()
	}

	Logger = contextLogger.Logger()
	log.Logger = Logger
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Debug 开始一条调试级别的日志事件
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info 开始一条信息级别的日志事件
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn 开始一条警告级别的日志事件
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error 开始一条错误级别的日志事件
func Error() *zerolog.Event {
	return Logger.Error()
}

// Fatal 开始一条致命错误级别的日志事件，记录后程序将退出
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}

// Ctx 从上下文中获取日志记录器
func Ctx(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext 将全局日志记录器放入上下文
func WithContext(ctx context.Context) context.Context {
	return Logger.WithContext(ctx)
}

// WithDocumentID 返回一个携带文档ID字段的上下文logger
// 上下文中已有logger时在其基础上追加字段，否则基于全局logger
func WithDocumentID(ctx context.Context, documentID string) context.Context {
	base := FromContext(ctx)
	l := base.With().Str(documentIDKey, documentID).Logger()
	return l.WithContext(ctx)
}

// FromContext 获取上下文中的logger，没有时回退到全局logger
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	return &Logger
}
