package tracing

import (
	"context"
	"errors"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorType 定义错误类型，便于分类和过滤
type ErrorType string

const (
	// ErrorTypeDecode 文档解码失败（文件损坏、解析器报错）
	ErrorTypeDecode ErrorType = "decode"
	// ErrorTypeUnsupported 不支持的文档格式
	ErrorTypeUnsupported ErrorType = "unsupported_format"
	// ErrorTypeStrategy 抽取策略失败并被降级
	ErrorTypeStrategy ErrorType = "strategy"
	// ErrorTypeIO 文件系统错误
	ErrorTypeIO ErrorType = "io"
	// ErrorTypeValidation 验证错误
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeInternal 内部错误
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeTimeout 超时错误
	ErrorTypeTimeout ErrorType = "timeout"
)

// RecordError 记录错误，添加统一的错误类型和详情
func RecordError(span trace.Span, err error, errorType ErrorType) {
	RecordErrorWithInfo(span, err, errorType)
}

// RecordErrorWithInfo 记录错误并添加额外信息
func RecordErrorWithInfo(span trace.Span, err error, errorType ErrorType, attributes ...attribute.KeyValue) {
	if span == nil || err == nil {
		return
	}

	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", TruncateString(err.Error(), DefaultMaxLength)),
	)
	if len(attributes) > 0 {
		span.SetAttributes(attributes...)
	}
	span.SetStatus(codes.Error, err.Error())
}

// RecordStrategyDegraded 记录某个抽取策略被降级为空结果
// 只添加事件，不把整个span标记为失败
func RecordStrategyDegraded(span trace.Span, strategy string, err error) {
	if span == nil || err == nil {
		return
	}
	span.AddEvent("strategy degraded", trace.WithAttributes(
		attribute.String("error.type", string(ErrorTypeStrategy)),
		attribute.String("extraction.strategy", strategy),
		attribute.String("error.message", TruncateString(err.Error(), DefaultMaxLength)),
	))
}

// ClassifyError 按错误链推断错误类型
func ClassifyError(err error) ErrorType {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return ErrorTypeIO
	default:
		return ErrorTypeInternal
	}
}
