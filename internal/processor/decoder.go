package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/unicode/norm"

	"resume-analyzer-go/internal/constants"
	"resume-analyzer-go/internal/parser"
	"resume-analyzer-go/internal/tracing"
	"resume-analyzer-go/internal/types"
)

var (
	// ErrUnsupportedFormat 文件扩展名不是受支持的格式
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrReadFailure 文件无法读取或解析
	ErrReadFailure = errors.New("document read failure")
)

// DecodeErrorKind 解码失败的类别
type DecodeErrorKind int

const (
	// DecodeUnsupportedFormat 不支持的格式
	DecodeUnsupportedFormat DecodeErrorKind = iota + 1
	// DecodeReadFailure 读取或解析失败
	DecodeReadFailure
)

func (k DecodeErrorKind) String() string {
	switch k {
	case DecodeUnsupportedFormat:
		return "unsupported_format"
	case DecodeReadFailure:
		return "read_failure"
	default:
		return "unknown"
	}
}

// DecodeError 解码失败
type DecodeError struct {
	Kind   DecodeErrorKind
	Path   string
	Format types.DocumentFormat
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode %s (%s): %s", e.Path, e.Format, e.Kind)
	}
	return fmt.Sprintf("decode %s (%s): %s: %v", e.Path, e.Format, e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is 可以用 ErrUnsupportedFormat / ErrReadFailure 判断类别
func (e *DecodeError) Is(target error) bool {
	switch target {
	case ErrUnsupportedFormat:
		return e.Kind == DecodeUnsupportedFormat
	case ErrReadFailure:
		return e.Kind == DecodeReadFailure
	}
	return false
}

// ErrorType 映射到追踪错误类型
func (e *DecodeError) ErrorType() tracing.ErrorType {
	if e.Kind == DecodeUnsupportedFormat {
		return tracing.ErrorTypeUnsupported
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return tracing.ErrorTypeTimeout
	}
	return tracing.ErrorTypeDecode
}

// DetectFormat 根据扩展名判断文档格式
func DetectFormat(path string) types.DocumentFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return types.FormatPDF
	case ".docx":
		return types.FormatDOCX
	case ".txt", ".text":
		return types.FormatText
	default:
		return types.FormatUnknown
	}
}

// IsSupported 判断文件是否是可解码的格式
func IsSupported(path string) bool {
	return DetectFormat(path) != types.FormatUnknown
}

// ReadDocument 读取文件为 RawDocument
func ReadDocument(path string) (*types.RawDocument, error) {
	format := DetectFormat(path)
	if format == types.FormatUnknown {
		return nil, &DecodeError{Kind: DecodeUnsupportedFormat, Path: path, Format: format}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Kind: DecodeReadFailure, Path: path, Format: format, Err: err}
	}
	return &types.RawDocument{URI: path, Format: format, Content: data}, nil
}

// Decoder 按格式分派到对应的文本提取器
type Decoder struct {
	extractors map[types.DocumentFormat]TextExtractor
	timeout    time.Duration
	logger     *zerolog.Logger
}

// DecoderOption 解码器选项
type DecoderOption func(*Decoder)

// WithExtractor 为某种格式注册提取器
func WithExtractor(format types.DocumentFormat, extractor TextExtractor) DecoderOption {
	return func(d *Decoder) {
		if extractor != nil {
			d.extractors[format] = extractor
		}
	}
}

// WithDecoderTimeout 设置单个文件的解码超时
func WithDecoderTimeout(timeout time.Duration) DecoderOption {
	return func(d *Decoder) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithDecoderLogger 设置日志记录器
func WithDecoderLogger(logger *zerolog.Logger) DecoderOption {
	return func(d *Decoder) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDecoder 创建解码器，纯文本格式始终可用，PDF/DOCX 需要通过选项注册
func NewDecoder(opts ...DecoderOption) *Decoder {
	nop := zerolog.Nop()
	d := &Decoder{
		extractors: map[types.DocumentFormat]TextExtractor{
			types.FormatText: plainTextExtractor{},
		},
		timeout: constants.DefaultDocumentTimeout,
		logger:  &nop,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Supports 是否注册了该格式的提取器
func (d *Decoder) Supports(format types.DocumentFormat) bool {
	_, ok := d.extractors[format]
	return ok
}

// Decode 解码文件为纯文本；文本经过 NFKC 规范化，页眉由具体提取器决定
func (d *Decoder) Decode(ctx context.Context, path string) (string, map[string]interface{}, error) {
	ctx, span := tracer.Start(ctx, "Decoder.Decode")
	defer span.End()

	format := DetectFormat(path)
	span.SetAttributes(
		attribute.String("document.path", tracing.SafePath(path)),
		attribute.String("document.format", string(format)),
	)

	extractor, ok := d.extractors[format]
	if !ok {
		err := &DecodeError{Kind: DecodeUnsupportedFormat, Path: path, Format: format}
		tracing.RecordError(span, err, err.ErrorType())
		return "", nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	text, meta, err := extractor.ExtractFromFile(ctx, path)
	if err != nil {
		decodeErr := &DecodeError{Kind: DecodeReadFailure, Path: path, Format: format, Err: err}
		tracing.RecordError(span, decodeErr, decodeErr.ErrorType())
		d.logger.Warn().Err(err).Str("path", path).Str("format", string(format)).Msg("文档解码失败")
		return "", meta, decodeErr
	}

	text = normalizeDecoded(text)
	span.SetAttributes(
		attribute.Int("document.text_length", len(text)),
		attribute.String("document.preview", tracing.SafePreview(text)),
	)
	d.logger.Debug().Str("path", path).Int("chars", len(text)).Msg("文档解码完成")
	return text, meta, nil
}

// DecodeDocument 解码内存中的文档
func (d *Decoder) DecodeDocument(ctx context.Context, doc types.RawDocument) (string, map[string]interface{}, error) {
	extractor, ok := d.extractors[doc.Format]
	if !ok {
		return "", nil, &DecodeError{Kind: DecodeUnsupportedFormat, Path: doc.URI, Format: doc.Format}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	text, meta, err := extractor.ExtractTextFromBytes(ctx, doc.Content, doc.URI, map[string]interface{}{
		parser.MetaSourcePath: doc.URI,
	})
	if err != nil {
		return "", meta, &DecodeError{Kind: DecodeReadFailure, Path: doc.URI, Format: doc.Format, Err: err}
	}
	return normalizeDecoded(text), meta, nil
}

// normalizeDecoded 修正非法UTF-8并做 NFKC 规范化（全角字符、连字等）
func normalizeDecoded(text string) string {
	return norm.NFKC.String(strings.ToValidUTF8(text, "\uFFFD"))
}

// plainTextExtractor 纯文本文件
type plainTextExtractor struct{}

func (plainTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open text file %s: %w", filePath, err)
	}
	return plainTextExtractor{}.ExtractTextFromBytes(ctx, data, filePath, map[string]interface{}{
		parser.MetaSourcePath: filePath,
	})
}

func (plainTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read text %s: %w", uri, err)
	}
	return plainTextExtractor{}.ExtractTextFromBytes(ctx, data, uri, options)
}

func (plainTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	meta := map[string]interface{}{}
	if m, ok := options.(map[string]interface{}); ok {
		for k, v := range m {
			meta[k] = v
		}
	}
	text := string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	meta[parser.MetaBackend] = "text"
	meta[parser.MetaTextLength] = len(text)
	return text, meta, nil
}
