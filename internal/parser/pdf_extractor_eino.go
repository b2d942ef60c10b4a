package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/rs/zerolog"

	"resume-analyzer-go/internal/constants"
)

// EinoPDFTextExtractor 使用 Eino PDF Parser 逐页提取文本
type EinoPDFTextExtractor struct {
	parser      *pdf.PDFParser
	pageHeaders bool
	timeout     time.Duration
	logger      *zerolog.Logger
}

// EinoPDFOption PDF提取器的配置选项
type EinoPDFOption func(*EinoPDFTextExtractor)

// WithEinoLogger 配置日志记录器
func WithEinoLogger(logger *zerolog.Logger) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEinoPageHeaders 是否在每页文本前插入页眉
func WithEinoPageHeaders(enabled bool) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.pageHeaders = enabled
	}
}

// WithEinoTimeout 设置单次解析超时
func WithEinoTimeout(d time.Duration) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEinoPDFTextExtractor 初始化 Eino PDF 文本提取器
// 解析器按页返回文档，由提取器负责拼接和插入页眉
func NewEinoPDFTextExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}

	nop := zerolog.Nop()
	extractor := &EinoPDFTextExtractor{
		parser:      p,
		pageHeaders: true,
		timeout:     constants.DefaultDocumentTimeout,
		logger:      &nop,
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor, nil
}

// ExtractFromFile 从PDF文件提取文本和元数据
func (e *EinoPDFTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	startTime := time.Now()
	e.logger.Debug().Str("path", filePath).Msg("开始处理PDF文件")

	file, err := os.Open(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open PDF file %s: %w", filePath, err)
	}
	defer file.Close()

	if fileInfo, statErr := file.Stat(); statErr == nil {
		e.logger.Debug().Float64("size_mb", float64(fileInfo.Size())/1024/1024).Msg("PDF文件大小")
	}

	text, metadata, err := e.ExtractTextFromReader(ctx, file, filePath, map[string]interface{}{
		MetaSourcePath:   filePath,
		MetaExtractionAt: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		e.logger.Warn().Err(err).Dur("duration", time.Since(startTime)).Msg("PDF处理失败")
		return "", nil, err
	}
	return text, metadata, nil
}

// ExtractTextFromReader 从 io.Reader 中提取文本
func (e *EinoPDFTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (text string, meta map[string]interface{}, err error) {
	extraMeta := optionsToMeta(options)
	startTime := time.Now()

	defer func() {
		if r := recover(); r != nil {
			text, meta = "", extraMeta
			err = fmt.Errorf("eino PDF parser panicked for URI %s: %v", uri, r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	docs, err := e.parser.Parse(ctx, reader,
		einoParser.WithURI(uri),
		einoParser.WithExtraMeta(extraMeta),
	)
	duration := time.Since(startTime)
	if err != nil {
		return "", extraMeta, fmt.Errorf("eino PDF parser failed for URI %s: %w", uri, err)
	}
	if len(docs) == 0 {
		return "", extraMeta, fmt.Errorf("eino PDF parser returned no documents for URI %s", uri)
	}

	pages := make([]string, len(docs))
	for i, doc := range docs {
		pages[i] = doc.Content
	}
	fullContent := joinPages(pages, e.pageHeaders)

	finalMetadata := mergeMeta(docs[0].MetaData, extraMeta)
	finalMetadata[MetaBackend] = constants.PDFBackendEino
	finalMetadata[MetaPageCount] = len(docs)
	finalMetadata[MetaTextLength] = len(fullContent)
	finalMetadata[MetaDurationMs] = duration.Milliseconds()

	e.logger.Debug().
		Str("uri", uri).
		Int("pages", len(docs)).
		Int("chars", len(fullContent)).
		Dur("duration", duration).
		Msg("PDF提取完成")
	return fullContent, finalMetadata, nil
}

// ExtractTextFromBytes 从字节数组提取文本内容
func (e *EinoPDFTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	return e.ExtractTextFromReader(ctx, bytes.NewReader(data), uri, options)
}
