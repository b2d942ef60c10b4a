package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"resume-analyzer-go/internal/constants"
)

// LedongthucPDFExtractor 基于 ledongthuc/pdf 的纯Go PDF提取器
type LedongthucPDFExtractor struct {
	pageHeaders bool
	logger      *zerolog.Logger
}

// LedongthucOption 配置选项
type LedongthucOption func(*LedongthucPDFExtractor)

// WithLedongthucLogger 配置日志记录器
func WithLedongthucLogger(logger *zerolog.Logger) LedongthucOption {
	return func(e *LedongthucPDFExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLedongthucPageHeaders 是否在每页文本前插入页眉
func WithLedongthucPageHeaders(enabled bool) LedongthucOption {
	return func(e *LedongthucPDFExtractor) {
		e.pageHeaders = enabled
	}
}

// NewLedongthucPDFExtractor 创建提取器
func NewLedongthucPDFExtractor(opts ...LedongthucOption) *LedongthucPDFExtractor {
	nop := zerolog.Nop()
	e := &LedongthucPDFExtractor{pageHeaders: true, logger: &nop}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFromFile 从PDF文件提取文本和元数据
func (e *LedongthucPDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open PDF file %s: %w", filePath, err)
	}
	return e.ExtractTextFromBytes(ctx, data, filePath, map[string]interface{}{
		MetaSourcePath:   filePath,
		MetaExtractionAt: time.Now().Format(time.RFC3339),
	})
}

// ExtractTextFromReader 读取全部内容后解析；ledongthuc/pdf 需要 io.ReaderAt
func (e *LedongthucPDFExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read PDF %s: %w", uri, err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri, options)
}

// ExtractTextFromBytes 从字节数组逐页提取纯文本
func (e *LedongthucPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (text string, meta map[string]interface{}, err error) {
	meta = optionsToMeta(options)
	startTime := time.Now()

	// ledongthuc/pdf 遇到损坏的文件会panic
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("ledongthuc PDF parser panicked for URI %s: %v", uri, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", meta, fmt.Errorf("ledongthuc PDF parser failed for URI %s: %w", uri, err)
	}

	numPages := r.NumPage()
	pages := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", meta, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			e.logger.Warn().Err(pageErr).Int("page", i).Str("uri", uri).Msg("跳过无法解析的页面")
			continue
		}
		pages[i-1] = content
	}

	text = joinPages(pages, e.pageHeaders)
	meta[MetaBackend] = constants.PDFBackendLedongthuc
	meta[MetaPageCount] = numPages
	meta[MetaTextLength] = len(text)
	meta[MetaDurationMs] = time.Since(startTime).Milliseconds()

	e.logger.Debug().Str("uri", uri).Int("pages", numPages).Int("chars", len(text)).Msg("PDF提取完成")
	return text, meta, nil
}
