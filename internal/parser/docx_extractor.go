package parser

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog"
)

// DocxExtractor 按段落提取Word文档文本，段落之间以换行分隔
type DocxExtractor struct {
	logger *zerolog.Logger
}

// DocxOption 配置选项
type DocxOption func(*DocxExtractor)

// WithDocxLogger 配置日志记录器
func WithDocxLogger(logger *zerolog.Logger) DocxOption {
	return func(e *DocxExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewDocxExtractor 创建DOCX提取器
func NewDocxExtractor(opts ...DocxOption) *DocxExtractor {
	nop := zerolog.Nop()
	e := &DocxExtractor{logger: &nop}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFromFile 从DOCX文件提取文本和元数据
func (e *DocxExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open DOCX file %s: %w", filePath, err)
	}
	return e.ExtractTextFromBytes(ctx, data, filePath, map[string]interface{}{
		MetaSourcePath:   filePath,
		MetaExtractionAt: time.Now().Format(time.RFC3339),
	})
}

// ExtractTextFromReader 读取全部内容后解析
func (e *DocxExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read DOCX %s: %w", uri, err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri, options)
}

// ExtractTextFromBytes 从字节数组提取文本
func (e *DocxExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	meta := optionsToMeta(options)
	if err := ctx.Err(); err != nil {
		return "", meta, err
	}
	startTime := time.Now()

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", meta, fmt.Errorf("failed to parse docx %s: %w", uri, err)
	}
	defer doc.Close()

	paragraphs, err := DocxParagraphs(doc.Editable().GetContent())
	if err != nil {
		return "", meta, fmt.Errorf("failed to parse docx %s: %w", uri, err)
	}

	text := strings.Join(paragraphs, "\n")
	meta[MetaBackend] = "docx"
	meta[MetaParagraphs] = len(paragraphs)
	meta[MetaTextLength] = len(text)
	meta[MetaDurationMs] = time.Since(startTime).Milliseconds()

	e.logger.Debug().Str("uri", uri).Int("paragraphs", len(paragraphs)).Int("chars", len(text)).Msg("DOCX提取完成")
	return text, meta, nil
}

const (
	// wordprocessingNS WordprocessingML 命名空间
	wordprocessingNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	// markupCompatNS 标记兼容命名空间，文本框会在 mc:Fallback 中再写一份 VML 版本
	markupCompatNS = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

// isWordElement 未声明命名空间时退回按 w 前缀判断
func isWordElement(name xml.Name) bool {
	return name.Space == wordprocessingNS || name.Space == "w"
}

// DocxParagraphs 从 word/document.xml 中取出每个段落 (w:p) 的文本
// w:tab 转为制表符，w:br 转为换行
// 文本框等嵌套段落单独成段，外层段落的文本保留；段落按开始标签的顺序输出
// mc:Fallback 中的重复内容被跳过，DrawingML 的 a:p/a:t 不计入
func DocxParagraphs(documentXML string) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(documentXML))
	type openPara struct {
		slot int
		text strings.Builder
	}
	var (
		paragraphs []string
		stack      []*openPara
		inText     bool
	)
	top := func() *openPara {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == markupCompatNS && t.Name.Local == "Fallback" {
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			if !isWordElement(t.Name) {
				continue
			}
			switch t.Name.Local {
			case "p":
				paragraphs = append(paragraphs, "")
				stack = append(stack, &openPara{slot: len(paragraphs) - 1})
			case "t":
				inText = true
			case "tab":
				if p := top(); p != nil {
					p.text.WriteString("\t")
				}
			case "br", "cr":
				if p := top(); p != nil {
					p.text.WriteString("\n")
				}
			}
		case xml.EndElement:
			if !isWordElement(t.Name) {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if p := top(); p != nil {
					paragraphs[p.slot] = p.text.String()
					stack = stack[:len(stack)-1]
				}
			}
		case xml.CharData:
			if p := top(); inText && p != nil {
				p.text.Write(t)
			}
		}
	}
	return paragraphs, nil
}
