package processor

import (
	"context"
	"io"

	"resume-analyzer-go/internal/types"
)

//
// 文档解码相关接口
//

// TextExtractor 单一格式的文本提取器
type TextExtractor interface {
	// ExtractFromFile 从文件提取文本和元数据
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)

	// ExtractTextFromReader 从io.Reader提取文本和元数据
	// 参数：
	// - uri: 资源标识符（用于日志或元数据）
	// - options: 可选的附加元数据
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error)

	// ExtractTextFromBytes 从字节数组提取文本和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error)
}

// DocumentDecoder 把原始文档解码为纯文本
// 失败时返回 *DecodeError，可用 errors.Is 区分 ErrUnsupportedFormat 和 ErrReadFailure
type DocumentDecoder interface {
	Decode(ctx context.Context, path string) (string, map[string]interface{}, error)
	DecodeDocument(ctx context.Context, doc types.RawDocument) (string, map[string]interface{}, error)
}

//
// 简历分析服务接口
//

// ResumeService 简历分析服务
type ResumeService interface {
	// AnalyzeFile 分析单个文件；解码失败时仍返回报告（结果为空，Error 字段记录原因）
	AnalyzeFile(ctx context.Context, path string) (*types.ResumeReport, error)

	// AnalyzeBatch 并发分析多个文件，结果顺序与输入一致
	AnalyzeBatch(ctx context.Context, paths []string) ([]*types.ResumeReport, error)

	// AnalyzeDir 分析目录下所有受支持格式的文件（不递归）
	AnalyzeDir(ctx context.Context, dir string) ([]*types.ResumeReport, error)
}
