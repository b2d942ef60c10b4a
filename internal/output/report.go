// Package output 把分析报告序列化为 JSON 或 YAML
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"resume-analyzer-go/internal/types"
)

// 支持的输出格式
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat 未知的输出格式
var ErrUnknownFormat = errors.New("unknown output format")

// WriteReports 把报告写入 w；nil 切片输出为空数组
func WriteReports(w io.Writer, reports []*types.ResumeReport, format string, pretty bool) error {
	if reports == nil {
		reports = []*types.ResumeReport{}
	}
	return encode(w, reports, format, pretty)
}

// WriteValue 序列化任意值，供单文件结果和演示输出使用
func WriteValue(w io.Writer, v interface{}, format string, pretty bool) error {
	return encode(w, v, format, pretty)
}

func encode(w io.Writer, v interface{}, format string, pretty bool) error {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if pretty {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("编码JSON失败: %w", err)
		}
		return nil
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("编码YAML失败: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// WriteFile 把报告写入文件，必要时创建上级目录
func WriteFile(path string, reports []*types.ResumeReport, format string, pretty bool) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteReports(f, reports, format, pretty)
}

// FileName 根据格式返回结果文件名，例如 results.json / results.yaml
func FileName(base, format string) string {
	ext := FormatJSON
	if strings.EqualFold(format, FormatYAML) || strings.EqualFold(format, "yml") {
		ext = FormatYAML
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + "." + ext
}
