package parser

import (
	"fmt"
	"strings"

	"resume-analyzer-go/internal/constants"
)

// 抽取结果元数据键
const (
	MetaSourcePath   = "source_file_path"
	MetaBackend      = "backend"
	MetaPageCount    = "page_count"
	MetaTextLength   = "text_length"
	MetaDurationMs   = "processing_duration_ms"
	MetaParagraphs   = "paragraph_count"
	MetaExtractionAt = "extraction_time"
)

// joinPages 拼接逐页文本，空白页跳过；withHeaders 时每页前加 "--- Page N ---"
// 页码按原始页序计算，不因跳过空白页而改变
func joinPages(pages []string, withHeaders bool) string {
	var sb strings.Builder
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		if withHeaders {
			fmt.Fprintf(&sb, constants.PageHeaderFormat, i+1)
		} else if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(page)
		if withHeaders {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// mergeMeta 复制 extra 到 dst，dst 为 nil 时新建
func mergeMeta(dst map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	if dst == nil {
		dst = make(map[string]interface{}, len(extra))
	}
	for k, v := range extra {
		dst[k] = v
	}
	return dst
}

// optionsToMeta 把调用方传入的 options 转成元数据
func optionsToMeta(options interface{}) map[string]interface{} {
	switch v := options.(type) {
	case nil:
		return make(map[string]interface{})
	case map[string]interface{}:
		return mergeMeta(nil, v)
	default:
		return map[string]interface{}{"original_options": options}
	}
}
