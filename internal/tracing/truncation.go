package tracing

import (
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

const (
	// DefaultMaxLength 默认最大属性长度
	DefaultMaxLength = 200

	// MaxPathLength 文件路径最大长度
	MaxPathLength = 120

	// MaxPreviewLength 文档预览最大长度
	MaxPreviewLength = 80
)

// piiKeys 属性名包含这些关键字时值会被掩码
var piiKeys = []string{"email", "phone", "name", "姓名", "address", "地址", "contact"}

var (
	previewEmail = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	previewPhone = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	previewSpace = regexp.MustCompile(`\s+`)
)

// SafeAttributeValue 候选人联系方式、姓名类属性做掩码，其余按 maxLength 截断
func SafeAttributeValue(name string, value string, maxLength int) string {
	lowerName := strings.ToLower(name)
	for _, key := range piiKeys {
		if strings.Contains(lowerName, key) {
			return MaskPII(value)
		}
	}
	return TruncateString(value, maxLength)
}

// SafeAttribute 构造经过掩码和截断的字符串属性
func SafeAttribute(key, value string) attribute.KeyValue {
	return attribute.String(key, SafeAttributeValue(key, value, DefaultMaxLength))
}

// MaskPII 保留首尾字符，其余替换为 *
func MaskPII(value string) string {
	runes := []rune(value)
	switch n := len(runes); {
	case n == 0:
		return ""
	case n == 1:
		return "*"
	case n == 2:
		// "Li" -> "L*"
		return string(runes[0]) + "*"
	case n <= 4:
		// "Ann" -> "A*n"
		return string(runes[0]) + strings.Repeat("*", n-2) + string(runes[n-1])
	default:
		// "jane@example.com" -> "ja************om"
		return string(runes[:2]) + strings.Repeat("*", n-4) + string(runes[n-2:])
	}
}

// TruncateString 超长时保留首尾，中间用 ... 连接
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	half := max((maxLength-3)/2, 1)
	return string(runes[:half]) + "..." + string(runes[len(runes)-half:])
}

// SafePath 截断过长的文件路径
func SafePath(path string) string {
	return TruncateString(path, MaxPathLength)
}

// SafePreview 解码文本的开头，用于排查空文本或乱码
// 空白合并为一个空格，邮箱和电话替换为占位符，超出 MaxPreviewLength 的部分截去
func SafePreview(text string) string {
	preview := strings.TrimSpace(previewSpace.ReplaceAllString(text, " "))
	preview = previewEmail.ReplaceAllString(preview, "[email]")
	preview = previewPhone.ReplaceAllString(preview, "[phone]")

	runes := []rune(preview)
	if len(runes) <= MaxPreviewLength {
		return preview
	}
	return string(runes[:MaxPreviewLength-3]) + "..."
}
