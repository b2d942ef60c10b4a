package parser

import "regexp"

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
)

// ExtractEmail 返回从左到右第一个匹配的邮箱地址，不校验可达性
func ExtractEmail(normalized string) (string, bool) {
	m := emailPattern.FindString(normalized)
	return m, m != ""
}

// ExtractPhone 返回第一个匹配的电话号码，保留原始分隔符
func ExtractPhone(normalized string) (string, bool) {
	m := phonePattern.FindString(normalized)
	return m, m != ""
}
