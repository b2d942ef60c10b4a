package parser

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun   = regexp.MustCompile(`[\s\v\x{85}\p{Z}]+`) // 含Unicode空白
	sentenceEndings = regexp.MustCompile(`[.!?]+`)
)

// Clean 将所有连续空白（含换行、制表符）替换为单个空格，去掉首尾空白并转为小写
// 结果是幂等的：Clean(Clean(s)) == Clean(s)
func Clean(text string) string {
	return strings.ToLower(strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " ")))
}

// CleanLines 与 Clean 相同，但按行处理并保留换行，空行被丢弃
// Clean 的输出不含换行，姓名的逐行启发式需要用这个版本
func CleanLines(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if c := Clean(line); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return strings.Join(cleaned, "\n")
}

// TokenizeWords 按空白切分单词，空输入返回空切片
func TokenizeWords(normalized string) []string {
	fields := strings.Fields(normalized)
	if fields == nil {
		return []string{}
	}
	return fields
}

// TokenizeSentences 按一个或多个 . ! ? 切分句子，去掉首尾空白并丢弃空片段
func TokenizeSentences(normalized string) []string {
	parts := sentenceEndings.Split(normalized, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
