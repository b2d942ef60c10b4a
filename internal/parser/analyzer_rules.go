package parser

import (
	"context"
	"regexp"
	"strings"
)

var (
	ruleTokenPattern     = regexp.MustCompile(`[\p{L}\p{N}#+]+(?:[-'.][\p{L}\p{N}#+]+)*|[^\s\p{L}\p{N}]`)
	rulePhraseDelimiters = regexp.MustCompile(`[,;:()\[\]{}|/•·!?\n]+|\.(?:\s|$)`)
)

// phraseStopWords 名词短语的分隔词
var phraseStopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "nor": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "of": {}, "for": {}, "with": {}, "by": {},
	"from": {}, "as": {}, "into": {}, "about": {}, "over": {}, "under": {}, "via": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "am": {},
	"i": {}, "me": {}, "my": {}, "we": {}, "our": {}, "you": {}, "your": {},
	"he": {}, "she": {}, "they": {}, "their": {}, "it": {}, "its": {},
	"this": {}, "that": {}, "these": {}, "those": {},
	"have": {}, "has": {}, "had": {}, "using": {}, "including": {}, "used": {},
	"worked": {}, "led": {}, "built": {}, "developed": {}, "managed": {},
}

// RuleAnalyzer 基于正则和停用词的语言分析器，不依赖任何模型
// 用作 nlp.backend=rules 或模型不可用时的后备
type RuleAnalyzer struct{}

// NewRuleAnalyzer 创建规则分析器
func NewRuleAnalyzer() *RuleAnalyzer {
	return &RuleAnalyzer{}
}

// Analyze 实现 LanguageAnalyzer
func (a *RuleAnalyzer) Analyze(ctx context.Context, text string) (*TextAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &TextAnalysis{
		Tokens:      ruleTokenPattern.FindAllString(text, -1),
		NounPhrases: rulePhrases(text),
	}, nil
}

// rulePhrases 先按标点切段，再在段内按停用词切分出连续的短语
func rulePhrases(text string) []string {
	var phrases []string
	for _, segment := range rulePhraseDelimiters.Split(text, -1) {
		var current []string
		flush := func() {
			if len(current) > 0 {
				phrases = append(phrases, strings.Join(current, " "))
				current = current[:0]
			}
		}
		for _, word := range strings.Fields(segment) {
			if _, stop := phraseStopWords[strings.ToLower(word)]; stop {
				flush()
				continue
			}
			current = append(current, word)
		}
		flush()
	}
	return phrases
}
