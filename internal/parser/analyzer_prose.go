package parser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"
)

// nounPhraseTags 构成名词短语的词性标签（Penn Treebank）
var nounPhraseTags = map[string]struct{}{
	"NN": {}, "NNS": {}, "NNP": {}, "NNPS": {},
	"JJ": {}, "JJR": {}, "JJS": {},
	"CD": {}, "VBG": {}, "FW": {},
}

// personLabel prose 命名实体识别中人名的标签
const personLabel = "PERSON"

// ProseAnalyzer 基于 prose 的分词、词性标注和命名实体识别
// 同时实现 LanguageAnalyzer 和 PersonRecognizer；无内部可变状态，可并发使用
type ProseAnalyzer struct{}

var (
	proseAnalyzerInstance *ProseAnalyzer
	proseAnalyzerOnce     sync.Once
	proseAnalyzerMutex    sync.Mutex
)

// SharedProseAnalyzer 获取进程内共享的 ProseAnalyzer 单例
func SharedProseAnalyzer() *ProseAnalyzer {
	proseAnalyzerMutex.Lock()
	defer proseAnalyzerMutex.Unlock()

	proseAnalyzerOnce.Do(func() {
		proseAnalyzerInstance = &ProseAnalyzer{}
	})
	return proseAnalyzerInstance
}

// ResetSharedProseAnalyzer 重置单例（主要用于测试）
func ResetSharedProseAnalyzer() {
	proseAnalyzerMutex.Lock()
	defer proseAnalyzerMutex.Unlock()
	proseAnalyzerInstance = nil
	proseAnalyzerOnce = sync.Once{}
}

// Analyze 实现 LanguageAnalyzer：返回 prose 分词结果和按词性合并的名词短语
func (a *ProseAnalyzer) Analyze(ctx context.Context, text string) (*TextAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	tokens := doc.Tokens()
	analysis := &TextAnalysis{Tokens: make([]string, 0, len(tokens))}
	var chunk []string
	flush := func() {
		if len(chunk) > 0 {
			analysis.NounPhrases = append(analysis.NounPhrases, strings.Join(chunk, " "))
			chunk = nil
		}
	}
	for _, tok := range tokens {
		analysis.Tokens = append(analysis.Tokens, tok.Text)
		if _, ok := nounPhraseTags[tok.Tag]; ok {
			chunk = append(chunk, tok.Text)
			continue
		}
		flush()
	}
	flush()
	return analysis, nil
}

// FindPersonEntities 实现 PersonRecognizer
func (a *ProseAnalyzer) FindPersonEntities(ctx context.Context, text string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	var persons []string
	for _, ent := range doc.Entities() {
		if ent.Label == personLabel {
			persons = append(persons, ent.Text)
		}
	}
	return persons, nil
}
