package parser

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAnalyzerUnavailable 没有配置语言分析能力
	ErrAnalyzerUnavailable = errors.New("language analyzer is unavailable")
	// ErrAnalysisFailed 语言分析（分词、名词短语、实体识别）失败
	ErrAnalysisFailed = errors.New("language analysis failed")
	// ErrStrategyPanic 抽取策略内部发生panic
	ErrStrategyPanic = errors.New("extraction strategy panicked")
)

// TextAnalysis 语言分析结果
type TextAnalysis struct {
	Tokens      []string // 分词结果（标点与单词分开）
	NounPhrases []string // 连续的名词短语块
}

// LanguageAnalyzer 提供分词和名词短语切分能力
type LanguageAnalyzer interface {
	Analyze(ctx context.Context, text string) (*TextAnalysis, error)
}

// PersonRecognizer 命名实体识别能力，返回被标注为人名的文本片段
type PersonRecognizer interface {
	FindPersonEntities(ctx context.Context, text string) ([]string, error)
}

// StrategyError 某个抽取策略失败的原因
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("strategy %s: %v", e.Strategy, e.Err)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}

// 策略名称，用于日志和追踪
const (
	StrategyLiteral       = "literal"
	StrategyContextual    = "contextual"
	StrategyNameHeuristic = "name_heuristic"
	StrategyNameNER       = "name_ner"
)

// runStrategy 在策略边界把panic转换为 StrategyError
func runStrategy[T any](strategy string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = &StrategyError{Strategy: strategy, Err: fmt.Errorf("%w: %v", ErrStrategyPanic, r)}
		}
	}()
	result, err = fn()
	if err != nil {
		var se *StrategyError
		if !errors.As(err, &se) {
			err = &StrategyError{Strategy: strategy, Err: err}
		}
	}
	return result, err
}
