package parser

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"resume-analyzer-go/internal/taxonomy"
	"resume-analyzer-go/internal/tracing"
)

// SkillMatcher 技能匹配器：字面匹配 + 上下文匹配（别名解析、名词短语子串匹配）
type SkillMatcher struct {
	taxonomy *taxonomy.Taxonomy
	analyzer LanguageAnalyzer
	logger   *zerolog.Logger
}

// SkillMatcherOption 技能匹配器选项
type SkillMatcherOption func(*SkillMatcher)

// WithLanguageAnalyzer 设置上下文匹配使用的语言分析器
func WithLanguageAnalyzer(a LanguageAnalyzer) SkillMatcherOption {
	return func(m *SkillMatcher) {
		m.analyzer = a
	}
}

// WithSkillLogger 设置日志记录器
func WithSkillLogger(logger *zerolog.Logger) SkillMatcherOption {
	return func(m *SkillMatcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewSkillMatcher 创建技能匹配器；tax 为 nil 时使用内置分类表
func NewSkillMatcher(tax *taxonomy.Taxonomy, opts ...SkillMatcherOption) *SkillMatcher {
	if tax == nil {
		tax = taxonomy.Default()
	}
	nop := zerolog.Nop()
	m := &SkillMatcher{taxonomy: tax, logger: &nop}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Taxonomy 返回匹配器使用的分类表
func (m *SkillMatcher) Taxonomy() *taxonomy.Taxonomy {
	return m.taxonomy
}

// ExtractSkills 字面匹配：规范技能的小写形式必须与某个单词完全相等（不是子串）
// 纯空白分词下多词技能永远不会命中，由上下文匹配补足
func (m *SkillMatcher) ExtractSkills(normalized string) []string {
	tokens := make(map[string]struct{})
	for _, tok := range TokenizeWords(normalized) {
		tokens[tok] = struct{}{}
	}
	found := []string{}
	m.taxonomy.Each(func(canonical, lower string) {
		if _, ok := tokens[lower]; ok {
			found = append(found, canonical)
		}
	})
	return found
}

// ExtractSkillsWithContext 上下文匹配：
// (a) 分词结果与规范名或别名区分大小写地相等时，加入解析后的规范名；
// (b) 对每个名词短语，凡规范名小写形式是短语小写形式子串的都加入。
// 子串匹配可能带来误报（短技能名嵌在无关的长词里）
func (m *SkillMatcher) ExtractSkillsWithContext(ctx context.Context, text string) ([]string, error) {
	return runStrategy(StrategyContextual, func() ([]string, error) {
		if m.analyzer == nil {
			return nil, ErrAnalyzerUnavailable
		}
		analysis, err := m.analyzer.Analyze(ctx, text)
		if err != nil {
			return nil, err
		}

		found := make(map[string]struct{})
		for _, tok := range analysis.Tokens {
			if canonical, ok := m.taxonomy.Resolve(tok); ok {
				found[canonical] = struct{}{}
			}
		}
		for _, phrase := range analysis.NounPhrases {
			lowered := strings.ToLower(phrase)
			m.taxonomy.Each(func(canonical, lower string) {
				if strings.Contains(lowered, lower) {
					found[canonical] = struct{}{}
				}
			})
		}
		return m.ordered(found), nil
	})
}

// ExtractCombinedSkills 两种策略结果的并集，按规范名去重
// 任一策略失败时记录日志并视为空结果，不影响另一策略
func (m *SkillMatcher) ExtractCombinedSkills(ctx context.Context, normalized string) []string {
	found := make(map[string]struct{})

	literal, err := runStrategy(StrategyLiteral, func() ([]string, error) {
		return m.ExtractSkills(normalized), nil
	})
	if err != nil {
		m.logger.Error().Err(err).Str("strategy", StrategyLiteral).Msg("字面技能匹配失败，按空结果处理")
		tracing.RecordStrategyDegraded(trace.SpanFromContext(ctx), StrategyLiteral, err)
	}
	for _, s := range literal {
		found[s] = struct{}{}
	}

	contextual, err := m.ExtractSkillsWithContext(ctx, normalized)
	switch {
	case errors.Is(err, ErrAnalyzerUnavailable):
		m.logger.Debug().Str("strategy", StrategyContextual).Msg("未配置语言分析器，跳过上下文技能匹配")
	case err != nil:
		m.logger.Warn().Err(err).Str("strategy", StrategyContextual).Msg("上下文技能匹配失败，按空结果处理")
		tracing.RecordStrategyDegraded(trace.SpanFromContext(ctx), StrategyContextual, err)
	}
	for _, s := range contextual {
		found[s] = struct{}{}
	}

	return m.ordered(found)
}

// ordered 按分类表定义顺序输出技能集合
func (m *SkillMatcher) ordered(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return m.taxonomy.Order(out[i]) < m.taxonomy.Order(out[j])
	})
	return out
}
