package parser

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"resume-analyzer-go/internal/constants"
	"resume-analyzer-go/internal/tracing"
)

// NameExtractor 姓名抽取：先按行启发式查找，失败后回退到命名实体识别
//
// 输入已被转为小写，标题化只用于恢复展示用的大小写，并不帮助判断哪一行是姓名；
// 任何由两个及以上纯字母单词组成的行都会被接受。
type NameExtractor struct {
	recognizer     PersonRecognizer
	sectionHeaders map[string]struct{}
	maxLines       int
	logger         *zerolog.Logger
}

// NameOption 姓名抽取器的配置选项
type NameOption func(*NameExtractor)

// WithPersonRecognizer 设置命名实体识别后备
func WithPersonRecognizer(r PersonRecognizer) NameOption {
	return func(n *NameExtractor) {
		n.recognizer = r
	}
}

// WithSectionCutoff 遇到章节标题行（如 "experience"、"skills"）时停止逐行启发式
func WithSectionCutoff(headers []string) NameOption {
	return func(n *NameExtractor) {
		n.sectionHeaders = make(map[string]struct{}, len(headers))
		for _, h := range headers {
			n.sectionHeaders[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
		}
	}
}

// WithMaxLines 只在前 n 个非空行中查找，n <= 0 表示不限制
func WithMaxLines(n int) NameOption {
	return func(e *NameExtractor) {
		e.maxLines = n
	}
}

// WithNameLogger 设置日志记录器
func WithNameLogger(logger *zerolog.Logger) NameOption {
	return func(n *NameExtractor) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNameExtractor 创建姓名抽取器；不带选项时行为与最简单的逐行启发式一致
func NewNameExtractor(opts ...NameOption) *NameExtractor {
	nop := zerolog.Nop()
	n := &NameExtractor{logger: &nop}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Extract 返回姓名，找不到时返回 constants.NameNotFound
func (n *NameExtractor) Extract(ctx context.Context, text string) string {
	name, err := runStrategy(StrategyNameHeuristic, func() (string, error) {
		return n.ExtractFromLines(text), nil
	})
	if err != nil {
		n.logger.Error().Err(err).Msg("逐行姓名启发式失败")
		tracing.RecordStrategyDegraded(trace.SpanFromContext(ctx), StrategyNameHeuristic, err)
	} else if name != "" {
		return name
	}

	name, err = runStrategy(StrategyNameNER, func() (string, error) {
		return n.ExtractWithRecognizer(ctx, text)
	})
	if errors.Is(err, ErrAnalyzerUnavailable) {
		n.logger.Debug().Msg("未配置命名实体识别，返回占位值")
		return constants.NameNotFound
	}
	if err != nil {
		n.logger.Warn().Err(err).Msg("命名实体识别失败，返回占位值")
		tracing.RecordStrategyDegraded(trace.SpanFromContext(ctx), StrategyNameNER, err)
		return constants.NameNotFound
	}
	if name == "" {
		return constants.NameNotFound
	}
	return name
}

// ExtractFromLines 逐行启发式：返回第一个标题化后由至少两个纯字母单词组成的行，找不到返回空串
func (n *NameExtractor) ExtractFromLines(text string) string {
	caser := cases.Title(language.Und)
	seen := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seen++
		if n.maxLines > 0 && seen > n.maxLines {
			return ""
		}
		if _, isHeader := n.sectionHeaders[strings.ToLower(strings.TrimRight(line, ":"))]; isHeader {
			return ""
		}
		candidate := caser.String(line)
		words := strings.Fields(candidate)
		if len(words) >= 2 && allAlpha(words) {
			return candidate
		}
	}
	return ""
}

// ExtractWithRecognizer 使用命名实体识别返回第一个人名
func (n *NameExtractor) ExtractWithRecognizer(ctx context.Context, text string) (string, error) {
	if n.recognizer == nil {
		return "", ErrAnalyzerUnavailable
	}
	persons, err := n.recognizer.FindPersonEntities(ctx, text)
	if err != nil {
		return "", err
	}
	for _, p := range persons {
		if p = strings.TrimSpace(p); p != "" {
			return p, nil
		}
	}
	return "", nil
}

func allAlpha(words []string) bool {
	for _, w := range words {
		for _, r := range w {
			if !unicode.IsLetter(r) {
				return false
			}
		}
	}
	return true
}
