package processor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"resume-analyzer-go/internal/config"
	"resume-analyzer-go/internal/constants"
	"resume-analyzer-go/internal/parser"
	"resume-analyzer-go/internal/taxonomy"
	"resume-analyzer-go/internal/types"
)

// BuildResumeAnalyzer 按配置组装完整的分析流水线
// 分类表文件不存在时退回内置分类表；其他加载错误直接返回
func BuildResumeAnalyzer(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*ResumeAnalyzer, error) {
	logger = ensureLogger(logger)

	tax, err := BuildTaxonomy(cfg, logger)
	if err != nil {
		return nil, err
	}

	analyzer, recognizer := buildLanguageAnalyzer(cfg, logger)

	nameOpts := []parser.NameOption{
		parser.WithPersonRecognizer(recognizer),
		parser.WithNameLogger(logger),
	}
	if cfg.Extraction.NameSectionCutoff {
		keywords := cfg.Extraction.SectionKeywords
		if len(keywords) == 0 {
			keywords = types.SectionHeaderKeywords()
		}
		nameOpts = append(nameOpts, parser.WithSectionCutoff(keywords))
	}
	if cfg.Extraction.NameMaxLines > 0 {
		nameOpts = append(nameOpts, parser.WithMaxLines(cfg.Extraction.NameMaxLines))
	}

	skillOpts := []parser.SkillMatcherOption{parser.WithSkillLogger(logger)}
	if analyzer != nil {
		skillOpts = append(skillOpts, parser.WithLanguageAnalyzer(analyzer))
	}

	decoder, err := BuildDecoder(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化文档解码器失败: %w", err)
	}

	logger.Info().
		Int("skills", tax.Len()).
		Str("pdf_backend", cfg.Decoder.PDFBackend).
		Bool("nlp", analyzer != nil).
		Int("workers", cfg.Extraction.Workers).
		Msg("简历分析器初始化完成")

	return CreateAnalyzer(
		[]ComponentOpt{
			WithcompDecoder(decoder),
			WithcompNameExtractor(parser.NewNameExtractor(nameOpts...)),
			WithcompSkillMatcher(parser.NewSkillMatcher(tax, skillOpts...)),
		},
		[]SettingOpt{
			WithsetWorkers(cfg.Extraction.Workers),
			WithsetDocumentTimeout(cfg.DocumentTimeout()),
			WithsetLogger(logger),
		},
	)
}

// BuildTaxonomy 加载配置指定的分类表
func BuildTaxonomy(cfg *config.Config, logger *zerolog.Logger) (*taxonomy.Taxonomy, error) {
	logger = ensureLogger(logger)
	path := cfg.ResolvePath(cfg.Taxonomy.Path)
	if path == "" {
		return taxonomy.Default(), nil
	}
	tax, err := taxonomy.Load(path, logger)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn().Str("path", path).Msg("分类表文件不存在，使用内置分类表")
		return taxonomy.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("加载技能分类表失败: %w", err)
	}
	logger.Debug().Str("path", path).Int("skills", tax.Len()).Msg("已加载技能分类表")
	return tax, nil
}

// buildLanguageAnalyzer NLP关闭时两者都为nil；rules 后端不提供命名实体识别
func buildLanguageAnalyzer(cfg *config.Config, logger *zerolog.Logger) (parser.LanguageAnalyzer, parser.PersonRecognizer) {
	if !cfg.NLP.Enabled {
		logger.Debug().Msg("NLP已关闭，只使用字面技能匹配和姓名启发式")
		return nil, nil
	}
	switch cfg.NLP.Backend {
	case constants.NLPBackendRules:
		return parser.NewRuleAnalyzer(), nil
	default:
		shared := parser.SharedProseAnalyzer()
		return shared, shared
	}
}
