package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"resume-analyzer-go/internal/constants"
	"resume-analyzer-go/internal/logger"
	"resume-analyzer-go/internal/parser"
	"resume-analyzer-go/internal/tracing"
	"resume-analyzer-go/internal/types"
)

var tracer = otel.Tracer("processor")

// Components 聚合所有功能组件依赖，便于集中管理和测试替换
type Components struct {
	Decoder       DocumentDecoder       // 文档解码
	NameExtractor *parser.NameExtractor // 姓名抽取
	SkillMatcher  *parser.SkillMatcher  // 技能匹配
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	Workers         int              // 批量处理并发数
	DocumentTimeout time.Duration    // 单个文档整体超时
	Logger          *zerolog.Logger  // 日志记录器
	TimeLocation    *time.Location   // 时区设置
	Now             func() time.Time // 时间来源
	NewID           func() string    // 文档ID生成
}

// ResumeAnalyzer 简历分析流水线：解码 -> 规范化 -> {联系方式, 姓名, 技能}
type ResumeAnalyzer struct {
	Components
	settings Settings
}

var _ ResumeService = (*ResumeAnalyzer)(nil)

// CreateAnalyzer 用组件选项和设置选项创建分析器
// 姓名抽取和技能匹配是必需组件；解码器只在按文件分析时需要
func CreateAnalyzer(compOpts []ComponentOpt, setOpts []SettingOpt) (*ResumeAnalyzer, error) {
	comp := Components{}
	for _, opt := range compOpts {
		opt(&comp)
	}
	if comp.NameExtractor == nil {
		return nil, ErrNameExtractorNotInit
	}
	if comp.SkillMatcher == nil {
		return nil, ErrSkillMatcherNotInit
	}

	nop := zerolog.Nop()
	set := Settings{
		Workers:         constants.DefaultWorkers,
		DocumentTimeout: constants.DefaultDocumentTimeout,
		Logger:          &nop,
		TimeLocation:    time.Local,
		Now:             time.Now,
		NewID:           uuid.NewString,
	}
	for _, opt := range setOpts {
		opt(&set)
	}

	return &ResumeAnalyzer{Components: comp, settings: set}, nil
}

// Settings 返回分析器设置的副本
func (a *ResumeAnalyzer) Settings() Settings {
	return a.settings
}

// Extract 对纯文本执行完整抽取，结果总是非nil
// 联系方式和技能基于 Clean 后的文本，姓名启发式基于保留换行的 CleanLines 文本
// 规范化后为空的文本（例如扫描版PDF）返回所有字段为空的结果，不填姓名占位值
func (a *ResumeAnalyzer) Extract(ctx context.Context, text string) *types.ExtractionResult {
	ctx, span := tracer.Start(ctx, "ResumeAnalyzer.Extract")
	defer span.End()

	normalized := parser.Clean(text)
	result := types.EmptyExtractionResult()
	if normalized == "" {
		span.SetAttributes(attribute.Bool("text.empty", true))
		a.settings.Logger.Debug().Msg("文本为空，跳过抽取")
		return result
	}

	if email, ok := parser.ExtractEmail(normalized); ok {
		result.Email = types.StringPtr(email)
	}
	if phone, ok := parser.ExtractPhone(normalized); ok {
		result.Phone = types.StringPtr(phone)
	}
	result.Name = types.StringPtr(a.NameExtractor.Extract(ctx, parser.CleanLines(text)))
	result.Skills = a.SkillMatcher.ExtractCombinedSkills(ctx, normalized)

	span.SetAttributes(
		attribute.Int("text.length", len(text)),
		attribute.Bool("result.has_email", result.Email != nil),
		attribute.Bool("result.has_phone", result.Phone != nil),
		attribute.Int("result.skills", len(result.Skills)),
	)
	return result
}

// Inspection 各阶段的中间结果，用于演示和排查
type Inspection struct {
	Text          string   `json:"text" yaml:"text"`
	Cleaned       string   `json:"cleaned" yaml:"cleaned"`
	Words         []string `json:"words" yaml:"words"`
	Sentences     []string `json:"sentences" yaml:"sentences"`
	Email         string   `json:"email" yaml:"email"`
	Phone         string   `json:"phone" yaml:"phone"`
	Name          string   `json:"name" yaml:"name"`
	LiteralSkills []string `json:"literal_skills" yaml:"literal_skills"`
	ContextSkills []string `json:"contextual_skills" yaml:"contextual_skills"`
	ContextError  string   `json:"contextual_error,omitempty" yaml:"contextual_error,omitempty"`
	Combined      []string `json:"combined_skills" yaml:"combined_skills"`
}

// Inspect 逐步运行流水线并保留每一步的输出
func (a *ResumeAnalyzer) Inspect(ctx context.Context, text string) *Inspection {
	cleaned := parser.Clean(text)
	ins := &Inspection{
		Text:          text,
		Cleaned:       cleaned,
		Words:         parser.TokenizeWords(cleaned),
		Sentences:     parser.TokenizeSentences(cleaned),
		Name:          a.NameExtractor.Extract(ctx, parser.CleanLines(text)),
		LiteralSkills: a.SkillMatcher.ExtractSkills(cleaned),
		Combined:      a.SkillMatcher.ExtractCombinedSkills(ctx, cleaned),
	}
	ins.Email, _ = parser.ExtractEmail(cleaned)
	ins.Phone, _ = parser.ExtractPhone(cleaned)

	contextual, err := a.SkillMatcher.ExtractSkillsWithContext(ctx, cleaned)
	if err != nil {
		ins.ContextError = err.Error()
		contextual = []string{}
	}
	ins.ContextSkills = contextual
	return ins
}

// AnalyzeDocument 分析内存中的文档
func (a *ResumeAnalyzer) AnalyzeDocument(ctx context.Context, doc types.RawDocument) (*types.ResumeReport, error) {
	if a.Decoder == nil {
		return nil, ErrDecoderNotInit
	}
	report := a.newReport(doc.URI, doc.Format)
	ctx = logger.WithDocumentID(ctx, report.DocumentID)

	text, meta, err := a.Decoder.DecodeDocument(ctx, doc)
	report.Metadata = meta
	if err != nil {
		report.Error = err.Error()
		return report, NewDecodeError(doc.URI, err)
	}
	report.Result = a.Extract(ctx, text)
	return report, nil
}

// AnalyzeFile 分析单个文件
// 解码失败时仍返回报告，结果为空且 Error 字段记录原因，同时返回 *ProcessError
func (a *ResumeAnalyzer) AnalyzeFile(ctx context.Context, path string) (*types.ResumeReport, error) {
	if a.Decoder == nil {
		return nil, ErrDecoderNotInit
	}

	report := a.newReport(path, DetectFormat(path))
	ctx = logger.WithDocumentID(ctx, report.DocumentID)
	log := a.settings.Logger.With().Str("document_id", report.DocumentID).Str("path", path).Logger()

	ctx, span := tracer.Start(ctx, "ResumeAnalyzer.AnalyzeFile")
	defer span.End()
	span.SetAttributes(
		attribute.String("document.id", report.DocumentID),
		attribute.String("document.path", tracing.SafePath(path)),
		attribute.String("document.format", string(report.Format)),
	)

	start := a.settings.Now()
	text, meta, err := a.Decoder.Decode(ctx, path)
	report.Metadata = meta
	if err != nil {
		report.Error = err.Error()
		errType := tracing.ClassifyError(err)
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			errType = decodeErr.ErrorType()
		}
		tracing.RecordError(span, err, errType)
		log.Warn().Err(err).Msg("简历解码失败，输出空结果")
		return report, NewDecodeError(path, err)
	}

	report.Result = a.Extract(ctx, text)
	if report.Result.Name != nil {
		span.SetAttributes(tracing.SafeAttribute("result.name", *report.Result.Name))
	}
	if report.Result.Email != nil {
		span.SetAttributes(tracing.SafeAttribute("result.email", *report.Result.Email))
	}
	span.SetStatus(codes.Ok, "")

	log.Info().
		Int("skills", len(report.Result.Skills)).
		Dur("duration", a.settings.Now().Sub(start)).
		Msg("简历分析完成")
	return report, nil
}

// AnalyzeBatch 并发分析多个文件，每个文件有独立的超时
// 单个文件失败只体现在对应报告的 Error 字段；只有外部 ctx 取消时返回错误
func (a *ResumeAnalyzer) AnalyzeBatch(ctx context.Context, paths []string) ([]*types.ResumeReport, error) {
	if a.Decoder == nil {
		return nil, ErrDecoderNotInit
	}

	ctx, span := tracer.Start(ctx, "ResumeAnalyzer.AnalyzeBatch")
	defer span.End()
	span.SetAttributes(
		attribute.Int("batch.size", len(paths)),
		attribute.Int("batch.workers", a.settings.Workers),
	)

	reports := make([]*types.ResumeReport, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.settings.Workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docCtx, cancel := context.WithTimeout(gctx, a.settings.DocumentTimeout)
			defer cancel()

			report, err := a.AnalyzeFile(docCtx, path)
			if report == nil {
				report = a.newReport(path, DetectFormat(path))
				if err != nil {
					report.Error = err.Error()
				}
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		tracing.RecordError(span, err, tracing.ClassifyError(err))
		return reports, err
	}

	failed := 0
	for _, r := range reports {
		if r != nil && r.Error != "" {
			failed++
		}
	}
	span.SetAttributes(attribute.Int("batch.failed", failed))
	a.settings.Logger.Info().Int("total", len(paths)).Int("failed", failed).Msg("批量分析完成")
	return reports, nil
}

// AnalyzeDir 分析目录下所有受支持格式的文件（不递归，按文件名排序）
func (a *ResumeAnalyzer) AnalyzeDir(ctx context.Context, dir string) ([]*types.ResumeReport, error) {
	paths, err := ListDocuments(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		a.settings.Logger.Warn().Str("dir", dir).Msg("目录中没有可分析的简历")
		return []*types.ResumeReport{}, nil
	}
	return a.AnalyzeBatch(ctx, paths)
}

// ListDocuments 列出目录下受支持格式的文件
func ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, NewListError(dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsSupported(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func (a *ResumeAnalyzer) newReport(path string, format types.DocumentFormat) *types.ResumeReport {
	return &types.ResumeReport{
		DocumentID:  a.settings.NewID(),
		SourcePath:  path,
		Format:      format,
		Result:      types.EmptyExtractionResult(),
		ProcessedAt: a.settings.Now().In(a.settings.TimeLocation),
	}
}
