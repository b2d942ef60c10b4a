package processor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"resume-analyzer-go/internal/config"
	"resume-analyzer-go/internal/constants"
	"resume-analyzer-go/internal/parser"
	"resume-analyzer-go/internal/types"
)

// BuildPDFExtractor 根据配置返回合适的PDF解析器实现
func BuildPDFExtractor(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (TextExtractor, error) {
	logger = ensureLogger(logger)
	switch cfg.Decoder.PDFBackend {
	case constants.PDFBackendLedongthuc:
		logger.Debug().Msg("使用 ledongthuc/pdf 作为PDF解析器")
		return parser.NewLedongthucPDFExtractor(
			parser.WithLedongthucPageHeaders(cfg.Decoder.PageHeaders),
			parser.WithLedongthucLogger(logger),
		), nil
	case constants.PDFBackendEino, "":
		logger.Debug().Msg("使用 Eino 作为PDF解析器")
		return parser.NewEinoPDFTextExtractor(ctx,
			parser.WithEinoPageHeaders(cfg.Decoder.PageHeaders),
			parser.WithEinoTimeout(cfg.DecoderTimeout()),
			parser.WithEinoLogger(logger),
		)
	default:
		return nil, fmt.Errorf("%w: 未知的PDF解析后端 %q", config.ErrInvalidConfig, cfg.Decoder.PDFBackend)
	}
}

// BuildDecoder 按配置组装PDF、DOCX和纯文本解码器
func BuildDecoder(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*Decoder, error) {
	logger = ensureLogger(logger)
	pdfExtractor, err := BuildPDFExtractor(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewDecoder(
		WithExtractor(types.FormatPDF, pdfExtractor),
		WithExtractor(types.FormatDOCX, parser.NewDocxExtractor(parser.WithDocxLogger(logger))),
		WithDecoderTimeout(cfg.DecoderTimeout()),
		WithDecoderLogger(logger),
	), nil
}

func ensureLogger(logger *zerolog.Logger) *zerolog.Logger {
	if logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return logger
}
