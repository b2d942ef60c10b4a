package processor

import (
	"time"

	"github.com/rs/zerolog"

	"resume-analyzer-go/internal/parser"
)

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// ----- 组件选项 -----

// WithcompDecoder 设置文档解码器组件
func WithcompDecoder(decoder DocumentDecoder) ComponentOpt {
	return func(c *Components) {
		c.Decoder = decoder
	}
}

// WithcompNameExtractor 设置姓名抽取组件
func WithcompNameExtractor(extractor *parser.NameExtractor) ComponentOpt {
	return func(c *Components) {
		c.NameExtractor = extractor
	}
}

// WithcompSkillMatcher 设置技能匹配组件
func WithcompSkillMatcher(matcher *parser.SkillMatcher) ComponentOpt {
	return func(c *Components) {
		c.SkillMatcher = matcher
	}
}

// ----- 设置选项 -----

// WithsetWorkers 设置批量处理并发数
func WithsetWorkers(workers int) SettingOpt {
	return func(s *Settings) {
		if workers > 0 {
			s.Workers = workers
		}
	}
}

// WithsetDocumentTimeout 设置单个文档的整体超时
func WithsetDocumentTimeout(timeout time.Duration) SettingOpt {
	return func(s *Settings) {
		if timeout > 0 {
			s.DocumentTimeout = timeout
		}
	}
}

// WithsetLogger 设置日志记录器
func WithsetLogger(logger *zerolog.Logger) SettingOpt {
	return func(s *Settings) {
		if logger != nil {
			s.Logger = logger
		} else {
			nop := zerolog.Nop()
			s.Logger = &nop
		}
	}
}

// WithsetTimelocation 设置报告时间使用的时区
func WithsetTimelocation(loc *time.Location) SettingOpt {
	return func(s *Settings) {
		if loc != nil {
			s.TimeLocation = loc
		} else {
			s.TimeLocation = time.Local
		}
	}
}

// WithsetClock 替换时间来源（测试用）
func WithsetClock(now func() time.Time) SettingOpt {
	return func(s *Settings) {
		if now != nil {
			s.Now = now
		}
	}
}

// WithsetIDGenerator 替换文档ID生成函数（测试用）
func WithsetIDGenerator(newID func() string) SettingOpt {
	return func(s *Settings) {
		if newID != nil {
			s.NewID = newID
		}
	}
}
