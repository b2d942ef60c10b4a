package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"resume-analyzer-go/internal/constants"
	"resume-analyzer-go/internal/logger"
	"resume-analyzer-go/internal/tracing"
)

// ErrInvalidConfig 配置值不合法
var ErrInvalidConfig = errors.New("invalid configuration")

// 环境变量名，优先级高于配置文件
const (
	EnvLogLevel     = "RESUME_ANALYZER_LOG_LEVEL"
	EnvTaxonomyPath = "RESUME_ANALYZER_TAXONOMY"
	EnvPDFBackend   = "RESUME_ANALYZER_PDF_BACKEND"
	EnvNLPBackend   = "RESUME_ANALYZER_NLP_BACKEND"
	EnvWorkers      = "RESUME_ANALYZER_WORKERS"
	EnvOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Config 应用程序配置
type Config struct {
	Logger     logger.Config    `yaml:"logger"`
	Taxonomy   TaxonomyConfig   `yaml:"taxonomy"`
	Decoder    DecoderConfig    `yaml:"decoder"`
	NLP        NLPConfig        `yaml:"nlp"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Output     OutputConfig     `yaml:"output"`
	Watch      WatchConfig      `yaml:"watch"`
	Tracing    tracing.Config   `yaml:"tracing"`
	Datasets   []DatasetConfig  `yaml:"datasets"`

	// Workspace 工作区根目录，相对路径都以此为基准
	Workspace string `yaml:"workspace"`
}

// TaxonomyConfig 技能分类表配置
type TaxonomyConfig struct {
	Path string `yaml:"path"` // 空表示使用内置分类表；支持 .yaml/.yml/.csv
}

// DecoderConfig 文档解码配置
type DecoderConfig struct {
	PDFBackend  string `yaml:"pdf_backend"`  // eino 或 ledongthuc
	PageHeaders bool   `yaml:"page_headers"` // 每页前插入 "--- Page N ---"
	Timeout     string `yaml:"timeout"`      // 单个文件解码超时，例如 "30s"
}

// NLPConfig 语言分析配置
type NLPConfig struct {
	Enabled bool   `yaml:"enabled"` // 关闭后不做上下文技能匹配和命名实体识别
	Backend string `yaml:"backend"` // prose 或 rules
}

// ExtractionConfig 抽取流程配置
type ExtractionConfig struct {
	Workers           int      `yaml:"workers"`                    // 批量处理并发数
	DocumentTimeout   string   `yaml:"document_timeout"`           // 单个文档整体超时
	NameSectionCutoff bool     `yaml:"name_section_cutoff"`        // 遇到章节标题后停止查找姓名
	SectionKeywords   []string `yaml:"section_keywords,omitempty"` // 章节标题关键字，空则使用内置列表
	NameMaxLines      int      `yaml:"name_max_lines"`             // 只在前N个非空行中查找姓名，0不限制
}

// OutputConfig 结果输出配置
type OutputConfig struct {
	Format string `yaml:"format"` // json 或 yaml
	Dir    string `yaml:"dir"`    // 批量结果输出目录
	Pretty bool   `yaml:"pretty"` // JSON缩进
}

// WatchConfig 目录监听配置
type WatchConfig struct {
	SettleDelay   string `yaml:"settle_delay"`    // 最后一次写入后等待多久再分析
	RatePerMinute int    `yaml:"rate_per_minute"` // 每分钟最多分析的文件数，0不限速也不重试
	MaxRetries    int    `yaml:"max_retries"`     // 读取失败的重试次数
	RetryWait     string `yaml:"retry_wait"`      // 重试退避基数
}

// DatasetConfig 命名CSV数据集
type DatasetConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// LoadConfig 从文件加载配置
// configPath 为空时依次查找常见位置，都找不到则返回默认配置
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = findConfigFile()
		if configPath == "" {
			cfg := createDefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, cfg.Validate()
		}
	}

	cfg, err := LoadConfigFromFileOnly(configPath)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFromFileOnly 从文件加载配置，不从环境变量覆盖，也不做校验
// 文件中缺失的字段保留默认值
func LoadConfigFromFileOnly(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("必须提供配置文件路径")
	}
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg := createDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return cfg, nil
}

// findConfigFile 在常见位置查找配置文件
func findConfigFile() string {
	searchPaths := []string{
		constants.DefaultConfigFile,
		filepath.Join("..", constants.DefaultConfigFile),
		filepath.Join("..", "..", constants.DefaultConfigFile),
	}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".resume-analyzer", constants.DefaultConfigFile))
	}
	if execPath, err := os.Executable(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(filepath.Dir(execPath), constants.DefaultConfigFile))
	}

	for _, path := range searchPaths {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// applyEnvOverrides 从环境变量覆盖配置（如果存在）
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv(EnvTaxonomyPath); v != "" {
		cfg.Taxonomy.Path = v
	}
	if v := os.Getenv(EnvPDFBackend); v != "" {
		cfg.Decoder.PDFBackend = v
	}
	if v := os.Getenv(EnvNLPBackend); v != "" {
		cfg.NLP.Backend = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Extraction.Workers = n
		}
	}
	if v := os.Getenv(EnvOTLPEndpoint); v != "" {
		cfg.Tracing.Endpoint = v
	}
}

// Validate 检查枚举值和数值范围
func (c *Config) Validate() error {
	var problems []string
	switch c.Decoder.PDFBackend {
	case constants.PDFBackendEino, constants.PDFBackendLedongthuc:
	default:
		problems = append(problems, fmt.Sprintf("decoder.pdf_backend %q 不受支持", c.Decoder.PDFBackend))
	}
	switch c.NLP.Backend {
	case constants.NLPBackendProse, constants.NLPBackendRules:
	default:
		problems = append(problems, fmt.Sprintf("nlp.backend %q 不受支持", c.NLP.Backend))
	}
	switch c.Output.Format {
	case "json", "yaml":
	default:
		problems = append(problems, fmt.Sprintf("output.format %q 不受支持", c.Output.Format))
	}
	if c.Extraction.Workers < 1 {
		problems = append(problems, "extraction.workers 必须大于0")
	}
	if c.Watch.RatePerMinute < 0 || c.Watch.MaxRetries < 0 {
		problems = append(problems, "watch.rate_per_minute 和 watch.max_retries 不能为负数")
	}
	if c.Extraction.NameMaxLines < 0 {
		problems = append(problems, "extraction.name_max_lines 不能为负数")
	}
	for i, ds := range c.Datasets {
		if ds.Name == "" || ds.Path == "" {
			problems = append(problems, fmt.Sprintf("datasets[%d] 缺少 name 或 path", i))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ResolvePath 把相对路径解析到工作区下
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Workspace == "" {
		return p
	}
	return filepath.Join(c.Workspace, p)
}

// DecoderTimeout 解码超时
func (c *Config) DecoderTimeout() time.Duration {
	return GetDuration(c.Decoder.Timeout, constants.DefaultDocumentTimeout)
}

// DocumentTimeout 单个文档整体超时
func (c *Config) DocumentTimeout() time.Duration {
	return GetDuration(c.Extraction.DocumentTimeout, constants.DefaultDocumentTimeout)
}

// createDefaultConfig 默认配置
func createDefaultConfig() *Config {
	cfg := &Config{}

	cfg.Logger.Level = "info"
	cfg.Logger.Format = "pretty"
	cfg.Logger.TimeFormat = "2006-01-02 15:04:05"
	cfg.Logger.File = filepath.Join(constants.LogsDir, constants.LogFile)

	cfg.Taxonomy.Path = filepath.Join(constants.SkillsDir, constants.TaxonomyFile)

	cfg.Decoder.PDFBackend = constants.PDFBackendEino
	cfg.Decoder.PageHeaders = true
	cfg.Decoder.Timeout = "30s"

	cfg.NLP.Enabled = true
	cfg.NLP.Backend = constants.NLPBackendProse

	cfg.Extraction.Workers = constants.DefaultWorkers
	cfg.Extraction.DocumentTimeout = "60s"
	cfg.Extraction.NameSectionCutoff = true
	cfg.Extraction.NameMaxLines = 10

	cfg.Output.Format = "json"
	cfg.Output.Dir = constants.OutputDir
	cfg.Output.Pretty = true

	cfg.Watch.SettleDelay = "300ms"
	cfg.Watch.RatePerMinute = 120
	cfg.Watch.MaxRetries = 2
	cfg.Watch.RetryWait = "500ms"

	cfg.Tracing.Enabled = false
	cfg.Tracing.Endpoint = "localhost:4317"
	cfg.Tracing.ServiceName = "resume-analyzer"
	cfg.Tracing.Insecure = true

	cfg.Datasets = []DatasetConfig{
		{Name: "Kaggle Dataset 1", Path: "data/job_skills.csv"},
		{Name: "Kaggle Dataset 2", Path: "data/linkedin_job_postings.csv"},
	}

	return cfg
}

// Default 返回默认配置的副本
func Default() *Config {
	return createDefaultConfig()
}

// CreateSampleConfig 创建一个示例配置文件
func CreateSampleConfig(filePath string) error {
	if _, err := os.Stat(filePath); err == nil {
		return fmt.Errorf("文件 '%s' 已存在，不会覆盖", filePath)
	}

	data, err := yaml.Marshal(createDefaultConfig())
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("写入示例配置文件 '%s' 失败: %w", filePath, err)
	}
	return nil
}

// GetDuration utility to parse duration strings from config
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}
