package constants

import "time"

const (
	// NameNotFound 姓名抽取失败时返回的占位值
	NameNotFound = "Name not found"

	// PageHeaderFormat PDF每页文本前插入的页眉
	PageHeaderFormat = "--- Page %d ---\n"

	// DefaultDocumentTimeout 单个文档处理的默认超时
	DefaultDocumentTimeout = 30 * time.Second

	// DefaultWorkers 批量处理默认并发数
	DefaultWorkers = 4

	// DefaultConfigFile 默认配置文件名
	DefaultConfigFile = "config.yaml"

	// DefaultResultsFile 批量处理结果文件名
	DefaultResultsFile = "results.json"
)

// Workspace 目录布局
const (
	ResumesDir = "data/resumes"
	SkillsDir  = "data/skills"
	LogsDir    = "logs"
	OutputDir  = "output"

	TaxonomyFile = "taxonomy.yaml"
	LogFile      = "app.log"
)

// PDF解析后端
const (
	PDFBackendEino       = "eino"
	PDFBackendLedongthuc = "ledongthuc"
)

// 语言分析后端
const (
	NLPBackendProse = "prose"
	NLPBackendRules = "rules"
)
