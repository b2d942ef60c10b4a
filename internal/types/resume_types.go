package types

import "time"

// DocumentFormat 表示原始简历文档的格式
type DocumentFormat string

const (
	// FormatPDF PDF文档
	FormatPDF DocumentFormat = "pdf"
	// FormatDOCX Word文档
	FormatDOCX DocumentFormat = "docx"
	// FormatText 纯文本
	FormatText DocumentFormat = "txt"
	// FormatUnknown 无法识别的格式
	FormatUnknown DocumentFormat = "unknown"
)

// RawDocument 原始文档，由解码器读取，只消费一次
type RawDocument struct {
	URI     string         // 来源路径或标识符
	Format  DocumentFormat // 文档格式
	Content []byte         // 原始字节
}

// SectionType 表示简历章节类型
type SectionType string

const (
	// SectionEducation 教育经历章节
	SectionEducation SectionType = "EDUCATION"
	// SectionWorkExperience 工作经历章节
	SectionWorkExperience SectionType = "WORK_EXPERIENCE"
	// SectionSkills 技能章节
	SectionSkills SectionType = "SKILLS"
	// SectionProjects 项目经历章节
	SectionProjects SectionType = "PROJECTS"
	// SectionAwards 获奖经历章节
	SectionAwards SectionType = "AWARDS"
	// SectionPersonalIntro 个人介绍章节
	SectionPersonalIntro SectionType = "PERSONAL_INTRO"
)

// DefaultSectionHeaders 常见英文简历章节标题，用于识别姓名启发式的截止位置
var DefaultSectionHeaders = map[SectionType][]string{
	SectionEducation:      {"education", "academic background", "qualifications"},
	SectionWorkExperience: {"experience", "work experience", "professional experience", "employment", "employment history", "work history"},
	SectionSkills:         {"skills", "technical skills", "core competencies", "competencies"},
	SectionProjects:       {"projects", "personal projects"},
	SectionAwards:         {"awards", "honors", "achievements", "certifications"},
	SectionPersonalIntro:  {"summary", "profile", "objective", "about me", "professional summary"},
}

// SectionHeaderKeywords 将 DefaultSectionHeaders 展开为关键字列表
func SectionHeaderKeywords() []string {
	var keywords []string
	for _, headers := range DefaultSectionHeaders {
		keywords = append(keywords, headers...)
	}
	return keywords
}

// ExtractionResult 单份简历的结构化抽取结果
// 组装完成后不再修改；Skills 中不含重复的规范技能名
type ExtractionResult struct {
	Name   *string  `json:"name" yaml:"name"`
	Email  *string  `json:"email" yaml:"email"`
	Phone  *string  `json:"phone" yaml:"phone"`
	Skills []string `json:"skills" yaml:"skills"`
}

// IsEmpty 判断抽取结果是否所有字段都为空
func (r *ExtractionResult) IsEmpty() bool {
	return r == nil || (r.Name == nil && r.Email == nil && r.Phone == nil && len(r.Skills) == 0)
}

// EmptyExtractionResult 返回所有字段为空的结果，Skills 为非nil空切片以便序列化为 []
func EmptyExtractionResult() *ExtractionResult {
	return &ExtractionResult{Skills: []string{}}
}

// ResumeReport 单个文件的处理报告
type ResumeReport struct {
	DocumentID  string                 `json:"document_id" yaml:"document_id"`
	SourcePath  string                 `json:"source_path" yaml:"source_path"`
	Format      DocumentFormat         `json:"format" yaml:"format"`
	Result      *ExtractionResult      `json:"result" yaml:"result"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Error       string                 `json:"error,omitempty" yaml:"error,omitempty"`
	ProcessedAt time.Time              `json:"processed_at" yaml:"processed_at"`
}

// StringPtr 返回字符串的指针
func StringPtr(s string) *string {
	return &s
}
