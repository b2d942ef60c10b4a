package taxonomy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"resume-analyzer-go/internal/dataset"
)

// ErrUnsupportedFile 不支持的分类表文件格式
var ErrUnsupportedFile = errors.New("unsupported taxonomy file")

// CSV分类表的列名
const (
	CSVColumnSkill   = "skill"
	CSVColumnAliases = "aliases"
	csvAliasSep      = "|"
)

// fileFormat YAML分类表文件结构
type fileFormat struct {
	Skills []Entry `yaml:"skills"`
}

// Load 根据扩展名从 YAML 或 CSV 文件加载分类表；path 为空时返回内置分类表
func Load(path string, logger *zerolog.Logger) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".csv":
		return LoadCSV(path, logger)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
}

// LoadYAML 从YAML文件加载分类表
//
//	skills:
//	  - name: Machine Learning
//	    aliases: [ML]
func LoadYAML(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取分类表文件失败: %w", err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("解析分类表文件失败: %w", err)
	}
	return FromEntries(f.Skills)
}

// LoadCSV 从CSV文件加载分类表，需要 skill 列，可选 aliases 列（用 | 分隔）
func LoadCSV(path string, logger *zerolog.Logger) (*Taxonomy, error) {
	ds, err := dataset.Load(path, "skill taxonomy", logger)
	if err != nil {
		return nil, err
	}
	skills, err := ds.Column(CSVColumnSkill)
	if err != nil {
		return nil, err
	}
	aliasColumn, err := ds.Column(CSVColumnAliases)
	if err != nil && !errors.Is(err, dataset.ErrColumnNotFound) {
		return nil, err
	}

	entries := make([]Entry, 0, len(skills))
	for i, name := range skills {
		if strings.TrimSpace(name) == "" {
			continue
		}
		entry := Entry{Name: name}
		if aliasColumn != nil && aliasColumn[i] != "" {
			entry.Aliases = strings.Split(aliasColumn[i], csvAliasSep)
		}
		entries = append(entries, entry)
	}
	return FromEntries(entries)
}

// WriteYAML 将分类表写入YAML文件
func WriteYAML(path string, t *Taxonomy) error {
	data, err := yaml.Marshal(fileFormat{Skills: t.Entries()})
	if err != nil {
		return fmt.Errorf("序列化分类表失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入分类表文件失败: %w", err)
	}
	return nil
}
