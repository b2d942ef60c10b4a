// Package scaffold 初始化工作区目录结构
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"resume-analyzer-go/internal/config"
	"resume-analyzer-go/internal/constants"
	"resume-analyzer-go/internal/taxonomy"
)

// Directories 工作区下需要创建的目录
var Directories = []string{
	constants.ResumesDir,
	constants.SkillsDir,
	constants.LogsDir,
	constants.OutputDir,
}

// Result 记录本次初始化新建和跳过的路径（相对工作区）
type Result struct {
	Created []string
	Skipped []string
}

// Init 在 root 下创建目录、示例配置、默认分类表和空结果文件
// 已存在的文件不会被覆盖，可以重复执行
func Init(root string, logger *zerolog.Logger) (*Result, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	res := &Result{}

	for _, dir := range Directories {
		path := filepath.Join(root, dir)
		existed := exists(path)
		if err := os.MkdirAll(path, 0755); err != nil {
			return res, fmt.Errorf("创建目录 %s 失败: %w", path, err)
		}
		res.record(dir, existed)
	}

	files := []struct {
		rel   string
		write func(path string) error
	}{
		{constants.DefaultConfigFile, config.CreateSampleConfig},
		{filepath.Join(constants.SkillsDir, constants.TaxonomyFile), func(path string) error {
			return taxonomy.WriteYAML(path, taxonomy.Default())
		}},
		{filepath.Join(constants.OutputDir, constants.DefaultResultsFile), func(path string) error {
			return os.WriteFile(path, []byte("[]\n"), 0644)
		}},
	}
	for _, f := range files {
		path := filepath.Join(root, f.rel)
		if exists(path) {
			res.record(f.rel, true)
			continue
		}
		if err := f.write(path); err != nil {
			return res, fmt.Errorf("创建文件 %s 失败: %w", path, err)
		}
		res.record(f.rel, false)
	}

	logger.Info().
		Str("root", root).
		Strs("created", res.Created).
		Int("skipped", len(res.Skipped)).
		Msg("工作区初始化完成")
	return res, nil
}

func (r *Result) record(rel string, existed bool) {
	if existed {
		r.Skipped = append(r.Skipped, rel)
	} else {
		r.Created = append(r.Created, rel)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
