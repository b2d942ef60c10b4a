// Package dataset 加载CSV格式的表格数据（技能表、职位数据集等），
// 并记录数据集的行列规模、列名和样例行。
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var (
	// ErrEmptyDataset CSV文件没有表头
	ErrEmptyDataset = errors.New("dataset has no header row")
	// ErrColumnNotFound 数据集中不存在指定列
	ErrColumnNotFound = errors.New("column not found")
)

// SampleRows 加载后日志中打印的样例行数
const SampleRows = 5

// Dataset 内存中的CSV数据集
type Dataset struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Shape 返回 (行数, 列数)
func (d *Dataset) Shape() (int, int) {
	return len(d.Rows), len(d.Columns)
}

// ColumnIndex 返回列名对应的下标，不区分大小写，忽略首尾空白
func (d *Dataset) ColumnIndex(name string) (int, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, c := range d.Columns {
		if strings.ToLower(strings.TrimSpace(c)) == want {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q in dataset %q", ErrColumnNotFound, name, d.Name)
}

// Column 返回指定列的所有值，缺失的单元格返回空字符串
func (d *Dataset) Column(name string) ([]string, error) {
	idx, err := d.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	values := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	return values, nil
}

// Head 返回前 n 行
func (d *Dataset) Head(n int) [][]string {
	if n < 0 {
		n = 0
	}
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	return d.Rows[:n]
}

// Load 从文件加载数据集
func Load(path, name string, logger *zerolog.Logger) (*Dataset, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	logger.Info().Str("dataset", name).Str("path", path).Msg("开始加载数据集")

	f, err := os.Open(path)
	if err != nil {
		logger.Error().Err(err).Str("dataset", name).Msg("加载数据集失败")
		return nil, fmt.Errorf("打开数据集 %s 失败: %w", name, err)
	}
	defer f.Close()

	ds, err := Read(f, name)
	if err != nil {
		logger.Error().Err(err).Str("dataset", name).Msg("解析数据集失败")
		return nil, err
	}

	rows, cols := ds.Shape()
	logger.Info().
		Str("dataset", name).
		Int("rows", rows).
		Int("columns", cols).
		Strs("column_names", ds.Columns).
		Msg("数据集加载成功")
	for i, row := range ds.Head(SampleRows) {
		logger.Debug().Str("dataset", name).Int("row", i).Strs("values", row).Msg("样例数据")
	}
	return ds, nil
}

// Read 从 reader 解析CSV，第一行为表头
func Read(r io.Reader, name string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // 允许行长度不一致
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, name)
	}
	if err != nil {
		return nil, fmt.Errorf("读取数据集 %s 表头失败: %w", name, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	ds := &Dataset{Name: name, Columns: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取数据集 %s 失败: %w", name, err)
		}
		ds.Rows = append(ds.Rows, record)
	}
	return ds, nil
}
