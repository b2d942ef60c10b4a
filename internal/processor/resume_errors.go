package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrDecodeFailed         = errors.New("解码简历失败")
	ErrListFilesFailed      = errors.New("读取简历目录失败")
	ErrWatchFailed          = errors.New("监听简历目录失败")
	ErrDecoderNotInit       = errors.New("decoder is not initialized")
	ErrNameExtractorNotInit = errors.New("name extractor is not initialized")
	ErrSkillMatcherNotInit  = errors.New("skill matcher is not initialized")
)

// ProcessError 包含详细错误信息的自定义错误
type ProcessError struct {
	Path    string
	Op      string
	BaseErr error
	Detail  string
	Cause   error
}

func (e *ProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 路径:%s): %s", e.BaseErr, e.Op, e.Path, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 路径:%s)", e.BaseErr, e.Op, e.Path)
}

// Unwrap 同时暴露基础错误和底层原因
func (e *ProcessError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.BaseErr}
	}
	return []error{e.BaseErr, e.Cause}
}

// 错误构造函数

func NewDecodeError(path string, cause error) error {
	return &ProcessError{
		Path:    path,
		Op:      "decode",
		BaseErr: ErrDecodeFailed,
		Detail:  cause.Error(),
		Cause:   cause,
	}
}

func NewListError(dir string, cause error) error {
	return &ProcessError{
		Path:    dir,
		Op:      "list",
		BaseErr: ErrListFilesFailed,
		Detail:  cause.Error(),
		Cause:   cause,
	}
}

func NewWatchError(dir string, cause error) error {
	return &ProcessError{
		Path:    dir,
		Op:      "watch",
		BaseErr: ErrWatchFailed,
		Detail:  cause.Error(),
		Cause:   cause,
	}
}
