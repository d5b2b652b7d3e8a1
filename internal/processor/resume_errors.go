package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrEmptyInput    = errors.New("简历文本为空")
	ErrExtractFailed = errors.New("简历实体提取失败")
)

// ExtractError 包含阶段信息的自定义提取错误
type ExtractError struct {
	Stage   string
	BaseErr error
	Detail  string
}

func (e *ExtractError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (阶段:%s): %s", e.BaseErr, e.Stage, e.Detail)
	}
	return fmt.Sprintf("%s (阶段:%s)", e.BaseErr, e.Stage)
}

func (e *ExtractError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ExtractError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// NewExtractError 构造带阶段信息的提取错误
func NewExtractError(stage, detail string) error {
	return &ExtractError{
		Stage:   stage,
		BaseErr: ErrExtractFailed,
		Detail:  detail,
	}
}
