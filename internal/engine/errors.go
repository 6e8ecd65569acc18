package engine

import (
	"errors"
	"fmt"
)

// 引擎内错误均为本地可恢复错误：会话拒绝调用但不破坏已有状态。
var (
	// ErrInvalidState 在错误的会话状态下调用操作
	ErrInvalidState = errors.New("invalid session state")
	// ErrOutOfRange 导航下标越界
	ErrOutOfRange = errors.New("index out of range")
	// ErrValidation 题库编写错误（如选择题少于两个选项）
	ErrValidation = errors.New("validation failed")
)

func invalidStatef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidState}, args...)...)
}

func outOfRangef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrOutOfRange}, args...)...)
}

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}
