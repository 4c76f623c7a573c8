package service

import "errors"

var (
	// ErrValidation 请求参数校验失败
	ErrValidation = errors.New("validation failed")
	// ErrNotFound 目标记录不存在
	ErrNotFound = errors.New("not found")
)

// ValidationError 带字段说明的校验错误
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}
