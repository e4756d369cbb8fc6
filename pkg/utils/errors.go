package utils

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/log"
)

// 请求边界上可恢复的错误分类
var (
	ErrUnauthenticated = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// ValidationError 字段级校验错误，key 为 JSON 字段名
type ValidationError map[string]string

func (v ValidationError) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError 创建单字段校验错误
func NewValidationError(field, message string) ValidationError {
	return ValidationError{field: message}
}

// appError 带对外描述的分类错误
type appError struct {
	kind error
	msg  string
}

func (e *appError) Error() string { return e.msg }
func (e *appError) Unwrap() error { return e.kind }

// NotFoundf 返回带资源描述的 ErrNotFound
func NotFoundf(format string, args ...interface{}) error {
	return &appError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// Forbiddenf 返回带资源描述的 ErrForbidden
func Forbiddenf(format string, args ...interface{}) error {
	return &appError{kind: ErrForbidden, msg: fmt.Sprintf(format, args...)}
}

// Conflictf 返回带资源描述的 ErrConflict
func Conflictf(format string, args ...interface{}) error {
	return &appError{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

// WriteAppError 将错误分类映射为HTTP响应
func WriteAppError(w http.ResponseWriter, err error) {
	var verr ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidationErrorResponse(w, verr)
	case errors.Is(err, ErrUnauthenticated):
		WriteUnauthorizedResponse(w, "Unauthorized")
	case errors.Is(err, ErrForbidden):
		WriteForbiddenResponse(w, describe(err, ErrForbidden))
	case errors.Is(err, ErrNotFound):
		WriteNotFoundResponse(w, describe(err, ErrNotFound))
	case errors.Is(err, ErrConflict):
		WriteConflictResponse(w, describe(err, ErrConflict))
	default:
		log.Errorf("unhandled error: %v", err)
		WriteInternalServerErrorResponse(w, "Internal server error")
	}
}

// describe 返回对外可见的错误描述
func describe(err, kind error) string {
	var ae *appError
	if errors.As(err, &ae) && ae.msg != "" {
		return ae.msg
	}
	msg := kind.Error()
	return strings.ToUpper(msg[:1]) + msg[1:]
}
