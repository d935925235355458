// Package bizerr 定义业务异常：service 层返回，handler 层统一转换为响应
package bizerr

import (
	"errors"
	"net/http"
)

// Error 业务错误，Code 同时作为 HTTP 状态码与响应体中的 code
type Error struct {
	Code int
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// New 创建业务错误
func New(code int, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// NotFound 资源不存在（404）
func NotFound(msg string) *Error {
	return New(http.StatusNotFound, msg)
}

// BadRequest 请求非法，如唯一字段重复（400）
func BadRequest(msg string) *Error {
	return New(http.StatusBadRequest, msg)
}

// As 从错误链中提取业务错误
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
