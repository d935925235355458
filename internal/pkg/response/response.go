// Package response 统一响应信封 {code, msg, data}
package response

import "net/http"

// 固定消息
const (
	MsgSuccess         = "success"
	MsgValidationError = "Validation error"
	MsgInternalError   = "Internal server error"
)

// Body 响应信封，T 为 data 的类型
type Body[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

// Page 分页数据
type Page[T any] struct {
	List     []T   `json:"list"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// OK 成功响应
func OK[T any](data T) Body[T] {
	return Body[T]{Code: http.StatusOK, Msg: MsgSuccess, Data: data}
}

// Empty 无数据的成功响应（data 为 null）
func Empty() Body[any] {
	return Body[any]{Code: http.StatusOK, Msg: MsgSuccess}
}

// Fail 错误响应（data 为 null）
func Fail(code int, msg string) Body[any] {
	return Body[any]{Code: code, Msg: msg}
}

// FailWith 携带错误详情的错误响应
func FailWith[T any](code int, msg string, data T) Body[T] {
	return Body[T]{Code: code, Msg: msg, Data: data}
}

// NewPage 构造分页数据，list 为 nil 时输出空数组
func NewPage[T any](list []T, total int64, page, pageSize int) Page[T] {
	if list == nil {
		list = []T{}
	}
	return Page[T]{List: list, Total: total, Page: page, PageSize: pageSize}
}
