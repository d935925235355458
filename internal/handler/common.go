// Package handler HTTP 处理器公共部分：统一响应、参数校验与分页解析
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"convo/internal/pkg/bizerr"
	"convo/internal/pkg/id"
	"convo/internal/pkg/logger"
	"convo/internal/pkg/response"
	"convo/internal/service"
)

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RegisterValidator 让校验错误使用 json 字段名，查询参数使用 form 名
// 在创建路由前调用一次
func RegisterValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}

// OK 成功响应
func OK[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, response.OK(data))
}

// Empty 成功且无数据
func Empty(c *gin.Context) {
	c.JSON(http.StatusOK, response.Empty())
}

// Fail 统一错误出口：业务错误按声明的状态码返回，其余记录日志后返回 500
func Fail(c *gin.Context, err error) {
	if be, ok := bizerr.As(err); ok {
		c.JSON(be.Code, response.Fail(be.Code, be.Msg))
		return
	}
	logger.Ctx(c.Request.Context()).Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("request failed")
	c.JSON(http.StatusInternalServerError, response.Fail(http.StatusInternalServerError, response.MsgInternalError))
}

// ValidationFailed 422 校验错误
func ValidationFailed(c *gin.Context, errs ...FieldError) {
	c.JSON(http.StatusUnprocessableEntity, response.FailWith(http.StatusUnprocessableEntity, response.MsgValidationError, errs))
}

// BindJSON 解析并校验请求体，失败时已写出 422 响应
func BindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		ValidationFailed(c, fieldErrors(err, "body")...)
		return false
	}
	return true
}

// BindQuery 解析并校验查询参数，失败时已写出 422 响应
func BindQuery(c *gin.Context, dest any) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		ValidationFailed(c, fieldErrors(err, "query")...)
		return false
	}
	return true
}

// fieldErrors 将绑定错误展开为字段错误，无法定位字段时使用 fallback
func fieldErrors(err error, fallback string) []FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fe.Field(), Message: describe(fe)})
		}
		return out
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = fallback
		}
		return []FieldError{{Field: field, Message: "must be of type " + typeErr.Type.String()}}
	}
	if errors.Is(err, io.EOF) {
		return []FieldError{{Field: fallback, Message: "request body is required"}}
	}
	return []FieldError{{Field: fallback, Message: err.Error()}}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min":
		if isNumber(fe.Kind()) {
			return "must be greater than or equal to " + fe.Param()
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		if isNumber(fe.Kind()) {
			return "must be less than or equal to " + fe.Param()
		}
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed on the '" + fe.Tag() + "' rule"
	}
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// CheckOptional 校验补丁中出现的可选字段，nullable 为 false 时拒绝显式 null
func CheckOptional[T any](field string, v *T, set, nullable bool, rule string) *FieldError {
	if !set {
		return nil
	}
	if v == nil {
		if nullable {
			return nil
		}
		return &FieldError{Field: field, Message: "may not be null"}
	}
	if rule == "" {
		return nil
	}
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := engine.Var(*v, rule); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &FieldError{Field: field, Message: describe(verrs[0])}
		}
		return &FieldError{Field: field, Message: err.Error()}
	}
	return nil
}

// Collect 过滤掉 nil 校验结果
func Collect(errs ...*FieldError) []FieldError {
	var out []FieldError
	for _, e := range errs {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}

// UUIDParam 读取并校验 UUID 路径参数，失败时已写出 422 响应
func UUIDParam(c *gin.Context, name string) (string, bool) {
	v, ok := id.Normalize(c.Param(name))
	if !ok {
		ValidationFailed(c, FieldError{Field: name, Message: "must be a valid UUID"})
		return "", false
	}
	return v, true
}

// Int64Param 读取并校验整数路径参数，失败时已写出 422 响应
func Int64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		ValidationFailed(c, FieldError{Field: name, Message: "must be an integer"})
		return 0, false
	}
	return v, true
}

// PageQuery 分页查询参数
// 出现 skip 或 limit 时按偏移量分页，否则按 page/page_size
type PageQuery struct {
	Page     *int `form:"page" binding:"omitempty,min=1,max=10000000"`
	PageSize *int `form:"page_size" binding:"omitempty,min=1,max=100"`
	Skip     *int `form:"skip" binding:"omitempty,min=0"`
	Limit    *int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Pagination 解析分页参数，失败时已写出 422 响应
func Pagination(c *gin.Context) (service.Pagination, bool) {
	var q PageQuery
	if !BindQuery(c, &q) {
		return service.Pagination{}, false
	}
	if q.Skip != nil || q.Limit != nil {
		skip, limit := 0, service.DefaultPageSize
		if q.Skip != nil {
			skip = *q.Skip
		}
		if q.Limit != nil {
			limit = *q.Limit
		}
		return service.FromSkipLimit(skip, limit), true
	}
	page, size := service.DefaultPage, service.DefaultPageSize
	if q.Page != nil {
		page = *q.Page
	}
	if q.PageSize != nil {
		size = *q.PageSize
	}
	return service.NewPagination(page, size), true
}
