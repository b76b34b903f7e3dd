package errors

import "fmt"

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam       = 400 // 参数校验失败
	CodeUnauthorized       = 401 // 未认证
	CodeForbidden          = 403 // 角色或归属不匹配
	CodeNotFound           = 404 // 实体不存在
	CodeConflict           = 409 // 违反唯一性约束
	CodeInvalidState       = 422 // 当前生命周期状态不允许该操作
	CodeServerError        = 500 // 未预期错误
	CodeServiceUnavailable = 503 // 依赖的跨服务调用失败
)

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError 业务错误
// 服务层只返回这一种错误类型（或gorm原生错误），
// handler统一通过 response.Error 映射为HTTP响应。
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

// New 构造指定错误码的业务错误
func New(code int, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewValidation 参数校验错误，fields列出所有违规字段
func NewValidation(message string, fields ...FieldError) *AppError {
	return &AppError{Code: CodeInvalidParam, Message: message, Fields: fields}
}

// NewUnauthorized 未认证
func NewUnauthorized(format string, args ...interface{}) *AppError {
	return New(CodeUnauthorized, format, args...)
}

// NewForbidden 无权限
func NewForbidden(format string, args ...interface{}) *AppError {
	return New(CodeForbidden, format, args...)
}

// NewNotFound 实体不存在
func NewNotFound(format string, args ...interface{}) *AppError {
	return New(CodeNotFound, format, args...)
}

// NewConflict 唯一性冲突
func NewConflict(format string, args ...interface{}) *AppError {
	return New(CodeConflict, format, args...)
}

// NewInvalidState 状态机不允许
func NewInvalidState(format string, args ...interface{}) *AppError {
	return New(CodeInvalidState, format, args...)
}

// NewServiceUnavailable 跨服务依赖不可用
func NewServiceUnavailable(format string, args ...interface{}) *AppError {
	return New(CodeServiceUnavailable, format, args...)
}

// IsCode 判断错误是否为指定业务码
func IsCode(err error, code int) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
