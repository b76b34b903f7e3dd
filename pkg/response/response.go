package response

import (
	stderrors "errors"
	"net/http"

	"renthub/pkg/errors"
	"renthub/pkg/logger"
	"renthub/pkg/pagination"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Response 统一返回格式
type Response struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Data    interface{}         `json:"data,omitempty"`
	Fields  []errors.FieldError `json:"fields,omitempty"`
}

// ========== 基础返回方法 ==========

// Success 成功返回
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 成功返回（自定义消息）
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// SuccessWithPage 分页成功返回
func SuccessWithPage(c *gin.Context, data interface{}, pageInfo *pagination.PageInfo) {
	c.JSON(http.StatusOK, gin.H{
		"code":      errors.CodeSuccess,
		"message":   "success",
		"data":      data,
		"page_info": pageInfo,
	})
}

// Error 通用错误返回
func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// ========== HTTP错误快捷方法 ==========

func BadRequest(c *gin.Context, message string) {
	Error(c, errors.CodeInvalidParam, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, errors.CodeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, errors.CodeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, errors.CodeNotFound, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, errors.CodeConflict, message)
}

func InvalidState(c *gin.Context, message string) {
	Error(c, errors.CodeInvalidState, message)
}

func ServiceUnavailable(c *gin.Context, message string) {
	Error(c, errors.CodeServiceUnavailable, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, errors.CodeServerError, message)
}

// ========== 统一错误分发 ==========

// HandleError 服务层错误统一映射
// 业务错误原样返回错误码；gorm错误翻译为404/409；
// 其余按未预期错误处理，release模式下不外泄细节。
func HandleError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		c.JSON(http.StatusOK, Response{
			Code:    appErr.Code,
			Message: appErr.Message,
			Fields:  appErr.Fields,
		})
		return
	}

	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "记录不存在")
		return
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		Conflict(c, "记录已存在")
		return
	}

	logger.GetLogger().Errorf("unexpected error: %v", err)
	if gin.Mode() == gin.ReleaseMode {
		ServerError(c, "服务器内部错误")
		return
	}
	ServerError(c, err.Error())
}

// ValidationError 参数绑定错误返回
// 列出所有违规字段，任何状态修改之前调用。
func ValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		fields := make([]errors.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, errors.FieldError{
				Field:   fe.Field(),
				Message: validationMessage(fe),
			})
		}
		c.JSON(http.StatusOK, Response{
			Code:    errors.CodeInvalidParam,
			Message: "参数校验失败",
			Fields:  fields,
		})
		return
	}
	BadRequest(c, "参数错误")
}

// 按校验tag生成提示
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "必填字段"
	case "email":
		return "邮箱格式错误"
	case "min":
		return "小于最小值 " + fe.Param()
	case "max":
		return "大于最大值 " + fe.Param()
	case "gte":
		return "不能小于 " + fe.Param()
	case "lte":
		return "不能大于 " + fe.Param()
	case "oneof":
		return "取值必须为 " + fe.Param() + " 之一"
	default:
		return "格式错误"
	}
}
