package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 通用业务错误码；模块错误码由各 Handler 自行定义（12xxx 损伤报告、13xxx 施工通告、14xxx 文件）
const (
	CodeOK           = 0
	CodeBadRequest   = 10001
	CodeTokenMissing = 10002
	CodeForbidden    = 10003
	CodeRateLimited  = 10004
	CodeBodyTooLarge = 10005
	CodeTokenInvalid = 10006
	CodeTokenExpired = 10007
	CodeInternal     = 50000
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	OKWithMessage(c, "success", data)
}

// OKWithMessage 200 成功响应，附带提示文案
func OKWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: message,
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeOK,
		Message: message,
		Data:    data,
	})
}

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带详情的错误响应（details 可为字符串或结构化数据）
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message string, details interface{}) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// AbortWithError 写入错误响应并终止中间件链
func AbortWithError(c *gin.Context, httpStatus int, code int, message string) {
	c.AbortWithStatusJSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "Internal server error")
}
