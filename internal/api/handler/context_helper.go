package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"infrawatch/backend/internal/api/middleware"
	"infrawatch/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.ContextUserID)
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.ContextRole)
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	s := c.GetString(key)
	if s == "" {
		response.Unauthorized(c, response.CodeTokenMissing, "Missing Authorization Header")
		return "", false
	}
	return s, true
}

// tokenMeta 当前请求 Token 的 jti 与过期时间，供登出拉黑使用
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.ContextTokenJTI)
	exp := c.GetTime(middleware.ContextTokenExp)
	return jti, exp
}
