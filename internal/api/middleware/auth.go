package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"infrawatch/backend/pkg/jwt"
	"infrawatch/backend/pkg/redis"
	"infrawatch/backend/pkg/response"
)

// 注入到 gin.Context 的键
const (
	ContextUserID   = "user_id"
	ContextRole     = "role"
	ContextTokenJTI = "token_jti"
	ContextTokenExp = "token_exp"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取 Token；WebSocket 握手无法自定义请求头，允许使用 ?token=
// 缺失、无效、过期分别返回不同业务码；rdb 为 nil 时跳过黑名单检查
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := extractToken(c)
		if !ok {
			response.AbortWithError(c, http.StatusUnauthorized, response.CodeTokenMissing, "Missing Authorization Header")
			return
		}
		if raw == "" {
			response.AbortWithError(c, http.StatusUnauthorized, response.CodeTokenInvalid, "Invalid Authorization Header")
			return
		}

		claims, err := jwtMgr.ParseToken(raw)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.AbortWithError(c, http.StatusUnauthorized, response.CodeTokenExpired, "Token has expired")
				return
			}
			response.AbortWithError(c, http.StatusUnauthorized, response.CodeTokenInvalid, "Invalid token")
			return
		}

		if rdb != nil && claims.ID != "" {
			revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			// Redis 出错时降级放行
			if err == nil && revoked {
				response.AbortWithError(c, http.StatusUnauthorized, response.CodeTokenInvalid, "Token has been revoked")
				return
			}
		}

		// 将用户信息注入上下文
		c.Set(ContextUserID, claims.UserID())
		c.Set(ContextRole, claims.Role)
		c.Set(ContextTokenJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ContextTokenExp, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// extractToken 第二个返回值表示请求是否携带了凭据
func extractToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if websocket.IsWebSocketUpgrade(c.Request) {
			if q := c.Query("token"); q != "" {
				return q, true
			}
		}
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", true
	}
	return strings.TrimSpace(parts[1]), true
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一，不满足时 403 且不执行后续 Handler
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if role == "" {
			response.AbortWithError(c, http.StatusUnauthorized, response.CodeTokenMissing, "Missing Authorization Header")
			return
		}

		for _, r := range allowedRoles {
			if role == r {
				c.Next()
				return
			}
		}

		response.AbortWithError(c, http.StatusForbidden, response.CodeForbidden, "Access denied")
	}
}
