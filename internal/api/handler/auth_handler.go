package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"infrawatch/backend/internal/dto"
	"infrawatch/backend/internal/service"
	"infrawatch/backend/pkg/response"
)

const (
	codeInvalidCredentials = 11001
	codeUserNotFound       = 11002
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "Email and password are required")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Me 当前登录用户
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.authSvc.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出，将当前 Token 加入黑名单
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := tokenMeta(c)
	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		handleAuthError(c, err)
		return
	}
	response.OKWithMessage(c, "Logged out", nil)
}

func handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, codeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, codeUserNotFound, "User not found")
	default:
		response.InternalError(c)
	}
}
