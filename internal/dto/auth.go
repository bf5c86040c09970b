package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录成功响应
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	Name        string `json:"name"`
	ExpiresIn   int    `json:"expires_in"` // Token 有效期（秒）
}

// CurrentUserResponse 当前用户信息（GET /auth/me）
type CurrentUserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}
