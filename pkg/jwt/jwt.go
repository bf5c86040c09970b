package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"infrawatch/backend/config"
)

var (
	ErrTokenExpired = errors.New("token 已过期")
	ErrTokenInvalid = errors.New("token 无效")
)

// Claims 自定义 JWT 声明
// 用户 ID 放在标准 sub 字段，角色放在 role 字段
type Claims struct {
	Role string `json:"role"`
	jwtv5.RegisteredClaims
}

// UserID 返回 sub 声明
func (c *Claims) UserID() string {
	return c.Subject
}

// Manager JWT 管理器
type Manager struct {
	secret         []byte
	issuer         string
	accessTokenTTL time.Duration
	loginTokenTTL  time.Duration
}

// NewManager 创建 JWT 管理器
func NewManager(cfg *config.AuthConfig) *Manager {
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "infrawatch"
	}
	return &Manager{
		secret:         []byte(cfg.JWTSecret),
		issuer:         issuer,
		accessTokenTTL: cfg.AccessTokenTTL,
		loginTokenTTL:  cfg.LoginTokenTTL,
	}
}

// LoginTTL 登录接口签发 Token 的有效期；未配置时退回全局 AccessTokenTTL
func (m *Manager) LoginTTL() time.Duration {
	if m.loginTokenTTL > 0 {
		return m.loginTokenTTL
	}
	return m.accessTokenTTL
}

// GenerateToken 以指定有效期生成 Token
func (m *Manager) GenerateToken(userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
			Issuer:    m.issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken 解析并验证 Token
// 过期返回 ErrTokenExpired，其余任何失败返回 ErrTokenInvalid
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(m.issuer))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
