package jwt

import (
	"testing"
	"time"

	"infrawatch/backend/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: time.Hour,
		LoginTokenTTL:  24 * time.Hour,
	})
}

func TestGenerateAndParseToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateToken("user-1", "citizen", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	if claims.UserID() != "user-1" {
		t.Errorf("期望 UserID=user-1，实际=%s", claims.UserID())
	}
	if claims.Role != "citizen" {
		t.Errorf("期望 Role=citizen，实际=%s", claims.Role)
	}
	if claims.Issuer != "infrawatch" {
		t.Errorf("期望 Issuer=infrawatch，实际=%s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 59*time.Minute || ttl > 61*time.Minute {
		t.Errorf("AccessToken TTL 期望约1h，实际=%v", ttl)
	}
}

func TestLoginTTL(t *testing.T) {
	m := newTestManager()
	if m.LoginTTL() != 24*time.Hour {
		t.Errorf("期望 LoginTTL=24h，实际=%v", m.LoginTTL())
	}

	fallback := NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: time.Hour,
	})
	if fallback.LoginTTL() != time.Hour {
		t.Errorf("未配置 LoginTokenTTL 时应退回 1h，实际=%v", fallback.LoginTTL())
	}
}

func TestGenerateToken_CustomTTL(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateToken("user-2", "official", m.LoginTTL())
	if err != nil {
		t.Fatalf("GenerateToken 失败: %v", err)
	}
	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 23*time.Hour || ttl > 25*time.Hour {
		t.Errorf("登录 Token TTL 期望约24h，实际=%v", ttl)
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	m := newTestManager()

	_, err := m.ParseToken("invalid.token.string")
	if err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.AuthConfig{
		JWTSecret:      "different-secret-key",
		AccessTokenTTL: time.Hour,
	})

	token, _ := m1.GenerateToken("user-1", "official", time.Hour)
	_, err := m2.ParseToken(token)
	if err != ErrTokenInvalid {
		t.Errorf("不同密钥签名的 token 应返回 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_WrongIssuer(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		Issuer:         "someone-else",
		AccessTokenTTL: time.Hour,
	})

	token, _ := m2.GenerateToken("user-1", "official", time.Hour)
	if _, err := m1.ParseToken(token); err != ErrTokenInvalid {
		t.Errorf("签发方不符应返回 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	m := NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret",
		AccessTokenTTL: time.Millisecond,
	})

	token, _ := m.GenerateToken("user-1", "citizen", time.Hour)
	time.Sleep(1100 * time.Millisecond)

	_, err := m.ParseToken(token)
	if err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}
