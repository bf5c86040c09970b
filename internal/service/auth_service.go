package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"infrawatch/backend/internal/dto"
	"infrawatch/backend/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
)

// TokenBlacklist Token 黑名单（Redis）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	GetCurrentUser(ctx context.Context, userID string) (*dto.CurrentUserResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type authService struct {
	directory IdentityDirectory
	users     UserLookup
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
// blacklist 为 nil 时登出只返回成功，不做吊销
func NewAuthService(
	directory IdentityDirectory,
	users UserLookup,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		directory: directory,
		users:     users,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	// 1. 校验凭据
	user, err := s.directory.Resolve(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询身份目录失败", zap.Error(err))
		return nil, err
	}

	// 2. 签发 Token
	ttl := s.jwtMgr.LoginTTL()
	token, err := s.jwtMgr.GenerateToken(user.ID, string(user.Role), ttl)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: token,
		Role:        string(user.Role),
		Name:        user.Name,
		ExpiresIn:   int(ttl.Seconds()),
	}, nil
}

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.CurrentUserResponse, error) {
	user, err := s.users.Lookup(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return &dto.CurrentUserResponse{
		ID:    user.ID,
		Email: user.Email,
		Role:  string(user.Role),
		Name:  user.Name,
	}, nil
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("写入 Token 黑名单失败", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}
