package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"infrawatch/backend/config"
	"infrawatch/backend/internal/model"
	"infrawatch/backend/internal/repository"
)

// IdentityDirectory 凭据校验
// 邮箱不存在或密码不匹配时返回 ErrInvalidCredentials
type IdentityDirectory interface {
	Resolve(ctx context.Context, email, password string) (*model.User, error)
}

// UserLookup 按 ID 查询身份，不存在时返回 ErrUserNotFound
type UserLookup interface {
	Lookup(ctx context.Context, id string) (*model.User, error)
}

// ────────────────────── 静态目录 ──────────────────────

// StaticDirectory 由配置提供的固定账户，启动时计算 bcrypt 哈希
type StaticDirectory struct {
	byEmail map[string]*model.User
	byID    map[string]*model.User
}

// NewStaticDirectory 创建静态目录
func NewStaticDirectory(seeds []config.SeedUser) (*StaticDirectory, error) {
	d := &StaticDirectory{
		byEmail: make(map[string]*model.User, len(seeds)),
		byID:    make(map[string]*model.User, len(seeds)),
	}

	for _, seed := range seeds {
		role := model.Role(seed.Role)
		if seed.ID == "" || seed.Email == "" || !role.Valid() {
			return nil, fmt.Errorf("静态账户配置无效: id=%q email=%q role=%q", seed.ID, seed.Email, seed.Role)
		}
		if _, dup := d.byEmail[seed.Email]; dup {
			return nil, fmt.Errorf("静态账户邮箱重复: %s", seed.Email)
		}
		if _, dup := d.byID[seed.ID]; dup {
			return nil, fmt.Errorf("静态账户 ID 重复: %s", seed.ID)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("计算密码哈希失败: %w", err)
		}

		user := &model.User{
			ID:           seed.ID,
			Email:        seed.Email,
			PasswordHash: string(hash),
			Name:         seed.Name,
			Role:         role,
		}
		if seed.Department != "" {
			dept := seed.Department
			user.Department = &dept
		}
		d.byEmail[user.Email] = user
		d.byID[user.ID] = user
	}

	return d, nil
}

func (d *StaticDirectory) Resolve(_ context.Context, email, password string) (*model.User, error) {
	user, ok := d.byEmail[email]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (d *StaticDirectory) Lookup(_ context.Context, id string) (*model.User, error) {
	user, ok := d.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ────────────────────── 数据库目录 ──────────────────────

// DatabaseDirectory 基于 users 表的身份目录
type DatabaseDirectory struct {
	repo *repository.Repository
}

// NewDatabaseDirectory 创建数据库目录
func NewDatabaseDirectory(repo *repository.Repository) *DatabaseDirectory {
	return &DatabaseDirectory{repo: repo}
}

func (d *DatabaseDirectory) Resolve(ctx context.Context, email, password string) (*model.User, error) {
	user, err := d.repo.User.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (d *DatabaseDirectory) Lookup(ctx context.Context, id string) (*model.User, error) {
	user, err := d.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
