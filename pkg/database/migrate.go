package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"infrawatch/backend/config"
	"infrawatch/backend/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate 初始化表结构
// postgres 使用嵌入的版本化 SQL 迁移；sqlite 按存储分别 AutoMigrate
func (s *Stores) Migrate(logger *zap.Logger) error {
	if s.driver == config.DriverPostgres {
		return s.runPostgresMigrations(logger)
	}

	plan := []struct {
		name   string
		store  *gorm.DB
		models []interface{}
	}{
		{"auth", s.Auth, []interface{}{&model.User{}}},
		{"damage", s.Damage, []interface{}{&model.DamageReport{}}},
		{"work", s.Work, []interface{}{&model.WorkReport{}}},
		{"logs", s.Logs, []interface{}{&model.AuditLog{}}},
	}
	for _, p := range plan {
		if err := p.store.AutoMigrate(p.models...); err != nil {
			return fmt.Errorf("%s 存储迁移失败: %w", p.name, err)
		}
	}
	logger.Info("SQLite 表结构迁移完成")
	return nil
}

func (s *Stores) runPostgresMigrations(logger *zap.Logger) error {
	sqlDB, err := s.Auth.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("加载迁移文件失败: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("初始化迁移实例失败: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行迁移失败: %w", err)
	}

	version, dirty, _ := m.Version()
	if dirty {
		logger.Warn("数据库迁移处于 dirty 状态", zap.Uint("version", version))
	} else {
		logger.Info("数据库迁移完成", zap.Uint("version", version))
	}
	return nil
}
