package database

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"infrawatch/backend/config"
)

// SQLite 模式下各存储对应的文件名
const (
	authDBFile   = "infra_auth.db"
	damageDBFile = "infra_damage.db"
	workDBFile   = "infra_work.db"
	logsDBFile   = "infra_logs.db"
)

// Stores 四个互相独立的存储
// 跨存储没有事务与外键，记录之间只通过字符串 ID 关联
type Stores struct {
	Auth   *gorm.DB
	Damage *gorm.DB
	Work   *gorm.DB
	Logs   *gorm.DB

	driver string
}

// Open 按配置打开数据库连接
// postgres：四个存储共用同一个连接池
// sqlite：每个存储一个数据库文件
func Open(cfg *config.DatabaseConfig, logLevel string, logger *zap.Logger) (*Stores, error) {
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormLogLevel(logLevel)),
		TranslateError: true,
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := openPostgres(cfg, gormCfg)
		if err != nil {
			return nil, err
		}
		logger.Info("数据库连接成功",
			zap.String("driver", cfg.Driver),
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port),
			zap.String("dbname", cfg.Name),
		)
		return &Stores{Auth: db, Damage: db, Work: db, Logs: db, driver: cfg.Driver}, nil

	case config.DriverSQLite:
		if err := os.MkdirAll(cfg.SQLiteDir, 0o755); err != nil {
			return nil, fmt.Errorf("创建 SQLite 目录失败: %w", err)
		}
		s := &Stores{driver: cfg.Driver}
		targets := []struct {
			db   **gorm.DB
			file string
		}{
			{&s.Auth, authDBFile},
			{&s.Damage, damageDBFile},
			{&s.Work, workDBFile},
			{&s.Logs, logsDBFile},
		}
		for _, t := range targets {
			db, err := OpenSQLite(filepath.Join(cfg.SQLiteDir, t.file), gormCfg)
			if err != nil {
				s.Close()
				return nil, err
			}
			*t.db = db
		}
		logger.Info("数据库连接成功",
			zap.String("driver", cfg.Driver),
			zap.String("dir", cfg.SQLiteDir),
		)
		return s, nil
	}

	return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
}

func openPostgres(cfg *config.DatabaseConfig, gormCfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 10
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}
	return db, nil
}

// OpenSQLite 打开单个 SQLite 数据库（dsn 可为文件路径或 file::memory:）
func OpenSQLite(dsn string, gormCfg *gorm.Config) (*gorm.DB, error) {
	if gormCfg == nil {
		gormCfg = &gorm.Config{
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
			TranslateError: true,
		}
	}
	db, err := gorm.Open(sqlite.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("打开 SQLite 失败 %s: %w", dsn, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	// SQLite 单写者
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Close 关闭所有底层连接（postgres 模式下共用连接只关闭一次）
func (s *Stores) Close() error {
	seen := make(map[*gorm.DB]bool, 4)
	var firstErr error
	for _, db := range []*gorm.DB{s.Auth, s.Damage, s.Work, s.Logs} {
		if db == nil || seen[db] {
			continue
		}
		seen[db] = true
		sqlDB, err := db.DB()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := sqlDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}
