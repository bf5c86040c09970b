package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"infrawatch/backend/config"
	"infrawatch/backend/internal/api/handler"
	"infrawatch/backend/internal/api/router"
	"infrawatch/backend/internal/detection"
	"infrawatch/backend/internal/notify"
	"infrawatch/backend/internal/repository"
	"infrawatch/backend/internal/service"
	"infrawatch/backend/pkg/database"
	"infrawatch/backend/pkg/jwt"
	applogger "infrawatch/backend/pkg/logger"
	"infrawatch/backend/pkg/pdftext"
	"infrawatch/backend/pkg/redis"
	"infrawatch/backend/pkg/storage"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

// bootstrap 加载配置、初始化日志并打开数据库（含迁移），供各子命令复用
func bootstrap() (*config.Config, *zap.Logger, *database.Stores, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	stores, err := database.Open(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Sync()
		return nil, nil, nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	if err := stores.Migrate(logger); err != nil {
		stores.Close()
		logger.Sync()
		return nil, nil, nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return cfg, logger, stores, nil
}

func runServe() error {
	// 1. 配置、日志、数据库
	cfg, logger, stores, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer stores.Close()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("directory", cfg.Auth.Directory),
	)

	// 2. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，Token 黑名单与限流将不可用", zap.Error(err))
			rdb = nil
		}
	}

	// 3. 证据文件存储
	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	// 4. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(stores)
	jwtMgr := jwt.NewManager(&cfg.Auth)
	hub := notify.NewHub(logger)

	deps := service.Dependencies{
		JWT:       jwtMgr,
		Store:     store,
		Detector:  detection.NewHTTPDetector(&cfg.Detector, logger),
		Extractor: pdftext.NewExtractor(),
		Notifier:  hub,
	}
	if rdb != nil {
		deps.Blacklist = rdb
	}

	switch cfg.Auth.Directory {
	case config.DirectoryDatabase:
		dir := service.NewDatabaseDirectory(repo)
		deps.Directory, deps.Users = dir, dir
	default:
		dir, err := service.NewStaticDirectory(cfg.Auth.Users)
		if err != nil {
			return err
		}
		deps.Directory, deps.Users = dir, dir
	}

	svc := service.NewService(cfg, repo, deps, logger)
	h := handler.NewHandler(svc, hub)

	// 5. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 6. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     engine,
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 7. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("HTTP 服务器异常", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
	return nil
}

func newStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageS3:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewS3Store(ctx, &cfg.Storage.S3)
	default:
		return storage.NewLocalStore(cfg.Storage.Root)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移后退出",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, stores, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer stores.Close()

			logger.Info("数据库迁移完成")
			return nil
		},
	}
}
