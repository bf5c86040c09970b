package service

import (
	"go.uber.org/zap"

	"infrawatch/backend/config"
	"infrawatch/backend/internal/detection"
	"infrawatch/backend/internal/repository"
	"infrawatch/backend/pkg/jwt"
	"infrawatch/backend/pkg/storage"
)

// Dependencies 由组合根构建并注入的外部协作者
type Dependencies struct {
	JWT       *jwt.Manager
	Directory IdentityDirectory
	Users     UserLookup
	Blacklist TokenBlacklist // 可为 nil
	Store     storage.Store
	Detector  detection.Detector
	Extractor TextExtractor
	Notifier  Notifier // 可为 nil
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Report     ReportService
	File       FileService
	WorkReport WorkReportService
	Audit      AuditService
	Analytics  AnalyticsService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	deps Dependencies,
	logger *zap.Logger,
) *Service {
	audit := NewAuditService(repo, logger)
	tempDir := cfg.Storage.TempDir

	return &Service{
		Auth:       NewAuthService(deps.Directory, deps.Users, deps.JWT, deps.Blacklist, logger),
		Report:     NewReportService(repo, deps.Store, deps.Detector, audit, deps.Notifier, tempDir, logger),
		File:       NewFileService(repo, deps.Store, logger),
		WorkReport: NewWorkReportService(repo, deps.Store, deps.Extractor, audit, tempDir, logger),
		Audit:      audit,
		Analytics:  NewAnalyticsService(repo, logger),
	}
}
