package service

import (
	"context"

	"go.uber.org/zap"

	"infrawatch/backend/internal/model"
	"infrawatch/backend/internal/repository"
)

// AuditService 操作审计
type AuditService interface {
	// Record 追加一条审计记录；写入失败只记日志，不影响调用方
	Record(ctx context.Context, userID, action, ip string)
}

type auditService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAuditService 创建 AuditService 实例
func NewAuditService(repo *repository.Repository, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, logger: logger}
}

func (s *auditService) Record(ctx context.Context, userID, action, ip string) {
	entry := &model.AuditLog{
		Action:    action,
		IPAddress: ip,
	}
	if userID != "" {
		entry.UserID = &userID
	}

	if err := s.repo.AuditLog.Create(ctx, entry); err != nil {
		s.logger.Error("写入审计日志失败",
			zap.String("user_id", userID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
