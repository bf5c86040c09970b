package handler

import (
	"infrawatch/backend/internal/notify"
	"infrawatch/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Report       *ReportHandler
	WorkReport   *WorkReportHandler
	File         *FileHandler
	Analytics    *AnalyticsHandler
	Notification *NotificationHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, hub *notify.Hub) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Report:       NewReportHandler(svc.Report),
		WorkReport:   NewWorkReportHandler(svc.WorkReport),
		File:         NewFileHandler(svc.File),
		Analytics:    NewAnalyticsHandler(svc.Analytics),
		Notification: NewNotificationHandler(hub),
	}
}
