package handler

import (
	"github.com/gin-gonic/gin"

	"infrawatch/backend/internal/notify"
)

// NotificationHandler 报告状态推送（WebSocket）
type NotificationHandler struct {
	hub *notify.Hub
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(hub *notify.Hub) *NotificationHandler {
	return &NotificationHandler{hub: hub}
}

// Subscribe 升级为 WebSocket，阻塞直到连接关闭
// GET /api/citizen/notifications/ws
func (h *NotificationHandler) Subscribe(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	// 升级失败时 upgrader 已写入错误响应
	_ = h.hub.ServeWS(c.Writer, c.Request, userID)
}
