package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"infrawatch/backend/internal/service"
	"infrawatch/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AnalyticsHandler 承包商、片区、统计看板与导出
type AnalyticsHandler struct {
	analyticsSvc service.AnalyticsService
}

// NewAnalyticsHandler 创建 AnalyticsHandler
func NewAnalyticsHandler(analyticsSvc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc}
}

// Contractors GET /api/official/contractors
func (h *AnalyticsHandler) Contractors(c *gin.Context) {
	response.OK(c, h.analyticsSvc.Contractors(c.Request.Context()))
}

// Sectors GET /api/official/sectors
func (h *AnalyticsHandler) Sectors(c *gin.Context) {
	response.OK(c, h.analyticsSvc.Sectors(c.Request.Context()))
}

// Analytics GET /api/official/analytics
func (h *AnalyticsHandler) Analytics(c *gin.Context) {
	response.OK(c, h.analyticsSvc.Analytics(c.Request.Context()))
}

// Export 导出全部报告为 Excel
// GET /api/official/analytics/export
func (h *AnalyticsHandler) Export(c *gin.Context) {
	buf, filename, err := h.analyticsSvc.ExportReports(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
