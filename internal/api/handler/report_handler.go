package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"infrawatch/backend/internal/dto"
	"infrawatch/backend/internal/service"
	"infrawatch/backend/pkg/response"
)

// 损伤报告模块错误码
const (
	codeNoImage        = 12001
	codeEmptyFilename  = 12002
	codeInvalidStatus  = 12003
	codeReportNotFound = 12004
)

// ReportHandler 损伤报告 HTTP 处理器（市民提交 + 官员审核）
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// ── 市民端 ──

// Detect 上传图片预览识别结果，不落库
// POST /api/citizen/detect
func (h *ReportHandler) Detect(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	image, closeFn, ok := openFormFile(c, "image")
	if !ok {
		return
	}
	defer closeFn()

	result, err := h.reportSvc.Detect(c.Request.Context(), userID, image)
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

// Submit 提交损伤报告
// POST /api/citizen/submit
func (h *ReportHandler) Submit(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	image, closeFn, ok := openFormFile(c, "image")
	if !ok {
		return
	}
	defer closeFn()

	req := &dto.SubmitReportRequest{
		Image:     image,
		Location:  c.PostForm("location"),
		Latitude:  optionalFloat(c, "latitude"),
		Longitude: optionalFloat(c, "longitude"),
	}

	result, err := h.reportSvc.Submit(c.Request.Context(), userID, c.ClientIP(), req)
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.Created(c, "Report submitted successfully", result)
}

// ListMine 当前市民自己提交的报告
// GET /api/citizen/reports
func (h *ReportHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.reportSvc.ListByCitizen(c.Request.Context(), userID)
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.OK(c, list)
}

// ── 官员端 ──

// List 全部报告，按提交时间倒序
// GET /api/official/reports
func (h *ReportHandler) List(c *gin.Context) {
	list, err := h.reportSvc.List(c.Request.Context())
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.OK(c, list)
}

// Get 报告详情
// GET /api/official/reports/:id
func (h *ReportHandler) Get(c *gin.Context) {
	result, err := h.reportSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

// Verify 审核报告（approved / rejected）
// POST /api/official/reports/:id/verify
func (h *ReportHandler) Verify(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	// 空请求体按空状态处理，交由 Service 返回 InvalidStatus
	var req dto.VerifyReportRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, codeInvalidStatus, "Invalid status")
		return
	}

	status, err := h.reportSvc.Verify(c.Request.Context(), c.Param("id"), userID, c.ClientIP(), &req)
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.OKWithMessage(c, "Report "+string(status), gin.H{
		"report_id": c.Param("id"),
		"status":    status,
	})
}

// Assign 派工给承包商
// POST /api/official/reports/:id/assign
func (h *ReportHandler) Assign(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AssignWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, response.CodeBadRequest, "Invalid request body")
		return
	}
	req.ContractorID = strings.TrimSpace(req.ContractorID)

	if err := h.reportSvc.Assign(c.Request.Context(), c.Param("id"), userID, c.ClientIP(), &req); err != nil {
		handleReportError(c, err)
		return
	}

	response.OKWithMessage(c, "Work assigned", nil)
}

func handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoImage):
		response.BadRequest(c, codeNoImage, "No image")
	case errors.Is(err, service.ErrEmptyFilename):
		response.BadRequest(c, codeEmptyFilename, "Empty filename")
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, codeInvalidStatus, "Invalid status")
	case errors.Is(err, service.ErrReportNotFound):
		response.NotFound(c, codeReportNotFound, "Report not found")
	case isBodyTooLarge(err):
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "Request body too large")
	default:
		response.InternalError(c)
	}
}
