package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"infrawatch/backend/internal/dto"
	"infrawatch/backend/internal/service"
	"infrawatch/backend/pkg/response"
)

// 施工通告模块错误码
const (
	codeNoFile                = 13001
	codeExtractionFailed      = 13002
	codeMissingFields         = 13003
	codeDuplicateNotice       = 13004
	codeWorkReportNotFound    = 13005
	codeWorkReportFileMissing = 13006
)

// WorkReportHandler 施工通告 HTTP 处理器
type WorkReportHandler struct {
	workSvc service.WorkReportService
}

// NewWorkReportHandler 创建 WorkReportHandler
func NewWorkReportHandler(workSvc service.WorkReportService) *WorkReportHandler {
	return &WorkReportHandler{workSvc: workSvc}
}

// Upload 上传施工通告 PDF 并解析入库
// POST /api/official/work-reports/upload
func (h *WorkReportHandler) Upload(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	pdf, closeFn, ok := openFormFile(c, "pdf")
	if !ok {
		return
	}
	defer closeFn()

	result, err := h.workSvc.Upload(c.Request.Context(), userID, c.ClientIP(), &dto.UploadWorkNoticeRequest{PDF: pdf})
	if err != nil {
		handleWorkReportError(c, err)
		return
	}

	response.Created(c, "Work notice uploaded", result)
}

// List 全部施工通告，按上传时间倒序
// GET /api/official/work-reports
func (h *WorkReportHandler) List(c *gin.Context) {
	list, err := h.workSvc.List(c.Request.Context())
	if err != nil {
		handleWorkReportError(c, err)
		return
	}

	response.OK(c, list)
}

// Download 下载施工通告原件
// GET /api/official/work-reports/:id/download
func (h *WorkReportHandler) Download(c *gin.Context) {
	obj, filename, err := h.workSvc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleWorkReportError(c, err)
		return
	}
	defer obj.Body.Close()

	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, map[string]string{
		"Content-Disposition": "attachment; filename*=UTF-8''" + url.QueryEscape(filename),
	})
}

func handleWorkReportError(c *gin.Context, err error) {
	var missing *service.MissingFieldsError
	switch {
	case errors.Is(err, service.ErrNoFile):
		response.BadRequest(c, codeNoFile, "No PDF file")
	case errors.Is(err, service.ErrEmptyFilename):
		response.BadRequest(c, codeNoFile, "Empty filename")
	case errors.Is(err, service.ErrExtractionFailed):
		response.BadRequest(c, codeExtractionFailed, "Could not extract text from PDF")
	case errors.As(err, &missing):
		response.ErrorWithDetails(c, http.StatusBadRequest, codeMissingFields, "Missing required fields",
			gin.H{"missing_fields": missing.Fields})
	case errors.Is(err, service.ErrDuplicateNotice):
		response.Conflict(c, codeDuplicateNotice, "Notice ID already exists")
	case errors.Is(err, service.ErrWorkReportNotFound):
		response.NotFound(c, codeWorkReportNotFound, "Work report not found")
	case errors.Is(err, service.ErrWorkReportFileMissing):
		response.NotFound(c, codeWorkReportFileMissing, "File not found")
	default:
		response.InternalError(c)
	}
}
