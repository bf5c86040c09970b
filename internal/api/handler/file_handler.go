package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"infrawatch/backend/internal/service"
	"infrawatch/backend/pkg/response"
)

// 文件访问模块错误码
const (
	codeInvalidFileType  = 14001
	codeFileNotFound     = 14002
	codeFileAccessDenied = 14003
)

// FileHandler 证据文件下载处理器
type FileHandler struct {
	fileSvc service.FileService
}

// NewFileHandler 创建 FileHandler
func NewFileHandler(fileSvc service.FileService) *FileHandler {
	return &FileHandler{fileSvc: fileSvc}
}

// Get 按类型与文件名读取证据文件；官员可读全部，市民只能读自己报告的图片
// GET /api/files/:file_type/:filename
func (h *FileHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	obj, err := h.fileSvc.Open(c.Request.Context(), c.Param("file_type"), c.Param("filename"), userID, role)
	if err != nil {
		handleFileError(c, err)
		return
	}
	defer obj.Body.Close()

	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, nil)
}

func handleFileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidFileType):
		response.BadRequest(c, codeInvalidFileType, "Invalid file type")
	case errors.Is(err, service.ErrFileNotFound):
		response.NotFound(c, codeFileNotFound, "File not found")
	case errors.Is(err, service.ErrFileAccessDenied):
		response.Forbidden(c, codeFileAccessDenied, "Access denied")
	default:
		response.InternalError(c)
	}
}
