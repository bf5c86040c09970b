package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"infrawatch/backend/internal/dto"
	"infrawatch/backend/pkg/response"
)

// openFormFile 读取 multipart 中的文件字段。
// 字段缺失（或请求不是 multipart）时返回 nil 上传与 ok=true，由 Service 给出业务错误；
// 请求体超限时直接写入 413 并返回 ok=false。调用方负责执行 closeFn。
func openFormFile(c *gin.Context, field string) (upload *dto.FileUpload, closeFn func(), ok bool) {
	noop := func() {}

	fh, err := c.FormFile(field)
	if err != nil {
		if isBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "Request body too large")
			return nil, noop, false
		}
		return nil, noop, true
	}

	f, err := fh.Open()
	if err != nil {
		response.InternalError(c)
		return nil, noop, false
	}
	return &dto.FileUpload{Filename: fh.Filename, Body: f}, func() { _ = f.Close() }, true
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	// multipart 解析链路上部分错误未用 %w 包装
	return strings.Contains(err.Error(), "request body too large")
}

// optionalFloat 解析可选数值表单字段，缺失或非法时为 nil
func optionalFloat(c *gin.Context, field string) *float64 {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
