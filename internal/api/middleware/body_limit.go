package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"infrawatch/backend/pkg/response"
)

// BodyLimit 请求体大小限制中间件
// Content-Length 已超限时直接返回 413；否则包装 Body，读取超限时由 Handler 识别 *http.MaxBytesError
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			response.AbortWithError(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "Request body too large")
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
