package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"infrawatch/backend/pkg/redis"
	"infrawatch/backend/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// 按客户端 IP + 路由计数；rdb 为 nil 或 limit <= 0 时不限流
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis 出错时降级放行
			c.Next()
			return
		}

		if !allowed {
			response.AbortWithError(c, http.StatusTooManyRequests, response.CodeRateLimited, "Too many requests, please try again later")
			return
		}

		c.Next()
	}
}
