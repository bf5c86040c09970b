package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"infrawatch/backend/config"
	"infrawatch/backend/internal/api/handler"
	"infrawatch/backend/internal/api/middleware"
	"infrawatch/backend/internal/model"
	"infrawatch/backend/pkg/jwt"
	"infrawatch/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Server.MaxUploadBytes()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	rl := cfg.Server.RateLimit
	uploadLimit := middleware.BodyLimit(cfg.Server.MaxUploadBytes())
	citizenRole := string(model.RoleCitizen)
	officialRole := string(model.RoleOfficial)

	api := r.Group("/api")
	{
		// 认证模块
		auth := api.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, rl.Limit, rl.Window), h.Auth.Login)

			authed := auth.Group("")
			authed.Use(middleware.JWTAuth(jwtMgr, rdb))
			authed.GET("/me", h.Auth.Me)
			authed.POST("/logout", h.Auth.Logout)
		}

		// 市民端
		citizen := api.Group("/citizen")
		citizen.Use(middleware.JWTAuth(jwtMgr, rdb), middleware.RoleAuth(citizenRole))
		{
			citizen.POST("/detect", uploadLimit, h.Report.Detect)
			citizen.POST("/submit", uploadLimit, middleware.RateLimit(rdb, rl.Limit, rl.Window), h.Report.Submit)
			citizen.GET("/reports", h.Report.ListMine)
			citizen.GET("/notifications/ws", h.Notification.Subscribe)
		}

		// 官员端
		official := api.Group("/official")
		official.Use(middleware.JWTAuth(jwtMgr, rdb), middleware.RoleAuth(officialRole))
		{
			official.GET("/reports", h.Report.List)
			official.GET("/reports/:id", h.Report.Get)
			official.POST("/reports/:id/verify", h.Report.Verify)
			official.POST("/reports/:id/assign", h.Report.Assign)

			official.GET("/contractors", h.Analytics.Contractors)
			official.GET("/sectors", h.Analytics.Sectors)
			official.GET("/analytics", h.Analytics.Analytics)
			official.GET("/analytics/export", h.Analytics.Export)

			official.GET("/work-reports", h.WorkReport.List)
			official.POST("/work-reports/upload", uploadLimit, h.WorkReport.Upload)
			official.GET("/work-reports/:id/download", h.WorkReport.Download)
		}

		// 证据文件（任意已登录角色，Service 层按角色鉴权）
		files := api.Group("/files")
		files.Use(middleware.JWTAuth(jwtMgr, rdb))
		files.GET("/:file_type/:filename", h.File.Get)
	}

	return r
}
