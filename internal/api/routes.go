package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"curriculo/internal/api/middleware"
	"curriculo/internal/auth"
	"curriculo/internal/render"
	"curriculo/internal/store"
)

// Deps 汇总路由所需的依赖。Enqueuer、Files、Importer 可以为空，对应端点返回 503。
type Deps struct {
	DB          *gorm.DB
	Store       store.Store
	AuthService *auth.AuthService
	Redis       redis.UniversalClient
	Logger      *slog.Logger

	Exporter DocumentExporter
	Enqueuer TaskEnqueuer
	Files    ExportFiles
	Importer ResumeImporter
	Registry *render.Registry

	AllowedOrigins  []string
	Auth            AuthOptions
	MaxResumes      int
	MaxRetry        int
	LinkTTL         time.Duration
	DefaultProvider string
	ImportsPerHour  int
	MaxUploadBytes  int64
}

// RegisterRoutes 注册 /v1 下的全部 API 路由。
func RegisterRoutes(router *gin.Engine, deps Deps) {
	resumeHandler := NewResumeHandler(ResumeHandlerOptions{
		Store:      deps.Store,
		Exporter:   deps.Exporter,
		Enqueuer:   deps.Enqueuer,
		Files:      deps.Files,
		MaxResumes: deps.MaxResumes,
		MaxRetry:   deps.MaxRetry,
		LinkTTL:    deps.LinkTTL,
	})
	authHandler := NewAuthHandler(deps.DB, deps.AuthService, deps.Redis, deps.Logger, deps.Auth)
	templateHandler := NewTemplateHandler(deps.Registry)
	authMiddleware := middleware.AuthMiddleware(deps.AuthService)

	var limiter redisRateCounter
	if deps.Redis != nil {
		limiter = deps.Redis
	}
	importHandler := NewImportHandler(deps.Store, deps.Importer, limiter, deps.DefaultProvider, deps.ImportsPerHour, deps.MaxUploadBytes)

	v1 := router.Group("/v1")
	{
		// 登录节流、令牌吊销与推送都依赖 Redis
		if deps.Redis != nil {
			wsHandler := NewWsHandler(deps.Redis, deps.AuthService, deps.Logger, deps.AllowedOrigins)
			v1.GET("/ws", wsHandler.HandleConnection)

			authGroup := v1.Group("/auth")
			{
				authGroup.POST("/register", authHandler.Register)
				authGroup.POST("/login", authHandler.Login)
				authGroup.POST("/refresh", authHandler.Refresh)
				authGroup.POST("/logout", authHandler.Logout)
			}
		}

		v1.GET("/me", authMiddleware, authHandler.Me)

		templateGroup := v1.Group("/templates")
		{
			templateGroup.GET("", templateHandler.ListTemplates)
			templateGroup.GET("/:id/preview", templateHandler.PreviewTemplate)
		}

		resumeGroup := v1.Group("/resumes")
		resumeGroup.Use(authMiddleware)
		{
			resumeGroup.GET("", resumeHandler.ListResumes)
			resumeGroup.POST("", resumeHandler.CreateResume)
			resumeGroup.GET("/:id", resumeHandler.GetResume)
			resumeGroup.PUT("/:id", resumeHandler.UpdateResume)
			resumeGroup.PATCH("/:id", resumeHandler.UpdateResume)
			resumeGroup.DELETE("/:id", resumeHandler.DeleteResume)
			resumeGroup.POST("/:id/duplicate", resumeHandler.DuplicateResume)

			resumeGroup.GET("/:id/versions", resumeHandler.ListVersions)
			resumeGroup.POST("/:id/versions", resumeHandler.CreateVersion)
			resumeGroup.POST("/:id/versions/:versionId/restore", resumeHandler.RestoreVersion)

			resumeGroup.GET("/:id/preview", resumeHandler.PreviewResume)
			resumeGroup.GET("/:id/export/:format", resumeHandler.ExportResume)
			resumeGroup.POST("/:id/exports", resumeHandler.EnqueueExport)
			resumeGroup.GET("/:id/exports/:format/link", resumeHandler.GetExportLink)

			resumeGroup.POST("/:id/import-template", importHandler.ImportTemplate)
		}
	}
}
