package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"curriculo/internal/api/middleware"
	"curriculo/internal/config"
	"curriculo/internal/metrics"
)

// NewRouter 构建 Gin 引擎：Correlation ID、slog 访问日志、panic 恢复与 HTTP 指标。
// /health 与 /metrics 不需要鉴权。
func NewRouter(cfg *config.Config, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(logger),
		gin.Recovery(),
		metrics.GinMiddleware(),
	)
	if cfg != nil && len(cfg.API.AllowedOrigins) > 0 {
		router.Use(middleware.CORSMiddleware(cfg.API.AllowedOrigins))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
