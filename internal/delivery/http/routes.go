package http

import (
	"net/http"

	"github.com/agrihope/backend/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// MetricsExporter is HTTPMetrics plus the scrape handler
type MetricsExporter interface {
	HTTPMetrics
	Handler() http.Handler
}

// SetupRouter creates and configures the Gin router. metrics may be nil.
func SetupRouter(cfg *config.Config, handler *Handler, logger zerolog.Logger, metrics MetricsExporter) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	if metrics != nil {
		router.Use(MetricsMiddleware(metrics))
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(NewRateLimiter(cfg.RateLimit.PerIP, cfg.RateLimit.Burst)))
	{
		assistant := v1.Group("/assistant")
		assistant.Use(AssistantRecoveryMiddleware(logger))
		{
			assistant.POST("/query", handler.QueryAssistant)
			assistant.GET("/selftest", handler.SelfTest)
		}

		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.GET("/:id", handler.GetProduct)
		}
	}

	return router
}
