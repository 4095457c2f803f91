package http

import (
	"github.com/gin-gonic/gin"

	"github.com/allerscan/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, proxy *ProxyHandler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		scan := v1.Group("/scan")
		{
			scan.POST("/image", handler.ScanImage)
		}

		products := v1.Group("/products")
		{
			products.POST("/analyze", handler.AnalyzeProduct)
		}

		proxyGroup := v1.Group("/proxy")
		{
			proxyGroup.GET("/food", proxy.RelayFood)
			proxyGroup.GET("/cert", proxy.RelayCert)
		}
	}

	return router
}
