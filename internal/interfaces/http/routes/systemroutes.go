package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/tourbook/tourbook/internal/interfaces/http/handlers"
)

// SystemRouteConfig holds dependencies for health and documentation routes.
type SystemRouteConfig struct {
	HealthHandler *handlers.HealthHandler
	// EnableSwagger serves the API docs under /swagger
	EnableSwagger bool
}

func SetupSystemRoutes(engine *gin.Engine, cfg *SystemRouteConfig) {
	engine.GET("/health", cfg.HealthHandler.Health)

	if cfg.EnableSwagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}
