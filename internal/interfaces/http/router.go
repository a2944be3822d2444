package http

import (
	"github.com/gin-gonic/gin"

	"github.com/tourbook/tourbook/internal/interfaces/http/middleware"
	"github.com/tourbook/tourbook/internal/interfaces/http/routes"

	_ "github.com/tourbook/tourbook/docs"
)

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.RequestLogger(c.log))
	c.engine.Use(middleware.Recovery(c.log))
	c.engine.Use(middleware.SecurityHeaders())
	c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))

	routes.SetupSystemRoutes(c.engine, &routes.SystemRouteConfig{
		HealthHandler: c.hdlrs.healthHandler,
		EnableSwagger: c.cfg.Server.Mode != gin.ReleaseMode,
	})

	routes.SetupPaymentRoutes(c.engine, &routes.PaymentRouteConfig{
		PaymentHandler:       c.hdlrs.paymentHandler,
		AuthMiddleware:       c.authMiddleware,
		PermissionMiddleware: c.permissionMiddleware,
		RateLimiter:          c.rateLimiter,
		NotificationPath:     c.cfg.Gateway.NotificationPath,
	})
}

// GetEngine returns the Gin engine
func (c *Container) GetEngine() *gin.Engine {
	return c.engine
}

// Shutdown releases the connections owned by the container. The database is
// owned by the caller.
func (c *Container) Shutdown() {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Errorw("failed to close redis client", "error", err)
		}
		c.redis = nil
	}
}
