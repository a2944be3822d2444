package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tourbook/tourbook/internal/infrastructure/auth"
	"github.com/tourbook/tourbook/internal/infrastructure/cardgateway"
	"github.com/tourbook/tourbook/internal/infrastructure/config"
	"github.com/tourbook/tourbook/internal/infrastructure/permission"
	"github.com/tourbook/tourbook/internal/interfaces/http/middleware"
	"github.com/tourbook/tourbook/internal/shared/logger"
)

// Container holds the infrastructure components, repositories, use cases and
// handlers of the HTTP server and wires them together.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	// redis is nil unless redis.enabled is set
	redis *redis.Client

	gateway  *cardgateway.Client
	jwtSvc   *auth.JWTService
	enforcer *permission.Enforcer

	repos *repositories
	ucs   *allUseCases
	hdlrs *allHandlers

	// Middlewares
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	// rateLimiter is nil when redis is disabled
	rateLimiter *middleware.RateLimiter
}

// NewContainer wires every component. Configuration problems (gateway
// settings, JWT secret, unreachable Redis) are returned so the server does
// not start half-configured.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	if err := c.initInfrastructure(); err != nil {
		c.Shutdown()
		return nil, err
	}

	c.repos = newRepositories(db)
	c.initUseCases()
	if err := c.initHandlers(); err != nil {
		c.Shutdown()
		return nil, err
	}

	return c, nil
}
