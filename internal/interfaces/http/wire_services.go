package http

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tourbook/tourbook/internal/infrastructure/auth"
	"github.com/tourbook/tourbook/internal/infrastructure/cardgateway"
	"github.com/tourbook/tourbook/internal/infrastructure/config"
	"github.com/tourbook/tourbook/internal/infrastructure/permission"
	"github.com/tourbook/tourbook/internal/interfaces/http/middleware"
	"github.com/tourbook/tourbook/internal/shared/logger"
)

// initInfrastructure builds the gateway client, auth services, Redis client
// and the middlewares that depend on them.
func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	log := c.log

	gw, err := cardgateway.NewClient(cfg.Gateway, log.Named("cardgateway"))
	if err != nil {
		return fmt.Errorf("failed to create gateway client: %w", err)
	}
	c.gateway = gw

	c.jwtSvc, err = auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.AccessExpMinutes)
	if err != nil {
		return fmt.Errorf("failed to create jwt service: %w", err)
	}

	c.enforcer, err = permission.NewEnforcer(c.db, log.Named("permission"))
	if err != nil {
		return fmt.Errorf("failed to create permission enforcer: %w", err)
	}

	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, log)
	c.permissionMiddleware = middleware.NewPermissionMiddleware(c.enforcer, log)

	if cfg.Redis.Enabled {
		c.redis, err = initRedis(cfg, log)
		if err != nil {
			return err
		}
		c.rateLimiter = middleware.NewRateLimiter(
			c.redis,
			"payments",
			cfg.Server.RateLimit.Requests,
			cfg.Server.RateLimit.Window,
			log,
		)
	} else {
		log.Warnw("redis disabled: notification delivery lock and rate limiting are off")
	}

	return nil
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Infow("redis connection established", "address", cfg.Redis.GetAddr())

	return redisClient, nil
}
