package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/tourbook/tourbook/internal/interfaces/http/handlers"
	"github.com/tourbook/tourbook/internal/interfaces/http/middleware"
	"github.com/tourbook/tourbook/internal/shared/authorization"
)

// PaymentRouteConfig holds dependencies for payment routes.
type PaymentRouteConfig struct {
	PaymentHandler       *handlers.PaymentHandler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
	// RateLimiter guards the public endpoints; nil disables limiting
	RateLimiter *middleware.RateLimiter
	// NotificationPath must match the merchant URL sent to the gateway
	NotificationPath string
}

// SetupPaymentRoutes configures payment routes.
func SetupPaymentRoutes(engine *gin.Engine, cfg *PaymentRouteConfig) {
	var limit gin.HandlerFunc
	if cfg.RateLimiter != nil {
		limit = cfg.RateLimiter.Limit()
	}

	notificationPath := cfg.NotificationPath
	if notificationPath == "" {
		notificationPath = "/payments/notification"
	}
	engine.POST(notificationPath, withLimit(limit, cfg.PaymentHandler.HandleNotification)...)

	reservations := engine.Group("/reservations/:id/payment")
	{
		reservations.POST("/authorize", withLimit(limit, cfg.PaymentHandler.StartAuthorization)...)

		operator := reservations.Group("")
		operator.Use(cfg.AuthMiddleware.RequireAuth())
		{
			operator.POST("/confirm",
				cfg.PermissionMiddleware.RequirePermission(authorization.ResourcePayment, authorization.ActionConfirm),
				cfg.PaymentHandler.ConfirmPayment,
			)
			operator.POST("/cancel",
				cfg.PermissionMiddleware.RequirePermission(authorization.ResourcePayment, authorization.ActionCancel),
				cfg.PaymentHandler.CancelPayment,
			)
		}
	}

	admin := engine.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAuth())
	{
		admin.GET("/flagged-notifications",
			cfg.PermissionMiddleware.RequirePermission(authorization.ResourceReviewQueue, authorization.ActionRead),
			cfg.PaymentHandler.ListFlaggedNotifications,
		)
	}
}

// withLimit prepends the rate limiter when one is configured.
func withLimit(limit gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	if limit == nil {
		return []gin.HandlerFunc{handler}
	}
	return []gin.HandlerFunc{limit, handler}
}
