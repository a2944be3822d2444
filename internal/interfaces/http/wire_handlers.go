package http

import (
	"fmt"

	"github.com/tourbook/tourbook/internal/interfaces/http/handlers"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	paymentHandler *handlers.PaymentHandler
	healthHandler  *handlers.HealthHandler
}

func (c *Container) initHandlers() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	c.hdlrs = &allHandlers{
		paymentHandler: handlers.NewPaymentHandler(
			c.ucs.startAuthorizationUC,
			c.ucs.confirmPaymentUC,
			c.ucs.cancelPaymentUC,
			c.ucs.handleNotificationUC,
			c.ucs.listFlaggedUC,
			c.log.Named("payment-handler"),
		),
		healthHandler: handlers.NewHealthHandler(sqlDB, c.log),
	}
	return nil
}
