package http

import (
	"github.com/tourbook/tourbook/internal/application/payment/usecases"
	"github.com/tourbook/tourbook/internal/infrastructure/cache"
	"github.com/tourbook/tourbook/internal/infrastructure/cardgateway"
	"github.com/tourbook/tourbook/internal/infrastructure/email"
)

// allUseCases holds the payment use cases served over HTTP.
type allUseCases struct {
	startAuthorizationUC *usecases.StartAuthorizationUseCase
	confirmPaymentUC     *usecases.ConfirmPaymentUseCase
	cancelPaymentUC      *usecases.CancelPaymentUseCase
	handleNotificationUC *usecases.HandleNotificationUseCase
	listFlaggedUC        *usecases.ListFlaggedNotificationsUseCase
}

func (c *Container) initUseCases() {
	log := c.log
	reservationRepo := c.repos.reservationRepo

	c.ucs = &allUseCases{
		startAuthorizationUC: usecases.NewStartAuthorizationUseCase(
			reservationRepo, c.gateway, cardgateway.NewOrderReferenceGenerator(), log,
		),
		confirmPaymentUC: usecases.NewConfirmPaymentUseCase(reservationRepo, c.gateway, log),
		cancelPaymentUC:  usecases.NewCancelPaymentUseCase(reservationRepo, c.gateway, log),
		handleNotificationUC: usecases.NewHandleNotificationUseCase(
			reservationRepo, c.gateway.NotificationVerifier(), c.repos.flaggedRepo, log,
		),
		listFlaggedUC: usecases.NewListFlaggedNotificationsUseCase(c.repos.flaggedRepo, log),
	}

	if c.redis != nil {
		c.ucs.handleNotificationUC.SetDeduplicator(cache.NewNotificationDeduplicator(c.redis, 0))
	}

	alerter := email.NewSMTPEmailService(c.cfg.Email)
	if alerter.IsConfigured() {
		c.ucs.handleNotificationUC.SetAlerter(alerter)
	} else {
		log.Infow("integrity alert email disabled: smtp host or review recipients missing")
	}
}
