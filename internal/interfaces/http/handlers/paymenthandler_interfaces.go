package handlers

import (
	"context"

	"github.com/tourbook/tourbook/internal/application/payment/paymentgateway"
	"github.com/tourbook/tourbook/internal/application/payment/usecases"
)

type startAuthorizationUseCase interface {
	Execute(ctx context.Context, cmd usecases.StartAuthorizationCommand) (*paymentgateway.RedirectPayload, error)
}

type confirmPaymentUseCase interface {
	Execute(ctx context.Context, cmd usecases.ConfirmPaymentCommand) (*usecases.PaymentStateResult, error)
}

type cancelPaymentUseCase interface {
	Execute(ctx context.Context, cmd usecases.CancelPaymentCommand) (*usecases.PaymentStateResult, error)
}

type handleNotificationUseCase interface {
	Execute(ctx context.Context, cmd usecases.HandleNotificationCommand) (*usecases.HandleNotificationResult, error)
}

type listFlaggedNotificationsUseCase interface {
	Execute(ctx context.Context, query usecases.ListFlaggedNotificationsQuery) ([]usecases.FlaggedNotificationView, error)
}
