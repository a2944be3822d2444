package usecases

import (
	"context"

	"github.com/tourbook/tourbook/internal/application/payment/paymentgateway"
	"github.com/tourbook/tourbook/internal/domain/reservation"
	vo "github.com/tourbook/tourbook/internal/domain/reservation/valueobjects"
	"github.com/tourbook/tourbook/internal/shared/logger"
)

type CancelPaymentCommand struct {
	ReservationID string
}

// CancelPaymentUseCase releases the hold on a preauthorized reservation. A
// declined cancellation leaves the reservation preauthorized.
type CancelPaymentUseCase struct {
	reservationRepo reservation.ReservationRepository
	gateway         paymentgateway.Gateway
	logger          logger.Interface
}

func NewCancelPaymentUseCase(
	reservationRepo reservation.ReservationRepository,
	gateway paymentgateway.Gateway,
	logger logger.Interface,
) *CancelPaymentUseCase {
	return &CancelPaymentUseCase{
		reservationRepo: reservationRepo,
		gateway:         gateway,
		logger:          logger,
	}
}

func (uc *CancelPaymentUseCase) Execute(ctx context.Context, cmd CancelPaymentCommand) (*PaymentStateResult, error) {
	op := &settlement{
		name:            "cancel",
		transactionType: vo.TransactionTypeCancellation,
		invalidState:    ErrInvalidStateForCancel,
		call:            uc.gateway.Cancel,
		reservationRepo: uc.reservationRepo,
		logger:          uc.logger,
	}
	return op.run(ctx, cmd.ReservationID)
}
