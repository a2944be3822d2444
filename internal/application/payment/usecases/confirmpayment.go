package usecases

import (
	"context"
	"errors"

	"github.com/tourbook/tourbook/internal/application/payment/paymentgateway"
	"github.com/tourbook/tourbook/internal/domain/reservation"
	vo "github.com/tourbook/tourbook/internal/domain/reservation/valueobjects"
	apperrors "github.com/tourbook/tourbook/internal/shared/errors"
	"github.com/tourbook/tourbook/internal/shared/logger"
)

type ConfirmPaymentCommand struct {
	ReservationID string
}

// ConfirmPaymentUseCase settles a preauthorized reservation.
type ConfirmPaymentUseCase struct {
	reservationRepo reservation.ReservationRepository
	gateway         paymentgateway.Gateway
	logger          logger.Interface
}

func NewConfirmPaymentUseCase(
	reservationRepo reservation.ReservationRepository,
	gateway paymentgateway.Gateway,
	logger logger.Interface,
) *ConfirmPaymentUseCase {
	return &ConfirmPaymentUseCase{
		reservationRepo: reservationRepo,
		gateway:         gateway,
		logger:          logger,
	}
}

func (uc *ConfirmPaymentUseCase) Execute(ctx context.Context, cmd ConfirmPaymentCommand) (*PaymentStateResult, error) {
	op := &settlement{
		name:            "confirm",
		transactionType: vo.TransactionTypeConfirmation,
		invalidState:    ErrInvalidStateForConfirm,
		call:            uc.gateway.Confirm,
		reservationRepo: uc.reservationRepo,
		logger:          uc.logger,
	}
	return op.run(ctx, cmd.ReservationID)
}

// settlement is the shared flow of confirm and cancel: both act on a
// preauthorized reservation through a REST call and record the outcome.
type settlement struct {
	name            string
	transactionType vo.TransactionType
	invalidState    error
	call            func(ctx context.Context, req paymentgateway.OperationRequest) (*paymentgateway.OperationResult, error)
	reservationRepo reservation.ReservationRepository
	logger          logger.Interface
}

func (s *settlement) run(ctx context.Context, reservationID string) (*PaymentStateResult, error) {
	if reservationID == "" {
		return nil, apperrors.NewValidationError("reservation ID is required")
	}

	r, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, reservation.ErrReservationNotFound) {
			return nil, apperrors.NewNotFoundError("reservation not found", reservationID).WithCause(err)
		}
		s.logger.Errorw("failed to load reservation", "reservation_id", reservationID, "error", err)
		return nil, apperrors.NewInternalError("failed to load reservation").WithCause(err)
	}

	// checked before any gateway traffic
	if !r.PaymentStatus().IsPreauthorized() {
		return nil, apperrors.NewConflictError(s.invalidState.Error(), r.PaymentStatus().String()).
			WithCause(s.invalidState)
	}
	if !r.HasOrderReference() {
		s.logger.Errorw("preauthorized reservation without order reference", "reservation_id", r.ID())
		return nil, apperrors.NewInternalError("reservation has no order reference").WithCause(ErrMissingOrderReference)
	}

	result, err := s.call(ctx, paymentgateway.OperationRequest{
		ReservationID:  r.ID(),
		OrderReference: r.OrderReference(),
		Amount:         r.Amount().Amount(),
	})
	if err != nil {
		s.logger.Warnw("gateway "+s.name+" failed, reservation left unchanged",
			"reservation_id", r.ID(),
			"order_reference", r.OrderReference(),
			"error", err,
		)
		return nil, gatewayError(s.name, err)
	}

	outcome := reservation.Outcome{
		TransactionType:   s.transactionType,
		ResponseCode:      result.ResponseCode,
		AuthorizationCode: result.AuthorizationCode,
	}

	updated, t, err := applyOutcome(ctx, s.reservationRepo, r, outcome)
	switch {
	case errors.Is(err, reservation.ErrTransitionAlreadyApplied):
		s.logger.Infow("gateway "+s.name+" outcome already recorded",
			"reservation_id", r.ID(),
			"status", updated.PaymentStatus(),
		)
	case errors.Is(err, reservation.ErrIllegalTransition):
		s.logger.Errorw("reservation moved while the gateway "+s.name+" was in flight",
			"reservation_id", r.ID(),
			"status", updated.PaymentStatus(),
			"response_code", result.ResponseCode.Raw(),
			"error", err,
		)
		return nil, apperrors.NewConflictError("reservation was modified concurrently").WithCause(err)
	case err != nil:
		s.logger.Errorw("failed to record gateway "+s.name+" outcome",
			"reservation_id", r.ID(),
			"response_code", result.ResponseCode.Raw(),
			"error", err,
		)
		return nil, apperrors.NewInternalError("failed to record payment outcome").WithCause(err)
	}

	if !outcome.Approved() {
		s.logger.Warnw("gateway declined "+s.name,
			"reservation_id", r.ID(),
			"order_reference", r.OrderReference(),
			"response_code", result.ResponseCode.Raw(),
			"transition", t.String(),
		)
		declined := &paymentgateway.GatewayDeclinedError{Operation: s.name, ResponseCode: result.ResponseCode.Raw()}
		return nil, apperrors.NewPaymentDeclinedError("payment "+s.name+" declined", result.ResponseCode.Raw()).
			WithCause(declined)
	}

	s.logger.Infow("payment "+s.name+" recorded",
		"reservation_id", updated.ID(),
		"order_reference", updated.OrderReference(),
		"status", updated.PaymentStatus(),
		"response_code", result.ResponseCode.Raw(),
	)

	return newPaymentStateResult(updated, result.ResponseCode), nil
}
