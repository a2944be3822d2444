package usecases

import (
	"context"
	"errors"

	"github.com/tourbook/tourbook/internal/application/payment/paymentgateway"
	"github.com/tourbook/tourbook/internal/domain/reservation"
	apperrors "github.com/tourbook/tourbook/internal/shared/errors"
	"github.com/tourbook/tourbook/internal/shared/logger"
)

type StartAuthorizationCommand struct {
	ReservationID string
	// Language is the shopper's preferred language, usually the Accept-Language header
	Language string
}

type StartAuthorizationUseCase struct {
	reservationRepo reservation.ReservationRepository
	gateway         paymentgateway.Gateway
	refGenerator    paymentgateway.OrderReferenceGenerator
	logger          logger.Interface
}

func NewStartAuthorizationUseCase(
	reservationRepo reservation.ReservationRepository,
	gateway paymentgateway.Gateway,
	refGenerator paymentgateway.OrderReferenceGenerator,
	logger logger.Interface,
) *StartAuthorizationUseCase {
	return &StartAuthorizationUseCase{
		reservationRepo: reservationRepo,
		gateway:         gateway,
		refGenerator:    refGenerator,
		logger:          logger,
	}
}

func (uc *StartAuthorizationUseCase) Execute(ctx context.Context, cmd StartAuthorizationCommand) (*paymentgateway.RedirectPayload, error) {
	if cmd.ReservationID == "" {
		return nil, apperrors.NewValidationError("reservation ID is required")
	}

	r, err := uc.loadReservation(ctx, cmd.ReservationID)
	if err != nil {
		return nil, err
	}

	if !r.PaymentStatus().IsPending() {
		return nil, apperrors.NewConflictError("reservation is not awaiting authorization", r.PaymentStatus().String()).
			WithCause(ErrInvalidStateForAuthorization)
	}

	orderRef, err := uc.ensureOrderReference(ctx, r)
	if err != nil {
		return nil, err
	}

	payload, err := uc.gateway.StartAuthorization(ctx, paymentgateway.AuthorizationRequest{
		ReservationID:  r.ID(),
		OrderReference: orderRef,
		Amount:         r.Amount().Amount(),
		Description:    r.Description(),
		Language:       cmd.Language,
	})
	if err != nil {
		uc.logger.Errorw("failed to build authorization redirect",
			"reservation_id", r.ID(),
			"order_reference", orderRef,
			"error", err,
		)
		return nil, apperrors.NewInternalError("failed to start authorization").WithCause(err)
	}

	uc.logger.Infow("authorization redirect issued",
		"reservation_id", r.ID(),
		"order_reference", orderRef,
		"amount", r.Amount().String(),
	)

	return payload, nil
}

// ensureOrderReference returns the stored reference, or generates and stores a
// new one. When a concurrent request stored a different reference first, that
// one wins and is returned.
func (uc *StartAuthorizationUseCase) ensureOrderReference(ctx context.Context, r *reservation.Reservation) (string, error) {
	if r.HasOrderReference() {
		return r.OrderReference(), nil
	}

	ref, err := uc.refGenerator.Generate(r.ID())
	if err != nil {
		uc.logger.Errorw("failed to generate order reference", "reservation_id", r.ID(), "error", err)
		return "", apperrors.NewInternalError("failed to generate order reference").WithCause(err)
	}

	if err := r.AssignOrderReference(ref); err != nil {
		return "", apperrors.NewInternalError("failed to assign order reference").WithCause(err)
	}

	err = uc.reservationRepo.AssignOrderReference(ctx, r)
	if err == nil {
		uc.logger.Infow("order reference assigned", "reservation_id", r.ID(), "order_reference", ref)
		return ref, nil
	}
	if !errors.Is(err, reservation.ErrConcurrentUpdate) {
		uc.logger.Errorw("failed to persist order reference", "reservation_id", r.ID(), "error", err)
		return "", apperrors.NewInternalError("failed to persist order reference").WithCause(err)
	}

	stored, err := uc.loadReservation(ctx, r.ID())
	if err != nil {
		return "", err
	}
	if !stored.HasOrderReference() {
		return "", apperrors.NewConflictError("reservation was modified concurrently").
			WithCause(reservation.ErrConcurrentUpdate)
	}

	uc.logger.Infow("reusing order reference stored by a concurrent request",
		"reservation_id", r.ID(),
		"order_reference", stored.OrderReference(),
		"discarded_reference", ref,
	)
	return stored.OrderReference(), nil
}

func (uc *StartAuthorizationUseCase) loadReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	r, err := uc.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservation.ErrReservationNotFound) {
			return nil, apperrors.NewNotFoundError("reservation not found", id).WithCause(err)
		}
		uc.logger.Errorw("failed to load reservation", "reservation_id", id, "error", err)
		return nil, apperrors.NewInternalError("failed to load reservation").WithCause(err)
	}
	return r, nil
}
