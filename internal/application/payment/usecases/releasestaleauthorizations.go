package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tourbook/tourbook/internal/application/payment/paymentgateway"
	"github.com/tourbook/tourbook/internal/domain/reservation"
	vo "github.com/tourbook/tourbook/internal/domain/reservation/valueobjects"
	"github.com/tourbook/tourbook/internal/shared/biztime"
	apperrors "github.com/tourbook/tourbook/internal/shared/errors"
	"github.com/tourbook/tourbook/internal/shared/logger"
)

const defaultReleaseBatchSize = 50

type ReleaseStaleAuthorizationsResult struct {
	Scanned  int
	Released int
	Failed   int
}

// ReleaseStaleAuthorizationsUseCase cancels preauthorizations that were never
// confirmed within the hold window.
type ReleaseStaleAuthorizationsUseCase struct {
	reservationRepo reservation.ReservationRepository
	gateway         paymentgateway.Gateway
	holdWindow      time.Duration
	batchSize       int
	logger          logger.Interface
}

func NewReleaseStaleAuthorizationsUseCase(
	reservationRepo reservation.ReservationRepository,
	gateway paymentgateway.Gateway,
	holdWindow time.Duration,
	batchSize int,
	logger logger.Interface,
) (*ReleaseStaleAuthorizationsUseCase, error) {
	if holdWindow <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidHoldWindow, holdWindow)
	}
	if batchSize <= 0 {
		batchSize = defaultReleaseBatchSize
	}
	return &ReleaseStaleAuthorizationsUseCase{
		reservationRepo: reservationRepo,
		gateway:         gateway,
		holdWindow:      holdWindow,
		batchSize:       batchSize,
		logger:          logger,
	}, nil
}

func (uc *ReleaseStaleAuthorizationsUseCase) Execute(ctx context.Context) (*ReleaseStaleAuthorizationsResult, error) {
	cutoff := biztime.NowUTC().Add(-uc.holdWindow)

	stale, err := uc.reservationRepo.ListPreauthorizedBefore(ctx, cutoff, uc.batchSize)
	if err != nil {
		uc.logger.Errorw("failed to list stale authorizations", "cutoff", cutoff, "error", err)
		return nil, apperrors.NewInternalError("failed to list stale authorizations").WithCause(err)
	}

	result := &ReleaseStaleAuthorizationsResult{Scanned: len(stale)}
	for _, r := range stale {
		if ctx.Err() != nil {
			break
		}
		if uc.release(ctx, r) {
			result.Released++
		} else {
			result.Failed++
		}
	}

	if result.Scanned > 0 {
		uc.logger.Infow("stale authorizations processed",
			"scanned", result.Scanned,
			"released", result.Released,
			"failed", result.Failed,
		)
	}

	return result, nil
}

func (uc *ReleaseStaleAuthorizationsUseCase) release(ctx context.Context, r *reservation.Reservation) bool {
	if !r.HasOrderReference() {
		uc.logger.Errorw("preauthorized reservation without order reference", "reservation_id", r.ID())
		return false
	}

	res, err := uc.gateway.Cancel(ctx, paymentgateway.OperationRequest{
		ReservationID:  r.ID(),
		OrderReference: r.OrderReference(),
		Amount:         r.Amount().Amount(),
	})
	if err != nil {
		uc.logger.Warnw("failed to cancel stale authorization",
			"reservation_id", r.ID(),
			"order_reference", r.OrderReference(),
			"error", err,
		)
		return false
	}

	outcome := reservation.Outcome{
		TransactionType:   vo.TransactionTypeCancellation,
		ResponseCode:      res.ResponseCode,
		AuthorizationCode: res.AuthorizationCode,
	}
	if !outcome.Approved() {
		uc.logger.Warnw("gateway declined stale authorization release",
			"reservation_id", r.ID(),
			"order_reference", r.OrderReference(),
			"response_code", res.ResponseCode.Raw(),
		)
		return false
	}

	updated, _, err := applyOutcome(ctx, uc.reservationRepo, r, outcome)
	if err != nil && !errors.Is(err, reservation.ErrTransitionAlreadyApplied) {
		uc.logger.Errorw("failed to record stale authorization release",
			"reservation_id", r.ID(),
			"status", updated.PaymentStatus(),
			"error", err,
		)
		return false
	}

	uc.logger.Infow("stale authorization released",
		"reservation_id", r.ID(),
		"order_reference", r.OrderReference(),
	)
	return true
}
