package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tourbook/tourbook/internal/application/payment/paymentgateway"
	"github.com/tourbook/tourbook/internal/domain/reservation"
	vo "github.com/tourbook/tourbook/internal/domain/reservation/valueobjects"
	apperrors "github.com/tourbook/tourbook/internal/shared/errors"
	"github.com/tourbook/tourbook/internal/shared/goroutine"
	"github.com/tourbook/tourbook/internal/shared/logger"
)

// NotificationDeduplicator serializes concurrent deliveries of the same
// gateway notification.
type NotificationDeduplicator interface {
	// Acquire returns false when another delivery holds key.
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// IntegrityAlerter tells a human about a notification that was set aside.
type IntegrityAlerter interface {
	SendIntegrityAlert(ctx context.Context, n *reservation.FlaggedNotification) error
}

type HandleNotificationCommand struct {
	Notification paymentgateway.Notification
	SourceIP     string
}

type HandleNotificationResult struct {
	ReservationID  string           `json:"reservation_id"`
	OrderReference string           `json:"order_reference"`
	PaymentStatus  vo.PaymentStatus `json:"payment_status"`
	// Applied is true when this delivery changed the reservation
	Applied bool `json:"applied"`
	// Duplicate is true when the outcome had already been recorded
	Duplicate bool `json:"duplicate"`
	// Ignored is true for outcomes that cannot apply to the current state
	Ignored bool `json:"ignored"`
}

type HandleNotificationUseCase struct {
	reservationRepo reservation.ReservationRepository
	verifier        paymentgateway.NotificationVerifier
	reviewQueue     reservation.FlaggedNotificationRepository
	deduplicator    NotificationDeduplicator // Optional
	alerter         IntegrityAlerter         // Optional
	logger          logger.Interface
}

func NewHandleNotificationUseCase(
	reservationRepo reservation.ReservationRepository,
	verifier paymentgateway.NotificationVerifier,
	reviewQueue reservation.FlaggedNotificationRepository,
	logger logger.Interface,
) *HandleNotificationUseCase {
	return &HandleNotificationUseCase{
		reservationRepo: reservationRepo,
		verifier:        verifier,
		reviewQueue:     reviewQueue,
		logger:          logger,
	}
}

// SetDeduplicator sets the delivery lock (optional dependency injection)
func (uc *HandleNotificationUseCase) SetDeduplicator(d NotificationDeduplicator) {
	uc.deduplicator = d
}

// SetAlerter sets the integrity alerter (optional dependency injection)
func (uc *HandleNotificationUseCase) SetAlerter(a IntegrityAlerter) {
	uc.alerter = a
}

func (uc *HandleNotificationUseCase) Execute(ctx context.Context, cmd HandleNotificationCommand) (*HandleNotificationResult, error) {
	outcome, err := uc.verifier.VerifyNotification(ctx, cmd.Notification)
	if err != nil {
		if paymentgateway.IsIntegrityFailure(err) {
			reason := reservation.FlagReasonIntegrity
			if errors.Is(err, paymentgateway.ErrSignatureMismatch) {
				reason = reservation.FlagReasonSignatureMismatch
			}
			uc.flag(ctx, cmd, reason, "", err)
			return nil, apperrors.NewIntegrityError("notification rejected").WithCause(err)
		}
		uc.logger.Errorw("failed to verify notification", "error", err)
		return nil, apperrors.NewInternalError("failed to verify notification").WithCause(err)
	}

	if uc.deduplicator != nil {
		key := fmt.Sprintf("%s:%s:%s", outcome.OrderReference, outcome.TransactionType, outcome.ResponseCode.Raw())
		acquired, lockErr := uc.deduplicator.Acquire(ctx, key)
		switch {
		case lockErr != nil:
			// the conditional update still guards the reservation
			uc.logger.Warnw("notification lock unavailable, continuing without it",
				"order_reference", outcome.OrderReference,
				"error", lockErr,
			)
		case !acquired:
			uc.logger.Infow("notification delivery already in progress",
				"order_reference", outcome.OrderReference,
				"transaction_type", outcome.TransactionType,
			)
			return nil, apperrors.NewConflictError("notification is being processed", outcome.OrderReference)
		default:
			defer func() {
				if err := uc.deduplicator.Release(context.WithoutCancel(ctx), key); err != nil {
					uc.logger.Warnw("failed to release notification lock", "key", key, "error", err)
				}
			}()
		}
	}

	r, err := uc.reservationRepo.GetByOrderReference(ctx, outcome.OrderReference)
	if err != nil {
		if errors.Is(err, reservation.ErrReservationNotFound) {
			uc.flag(ctx, cmd, reservation.FlagReasonUnknownOrder, outcome.OrderReference, err)
			return nil, apperrors.NewNotFoundError("no reservation for order reference", outcome.OrderReference).WithCause(err)
		}
		uc.logger.Errorw("failed to load reservation for notification",
			"order_reference", outcome.OrderReference,
			"error", err,
		)
		return nil, apperrors.NewInternalError("failed to load reservation").WithCause(err)
	}

	if outcome.MerchantData != "" && outcome.MerchantData != r.ID() {
		err := fmt.Errorf("%w: merchant data %q does not match reservation %s",
			paymentgateway.ErrIntegrity, outcome.MerchantData, r.ID())
		uc.flag(ctx, cmd, reservation.FlagReasonIntegrity, outcome.OrderReference, err)
		return nil, apperrors.NewIntegrityError("notification does not match reservation").WithCause(err)
	}

	if outcome.HasAmount && !outcome.Amount.Equal(r.Amount().Amount()) {
		err := fmt.Errorf("%w: amount %s does not match reservation amount %s",
			paymentgateway.ErrIntegrity, outcome.Amount.StringFixed(2), r.Amount().Amount().StringFixed(2))
		uc.flag(ctx, cmd, reservation.FlagReasonAmountMismatch, outcome.OrderReference, err)
		return nil, apperrors.NewIntegrityError("notification amount does not match reservation").WithCause(err)
	}

	updated, t, err := applyOutcome(ctx, uc.reservationRepo, r, reservation.Outcome{
		TransactionType:   outcome.TransactionType,
		ResponseCode:      outcome.ResponseCode,
		AuthorizationCode: outcome.AuthorizationCode,
	})

	result := &HandleNotificationResult{
		ReservationID:  updated.ID(),
		OrderReference: outcome.OrderReference,
		PaymentStatus:  updated.PaymentStatus(),
	}

	switch {
	case errors.Is(err, reservation.ErrTransitionAlreadyApplied):
		uc.logger.Infow("notification already applied",
			"reservation_id", updated.ID(),
			"order_reference", outcome.OrderReference,
			"status", updated.PaymentStatus(),
		)
		result.Duplicate = true
		return result, nil
	case errors.Is(err, reservation.ErrIllegalTransition):
		// acknowledged so the gateway stops retrying; the outcome cannot apply
		uc.logger.Warnw("notification outcome cannot apply to reservation",
			"reservation_id", updated.ID(),
			"order_reference", outcome.OrderReference,
			"status", updated.PaymentStatus(),
			"transaction_type", outcome.TransactionType,
			"response_code", outcome.ResponseCode.Raw(),
			"error", err,
		)
		result.Ignored = true
		return result, nil
	case err != nil:
		uc.logger.Errorw("failed to apply notification",
			"reservation_id", updated.ID(),
			"order_reference", outcome.OrderReference,
			"error", err,
		)
		return nil, apperrors.NewInternalError("failed to apply notification").WithCause(err)
	}

	result.Applied = !t.IsNoop()
	uc.logger.Infow("notification processed",
		"reservation_id", updated.ID(),
		"order_reference", outcome.OrderReference,
		"transaction_type", outcome.TransactionType,
		"response_code", outcome.ResponseCode.Raw(),
		"transition", t.String(),
	)

	return result, nil
}

// flag stores the raw notification in the review queue and alerts asynchronously.
// Failures are logged; the caller's response does not depend on them.
func (uc *HandleNotificationUseCase) flag(
	ctx context.Context,
	cmd HandleNotificationCommand,
	reason reservation.FlagReason,
	orderRef string,
	cause error,
) {
	flagged := reservation.NewFlaggedNotification(reason, orderRef, cause.Error())
	flagged.SignatureVersion = cmd.Notification.SignatureVersion
	flagged.MerchantParameters = cmd.Notification.MerchantParameters
	flagged.Signature = cmd.Notification.Signature
	flagged.SourceIP = cmd.SourceIP

	uc.logger.Errorw("gateway notification flagged for review",
		"flag_id", flagged.ID,
		"reason", reason,
		"order_reference", orderRef,
		"source_ip", cmd.SourceIP,
		"error", cause,
	)

	if err := uc.reviewQueue.Create(ctx, flagged); err != nil {
		uc.logger.Errorw("failed to store flagged notification", "flag_id", flagged.ID, "error", err)
	}

	if uc.alerter != nil {
		goroutine.SafeGo(uc.logger, "notification-integrity-alert", func() {
			alertCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := uc.alerter.SendIntegrityAlert(alertCtx, flagged); err != nil {
				uc.logger.Warnw("failed to send integrity alert", "flag_id", flagged.ID, "error", err)
			}
		})
	}
}
