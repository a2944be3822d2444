package usecases

import (
	"context"
	"errors"

	"github.com/tourbook/tourbook/internal/domain/reservation"
)

// maxApplyAttempts bounds the re-read loop when the conditional update loses a race.
const maxApplyAttempts = 3

// applyOutcome applies outcome to r and persists it with a compare-and-set on
// the status and version r had before the change. On ErrConcurrentUpdate the
// reservation is re-read and the outcome planned again against the fresh state,
// so a racing writer that already recorded the same result surfaces as
// ErrTransitionAlreadyApplied.
//
// The returned reservation is the last one read, which may differ from r.
func applyOutcome(
	ctx context.Context,
	repo reservation.ReservationRepository,
	r *reservation.Reservation,
	outcome reservation.Outcome,
) (*reservation.Reservation, reservation.Transition, error) {
	for attempt := 1; ; attempt++ {
		expectedStatus, expectedVersion := r.PaymentStatus(), r.Version()

		t, err := r.Apply(outcome)
		if err != nil || t.IsNoop() {
			return r, t, err
		}

		err = repo.UpdatePaymentState(ctx, r, expectedStatus, expectedVersion)
		if err == nil {
			return r, t, nil
		}
		if !errors.Is(err, reservation.ErrConcurrentUpdate) || attempt == maxApplyAttempts {
			return r, t, err
		}

		fresh, getErr := repo.GetByID(ctx, r.ID())
		if getErr != nil {
			return r, t, getErr
		}
		r = fresh
	}
}
