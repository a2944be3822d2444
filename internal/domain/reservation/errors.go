package reservation

import "errors"

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidReservation  = errors.New("invalid reservation")

	// ErrIllegalTransition is returned for any payment-status change outside the
	// transition table. It is logged and never retried.
	ErrIllegalTransition = errors.New("illegal payment status transition")

	// ErrTransitionAlreadyApplied marks a repeated outcome whose effect is already
	// recorded on the reservation. Callers treat it as a successful no-op.
	ErrTransitionAlreadyApplied = errors.New("payment status transition already applied")

	// ErrConcurrentUpdate is returned by the repository when the conditional
	// update found the reservation in a different state or version.
	ErrConcurrentUpdate = errors.New("reservation was modified concurrently")

	ErrOrderReferenceImmutable = errors.New("order reference already assigned")
	ErrUnsupportedTransaction  = errors.New("unsupported transaction type")
)
