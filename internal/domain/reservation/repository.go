package reservation

import (
	"context"
	"time"

	vo "github.com/tourbook/tourbook/internal/domain/reservation/valueobjects"
)

type ReservationRepository interface {
	Create(ctx context.Context, r *Reservation) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	GetByOrderReference(ctx context.Context, orderReference string) (*Reservation, error)
	// AssignOrderReference stores r's order reference only if none is stored yet.
	// It returns ErrConcurrentUpdate when another reference won the race.
	AssignOrderReference(ctx context.Context, r *Reservation) error
	// UpdatePaymentState persists r's payment fields only if the stored row still
	// has expectedStatus and expectedVersion. It returns ErrConcurrentUpdate otherwise.
	UpdatePaymentState(ctx context.Context, r *Reservation, expectedStatus vo.PaymentStatus, expectedVersion int) error
	// ListPreauthorizedBefore returns reservations held in preauthorized since before cutoff.
	ListPreauthorizedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*Reservation, error)
}
