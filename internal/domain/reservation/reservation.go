package reservation

import (
	"fmt"
	"time"

	vo "github.com/tourbook/tourbook/internal/domain/reservation/valueobjects"
	"github.com/tourbook/tourbook/internal/shared/biztime"
)

// Reservation is the booking record as seen by the payment subsystem. Only the
// payment fields are mutated here, and only through Apply and
// AssignOrderReference.
type Reservation struct {
	id                string
	amount            vo.Money
	description       string
	paymentStatus     vo.PaymentStatus
	orderReference    *string
	authorizationCode *string
	authorizedAt      *time.Time

	version   int
	createdAt time.Time
	updatedAt time.Time
}

func NewReservation(id string, amount vo.Money, description string) (*Reservation, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: reservation ID is required", ErrInvalidReservation)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidReservation)
	}

	now := biztime.NowUTC()
	return &Reservation{
		id:            id,
		amount:        amount,
		description:   description,
		paymentStatus: vo.PaymentStatusPending,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructParams holds persisted reservation state.
type ReconstructParams struct {
	ID                string
	Amount            vo.Money
	Description       string
	PaymentStatus     vo.PaymentStatus
	OrderReference    *string
	AuthorizationCode *string
	AuthorizedAt      *time.Time
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func ReconstructReservation(p ReconstructParams) *Reservation {
	return &Reservation{
		id:                p.ID,
		amount:            p.Amount,
		description:       p.Description,
		paymentStatus:     p.PaymentStatus,
		orderReference:    p.OrderReference,
		authorizationCode: p.AuthorizationCode,
		authorizedAt:      p.AuthorizedAt,
		version:           p.Version,
		createdAt:         p.CreatedAt,
		updatedAt:         p.UpdatedAt,
	}
}

// AssignOrderReference binds the gateway order reference to this reservation.
// Assigning the value already stored is a no-op.
func (r *Reservation) AssignOrderReference(ref string) error {
	if ref == "" {
		return fmt.Errorf("%w: order reference is required", ErrInvalidReservation)
	}
	if r.orderReference != nil {
		if *r.orderReference == ref {
			return nil
		}
		return fmt.Errorf("%w: reservation %s has %s", ErrOrderReferenceImmutable, r.id, *r.orderReference)
	}

	r.orderReference = &ref
	r.updatedAt = biztime.NowUTC()
	r.version++
	return nil
}

// Apply moves the reservation according to a verified gateway outcome and
// returns the transition that was made.
func (r *Reservation) Apply(outcome Outcome) (Transition, error) {
	t, err := PlanTransition(r.paymentStatus, outcome)
	if err != nil {
		return t, err
	}
	if t.IsNoop() {
		return t, nil
	}

	now := biztime.NowUTC()
	r.paymentStatus = t.To
	if t.To == vo.PaymentStatusPreauthorized {
		r.authorizedAt = &now
	}
	if outcome.AuthorizationCode != "" && r.authorizationCode == nil &&
		(t.To == vo.PaymentStatusPreauthorized || t.To == vo.PaymentStatusPaid) {
		code := outcome.AuthorizationCode
		r.authorizationCode = &code
	}
	r.updatedAt = now
	r.version++

	return t, nil
}

func (r *Reservation) ID() string {
	return r.id
}

func (r *Reservation) Amount() vo.Money {
	return r.amount
}

func (r *Reservation) Description() string {
	return r.description
}

func (r *Reservation) PaymentStatus() vo.PaymentStatus {
	return r.paymentStatus
}

// OrderReference returns the stored reference or "" when none was assigned.
func (r *Reservation) OrderReference() string {
	if r.orderReference == nil {
		return ""
	}
	return *r.orderReference
}

func (r *Reservation) HasOrderReference() bool {
	return r.orderReference != nil
}

func (r *Reservation) AuthorizationCode() string {
	if r.authorizationCode == nil {
		return ""
	}
	return *r.authorizationCode
}

func (r *Reservation) AuthorizedAt() *time.Time {
	return r.authorizedAt
}

func (r *Reservation) Version() int {
	return r.version
}

func (r *Reservation) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Reservation) UpdatedAt() time.Time {
	return r.updatedAt
}
