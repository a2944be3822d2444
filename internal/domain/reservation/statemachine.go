package reservation

import (
	"fmt"

	vo "github.com/tourbook/tourbook/internal/domain/reservation/valueobjects"
)

// Outcome is a verified gateway result for one transaction on a reservation.
type Outcome struct {
	TransactionType   vo.TransactionType
	ResponseCode      vo.ResponseCode
	AuthorizationCode string
}

// Approved reports whether the gateway accepted the transaction.
func (o Outcome) Approved() bool {
	return o.ResponseCode.IsApproved(o.TransactionType)
}

// Transition is a planned payment-status change. From == To means the outcome
// leaves the reservation where it is (a declined cancellation).
type Transition struct {
	From vo.PaymentStatus
	To   vo.PaymentStatus
}

func (t Transition) IsNoop() bool {
	return t.From == t.To
}

func (t Transition) String() string {
	return fmt.Sprintf("%s -> %s", t.From, t.To)
}

var legalTransitions = map[vo.PaymentStatus]map[vo.PaymentStatus]bool{
	vo.PaymentStatusPending: {
		vo.PaymentStatusPreauthorized: true,
		vo.PaymentStatusDeclined:      true,
	},
	vo.PaymentStatusPreauthorized: {
		vo.PaymentStatusPaid:      true,
		vo.PaymentStatusDeclined:  true,
		vo.PaymentStatusCancelled: true,
	},
}

// sourceStatus is the only status a transaction's outcome may apply to.
// Authorization outcomes settle a pending reservation; confirmation and
// cancellation outcomes act on a live hold.
var sourceStatus = map[vo.TransactionType]vo.PaymentStatus{
	vo.TransactionTypePreauthorization: vo.PaymentStatusPending,
	vo.TransactionTypeConfirmation:     vo.PaymentStatusPreauthorized,
	vo.TransactionTypeCancellation:     vo.PaymentStatusPreauthorized,
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to vo.PaymentStatus) bool {
	return legalTransitions[from][to]
}

// PlanTransition maps a gateway outcome onto the reservation's current status.
//
// The returned error is ErrTransitionAlreadyApplied when the reservation already
// sits in the state the outcome leads to, and ErrIllegalTransition when the
// outcome cannot apply from the current state.
func PlanTransition(current vo.PaymentStatus, outcome Outcome) (Transition, error) {
	target, err := targetStatus(outcome)
	if err != nil {
		return Transition{}, err
	}

	if target != "" && current == target {
		return Transition{}, fmt.Errorf("%w: reservation already %s", ErrTransitionAlreadyApplied, current)
	}

	if current != sourceStatus[outcome.TransactionType] {
		return Transition{}, fmt.Errorf("%w: %s outcome on %s reservation",
			ErrIllegalTransition, outcome.TransactionType.Name(), current)
	}

	// declined cancellation: the hold stays in place
	if target == "" {
		return Transition{From: current, To: current}, nil
	}

	if !CanTransition(current, target) {
		return Transition{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, target)
	}

	return Transition{From: current, To: target}, nil
}

func targetStatus(outcome Outcome) (vo.PaymentStatus, error) {
	approved := outcome.Approved()

	switch outcome.TransactionType {
	case vo.TransactionTypePreauthorization:
		if approved {
			return vo.PaymentStatusPreauthorized, nil
		}
		return vo.PaymentStatusDeclined, nil
	case vo.TransactionTypeConfirmation:
		if approved {
			return vo.PaymentStatusPaid, nil
		}
		return vo.PaymentStatusDeclined, nil
	case vo.TransactionTypeCancellation:
		if approved {
			return vo.PaymentStatusCancelled, nil
		}
		return "", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedTransaction, outcome.TransactionType)
	}
}
