package reservation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/tourbook/tourbook/internal/domain/reservation/valueobjects"
)

// --- helpers ---

func validAmount() vo.Money {
	return vo.NewMoney(decimal.RequireFromString("125.50"), "EUR")
}

func validReservation(t *testing.T) *Reservation {
	t.Helper()
	r, err := NewReservation("res-42", validAmount(), "Sunset catamaran tour")
	require.NoError(t, err)
	return r
}

func reconstructWithStatus(status vo.PaymentStatus) *Reservation {
	ref := "1234ABCD5678"
	return ReconstructReservation(ReconstructParams{
		ID:             "res-42",
		Amount:         validAmount(),
		Description:    "Sunset catamaran tour",
		PaymentStatus:  status,
		OrderReference: &ref,
		Version:        3,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	})
}

// =============================================================================
// Constructor
// =============================================================================

func TestNewReservation(t *testing.T) {
	r := validReservation(t)

	assert.Equal(t, "res-42", r.ID())
	assert.Equal(t, vo.PaymentStatusPending, r.PaymentStatus())
	assert.False(t, r.HasOrderReference())
	assert.Empty(t, r.AuthorizationCode())
	assert.Nil(t, r.AuthorizedAt())
	assert.Equal(t, 0, r.Version())
}

func TestNewReservation_InvalidInput(t *testing.T) {
	_, err := NewReservation("", validAmount(), "")
	assert.ErrorIs(t, err, ErrInvalidReservation)

	_, err = NewReservation("res-1", vo.NewMoney(decimal.Zero, "EUR"), "")
	assert.ErrorIs(t, err, ErrInvalidReservation)
}

// =============================================================================
// Order reference
// =============================================================================

func TestAssignOrderReference(t *testing.T) {
	r := validReservation(t)

	require.NoError(t, r.AssignOrderReference("1234ABCD5678"))
	assert.Equal(t, "1234ABCD5678", r.OrderReference())
	assert.Equal(t, 1, r.Version())

	// same value again is accepted without bumping the version
	require.NoError(t, r.AssignOrderReference("1234ABCD5678"))
	assert.Equal(t, 1, r.Version())

	err := r.AssignOrderReference("9999ZZZZ0000")
	assert.ErrorIs(t, err, ErrOrderReferenceImmutable)
	assert.Equal(t, "1234ABCD5678", r.OrderReference())
}

func TestAssignOrderReference_Empty(t *testing.T) {
	r := validReservation(t)
	assert.ErrorIs(t, r.AssignOrderReference(""), ErrInvalidReservation)
}

// =============================================================================
// Apply
// =============================================================================

func TestApply_PreauthorizationApproved(t *testing.T) {
	r := reconstructWithStatus(vo.PaymentStatusPending)

	tr, err := r.Apply(Outcome{
		TransactionType:   vo.TransactionTypePreauthorization,
		ResponseCode:      vo.ParseResponseCode("0000"),
		AuthorizationCode: "A1B2C3",
	})
	require.NoError(t, err)

	assert.Equal(t, vo.PaymentStatusPreauthorized, tr.To)
	assert.Equal(t, vo.PaymentStatusPreauthorized, r.PaymentStatus())
	assert.Equal(t, "A1B2C3", r.AuthorizationCode())
	assert.NotNil(t, r.AuthorizedAt())
	assert.Equal(t, 4, r.Version())
}

func TestApply_AuthorizationCodeIsNotOverwritten(t *testing.T) {
	r := reconstructWithStatus(vo.PaymentStatusPending)

	_, err := r.Apply(Outcome{
		TransactionType:   vo.TransactionTypePreauthorization,
		ResponseCode:      vo.ParseResponseCode("0000"),
		AuthorizationCode: "FIRST1",
	})
	require.NoError(t, err)

	_, err = r.Apply(Outcome{
		TransactionType:   vo.TransactionTypeConfirmation,
		ResponseCode:      vo.ParseResponseCode("0000"),
		AuthorizationCode: "OTHER2",
	})
	require.NoError(t, err)

	assert.Equal(t, vo.PaymentStatusPaid, r.PaymentStatus())
	assert.Equal(t, "FIRST1", r.AuthorizationCode())
}

func TestApply_DeclinedPreauthorizationHasNoAuthCode(t *testing.T) {
	r := reconstructWithStatus(vo.PaymentStatusPending)

	_, err := r.Apply(Outcome{
		TransactionType:   vo.TransactionTypePreauthorization,
		ResponseCode:      vo.ParseResponseCode("0190"),
		AuthorizationCode: "IGNORED",
	})
	require.NoError(t, err)

	assert.Equal(t, vo.PaymentStatusDeclined, r.PaymentStatus())
	assert.Empty(t, r.AuthorizationCode())
}

func TestApply_DeclinedCancellationLeavesReservationUntouched(t *testing.T) {
	r := reconstructWithStatus(vo.PaymentStatusPreauthorized)

	tr, err := r.Apply(Outcome{
		TransactionType: vo.TransactionTypeCancellation,
		ResponseCode:    vo.ParseResponseCode("0184"),
	})
	require.NoError(t, err)

	assert.True(t, tr.IsNoop())
	assert.Equal(t, vo.PaymentStatusPreauthorized, r.PaymentStatus())
	assert.Equal(t, 3, r.Version())
}

func TestApply_IllegalTransitionLeavesReservationUntouched(t *testing.T) {
	r := reconstructWithStatus(vo.PaymentStatusCancelled)

	_, err := r.Apply(Outcome{
		TransactionType: vo.TransactionTypeConfirmation,
		ResponseCode:    vo.ParseResponseCode("0000"),
	})
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, vo.PaymentStatusCancelled, r.PaymentStatus())
	assert.Equal(t, 3, r.Version())
}
