package usecases

import (
	"github.com/tourbook/tourbook/internal/domain/reservation"
	vo "github.com/tourbook/tourbook/internal/domain/reservation/valueobjects"
)

// PaymentStateResult is the payment view of a reservation after an operation.
type PaymentStateResult struct {
	ReservationID     string           `json:"reservation_id"`
	PaymentStatus     vo.PaymentStatus `json:"payment_status"`
	OrderReference    string           `json:"order_reference,omitempty"`
	AuthorizationCode string           `json:"authorization_code,omitempty"`
	ResponseCode      string           `json:"response_code,omitempty"`
}

func newPaymentStateResult(r *reservation.Reservation, responseCode vo.ResponseCode) *PaymentStateResult {
	return &PaymentStateResult{
		ReservationID:     r.ID(),
		PaymentStatus:     r.PaymentStatus(),
		OrderReference:    r.OrderReference(),
		AuthorizationCode: r.AuthorizationCode(),
		ResponseCode:      responseCode.Raw(),
	}
}
