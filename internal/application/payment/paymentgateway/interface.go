package paymentgateway

import (
	"context"

	"github.com/shopspring/decimal"

	vo "github.com/tourbook/tourbook/internal/domain/reservation/valueobjects"
)

// Gateway defines the card gateway operations used by the payment use cases.
// Implementations build fresh signatures on every call and never cache them.
type Gateway interface {
	// StartAuthorization builds the signed form the browser posts to the hosted
	// payment page. It performs no network I/O.
	StartAuthorization(ctx context.Context, req AuthorizationRequest) (*RedirectPayload, error)
	// Confirm settles a preauthorized amount. Transport failures are returned as
	// ErrGatewayUnavailable; business declines come back as a result with Approved=false.
	Confirm(ctx context.Context, req OperationRequest) (*OperationResult, error)
	// Cancel releases a preauthorized amount.
	Cancel(ctx context.Context, req OperationRequest) (*OperationResult, error)
}

// NotificationVerifier authenticates asynchronous gateway callbacks.
type NotificationVerifier interface {
	VerifyNotification(ctx context.Context, n Notification) (*NotificationOutcome, error)
}

// OrderReferenceGenerator produces gateway order references for reservations.
type OrderReferenceGenerator interface {
	Generate(reservationID string) (string, error)
}

// AuthorizationRequest contains the data needed to start a preauthorization.
// Amount is always the reservation's stored amount.
type AuthorizationRequest struct {
	ReservationID  string
	OrderReference string
	Amount         decimal.Decimal
	Description    string
	// Language is a BCP 47 tag or an Accept-Language header value
	Language string
}

// RedirectPayload is what the browser submits to the hosted payment page.
type RedirectPayload struct {
	FormURL            string `json:"form_url"`
	SignatureVersion   string `json:"Ds_SignatureVersion"`
	MerchantParameters string `json:"Ds_MerchantParameters"`
	Signature          string `json:"Ds_Signature"`
	OrderReference     string `json:"order_reference"`
}

// OperationRequest identifies a prior authorization to confirm or cancel.
type OperationRequest struct {
	ReservationID  string
	OrderReference string
	Amount         decimal.Decimal
}

// OperationResult is the decoded outcome of a REST confirmation or cancellation.
type OperationResult struct {
	OrderReference    string
	TransactionType   vo.TransactionType
	ResponseCode      vo.ResponseCode
	AuthorizationCode string
	Approved          bool
}

// Notification is the signed envelope posted by the gateway.
type Notification struct {
	SignatureVersion   string
	MerchantParameters string
	Signature          string
}

// NotificationOutcome is the verified business content of a notification.
type NotificationOutcome struct {
	OrderReference    string
	TransactionType   vo.TransactionType
	ResponseCode      vo.ResponseCode
	AuthorizationCode string
	// Amount is the echoed amount; HasAmount is false when the gateway omitted it
	Amount       decimal.Decimal
	HasAmount    bool
	Currency     string
	MerchantData string
	Raw          map[string]string
}
