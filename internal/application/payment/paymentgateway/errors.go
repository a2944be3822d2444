package paymentgateway

import (
	"errors"
	"fmt"
)

var (
	// ErrGatewayUnavailable covers timeouts, connection failures, non-2xx statuses
	// and unparsable bodies. It never implies a decline.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrSignatureMismatch is returned when a notification or response signature
	// does not match the recomputed one.
	ErrSignatureMismatch = errors.New("gateway signature mismatch")

	// ErrIntegrity is returned for authenticated messages whose content contradicts
	// the request or the stored reservation (merchant, order or amount mismatch).
	ErrIntegrity = errors.New("gateway message integrity check failed")

	// ErrRequestRejected is returned when the gateway refuses the request itself
	// (an SIS error code) instead of answering with a response code. The prior
	// authorization is untouched on the gateway side.
	ErrRequestRejected = errors.New("gateway rejected the request")
)

// GatewayDeclinedError reports a business decline returned by the gateway.
type GatewayDeclinedError struct {
	Operation    string
	ResponseCode string
}

func (e *GatewayDeclinedError) Error() string {
	return fmt.Sprintf("gateway declined %s with response code %q", e.Operation, e.ResponseCode)
}

// IsIntegrityFailure reports whether err should be flagged for manual review.
func IsIntegrityFailure(err error) bool {
	return errors.Is(err, ErrSignatureMismatch) || errors.Is(err, ErrIntegrity)
}
