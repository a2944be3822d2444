package usecases

import (
	"errors"

	"github.com/tourbook/tourbook/internal/application/payment/paymentgateway"
	apperrors "github.com/tourbook/tourbook/internal/shared/errors"
)

var (
	ErrInvalidStateForAuthorization = errors.New("reservation is not awaiting authorization")
	ErrInvalidStateForConfirm       = errors.New("reservation is not preauthorized; cannot confirm")
	ErrInvalidStateForCancel        = errors.New("reservation is not preauthorized; cannot cancel")
	ErrMissingOrderReference        = errors.New("preauthorized reservation has no order reference")
	ErrInvalidHoldWindow            = errors.New("hold window must be positive")
)

// gatewayError maps a gateway port failure onto the HTTP-facing error type.
func gatewayError(operation string, err error) *apperrors.AppError {
	switch {
	case errors.Is(err, paymentgateway.ErrGatewayUnavailable):
		return apperrors.NewBadGatewayError("payment gateway unavailable", operation).WithCause(err)
	case errors.Is(err, paymentgateway.ErrRequestRejected):
		return apperrors.NewBadGatewayError("payment gateway rejected the "+operation+" request", err.Error()).WithCause(err)
	case paymentgateway.IsIntegrityFailure(err):
		return apperrors.NewBadGatewayError("payment gateway response failed verification", operation).WithCause(err)
	default:
		return apperrors.NewInternalError("failed to "+operation+" payment", err.Error()).WithCause(err)
	}
}
