package cardgateway

import (
	"errors"

	"github.com/tourbook/tourbook/internal/application/payment/paymentgateway"
	"github.com/tourbook/tourbook/internal/shared/config"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrMalformedAmount     = errors.New("malformed gateway amount")
	ErrReferenceGeneration = errors.New("order reference generation failed")
	ErrCanonicalization    = errors.New("merchant parameters canonicalization failed")
	ErrInvalidSecretKey    = errors.New("invalid merchant secret key")
	ErrMalformedEnvelope   = errors.New("malformed signed envelope")

	// Shared with the application layer so use cases can match them with errors.Is.
	ErrGatewayUnavailable = paymentgateway.ErrGatewayUnavailable
	ErrSignatureMismatch  = paymentgateway.ErrSignatureMismatch
	ErrIntegrity          = paymentgateway.ErrIntegrity

	ErrConfiguration = config.ErrConfiguration
)
