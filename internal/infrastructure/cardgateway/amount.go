package cardgateway

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountWidth is the fixed width of DS_MERCHANT_AMOUNT in minor units.
const AmountWidth = 12

var hundred = decimal.NewFromInt(100)

// EncodeAmount converts a currency amount into the gateway's fixed-width
// minor-units string. Fractions of a cent are rounded half away from zero,
// so 0.005 becomes "000000000001".
func EncodeAmount(amount decimal.Decimal) (string, error) {
	if !amount.IsPositive() {
		return "", fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidAmount, amount.String())
	}

	minor := amount.Mul(hundred).Round(0)
	if !minor.IsPositive() {
		return "", fmt.Errorf("%w: %s rounds to zero minor units", ErrInvalidAmount, amount.String())
	}

	digits := minor.String()
	if len(digits) > AmountWidth {
		return "", fmt.Errorf("%w: %s exceeds %d digits", ErrInvalidAmount, amount.String(), AmountWidth)
	}

	return strings.Repeat("0", AmountWidth-len(digits)) + digits, nil
}

// DecodeAmount parses a fixed-width minor-units string back into a currency amount.
func DecodeAmount(code string) (decimal.Decimal, error) {
	if len(code) != AmountWidth || !isDigits(code) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, code)
	}

	minor, err := decimal.NewFromString(code)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, code)
	}
	return minor.Div(hundred), nil
}

// NormalizeAmount left-pads an all-digit amount echo to AmountWidth. Gateways echo
// DS_AMOUNT without padding in responses and notifications.
func NormalizeAmount(echo string) (string, error) {
	echo = strings.TrimSpace(echo)
	if echo == "" || len(echo) > AmountWidth || !isDigits(echo) {
		return "", fmt.Errorf("%w: %q", ErrMalformedAmount, echo)
	}
	return strings.Repeat("0", AmountWidth-len(echo)) + echo, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
