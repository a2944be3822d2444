package valueobjects

import (
	"strconv"
	"strings"
)

const (
	// ApprovalThreshold is the exclusive upper bound of approved authorization codes.
	ApprovalThreshold = 100
	// ConfirmationAccepted is returned when a preauthorization is settled.
	ConfirmationAccepted = 900
	// CancellationAccepted is returned when a preauthorization is released.
	CancellationAccepted = 400
)

// ResponseCode is the gateway's numeric outcome code. A code that was absent or
// could not be parsed is kept as invalid and never counts as approved.
type ResponseCode struct {
	raw   string
	value int
	valid bool
}

func ParseResponseCode(raw string) ResponseCode {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ResponseCode{raw: raw}
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return ResponseCode{raw: raw}
		}
	}
	v, err := strconv.Atoi(trimmed)
	if err != nil {
		return ResponseCode{raw: raw}
	}
	return ResponseCode{raw: raw, value: v, valid: true}
}

func (c ResponseCode) Raw() string {
	return c.raw
}

func (c ResponseCode) Value() int {
	return c.value
}

func (c ResponseCode) IsValid() bool {
	return c.valid
}

// IsApproved reports whether the code is a success for the given transaction type.
func (c ResponseCode) IsApproved(tt TransactionType) bool {
	if !c.valid {
		return false
	}
	switch tt {
	case TransactionTypeConfirmation:
		return c.value < ApprovalThreshold || c.value == ConfirmationAccepted
	case TransactionTypeCancellation:
		return c.value < ApprovalThreshold || c.value == CancellationAccepted
	default:
		return c.value < ApprovalThreshold
	}
}

func (c ResponseCode) String() string {
	if !c.valid {
		return "invalid(" + c.raw + ")"
	}
	return c.raw
}
