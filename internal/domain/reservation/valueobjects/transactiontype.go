package valueobjects

import "fmt"

// TransactionType is the gateway's transaction-type code.
type TransactionType string

// Only the preauthorization flow is supported; one-step authorizations ("0") are
// rejected as unsupported.
const (
	TransactionTypePreauthorization TransactionType = "1"
	TransactionTypeConfirmation     TransactionType = "2"
	TransactionTypeCancellation     TransactionType = "9"
)

func NewTransactionType(code string) (TransactionType, error) {
	tt := TransactionType(code)
	if !tt.IsValid() {
		return "", fmt.Errorf("unsupported transaction type: %q", code)
	}
	return tt, nil
}

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypePreauthorization, TransactionTypeConfirmation, TransactionTypeCancellation:
		return true
	default:
		return false
	}
}

func (t TransactionType) String() string {
	return string(t)
}

// Name returns a human-readable name for logs.
func (t TransactionType) Name() string {
	switch t {
	case TransactionTypePreauthorization:
		return "preauthorization"
	case TransactionTypeConfirmation:
		return "confirmation"
	case TransactionTypeCancellation:
		return "cancellation"
	default:
		return "unknown"
	}
}
