package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tourbook/tourbook/internal/shared/biztime"
)

// FlagReason classifies why a gateway message was set aside for review.
type FlagReason string

const (
	FlagReasonSignatureMismatch FlagReason = "signature_mismatch"
	FlagReasonIntegrity         FlagReason = "integrity"
	FlagReasonAmountMismatch    FlagReason = "amount_mismatch"
	FlagReasonUnknownOrder      FlagReason = "unknown_order"
)

// FlaggedNotification is a gateway callback that was not applied to any
// reservation and needs a human to look at it. The envelope is kept verbatim.
type FlaggedNotification struct {
	ID                 string
	Reason             FlagReason
	OrderReference     string
	SignatureVersion   string
	MerchantParameters string
	Signature          string
	SourceIP           string
	Detail             string
	ReceivedAt         time.Time
}

func NewFlaggedNotification(reason FlagReason, orderReference, detail string) *FlaggedNotification {
	return &FlaggedNotification{
		ID:             uuid.NewString(),
		Reason:         reason,
		OrderReference: orderReference,
		Detail:         detail,
		ReceivedAt:     biztime.NowUTC(),
	}
}

type FlaggedNotificationRepository interface {
	Create(ctx context.Context, n *FlaggedNotification) error
	ListRecent(ctx context.Context, limit int) ([]*FlaggedNotification, error)
}
