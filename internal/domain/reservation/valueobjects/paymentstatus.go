package valueobjects

type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPreauthorized PaymentStatus = "preauthorized"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusDeclined      PaymentStatus = "declined"
	PaymentStatusCancelled     PaymentStatus = "cancelled"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPreauthorized, PaymentStatusPaid,
		PaymentStatusDeclined, PaymentStatusCancelled:
		return true
	default:
		return false
	}
}

func (s PaymentStatus) IsPending() bool {
	return s == PaymentStatusPending
}

func (s PaymentStatus) IsPreauthorized() bool {
	return s == PaymentStatusPreauthorized
}

// IsTerminal reports whether no further gateway operation can move the reservation.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusDeclined || s == PaymentStatusCancelled
}

func (s PaymentStatus) String() string {
	return string(s)
}
