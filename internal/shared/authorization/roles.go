package authorization

// OperatorRole is the role carried in an operator's bearer token.
type OperatorRole string

const (
	RoleOperator OperatorRole = "operator"
	RoleAdmin    OperatorRole = "admin"
)

func (r OperatorRole) String() string {
	return string(r)
}

func (r OperatorRole) IsValid() bool {
	return r == RoleOperator || r == RoleAdmin
}

// Resources and actions checked by the permission enforcer.
const (
	ResourcePayment     = "payment"
	ResourceReviewQueue = "review_queue"

	ActionConfirm = "confirm"
	ActionCancel  = "cancel"
	ActionRead    = "read"
)
