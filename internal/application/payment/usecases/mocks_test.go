package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tourbook/tourbook/internal/application/payment/paymentgateway"
	"github.com/tourbook/tourbook/internal/domain/reservation"
	vo "github.com/tourbook/tourbook/internal/domain/reservation/valueobjects"
	"github.com/tourbook/tourbook/internal/shared/logger"
)

type mockReservationRepository struct {
	CreateFunc                  func(ctx context.Context, r *reservation.Reservation) error
	GetByIDFunc                 func(ctx context.Context, id string) (*reservation.Reservation, error)
	GetByOrderReferenceFunc     func(ctx context.Context, orderReference string) (*reservation.Reservation, error)
	AssignOrderReferenceFunc    func(ctx context.Context, r *reservation.Reservation) error
	UpdatePaymentStateFunc      func(ctx context.Context, r *reservation.Reservation, expectedStatus vo.PaymentStatus, expectedVersion int) error
	ListPreauthorizedBeforeFunc func(ctx context.Context, cutoff time.Time, limit int) ([]*reservation.Reservation, error)
}

func (m *mockReservationRepository) Create(ctx context.Context, r *reservation.Reservation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, r)
	}
	return nil
}

func (m *mockReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, reservation.ErrReservationNotFound
}

func (m *mockReservationRepository) GetByOrderReference(ctx context.Context, orderReference string) (*reservation.Reservation, error) {
	if m.GetByOrderReferenceFunc != nil {
		return m.GetByOrderReferenceFunc(ctx, orderReference)
	}
	return nil, reservation.ErrReservationNotFound
}

func (m *mockReservationRepository) AssignOrderReference(ctx context.Context, r *reservation.Reservation) error {
	if m.AssignOrderReferenceFunc != nil {
		return m.AssignOrderReferenceFunc(ctx, r)
	}
	return nil
}

func (m *mockReservationRepository) UpdatePaymentState(ctx context.Context, r *reservation.Reservation, expectedStatus vo.PaymentStatus, expectedVersion int) error {
	if m.UpdatePaymentStateFunc != nil {
		return m.UpdatePaymentStateFunc(ctx, r, expectedStatus, expectedVersion)
	}
	return nil
}

func (m *mockReservationRepository) ListPreauthorizedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*reservation.Reservation, error) {
	if m.ListPreauthorizedBeforeFunc != nil {
		return m.ListPreauthorizedBeforeFunc(ctx, cutoff, limit)
	}
	return nil, nil
}

type mockGateway struct {
	StartAuthorizationFunc func(ctx context.Context, req paymentgateway.AuthorizationRequest) (*paymentgateway.RedirectPayload, error)
	ConfirmFunc            func(ctx context.Context, req paymentgateway.OperationRequest) (*paymentgateway.OperationResult, error)
	CancelFunc             func(ctx context.Context, req paymentgateway.OperationRequest) (*paymentgateway.OperationResult, error)

	calls int
}

func (m *mockGateway) StartAuthorization(ctx context.Context, req paymentgateway.AuthorizationRequest) (*paymentgateway.RedirectPayload, error) {
	m.calls++
	if m.StartAuthorizationFunc != nil {
		return m.StartAuthorizationFunc(ctx, req)
	}
	return &paymentgateway.RedirectPayload{OrderReference: req.OrderReference}, nil
}

func (m *mockGateway) Confirm(ctx context.Context, req paymentgateway.OperationRequest) (*paymentgateway.OperationResult, error) {
	m.calls++
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockGateway) Cancel(ctx context.Context, req paymentgateway.OperationRequest) (*paymentgateway.OperationResult, error) {
	m.calls++
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, req)
	}
	return nil, nil
}

type mockNotificationVerifier struct {
	VerifyNotificationFunc func(ctx context.Context, n paymentgateway.Notification) (*paymentgateway.NotificationOutcome, error)
}

func (m *mockNotificationVerifier) VerifyNotification(ctx context.Context, n paymentgateway.Notification) (*paymentgateway.NotificationOutcome, error) {
	if m.VerifyNotificationFunc != nil {
		return m.VerifyNotificationFunc(ctx, n)
	}
	return nil, nil
}

type mockOrderReferenceGenerator struct {
	GenerateFunc func(reservationID string) (string, error)
}

func (m *mockOrderReferenceGenerator) Generate(reservationID string) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(reservationID)
	}
	return "", nil
}

type mockFlaggedNotificationRepository struct {
	mu      sync.Mutex
	created []*reservation.FlaggedNotification

	CreateFunc     func(ctx context.Context, n *reservation.FlaggedNotification) error
	ListRecentFunc func(ctx context.Context, limit int) ([]*reservation.FlaggedNotification, error)
}

func (m *mockFlaggedNotificationRepository) Create(ctx context.Context, n *reservation.FlaggedNotification) error {
	m.mu.Lock()
	m.created = append(m.created, n)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, n)
	}
	return nil
}

func (m *mockFlaggedNotificationRepository) ListRecent(ctx context.Context, limit int) ([]*reservation.FlaggedNotification, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	return nil, nil
}

type mockDeduplicator struct {
	AcquireFunc func(ctx context.Context, key string) (bool, error)
	ReleaseFunc func(ctx context.Context, key string) error
}

func (m *mockDeduplicator) Acquire(ctx context.Context, key string) (bool, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, key)
	}
	return true, nil
}

func (m *mockDeduplicator) Release(ctx context.Context, key string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, key)
	}
	return nil
}

type mockIntegrityAlerter struct {
	alerts chan *reservation.FlaggedNotification
}

func newMockIntegrityAlerter() *mockIntegrityAlerter {
	return &mockIntegrityAlerter{alerts: make(chan *reservation.FlaggedNotification, 4)}
}

func (m *mockIntegrityAlerter) SendIntegrityAlert(ctx context.Context, n *reservation.FlaggedNotification) error {
	m.alerts <- n
	return nil
}

// nopLogger is a no-op logger for testing.
type nopLogger struct{}

func newNopLogger() logger.Interface { return &nopLogger{} }

func (l *nopLogger) Debug(msg string, args ...any)                   {}
func (l *nopLogger) Info(msg string, args ...any)                    {}
func (l *nopLogger) Warn(msg string, args ...any)                    {}
func (l *nopLogger) Error(msg string, args ...any)                   {}
func (l *nopLogger) Fatal(msg string, args ...any)                   {}
func (l *nopLogger) With(args ...any) logger.Interface               { return l }
func (l *nopLogger) Named(name string) logger.Interface              { return l }
func (l *nopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Errorw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Fatalw(msg string, keysAndValues ...interface{}) {}

const (
	testReservationID = "res-42"
	testOrderRef      = "15200000R45A"
)

// newTestReservation builds a reservation of 125.50 EUR in the given state.
// An empty orderRef leaves the reference unassigned.
func newTestReservation(t *testing.T, status vo.PaymentStatus, orderRef string) *reservation.Reservation {
	t.Helper()

	var ref *string
	if orderRef != "" {
		ref = &orderRef
	}
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	r := reservation.ReconstructReservation(reservation.ReconstructParams{
		ID:             testReservationID,
		Amount:         vo.NewMoney(decimal.RequireFromString("125.50"), vo.DefaultCurrency),
		Description:    "Sunset catamaran tour",
		PaymentStatus:  status,
		OrderReference: ref,
		Version:        3,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	require.NotNil(t, r)
	return r
}

// storedRepository returns a repository mock backed by a single stored
// reservation. Conditional writes follow the real repository contract.
func storedRepository(stored *reservation.Reservation) *mockReservationRepository {
	var mu sync.Mutex
	current := stored

	snapshot := func(r *reservation.Reservation) *reservation.Reservation {
		ref := r.OrderReference()
		var refPtr *string
		if r.HasOrderReference() {
			refPtr = &ref
		}
		code := r.AuthorizationCode()
		var codePtr *string
		if code != "" {
			codePtr = &code
		}
		return reservation.ReconstructReservation(reservation.ReconstructParams{
			ID:                r.ID(),
			Amount:            r.Amount(),
			Description:       r.Description(),
			PaymentStatus:     r.PaymentStatus(),
			OrderReference:    refPtr,
			AuthorizationCode: codePtr,
			AuthorizedAt:      r.AuthorizedAt(),
			Version:           r.Version(),
			CreatedAt:         r.CreatedAt(),
			UpdatedAt:         r.UpdatedAt(),
		})
	}

	return &mockReservationRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*reservation.Reservation, error) {
			mu.Lock()
			defer mu.Unlock()
			if id != current.ID() {
				return nil, reservation.ErrReservationNotFound
			}
			return snapshot(current), nil
		},
		GetByOrderReferenceFunc: func(ctx context.Context, orderReference string) (*reservation.Reservation, error) {
			mu.Lock()
			defer mu.Unlock()
			if !current.HasOrderReference() || current.OrderReference() != orderReference {
				return nil, reservation.ErrReservationNotFound
			}
			return snapshot(current), nil
		},
		AssignOrderReferenceFunc: func(ctx context.Context, r *reservation.Reservation) error {
			mu.Lock()
			defer mu.Unlock()
			if current.HasOrderReference() {
				return reservation.ErrConcurrentUpdate
			}
			current = snapshot(r)
			return nil
		},
		UpdatePaymentStateFunc: func(ctx context.Context, r *reservation.Reservation, expectedStatus vo.PaymentStatus, expectedVersion int) error {
			mu.Lock()
			defer mu.Unlock()
			if current.PaymentStatus() != expectedStatus || current.Version() != expectedVersion {
				return reservation.ErrConcurrentUpdate
			}
			current = snapshot(r)
			return nil
		},
	}
}
