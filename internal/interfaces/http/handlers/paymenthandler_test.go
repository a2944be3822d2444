package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourbook/tourbook/internal/application/payment/paymentgateway"
	"github.com/tourbook/tourbook/internal/application/payment/usecases"
	vo "github.com/tourbook/tourbook/internal/domain/reservation/valueobjects"
	"github.com/tourbook/tourbook/internal/interfaces/http/handlers/testutil"
	apperrors "github.com/tourbook/tourbook/internal/shared/errors"
)

type mockStartAuthorizationUC struct {
	ExecuteFunc func(ctx context.Context, cmd usecases.StartAuthorizationCommand) (*paymentgateway.RedirectPayload, error)
}

func (m *mockStartAuthorizationUC) Execute(ctx context.Context, cmd usecases.StartAuthorizationCommand) (*paymentgateway.RedirectPayload, error) {
	return m.ExecuteFunc(ctx, cmd)
}

type mockConfirmPaymentUC struct {
	ExecuteFunc func(ctx context.Context, cmd usecases.ConfirmPaymentCommand) (*usecases.PaymentStateResult, error)
}

func (m *mockConfirmPaymentUC) Execute(ctx context.Context, cmd usecases.ConfirmPaymentCommand) (*usecases.PaymentStateResult, error) {
	return m.ExecuteFunc(ctx, cmd)
}

type mockCancelPaymentUC struct {
	ExecuteFunc func(ctx context.Context, cmd usecases.CancelPaymentCommand) (*usecases.PaymentStateResult, error)
}

func (m *mockCancelPaymentUC) Execute(ctx context.Context, cmd usecases.CancelPaymentCommand) (*usecases.PaymentStateResult, error) {
	return m.ExecuteFunc(ctx, cmd)
}

type mockHandleNotificationUC struct {
	ExecuteFunc func(ctx context.Context, cmd usecases.HandleNotificationCommand) (*usecases.HandleNotificationResult, error)
}

func (m *mockHandleNotificationUC) Execute(ctx context.Context, cmd usecases.HandleNotificationCommand) (*usecases.HandleNotificationResult, error) {
	return m.ExecuteFunc(ctx, cmd)
}

type mockListFlaggedUC struct {
	ExecuteFunc func(ctx context.Context, query usecases.ListFlaggedNotificationsQuery) ([]usecases.FlaggedNotificationView, error)
}

func (m *mockListFlaggedUC) Execute(ctx context.Context, query usecases.ListFlaggedNotificationsQuery) ([]usecases.FlaggedNotificationView, error) {
	return m.ExecuteFunc(ctx, query)
}

type paymentHandlerMocks struct {
	start   *mockStartAuthorizationUC
	confirm *mockConfirmPaymentUC
	cancel  *mockCancelPaymentUC
	notify  *mockHandleNotificationUC
	flagged *mockListFlaggedUC
}

func newTestPaymentHandler() (*PaymentHandler, *paymentHandlerMocks) {
	m := &paymentHandlerMocks{
		start:   &mockStartAuthorizationUC{},
		confirm: &mockConfirmPaymentUC{},
		cancel:  &mockCancelPaymentUC{},
		notify:  &mockHandleNotificationUC{},
		flagged: &mockListFlaggedUC{},
	}
	h := NewPaymentHandler(m.start, m.confirm, m.cancel, m.notify, m.flagged, testutil.NewMockLogger())
	return h, m
}

const (
	testEnvelopeParams    = "eyJEc19PcmRlciI6IjE1MjAwMDAwUjQ1QSJ9"
	testEnvelopeSignature = "c2lnbmF0dXJlKw=="
)

func TestPaymentHandler_StartAuthorization(t *testing.T) {
	h, m := newTestPaymentHandler()

	var got usecases.StartAuthorizationCommand
	m.start.ExecuteFunc = func(ctx context.Context, cmd usecases.StartAuthorizationCommand) (*paymentgateway.RedirectPayload, error) {
		got = cmd
		return &paymentgateway.RedirectPayload{
			FormURL:            "https://sis-t.redsys.es:25443/sis/realizarPago",
			SignatureVersion:   "HMAC_SHA256_V1",
			MerchantParameters: testEnvelopeParams,
			Signature:          testEnvelopeSignature,
			OrderReference:     "15200000R45A",
		}, nil
	}

	t.Run("language from body", func(t *testing.T) {
		c, w := testutil.NewTestContext(http.MethodPost, "/reservations/res-42/payment/authorize", StartAuthorizationRequest{Language: "en-GB"})
		testutil.SetURLParam(c, "id", "res-42")

		h.StartAuthorization(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, usecases.StartAuthorizationCommand{ReservationID: "res-42", Language: "en-GB"}, got)

		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		var payload map[string]string
		require.NoError(t, json.Unmarshal(resp.Data, &payload))
		assert.Equal(t, testEnvelopeParams, payload["Ds_MerchantParameters"])
		assert.Equal(t, testEnvelopeSignature, payload["Ds_Signature"])
		assert.Equal(t, "HMAC_SHA256_V1", payload["Ds_SignatureVersion"])
	})

	t.Run("language from header without body", func(t *testing.T) {
		c, w := testutil.NewTestContext(http.MethodPost, "/reservations/res-42/payment/authorize", nil)
		c.Request.Header.Set("Accept-Language", "ca-ES,ca;q=0.9")
		testutil.SetURLParam(c, "id", "res-42")

		h.StartAuthorization(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ca-ES,ca;q=0.9", got.Language)
	})

	t.Run("use case conflict", func(t *testing.T) {
		m.start.ExecuteFunc = func(ctx context.Context, cmd usecases.StartAuthorizationCommand) (*paymentgateway.RedirectPayload, error) {
			return nil, apperrors.NewConflictError("reservation is not pending")
		}
		c, w := testutil.NewTestContext(http.MethodPost, "/reservations/res-42/payment/authorize", nil)
		testutil.SetURLParam(c, "id", "res-42")

		h.StartAuthorization(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestPaymentHandler_ConfirmAndCancel(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"approved", nil, http.StatusOK, ""},
		{"not preauthorized", apperrors.NewConflictError("reservation is not preauthorized"), http.StatusConflict, "conflict"},
		{"declined", apperrors.NewPaymentDeclinedError("declined", "0190"), http.StatusPaymentRequired, "payment_declined"},
		{"gateway down", apperrors.NewBadGatewayError("payment gateway unavailable"), http.StatusBadGateway, "bad_gateway"},
		{"not found", apperrors.NewNotFoundError("reservation not found"), http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newTestPaymentHandler()
			m.confirm.ExecuteFunc = func(ctx context.Context, cmd usecases.ConfirmPaymentCommand) (*usecases.PaymentStateResult, error) {
				assert.Equal(t, "res-42", cmd.ReservationID)
				if tt.err != nil {
					return nil, tt.err
				}
				return &usecases.PaymentStateResult{ReservationID: "res-42", PaymentStatus: vo.PaymentStatusPaid}, nil
			}
			m.cancel.ExecuteFunc = func(ctx context.Context, cmd usecases.CancelPaymentCommand) (*usecases.PaymentStateResult, error) {
				assert.Equal(t, "res-42", cmd.ReservationID)
				if tt.err != nil {
					return nil, tt.err
				}
				return &usecases.PaymentStateResult{ReservationID: "res-42", PaymentStatus: vo.PaymentStatusCancelled}, nil
			}

			c, w := testutil.NewTestContext(http.MethodPost, "/reservations/res-42/payment/confirm", nil)
			testutil.SetURLParam(c, "id", "res-42")
			testutil.SetOperatorContext(c, "op-7", "operator")
			h.ConfirmPayment(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			if tt.wantType == "" {
				assert.True(t, resp.Success)
				assert.Contains(t, string(resp.Data), `"payment_status":"paid"`)
			} else {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantType, resp.Error.Type)
			}

			c, w = testutil.NewTestContext(http.MethodPost, "/reservations/res-42/payment/cancel", nil)
			testutil.SetURLParam(c, "id", "res-42")
			testutil.SetOperatorContext(c, "op-7", "operator")
			h.CancelPayment(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantType == "" {
				assert.Contains(t, w.Body.String(), `"payment_status":"cancelled"`)
			}
		})
	}
}

func TestPaymentHandler_MissingReservationID(t *testing.T) {
	h, _ := newTestPaymentHandler()

	c, w := testutil.NewTestContext(http.MethodPost, "/reservations//payment/confirm", nil)
	h.ConfirmPayment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandler_HandleNotification(t *testing.T) {
	wantNotification := paymentgateway.Notification{
		SignatureVersion:   "HMAC_SHA256_V1",
		MerchantParameters: testEnvelopeParams,
		Signature:          testEnvelopeSignature,
	}

	newHandler := func(t *testing.T, result *usecases.HandleNotificationResult, err error) *PaymentHandler {
		h, m := newTestPaymentHandler()
		m.notify.ExecuteFunc = func(ctx context.Context, cmd usecases.HandleNotificationCommand) (*usecases.HandleNotificationResult, error) {
			assert.Equal(t, wantNotification, cmd.Notification)
			assert.NotEmpty(t, cmd.SourceIP)
			return result, err
		}
		return h
	}

	t.Run("form encoded", func(t *testing.T) {
		h := newHandler(t, &usecases.HandleNotificationResult{ReservationID: "res-42", Applied: true}, nil)

		// the "+" in the signature must survive form decoding
		c, w := testutil.NewFormContext("/payments/notification", url.Values{
			"Ds_SignatureVersion":   {"HMAC_SHA256_V1"},
			"Ds_MerchantParameters": {testEnvelopeParams},
			"Ds_Signature":          {testEnvelopeSignature},
		})
		h.HandleNotification(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"applied":true`)
	})

	t.Run("json", func(t *testing.T) {
		h := newHandler(t, &usecases.HandleNotificationResult{ReservationID: "res-42", Duplicate: true}, nil)

		c, w := testutil.NewTestContext(http.MethodPost, "/payments/notification", NotificationRequest{
			SignatureVersion:   "HMAC_SHA256_V1",
			MerchantParameters: testEnvelopeParams,
			Signature:          testEnvelopeSignature,
		})
		h.HandleNotification(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"duplicate":true`)
	})

	errorCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"integrity failure", apperrors.NewIntegrityError("notification rejected").WithCause(paymentgateway.ErrSignatureMismatch), http.StatusBadRequest},
		{"delivery in progress", apperrors.NewConflictError("notification is being processed"), http.StatusConflict},
		{"storage failure", apperrors.NewInternalError("failed to apply notification").WithCause(errors.New("deadlock")), http.StatusInternalServerError},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(t, nil, tt.err)

			c, w := testutil.NewFormContext("/payments/notification", url.Values{
				"Ds_SignatureVersion":   {"HMAC_SHA256_V1"},
				"Ds_MerchantParameters": {testEnvelopeParams},
				"Ds_Signature":          {testEnvelopeSignature},
			})
			h.HandleNotification(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotContains(t, w.Body.String(), "deadlock")
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		h, _ := newTestPaymentHandler()
		c, w := testutil.NewTestContext(http.MethodPost, "/payments/notification", nil)
		c.Request.Header.Set("Content-Type", "application/json")

		h.HandleNotification(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPaymentHandler_ListFlaggedNotifications(t *testing.T) {
	h, m := newTestPaymentHandler()

	var gotLimit int
	m.flagged.ExecuteFunc = func(ctx context.Context, query usecases.ListFlaggedNotificationsQuery) ([]usecases.FlaggedNotificationView, error) {
		gotLimit = query.Limit
		return []usecases.FlaggedNotificationView{{ID: "f-1", Reason: "signature_mismatch"}}, nil
	}

	c, w := testutil.NewTestContext(http.MethodGet, "/admin/flagged-notifications", nil)
	testutil.SetQueryParams(c, map[string]string{"limit": "20"})
	h.ListFlaggedNotifications(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, gotLimit)
	assert.Contains(t, w.Body.String(), `"reason":"signature_mismatch"`)

	c, w = testutil.NewTestContext(http.MethodGet, "/admin/flagged-notifications", nil)
	testutil.SetQueryParams(c, map[string]string{"limit": "many"})
	h.ListFlaggedNotifications(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error { return m.err }

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(&mockPinger{}, testutil.NewMockLogger())
	c, w := testutil.NewTestContext(http.MethodGet, "/health", nil)
	h.Health(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)

	h = NewHealthHandler(&mockPinger{err: errors.New("connection refused")}, testutil.NewMockLogger())
	c, w = testutil.NewTestContext(http.MethodGet, "/health", nil)
	h.Health(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"unreachable"`)
}
