package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tourbook/tourbook/internal/domain/reservation"
	vo "github.com/tourbook/tourbook/internal/domain/reservation/valueobjects"
	"github.com/tourbook/tourbook/internal/infrastructure/auth"
	"github.com/tourbook/tourbook/internal/infrastructure/cardgateway"
	"github.com/tourbook/tourbook/internal/infrastructure/config"
	"github.com/tourbook/tourbook/internal/infrastructure/persistence/models"
	"github.com/tourbook/tourbook/internal/infrastructure/repository"
	"github.com/tourbook/tourbook/internal/shared/authorization"
	sharedConfig "github.com/tourbook/tourbook/internal/shared/config"
	"github.com/tourbook/tourbook/internal/shared/logger"
)

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
	testSecretB64    = "sq7HjrUOBfKmC576ILgskD5srU870gJ7"
	testMerchantCode = "999008881"
	testJWTSecret    = "integration-test-secret-0123456789abcdef"
)

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	jwt    *auth.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(&models.ReservationModel{}, &models.FlaggedNotificationModel{}))

	cfg := &config.Config{
		Server: sharedConfig.ServerConfig{Mode: gin.TestMode},
		Auth: sharedConfig.AuthConfig{JWT: sharedConfig.JWTConfig{
			Secret:           testJWTSecret,
			Issuer:           "tourbook",
			AccessExpMinutes: 15,
		}},
		Gateway: sharedConfig.GatewayConfig{
			MerchantCode:      testMerchantCode,
			Terminal:          "1",
			SecretKey:         testSecretB64,
			SecretKeyEncoding: "base64",
			Currency:          "978",
			MerchantName:      "Tourbook",
			Environment:       sharedConfig.GatewayEnvironmentTest,
			PublicBaseURL:     "https://tours.example.com",
			NotificationPath:  "/payments/notification",
			SuccessPath:       "/checkout/ok",
			FailurePath:       "/checkout/ko",
			DefaultLanguage:   "es",
			RequestTimeout:    2 * time.Second,
		},
	}

	c, err := NewContainer(gdb, cfg, newNopLogger())
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)
	c.SetupRoutes()

	jwtSvc, err := auth.NewJWTService(testJWTSecret, "tourbook", 15)
	require.NoError(t, err)

	return &testServer{engine: c.GetEngine(), db: gdb, jwt: jwtSvc}
}

func (s *testServer) seedReservation(t *testing.T, id string) {
	t.Helper()
	r, err := reservation.NewReservation(id, vo.NewMoney(decimal.RequireFromString("125.50"), "EUR"), "Sunset catamaran tour")
	require.NoError(t, err)
	require.NoError(t, repository.NewReservationRepository(s.db).Create(context.Background(), r))
}

func (s *testServer) token(t *testing.T, role authorization.OperatorRole) string {
	t.Helper()
	token, _, err := s.jwt.Generate("op-1", role, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func signedNotification(t *testing.T, orderRef string, params map[string]string) string {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	encoded := base64.StdEncoding.EncodeToString(raw)

	secret, err := cardgateway.DecodeSecretKey(testSecretB64, cardgateway.KeyEncodingBase64)
	require.NoError(t, err)
	signer, err := cardgateway.NewSigner(secret)
	require.NoError(t, err)
	env, err := signer.SignEnvelope(orderRef, encoded)
	require.NoError(t, err)

	body, err := json.Marshal(env)
	require.NoError(t, err)
	return string(body)
}

func TestContainer_AuthorizationAndNotificationFlow(t *testing.T) {
	s := newTestServer(t)
	s.seedReservation(t, "res-42")

	w := s.do(http.MethodPost, "/reservations/res-42/payment/authorize", `{"language":"en"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var payload struct {
		FormURL            string `json:"form_url"`
		SignatureVersion   string `json:"Ds_SignatureVersion"`
		MerchantParameters string `json:"Ds_MerchantParameters"`
		OrderReference     string `json:"order_reference"`
	}
	decodeData(t, w, &payload)
	assert.Equal(t, cardgateway.SignatureVersion, payload.SignatureVersion)
	assert.NotEmpty(t, payload.FormURL)
	require.Len(t, payload.OrderReference, 12)

	// a second request reuses the stored reference
	w = s.do(http.MethodPost, "/reservations/res-42/payment/authorize", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var again struct {
		OrderReference string `json:"order_reference"`
	}
	decodeData(t, w, &again)
	assert.Equal(t, payload.OrderReference, again.OrderReference)

	body := signedNotification(t, payload.OrderReference, map[string]string{
		"Ds_Order":             payload.OrderReference,
		"Ds_Response":          "0000",
		"Ds_TransactionType":   "1",
		"Ds_Amount":            "12550",
		"Ds_Currency":          "978",
		"Ds_MerchantCode":      testMerchantCode,
		"Ds_MerchantData":      "res-42",
		"Ds_AuthorisationCode": "A1B2C3",
	})
	w = s.do(http.MethodPost, "/payments/notification", body, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result struct {
		Applied bool `json:"applied"`
	}
	decodeData(t, w, &result)
	assert.True(t, result.Applied)

	stored, err := repository.NewReservationRepository(s.db).GetByID(context.Background(), "res-42")
	require.NoError(t, err)
	assert.Equal(t, vo.PaymentStatusPreauthorized, stored.PaymentStatus())
	assert.Equal(t, "A1B2C3", stored.AuthorizationCode())

	// redelivery of the same outcome is acknowledged without a second transition
	w = s.do(http.MethodPost, "/payments/notification", body, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// pending-only operation is now a conflict
	w = s.do(http.MethodPost, "/reservations/res-42/payment/authorize", "", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestContainer_ForgedNotificationIsFlagged(t *testing.T) {
	s := newTestServer(t)

	params := base64.StdEncoding.EncodeToString([]byte(`{"Ds_Order":"15200000R45A","Ds_Response":"0000","Ds_TransactionType":"1"}`))
	body := `{"Ds_SignatureVersion":"HMAC_SHA256_V1","Ds_MerchantParameters":"` + params + `","Ds_Signature":"c2lnbmF0dXJl"}`

	w := s.do(http.MethodPost, "/payments/notification", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	admin := s.token(t, authorization.RoleAdmin)
	w = s.do(http.MethodGet, "/admin/flagged-notifications", "", admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var flagged []map[string]any
	decodeData(t, w, &flagged)
	require.Len(t, flagged, 1)
	assert.Equal(t, string(reservation.FlagReasonSignatureMismatch), flagged[0]["reason"])
}

func TestContainer_OperatorRoutesRequireAuthorization(t *testing.T) {
	s := newTestServer(t)
	s.seedReservation(t, "res-42")

	w := s.do(http.MethodPost, "/reservations/res-42/payment/confirm", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/reservations/res-42/payment/cancel", "", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	operator := s.token(t, authorization.RoleOperator)
	w = s.do(http.MethodGet, "/admin/flagged-notifications", "", operator)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// operator passes auth and permission; the pending reservation is a conflict
	w = s.do(http.MethodPost, "/reservations/res-42/payment/confirm", "", operator)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestContainer_Health(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}
