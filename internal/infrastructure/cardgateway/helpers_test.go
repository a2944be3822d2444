package cardgateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tourbook/tourbook/internal/shared/config"
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

// Fixed vectors, computed independently with openssl (des-ede3 ECB, PKCS
// padding) and HMAC-SHA256.
const (
	testSecretB64       = "sq7HjrUOBfKmC576ILgskD5srU870gJ7"
	testSecretHex       = "b2aec78eb50e05f2a60b9efa20b82c903e6cad4f3bd2027b"
	testOrderRef        = "1234ABCD5678"
	testDerivedKeyHex   = "d1d2fc2dbd1183d8ead220ad1475ec4b"
	testMerchantCode    = "999008881"
	fixtureParamsB64    = "eyJEU19NRVJDSEFOVF9BTU9VTlQiOiIwMDAwMDAwMTI1NTAiLCJEU19NRVJDSEFOVF9PUkRFUiI6IjEyMzRBQkNENTY3OCIsIkRTX01FUkNIQU5UX01FUkNIQU5UQ09ERSI6Ijk5OTAwODg4MSIsIkRTX01FUkNIQU5UX1RFUk1JTkFMIjoiMSIsIkRTX01FUkNIQU5UX0NVUlJFTkNZIjoiOTc4IiwiRFNfTUVSQ0hBTlRfVFJBTlNBQ1RJT05UWVBFIjoiMSIsIkRTX01FUkNIQU5UX01FUkNIQU5UVVJMIjoiaHR0cHM6Ly90b3Vycy5leGFtcGxlLmNvbS9wYXltZW50cy9ub3RpZmljYXRpb24iLCJEU19NRVJDSEFOVF9VUkxPSyI6Imh0dHBzOi8vdG91cnMuZXhhbXBsZS5jb20vY2hlY2tvdXQvb2siLCJEU19NRVJDSEFOVF9VUkxLTyI6Imh0dHBzOi8vdG91cnMuZXhhbXBsZS5jb20vY2hlY2tvdXQva28iLCJEU19NRVJDSEFOVF9QUk9EVUNUREVTQ1JJUFRJT04iOiJTdW5zZXQgY2F0YW1hcmFuIHRvdXIiLCJEU19NRVJDSEFOVF9NRVJDSEFOVE5BTUUiOiJUb3VyYm9vayIsIkRTX01FUkNIQU5UX0NPTlNVTUVSTEFOR1VBR0UiOiIwMDIiLCJEU19NRVJDSEFOVF9NRVJDSEFOVERBVEEiOiJyZXMtNDIifQ=="
	fixtureSignatureB64 = "VrdizJ98A6fa0ADdMs1QiKwFGwCvm7n6doYwU47Amw0="
)

func fixtureParameters() MerchantParameters {
	return MerchantParameters{
		Amount:             "000000012550",
		Order:              testOrderRef,
		MerchantCode:       testMerchantCode,
		Terminal:           "1",
		Currency:           "978",
		TransactionType:    "1",
		MerchantURL:        "https://tours.example.com/payments/notification",
		URLOK:              "https://tours.example.com/checkout/ok",
		URLKO:              "https://tours.example.com/checkout/ko",
		ProductDescription: "Sunset catamaran tour",
		MerchantName:       "Tourbook",
		ConsumerLanguage:   "002",
		MerchantData:       "res-42",
	}
}

func testGatewayConfig() config.GatewayConfig {
	return config.GatewayConfig{
		MerchantCode:      testMerchantCode,
		Terminal:          "1",
		SecretKey:         testSecretB64,
		SecretKeyEncoding: "base64",
		Currency:          "978",
		MerchantName:      "Tourbook",
		Environment:       config.GatewayEnvironmentTest,
		PublicBaseURL:     "https://tours.example.com",
		DefaultLanguage:   "es",
		RequestTimeout:    2 * time.Second,
	}
}

func testSigner(t *testing.T) *Signer {
	t.Helper()
	secret, err := DecodeSecretKey(testSecretB64, KeyEncodingBase64)
	require.NoError(t, err)
	s, err := NewSigner(secret)
	require.NoError(t, err)
	return s
}
