package cardgateway

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The canonical bytes are pinned: any change here breaks every signature the
// gateway checks.
func TestCanonicalize_Fixture(t *testing.T) {
	got, err := Canonicalize(fixtureParameters())
	require.NoError(t, err)
	assert.Equal(t, fixtureParamsB64, got)
}

func TestCanonicalize_IndependentOfConstructionOrder(t *testing.T) {
	var p MerchantParameters
	p.MerchantData = "res-42"
	p.ConsumerLanguage = "002"
	p.MerchantName = "Tourbook"
	p.ProductDescription = "Sunset catamaran tour"
	p.URLKO = "https://tours.example.com/checkout/ko"
	p.URLOK = "https://tours.example.com/checkout/ok"
	p.MerchantURL = "https://tours.example.com/payments/notification"
	p.TransactionType = "1"
	p.Currency = "978"
	p.Terminal = "1"
	p.MerchantCode = testMerchantCode
	p.Order = testOrderRef
	p.Amount = "000000012550"

	got, err := Canonicalize(p)
	require.NoError(t, err)
	assert.Equal(t, fixtureParamsB64, got)
}

func TestCanonicalize_CompactAndUnescaped(t *testing.T) {
	p := fixtureParameters()
	p.ProductDescription = "Kayak & snorkel <half day>"

	encoded, err := Canonicalize(p)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	s := string(raw)

	assert.Contains(t, s, `"DS_MERCHANT_PRODUCTDESCRIPTION":"Kayak & snorkel <half day>"`)
	assert.NotContains(t, s, "\n")
	assert.NotContains(t, s, ": ")
	assert.True(t, strings.HasPrefix(s, `{"DS_MERCHANT_AMOUNT":"000000012550","DS_MERCHANT_ORDER":`))
}

func TestCanonicalize_OmitsEmptyOptionalFields(t *testing.T) {
	encoded, err := Canonicalize(MerchantParameters{
		Amount:          "000000012550",
		Order:           testOrderRef,
		MerchantCode:    testMerchantCode,
		Terminal:        "1",
		Currency:        "978",
		TransactionType: "2",
	})
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t,
		`{"DS_MERCHANT_AMOUNT":"000000012550","DS_MERCHANT_ORDER":"1234ABCD5678","DS_MERCHANT_MERCHANTCODE":"999008881","DS_MERCHANT_TERMINAL":"1","DS_MERCHANT_CURRENCY":"978","DS_MERCHANT_TRANSACTIONTYPE":"2"}`,
		string(raw))
}

func TestCanonicalize_MissingRequiredField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MerchantParameters)
		field  string
	}{
		{"amount", func(p *MerchantParameters) { p.Amount = "" }, "DS_MERCHANT_AMOUNT"},
		{"order", func(p *MerchantParameters) { p.Order = "" }, "DS_MERCHANT_ORDER"},
		{"merchant code", func(p *MerchantParameters) { p.MerchantCode = "" }, "DS_MERCHANT_MERCHANTCODE"},
		{"terminal", func(p *MerchantParameters) { p.Terminal = "" }, "DS_MERCHANT_TERMINAL"},
		{"currency", func(p *MerchantParameters) { p.Currency = "" }, "DS_MERCHANT_CURRENCY"},
		{"transaction type", func(p *MerchantParameters) { p.TransactionType = "" }, "DS_MERCHANT_TRANSACTIONTYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fixtureParameters()
			tt.mutate(&p)

			_, err := Canonicalize(p)
			assert.ErrorIs(t, err, ErrCanonicalization)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestCanonicalize_RejectsUnpaddedAmount(t *testing.T) {
	p := fixtureParameters()
	p.Amount = "12550"
	_, err := Canonicalize(p)
	assert.ErrorIs(t, err, ErrCanonicalization)
}

func TestDecodeParameters(t *testing.T) {
	params, err := DecodeParameters(fixtureParamsB64)
	require.NoError(t, err)

	assert.Equal(t, testOrderRef, params.Get("Ds_Merchant_Order"))
	assert.Equal(t, "000000012550", params.Get("DS_MERCHANT_AMOUNT"))
	assert.True(t, params.Has("ds_merchant_merchantdata"))
	assert.False(t, params.Has("Ds_Response"))
}

func TestDecodeParameters_Alphabets(t *testing.T) {
	raw := []byte(`{"Ds_Order":"1234ABCD5678","Ds_Response":"0000","Ds_Note":"??>>"}`)

	for name, enc := range map[string]*base64.Encoding{
		"std":     base64.StdEncoding,
		"url":     base64.URLEncoding,
		"raw std": base64.RawStdEncoding,
		"raw url": base64.RawURLEncoding,
	} {
		t.Run(name, func(t *testing.T) {
			params, err := DecodeParameters(enc.EncodeToString(raw))
			require.NoError(t, err)
			assert.Equal(t, "1234ABCD5678", params.Get("DS_ORDER"))
			assert.Equal(t, "??>>", params.Get("ds_note"))
		})
	}
}

func TestDecodeParameters_NonStringValues(t *testing.T) {
	raw := []byte(`{"Ds_Response":0,"Ds_Amount":12550,"Ds_SecurePayment":true,"Ds_Card_Country":null}`)

	params, err := DecodeParameters(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)

	assert.Equal(t, "0", params.Get("Ds_Response"))
	assert.Equal(t, "12550", params.Get("Ds_Amount"))
	assert.Equal(t, "true", params.Get("Ds_SecurePayment"))
	assert.Equal(t, "", params.Get("Ds_Card_Country"))
	assert.True(t, params.Has("Ds_Card_Country"))
}

func TestDecodeParameters_Malformed(t *testing.T) {
	for _, in := range []string{"", "!!!not-base64", base64.StdEncoding.EncodeToString([]byte("[1,2]"))} {
		_, err := DecodeParameters(in)
		assert.ErrorIs(t, err, ErrMalformedEnvelope, "input %q", in)
	}
}
