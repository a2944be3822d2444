package cardgateway

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MerchantParameters is the closed set of request fields. The declaration order
// is the canonical serialization order and must not change: the gateway signs
// the exact bytes, not their meaning.
type MerchantParameters struct {
	Amount             string `json:"DS_MERCHANT_AMOUNT" validate:"required,len=12,numeric"`
	Order              string `json:"DS_MERCHANT_ORDER" validate:"required,max=12"`
	MerchantCode       string `json:"DS_MERCHANT_MERCHANTCODE" validate:"required"`
	Terminal           string `json:"DS_MERCHANT_TERMINAL" validate:"required"`
	Currency           string `json:"DS_MERCHANT_CURRENCY" validate:"required,numeric"`
	TransactionType    string `json:"DS_MERCHANT_TRANSACTIONTYPE" validate:"required"`
	MerchantURL        string `json:"DS_MERCHANT_MERCHANTURL,omitempty"`
	URLOK              string `json:"DS_MERCHANT_URLOK,omitempty"`
	URLKO              string `json:"DS_MERCHANT_URLKO,omitempty"`
	ProductDescription string `json:"DS_MERCHANT_PRODUCTDESCRIPTION,omitempty" validate:"max=125"`
	MerchantName       string `json:"DS_MERCHANT_MERCHANTNAME,omitempty" validate:"max=25"`
	ConsumerLanguage   string `json:"DS_MERCHANT_CONSUMERLANGUAGE,omitempty"`
	MerchantData       string `json:"DS_MERCHANT_MERCHANTDATA,omitempty" validate:"max=1024"`
}

var paramValidator = newParamValidator()

func newParamValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Canonicalize validates the parameters and returns the base64 (standard
// alphabet, padded) encoding of their compact JSON form. The same field values
// always produce the same bytes.
func Canonicalize(p MerchantParameters) (string, error) {
	if err := paramValidator.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			if fe.Tag() == "required" {
				return "", fmt.Errorf("%w: %s is required", ErrCanonicalization, fe.Field())
			}
			return "", fmt.Errorf("%w: %s failed %s", ErrCanonicalization, fe.Field(), fe.Tag())
		}
		return "", fmt.Errorf("%w: %v", ErrCanonicalization, err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCanonicalization, err)
	}
	payload := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	return base64.StdEncoding.EncodeToString(payload), nil
}

// Parameters is a decoded parameter set with case-insensitive keys. Gateways
// answer with Ds_* keys in mixed case.
type Parameters map[string]string

// Get returns the value for key regardless of case.
func (p Parameters) Get(key string) string {
	return p[strings.ToUpper(key)]
}

// Has reports whether key was present, regardless of case.
func (p Parameters) Has(key string) bool {
	_, ok := p[strings.ToUpper(key)]
	return ok
}

// DecodeParameters reverses the base64 JSON encoding used on both directions of
// the protocol. Standard and URL-safe alphabets are accepted, padded or not.
// Non-string JSON values are kept as their literal JSON text.
func DecodeParameters(encoded string) (Parameters, error) {
	raw, err := decodeBase64Any(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: merchant parameters are not base64: %v", ErrMalformedEnvelope, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: merchant parameters are not a JSON object: %v", ErrMalformedEnvelope, err)
	}

	params := make(Parameters, len(fields))
	for k, v := range fields {
		params[strings.ToUpper(k)] = rawJSONString(v)
	}
	return params, nil
}

func rawJSONString(v json.RawMessage) string {
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

// decodeBase64Any decodes s with whichever of the four base64 variants fits.
func decodeBase64Any(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty input")
	}

	enc := base64.StdEncoding
	if strings.ContainsAny(s, "-_") {
		enc = base64.URLEncoding
	}
	if !strings.HasSuffix(s, "=") && len(s)%4 != 0 {
		enc = enc.WithPadding(base64.NoPadding)
	}
	return enc.DecodeString(s)
}
