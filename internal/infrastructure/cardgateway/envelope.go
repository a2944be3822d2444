package cardgateway

import "strings"

// SignatureVersion is the only signature scheme the gateway offers.
const SignatureVersion = "HMAC_SHA256_V1"

// Form and JSON field names of the signed envelope.
const (
	FieldSignatureVersion   = "Ds_SignatureVersion"
	FieldMerchantParameters = "Ds_MerchantParameters"
	FieldSignature          = "Ds_Signature"
)

// SignedEnvelope carries base64 parameters and their signature. The signature
// only validates against the exact MerchantParameters string it was made from.
type SignedEnvelope struct {
	SignatureVersion   string `json:"Ds_SignatureVersion" form:"Ds_SignatureVersion"`
	MerchantParameters string `json:"Ds_MerchantParameters" form:"Ds_MerchantParameters"`
	Signature          string `json:"Ds_Signature" form:"Ds_Signature"`
}

// Response parameter keys, matched case-insensitively.
const (
	keyOrder             = "Ds_Order"
	keyResponse          = "Ds_Response"
	keyAuthorisationCode = "Ds_AuthorisationCode"
	keyAmount            = "Ds_Amount"
	keyCurrency          = "Ds_Currency"
	keyTransactionType   = "Ds_TransactionType"
	keyMerchantCode      = "Ds_MerchantCode"
	keyTerminal          = "Ds_Terminal"
	keyMerchantData      = "Ds_MerchantData"
)

// GatewayResponse is the decoded content of a REST reply or notification.
type GatewayResponse struct {
	ResponseCode      string
	AuthorizationCode string
	OrderReference    string
	Amount            string
	Currency          string
	TransactionType   string
	MerchantCode      string
	Terminal          string
	MerchantData      string
	Raw               Parameters
}

func newGatewayResponse(p Parameters) *GatewayResponse {
	return &GatewayResponse{
		ResponseCode:      p.Get(keyResponse),
		AuthorizationCode: strings.TrimSpace(p.Get(keyAuthorisationCode)),
		OrderReference:    p.Get(keyOrder),
		Amount:            p.Get(keyAmount),
		Currency:          p.Get(keyCurrency),
		TransactionType:   p.Get(keyTransactionType),
		MerchantCode:      p.Get(keyMerchantCode),
		Terminal:          p.Get(keyTerminal),
		MerchantData:      p.Get(keyMerchantData),
		Raw:               p,
	}
}
