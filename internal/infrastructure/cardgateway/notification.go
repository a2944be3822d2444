package cardgateway

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tourbook/tourbook/internal/application/payment/paymentgateway"
	vo "github.com/tourbook/tourbook/internal/domain/reservation/valueobjects"
	"github.com/tourbook/tourbook/internal/shared/logger"
)

// NotificationVerifier authenticates gateway callbacks. The callback channel has
// no transport-level authentication; the signature is the only check.
type NotificationVerifier struct {
	signer       *Signer
	merchantCode string
	logger       logger.Interface
}

func NewNotificationVerifier(signer *Signer, merchantCode string, log logger.Interface) *NotificationVerifier {
	return &NotificationVerifier{
		signer:       signer,
		merchantCode: merchantCode,
		logger:       log,
	}
}

var _ paymentgateway.NotificationVerifier = (*NotificationVerifier)(nil)

// ParseNotificationForm reads the envelope from a form-encoded callback body.
func ParseNotificationForm(form url.Values) SignedEnvelope {
	return SignedEnvelope{
		SignatureVersion:   form.Get(FieldSignatureVersion),
		MerchantParameters: form.Get(FieldMerchantParameters),
		Signature:          form.Get(FieldSignature),
	}
}

// Verify checks the envelope and returns its decoded content. The HMAC is
// recomputed over the parameter string exactly as received, never over a
// re-encoding of the decoded fields.
func (v *NotificationVerifier) Verify(env SignedEnvelope) (*GatewayResponse, error) {
	if env.SignatureVersion != SignatureVersion {
		return nil, fmt.Errorf("%w: %v: signature version %q", ErrIntegrity, ErrMalformedEnvelope, env.SignatureVersion)
	}
	if env.MerchantParameters == "" || env.Signature == "" {
		return nil, fmt.Errorf("%w: %v: missing parameters or signature", ErrIntegrity, ErrMalformedEnvelope)
	}

	params, err := DecodeParameters(env.MerchantParameters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	gr := newGatewayResponse(params)
	if gr.OrderReference == "" {
		return nil, fmt.Errorf("%w: %v: notification has no order reference", ErrIntegrity, ErrMalformedEnvelope)
	}
	if !IsValidOrderReference(gr.OrderReference) {
		return nil, fmt.Errorf("%w: %v: malformed order reference %q", ErrIntegrity, ErrMalformedEnvelope, gr.OrderReference)
	}

	if err := v.signer.VerifyEnvelope(env, gr.OrderReference); err != nil {
		return nil, err
	}

	if gr.MerchantCode != "" && gr.MerchantCode != v.merchantCode {
		return nil, fmt.Errorf("%w: notification for merchant %q", ErrIntegrity, gr.MerchantCode)
	}
	return gr, nil
}

// VerifyNotification verifies n and converts it into a domain outcome.
func (v *NotificationVerifier) VerifyNotification(ctx context.Context, n paymentgateway.Notification) (*paymentgateway.NotificationOutcome, error) {
	gr, err := v.Verify(SignedEnvelope{
		SignatureVersion:   n.SignatureVersion,
		MerchantParameters: n.MerchantParameters,
		Signature:          n.Signature,
	})
	if err != nil {
		return nil, err
	}

	tt, err := vo.NewTransactionType(gr.TransactionType)
	if err != nil {
		return nil, fmt.Errorf("%w: order %s: %v", ErrIntegrity, gr.OrderReference, err)
	}

	outcome := &paymentgateway.NotificationOutcome{
		OrderReference:    gr.OrderReference,
		TransactionType:   tt,
		ResponseCode:      vo.ParseResponseCode(gr.ResponseCode),
		AuthorizationCode: gr.AuthorizationCode,
		Currency:          gr.Currency,
		MerchantData:      gr.MerchantData,
		Raw:               gr.Raw,
	}

	if gr.Amount != "" {
		padded, err := NormalizeAmount(gr.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: order %s: %v", ErrIntegrity, gr.OrderReference, err)
		}
		amount, err := DecodeAmount(padded)
		if err != nil {
			return nil, fmt.Errorf("%w: order %s: %v", ErrIntegrity, gr.OrderReference, err)
		}
		outcome.Amount = amount
		outcome.HasAmount = true
	}

	v.logger.Debugw("notification verified",
		"order_reference", outcome.OrderReference,
		"transaction_type", tt.Name(),
		"response_code", gr.ResponseCode,
	)
	return outcome, nil
}
