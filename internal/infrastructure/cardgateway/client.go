package cardgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/tourbook/tourbook/internal/application/payment/paymentgateway"
	vo "github.com/tourbook/tourbook/internal/domain/reservation/valueobjects"
	"github.com/tourbook/tourbook/internal/shared/config"
	"github.com/tourbook/tourbook/internal/shared/logger"
)

const (
	testFormURL       = "https://sis-t.redsys.es:25443/sis/realizarPago"
	testRESTURL       = "https://sis-t.redsys.es:25443/sis/rest/trataPeticionREST"
	productionFormURL = "https://sis.redsys.es/sis/realizarPago"
	productionRESTURL = "https://sis.redsys.es/sis/rest/trataPeticionREST"

	// HTTP request timeout for REST operations
	defaultRequestTimeout = 30 * time.Second
	// Maximum REST response body size (64KB)
	maxResponseSize = 64 << 10

	maxDescriptionLength = 125
	defaultLanguageCode  = "001"
)

// Client builds signed gateway requests and performs REST confirmations and
// cancellations. It is immutable after NewClient and safe for concurrent use.
type Client struct {
	merchantCode    string
	terminal        string
	currency        string
	merchantName    string
	defaultLanguage string

	formURL     string
	restURL     string
	merchantURL string
	urlOK       string
	urlKO       string

	signer     *Signer
	verifier   *NotificationVerifier
	httpClient *http.Client
	sanitizer  *bluemonday.Policy
	logger     logger.Interface
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client used for REST calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient validates cfg and decodes the merchant secret once. Every
// configuration problem is reported here as ErrConfiguration or
// ErrInvalidSecretKey.
func NewClient(cfg config.GatewayConfig, log logger.Interface, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if utf8.RuneCountInString(cfg.MerchantName) > 25 {
		return nil, fmt.Errorf("%w: merchant_name longer than 25 characters", ErrConfiguration)
	}

	secret, err := DecodeSecretKey(cfg.SecretKey, KeyEncoding(cfg.SecretKeyEncoding))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	signer, err := NewSigner(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	formURL, restURL := cfg.FormURL, cfg.RESTURL
	switch cfg.Environment {
	case config.GatewayEnvironmentTest:
		formURL = firstNonEmpty(formURL, testFormURL)
		restURL = firstNonEmpty(restURL, testRESTURL)
	case config.GatewayEnvironmentProduction:
		formURL = firstNonEmpty(formURL, productionFormURL)
		restURL = firstNonEmpty(restURL, productionRESTURL)
	}

	merchantURL, err := joinURL(cfg.PublicBaseURL, firstNonEmpty(cfg.NotificationPath, "/payments/notification"))
	if err != nil {
		return nil, err
	}
	urlOK, err := joinURL(cfg.PublicBaseURL, firstNonEmpty(cfg.SuccessPath, "/checkout/ok"))
	if err != nil {
		return nil, err
	}
	urlKO, err := joinURL(cfg.PublicBaseURL, firstNonEmpty(cfg.FailurePath, "/checkout/ko"))
	if err != nil {
		return nil, err
	}

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}

	c := &Client{
		merchantCode:    cfg.MerchantCode,
		terminal:        cfg.Terminal,
		currency:        cfg.Currency,
		merchantName:    cfg.MerchantName,
		defaultLanguage: ConsumerLanguage(cfg.DefaultLanguage, defaultLanguageCode),
		formURL:         formURL,
		restURL:         restURL,
		merchantURL:     merchantURL,
		urlOK:           urlOK,
		urlKO:           urlKO,
		signer:          signer,
		httpClient:      &http.Client{Timeout: timeout},
		sanitizer:       bluemonday.StrictPolicy(),
		logger:          log,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.verifier = NewNotificationVerifier(signer, cfg.MerchantCode, log)

	return c, nil
}

var _ paymentgateway.Gateway = (*Client)(nil)

// NotificationVerifier returns a verifier sharing this client's merchant secret.
func (c *Client) NotificationVerifier() *NotificationVerifier {
	return c.verifier
}

// FormURL returns the hosted payment page URL.
func (c *Client) FormURL() string {
	return c.formURL
}

// StartAuthorization builds and signs a preauthorization request. No network
// I/O happens here: the browser posts the payload to the hosted page.
func (c *Client) StartAuthorization(ctx context.Context, req paymentgateway.AuthorizationRequest) (*paymentgateway.RedirectPayload, error) {
	amount, err := EncodeAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	params := MerchantParameters{
		Amount:             amount,
		Order:              req.OrderReference,
		MerchantCode:       c.merchantCode,
		Terminal:           c.terminal,
		Currency:           c.currency,
		TransactionType:    vo.TransactionTypePreauthorization.String(),
		MerchantURL:        c.merchantURL,
		URLOK:              c.urlOK,
		URLKO:              c.urlKO,
		ProductDescription: c.plainDescription(req.Description),
		MerchantName:       c.merchantName,
		ConsumerLanguage:   ConsumerLanguage(req.Language, c.defaultLanguage),
		MerchantData:       req.ReservationID,
	}

	encoded, err := Canonicalize(params)
	if err != nil {
		return nil, err
	}
	env, err := c.signer.SignEnvelope(req.OrderReference, encoded)
	if err != nil {
		return nil, err
	}

	c.logger.Infow("preauthorization payload built",
		"reservation_id", req.ReservationID,
		"order_reference", req.OrderReference,
		"amount", amount,
	)

	return &paymentgateway.RedirectPayload{
		FormURL:            c.formURL,
		SignatureVersion:   env.SignatureVersion,
		MerchantParameters: env.MerchantParameters,
		Signature:          env.Signature,
		OrderReference:     req.OrderReference,
	}, nil
}

// Confirm settles a preauthorization over the REST endpoint.
func (c *Client) Confirm(ctx context.Context, req paymentgateway.OperationRequest) (*paymentgateway.OperationResult, error) {
	return c.operate(ctx, vo.TransactionTypeConfirmation, req)
}

// Cancel releases a preauthorization over the REST endpoint.
func (c *Client) Cancel(ctx context.Context, req paymentgateway.OperationRequest) (*paymentgateway.OperationResult, error) {
	return c.operate(ctx, vo.TransactionTypeCancellation, req)
}

type restResponse struct {
	ErrorCode string `json:"errorCode"`
	SignedEnvelope
}

func (c *Client) operate(ctx context.Context, tt vo.TransactionType, req paymentgateway.OperationRequest) (*paymentgateway.OperationResult, error) {
	amount, err := EncodeAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	encoded, err := Canonicalize(MerchantParameters{
		Amount:          amount,
		Order:           req.OrderReference,
		MerchantCode:    c.merchantCode,
		Terminal:        c.terminal,
		Currency:        c.currency,
		TransactionType: tt.String(),
		MerchantData:    req.ReservationID,
	})
	if err != nil {
		return nil, err
	}

	// signed per call, never reused across retries
	env, err := c.signer.SignEnvelope(req.OrderReference, encoded)
	if err != nil {
		return nil, err
	}

	resp, err := c.post(ctx, env)
	if err != nil {
		c.logger.Warnw("gateway request failed",
			"operation", tt.Name(),
			"order_reference", req.OrderReference,
			"error", err,
		)
		return nil, err
	}

	if resp.ErrorCode != "" {
		c.logger.Warnw("gateway rejected request",
			"operation", tt.Name(),
			"order_reference", req.OrderReference,
			"error_code", resp.ErrorCode,
		)
		return nil, fmt.Errorf("%w: %s", paymentgateway.ErrRequestRejected, resp.ErrorCode)
	}

	result, err := c.decodeOperationResponse(resp.SignedEnvelope, tt, req.OrderReference, amount)
	if err != nil {
		c.logger.Errorw("gateway response failed verification",
			"operation", tt.Name(),
			"order_reference", req.OrderReference,
			"error", err,
		)
		return nil, err
	}

	c.logger.Infow("gateway operation completed",
		"operation", tt.Name(),
		"order_reference", req.OrderReference,
		"response_code", result.ResponseCode.Raw(),
		"approved", result.Approved,
	)
	return result, nil
}

func (c *Client) post(ctx context.Context, env SignedEnvelope) (*restResponse, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.restURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrGatewayUnavailable, httpResp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrGatewayUnavailable, err)
	}

	var out restResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: malformed response body: %v", ErrGatewayUnavailable, err)
	}
	if out.ErrorCode == "" && out.MerchantParameters == "" {
		return nil, fmt.Errorf("%w: response carries neither parameters nor error code", ErrGatewayUnavailable)
	}
	return &out, nil
}

func (c *Client) decodeOperationResponse(env SignedEnvelope, tt vo.TransactionType, orderRef, amount string) (*paymentgateway.OperationResult, error) {
	params, err := DecodeParameters(env.MerchantParameters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	gr := newGatewayResponse(params)

	if gr.OrderReference != orderRef {
		return nil, fmt.Errorf("%w: response for order %q, requested %q", ErrIntegrity, gr.OrderReference, orderRef)
	}

	if env.SignatureVersion == "" {
		env.SignatureVersion = SignatureVersion
	}
	if err := c.signer.VerifyEnvelope(env, orderRef); err != nil {
		if errors.Is(err, ErrSignatureMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	if gr.MerchantCode != "" && gr.MerchantCode != c.merchantCode {
		return nil, fmt.Errorf("%w: merchant code %q", ErrIntegrity, gr.MerchantCode)
	}
	if gr.Amount != "" {
		echo, err := NormalizeAmount(gr.Amount)
		if err != nil || echo != amount {
			return nil, fmt.Errorf("%w: amount echo %q, requested %s", ErrIntegrity, gr.Amount, amount)
		}
	}
	if gr.TransactionType != "" && gr.TransactionType != tt.String() {
		return nil, fmt.Errorf("%w: transaction type echo %q, requested %s", ErrIntegrity, gr.TransactionType, tt)
	}

	code := vo.ParseResponseCode(gr.ResponseCode)
	return &paymentgateway.OperationResult{
		OrderReference:    orderRef,
		TransactionType:   tt,
		ResponseCode:      code,
		AuthorizationCode: gr.AuthorizationCode,
		Approved:          code.IsApproved(tt),
	}, nil
}

// plainDescription strips markup and clips to the gateway's field length.
func (c *Client) plainDescription(desc string) string {
	text := strings.TrimSpace(html.UnescapeString(c.sanitizer.Sanitize(desc)))
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maxDescriptionLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxDescriptionLength]))
}

func joinURL(base, path string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: public base URL: %v", ErrConfiguration, err)
	}
	return u.JoinPath(path).String(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
