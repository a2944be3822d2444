package cardgateway

import (
	"bytes"
	"crypto/cipher"
	"crypto/des"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// SecretKeyLength is the 3DES merchant key length in bytes.
const SecretKeyLength = 24

// KeyEncoding is how the merchant secret is written in configuration.
type KeyEncoding string

const (
	KeyEncodingBase64 KeyEncoding = "base64"
	KeyEncodingHex    KeyEncoding = "hex"
)

// DecodeSecretKey decodes the configured merchant secret. An empty encoding
// means base64. The decoded key must be exactly SecretKeyLength bytes; the
// encoding is never guessed.
func DecodeSecretKey(value string, encoding KeyEncoding) ([]byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("%w: secret key is empty", ErrInvalidSecretKey)
	}

	var (
		key []byte
		err error
	)
	switch KeyEncoding(strings.ToLower(string(encoding))) {
	case "", KeyEncodingBase64:
		key, err = base64.StdEncoding.DecodeString(value)
	case KeyEncodingHex:
		key, err = hex.DecodeString(value)
	default:
		return nil, fmt.Errorf("%w: unknown encoding %q", ErrInvalidSecretKey, encoding)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: not valid %s: %v", ErrInvalidSecretKey, encoding, err)
	}
	if len(key) != SecretKeyLength {
		return nil, fmt.Errorf("%w: decoded to %d bytes, want %d", ErrInvalidSecretKey, len(key), SecretKeyLength)
	}
	return key, nil
}

// DeriveKey encrypts the order reference with 3DES in ECB mode (PKCS#7
// padding, no IV) under the merchant secret. The raw ciphertext is the HMAC key
// for that order.
func DeriveKey(secret []byte, orderReference string) ([]byte, error) {
	if len(secret) != SecretKeyLength {
		return nil, fmt.Errorf("%w: key is %d bytes, want %d", ErrInvalidSecretKey, len(secret), SecretKeyLength)
	}
	if orderReference == "" {
		return nil, fmt.Errorf("%w: order reference is empty", ErrMalformedEnvelope)
	}

	block, err := des.NewTripleDESCipher(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecretKey, err)
	}

	plain := pkcs7Pad([]byte(orderReference), block.BlockSize())
	out := make([]byte, len(plain))
	encryptECB(block, out, plain)
	return out, nil
}

// Sign returns the base64 HMAC-SHA256 of payload under key.
func Sign(key, payload []byte) string {
	return base64.StdEncoding.EncodeToString(mac(key, payload))
}

// Verify recomputes the signature and compares it in constant time. The
// supplied signature may use the standard or URL-safe alphabet; notifications
// arrive with the latter.
func Verify(key, payload []byte, signature string) bool {
	got, err := decodeBase64Any(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, mac(key, payload))
}

func mac(key, payload []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(payload)
	return h.Sum(nil)
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

// encryptECB encrypts src block by block. The standard library leaves ECB out
// on purpose; the protocol requires it for key diversification only.
func encryptECB(block cipher.Block, dst, src []byte) {
	bs := block.BlockSize()
	for len(src) > 0 {
		block.Encrypt(dst[:bs], src[:bs])
		src = src[bs:]
		dst = dst[bs:]
	}
}

// Signer signs and verifies envelopes with a validated merchant secret.
type Signer struct {
	secret []byte
}

// NewSigner copies secret after checking its length.
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) != SecretKeyLength {
		return nil, fmt.Errorf("%w: key is %d bytes, want %d", ErrInvalidSecretKey, len(secret), SecretKeyLength)
	}
	return &Signer{secret: append([]byte(nil), secret...)}, nil
}

// SignEnvelope signs the base64 parameters string for orderReference.
func (s *Signer) SignEnvelope(orderReference, merchantParameters string) (SignedEnvelope, error) {
	key, err := DeriveKey(s.secret, orderReference)
	if err != nil {
		return SignedEnvelope{}, err
	}
	return SignedEnvelope{
		SignatureVersion:   SignatureVersion,
		MerchantParameters: merchantParameters,
		Signature:          Sign(key, []byte(merchantParameters)),
	}, nil
}

// VerifyEnvelope checks env's signature over the exact received parameter
// bytes. It returns ErrSignatureMismatch when they differ.
func (s *Signer) VerifyEnvelope(env SignedEnvelope, orderReference string) error {
	if env.SignatureVersion != SignatureVersion {
		return fmt.Errorf("%w: unsupported signature version %q", ErrMalformedEnvelope, env.SignatureVersion)
	}
	key, err := DeriveKey(s.secret, orderReference)
	if err != nil {
		return err
	}
	if !Verify(key, []byte(env.MerchantParameters), env.Signature) {
		return fmt.Errorf("%w: order %s", ErrSignatureMismatch, orderReference)
	}
	return nil
}
