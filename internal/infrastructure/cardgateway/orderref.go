package cardgateway

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/tourbook/tourbook/internal/application/payment/paymentgateway"
	"github.com/tourbook/tourbook/internal/shared/biztime"
)

const (
	// OrderReferenceLength is the fixed DS_MERCHANT_ORDER length.
	OrderReferenceLength = 12

	base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// The time prefix counts centiseconds modulo 10^8 and wraps every ~11.57 days.
	timePrefixDigits  = 8
	timePrefixModulus = 100_000_000
)

// OrderReferenceGenerator builds 12-character order references:
//
//	TTTTTTTT HH RR
//
// T is the 8-digit centisecond time prefix, H two base-36 characters from
// SHA-256 of the reservation ID, R two cryptographically random base-36
// characters. The leading digits satisfy the gateway's "4 digits first" rule.
//
// Two references can only collide if they are generated in the same 10ms slot
// modulo the ~11.6 day wrap and also share both hash and random characters.
// For different reservations in the same slot that is 1 in 36^4 (1,679,616);
// for the same reservation it is 1 in 36^2 (1,296), and callers never generate
// twice for a reservation that already has a stored reference.
type OrderReferenceGenerator struct {
	now    func() time.Time
	random io.Reader
}

// OrderReferenceOption configures an OrderReferenceGenerator.
type OrderReferenceOption func(*OrderReferenceGenerator)

// WithClock replaces the wall clock used for the time prefix.
func WithClock(now func() time.Time) OrderReferenceOption {
	return func(g *OrderReferenceGenerator) {
		g.now = now
	}
}

// WithRandom replaces the random source used for the suffix.
func WithRandom(r io.Reader) OrderReferenceOption {
	return func(g *OrderReferenceGenerator) {
		g.random = r
	}
}

func NewOrderReferenceGenerator(opts ...OrderReferenceOption) *OrderReferenceGenerator {
	g := &OrderReferenceGenerator{
		now:    biztime.NowUTC,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ paymentgateway.OrderReferenceGenerator = (*OrderReferenceGenerator)(nil)

// Generate returns a new order reference for the reservation.
func (g *OrderReferenceGenerator) Generate(reservationID string) (string, error) {
	if reservationID == "" {
		return "", fmt.Errorf("%w: reservation ID is empty", ErrReferenceGeneration)
	}

	centis := g.now().UnixMilli() / 10
	prefix := fmt.Sprintf("%0*d", timePrefixDigits, centis%timePrefixModulus)

	sum := sha256.Sum256([]byte(reservationID))
	hash := []byte{
		base36Alphabet[int(sum[0])%len(base36Alphabet)],
		base36Alphabet[int(sum[1])%len(base36Alphabet)],
	}

	suffix := make([]byte, 2)
	alphabetSize := big.NewInt(int64(len(base36Alphabet)))
	for i := range suffix {
		n, err := rand.Int(g.random, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrReferenceGeneration, err)
		}
		suffix[i] = base36Alphabet[n.Int64()]
	}

	return prefix + string(hash) + string(suffix), nil
}

// IsValidOrderReference reports whether ref has the shape Generate produces.
func IsValidOrderReference(ref string) bool {
	if len(ref) != OrderReferenceLength {
		return false
	}
	if !isDigits(ref[:4]) {
		return false
	}
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		if !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}
