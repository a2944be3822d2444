package cardgateway

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestOrderReferenceGenerator_Layout(t *testing.T) {
	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	g := NewOrderReferenceGenerator(
		WithClock(fixedClock(at)),
		WithRandom(bytes.NewReader([]byte{0x05, 0x0A})),
	)

	ref, err := g.Generate("res-42")
	require.NoError(t, err)

	// 15200000: centiseconds mod 1e8, R4: sha256("res-42"), 5A: random bytes 5 and 10
	assert.Equal(t, "15200000R45A", ref)
	assert.Len(t, ref, OrderReferenceLength)
	assert.True(t, IsValidOrderReference(ref))
}

func TestOrderReferenceGenerator_DiffersAcrossTime(t *testing.T) {
	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	now := at
	g := NewOrderReferenceGenerator(WithClock(func() time.Time { return now }))

	first, err := g.Generate("res-42")
	require.NoError(t, err)

	now = at.Add(10 * time.Millisecond)
	second, err := g.Generate("res-42")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, "15200000", first[:8])
	assert.Equal(t, "15200001", second[:8])
}

func TestOrderReferenceGenerator_ReservationHashDiffers(t *testing.T) {
	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	random := []byte{0x01, 0x02, 0x01, 0x02}
	g := NewOrderReferenceGenerator(WithClock(fixedClock(at)), WithRandom(bytes.NewReader(random)))

	a, err := g.Generate("res-42")
	require.NoError(t, err)
	b, err := g.Generate("res-43")
	require.NoError(t, err)

	assert.Equal(t, "R4", a[8:10])
	assert.Equal(t, "A6", b[8:10])
	assert.NotEqual(t, a, b)
}

func TestOrderReferenceGenerator_PrefixWraps(t *testing.T) {
	// 10^8 centiseconds later the prefix repeats
	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	g := NewOrderReferenceGenerator(WithClock(fixedClock(at.Add(1_000_000 * time.Second))))

	ref, err := g.Generate("res-42")
	require.NoError(t, err)
	assert.Equal(t, "15200000", ref[:8])
}

func TestOrderReferenceGenerator_Errors(t *testing.T) {
	g := NewOrderReferenceGenerator()
	_, err := g.Generate("")
	assert.ErrorIs(t, err, ErrReferenceGeneration)

	g = NewOrderReferenceGenerator(WithRandom(failingReader{}))
	_, err = g.Generate("res-42")
	assert.ErrorIs(t, err, ErrReferenceGeneration)
}

func TestOrderReferenceGenerator_DefaultSource(t *testing.T) {
	g := NewOrderReferenceGenerator()
	for i := 0; i < 50; i++ {
		ref, err := g.Generate("res-42")
		require.NoError(t, err)
		assert.True(t, IsValidOrderReference(ref), ref)
	}
}

func TestIsValidOrderReference(t *testing.T) {
	assert.True(t, IsValidOrderReference("1234ABCD5678"))
	assert.False(t, IsValidOrderReference("123ABCD56789"))
	assert.False(t, IsValidOrderReference("1234abcd5678"))
	assert.False(t, IsValidOrderReference("1234ABCD567"))
}
