package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Deterministic(t *testing.T) {
	a := Encode(map[string]string{"amount": "1000", "currency": "USD", "payment_id": "p1"})
	b := Encode(map[string]string{"payment_id": "p1", "currency": "USD", "amount": "1000"})
	assert.Equal(t, a, b, "encoding must not depend on insertion order")
}

func TestEncode_DistinguishesFieldBoundaries(t *testing.T) {
	// Without length prefixes these two would collide ("ab"+"c" vs "a"+"bc").
	a := Encode(map[string]string{"ab": "c"})
	b := Encode(map[string]string{"a": "bc"})
	assert.NotEqual(t, a, b)
}

func TestEncode_EmptyValues(t *testing.T) {
	a := Encode(map[string]string{"prev_hash": ""})
	b := Encode(map[string]string{"prev_hash": "x"})
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a, "empty value still encodes its key")
}

func TestDigestHex_Stable(t *testing.T) {
	fields := map[string]string{
		"prev_hash":  "",
		"payment_id": "11111111-1111-1111-1111-111111111111",
		"mandate_id": "22222222-2222-2222-2222-222222222222",
		"amount":     "5000",
		"currency":   "USD",
		"settled_at": "1700000000000000000",
	}
	first := DigestHex(fields)
	second := DigestHex(fields)
	require.Equal(t, first, second)
	assert.Len(t, first, 64, "hex-encoded SHA-256")
}

func TestDigestHex_SensitiveToAnyField(t *testing.T) {
	base := map[string]string{"amount": "5000", "currency": "USD"}
	mutated := map[string]string{"amount": "5001", "currency": "USD"}
	assert.NotEqual(t, DigestHex(base), DigestHex(mutated))
}
