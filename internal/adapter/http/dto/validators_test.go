package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidIdempotencyKey(t *testing.T) {
	valid := []string{
		"agent-1-req-42",
		"a1b2c3d4",
		"order.2026-08-23:retry-1",
		strings.Repeat("k", 128),
	}
	for _, key := range valid {
		assert.True(t, ValidIdempotencyKey(key), "expected valid: %q", key)
	}

	invalid := []string{
		"",
		"short",                  // under 8 chars
		strings.Repeat("k", 129), // over 128 chars
		"has spaces in it",
		"semi;colon-injection",
		"new\nline-key-12345",
	}
	for _, key := range invalid {
		assert.False(t, ValidIdempotencyKey(key), "expected invalid: %q", key)
	}
}

func TestSanitizeStruct(t *testing.T) {
	ref := "  <img>payment-1  "
	req := struct {
		OwnerID string
		Ref     *string
	}{
		OwnerID: "  user-1  ",
		Ref:     &ref,
	}

	SanitizeStruct(&req)

	assert.Equal(t, "user-1", req.OwnerID)
	assert.Equal(t, "&lt;img&gt;payment-1", *req.Ref)
}

func TestSanitizeStruct_NonStructIsNoop(t *testing.T) {
	s := "  untouched  "
	SanitizeStruct(s) // not a pointer
	assert.Equal(t, "  untouched  ", s)
}
