package domain

import (
	"strconv"
	"time"

	"agent-payment-gateway/pkg/canonical"

	"github.com/google/uuid"
)

// GenesisPrevHash is the defined null-predecessor value hashed into the
// first receipt of an agent's chain. Stored as NULL prev_hash.
const GenesisPrevHash = ""

// Receipt is one link in an agent's settlement audit chain. Owned by
// exactly one agent chain and exactly one payment; never mutated or
// deleted once written.
type Receipt struct {
	ID         uuid.UUID `json:"id"`
	PaymentID  uuid.UUID `json:"payment_id"`
	AgentID    string    `json:"agent_id"`
	Hash       string    `json:"hash"`                // Hex SHA-256 over the canonical fields
	PrevHash   *string   `json:"prev_hash,omitempty"` // nil at genesis
	ChainIndex int64     `json:"chain_index"`         // 0-based, contiguous, strictly increasing per agent
	MandateID  uuid.UUID `json:"mandate_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	SettledAt  time.Time `json:"settled_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// HashFields returns the canonical field set the receipt hash commits to.
// settled_at enters as UTC unix nanoseconds so the encoding is
// timezone-free.
func (r *Receipt) HashFields() map[string]string {
	prev := GenesisPrevHash
	if r.PrevHash != nil {
		prev = *r.PrevHash
	}
	return map[string]string{
		"prev_hash":  prev,
		"payment_id": r.PaymentID.String(),
		"mandate_id": r.MandateID.String(),
		"amount":     strconv.FormatInt(r.Amount, 10),
		"currency":   r.Currency,
		"settled_at": strconv.FormatInt(r.SettledAt.UTC().UnixNano(), 10),
	}
}

// ComputeHash recomputes the digest from the receipt's stored fields.
func (r *Receipt) ComputeHash() string {
	return canonical.DigestHex(r.HashFields())
}
