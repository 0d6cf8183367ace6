package domain

import (
	"time"

	"github.com/google/uuid"
)

// MandateStatus represents the lifecycle of a purchase mandate.
type MandateStatus string

const (
	MandateStatusActive  MandateStatus = "ACTIVE"
	MandateStatusRevoked MandateStatus = "REVOKED"
	MandateStatusExpired MandateStatus = "EXPIRED"
)

// Mandate is the purchase authority an agent spends under. Payments are
// created against a mandate and may not exceed its limit.
type Mandate struct {
	ID        uuid.UUID     `json:"id"`
	AgentID   string        `json:"agent_id"`
	OwnerKind OwnerKind     `json:"owner_kind"` // Whose wallet the mandate spends from
	OwnerID   string        `json:"owner_id"`
	MaxAmount int64         `json:"max_amount"`
	Currency  string        `json:"currency"`
	Status    MandateStatus `json:"status"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// UsableAt reports whether the mandate can authorize a payment at t.
func (m *Mandate) UsableAt(t time.Time) bool {
	if m.Status != MandateStatusActive {
		return false
	}
	if m.ExpiresAt != nil && !t.Before(*m.ExpiresAt) {
		return false
	}
	return true
}
