package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the lifecycle of an external settlement attempt.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusSettled    PaymentStatus = "SETTLED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusCancelled  PaymentStatus = "CANCELLED"
)

// IsTerminal returns true for SETTLED, FAILED and CANCELLED.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSettled || s == PaymentStatusFailed || s == PaymentStatusCancelled
}

// Payment represents one settlement attempt against an external processor.
// Reprocessing a payment already SETTLED must be a detectable no-op.
type Payment struct {
	ID            uuid.UUID     `json:"id"`
	MandateID     uuid.UUID     `json:"mandate_id"`
	AgentID       string        `json:"agent_id"`
	Amount        int64         `json:"amount"`
	Currency      string        `json:"currency"`
	ProviderRef   string        `json:"provider_ref"` // External processor reference, unique
	Status        PaymentStatus `json:"status"`
	TransactionID *uuid.UUID    `json:"transaction_id,omitempty"` // Linked execution-charge ledger entry
	SettledAt     *time.Time    `json:"settled_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}
