package domain

import "time"

// SettlementEventType is the closed set of provider event types the
// processor understands.
type SettlementEventType string

const (
	EventPaymentSettled   SettlementEventType = "payment.settled"
	EventPaymentFailed    SettlementEventType = "payment.failed"
	EventPaymentCancelled SettlementEventType = "payment.cancelled"
)

// SettlementEvent is one inbound payment-processor event. Authenticity is
// verified upstream; ID is globally unique per provider and keys the
// event-layer idempotency check.
type SettlementEvent struct {
	ID          string              `json:"id"`
	Provider    string              `json:"provider"`
	Type        SettlementEventType `json:"type"`
	ProviderRef string              `json:"provider_ref"` // Correlates to Payment.ProviderRef
	Reason      string              `json:"reason,omitempty"`
	OccurredAt  time.Time           `json:"occurred_at"`
}

// SettlementOutcome records what processing an event did. It is the body
// persisted into the idempotency store and replayed on re-delivery.
type SettlementOutcome struct {
	EventID   string `json:"event_id"`
	Status    string `json:"status"` // applied, ignored, noop, error
	PaymentID string `json:"payment_id,omitempty"`
	ReceiptID string `json:"receipt_id,omitempty"`
	Detail    string `json:"detail,omitempty"`
}
