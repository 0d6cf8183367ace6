package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypeTopup            TransactionType = "TOPUP"
	TransactionTypeExecutionCharge  TransactionType = "EXECUTION_CHARGE"
	TransactionTypeExecutionEarning TransactionType = "EXECUTION_EARNING"
	TransactionTypePlatformFee      TransactionType = "PLATFORM_FEE"
	TransactionTypeWithdrawal       TransactionType = "WITHDRAWAL"
)

// TransactionDirection tells whether the wallet is debited or credited.
type TransactionDirection string

const (
	DirectionDebit  TransactionDirection = "DEBIT"
	DirectionCredit TransactionDirection = "CREDIT"
)

// TransactionStatus represents the lifecycle state of a ledger entry.
// PENDING transitions exactly once to COMPLETED or FAILED; both are final.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// WalletTransaction is an immutable append-only record of one ledger
// operation.
type WalletTransaction struct {
	ID                   uuid.UUID            `json:"id"`
	WalletID             uuid.UUID            `json:"wallet_id"`
	CounterpartyWalletID *uuid.UUID           `json:"counterparty_wallet_id,omitempty"`
	PaymentID            *uuid.UUID           `json:"payment_id,omitempty"`
	Type                 TransactionType      `json:"type"`
	Direction            TransactionDirection `json:"direction"`
	Method               string               `json:"method,omitempty"`
	Amount               int64                `json:"amount"`
	FeeAmount            int64                `json:"fee_amount"`
	Currency             string               `json:"currency"`
	Status               TransactionStatus    `json:"status"`
	BalanceAfter         *int64               `json:"balance_after,omitempty"` // Available balance snapshot post-completion
	IdempotencyKey       *string              `json:"idempotency_key,omitempty"`
	Metadata             map[string]string    `json:"metadata,omitempty"`
	FailureReason        *string              `json:"failure_reason,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
	ProcessedAt          *time.Time           `json:"processed_at,omitempty"`
}

// IsTerminal returns true if the transaction reached a final state.
func (t *WalletTransaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted || t.Status == TransactionStatusFailed
}
