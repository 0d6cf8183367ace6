package ports

import (
	"context"
	"time"

	"agent-payment-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// IdempotencyCache is the redis fast path in front of the durable
// idempotency store. Best-effort: failures degrade to the durable layer.
type IdempotencyCache interface {
	Get(ctx context.Context, route, key string) (*StoredResponse, error) // nil, nil on miss
	Set(ctx context.Context, route, key string, resp *StoredResponse, ttl time.Duration) error
}

// StoredResponse is a previously produced response replayed on retry.
type StoredResponse struct {
	StatusCode int    `json:"status_code"`
	Body       []byte `json:"body"`
}

// IdempotencyService is the explicit two-phase replay contract: callers
// ask for permission before acting and report the outcome afterward.
type IdempotencyService interface {
	// CheckOrReserve returns the stored response for (route, key) if the
	// operation already completed, or nil if the caller should proceed.
	// Durable-store unavailability is a hard error: financial mutations
	// never degrade to unprotected.
	CheckOrReserve(ctx context.Context, route, key string) (*StoredResponse, error)
	// Commit persists the outcome. Losing an insert race returns the
	// winner's stored response; the caller discards its own result and
	// serves that instead.
	Commit(ctx context.Context, route, key string, statusCode int, body []byte) (*StoredResponse, error)
	// Reap removes records older than the retention window. Returns the
	// number removed.
	Reap(ctx context.Context, olderThan time.Duration) (int64, error)
}

// --- Service Ports (Business Logic) ---

// LedgerService owns wallet balances and the transaction log.
type LedgerService interface {
	GetOrCreateWallet(ctx context.Context, kind domain.OwnerKind, ownerID, currency string) (*domain.Wallet, error)
	GetWallet(ctx context.Context, kind domain.OwnerKind, ownerID, currency string) (*domain.Wallet, error)

	// Atomic balance primitives. Each runs in its own store transaction
	// with the wallet row locked and preconditions re-checked under the
	// lock.
	ReserveFunds(ctx context.Context, walletID uuid.UUID, amount int64) error
	ReleaseFunds(ctx context.Context, walletID uuid.UUID, amount int64) error
	CompleteDebit(ctx context.Context, walletID uuid.UUID, amount int64) error
	CreditWallet(ctx context.Context, walletID uuid.UUID, amount int64) error

	// Transaction log state machine.
	CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.WalletTransaction, error)
	CompleteTransaction(ctx context.Context, id uuid.UUID) (*domain.WalletTransaction, error)
	FailTransaction(ctx context.Context, id uuid.UUID, reason string) (*domain.WalletTransaction, error)

	// Composite flows.
	Topup(ctx context.Context, req TopupRequest) (*domain.WalletTransaction, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (*domain.WalletTransaction, error)
	RecordEarning(ctx context.Context, req EarningRequest) (*domain.WalletTransaction, error)

	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.WalletTransaction, int64, error)
}

// CreateTransactionInput holds validated input for a new ledger entry.
// If IdempotencyKey is set and already recorded, the existing entry is
// returned without side effects.
type CreateTransactionInput struct {
	WalletID             uuid.UUID
	CounterpartyWalletID *uuid.UUID
	PaymentID            *uuid.UUID
	Type                 domain.TransactionType
	Direction            domain.TransactionDirection
	Method               string
	Amount               int64
	FeeAmount            int64
	Currency             string
	IdempotencyKey       *string
	Metadata             map[string]string
}

// TopupRequest credits a wallet directly; crediting cannot overdraw, so no
// reservation is involved.
type TopupRequest struct {
	OwnerKind      domain.OwnerKind
	OwnerID        string
	Amount         int64
	Currency       string
	Method         string
	IdempotencyKey *string
}

// WithdrawRequest reserves funds and opens a PENDING withdrawal debit,
// completed or failed on the payout outcome.
type WithdrawRequest struct {
	OwnerKind      domain.OwnerKind
	OwnerID        string
	Amount         int64
	Currency       string
	Method         string
	IdempotencyKey *string
}

// EarningRequest credits a developer wallet with gross minus fee and the
// platform wallet with the fee, both as COMPLETED credits.
type EarningRequest struct {
	DeveloperID    string
	GrossAmount    int64
	FeeAmount      int64
	Currency       string
	PaymentID      *uuid.UUID
	IdempotencyKey *string
}

// PaymentService issues mandates and opens payments against them.
type PaymentService interface {
	IssueMandate(ctx context.Context, req IssueMandateRequest) (*domain.Mandate, error)
	GetMandate(ctx context.Context, id uuid.UUID) (*domain.Mandate, error)
	RevokeMandate(ctx context.Context, id uuid.UUID) (*domain.Mandate, error)
	// CreatePayment validates the mandate, reserves funds on the paying
	// wallet, and opens the PENDING charge transaction plus the PENDING
	// payment in one atomic unit.
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*domain.Payment, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
}

// IssueMandateRequest holds validated input for mandate issuance.
type IssueMandateRequest struct {
	AgentID   string
	OwnerKind domain.OwnerKind
	OwnerID   string
	MaxAmount int64
	Currency  string
	ExpiresAt *time.Time
}

// CreatePaymentRequest holds validated input for opening a payment.
type CreatePaymentRequest struct {
	MandateID   uuid.UUID
	Amount      int64
	ProviderRef string
}

// ReceiptChainService appends to and verifies per-agent receipt chains.
type ReceiptChainService interface {
	// AppendReceipt links a receipt for a settled payment onto its
	// agent's chain. Idempotent per payment: re-delivery never grows the
	// chain.
	AppendReceipt(ctx context.Context, payment *domain.Payment) (*domain.Receipt, error)
	VerifyChain(ctx context.Context, agentID string) (*ChainVerification, error)
	ExportChain(ctx context.Context, agentID string) (*ChainExport, error)
}

// ChainVerification is the result of walking one agent's chain.
type ChainVerification struct {
	Valid          bool   `json:"valid"`
	Length         int64  `json:"length"`
	DivergentIndex *int64 `json:"divergent_index,omitempty"` // First index failing any check
	Reason         string `json:"reason,omitempty"`
}

// ChainExport is the operator-facing audit view of one agent's chain.
type ChainExport struct {
	AgentID      string            `json:"agent_id"`
	Receipts     []domain.Receipt  `json:"receipts"`
	Verification ChainVerification `json:"verification"`
}

// SettlementProcessor consumes payment-provider events exactly once per
// event id.
type SettlementProcessor interface {
	// ProcessEvent returns the outcome to acknowledge with. An error
	// return means the event must NOT be acknowledged (transient failure
	// with retries exhausted; provider redelivery is the fallback).
	ProcessEvent(ctx context.Context, evt domain.SettlementEvent) (*domain.SettlementOutcome, error)
}
