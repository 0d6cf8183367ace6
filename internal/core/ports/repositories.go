package ports

import (
	"context"
	"time"

	"agent-payment-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside transaction blocks; balance writes
// only ever happen on a row previously locked with GetByIDForUpdate.
type WalletRepository interface {
	// CreateIfAbsent inserts the wallet unless one already exists for its
	// (owner_kind, owner_id, currency). A concurrent creation loses
	// silently; callers re-fetch the winner.
	CreateIfAbsent(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByOwner(ctx context.Context, kind domain.OwnerKind, ownerID, currency string) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	GetByOwnerForUpdate(ctx context.Context, tx pgx.Tx, kind domain.OwnerKind, ownerID, currency string) (*domain.Wallet, error)
	// UpdateBalances writes new balances guarded by the expected version.
	// The version guard rejects any write that did not observe the row
	// under lock first.
	UpdateBalances(ctx context.Context, tx pgx.Tx, id uuid.UUID, available, pending, expectedVersion int64) error
}

// TransactionRepository defines persistence for the append-only
// transaction log.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, txn *domain.WalletTransaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WalletTransaction, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.WalletTransaction, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.WalletTransaction, error)
	// MarkCompleted flips a PENDING entry to COMPLETED with its balance
	// snapshot. MarkFailed flips to FAILED with the reason. Both are
	// rejected by the store if the row already left PENDING.
	MarkCompleted(ctx context.Context, tx pgx.Tx, id uuid.UUID, balanceAfter int64, processedAt time.Time) error
	MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID, reason string, processedAt time.Time) error
	List(ctx context.Context, params TransactionListParams) ([]domain.WalletTransaction, int64, error)
}

// TransactionListParams holds filter + pagination for listing transactions.
type TransactionListParams struct {
	WalletID *uuid.UUID
	Status   *domain.TransactionStatus
	Type     *domain.TransactionType
	Page     int
	PageSize int
}

// PaymentRepository defines persistence for settlement attempts.
type PaymentRepository interface {
	Create(ctx context.Context, tx pgx.Tx, payment *domain.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetByProviderRef(ctx context.Context, providerRef string) (*domain.Payment, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentStatus, settledAt *time.Time) error
}

// ReceiptRepository defines persistence for the per-agent receipt chains.
// Receipts are append-only: there is deliberately no update or delete.
type ReceiptRepository interface {
	Create(ctx context.Context, tx pgx.Tx, receipt *domain.Receipt) error
	GetByPaymentID(ctx context.Context, tx pgx.Tx, paymentID uuid.UUID) (*domain.Receipt, error)
	// GetLastForUpdate locks the chain tail so two concurrent settlements
	// for one agent cannot claim the same index.
	GetLastForUpdate(ctx context.Context, tx pgx.Tx, agentID string) (*domain.Receipt, error)
	ListByAgent(ctx context.Context, agentID string) ([]domain.Receipt, error)
}

// MandateRepository defines persistence for purchase mandates.
type MandateRepository interface {
	Create(ctx context.Context, mandate *domain.Mandate) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Mandate, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MandateStatus) error
}

// IdempotencyRepository is the durable insert-once response store.
type IdempotencyRepository interface {
	// Insert persists the record. A (route, key) collision surfaces as
	// storeerr.KindConstraintViolation; the caller re-fetches the winner.
	Insert(ctx context.Context, rec *domain.IdempotencyRecord) error
	Get(ctx context.Context, route, key string) (*domain.IdempotencyRecord, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
