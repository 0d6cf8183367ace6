package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/pkg/storeerr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const txnColumns = `id, wallet_id, counterparty_wallet_id, payment_id, type, direction, method,
		amount, fee_amount, currency, status, balance_after, idempotency_key, metadata,
		failure_reason, created_at, processed_at`

func scanTxn(row pgx.Row) (*domain.WalletTransaction, error) {
	t := &domain.WalletTransaction{}
	err := row.Scan(
		&t.ID, &t.WalletID, &t.CounterpartyWalletID, &t.PaymentID, &t.Type, &t.Direction, &t.Method,
		&t.Amount, &t.FeeAmount, &t.Currency, &t.Status, &t.BalanceAfter, &t.IdempotencyKey, &t.Metadata,
		&t.FailureReason, &t.CreatedAt, &t.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new ledger entry within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.WalletTransaction) error {
	query := `INSERT INTO wallet_transactions (` + txnColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.WalletID, t.CounterpartyWalletID, t.PaymentID, t.Type, t.Direction, t.Method,
		t.Amount, t.FeeAmount, t.Currency, t.Status, t.BalanceAfter, t.IdempotencyKey, t.Metadata,
		t.FailureReason, t.CreatedAt, t.ProcessedAt,
	)
	if err != nil {
		return classify("insert transaction", err)
	}
	return nil
}

// GetByID fetches a ledger entry by its UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WalletTransaction, error) {
	query := `SELECT ` + txnColumns + ` FROM wallet_transactions WHERE id = $1`

	t, err := scanTxn(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get transaction by id", err)
	}
	return t, nil
}

// GetByIDForUpdate fetches a ledger entry with pessimistic locking.
// This MUST be called within a transaction.
func (r *TransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.WalletTransaction, error) {
	query := `SELECT ` + txnColumns + ` FROM wallet_transactions WHERE id = $1 FOR UPDATE`

	t, err := scanTxn(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get transaction for update", err)
	}
	return t, nil
}

// GetByIdempotencyKey fetches a ledger entry by its unique idempotency key.
func (r *TransactionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.WalletTransaction, error) {
	query := `SELECT ` + txnColumns + ` FROM wallet_transactions WHERE idempotency_key = $1`

	t, err := scanTxn(r.pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get transaction by idempotency key", err)
	}
	return t, nil
}

// MarkCompleted flips a PENDING entry to COMPLETED with its balance
// snapshot. The status guard in SQL rejects transitions out of a terminal
// state even under concurrent writers.
func (r *TransactionRepo) MarkCompleted(ctx context.Context, tx pgx.Tx, id uuid.UUID, balanceAfter int64, processedAt time.Time) error {
	query := `UPDATE wallet_transactions
		SET status = $1, balance_after = $2, processed_at = $3
		WHERE id = $4 AND status = $5`

	tag, err := tx.Exec(ctx, query,
		domain.TransactionStatusCompleted, balanceAfter, processedAt,
		id, domain.TransactionStatusPending,
	)
	if err != nil {
		return classify("complete transaction", err)
	}
	if tag.RowsAffected() == 0 {
		return storeerr.New(storeerr.KindConstraintViolation, "complete transaction", fmt.Errorf("transaction %s not PENDING", id))
	}
	return nil
}

// MarkFailed flips a PENDING entry to FAILED with the failure reason.
func (r *TransactionRepo) MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID, reason string, processedAt time.Time) error {
	query := `UPDATE wallet_transactions
		SET status = $1, failure_reason = $2, processed_at = $3
		WHERE id = $4 AND status = $5`

	tag, err := tx.Exec(ctx, query,
		domain.TransactionStatusFailed, reason, processedAt,
		id, domain.TransactionStatusPending,
	)
	if err != nil {
		return classify("fail transaction", err)
	}
	if tag.RowsAffected() == 0 {
		return storeerr.New(storeerr.KindConstraintViolation, "fail transaction", fmt.Errorf("transaction %s not PENDING", id))
	}
	return nil
}

// List returns filtered, paginated ledger entries plus the total count.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.WalletTransaction, int64, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argN := 1
	addFilter := func(clause string, v any) {
		where += fmt.Sprintf(clause, argN)
		args = append(args, v)
		argN++
	}
	if params.WalletID != nil {
		addFilter(" AND wallet_id = $%d", *params.WalletID)
	}
	if params.Status != nil {
		addFilter(" AND status = $%d", *params.Status)
	}
	if params.Type != nil {
		addFilter(" AND type = $%d", *params.Type)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM wallet_transactions` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, classify("count transactions", err)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := `SELECT ` + txnColumns + ` FROM wallet_transactions` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, argN, argN+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, classify("list transactions", err)
	}
	defer rows.Close()

	var result []domain.WalletTransaction
	for rows.Next() {
		t, err := scanTxn(rows)
		if err != nil {
			return nil, 0, classify("scan transaction row", err)
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify("iterate transactions", err)
	}
	return result, total, nil
}
