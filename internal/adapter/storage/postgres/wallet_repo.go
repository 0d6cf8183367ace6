package postgres

import (
	"context"
	"errors"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/pkg/storeerr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `id, owner_kind, owner_id, currency, available, pending, version, created_at, updated_at`

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(
		&w.ID, &w.OwnerKind, &w.OwnerID, &w.Currency,
		&w.Available, &w.Pending, &w.Version, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// CreateIfAbsent inserts the wallet unless one exists for its owner key.
// The unique constraint on (owner_kind, owner_id, currency) makes a
// concurrent first creation lose silently; callers re-fetch the winner.
func (r *WalletRepo) CreateIfAbsent(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (owner_kind, owner_id, currency) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.OwnerKind, w.OwnerID, w.Currency,
		w.Available, w.Pending, w.Version, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return classify("insert wallet", err)
	}
	return nil
}

// GetByID fetches a wallet by its UUID (without locking).
func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`

	w, err := scanWallet(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get wallet by id", err)
	}
	return w, nil
}

// GetByOwner fetches a wallet by owner key (non-locking read).
func (r *WalletRepo) GetByOwner(ctx context.Context, kind domain.OwnerKind, ownerID, currency string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets
		WHERE owner_kind = $1 AND owner_id = $2 AND currency = $3`

	w, err := scanWallet(r.pool.QueryRow(ctx, query, kind, ownerID, currency))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get wallet by owner", err)
	}
	return w, nil
}

// GetByIDForUpdate fetches a wallet by ID with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`

	w, err := scanWallet(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get wallet for update by id", err)
	}
	return w, nil
}

// GetByOwnerForUpdate fetches a wallet by owner key with pessimistic
// locking. This MUST be called within a transaction.
func (r *WalletRepo) GetByOwnerForUpdate(ctx context.Context, tx pgx.Tx, kind domain.OwnerKind, ownerID, currency string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets
		WHERE owner_kind = $1 AND owner_id = $2 AND currency = $3 FOR UPDATE`

	w, err := scanWallet(tx.QueryRow(ctx, query, kind, ownerID, currency))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get wallet for update by owner", err)
	}
	return w, nil
}

// UpdateBalances writes new balances within a transaction. The version
// guard and the non-negativity checks are enforced in SQL so a write that
// did not observe the locked row, or that would overdraw, cannot land.
func (r *WalletRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, id uuid.UUID, available, pending, expectedVersion int64) error {
	query := `UPDATE wallets
		SET available = $1, pending = $2, version = version + 1, updated_at = NOW()
		WHERE id = $3 AND version = $4 AND $1 >= 0 AND $2 >= 0`

	tag, err := tx.Exec(ctx, query, available, pending, id, expectedVersion)
	if err != nil {
		return classify("update wallet balances", err)
	}
	if tag.RowsAffected() == 0 {
		return storeerr.New(storeerr.KindConstraintViolation, "update wallet balances", nil)
	}
	return nil
}
