package postgres

import (
	"context"
	"errors"

	"agent-payment-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReceiptRepo implements ports.ReceiptRepository. Receipts are append-only;
// the table carries unique constraints on payment_id and on
// (agent_id, chain_index) so neither a duplicate receipt nor an index
// collision can ever be stored.
type ReceiptRepo struct {
	pool Pool
}

// NewReceiptRepo creates a new ReceiptRepo.
func NewReceiptRepo(pool Pool) *ReceiptRepo {
	return &ReceiptRepo{pool: pool}
}

const receiptColumns = `id, payment_id, agent_id, hash, prev_hash, chain_index, mandate_id, amount, currency, settled_at, created_at`

func scanReceipt(row pgx.Row) (*domain.Receipt, error) {
	rc := &domain.Receipt{}
	err := row.Scan(
		&rc.ID, &rc.PaymentID, &rc.AgentID, &rc.Hash, &rc.PrevHash, &rc.ChainIndex,
		&rc.MandateID, &rc.Amount, &rc.Currency, &rc.SettledAt, &rc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rc, nil
}

// Create appends a receipt within a database transaction. A collision on
// (agent_id, chain_index) or payment_id surfaces as
// storeerr.KindConstraintViolation; the chain service resolves it.
func (r *ReceiptRepo) Create(ctx context.Context, tx pgx.Tx, rc *domain.Receipt) error {
	query := `INSERT INTO receipts (` + receiptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		rc.ID, rc.PaymentID, rc.AgentID, rc.Hash, rc.PrevHash, rc.ChainIndex,
		rc.MandateID, rc.Amount, rc.Currency, rc.SettledAt, rc.CreatedAt,
	)
	if err != nil {
		return classify("insert receipt", err)
	}
	return nil
}

// GetByPaymentID fetches the receipt for a payment inside the append
// transaction, so the already-has-receipt check shares the atomic unit
// with the insert.
func (r *ReceiptRepo) GetByPaymentID(ctx context.Context, tx pgx.Tx, paymentID uuid.UUID) (*domain.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE payment_id = $1`

	rc, err := scanReceipt(tx.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get receipt by payment", err)
	}
	return rc, nil
}

// GetLastForUpdate locks the chain tail for an agent. Returns nil for an
// empty chain. This MUST be called within a transaction.
func (r *ReceiptRepo) GetLastForUpdate(ctx context.Context, tx pgx.Tx, agentID string) (*domain.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts
		WHERE agent_id = $1 ORDER BY chain_index DESC LIMIT 1 FOR UPDATE`

	rc, err := scanReceipt(tx.QueryRow(ctx, query, agentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get chain tail", err)
	}
	return rc, nil
}

// ListByAgent returns an agent's receipts ordered by chain index ascending.
func (r *ReceiptRepo) ListByAgent(ctx context.Context, agentID string) ([]domain.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts
		WHERE agent_id = $1 ORDER BY chain_index ASC`

	rows, err := r.pool.Query(ctx, query, agentID)
	if err != nil {
		return nil, classify("list receipts", err)
	}
	defer rows.Close()

	var receipts []domain.Receipt
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, classify("scan receipt row", err)
		}
		receipts = append(receipts, *rc)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate receipts", err)
	}
	return receipts, nil
}
