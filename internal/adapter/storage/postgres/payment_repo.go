package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/pkg/storeerr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PaymentRepo implements ports.PaymentRepository.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

const paymentColumns = `id, mandate_id, agent_id, amount, currency, provider_ref, status, transaction_id, settled_at, created_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := row.Scan(
		&p.ID, &p.MandateID, &p.AgentID, &p.Amount, &p.Currency,
		&p.ProviderRef, &p.Status, &p.TransactionID, &p.SettledAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new payment within a database transaction. provider_ref
// carries a unique constraint: one settlement attempt per processor
// reference.
func (r *PaymentRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	query := `INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		p.ID, p.MandateID, p.AgentID, p.Amount, p.Currency,
		p.ProviderRef, p.Status, p.TransactionID, p.SettledAt, p.CreatedAt,
	)
	if err != nil {
		return classify("insert payment", err)
	}
	return nil
}

// GetByID fetches a payment by its UUID.
func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get payment by id", err)
	}
	return p, nil
}

// GetByProviderRef fetches a payment by its external processor reference.
func (r *PaymentRepo) GetByProviderRef(ctx context.Context, providerRef string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_ref = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, providerRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get payment by provider ref", err)
	}
	return p, nil
}

// GetByIDForUpdate fetches a payment with pessimistic locking.
// This MUST be called within a transaction.
func (r *PaymentRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`

	p, err := scanPayment(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get payment for update", err)
	}
	return p, nil
}

// UpdateStatus transitions a payment within a transaction. Terminal rows
// are excluded in SQL, so a transition out of SETTLED/FAILED/CANCELLED
// cannot land even if the caller raced.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentStatus, settledAt *time.Time) error {
	query := `UPDATE payments SET status = $1, settled_at = COALESCE($2, settled_at)
		WHERE id = $3 AND status NOT IN ($4, $5, $6)`

	tag, err := tx.Exec(ctx, query, status, settledAt, id,
		domain.PaymentStatusSettled, domain.PaymentStatusFailed, domain.PaymentStatusCancelled,
	)
	if err != nil {
		return classify("update payment status", err)
	}
	if tag.RowsAffected() == 0 {
		return storeerr.New(storeerr.KindConstraintViolation, "update payment status", fmt.Errorf("payment %s terminal or missing", id))
	}
	return nil
}
