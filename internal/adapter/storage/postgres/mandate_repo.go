package postgres

import (
	"context"
	"errors"
	"fmt"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/pkg/storeerr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MandateRepo implements ports.MandateRepository.
type MandateRepo struct {
	pool Pool
}

// NewMandateRepo creates a new MandateRepo.
func NewMandateRepo(pool Pool) *MandateRepo {
	return &MandateRepo{pool: pool}
}

const mandateColumns = `id, agent_id, owner_kind, owner_id, max_amount, currency, status, expires_at, created_at`

func scanMandate(row pgx.Row) (*domain.Mandate, error) {
	m := &domain.Mandate{}
	err := row.Scan(
		&m.ID, &m.AgentID, &m.OwnerKind, &m.OwnerID, &m.MaxAmount,
		&m.Currency, &m.Status, &m.ExpiresAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create inserts a new mandate.
func (r *MandateRepo) Create(ctx context.Context, m *domain.Mandate) error {
	query := `INSERT INTO mandates (` + mandateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.AgentID, m.OwnerKind, m.OwnerID, m.MaxAmount,
		m.Currency, m.Status, m.ExpiresAt, m.CreatedAt,
	)
	if err != nil {
		return classify("insert mandate", err)
	}
	return nil
}

// GetByID fetches a mandate by its UUID.
func (r *MandateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Mandate, error) {
	query := `SELECT ` + mandateColumns + ` FROM mandates WHERE id = $1`

	m, err := scanMandate(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get mandate by id", err)
	}
	return m, nil
}

// UpdateStatus transitions a mandate's status.
func (r *MandateRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MandateStatus) error {
	query := `UPDATE mandates SET status = $1 WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return classify("update mandate status", err)
	}
	if tag.RowsAffected() == 0 {
		return storeerr.New(storeerr.KindNotFound, "update mandate status", fmt.Errorf("mandate %s", id))
	}
	return nil
}
