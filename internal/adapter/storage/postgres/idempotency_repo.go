package postgres

import (
	"context"
	"errors"
	"time"

	"agent-payment-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// IdempotencyRepo implements ports.IdempotencyRepository. The primary key
// on (route, key) makes the insert the serialization point: under a race
// exactly one writer lands and the loser observes a constraint violation.
type IdempotencyRepo struct {
	pool Pool
}

// NewIdempotencyRepo creates a new IdempotencyRepo.
func NewIdempotencyRepo(pool Pool) *IdempotencyRepo {
	return &IdempotencyRepo{pool: pool}
}

// Insert persists an idempotency record. A (route, key) collision surfaces
// as storeerr.KindConstraintViolation.
func (r *IdempotencyRepo) Insert(ctx context.Context, rec *domain.IdempotencyRecord) error {
	query := `INSERT INTO idempotency_records (route, key, status_code, response, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, rec.Route, rec.Key, rec.StatusCode, rec.Response, rec.CreatedAt)
	if err != nil {
		return classify("insert idempotency record", err)
	}
	return nil
}

// Get fetches an idempotency record. Returns nil, nil on a miss.
func (r *IdempotencyRepo) Get(ctx context.Context, route, key string) (*domain.IdempotencyRecord, error) {
	query := `SELECT route, key, status_code, response, created_at
		FROM idempotency_records WHERE route = $1 AND key = $2`

	rec := &domain.IdempotencyRecord{}
	err := r.pool.QueryRow(ctx, query, route, key).Scan(
		&rec.Route, &rec.Key, &rec.StatusCode, &rec.Response, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get idempotency record", err)
	}
	return rec, nil
}

// DeleteOlderThan removes records created before the cutoff. Safe for
// in-flight requests because the retention window exceeds any plausible
// client retry interval.
func (r *IdempotencyRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM idempotency_records WHERE created_at < $1`

	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, classify("reap idempotency records", err)
	}
	return tag.RowsAffected(), nil
}
