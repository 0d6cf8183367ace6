package service

import (
	"context"
	"fmt"
	"time"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/pkg/apperror"
	"agent-payment-gateway/pkg/storeerr"

	"github.com/rs/zerolog"
)

const idempotencyCacheTTL = 24 * time.Hour

// IdempotencyServiceImpl implements ports.IdempotencyService. Redis is the
// fast path, the durable store the authority: a cache failure degrades to
// latency, a durable-store failure is a hard error because a financial
// mutation must never run unprotected.
type IdempotencyServiceImpl struct {
	repo  ports.IdempotencyRepository
	cache ports.IdempotencyCache
	log   zerolog.Logger
}

// NewIdempotencyService creates a new IdempotencyServiceImpl.
func NewIdempotencyService(
	repo ports.IdempotencyRepository,
	cache ports.IdempotencyCache,
	log zerolog.Logger,
) *IdempotencyServiceImpl {
	return &IdempotencyServiceImpl{repo: repo, cache: cache, log: log}
}

// CheckOrReserve returns the stored response for (route, key) if the
// operation already completed, or nil if the caller should proceed.
func (s *IdempotencyServiceImpl) CheckOrReserve(ctx context.Context, route, key string) (*ports.StoredResponse, error) {
	// Layer 1: Redis fast path (best-effort)
	cached, err := s.cache.Get(ctx, route, key)
	if err != nil {
		s.log.Warn().Err(err).Str("route", route).Str("key", key).
			Msg("redis idempotency check failed, falling through to durable store")
	}
	if cached != nil {
		return cached, nil
	}

	// Layer 2: durable store. Unavailability here is a hard stop.
	rec, err := s.repo.Get(ctx, route, key)
	if err != nil {
		if storeerr.Is(err, storeerr.KindUnavailable) {
			return nil, apperror.ErrStoreUnavailable(err)
		}
		return nil, apperror.InternalError(fmt.Errorf("durable idempotency check: %w", err))
	}
	if rec == nil {
		return nil, nil
	}

	resp := &ports.StoredResponse{StatusCode: rec.StatusCode, Body: rec.Response}

	// Backfill the cache so the next retry short-circuits (best-effort)
	if err := s.cache.Set(ctx, route, key, resp, idempotencyCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("route", route).Str("key", key).
			Msg("failed to backfill idempotency cache")
	}
	return resp, nil
}

// Commit persists the outcome. The insert is the serialization point:
// losing the race means another request with the same key completed first,
// and its response wins.
func (s *IdempotencyServiceImpl) Commit(ctx context.Context, route, key string, statusCode int, body []byte) (*ports.StoredResponse, error) {
	rec := &domain.IdempotencyRecord{
		Route:      route,
		Key:        key,
		StatusCode: statusCode,
		Response:   body,
		CreatedAt:  time.Now().UTC(),
	}

	err := s.repo.Insert(ctx, rec)
	if err != nil {
		if storeerr.Is(err, storeerr.KindConstraintViolation) {
			winner, getErr := s.repo.Get(ctx, route, key)
			if getErr != nil {
				return nil, apperror.InternalError(fmt.Errorf("fetch winning idempotency record: %w", getErr))
			}
			if winner == nil {
				return nil, apperror.InternalError(fmt.Errorf("idempotency insert lost race but winner absent: route=%s key=%s", route, key))
			}
			s.log.Info().Str("route", route).Str("key", key).
				Msg("idempotency insert lost race, serving winner's response")
			return &ports.StoredResponse{StatusCode: winner.StatusCode, Body: winner.Response}, nil
		}
		if storeerr.Is(err, storeerr.KindUnavailable) {
			return nil, apperror.ErrStoreUnavailable(err)
		}
		return nil, apperror.InternalError(fmt.Errorf("persist idempotency record: %w", err))
	}

	resp := &ports.StoredResponse{StatusCode: statusCode, Body: body}

	// Post-process: cache in Redis (best-effort)
	if err := s.cache.Set(ctx, route, key, resp, idempotencyCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("route", route).Str("key", key).
			Msg("failed to cache idempotency record in redis")
	}
	return resp, nil
}

// Reap removes records older than the retention window.
func (s *IdempotencyServiceImpl) Reap(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	n, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("reap idempotency records: %w", err))
	}
	if n > 0 {
		s.log.Info().Int64("removed", n).Time("cutoff", cutoff).Msg("reaped idempotency records")
	}
	return n, nil
}
