package postgres

import (
	"context"
	"errors"
	"net"

	"agent-payment-gateway/pkg/storeerr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// classify maps a pgx/pgconn error into the closed storeerr kind set so
// callers never inspect driver error strings.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return storeerr.New(storeerr.KindNotFound, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" || pgErr.Code == "23514": // unique_violation, check_violation
			return storeerr.New(storeerr.KindConstraintViolation, op, err)
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08": // connection exception class
			return storeerr.New(storeerr.KindUnavailable, op, err)
		}
		return storeerr.New(storeerr.KindInternal, op, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		pgconn.Timeout(err) {
		return storeerr.New(storeerr.KindUnavailable, op, err)
	}

	return storeerr.New(storeerr.KindInternal, op, err)
}
