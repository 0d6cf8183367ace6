package postgres

import (
	"context"
	"testing"
	"time"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/pkg/storeerr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet() *domain.Wallet {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Wallet{
		ID:        uuid.New(),
		OwnerKind: domain.OwnerKindUser,
		OwnerID:   "user-42",
		Currency:  "USD",
		Available: 1000,
		Pending:   0,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func walletCols() []string {
	return []string{"id", "owner_kind", "owner_id", "currency", "available", "pending", "version", "created_at", "updated_at"}
}

func walletRow(w *domain.Wallet) *pgxmock.Rows {
	return pgxmock.NewRows(walletCols()).AddRow(
		w.ID, w.OwnerKind, w.OwnerID, w.Currency,
		w.Available, w.Pending, w.Version, w.CreatedAt, w.UpdatedAt,
	)
}

func TestWalletRepo_CreateIfAbsent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet()

	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(w.ID, w.OwnerKind, w.OwnerID, w.Currency,
			w.Available, w.Pending, w.Version, w.CreatedAt, w.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.CreateIfAbsent(context.Background(), w)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_CreateIfAbsent_LostRaceIsSilent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet()

	// ON CONFLICT DO NOTHING: zero rows affected, no error.
	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(w.ID, w.OwnerKind, w.OwnerID, w.Currency,
			w.Available, w.Pending, w.Version, w.CreatedAt, w.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err = repo.CreateIfAbsent(context.Background(), w)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByOwner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet()

	mock.ExpectQuery("SELECT .+ FROM wallets").
		WithArgs(w.OwnerKind, w.OwnerID, w.Currency).
		WillReturnRows(walletRow(w))

	result, err := repo.GetByOwner(context.Background(), w.OwnerKind, w.OwnerID, w.Currency)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.ID, result.ID)
	assert.Equal(t, int64(1000), result.Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByOwner_Absent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM wallets").
		WithArgs(domain.OwnerKindUser, "nobody", "USD").
		WillReturnRows(pgxmock.NewRows(walletCols()))

	result, err := repo.GetByOwner(context.Background(), domain.OwnerKindUser, "nobody", "USD")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(w.ID).
		WillReturnRows(walletRow(w))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByIDForUpdate(context.Background(), tx, w.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalances(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	walletID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets").
		WithArgs(int64(600), int64(400), walletID, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalances(context.Background(), tx, walletID, 600, 400, 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalances_VersionMismatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	walletID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets").
		WithArgs(int64(600), int64(400), walletID, int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalances(context.Background(), tx, walletID, 600, 400, 7)
	require.Error(t, err)
	assert.True(t, storeerr.Is(err, storeerr.KindConstraintViolation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_CreateIfAbsent_ClassifiesUnavailable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet()

	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(w.ID, w.OwnerKind, w.OwnerID, w.Currency,
								w.Available, w.Pending, w.Version, w.CreatedAt, w.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "08006"}) // connection_failure

	err = repo.CreateIfAbsent(context.Background(), w)
	require.Error(t, err)
	assert.True(t, storeerr.Is(err, storeerr.KindUnavailable))
}
