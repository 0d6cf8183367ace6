package service

import (
	"context"
	"testing"
	"time"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/internal/core/ports/mocks"
	"agent-payment-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, expectedCode, appErr.Code)
}

type ledgerTestDeps struct {
	svc        *LedgerServiceImpl
	walletRepo *mocks.MockWalletRepository
	txnRepo    *mocks.MockTransactionRepository
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		txnRepo:    mocks.NewMockTransactionRepository(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewLedgerService(d.walletRepo, d.txnRepo, d.transactor, zerolog.Nop())
	return d
}

func testWallet(available, pending int64) *domain.Wallet {
	now := time.Now().UTC()
	return &domain.Wallet{
		ID:        uuid.New(),
		OwnerKind: domain.OwnerKindUser,
		OwnerID:   "user-1",
		Currency:  "USD",
		Available: available,
		Pending:   pending,
		Version:   3,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ==================== Balance Primitives ====================

func TestLedgerService_ReserveFunds_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	wallet := testWallet(1000, 0)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, wallet.ID, int64(600), int64(400), wallet.Version).Return(nil)

	err := d.svc.ReserveFunds(ctx, wallet.ID, 400)
	assert.NoError(t, err)
}

func TestLedgerService_ReserveFunds_Insufficient(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	wallet := testWallet(100, 0)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	// No UpdateBalances: the precondition fails under the lock.

	err := d.svc.ReserveFunds(ctx, wallet.ID, 400)
	require.Error(t, err)
	assertAppError(t, err, "WAL_001")
}

func TestLedgerService_ReserveFunds_InvalidAmount(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	err := d.svc.ReserveFunds(context.Background(), uuid.New(), 0)
	require.Error(t, err)
	assertAppError(t, err, "WAL_002")

	err = d.svc.ReserveFunds(context.Background(), uuid.New(), -5)
	require.Error(t, err)
	assertAppError(t, err, "WAL_002")
}

func TestLedgerService_ReleaseFunds_ExceedsPending(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	wallet := testWallet(500, 100)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)

	err := d.svc.ReleaseFunds(ctx, wallet.ID, 200)
	require.Error(t, err)
	assertAppError(t, err, "TXN_001")
}

func TestLedgerService_CompleteDebit_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	wallet := testWallet(500, 300)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	// Available untouched, pending consumed.
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, wallet.ID, int64(500), int64(0), wallet.Version).Return(nil)

	err := d.svc.CompleteDebit(ctx, wallet.ID, 300)
	assert.NoError(t, err)
}

func TestLedgerService_CreditWallet_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	wallet := testWallet(50, 20)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, wallet.ID, int64(150), int64(20), wallet.Version).Return(nil)

	err := d.svc.CreditWallet(ctx, wallet.ID, 100)
	assert.NoError(t, err)
}

func TestLedgerService_BalanceOp_WalletNotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	walletID := uuid.New()

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(nil, nil)

	err := d.svc.CreditWallet(ctx, walletID, 100)
	require.Error(t, err)
	assertAppError(t, err, "PAY_001")
}

// ==================== Wallet Lifecycle ====================

func TestLedgerService_GetOrCreateWallet_CreatesOnFirstUse(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	created := testWallet(0, 0)

	d.walletRepo.EXPECT().GetByOwner(ctx, domain.OwnerKindUser, "user-1", "USD").Return(nil, nil)
	d.walletRepo.EXPECT().CreateIfAbsent(ctx, gomock.Any()).Return(nil)
	d.walletRepo.EXPECT().GetByOwner(ctx, domain.OwnerKindUser, "user-1", "USD").Return(created, nil)

	wallet, err := d.svc.GetOrCreateWallet(ctx, domain.OwnerKindUser, "user-1", "USD")
	require.NoError(t, err)
	assert.Equal(t, created.ID, wallet.ID)
}

func TestLedgerService_GetOrCreateWallet_UnknownKind(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.GetOrCreateWallet(context.Background(), domain.OwnerKind("ALIEN"), "x", "USD")
	require.Error(t, err)
	assertAppError(t, err, "VAL_001")
}

// ==================== Composite Flows ====================

func TestLedgerService_Topup_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	wallet := testWallet(100, 0)
	key := "topup-key-1"

	d.txnRepo.EXPECT().GetByIdempotencyKey(ctx, key).Return(nil, nil)
	d.walletRepo.EXPECT().GetByOwner(ctx, domain.OwnerKindUser, "user-1", "USD").Return(wallet, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, wallet.ID, int64(600), int64(0), wallet.Version).Return(nil)
	d.txnRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	txn, err := d.svc.Topup(ctx, ports.TopupRequest{
		OwnerKind:      domain.OwnerKindUser,
		OwnerID:        "user-1",
		Amount:         500,
		Currency:       "USD",
		Method:         "card",
		IdempotencyKey: &key,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeTopup, txn.Type)
	assert.Equal(t, domain.DirectionCredit, txn.Direction)
	assert.Equal(t, domain.TransactionStatusCompleted, txn.Status)
	require.NotNil(t, txn.BalanceAfter)
	assert.Equal(t, int64(600), *txn.BalanceAfter)
}

func TestLedgerService_Topup_IdempotentReplay(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	key := "topup-key-2"
	existing := &domain.WalletTransaction{
		ID:             uuid.New(),
		Type:           domain.TransactionTypeTopup,
		Status:         domain.TransactionStatusCompleted,
		IdempotencyKey: &key,
	}

	// Replay: no wallet lookup, no transaction, no mutation.
	d.txnRepo.EXPECT().GetByIdempotencyKey(ctx, key).Return(existing, nil)

	txn, err := d.svc.Topup(ctx, ports.TopupRequest{
		OwnerKind:      domain.OwnerKindUser,
		OwnerID:        "user-1",
		Amount:         500,
		Currency:       "USD",
		IdempotencyKey: &key,
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, txn.ID)
}

func TestLedgerService_Withdraw_Insufficient(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	wallet := testWallet(100, 0)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByOwnerForUpdate(ctx, tx, domain.OwnerKindUser, "user-1", "USD").Return(wallet, nil)

	_, err := d.svc.Withdraw(ctx, ports.WithdrawRequest{
		OwnerKind: domain.OwnerKindUser,
		OwnerID:   "user-1",
		Amount:    500,
		Currency:  "USD",
	})
	require.Error(t, err)
	assertAppError(t, err, "WAL_001")
}

func TestLedgerService_Withdraw_OpensPendingDebit(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	wallet := testWallet(1000, 0)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByOwnerForUpdate(ctx, tx, domain.OwnerKindUser, "user-1", "USD").Return(wallet, nil)
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, wallet.ID, int64(700), int64(300), wallet.Version).Return(nil)
	d.txnRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	txn, err := d.svc.Withdraw(ctx, ports.WithdrawRequest{
		OwnerKind: domain.OwnerKindUser,
		OwnerID:   "user-1",
		Amount:    300,
		Currency:  "USD",
		Method:    "bank",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeWithdrawal, txn.Type)
	assert.Equal(t, domain.TransactionStatusPending, txn.Status)
	assert.Nil(t, txn.BalanceAfter)
}

func TestLedgerService_RecordEarning_FeeValidation(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	// Fee swallowing the whole gross is rejected.
	_, err := d.svc.RecordEarning(context.Background(), ports.EarningRequest{
		DeveloperID: "dev-1",
		GrossAmount: 100,
		FeeAmount:   100,
		Currency:    "USD",
	})
	require.Error(t, err)
	assertAppError(t, err, "VAL_001")

	_, err = d.svc.RecordEarning(context.Background(), ports.EarningRequest{
		DeveloperID: "dev-1",
		GrossAmount: 100,
		FeeAmount:   -1,
		Currency:    "USD",
	})
	require.Error(t, err)
	assertAppError(t, err, "VAL_001")
}

func TestLedgerService_RecordEarning_SplitsFeeToPlatform(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	devWallet := testWallet(0, 0)
	devWallet.OwnerKind = domain.OwnerKindDeveloper
	devWallet.OwnerID = "dev-1"

	platformWallet := testWallet(1000, 0)
	platformWallet.OwnerKind = domain.OwnerKindPlatform
	platformWallet.OwnerID = PlatformOwnerID

	d.walletRepo.EXPECT().GetByOwner(ctx, domain.OwnerKindDeveloper, "dev-1", "USD").Return(devWallet, nil)
	d.walletRepo.EXPECT().GetByOwner(ctx, domain.OwnerKindPlatform, PlatformOwnerID, "USD").Return(platformWallet, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)

	// Developer credited with the net.
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, devWallet.ID).Return(devWallet, nil)
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, devWallet.ID, int64(850), int64(0), devWallet.Version).Return(nil)

	var createdTypes []domain.TransactionType
	d.txnRepo.EXPECT().Create(ctx, tx, gomock.Any()).
		Do(func(_ context.Context, _ pgx.Tx, txn *domain.WalletTransaction) {
			createdTypes = append(createdTypes, txn.Type)
		}).Return(nil).Times(2)

	// Platform credited with the fee.
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, platformWallet.ID).Return(platformWallet, nil)
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, platformWallet.ID, int64(1150), int64(0), platformWallet.Version).Return(nil)

	earning, err := d.svc.RecordEarning(ctx, ports.EarningRequest{
		DeveloperID: "dev-1",
		GrossAmount: 1000,
		FeeAmount:   150,
		Currency:    "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(850), earning.Amount)
	assert.Equal(t, int64(150), earning.FeeAmount)
	assert.Equal(t, domain.TransactionStatusCompleted, earning.Status)
	assert.ElementsMatch(t,
		[]domain.TransactionType{domain.TransactionTypeExecutionEarning, domain.TransactionTypePlatformFee},
		createdTypes)
}

// ==================== Transaction State Machine ====================

func TestLedgerService_CompleteTransaction_AlreadyTerminal(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	id := uuid.New()

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txnRepo.EXPECT().GetByIDForUpdate(ctx, tx, id).Return(&domain.WalletTransaction{
		ID:     id,
		Status: domain.TransactionStatusFailed,
	}, nil)

	_, err := d.svc.CompleteTransaction(ctx, id)
	require.Error(t, err)
	assertAppError(t, err, "TXN_001")
}

func TestLedgerService_FailTransaction_ReleasesDebitReservation(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	id := uuid.New()
	wallet := testWallet(600, 400)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txnRepo.EXPECT().GetByIDForUpdate(ctx, tx, id).Return(&domain.WalletTransaction{
		ID:        id,
		WalletID:  wallet.ID,
		Direction: domain.DirectionDebit,
		Amount:    400,
		Status:    domain.TransactionStatusPending,
	}, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	// The reservation flows back from pending to available.
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, wallet.ID, int64(1000), int64(0), wallet.Version).Return(nil)
	d.txnRepo.EXPECT().MarkFailed(ctx, tx, id, "payout rejected", gomock.Any()).Return(nil)

	txn, err := d.svc.FailTransaction(ctx, id, "payout rejected")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusFailed, txn.Status)
	require.NotNil(t, txn.FailureReason)
	assert.Equal(t, "payout rejected", *txn.FailureReason)
}

func TestLedgerService_CompleteTransaction_ConsumesPendingDebit(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	id := uuid.New()
	wallet := testWallet(600, 400)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txnRepo.EXPECT().GetByIDForUpdate(ctx, tx, id).Return(&domain.WalletTransaction{
		ID:        id,
		WalletID:  wallet.ID,
		Direction: domain.DirectionDebit,
		Amount:    400,
		Status:    domain.TransactionStatusPending,
	}, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	// The reserved funds leave the wallet for good.
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, wallet.ID, int64(600), int64(0), wallet.Version).Return(nil)
	d.txnRepo.EXPECT().MarkCompleted(ctx, tx, id, int64(600), gomock.Any()).Return(nil)

	txn, err := d.svc.CompleteTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, txn.Status)
	require.NotNil(t, txn.BalanceAfter)
	assert.Equal(t, int64(600), *txn.BalanceAfter)
}

func TestLedgerService_CompleteTransaction_CreditLandsInAvailable(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	id := uuid.New()
	wallet := testWallet(100, 0)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txnRepo.EXPECT().GetByIDForUpdate(ctx, tx, id).Return(&domain.WalletTransaction{
		ID:        id,
		WalletID:  wallet.ID,
		Direction: domain.DirectionCredit,
		Amount:    250,
		Status:    domain.TransactionStatusPending,
	}, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, wallet.ID, int64(350), int64(0), wallet.Version).Return(nil)
	d.txnRepo.EXPECT().MarkCompleted(ctx, tx, id, int64(350), gomock.Any()).Return(nil)

	txn, err := d.svc.CompleteTransaction(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, txn.BalanceAfter)
	assert.Equal(t, int64(350), *txn.BalanceAfter)
}

func TestLedgerService_CompleteTransaction_DebitExceedsPending(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	id := uuid.New()
	wallet := testWallet(1000, 100)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txnRepo.EXPECT().GetByIDForUpdate(ctx, tx, id).Return(&domain.WalletTransaction{
		ID:        id,
		WalletID:  wallet.ID,
		Direction: domain.DirectionDebit,
		Amount:    400,
		Status:    domain.TransactionStatusPending,
	}, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	// No balance write, no status flip.

	_, err := d.svc.CompleteTransaction(ctx, id)
	require.Error(t, err)
	assertAppError(t, err, "TXN_001")
}
