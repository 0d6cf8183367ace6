package service

import (
	"context"
	"fmt"
	"time"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/pkg/apperror"
	"agent-payment-gateway/pkg/storeerr"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PlatformOwnerID is the owner id of the singleton platform fee wallet.
const PlatformOwnerID = "platform"

// LedgerServiceImpl implements ports.LedgerService with pessimistic
// locking: every balance write happens on a row locked in the same store
// transaction, with preconditions re-checked under the lock.
type LedgerServiceImpl struct {
	walletRepo ports.WalletRepository
	txnRepo    ports.TransactionRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	walletRepo ports.WalletRepository,
	txnRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		transactor: transactor,
		log:        log,
	}
}

// storeToAppError maps a storage failure to the client-facing taxonomy.
func storeToAppError(op string, err error) *apperror.AppError {
	if storeerr.Is(err, storeerr.KindUnavailable) {
		return apperror.ErrStoreUnavailable(err)
	}
	return apperror.InternalError(fmt.Errorf("%s: %w", op, err))
}

// GetOrCreateWallet returns the wallet for (kind, ownerID, currency),
// creating it with zero balances on first use. Concurrent first uses are
// safe: the insert is conflict-free and the winner is re-fetched.
func (s *LedgerServiceImpl) GetOrCreateWallet(ctx context.Context, kind domain.OwnerKind, ownerID, currency string) (*domain.Wallet, error) {
	if !kind.Valid() {
		return nil, apperror.Validation("unknown owner kind")
	}

	wallet, err := s.walletRepo.GetByOwner(ctx, kind, ownerID, currency)
	if err != nil {
		return nil, storeToAppError("get wallet", err)
	}
	if wallet != nil {
		return wallet, nil
	}

	now := time.Now().UTC()
	wallet = &domain.Wallet{
		ID:        uuid.New(),
		OwnerKind: kind,
		OwnerID:   ownerID,
		Currency:  currency,
		Available: 0,
		Pending:   0,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.walletRepo.CreateIfAbsent(ctx, wallet); err != nil {
		return nil, storeToAppError("create wallet", err)
	}

	// Re-fetch: under a race another request may have won the insert.
	wallet, err = s.walletRepo.GetByOwner(ctx, kind, ownerID, currency)
	if err != nil {
		return nil, storeToAppError("refetch wallet", err)
	}
	if wallet == nil {
		return nil, apperror.InternalError(fmt.Errorf("wallet absent after create: %s/%s/%s", kind, ownerID, currency))
	}
	return wallet, nil
}

// GetWallet returns the wallet for (kind, ownerID, currency) or a
// not-found error.
func (s *LedgerServiceImpl) GetWallet(ctx context.Context, kind domain.OwnerKind, ownerID, currency string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByOwner(ctx, kind, ownerID, currency)
	if err != nil {
		return nil, storeToAppError("get wallet", err)
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	return wallet, nil
}

// balanceOp locks the wallet row, applies fn to the balances and writes
// the result guarded by the observed version.
func (s *LedgerServiceImpl) balanceOp(ctx context.Context, walletID uuid.UUID, fn func(w *domain.Wallet) (available, pending int64, appErr *apperror.AppError)) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return storeToAppError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, walletID)
	if err != nil {
		return storeToAppError("lock wallet", err)
	}
	if wallet == nil {
		return apperror.ErrNotFound("wallet")
	}

	available, pending, appErr := fn(wallet)
	if appErr != nil {
		return appErr
	}

	if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet.ID, available, pending, wallet.Version); err != nil {
		return storeToAppError("update balances", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return storeToAppError("commit tx", err)
	}
	return nil
}

// ReserveFunds moves amount from available to pending. Fails when
// available is short; never overdraws.
func (s *LedgerServiceImpl) ReserveFunds(ctx context.Context, walletID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return apperror.ErrInvalidAmount()
	}
	return s.balanceOp(ctx, walletID, func(w *domain.Wallet) (int64, int64, *apperror.AppError) {
		if w.Available < amount {
			return 0, 0, apperror.ErrInsufficientBalance()
		}
		return w.Available - amount, w.Pending + amount, nil
	})
}

// ReleaseFunds returns amount from pending to available, undoing a
// reservation.
func (s *LedgerServiceImpl) ReleaseFunds(ctx context.Context, walletID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return apperror.ErrInvalidAmount()
	}
	return s.balanceOp(ctx, walletID, func(w *domain.Wallet) (int64, int64, *apperror.AppError) {
		if w.Pending < amount {
			return 0, 0, apperror.ErrInvalidState(fmt.Sprintf("release %d exceeds pending %d", amount, w.Pending))
		}
		return w.Available + amount, w.Pending - amount, nil
	})
}

// CompleteDebit consumes amount from pending: the reserved funds leave
// the wallet for good.
func (s *LedgerServiceImpl) CompleteDebit(ctx context.Context, walletID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return apperror.ErrInvalidAmount()
	}
	return s.balanceOp(ctx, walletID, func(w *domain.Wallet) (int64, int64, *apperror.AppError) {
		if w.Pending < amount {
			return 0, 0, apperror.ErrInvalidState(fmt.Sprintf("debit %d exceeds pending %d", amount, w.Pending))
		}
		return w.Available, w.Pending - amount, nil
	})
}

// CreditWallet adds amount to available. Credits cannot overdraw, so no
// reservation phase is involved.
func (s *LedgerServiceImpl) CreditWallet(ctx context.Context, walletID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return apperror.ErrInvalidAmount()
	}
	return s.balanceOp(ctx, walletID, func(w *domain.Wallet) (int64, int64, *apperror.AppError) {
		return w.Available + amount, w.Pending, nil
	})
}

// CreateTransaction opens a PENDING ledger entry. If the idempotency key
// was already recorded, the existing entry is returned without side
// effects.
func (s *LedgerServiceImpl) CreateTransaction(ctx context.Context, input ports.CreateTransactionInput) (*domain.WalletTransaction, error) {
	if input.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	if input.IdempotencyKey != nil {
		existing, err := s.txnRepo.GetByIdempotencyKey(ctx, *input.IdempotencyKey)
		if err != nil {
			return nil, storeToAppError("idempotency key lookup", err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	txn := &domain.WalletTransaction{
		ID:                   uuid.New(),
		WalletID:             input.WalletID,
		CounterpartyWalletID: input.CounterpartyWalletID,
		PaymentID:            input.PaymentID,
		Type:                 input.Type,
		Direction:            input.Direction,
		Method:               input.Method,
		Amount:               input.Amount,
		FeeAmount:            input.FeeAmount,
		Currency:             input.Currency,
		Status:               domain.TransactionStatusPending,
		IdempotencyKey:       input.IdempotencyKey,
		Metadata:             input.Metadata,
		CreatedAt:            time.Now().UTC(),
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeToAppError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txnRepo.Create(ctx, dbTx, txn); err != nil {
		if storeerr.Is(err, storeerr.KindConstraintViolation) && input.IdempotencyKey != nil {
			// Lost an idempotency-key race; the winner's entry stands.
			_ = dbTx.Rollback(ctx)
			existing, getErr := s.txnRepo.GetByIdempotencyKey(ctx, *input.IdempotencyKey)
			if getErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, storeToAppError("create transaction", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, storeToAppError("commit tx", err)
	}
	return txn, nil
}

// CompleteTransaction flips a PENDING entry to COMPLETED and applies
// its balance effect: a DEBIT consumes the reservation from pending, a
// CREDIT lands in available.
func (s *LedgerServiceImpl) CompleteTransaction(ctx context.Context, id uuid.UUID) (*domain.WalletTransaction, error) {
	return s.finishTransaction(ctx, id, "", true)
}

// FailTransaction flips a PENDING entry to FAILED with the reason. A
// failed DEBIT releases its reservation back to available; a failed
// CREDIT never touched the balance, so nothing moves.
func (s *LedgerServiceImpl) FailTransaction(ctx context.Context, id uuid.UUID, reason string) (*domain.WalletTransaction, error) {
	return s.finishTransaction(ctx, id, reason, false)
}

// finishTransaction resolves a PENDING entry and its balance effect in
// one atomic unit: both rows are locked, the wallet mutation and the
// status flip commit together or not at all.
func (s *LedgerServiceImpl) finishTransaction(ctx context.Context, id uuid.UUID, reason string, complete bool) (*domain.WalletTransaction, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeToAppError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.txnRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, storeToAppError("lock transaction", err)
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	if txn.IsTerminal() {
		return nil, apperror.ErrInvalidState(fmt.Sprintf("transaction %s already %s", id, txn.Status))
	}

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, txn.WalletID)
	if err != nil {
		return nil, storeToAppError("lock wallet", err)
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	available, pending := wallet.Available, wallet.Pending
	switch {
	case txn.Direction == domain.DirectionDebit && complete:
		if pending < txn.Amount {
			return nil, apperror.ErrInvalidState(fmt.Sprintf("debit %d exceeds pending %d", txn.Amount, pending))
		}
		pending -= txn.Amount
	case txn.Direction == domain.DirectionDebit:
		if pending < txn.Amount {
			return nil, apperror.ErrInvalidState(fmt.Sprintf("release %d exceeds pending %d", txn.Amount, pending))
		}
		available += txn.Amount
		pending -= txn.Amount
	case complete:
		available += txn.Amount
	}
	if available != wallet.Available || pending != wallet.Pending {
		if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet.ID, available, pending, wallet.Version); err != nil {
			return nil, storeToAppError("update balances", err)
		}
	}

	now := time.Now().UTC()
	if complete {
		if err := s.txnRepo.MarkCompleted(ctx, dbTx, id, available, now); err != nil {
			return nil, storeToAppError("complete transaction", err)
		}
		txn.Status = domain.TransactionStatusCompleted
		txn.BalanceAfter = &available
	} else {
		if err := s.txnRepo.MarkFailed(ctx, dbTx, id, reason, now); err != nil {
			return nil, storeToAppError("fail transaction", err)
		}
		txn.Status = domain.TransactionStatusFailed
		txn.FailureReason = &reason
	}
	txn.ProcessedAt = &now

	if err := dbTx.Commit(ctx); err != nil {
		return nil, storeToAppError("commit tx", err)
	}
	return txn, nil
}

// Topup credits the owner's wallet and records a COMPLETED credit entry
// in one atomic unit.
func (s *LedgerServiceImpl) Topup(ctx context.Context, req ports.TopupRequest) (*domain.WalletTransaction, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	if req.IdempotencyKey != nil {
		existing, err := s.txnRepo.GetByIdempotencyKey(ctx, *req.IdempotencyKey)
		if err != nil {
			return nil, storeToAppError("idempotency key lookup", err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	wallet, err := s.GetOrCreateWallet(ctx, req.OwnerKind, req.OwnerID, req.Currency)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeToAppError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	locked, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, wallet.ID)
	if err != nil {
		return nil, storeToAppError("lock wallet", err)
	}
	if locked == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	newAvailable := locked.Available + req.Amount
	if err := s.walletRepo.UpdateBalances(ctx, dbTx, locked.ID, newAvailable, locked.Pending, locked.Version); err != nil {
		return nil, storeToAppError("update balances", err)
	}

	now := time.Now().UTC()
	txn := &domain.WalletTransaction{
		ID:             uuid.New(),
		WalletID:       locked.ID,
		Type:           domain.TransactionTypeTopup,
		Direction:      domain.DirectionCredit,
		Method:         req.Method,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Status:         domain.TransactionStatusCompleted,
		BalanceAfter:   &newAvailable,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      now,
		ProcessedAt:    &now,
	}
	if err := s.txnRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, storeToAppError("create topup transaction", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, storeToAppError("commit tx", err)
	}

	s.log.Info().
		Str("txn_id", txn.ID.String()).
		Str("wallet_id", locked.ID.String()).
		Int64("amount", req.Amount).
		Msg("topup completed")
	return txn, nil
}

// Withdraw reserves funds and opens a PENDING withdrawal debit. The
// payout outcome completes or fails it later.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, req ports.WithdrawRequest) (*domain.WalletTransaction, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	if req.IdempotencyKey != nil {
		existing, err := s.txnRepo.GetByIdempotencyKey(ctx, *req.IdempotencyKey)
		if err != nil {
			return nil, storeToAppError("idempotency key lookup", err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeToAppError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByOwnerForUpdate(ctx, dbTx, req.OwnerKind, req.OwnerID, req.Currency)
	if err != nil {
		return nil, storeToAppError("lock wallet", err)
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	if wallet.Available < req.Amount {
		return nil, apperror.ErrInsufficientBalance()
	}

	if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet.ID,
		wallet.Available-req.Amount, wallet.Pending+req.Amount, wallet.Version); err != nil {
		return nil, storeToAppError("reserve funds", err)
	}

	txn := &domain.WalletTransaction{
		ID:             uuid.New(),
		WalletID:       wallet.ID,
		Type:           domain.TransactionTypeWithdrawal,
		Direction:      domain.DirectionDebit,
		Method:         req.Method,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Status:         domain.TransactionStatusPending,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.txnRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, storeToAppError("create withdrawal transaction", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, storeToAppError("commit tx", err)
	}

	s.log.Info().
		Str("txn_id", txn.ID.String()).
		Str("wallet_id", wallet.ID.String()).
		Int64("amount", req.Amount).
		Msg("withdrawal opened")
	return txn, nil
}

// RecordEarning credits the developer wallet with gross minus fee and
// the platform wallet with the fee, both as COMPLETED credits in one
// atomic unit. Returns the developer's earning entry.
func (s *LedgerServiceImpl) RecordEarning(ctx context.Context, req ports.EarningRequest) (*domain.WalletTransaction, error) {
	if req.GrossAmount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.FeeAmount < 0 || req.FeeAmount >= req.GrossAmount {
		return nil, apperror.Validation("fee must be non-negative and below the gross amount")
	}

	if req.IdempotencyKey != nil {
		existing, err := s.txnRepo.GetByIdempotencyKey(ctx, *req.IdempotencyKey)
		if err != nil {
			return nil, storeToAppError("idempotency key lookup", err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	devWallet, err := s.GetOrCreateWallet(ctx, domain.OwnerKindDeveloper, req.DeveloperID, req.Currency)
	if err != nil {
		return nil, err
	}
	platformWallet, err := s.GetOrCreateWallet(ctx, domain.OwnerKindPlatform, PlatformOwnerID, req.Currency)
	if err != nil {
		return nil, err
	}

	netAmount := req.GrossAmount - req.FeeAmount
	now := time.Now().UTC()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeToAppError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock order: developer wallet before the platform wallet. The
	// platform wallet is always locked last, so earners cannot deadlock
	// against each other.
	devLocked, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, devWallet.ID)
	if err != nil {
		return nil, storeToAppError("lock developer wallet", err)
	}
	if devLocked == nil {
		return nil, apperror.ErrNotFound("developer wallet")
	}

	devAvailable := devLocked.Available + netAmount
	if err := s.walletRepo.UpdateBalances(ctx, dbTx, devLocked.ID, devAvailable, devLocked.Pending, devLocked.Version); err != nil {
		return nil, storeToAppError("credit developer wallet", err)
	}

	earning := &domain.WalletTransaction{
		ID:                   uuid.New(),
		WalletID:             devLocked.ID,
		CounterpartyWalletID: &platformWallet.ID,
		PaymentID:            req.PaymentID,
		Type:                 domain.TransactionTypeExecutionEarning,
		Direction:            domain.DirectionCredit,
		Amount:               netAmount,
		FeeAmount:            req.FeeAmount,
		Currency:             req.Currency,
		Status:               domain.TransactionStatusCompleted,
		BalanceAfter:         &devAvailable,
		IdempotencyKey:       req.IdempotencyKey,
		CreatedAt:            now,
		ProcessedAt:          &now,
	}
	if err := s.txnRepo.Create(ctx, dbTx, earning); err != nil {
		return nil, storeToAppError("create earning transaction", err)
	}

	if req.FeeAmount > 0 {
		platformLocked, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, platformWallet.ID)
		if err != nil {
			return nil, storeToAppError("lock platform wallet", err)
		}
		if platformLocked == nil {
			return nil, apperror.ErrNotFound("platform wallet")
		}

		platformAvailable := platformLocked.Available + req.FeeAmount
		if err := s.walletRepo.UpdateBalances(ctx, dbTx, platformLocked.ID, platformAvailable, platformLocked.Pending, platformLocked.Version); err != nil {
			return nil, storeToAppError("credit platform wallet", err)
		}

		fee := &domain.WalletTransaction{
			ID:                   uuid.New(),
			WalletID:             platformLocked.ID,
			CounterpartyWalletID: &devLocked.ID,
			PaymentID:            req.PaymentID,
			Type:                 domain.TransactionTypePlatformFee,
			Direction:            domain.DirectionCredit,
			Amount:               req.FeeAmount,
			Currency:             req.Currency,
			Status:               domain.TransactionStatusCompleted,
			BalanceAfter:         &platformAvailable,
			CreatedAt:            now,
			ProcessedAt:          &now,
		}
		if err := s.txnRepo.Create(ctx, dbTx, fee); err != nil {
			return nil, storeToAppError("create platform fee transaction", err)
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, storeToAppError("commit tx", err)
	}

	s.log.Info().
		Str("txn_id", earning.ID.String()).
		Str("developer_id", req.DeveloperID).
		Int64("net", netAmount).
		Int64("fee", req.FeeAmount).
		Msg("earning recorded")
	return earning, nil
}

// ListTransactions returns filtered, paginated ledger entries.
func (s *LedgerServiceImpl) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.WalletTransaction, int64, error) {
	result, total, err := s.txnRepo.List(ctx, params)
	if err != nil {
		return nil, 0, storeToAppError("list transactions", err)
	}
	return result, total, nil
}
