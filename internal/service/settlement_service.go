package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/pkg/apperror"
	"agent-payment-gateway/pkg/storeerr"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// SettlementRetryPolicy bounds retries of an event application whose
// failure was transient (store unavailability). Exhausting it surfaces an
// error to the caller, which must not acknowledge the event.
type SettlementRetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultSettlementRetryPolicy suits webhook handlers that must answer
// within the provider's delivery timeout.
func DefaultSettlementRetryPolicy() SettlementRetryPolicy {
	return SettlementRetryPolicy{
		MaxTries:        5,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     30 * time.Second,
	}
}

// SettlementProcessorImpl implements ports.SettlementProcessor. Provider
// events apply exactly once per event id: the idempotency store replays
// the recorded outcome on re-delivery, and conflicting events against a
// terminal payment never mutate state.
type SettlementProcessorImpl struct {
	idemSvc     ports.IdempotencyService
	paymentRepo ports.PaymentRepository
	txnRepo     ports.TransactionRepository
	walletRepo  ports.WalletRepository
	chain       ports.ReceiptChainService
	transactor  ports.DBTransactor
	retry       SettlementRetryPolicy
	log         zerolog.Logger
}

// NewSettlementProcessor creates a new SettlementProcessorImpl.
func NewSettlementProcessor(
	idemSvc ports.IdempotencyService,
	paymentRepo ports.PaymentRepository,
	txnRepo ports.TransactionRepository,
	walletRepo ports.WalletRepository,
	chain ports.ReceiptChainService,
	transactor ports.DBTransactor,
	retry SettlementRetryPolicy,
	log zerolog.Logger,
) *SettlementProcessorImpl {
	return &SettlementProcessorImpl{
		idemSvc:     idemSvc,
		paymentRepo: paymentRepo,
		txnRepo:     txnRepo,
		walletRepo:  walletRepo,
		chain:       chain,
		transactor:  transactor,
		retry:       retry,
		log:         log,
	}
}

// eventRoute scopes event ids per provider in the idempotency store.
func eventRoute(provider string) string {
	return "webhook/" + provider
}

// isTransient reports whether err is a store-unavailability failure worth
// retrying in place.
func isTransient(err error) bool {
	if storeerr.Is(err, storeerr.KindUnavailable) {
		return true
	}
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && appErr.Code == "SYS_002"
}

// ProcessEvent applies one provider event and returns the outcome to
// acknowledge with. An error return means the event must NOT be
// acknowledged.
func (s *SettlementProcessorImpl) ProcessEvent(ctx context.Context, evt domain.SettlementEvent) (*domain.SettlementOutcome, error) {
	if evt.ID == "" || evt.Provider == "" {
		return nil, apperror.Validation("event id and provider are required")
	}
	route := eventRoute(evt.Provider)

	stored, err := s.idemSvc.CheckOrReserve(ctx, route, evt.ID)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		return decodeOutcome(stored.Body)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.retry.InitialInterval
	bo.MaxInterval = s.retry.MaxInterval

	outcome, err := backoff.Retry(ctx, func() (*domain.SettlementOutcome, error) {
		out, applyErr := s.apply(ctx, evt)
		if applyErr != nil {
			if isTransient(applyErr) {
				s.log.Warn().Err(applyErr).Str("event_id", evt.ID).
					Msg("transient failure applying settlement event, backing off")
				return nil, applyErr
			}
			return nil, backoff.Permanent(applyErr)
		}
		return out, nil
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(s.retry.MaxTries))
	if err != nil {
		// No outcome recorded, no ack: the provider's redelivery is the
		// fallback.
		return nil, err
	}

	body, err := json.Marshal(outcome)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal settlement outcome: %w", err))
	}
	final, err := s.idemSvc.Commit(ctx, route, evt.ID, 200, body)
	if err != nil {
		return nil, err
	}
	// Under a concurrent delivery the first recorded outcome wins.
	return decodeOutcome(final.Body)
}

func decodeOutcome(body []byte) (*domain.SettlementOutcome, error) {
	var out domain.SettlementOutcome
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("decode stored settlement outcome: %w", err))
	}
	return &out, nil
}

func (s *SettlementProcessorImpl) apply(ctx context.Context, evt domain.SettlementEvent) (*domain.SettlementOutcome, error) {
	switch evt.Type {
	case domain.EventPaymentSettled, domain.EventPaymentFailed, domain.EventPaymentCancelled:
	default:
		return &domain.SettlementOutcome{
			EventID: evt.ID,
			Status:  "ignored",
			Detail:  fmt.Sprintf("unknown event type %q", evt.Type),
		}, nil
	}

	payment, err := s.paymentRepo.GetByProviderRef(ctx, evt.ProviderRef)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return &domain.SettlementOutcome{
			EventID: evt.ID,
			Status:  "ignored",
			Detail:  fmt.Sprintf("no payment for provider_ref %q", evt.ProviderRef),
		}, nil
	}

	if evt.Type == domain.EventPaymentSettled {
		return s.applySettled(ctx, evt, payment)
	}

	target := domain.PaymentStatusFailed
	if evt.Type == domain.EventPaymentCancelled {
		target = domain.PaymentStatusCancelled
	}
	return s.applyAbort(ctx, evt, payment, target)
}

// applySettled transitions the payment to SETTLED, consumes the
// reservation, completes the charge entry and appends the receipt.
func (s *SettlementProcessorImpl) applySettled(ctx context.Context, evt domain.SettlementEvent, payment *domain.Payment) (*domain.SettlementOutcome, error) {
	if payment.Status.IsTerminal() && payment.Status != domain.PaymentStatusSettled {
		return conflictOutcome(evt, payment), nil
	}

	settledAt := evt.OccurredAt
	if settledAt.IsZero() {
		settledAt = time.Now().UTC()
	}

	if payment.Status != domain.PaymentStatusSettled {
		if err := s.settleInTx(ctx, evt, payment, settledAt); err != nil {
			return nil, err
		}
		payment.Status = domain.PaymentStatusSettled
		payment.SettledAt = &settledAt
	}
	// Payment already SETTLED on re-delivery still reaches the append:
	// it heals a crash between the settle transaction and the receipt
	// write, and is a no-op otherwise.
	if payment.SettledAt == nil {
		payment.SettledAt = &settledAt
	}

	receipt, err := s.chain.AppendReceipt(ctx, payment)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("event_id", evt.ID).
		Str("payment_id", payment.ID.String()).
		Str("receipt_id", receipt.ID.String()).
		Msg("settlement applied")
	return &domain.SettlementOutcome{
		EventID:   evt.ID,
		Status:    "applied",
		PaymentID: payment.ID.String(),
		ReceiptID: receipt.ID.String(),
	}, nil
}

func (s *SettlementProcessorImpl) settleInTx(ctx context.Context, evt domain.SettlementEvent, payment *domain.Payment, settledAt time.Time) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	locked, err := s.paymentRepo.GetByIDForUpdate(ctx, dbTx, payment.ID)
	if err != nil {
		return err
	}
	if locked == nil {
		return apperror.ErrNotFound("payment")
	}
	if locked.Status == domain.PaymentStatusSettled {
		// A concurrent delivery already settled it.
		return nil
	}
	if locked.Status.IsTerminal() {
		return apperror.ErrInvalidState(fmt.Sprintf("payment %s already %s", locked.ID, locked.Status))
	}

	if err := s.paymentRepo.UpdateStatus(ctx, dbTx, locked.ID, domain.PaymentStatusSettled, &settledAt); err != nil {
		return err
	}
	if err := s.resolveCharge(ctx, dbTx, locked, true, evt.Reason, settledAt); err != nil {
		return err
	}
	return dbTx.Commit(ctx)
}

// applyAbort transitions the payment to FAILED or CANCELLED and returns
// the reserved funds.
func (s *SettlementProcessorImpl) applyAbort(ctx context.Context, evt domain.SettlementEvent, payment *domain.Payment, target domain.PaymentStatus) (*domain.SettlementOutcome, error) {
	if payment.Status == target {
		return &domain.SettlementOutcome{
			EventID:   evt.ID,
			Status:    "noop",
			PaymentID: payment.ID.String(),
			Detail:    fmt.Sprintf("payment already %s", target),
		}, nil
	}
	if payment.Status.IsTerminal() {
		return conflictOutcome(evt, payment), nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	locked, err := s.paymentRepo.GetByIDForUpdate(ctx, dbTx, payment.ID)
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return nil, apperror.ErrNotFound("payment")
	}
	if locked.Status == target {
		return &domain.SettlementOutcome{
			EventID:   evt.ID,
			Status:    "noop",
			PaymentID: locked.ID.String(),
			Detail:    fmt.Sprintf("payment already %s", target),
		}, nil
	}
	if locked.Status.IsTerminal() {
		return conflictOutcome(evt, locked), nil
	}

	now := time.Now().UTC()
	if err := s.paymentRepo.UpdateStatus(ctx, dbTx, locked.ID, target, nil); err != nil {
		return nil, err
	}
	if err := s.resolveCharge(ctx, dbTx, locked, false, evt.Reason, now); err != nil {
		return nil, err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("event_id", evt.ID).
		Str("payment_id", locked.ID.String()).
		Str("status", string(target)).
		Msg("settlement abort applied")
	return &domain.SettlementOutcome{
		EventID:   evt.ID,
		Status:    "applied",
		PaymentID: locked.ID.String(),
	}, nil
}

// resolveCharge finishes the payment's charge entry and its reservation
// inside the caller's transaction. consume=true spends the pending funds,
// consume=false releases them back to available.
func (s *SettlementProcessorImpl) resolveCharge(ctx context.Context, dbTx pgx.Tx, payment *domain.Payment, consume bool, reason string, at time.Time) error {
	if payment.TransactionID == nil {
		return nil
	}

	txn, err := s.txnRepo.GetByIDForUpdate(ctx, dbTx, *payment.TransactionID)
	if err != nil {
		return err
	}
	if txn == nil || txn.IsTerminal() {
		return nil
	}

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, txn.WalletID)
	if err != nil {
		return err
	}
	if wallet == nil {
		return apperror.ErrNotFound("wallet")
	}
	if wallet.Pending < payment.Amount {
		return apperror.ErrInvalidState(fmt.Sprintf("pending %d below payment amount %d", wallet.Pending, payment.Amount))
	}

	available := wallet.Available
	pending := wallet.Pending - payment.Amount
	if !consume {
		available += payment.Amount
	}
	if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet.ID, available, pending, wallet.Version); err != nil {
		return err
	}

	if consume {
		return s.txnRepo.MarkCompleted(ctx, dbTx, txn.ID, available, at)
	}
	if reason == "" {
		reason = "settlement aborted by provider"
	}
	return s.txnRepo.MarkFailed(ctx, dbTx, txn.ID, reason, at)
}

func conflictOutcome(evt domain.SettlementEvent, payment *domain.Payment) *domain.SettlementOutcome {
	return &domain.SettlementOutcome{
		EventID:   evt.ID,
		Status:    "error",
		PaymentID: payment.ID.String(),
		Detail:    fmt.Sprintf("event %s conflicts with terminal payment status %s", evt.Type, payment.Status),
	}
}
