package service

import (
	"context"
	"time"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/pkg/apperror"
	"agent-payment-gateway/pkg/storeerr"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentServiceImpl implements ports.PaymentService. Opening a payment
// is the one place funds get reserved against a mandate: the reservation,
// the PENDING charge entry and the PENDING payment land in a single store
// transaction or not at all.
type PaymentServiceImpl struct {
	mandateRepo ports.MandateRepository
	paymentRepo ports.PaymentRepository
	walletRepo  ports.WalletRepository
	txnRepo     ports.TransactionRepository
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	mandateRepo ports.MandateRepository,
	paymentRepo ports.PaymentRepository,
	walletRepo ports.WalletRepository,
	txnRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		mandateRepo: mandateRepo,
		paymentRepo: paymentRepo,
		walletRepo:  walletRepo,
		txnRepo:     txnRepo,
		transactor:  transactor,
		log:         log,
	}
}

// IssueMandate creates an ACTIVE mandate for an agent.
func (s *PaymentServiceImpl) IssueMandate(ctx context.Context, req ports.IssueMandateRequest) (*domain.Mandate, error) {
	if req.MaxAmount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if !req.OwnerKind.Valid() {
		return nil, apperror.Validation("unknown owner kind")
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now().UTC()) {
		return nil, apperror.Validation("expiry must be in the future")
	}

	mandate := &domain.Mandate{
		ID:        uuid.New(),
		AgentID:   req.AgentID,
		OwnerKind: req.OwnerKind,
		OwnerID:   req.OwnerID,
		MaxAmount: req.MaxAmount,
		Currency:  req.Currency,
		Status:    domain.MandateStatusActive,
		ExpiresAt: req.ExpiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.mandateRepo.Create(ctx, mandate); err != nil {
		return nil, storeToAppError("create mandate", err)
	}

	s.log.Info().
		Str("mandate_id", mandate.ID.String()).
		Str("agent_id", mandate.AgentID).
		Int64("max_amount", mandate.MaxAmount).
		Msg("mandate issued")
	return mandate, nil
}

// GetMandate returns the mandate or a not-found error.
func (s *PaymentServiceImpl) GetMandate(ctx context.Context, id uuid.UUID) (*domain.Mandate, error) {
	mandate, err := s.mandateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeToAppError("get mandate", err)
	}
	if mandate == nil {
		return nil, apperror.ErrNotFound("mandate")
	}
	return mandate, nil
}

// RevokeMandate marks the mandate REVOKED. Revoking twice is a no-op.
func (s *PaymentServiceImpl) RevokeMandate(ctx context.Context, id uuid.UUID) (*domain.Mandate, error) {
	mandate, err := s.GetMandate(ctx, id)
	if err != nil {
		return nil, err
	}
	if mandate.Status == domain.MandateStatusRevoked {
		return mandate, nil
	}

	if err := s.mandateRepo.UpdateStatus(ctx, id, domain.MandateStatusRevoked); err != nil {
		return nil, storeToAppError("revoke mandate", err)
	}
	mandate.Status = domain.MandateStatusRevoked

	s.log.Info().Str("mandate_id", id.String()).Msg("mandate revoked")
	return mandate, nil
}

// CreatePayment validates the mandate, reserves funds on the paying
// wallet, and opens the PENDING charge transaction plus the PENDING
// payment atomically. A provider_ref seen before returns the existing
// payment unchanged.
func (s *PaymentServiceImpl) CreatePayment(ctx context.Context, req ports.CreatePaymentRequest) (*domain.Payment, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.ProviderRef == "" {
		return nil, apperror.Validation("provider_ref is required")
	}

	mandate, err := s.GetMandate(ctx, req.MandateID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if !mandate.UsableAt(now) {
		reason := "revoked"
		if mandate.Status == domain.MandateStatusActive {
			reason = "expired"
		}
		return nil, apperror.ErrMandateNotUsable(reason)
	}
	if req.Amount > mandate.MaxAmount {
		return nil, apperror.ErrMandateLimitExceeded()
	}

	// Duplicate provider_ref means the same external attempt; the first
	// payment stands.
	existing, err := s.paymentRepo.GetByProviderRef(ctx, req.ProviderRef)
	if err != nil {
		return nil, storeToAppError("provider_ref lookup", err)
	}
	if existing != nil {
		return existing, nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeToAppError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByOwnerForUpdate(ctx, dbTx, mandate.OwnerKind, mandate.OwnerID, mandate.Currency)
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
		ID:        uuid.New(),
		WalletID:  wallet.ID,
		Type:      domain.TransactionTypeExecutionCharge,
		Direction: domain.DirectionDebit,
		Amount:    req.Amount,
		Currency:  mandate.Currency,
		Status:    domain.TransactionStatusPending,
		Metadata:  map[string]string{"agent_id": mandate.AgentID, "mandate_id": mandate.ID.String()},
		CreatedAt: now,
	}

	payment := &domain.Payment{
		ID:            uuid.New(),
		MandateID:     mandate.ID,
		AgentID:       mandate.AgentID,
		Amount:        req.Amount,
		Currency:      mandate.Currency,
		ProviderRef:   req.ProviderRef,
		Status:        domain.PaymentStatusPending,
		TransactionID: &txn.ID,
		CreatedAt:     now,
	}
	txn.PaymentID = &payment.ID

	if err := s.txnRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, storeToAppError("create charge transaction", err)
	}
	if err := s.paymentRepo.Create(ctx, dbTx, payment); err != nil {
		if storeerr.Is(err, storeerr.KindConstraintViolation) {
			// Lost a provider_ref race; serve the winner.
			_ = dbTx.Rollback(ctx)
			winner, getErr := s.paymentRepo.GetByProviderRef(ctx, req.ProviderRef)
			if getErr == nil && winner != nil {
				return winner, nil
			}
		}
		return nil, storeToAppError("create payment", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, storeToAppError("commit tx", err)
	}

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("agent_id", payment.AgentID).
		Str("provider_ref", payment.ProviderRef).
		Int64("amount", payment.Amount).
		Msg("payment opened")
	return payment, nil
}

// GetPayment returns the payment or a not-found error.
func (s *PaymentServiceImpl) GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeToAppError("get payment", err)
	}
	if payment == nil {
		return nil, apperror.ErrNotFound("payment")
	}
	return payment, nil
}
