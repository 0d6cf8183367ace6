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

// appendAttempts bounds retries when two settlements for one agent race
// for the same chain index. The loser re-reads the tail and tries again.
const appendAttempts = 3

// ReceiptChainServiceImpl implements ports.ReceiptChainService. Each
// agent owns one hash chain; appends serialize on the locked chain tail
// so indices stay contiguous and every link commits to its predecessor.
type ReceiptChainServiceImpl struct {
	receiptRepo ports.ReceiptRepository
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewReceiptChainService creates a new ReceiptChainServiceImpl.
func NewReceiptChainService(
	receiptRepo ports.ReceiptRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *ReceiptChainServiceImpl {
	return &ReceiptChainServiceImpl{
		receiptRepo: receiptRepo,
		transactor:  transactor,
		log:         log,
	}
}

// AppendReceipt links a receipt for a settled payment onto its agent's
// chain. Idempotent per payment: a receipt already written for this
// payment is returned unchanged.
func (s *ReceiptChainServiceImpl) AppendReceipt(ctx context.Context, payment *domain.Payment) (*domain.Receipt, error) {
	if payment.Status != domain.PaymentStatusSettled || payment.SettledAt == nil {
		return nil, apperror.ErrInvalidState(fmt.Sprintf("payment %s is %s, receipts only follow settlement", payment.ID, payment.Status))
	}

	var lastErr error
	for attempt := 0; attempt < appendAttempts; attempt++ {
		receipt, err := s.appendOnce(ctx, payment)
		if err == nil {
			return receipt, nil
		}
		if !storeerr.Is(err, storeerr.KindConstraintViolation) {
			return nil, storeToAppError("append receipt", err)
		}
		// Chain index collision: a concurrent append won. Re-read the
		// tail and retry.
		lastErr = err
		s.log.Debug().
			Str("agent_id", payment.AgentID).
			Int("attempt", attempt+1).
			Msg("receipt chain index collision, retrying")
	}
	return nil, apperror.InternalError(fmt.Errorf("append receipt for agent %s: retries exhausted: %w", payment.AgentID, lastErr))
}

func (s *ReceiptChainServiceImpl) appendOnce(ctx context.Context, payment *domain.Payment) (*domain.Receipt, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Re-delivery check inside the transaction: one receipt per payment.
	existing, err := s.receiptRepo.GetByPaymentID(ctx, dbTx, payment.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	last, err := s.receiptRepo.GetLastForUpdate(ctx, dbTx, payment.AgentID)
	if err != nil {
		return nil, err
	}

	receipt := &domain.Receipt{
		ID:         uuid.New(),
		PaymentID:  payment.ID,
		AgentID:    payment.AgentID,
		ChainIndex: 0,
		MandateID:  payment.MandateID,
		Amount:     payment.Amount,
		Currency:   payment.Currency,
		SettledAt:  *payment.SettledAt,
		CreatedAt:  time.Now().UTC(),
	}
	if last != nil {
		receipt.ChainIndex = last.ChainIndex + 1
		prev := last.Hash
		receipt.PrevHash = &prev
	}
	receipt.Hash = receipt.ComputeHash()

	if err := s.receiptRepo.Create(ctx, dbTx, receipt); err != nil {
		return nil, err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("receipt_id", receipt.ID.String()).
		Str("agent_id", receipt.AgentID).
		Int64("chain_index", receipt.ChainIndex).
		Msg("receipt appended")
	return receipt, nil
}

// VerifyReceipts walks an ordered receipt list and checks index
// contiguity, predecessor linkage and every stored hash. Pure: callers
// may verify exported chains offline.
func VerifyReceipts(receipts []domain.Receipt) *ports.ChainVerification {
	result := &ports.ChainVerification{Valid: true, Length: int64(len(receipts))}

	fail := func(index int64, reason string) *ports.ChainVerification {
		result.Valid = false
		result.DivergentIndex = &index
		result.Reason = reason
		return result
	}

	for i := range receipts {
		r := &receipts[i]
		if r.ChainIndex != int64(i) {
			return fail(int64(i), fmt.Sprintf("expected chain index %d, found %d", i, r.ChainIndex))
		}
		if i == 0 {
			if r.PrevHash != nil {
				return fail(0, "genesis receipt carries a predecessor hash")
			}
		} else {
			if r.PrevHash == nil {
				return fail(int64(i), "missing predecessor hash")
			}
			if *r.PrevHash != receipts[i-1].Hash {
				return fail(int64(i), "predecessor hash does not match previous receipt")
			}
		}
		if r.ComputeHash() != r.Hash {
			return fail(int64(i), "stored hash does not match recomputed hash")
		}
	}
	return result
}

// VerifyChain loads and verifies one agent's chain. An empty chain is
// trivially valid.
func (s *ReceiptChainServiceImpl) VerifyChain(ctx context.Context, agentID string) (*ports.ChainVerification, error) {
	receipts, err := s.receiptRepo.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, storeToAppError("list receipts", err)
	}
	return VerifyReceipts(receipts), nil
}

// ExportChain returns the full chain plus its verification result for
// offline audit.
func (s *ReceiptChainServiceImpl) ExportChain(ctx context.Context, agentID string) (*ports.ChainExport, error) {
	receipts, err := s.receiptRepo.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, storeToAppError("list receipts", err)
	}
	if receipts == nil {
		receipts = []domain.Receipt{}
	}
	return &ports.ChainExport{
		AgentID:      agentID,
		Receipts:     receipts,
		Verification: *VerifyReceipts(receipts),
	}, nil
}
