package handler

import (
	"time"

	"agent-payment-gateway/internal/adapter/http/dto"
	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/pkg/apperror"
	"agent-payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet and ledger endpoints.
type WalletHandler struct {
	ledgerSvc ports.LedgerService
	idemSvc   ports.IdempotencyService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledgerSvc ports.LedgerService, idemSvc ports.IdempotencyService) *WalletHandler {
	return &WalletHandler{ledgerSvc: ledgerSvc, idemSvc: idemSvc}
}

// GetBalance handles GET /api/v1/wallets/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	var q dto.WalletQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	wallet, err := h.ledgerSvc.GetWallet(c.Request.Context(), domain.OwnerKind(q.OwnerKind), q.OwnerID, q.Currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toWalletResponse(wallet))
}

// Topup handles POST /api/v1/wallets/topup.
func (h *WalletHandler) Topup(c *gin.Context) {
	var req dto.TopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	idempotent(c, h.idemSvc, 201, func() (interface{}, error) {
		result, err := h.ledgerSvc.Topup(c.Request.Context(), ports.TopupRequest{
			OwnerKind:      domain.OwnerKind(req.OwnerKind),
			OwnerID:        req.OwnerID,
			Amount:         req.Amount,
			Currency:       req.Currency,
			Method:         req.Method,
			IdempotencyKey: ledgerKey(c),
		})
		if err != nil {
			return nil, err
		}
		return toTransactionResponse(result), nil
	})
}

// Withdraw handles POST /api/v1/wallets/withdrawals.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	idempotent(c, h.idemSvc, 201, func() (interface{}, error) {
		result, err := h.ledgerSvc.Withdraw(c.Request.Context(), ports.WithdrawRequest{
			OwnerKind:      domain.OwnerKind(req.OwnerKind),
			OwnerID:        req.OwnerID,
			Amount:         req.Amount,
			Currency:       req.Currency,
			Method:         req.Method,
			IdempotencyKey: ledgerKey(c),
		})
		if err != nil {
			return nil, err
		}
		return toTransactionResponse(result), nil
	})
}

// RecordEarning handles POST /api/v1/earnings.
func (h *WalletHandler) RecordEarning(c *gin.Context) {
	var req dto.EarningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	var paymentID *uuid.UUID
	if req.PaymentID != nil {
		id, err := uuid.Parse(*req.PaymentID)
		if err != nil {
			response.Error(c, apperror.Validation("payment_id must be a UUID"))
			return
		}
		paymentID = &id
	}

	idempotent(c, h.idemSvc, 201, func() (interface{}, error) {
		result, err := h.ledgerSvc.RecordEarning(c.Request.Context(), ports.EarningRequest{
			DeveloperID:    req.DeveloperID,
			GrossAmount:    req.GrossAmount,
			FeeAmount:      req.FeeAmount,
			Currency:       req.Currency,
			PaymentID:      paymentID,
			IdempotencyKey: ledgerKey(c),
		})
		if err != nil {
			return nil, err
		}
		return toTransactionResponse(result), nil
	})
}

// ListTransactions handles GET /api/v1/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	var q dto.TransactionListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = 20
	}

	params := ports.TransactionListParams{Page: q.Page, PageSize: q.PageSize}
	if q.WalletID != "" {
		id, err := uuid.Parse(q.WalletID)
		if err != nil {
			response.Error(c, apperror.Validation("wallet_id must be a UUID"))
			return
		}
		params.WalletID = &id
	}
	if q.Status != "" {
		s := domain.TransactionStatus(q.Status)
		params.Status = &s
	}
	if q.Type != "" {
		t := domain.TransactionType(q.Type)
		params.Type = &t
	}

	txns, total, err := h.ledgerSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(&txns[i]))
	}
	response.OK(c, dto.TransactionListResponse{
		Transactions: items,
		Total:        total,
		Page:         q.Page,
		PageSize:     q.PageSize,
	})
}

func toWalletResponse(w *domain.Wallet) dto.WalletResponse {
	return dto.WalletResponse{
		ID:        w.ID.String(),
		OwnerKind: string(w.OwnerKind),
		OwnerID:   w.OwnerID,
		Currency:  w.Currency,
		Available: w.Available,
		Pending:   w.Pending,
	}
}

func toTransactionResponse(tx *domain.WalletTransaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:            tx.ID.String(),
		WalletID:      tx.WalletID.String(),
		Type:          string(tx.Type),
		Direction:     string(tx.Direction),
		Method:        tx.Method,
		Amount:        tx.Amount,
		FeeAmount:     tx.FeeAmount,
		Currency:      tx.Currency,
		Status:        string(tx.Status),
		BalanceAfter:  tx.BalanceAfter,
		FailureReason: tx.FailureReason,
		CreatedAt:     tx.CreatedAt.Format(time.RFC3339),
	}
	if tx.PaymentID != nil {
		s := tx.PaymentID.String()
		resp.PaymentID = &s
	}
	if tx.ProcessedAt != nil {
		s := tx.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &s
	}
	return resp
}
