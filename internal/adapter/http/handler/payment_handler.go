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

// PaymentHandler handles mandate and payment endpoints.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
	idemSvc    ports.IdempotencyService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService, idemSvc ports.IdempotencyService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc, idemSvc: idemSvc}
}

// IssueMandate handles POST /api/v1/mandates.
func (h *PaymentHandler) IssueMandate(c *gin.Context) {
	var req dto.IssueMandateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		t := time.Unix(*req.ExpiresAt, 0).UTC()
		expiresAt = &t
	}

	idempotent(c, h.idemSvc, 201, func() (interface{}, error) {
		mandate, err := h.paymentSvc.IssueMandate(c.Request.Context(), ports.IssueMandateRequest{
			AgentID:   req.AgentID,
			OwnerKind: domain.OwnerKind(req.OwnerKind),
			OwnerID:   req.OwnerID,
			MaxAmount: req.MaxAmount,
			Currency:  req.Currency,
			ExpiresAt: expiresAt,
		})
		if err != nil {
			return nil, err
		}
		return toMandateResponse(mandate), nil
	})
}

// GetMandate handles GET /api/v1/mandates/:id.
func (h *PaymentHandler) GetMandate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("mandate id must be a UUID"))
		return
	}

	mandate, err := h.paymentSvc.GetMandate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toMandateResponse(mandate))
}

// RevokeMandate handles POST /api/v1/mandates/:id/revoke.
func (h *PaymentHandler) RevokeMandate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("mandate id must be a UUID"))
		return
	}

	idempotent(c, h.idemSvc, 200, func() (interface{}, error) {
		mandate, err := h.paymentSvc.RevokeMandate(c.Request.Context(), id)
		if err != nil {
			return nil, err
		}
		return toMandateResponse(mandate), nil
	})
}

// CreatePayment handles POST /api/v1/payments.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	mandateID, err := uuid.Parse(req.MandateID)
	if err != nil {
		response.Error(c, apperror.Validation("mandate_id must be a UUID"))
		return
	}

	idempotent(c, h.idemSvc, 201, func() (interface{}, error) {
		payment, err := h.paymentSvc.CreatePayment(c.Request.Context(), ports.CreatePaymentRequest{
			MandateID:   mandateID,
			Amount:      req.Amount,
			ProviderRef: req.ProviderRef,
		})
		if err != nil {
			return nil, err
		}
		return toPaymentResponse(payment), nil
	})
}

// GetPayment handles GET /api/v1/payments/:id.
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("payment id must be a UUID"))
		return
	}

	payment, err := h.paymentSvc.GetPayment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toPaymentResponse(payment))
}

func toMandateResponse(m *domain.Mandate) dto.MandateResponse {
	resp := dto.MandateResponse{
		ID:        m.ID.String(),
		AgentID:   m.AgentID,
		OwnerKind: string(m.OwnerKind),
		OwnerID:   m.OwnerID,
		MaxAmount: m.MaxAmount,
		Currency:  m.Currency,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
	if m.ExpiresAt != nil {
		s := m.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &s
	}
	return resp
}

func toPaymentResponse(p *domain.Payment) dto.PaymentResponse {
	resp := dto.PaymentResponse{
		ID:          p.ID.String(),
		MandateID:   p.MandateID.String(),
		AgentID:     p.AgentID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		ProviderRef: p.ProviderRef,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if p.TransactionID != nil {
		s := p.TransactionID.String()
		resp.TransactionID = &s
	}
	if p.SettledAt != nil {
		s := p.SettledAt.Format(time.RFC3339)
		resp.SettledAt = &s
	}
	return resp
}
