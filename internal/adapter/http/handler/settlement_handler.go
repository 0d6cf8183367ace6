package handler

import (
	"time"

	"agent-payment-gateway/internal/adapter/http/dto"
	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/pkg/apperror"
	"agent-payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// SettlementHandler receives payment-provider webhook events.
type SettlementHandler struct {
	processor ports.SettlementProcessor
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(processor ports.SettlementProcessor) *SettlementHandler {
	return &SettlementHandler{processor: processor}
}

// HandleEvent handles POST /api/v1/webhooks/:provider. A 2xx response
// acknowledges the event; any error status tells the provider to redeliver.
func (h *SettlementHandler) HandleEvent(c *gin.Context) {
	provider := c.Param("provider")
	if !dto.ValidProviderName(provider) {
		response.Error(c, apperror.Validation("unknown provider"))
		return
	}

	var req dto.SettlementEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil {
		occurredAt = time.Unix(*req.OccurredAt, 0).UTC()
	}

	outcome, err := h.processor.ProcessEvent(c.Request.Context(), domain.SettlementEvent{
		ID:          req.ID,
		Provider:    provider,
		Type:        domain.SettlementEventType(req.Type),
		ProviderRef: req.ProviderRef,
		Reason:      req.Reason,
		OccurredAt:  occurredAt,
	})
	if err != nil {
		// Not acknowledged: the provider will redeliver.
		response.Error(c, err)
		return
	}

	response.OK(c, outcome)
}
