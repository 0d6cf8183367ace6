package handler

import (
	"agent-payment-gateway/internal/adapter/http/dto"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/pkg/apperror"
	"agent-payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// ChainHandler exposes the per-agent receipt chain audit surface.
type ChainHandler struct {
	chainSvc ports.ReceiptChainService
}

// NewChainHandler creates a new ChainHandler.
func NewChainHandler(chainSvc ports.ReceiptChainService) *ChainHandler {
	return &ChainHandler{chainSvc: chainSvc}
}

// ExportChain handles GET /api/v1/agents/:agent_id/receipts. The export
// carries the verification verdict alongside the raw receipts so an
// auditor can re-verify offline.
func (h *ChainHandler) ExportChain(c *gin.Context) {
	agentID := c.Param("agent_id")
	if !dto.ValidAgentID(agentID) {
		response.Error(c, apperror.Validation("invalid agent id"))
		return
	}

	export, err := h.chainSvc.ExportChain(c.Request.Context(), agentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, export)
}

// VerifyChain handles GET /api/v1/agents/:agent_id/receipts/verify.
func (h *ChainHandler) VerifyChain(c *gin.Context) {
	agentID := c.Param("agent_id")
	if !dto.ValidAgentID(agentID) {
		response.Error(c, apperror.Validation("invalid agent id"))
		return
	}

	verification, err := h.chainSvc.VerifyChain(c.Request.Context(), agentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, verification)
}
