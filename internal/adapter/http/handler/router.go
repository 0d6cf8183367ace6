package handler

import (
	"agent-payment-gateway/internal/adapter/http/middleware"
	"agent-payment-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	IdemSvc        ports.IdempotencyService
	LedgerSvc      ports.LedgerService
	PaymentSvc     ports.PaymentService
	ChainSvc       ports.ReceiptChainService
	SettlementSvc  ports.SettlementProcessor
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Mutating routes carry a mandatory idempotency key.
	requireKey := middleware.RequireIdempotencyKey()

	v1 := r.Group("/api/v1")

	walletHandler := NewWalletHandler(deps.LedgerSvc, deps.IdemSvc)
	wallets := v1.Group("/wallets")
	{
		wallets.GET("/balance", walletHandler.GetBalance)
		wallets.POST("/topup", requireKey, walletHandler.Topup)
		wallets.POST("/withdrawals", requireKey, walletHandler.Withdraw)
	}
	v1.POST("/earnings", requireKey, walletHandler.RecordEarning)
	v1.GET("/transactions", walletHandler.ListTransactions)

	paymentHandler := NewPaymentHandler(deps.PaymentSvc, deps.IdemSvc)
	mandates := v1.Group("/mandates")
	{
		mandates.POST("", requireKey, paymentHandler.IssueMandate)
		mandates.GET("/:id", paymentHandler.GetMandate)
		mandates.POST("/:id/revoke", requireKey, paymentHandler.RevokeMandate)
	}
	payments := v1.Group("/payments")
	{
		payments.POST("", requireKey, paymentHandler.CreatePayment)
		payments.GET("/:id", paymentHandler.GetPayment)
	}

	// Settlement events carry their own idempotency key (the event id), so
	// the webhook route skips the header requirement.
	settlementHandler := NewSettlementHandler(deps.SettlementSvc)
	v1.POST("/webhooks/:provider", settlementHandler.HandleEvent)

	chainHandler := NewChainHandler(deps.ChainSvc)
	agents := v1.Group("/agents")
	{
		agents.GET("/:agent_id/receipts", chainHandler.ExportChain)
		agents.GET("/:agent_id/receipts/verify", chainHandler.VerifyChain)
	}

	return r
}
