package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agent-payment-gateway/config"
	httpHandler "agent-payment-gateway/internal/adapter/http/handler"
	pgStorage "agent-payment-gateway/internal/adapter/storage/postgres"
	redisStorage "agent-payment-gateway/internal/adapter/storage/redis"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/internal/service"
	"agent-payment-gateway/pkg/logger"

	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("api", cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Agent Payment Gateway")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	walletRepo := pgStorage.NewWalletRepo(pool)
	txnRepo := pgStorage.NewTransactionRepo(pool)
	paymentRepo := pgStorage.NewPaymentRepo(pool)
	receiptRepo := pgStorage.NewReceiptRepo(pool)
	mandateRepo := pgStorage.NewMandateRepo(pool)
	idempotencyRepo := pgStorage.NewIdempotencyRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)

	// Initialize business services
	idemSvc := service.NewIdempotencyService(idempotencyRepo, idempotencyCache, log)
	ledgerSvc := service.NewLedgerService(walletRepo, txnRepo, transactor, log)
	paymentSvc := service.NewPaymentService(mandateRepo, paymentRepo, walletRepo, txnRepo, transactor, log)
	chainSvc := service.NewReceiptChainService(receiptRepo, transactor, log)
	settlementSvc := service.NewSettlementProcessor(
		idemSvc,
		paymentRepo,
		txnRepo,
		walletRepo,
		chainSvc,
		transactor,
		service.SettlementRetryPolicy{
			MaxTries:        cfg.Settlement.MaxRetries,
			InitialInterval: cfg.Settlement.InitialInterval,
			MaxInterval:     cfg.Settlement.MaxInterval,
		},
		log,
	)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Background reaper for expired idempotency records
	reaperCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	go runIdempotencyReaper(reaperCtx, idemSvc, cfg.Idempotency, log)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		IdemSvc:        idemSvc,
		LedgerSvc:      ledgerSvc,
		PaymentSvc:     paymentSvc,
		ChainSvc:       chainSvc,
		SettlementSvc:  settlementSvc,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")
	stopReaper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// runIdempotencyReaper deletes replay records past the retention window on
// a fixed interval until ctx is cancelled.
func runIdempotencyReaper(ctx context.Context, idemSvc ports.IdempotencyService, cfg config.IdempotencyConfig, log zerolog.Logger) {
	ticker := time.NewTicker(cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := idemSvc.Reap(ctx, cfg.Retention)
			if err != nil {
				log.Error().Err(err).Msg("idempotency reap failed")
				continue
			}
			if n > 0 {
				log.Info().Int64("removed", n).Msg("idempotency records reaped")
			}
		}
	}
}
