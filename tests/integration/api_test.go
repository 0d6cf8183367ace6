package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "agent-payment-gateway/internal/adapter/http/handler"
	redisStorage "agent-payment-gateway/internal/adapter/storage/redis"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/internal/service"
	"agent-payment-gateway/pkg/logger"
	"agent-payment-gateway/pkg/response"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds the full application stack on in-memory storage: miniredis
// behind the real Redis cache, the in-memory repos behind the real
// services, and the real HTTP layer on top. Only the network edges are
// substituted.
type testApp struct {
	server *httptest.Server
	redis  *miniredis.Miniredis

	walletRepo    *inMemoryWalletRepo
	txnRepo       *inMemoryTransactionRepo
	paymentRepo   *inMemoryPaymentRepo
	receiptRepo   *inMemoryReceiptRepo
	mandateRepo   *inMemoryMandateRepo
	idemRepo      *inMemoryIdempotencyRepo
	ledgerSvc     ports.LedgerService
	paymentSvc    ports.PaymentService
	chainSvc      ports.ReceiptChainService
	settlementSvc ports.SettlementProcessor
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)

	app := &testApp{
		redis:       mr,
		walletRepo:  newInMemoryWalletRepo(),
		txnRepo:     newInMemoryTransactionRepo(),
		paymentRepo: newInMemoryPaymentRepo(),
		receiptRepo: newInMemoryReceiptRepo(),
		mandateRepo: newInMemoryMandateRepo(),
		idemRepo:    newInMemoryIdempotencyRepo(),
	}
	transactor := newInMemoryTransactor()

	log := logger.NewWithWriter("error", io.Discard)
	idemSvc := service.NewIdempotencyService(app.idemRepo, idempotencyCache, log)
	app.ledgerSvc = service.NewLedgerService(app.walletRepo, app.txnRepo, transactor, log)
	app.paymentSvc = service.NewPaymentService(app.mandateRepo, app.paymentRepo, app.walletRepo, app.txnRepo, transactor, log)
	app.chainSvc = service.NewReceiptChainService(app.receiptRepo, transactor, log)
	app.settlementSvc = service.NewSettlementProcessor(
		idemSvc,
		app.paymentRepo,
		app.txnRepo,
		app.walletRepo,
		app.chainSvc,
		transactor,
		service.SettlementRetryPolicy{MaxTries: 2, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond},
		log,
	)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		IdemSvc:        idemSvc,
		LedgerSvc:      app.ledgerSvc,
		PaymentSvc:     app.paymentSvc,
		ChainSvc:       app.chainSvc,
		SettlementSvc:  app.settlementSvc,
		HealthCheckers: []ports.HealthChecker{redisStorage.NewHealthCheck(rdb)},
		Logger:         log,
	})

	app.server = httptest.NewServer(router)
	return app
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

func (a *testApp) post(t *testing.T, path string, body interface{}, key string) (*http.Response, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-Idempotency-Key", key)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	raw, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(a.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "missing data envelope: %v", body)
	return d
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, body := app.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_TopupAndBalance(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, body := app.post(t, "/api/v1/wallets/topup", map[string]interface{}{
		"owner_kind": "USER",
		"owner_id":   "user-1",
		"amount":     10000,
		"currency":   "USD",
		"method":     "bank",
	}, "topup-user-1-a")
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	assert.Equal(t, "COMPLETED", data(t, body)["status"])

	resp, body = app.get(t, "/api/v1/wallets/balance?owner_kind=USER&owner_id=user-1&currency=USD")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(10000), data(t, body)["available"])
	assert.Equal(t, float64(0), data(t, body)["pending"])
}

func TestIntegration_IdempotentTopupReplay(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	payload := map[string]interface{}{
		"owner_kind": "USER",
		"owner_id":   "user-2",
		"amount":     5000,
		"currency":   "USD",
	}

	resp1, body1 := app.post(t, "/api/v1/wallets/topup", payload, "topup-user-2-once")
	require.Equal(t, http.StatusCreated, resp1.StatusCode)
	assert.Empty(t, resp1.Header.Get(response.HeaderIdempotentReplay))

	resp2, body2 := app.post(t, "/api/v1/wallets/topup", payload, "topup-user-2-once")
	require.Equal(t, http.StatusCreated, resp2.StatusCode)
	assert.Equal(t, "true", resp2.Header.Get(response.HeaderIdempotentReplay))

	// Byte-identical replay, and the wallet was credited exactly once.
	assert.Equal(t, body1, body2)
	_, balance := app.get(t, "/api/v1/wallets/balance?owner_kind=USER&owner_id=user-2&currency=USD")
	assert.Equal(t, float64(5000), data(t, balance)["available"])
}

func TestIntegration_PaymentLifecycle_Settled(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	// Fund the user.
	resp, _ := app.post(t, "/api/v1/wallets/topup", map[string]interface{}{
		"owner_kind": "USER", "owner_id": "user-3", "amount": 10000, "currency": "USD",
	}, "topup-user-3-a")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Issue a mandate for the agent.
	resp, body := app.post(t, "/api/v1/mandates", map[string]interface{}{
		"agent_id":   "agent-7",
		"owner_kind": "USER",
		"owner_id":   "user-3",
		"max_amount": 5000,
		"currency":   "USD",
	}, "mandate-user-3-a")
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	mandateID := data(t, body)["id"].(string)

	// Open a payment: funds move available -> pending.
	resp, body = app.post(t, "/api/v1/payments", map[string]interface{}{
		"mandate_id":   mandateID,
		"amount":       3000,
		"provider_ref": "prov-agent-7-1",
	}, "payment-agent-7-1")
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	paymentID := data(t, body)["id"].(string)
	assert.Equal(t, "PENDING", data(t, body)["status"])

	_, balance := app.get(t, "/api/v1/wallets/balance?owner_kind=USER&owner_id=user-3&currency=USD")
	assert.Equal(t, float64(7000), data(t, balance)["available"])
	assert.Equal(t, float64(3000), data(t, balance)["pending"])

	// Provider reports settlement.
	resp, body = app.post(t, "/api/v1/webhooks/testpay", map[string]interface{}{
		"id":           "evt-agent-7-1",
		"type":         "payment.settled",
		"provider_ref": "prov-agent-7-1",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)
	assert.Equal(t, "applied", data(t, body)["status"])

	// Reservation consumed, payment settled, receipt appended at index 0.
	_, balance = app.get(t, "/api/v1/wallets/balance?owner_kind=USER&owner_id=user-3&currency=USD")
	assert.Equal(t, float64(7000), data(t, balance)["available"])
	assert.Equal(t, float64(0), data(t, balance)["pending"])

	resp, body = app.get(t, "/api/v1/payments/"+paymentID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SETTLED", data(t, body)["status"])

	resp, body = app.get(t, "/api/v1/agents/agent-7/receipts")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	receipts := data(t, body)["receipts"].([]interface{})
	require.Len(t, receipts, 1)
	verification := data(t, body)["verification"].(map[string]interface{})
	assert.Equal(t, true, verification["valid"])
}

func TestIntegration_DoubleDeliveredSettlementEvent(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, _ := app.post(t, "/api/v1/wallets/topup", map[string]interface{}{
		"owner_kind": "USER", "owner_id": "user-4", "amount": 10000, "currency": "USD",
	}, "topup-user-4-a")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := app.post(t, "/api/v1/mandates", map[string]interface{}{
		"agent_id": "agent-8", "owner_kind": "USER", "owner_id": "user-4",
		"max_amount": 5000, "currency": "USD",
	}, "mandate-user-4-a")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	mandateID := data(t, body)["id"].(string)

	resp, _ = app.post(t, "/api/v1/payments", map[string]interface{}{
		"mandate_id": mandateID, "amount": 2000, "provider_ref": "prov-agent-8-1",
	}, "payment-agent-8-1")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	event := map[string]interface{}{
		"id": "evt-agent-8-1", "type": "payment.settled", "provider_ref": "prov-agent-8-1",
	}
	resp, body1 := app.post(t, "/api/v1/webhooks/testpay", event, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "applied", data(t, body1)["status"])

	// Redelivery replays the recorded outcome; the chain does not grow.
	resp, body2 := app.post(t, "/api/v1/webhooks/testpay", event, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, data(t, body1)["status"], data(t, body2)["status"])
	assert.Equal(t, data(t, body1)["receipt_id"], data(t, body2)["receipt_id"])

	_, body = app.get(t, "/api/v1/agents/agent-8/receipts")
	receipts := data(t, body)["receipts"].([]interface{})
	assert.Len(t, receipts, 1)
}

func TestIntegration_FailedSettlementReleasesReservation(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, _ := app.post(t, "/api/v1/wallets/topup", map[string]interface{}{
		"owner_kind": "USER", "owner_id": "user-5", "amount": 10000, "currency": "USD",
	}, "topup-user-5-a")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := app.post(t, "/api/v1/mandates", map[string]interface{}{
		"agent_id": "agent-9", "owner_kind": "USER", "owner_id": "user-5",
		"max_amount": 5000, "currency": "USD",
	}, "mandate-user-5-a")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	mandateID := data(t, body)["id"].(string)

	resp, _ = app.post(t, "/api/v1/payments", map[string]interface{}{
		"mandate_id": mandateID, "amount": 4000, "provider_ref": "prov-agent-9-1",
	}, "payment-agent-9-1")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = app.post(t, "/api/v1/webhooks/testpay", map[string]interface{}{
		"id": "evt-agent-9-1", "type": "payment.failed",
		"provider_ref": "prov-agent-9-1", "reason": "card declined",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "applied", data(t, body)["status"])

	// Funds returned to available, no receipt for a failed payment.
	_, balance := app.get(t, "/api/v1/wallets/balance?owner_kind=USER&owner_id=user-5&currency=USD")
	assert.Equal(t, float64(10000), data(t, balance)["available"])
	assert.Equal(t, float64(0), data(t, balance)["pending"])

	_, body = app.get(t, "/api/v1/agents/agent-9/receipts")
	assert.Empty(t, data(t, body)["receipts"])
}

func TestIntegration_MandateLimitAndRevocation(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, _ := app.post(t, "/api/v1/wallets/topup", map[string]interface{}{
		"owner_kind": "USER", "owner_id": "user-6", "amount": 10000, "currency": "USD",
	}, "topup-user-6-a")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := app.post(t, "/api/v1/mandates", map[string]interface{}{
		"agent_id": "agent-10", "owner_kind": "USER", "owner_id": "user-6",
		"max_amount": 1000, "currency": "USD",
	}, "mandate-user-6-a")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	mandateID := data(t, body)["id"].(string)

	// Over the mandate limit.
	resp, body = app.post(t, "/api/v1/payments", map[string]interface{}{
		"mandate_id": mandateID, "amount": 1500, "provider_ref": "prov-agent-10-1",
	}, "payment-agent-10-1")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "PAY_003", body["error_code"])

	// Revoke, then any payment is refused.
	resp, _ = app.post(t, fmt.Sprintf("/api/v1/mandates/%s/revoke", mandateID), nil, "revoke-agent-10-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = app.post(t, "/api/v1/payments", map[string]interface{}{
		"mandate_id": mandateID, "amount": 500, "provider_ref": "prov-agent-10-2",
	}, "payment-agent-10-2")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "PAY_002", body["error_code"])
}

func TestIntegration_WithdrawInsufficient(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, _ := app.post(t, "/api/v1/wallets/topup", map[string]interface{}{
		"owner_kind": "USER", "owner_id": "user-7", "amount": 100, "currency": "USD",
	}, "topup-user-7-a")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := app.post(t, "/api/v1/wallets/withdrawals", map[string]interface{}{
		"owner_kind": "USER", "owner_id": "user-7", "amount": 500, "currency": "USD",
	}, "withdraw-user-7-a")
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, "WAL_001", body["error_code"])
}

func TestIntegration_EarningSplitsFee(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, body := app.post(t, "/api/v1/earnings", map[string]interface{}{
		"developer_id": "dev-1",
		"gross_amount": 1000,
		"fee_amount":   150,
		"currency":     "USD",
	}, "earning-dev-1-a")
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)

	_, balance := app.get(t, "/api/v1/wallets/balance?owner_kind=DEVELOPER&owner_id=dev-1&currency=USD")
	assert.Equal(t, float64(850), data(t, balance)["available"])

	_, balance = app.get(t, "/api/v1/wallets/balance?owner_kind=PLATFORM&owner_id=platform&currency=USD")
	assert.Equal(t, float64(150), data(t, balance)["available"])
}
