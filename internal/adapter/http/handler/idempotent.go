package handler

import (
	"bytes"

	"agent-payment-gateway/internal/adapter/http/middleware"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// idempotent wraps a mutating handler body in the two-phase replay
// protocol: check the store before acting, commit the produced response
// after. A replayed response is byte-identical to the original and carries
// the X-Idempotent-Replay header. Handler errors are never committed, so a
// caller retrying a failed request with the same key gets a fresh attempt.
// ledgerKey passes the request's idempotency key down to the ledger so the
// transaction log itself dedupes even if the response-store insert race is
// lost.
func ledgerKey(c *gin.Context) *string {
	if key := c.GetString(middleware.CtxIdempotencyKey); key != "" {
		return &key
	}
	return nil
}

func idempotent(c *gin.Context, idemSvc ports.IdempotencyService, status int, handle func() (interface{}, error)) {
	route := c.Request.Method + " " + c.FullPath()
	key := c.GetString(middleware.CtxIdempotencyKey)

	stored, err := idemSvc.CheckOrReserve(c.Request.Context(), route, key)
	if err != nil {
		response.Error(c, err)
		return
	}
	if stored != nil {
		response.Replay(c, stored.StatusCode, stored.Body)
		return
	}

	data, err := handle()
	if err != nil {
		response.Error(c, err)
		return
	}

	body, err := response.Envelope(c, data)
	if err != nil {
		response.Error(c, err)
		return
	}

	final, err := idemSvc.Commit(c.Request.Context(), route, key, status, body)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !bytes.Equal(final.Body, body) {
		// Lost the insert race; the first writer's response stands.
		response.Replay(c, final.StatusCode, final.Body)
		return
	}
	c.Data(status, "application/json", body)
}
