package middleware

import (
	"net/http"
	"time"

	"agent-payment-gateway/internal/adapter/http/dto"
	"agent-payment-gateway/pkg/apperror"
	"agent-payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// HeaderIdempotencyKey carries the caller-chosen key on mutating routes.
	HeaderIdempotencyKey = "X-Idempotency-Key"

	// Context keys
	CtxRequestID      = "request_id"
	CtxIdempotencyKey = "idempotency_key"
)

// RequestID assigns every request a unique id used in logs and response
// envelopes.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxRequestID, uuid.New().String())
		c.Next()
	}
}

// RequireIdempotencyKey rejects mutating requests that do not carry a
// well-formed X-Idempotency-Key header. Autonomous callers retry blindly,
// so the key is mandatory rather than optional.
func RequireIdempotencyKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			response.Error(c, apperror.ErrMissingIdempotencyKey())
			c.Abort()
			return
		}
		if !dto.ValidIdempotencyKey(key) {
			response.Error(c, apperror.Validation("idempotency key must be 8-128 characters of [a-zA-Z0-9_-.:]"))
			c.Abort()
			return
		}
		c.Set(CtxIdempotencyKey, key)
		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(CtxRequestID)).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": "SYS_001",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
