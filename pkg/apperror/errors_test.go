package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := New("WAL_001", "Insufficient available balance", http.StatusPaymentRequired)
	assert.Equal(t, "[WAL_001] Insufficient available balance", err.Error())

	wrapped := Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, errors.New("pg down"))
	assert.Contains(t, wrapped.Error(), "SYS_001")
	assert.Contains(t, wrapped.Error(), "pg down")
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrStoreUnavailable(cause)
	assert.ErrorIs(t, err, cause)
}

func TestErrorCatalog(t *testing.T) {
	tests := []struct {
		err    *AppError
		code   string
		status int
	}{
		{ErrInsufficientBalance(), "WAL_001", http.StatusPaymentRequired},
		{ErrInvalidAmount(), "WAL_002", http.StatusBadRequest},
		{ErrInvalidState("transaction already COMPLETED"), "TXN_001", http.StatusConflict},
		{ErrNotFound("wallet"), "PAY_001", http.StatusNotFound},
		{ErrMandateNotUsable("revoked"), "PAY_002", http.StatusUnprocessableEntity},
		{ErrMandateLimitExceeded(), "PAY_003", http.StatusUnprocessableEntity},
		{ErrMissingIdempotencyKey(), "IDM_001", http.StatusBadRequest},
		{ErrOperationInFlight(), "IDM_002", http.StatusConflict},
		{ErrChainIntegrity("a1", 3, "hash mismatch"), "CHN_001", http.StatusConflict},
		{Validation("owner_kind is required"), "VAL_001", http.StatusBadRequest},
		{InternalError(errors.New("x")), "SYS_001", http.StatusInternalServerError},
		{ErrStoreUnavailable(errors.New("x")), "SYS_002", http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.status, tc.err.HTTPStatus)
		})
	}
}

func TestErrNotFound_MessageNamesEntity(t *testing.T) {
	err := ErrNotFound("payment")
	assert.Equal(t, "payment not found", err.Message)
}

func TestErrorsAs(t *testing.T) {
	var appErr *AppError
	err := fmt.Errorf("handler: %w", ErrInsufficientBalance())
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "WAL_001", appErr.Code)
}
