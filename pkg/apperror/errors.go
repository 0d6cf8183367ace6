package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses. The Code is
// the stable machine-readable contract: clients use it to tell retry-safe
// failures from retry-unsafe ones.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet Ledger (WAL) ----

func ErrInsufficientBalance() *AppError {
	return New("WAL_001", "Insufficient available balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("WAL_002", "Amount must be positive", http.StatusBadRequest)
}

// ---- Transaction Log (TXN) ----

func ErrInvalidState(detail string) *AppError {
	return New("TXN_001", fmt.Sprintf("Invalid state transition: %s", detail), http.StatusConflict)
}

// ---- Payments & Mandates (PAY) ----

func ErrNotFound(entity string) *AppError {
	return New("PAY_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrMandateNotUsable(reason string) *AppError {
	return New("PAY_002", fmt.Sprintf("Mandate not usable: %s", reason), http.StatusUnprocessableEntity)
}

func ErrMandateLimitExceeded() *AppError {
	return New("PAY_003", "Amount exceeds mandate limit", http.StatusUnprocessableEntity)
}

// ---- Idempotency (IDM) ----

func ErrMissingIdempotencyKey() *AppError {
	return New("IDM_001", "Missing or malformed idempotency key", http.StatusBadRequest)
}

func ErrOperationInFlight() *AppError {
	return New("IDM_002", "Operation with this key is still in flight, retry shortly", http.StatusConflict)
}

// ---- Receipt Chain (CHN) ----

func ErrChainIntegrity(agentID string, index int64, reason string) *AppError {
	return New("CHN_001",
		fmt.Sprintf("Receipt chain integrity violation for agent %s at index %d: %s", agentID, index, reason),
		http.StatusConflict)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// ErrStoreUnavailable marks a transient storage failure. Retry-safe.
func ErrStoreUnavailable(err error) *AppError {
	return Wrap("SYS_002", "Storage temporarily unavailable, retry later", http.StatusServiceUnavailable, err)
}

// ---- Request validation (VAL) ----

// Validation returns a generic request validation error. Amount-specific
// failures use WAL_002 instead.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
