package dto

// TopupRequest is the request body for crediting a wallet.
type TopupRequest struct {
	OwnerKind string `json:"owner_kind" binding:"required,oneof=USER DEVELOPER PLATFORM"`
	OwnerID   string `json:"owner_id" binding:"required,safe_id,max=100"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Currency  string `json:"currency" binding:"required,len=3"`
	Method    string `json:"method" binding:"omitempty,max=50"`
}

// WithdrawRequest is the request body for opening a withdrawal.
type WithdrawRequest struct {
	OwnerKind string `json:"owner_kind" binding:"required,oneof=USER DEVELOPER PLATFORM"`
	OwnerID   string `json:"owner_id" binding:"required,safe_id,max=100"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Currency  string `json:"currency" binding:"required,len=3"`
	Method    string `json:"method" binding:"omitempty,max=50"`
}

// EarningRequest is the request body for recording a developer earning.
type EarningRequest struct {
	DeveloperID string  `json:"developer_id" binding:"required,safe_id,max=100"`
	GrossAmount int64   `json:"gross_amount" binding:"required,gt=0"`
	FeeAmount   int64   `json:"fee_amount" binding:"gte=0"`
	Currency    string  `json:"currency" binding:"required,len=3"`
	PaymentID   *string `json:"payment_id,omitempty" binding:"omitempty,uuid"`
}

// IssueMandateRequest is the request body for issuing a purchase mandate.
type IssueMandateRequest struct {
	AgentID   string `json:"agent_id" binding:"required,safe_id,max=100"`
	OwnerKind string `json:"owner_kind" binding:"required,oneof=USER DEVELOPER PLATFORM"`
	OwnerID   string `json:"owner_id" binding:"required,safe_id,max=100"`
	MaxAmount int64  `json:"max_amount" binding:"required,gt=0"`
	Currency  string `json:"currency" binding:"required,len=3"`
	ExpiresAt *int64 `json:"expires_at,omitempty"` // Unix seconds
}

// CreatePaymentRequest is the request body for opening a payment against a
// mandate.
type CreatePaymentRequest struct {
	MandateID   string `json:"mandate_id" binding:"required,uuid"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	ProviderRef string `json:"provider_ref" binding:"required,safe_id,max=100"`
}

// SettlementEventRequest is the request body posted by a payment provider
// webhook. The provider name comes from the URL path.
type SettlementEventRequest struct {
	ID          string `json:"id" binding:"required,safe_id,max=100"`
	Type        string `json:"type" binding:"required,max=50"`
	ProviderRef string `json:"provider_ref" binding:"required,max=100"`
	Reason      string `json:"reason" binding:"omitempty,max=255"`
	OccurredAt  *int64 `json:"occurred_at,omitempty"` // Unix seconds
}

// WalletQuery identifies one wallet by its natural key.
type WalletQuery struct {
	OwnerKind string `form:"owner_kind" binding:"required,oneof=USER DEVELOPER PLATFORM"`
	OwnerID   string `form:"owner_id" binding:"required,max=100"`
	Currency  string `form:"currency" binding:"required,len=3"`
}

// TransactionListQuery holds filter and pagination parameters.
type TransactionListQuery struct {
	WalletID string `form:"wallet_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING COMPLETED FAILED"`
	Type     string `form:"type" binding:"omitempty,max=50"`
	Page     int    `form:"page" binding:"omitempty,gte=1"`
	PageSize int    `form:"page_size" binding:"omitempty,gte=1,lte=100"`
}

// WalletResponse is the response body for wallet balance queries.
type WalletResponse struct {
	ID        string `json:"id"`
	OwnerKind string `json:"owner_kind"`
	OwnerID   string `json:"owner_id"`
	Currency  string `json:"currency"`
	Available int64  `json:"available"`
	Pending   int64  `json:"pending"`
}

// TransactionResponse is the response body for ledger entries.
type TransactionResponse struct {
	ID            string  `json:"id"`
	WalletID      string  `json:"wallet_id"`
	PaymentID     *string `json:"payment_id,omitempty"`
	Type          string  `json:"type"`
	Direction     string  `json:"direction"`
	Method        string  `json:"method,omitempty"`
	Amount        int64   `json:"amount"`
	FeeAmount     int64   `json:"fee_amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	BalanceAfter  *int64  `json:"balance_after,omitempty"`
	FailureReason *string `json:"failure_reason,omitempty"`
	CreatedAt     string  `json:"created_at"`
	ProcessedAt   *string `json:"processed_at,omitempty"`
}

// TransactionListResponse wraps a page of ledger entries.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"page_size"`
}

// MandateResponse is the response body for mandate operations.
type MandateResponse struct {
	ID        string  `json:"id"`
	AgentID   string  `json:"agent_id"`
	OwnerKind string  `json:"owner_kind"`
	OwnerID   string  `json:"owner_id"`
	MaxAmount int64   `json:"max_amount"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`
	ExpiresAt *string `json:"expires_at,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// PaymentResponse is the response body for payment operations.
type PaymentResponse struct {
	ID            string  `json:"id"`
	MandateID     string  `json:"mandate_id"`
	AgentID       string  `json:"agent_id"`
	Amount        int64   `json:"amount"`
	Currency      string  `json:"currency"`
	ProviderRef   string  `json:"provider_ref"`
	Status        string  `json:"status"`
	TransactionID *string `json:"transaction_id,omitempty"`
	SettledAt     *string `json:"settled_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}
