package domain

import "time"

// IdempotencyRecord caches the response of a completed mutating operation,
// keyed by (route, key). Unique together; immutable once written; read
// back verbatim on retry.
type IdempotencyRecord struct {
	Route      string    `json:"route"` // e.g. "POST /api/v1/payments" or "webhook/stripe"
	Key        string    `json:"key"`   // Caller-supplied opaque token or provider event id
	StatusCode int       `json:"status_code"`
	Response   []byte    `json:"response"`
	CreatedAt  time.Time `json:"created_at"`
}

// IdempotencyRetention is how long records are kept before the reaper may
// remove them. Chosen to exceed any plausible client retry interval.
const IdempotencyRetention = 24 * time.Hour
