package domain

import (
	"time"

	"github.com/google/uuid"
)

// OwnerKind identifies what kind of principal a wallet belongs to.
type OwnerKind string

const (
	OwnerKindUser      OwnerKind = "USER"
	OwnerKindDeveloper OwnerKind = "DEVELOPER"
	OwnerKindPlatform  OwnerKind = "PLATFORM"
)

// Valid reports whether k is a known owner kind.
func (k OwnerKind) Valid() bool {
	switch k {
	case OwnerKindUser, OwnerKindDeveloper, OwnerKindPlatform:
		return true
	}
	return false
}

// Wallet holds the balances for one (owner kind, owner id, currency).
// Invariant: Available >= 0 and Pending >= 0 after every ledger operation.
// Version increments on every balance write and guards against ad hoc
// direct updates.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	OwnerKind OwnerKind `json:"owner_kind"`
	OwnerID   string    `json:"owner_id"`
	Currency  string    `json:"currency"`
	Available int64     `json:"available"` // Minor units
	Pending   int64     `json:"pending"`   // Minor units reserved but not consumed
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Total returns available + pending, the funds the wallet currently holds.
func (w *Wallet) Total() int64 {
	return w.Available + w.Pending
}
