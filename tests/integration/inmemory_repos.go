package integration

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/pkg/storeerr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// In-memory stand-ins for the postgres repositories. The transactor below
// serializes whole transaction blocks behind one mutex, which gives the
// same linearization the row locks provide in production: every
// lock-mutate-commit sequence observes a consistent snapshot.

// --- Transactor ---

type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	tx := &serialTx{}
	tx.release = sync.OnceFunc(t.mu.Unlock)
	return tx, nil
}

// serialTx holds the transactor mutex from Begin until the first Commit or
// Rollback. The deferred Rollback after a Commit is a no-op.
type serialTx struct {
	release func()
}

func (t *serialTx) Commit(ctx context.Context) error   { t.release(); return nil }
func (t *serialTx) Rollback(ctx context.Context) error { t.release(); return nil }

func (t *serialTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *serialTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not implemented")
}
func (t *serialTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *serialTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *serialTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("not implemented")
}
func (t *serialTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *serialTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}
func (t *serialTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *serialTx) Conn() *pgx.Conn                                               { return nil }

// --- Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) CreateIfAbsent(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.wallets {
		if existing.OwnerKind == w.OwnerKind && existing.OwnerID == w.OwnerID && existing.Currency == w.Currency {
			return nil
		}
	}
	cp := *w
	r.wallets[w.ID] = &cp
	return nil
}

func (r *inMemoryWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) GetByOwner(ctx context.Context, kind domain.OwnerKind, ownerID, currency string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.OwnerKind == kind && w.OwnerID == ownerID && w.Currency == currency {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryWalletRepo) GetByOwnerForUpdate(ctx context.Context, tx pgx.Tx, kind domain.OwnerKind, ownerID, currency string) (*domain.Wallet, error) {
	return r.GetByOwner(ctx, kind, ownerID, currency)
}

func (r *inMemoryWalletRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, id uuid.UUID, available, pending, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[id]
	if !ok {
		return storeerr.New(storeerr.KindNotFound, "update wallet balances", nil)
	}
	if w.Version != expectedVersion {
		return storeerr.New(storeerr.KindConstraintViolation, "update wallet balances", errors.New("version mismatch"))
	}
	if available < 0 || pending < 0 {
		return storeerr.New(storeerr.KindConstraintViolation, "update wallet balances", errors.New("negative balance"))
	}
	w.Available = available
	w.Pending = pending
	w.Version++
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// --- Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu   sync.RWMutex
	txns map[uuid.UUID]*domain.WalletTransaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{txns: make(map[uuid.UUID]*domain.WalletTransaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.WalletTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.IdempotencyKey != nil {
		for _, existing := range r.txns {
			if existing.IdempotencyKey != nil && *existing.IdempotencyKey == *t.IdempotencyKey {
				return storeerr.New(storeerr.KindConstraintViolation, "insert transaction", errors.New("duplicate idempotency key"))
			}
		}
	}
	cp := *t
	r.txns[t.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WalletTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.txns[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.WalletTransaction, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryTransactionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.WalletTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.txns {
		if t.IdempotencyKey != nil && *t.IdempotencyKey == key {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) MarkCompleted(ctx context.Context, tx pgx.Tx, id uuid.UUID, balanceAfter int64, processedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txns[id]
	if !ok {
		return storeerr.New(storeerr.KindNotFound, "mark transaction completed", nil)
	}
	if t.Status != domain.TransactionStatusPending {
		return storeerr.New(storeerr.KindConstraintViolation, "mark transaction completed", errors.New("not pending"))
	}
	t.Status = domain.TransactionStatusCompleted
	t.BalanceAfter = &balanceAfter
	t.ProcessedAt = &processedAt
	return nil
}

func (r *inMemoryTransactionRepo) MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID, reason string, processedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txns[id]
	if !ok {
		return storeerr.New(storeerr.KindNotFound, "mark transaction failed", nil)
	}
	if t.Status != domain.TransactionStatusPending {
		return storeerr.New(storeerr.KindConstraintViolation, "mark transaction failed", errors.New("not pending"))
	}
	t.Status = domain.TransactionStatusFailed
	t.FailureReason = &reason
	t.ProcessedAt = &processedAt
	return nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.WalletTransaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []domain.WalletTransaction
	for _, t := range r.txns {
		if params.WalletID != nil && t.WalletID != *params.WalletID {
			continue
		}
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		if params.Type != nil && t.Type != *params.Type {
			continue
		}
		matched = append(matched, *t)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (params.Page - 1) * params.PageSize
	if start >= len(matched) {
		return []domain.WalletTransaction{}, total, nil
	}
	end := start + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// --- Payment Repo ---

type inMemoryPaymentRepo struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]*domain.Payment
}

func newInMemoryPaymentRepo() *inMemoryPaymentRepo {
	return &inMemoryPaymentRepo{payments: make(map[uuid.UUID]*domain.Payment)}
}

func (r *inMemoryPaymentRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.payments {
		if existing.ProviderRef == p.ProviderRef {
			return storeerr.New(storeerr.KindConstraintViolation, "insert payment", errors.New("duplicate provider ref"))
		}
	}
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *inMemoryPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryPaymentRepo) GetByProviderRef(ctx context.Context, providerRef string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.ProviderRef == providerRef {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryPaymentRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Payment, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryPaymentRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentStatus, settledAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return storeerr.New(storeerr.KindNotFound, "update payment status", nil)
	}
	p.Status = status
	p.SettledAt = settledAt
	return nil
}

// --- Receipt Repo ---

type inMemoryReceiptRepo struct {
	mu       sync.RWMutex
	receipts []*domain.Receipt
}

func newInMemoryReceiptRepo() *inMemoryReceiptRepo {
	return &inMemoryReceiptRepo{}
}

func (r *inMemoryReceiptRepo) Create(ctx context.Context, tx pgx.Tx, rc *domain.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.receipts {
		if existing.PaymentID == rc.PaymentID {
			return storeerr.New(storeerr.KindConstraintViolation, "insert receipt", errors.New("duplicate payment"))
		}
		if existing.AgentID == rc.AgentID && existing.ChainIndex == rc.ChainIndex {
			return storeerr.New(storeerr.KindConstraintViolation, "insert receipt", errors.New("duplicate chain index"))
		}
	}
	cp := *rc
	r.receipts = append(r.receipts, &cp)
	return nil
}

func (r *inMemoryReceiptRepo) GetByPaymentID(ctx context.Context, tx pgx.Tx, paymentID uuid.UUID) (*domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rc := range r.receipts {
		if rc.PaymentID == paymentID {
			cp := *rc
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryReceiptRepo) GetLastForUpdate(ctx context.Context, tx pgx.Tx, agentID string) (*domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var last *domain.Receipt
	for _, rc := range r.receipts {
		if rc.AgentID != agentID {
			continue
		}
		if last == nil || rc.ChainIndex > last.ChainIndex {
			last = rc
		}
	}
	if last == nil {
		return nil, nil
	}
	cp := *last
	return &cp, nil
}

func (r *inMemoryReceiptRepo) ListByAgent(ctx context.Context, agentID string) ([]domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Receipt
	for _, rc := range r.receipts {
		if rc.AgentID == agentID {
			out = append(out, *rc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainIndex < out[j].ChainIndex })
	return out, nil
}

// tamper mutates a stored receipt in place, bypassing the append-only
// surface. Test-only hook for integrity checks.
func (r *inMemoryReceiptRepo) tamper(agentID string, index int64, mutate func(*domain.Receipt)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rc := range r.receipts {
		if rc.AgentID == agentID && rc.ChainIndex == index {
			mutate(rc)
			return
		}
	}
}

// --- Mandate Repo ---

type inMemoryMandateRepo struct {
	mu       sync.RWMutex
	mandates map[uuid.UUID]*domain.Mandate
}

func newInMemoryMandateRepo() *inMemoryMandateRepo {
	return &inMemoryMandateRepo{mandates: make(map[uuid.UUID]*domain.Mandate)}
}

func (r *inMemoryMandateRepo) Create(ctx context.Context, m *domain.Mandate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.mandates[m.ID] = &cp
	return nil
}

func (r *inMemoryMandateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Mandate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mandates[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *inMemoryMandateRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MandateStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mandates[id]
	if !ok {
		return storeerr.New(storeerr.KindNotFound, "update mandate status", nil)
	}
	m.Status = status
	return nil
}

// --- Idempotency Repo ---

type idemKey struct {
	route string
	key   string
}

type inMemoryIdempotencyRepo struct {
	mu      sync.RWMutex
	records map[idemKey]*domain.IdempotencyRecord
}

func newInMemoryIdempotencyRepo() *inMemoryIdempotencyRepo {
	return &inMemoryIdempotencyRepo{records: make(map[idemKey]*domain.IdempotencyRecord)}
}

func (r *inMemoryIdempotencyRepo) Insert(ctx context.Context, rec *domain.IdempotencyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := idemKey{route: rec.Route, key: rec.Key}
	if _, exists := r.records[k]; exists {
		return storeerr.New(storeerr.KindConstraintViolation, "insert idempotency record", errors.New("duplicate key"))
	}
	cp := *rec
	r.records[k] = &cp
	return nil
}

func (r *inMemoryIdempotencyRepo) Get(ctx context.Context, route, key string) (*domain.IdempotencyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[idemKey{route: route, key: key}]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *inMemoryIdempotencyRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, rec := range r.records {
		if rec.CreatedAt.Before(cutoff) {
			delete(r.records, k)
			n++
		}
	}
	return n, nil
}
