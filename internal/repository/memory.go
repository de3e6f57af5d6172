package repository

import (
	"context"
	"sync"

	"github.com/alexanderjung3838-wq/roboentrega/internal/domain"
)

// MemoryCredentialRepo is an in-process CredentialRepository used by tests
// and local runs without a database.
type MemoryCredentialRepo struct {
	mu   sync.RWMutex
	cred *domain.Credential
}

var _ CredentialRepository = (*MemoryCredentialRepo)(nil)

// NewMemoryCredentialRepo constructs an empty in-memory repository.
func NewMemoryCredentialRepo() *MemoryCredentialRepo {
	return &MemoryCredentialRepo{}
}

// Get returns a copy of the stored credential, or (nil, nil) when absent.
func (r *MemoryCredentialRepo) Get(ctx context.Context) (*domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cred == nil {
		return nil, nil
	}
	cred := *r.cred
	return &cred, nil
}

// Upsert replaces the stored credential in full.
func (r *MemoryCredentialRepo) Upsert(ctx context.Context, cred domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cred = &cred
	return nil
}

// MemoryLedger is an in-process ProcessedOrderLedger.
type MemoryLedger struct {
	mu   sync.Mutex
	seen map[int64]struct{}
}

var _ ProcessedOrderLedger = (*MemoryLedger)(nil)

// NewMemoryLedger constructs an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{seen: make(map[int64]struct{})}
}

// MarkProcessed records the order ID, reporting whether it was new.
func (l *MemoryLedger) MarkProcessed(ctx context.Context, orderID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[orderID]; ok {
		return false, nil
	}
	l.seen[orderID] = struct{}{}
	return true, nil
}

// NoopLedger is used when no Redis is configured: every order is treated as
// unseen, matching the original fire-and-forget behavior.
type NoopLedger struct{}

var _ ProcessedOrderLedger = NoopLedger{}

// MarkProcessed always reports the order as new.
func (NoopLedger) MarkProcessed(ctx context.Context, orderID int64) (bool, error) {
	return true, nil
}
