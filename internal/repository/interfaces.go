package repository

import (
	"context"

	"github.com/alexanderjung3838-wq/roboentrega/internal/domain"
)

// CredentialRepository persists the single seller credential under its fixed
// key. Get returns (nil, nil) when no credential has been saved yet; Upsert
// replaces the full record atomically.
type CredentialRepository interface {
	Get(ctx context.Context) (*domain.Credential, error)
	Upsert(ctx context.Context, cred domain.Credential) error
}

// ProcessedOrderLedger records which orders have already been messaged so a
// redelivered webhook event does not message the buyer twice. MarkProcessed
// returns true the first time an order ID is seen.
type ProcessedOrderLedger interface {
	MarkProcessed(ctx context.Context, orderID int64) (bool, error)
}
