package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexanderjung3838-wq/roboentrega/internal/domain"
)

// PostgresCredentialRepo stores the credential in a single-row table keyed by
// domain.CredentialKey.
type PostgresCredentialRepo struct {
	pool *pgxpool.Pool
}

var _ CredentialRepository = (*PostgresCredentialRepo)(nil)

// NewPostgresCredentialRepo constructs the Postgres-backed repository.
func NewPostgresCredentialRepo(pool *pgxpool.Pool) *PostgresCredentialRepo {
	return &PostgresCredentialRepo{pool: pool}
}

// EnsureSchema creates the credential table when missing.
func (r *PostgresCredentialRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS bot_credentials (
			id            TEXT PRIMARY KEY,
			access_token  TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_in    BIGINT NOT NULL,
			saved_at      BIGINT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure credential schema: %w", err)
	}
	return nil
}

// Get loads the credential row, returning (nil, nil) when absent.
func (r *PostgresCredentialRepo) Get(ctx context.Context) (*domain.Credential, error) {
	var cred domain.Credential
	err := r.pool.QueryRow(ctx,
		`SELECT access_token, refresh_token, expires_in, saved_at
		 FROM bot_credentials WHERE id = $1`,
		domain.CredentialKey,
	).Scan(&cred.AccessToken, &cred.RefreshToken, &cred.ExpiresIn, &cred.SavedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}
	return &cred, nil
}

// Upsert replaces the credential row in full.
func (r *PostgresCredentialRepo) Upsert(ctx context.Context, cred domain.Credential) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO bot_credentials (id, access_token, refresh_token, expires_in, saved_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
			access_token  = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_in    = EXCLUDED.expires_in,
			saved_at      = EXCLUDED.saved_at`,
		domain.CredentialKey, cred.AccessToken, cred.RefreshToken, cred.ExpiresIn, cred.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	return nil
}
