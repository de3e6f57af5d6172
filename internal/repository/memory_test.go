package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexanderjung3838-wq/roboentrega/internal/domain"
)

func TestMemoryCredentialRepo_UpsertReplacesWholeRecord(t *testing.T) {
	repo := NewMemoryCredentialRepo()
	ctx := context.Background()

	cred, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, cred)

	require.NoError(t, repo.Upsert(ctx, domain.Credential{
		AccessToken:  "a1",
		RefreshToken: "r1",
		ExpiresIn:    21600,
		SavedAt:      1000,
	}))
	require.NoError(t, repo.Upsert(ctx, domain.Credential{
		AccessToken: "a2",
		SavedAt:     2000,
	}))

	cred, err = repo.Get(ctx)
	require.NoError(t, err)
	// Nothing survives from the previous record.
	require.Equal(t, "a2", cred.AccessToken)
	require.Empty(t, cred.RefreshToken)
	require.Zero(t, cred.ExpiresIn)
	require.Equal(t, int64(2000), cred.SavedAt)
}

func TestMemoryLedger_FirstSeenOnly(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	first, err := ledger.MarkProcessed(ctx, 42)
	require.NoError(t, err)
	require.True(t, first)

	again, err := ledger.MarkProcessed(ctx, 42)
	require.NoError(t, err)
	require.False(t, again)
}

func TestNoopLedger_AlwaysFirst(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		first, err := NoopLedger{}.MarkProcessed(ctx, 42)
		require.NoError(t, err)
		require.True(t, first)
	}
}
