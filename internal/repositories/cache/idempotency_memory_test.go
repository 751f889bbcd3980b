package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finkit/gl_ledger_app/internal/apperrors"
	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
	"github.com/finkit/gl_ledger_app/internal/repositories/cache"
)

func TestBeginFinishReplay(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryIdempotencyStore(5*time.Minute, 24*time.Hour)

	result, err := store.Begin(ctx, "tenant-a", "tok-1", "fp-1")
	require.NoError(t, err)
	assert.Equal(t, portsrepo.BeginStarted, result.State)

	// A second caller with the same token sees it in flight.
	result, err = store.Begin(ctx, "tenant-a", "tok-1", "fp-1")
	require.NoError(t, err)
	assert.Equal(t, portsrepo.BeginInFlight, result.State)

	require.NoError(t, store.Finish(ctx, "tenant-a", "tok-1", []byte(`{"ok":true}`)))

	// A retry now gets the cached response back verbatim.
	result, err = store.Begin(ctx, "tenant-a", "tok-1", "fp-1")
	require.NoError(t, err)
	assert.Equal(t, portsrepo.BeginCompleted, result.State)
	assert.Equal(t, []byte(`{"ok":true}`), result.Response)
}

func TestBeginFingerprintMismatch(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryIdempotencyStore(5*time.Minute, 24*time.Hour)

	_, err := store.Begin(ctx, "tenant-a", "tok-1", "fp-1")
	require.NoError(t, err)
	require.NoError(t, store.Finish(ctx, "tenant-a", "tok-1", []byte(`{}`)))

	// Same token, different request body.
	_, err = store.Begin(ctx, "tenant-a", "tok-1", "fp-2")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestTokensAreTenantScoped(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryIdempotencyStore(5*time.Minute, 24*time.Hour)

	result, err := store.Begin(ctx, "tenant-a", "tok-1", "fp-1")
	require.NoError(t, err)
	assert.Equal(t, portsrepo.BeginStarted, result.State)

	// The same token under another tenant is an independent record.
	result, err = store.Begin(ctx, "tenant-b", "tok-1", "fp-1")
	require.NoError(t, err)
	assert.Equal(t, portsrepo.BeginStarted, result.State)
}

func TestAbandonFreesToken(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryIdempotencyStore(5*time.Minute, 24*time.Hour)

	_, err := store.Begin(ctx, "tenant-a", "tok-1", "fp-1")
	require.NoError(t, err)
	require.NoError(t, store.Abandon(ctx, "tenant-a", "tok-1"))

	result, err := store.Begin(ctx, "tenant-a", "tok-1", "fp-1")
	require.NoError(t, err)
	assert.Equal(t, portsrepo.BeginStarted, result.State)
}
