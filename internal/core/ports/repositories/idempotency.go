package repositories

import "context"

// BeginState is the outcome of IdempotencyStore.Begin.
type BeginState int

const (
	// BeginStarted means this caller owns the token and must later call
	// Finish or Abandon.
	BeginStarted BeginState = iota
	// BeginInFlight means another request with the same token is running.
	BeginInFlight
	// BeginCompleted means a cached response exists for the token.
	BeginCompleted
)

// BeginResult carries the cached response when State is BeginCompleted.
type BeginResult struct {
	State    BeginState
	Response []byte
}

// IdempotencyStore maps (tenant, client token) to an in-flight marker or a
// cached response. At most one Begin returns BeginStarted per key at any
// instant. Fingerprint is a hash of the request body; Begin fails with
// ErrConflict when a completed record was produced by a different body.
type IdempotencyStore interface {
	Begin(ctx context.Context, tenantID, token, fingerprint string) (BeginResult, error)

	// Finish transitions InFlight → Completed, caching the response.
	Finish(ctx context.Context, tenantID, token string, response []byte) error

	// Abandon removes the in-flight marker so the caller may retry.
	Abandon(ctx context.Context, tenantID, token string) error
}
