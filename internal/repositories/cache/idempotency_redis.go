package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finkit/gl_ledger_app/internal/apperrors"
	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
)

const (
	stateInFlight  = "inflight"
	stateCompleted = "completed"
)

// idemRecord is the JSON value stored per (tenant, token) key.
type idemRecord struct {
	State       string `json:"state"`
	Fingerprint string `json:"fingerprint"`
	Response    []byte `json:"response,omitempty"`
}

// RedisIdempotencyStore keeps idempotency records in Redis. The in-flight
// marker expires after InFlightTTL so a crashed request cannot wedge its
// token forever; completed responses are replayable until CompletedTTL.
type RedisIdempotencyStore struct {
	client       *redis.Client
	inFlightTTL  time.Duration
	completedTTL time.Duration
}

// NewRedisIdempotencyStore creates a Redis-backed idempotency store.
func NewRedisIdempotencyStore(client *redis.Client, inFlightTTL, completedTTL time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{
		client:       client,
		inFlightTTL:  inFlightTTL,
		completedTTL: completedTTL,
	}
}

var _ portsrepo.IdempotencyStore = (*RedisIdempotencyStore)(nil)

func idemKey(tenantID, token string) string {
	return fmt.Sprintf("idem:%s:%s", tenantID, token)
}

// Begin claims the token with SET NX. Exactly one concurrent caller wins;
// everyone else sees the in-flight marker or the completed response.
func (s *RedisIdempotencyStore) Begin(ctx context.Context, tenantID, token, fingerprint string) (portsrepo.BeginResult, error) {
	key := idemKey(tenantID, token)
	claim, err := json.Marshal(idemRecord{State: stateInFlight, Fingerprint: fingerprint})
	if err != nil {
		return portsrepo.BeginResult{}, err
	}

	// Two attempts cover the race where the key expires between the failed
	// SET NX and the GET.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, key, claim, s.inFlightTTL).Result()
		if err != nil {
			return portsrepo.BeginResult{}, apperrors.NewUnavailable("idempotency_store_unreachable", "failed to reach idempotency store", err)
		}
		if ok {
			return portsrepo.BeginResult{State: portsrepo.BeginStarted}, nil
		}

		raw, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return portsrepo.BeginResult{}, apperrors.NewUnavailable("idempotency_store_unreachable", "failed to reach idempotency store", err)
		}

		var record idemRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return portsrepo.BeginResult{}, apperrors.NewInternal("corrupt idempotency record", err)
		}
		if record.Fingerprint != fingerprint {
			return portsrepo.BeginResult{}, apperrors.NewConflict("idempotency_token_reused",
				"idempotency token was already used with a different request body")
		}
		if record.State == stateCompleted {
			return portsrepo.BeginResult{State: portsrepo.BeginCompleted, Response: record.Response}, nil
		}
		return portsrepo.BeginResult{State: portsrepo.BeginInFlight}, nil
	}
	return portsrepo.BeginResult{State: portsrepo.BeginInFlight}, nil
}

// Finish transitions the record to completed and caches the response bytes,
// which are replayed verbatim to later calls with the same token.
func (s *RedisIdempotencyStore) Finish(ctx context.Context, tenantID, token string, response []byte) error {
	key := idemKey(tenantID, token)
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return apperrors.NewUnavailable("idempotency_store_unreachable", "failed to reach idempotency store", err)
	}

	var record idemRecord
	if err == nil {
		if uerr := json.Unmarshal(raw, &record); uerr != nil {
			return apperrors.NewInternal("corrupt idempotency record", uerr)
		}
	}
	record.State = stateCompleted
	record.Response = response

	value, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, value, s.completedTTL).Err(); err != nil {
		return apperrors.NewUnavailable("idempotency_store_unreachable", "failed to reach idempotency store", err)
	}
	return nil
}

// Abandon removes the in-flight marker so the client may retry.
func (s *RedisIdempotencyStore) Abandon(ctx context.Context, tenantID, token string) error {
	if err := s.client.Del(ctx, idemKey(tenantID, token)).Err(); err != nil {
		return apperrors.NewUnavailable("idempotency_store_unreachable", "failed to reach idempotency store", err)
	}
	return nil
}
