package cache

import (
	"context"
	"sync"
	"time"

	"github.com/finkit/gl_ledger_app/internal/apperrors"
	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
)

type memoryRecord struct {
	state       string
	fingerprint string
	response    []byte
	expiresAt   time.Time
}

// MemoryIdempotencyStore is a process-local IdempotencyStore for tests and
// single-node deployments without Redis.
type MemoryIdempotencyStore struct {
	mu           sync.Mutex
	records      map[string]memoryRecord
	inFlightTTL  time.Duration
	completedTTL time.Duration
	now          func() time.Time
}

// NewMemoryIdempotencyStore creates an in-memory idempotency store.
func NewMemoryIdempotencyStore(inFlightTTL, completedTTL time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		records:      make(map[string]memoryRecord),
		inFlightTTL:  inFlightTTL,
		completedTTL: completedTTL,
		now:          time.Now,
	}
}

var _ portsrepo.IdempotencyStore = (*MemoryIdempotencyStore)(nil)

func (s *MemoryIdempotencyStore) Begin(_ context.Context, tenantID, token, fingerprint string) (portsrepo.BeginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := idemKey(tenantID, token)
	record, exists := s.records[key]
	if exists && s.now().After(record.expiresAt) {
		delete(s.records, key)
		exists = false
	}
	if !exists {
		s.records[key] = memoryRecord{
			state:       stateInFlight,
			fingerprint: fingerprint,
			expiresAt:   s.now().Add(s.inFlightTTL),
		}
		return portsrepo.BeginResult{State: portsrepo.BeginStarted}, nil
	}
	if record.fingerprint != fingerprint {
		return portsrepo.BeginResult{}, apperrors.NewConflict("idempotency_token_reused",
			"idempotency token was already used with a different request body")
	}
	if record.state == stateCompleted {
		return portsrepo.BeginResult{State: portsrepo.BeginCompleted, Response: record.response}, nil
	}
	return portsrepo.BeginResult{State: portsrepo.BeginInFlight}, nil
}

func (s *MemoryIdempotencyStore) Finish(_ context.Context, tenantID, token string, response []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := idemKey(tenantID, token)
	record := s.records[key]
	record.state = stateCompleted
	record.response = response
	record.expiresAt = s.now().Add(s.completedTTL)
	s.records[key] = record
	return nil
}

func (s *MemoryIdempotencyStore) Abandon(_ context.Context, tenantID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, idemKey(tenantID, token))
	return nil
}
