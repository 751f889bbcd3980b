package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the Postgres-backed repositories. The
// idempotency store lives in Redis and is injected separately.
func NewRepositoryProvider(dbPool *pgxpool.Pool, idemStore portsrepo.IdempotencyStore) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		JournalRepo:     newPgxJournalEntryRepository(dbPool),
		AccountRepo:     newPgxAccountRepository(dbPool),
		CostCenterRepo:  newPgxCostCenterRepository(dbPool),
		PeriodRepo:      newPgxFiscalPeriodRepository(dbPool),
		AuditRepo:       newPgxAuditRepository(dbPool),
		IdempotencyRepo: idemStore,
		ReportingRepo:   newPgxReportingRepository(dbPool),
	}
}
