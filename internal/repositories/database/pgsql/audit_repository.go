package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finkit/gl_ledger_app/internal/core/domain"
	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
)

type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepository {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

const insertAuditSQL = `
	INSERT INTO audit_log (at, tenant_id, actor, action, entity_kind, entity_id, outcome, reason)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (r *PgxAuditRepository) InsertAuditRecord(ctx context.Context, record domain.AuditRecord) error {
	_, err := r.Pool.Exec(ctx, insertAuditSQL,
		record.At, record.TenantID, record.Actor, record.Action,
		record.EntityKind, record.EntityID, record.Outcome, record.Reason)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

// InsertAuditRecordInTx writes the record inside the business transaction so
// a rollback discards both together.
func (r *PgxAuditRepository) InsertAuditRecordInTx(ctx context.Context, tx pgx.Tx, record domain.AuditRecord) error {
	_, err := tx.Exec(ctx, insertAuditSQL,
		record.At, record.TenantID, record.Actor, record.Action,
		record.EntityKind, record.EntityID, record.Outcome, record.Reason)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}
