package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/finkit/gl_ledger_app/internal/core/domain"
)

// AuditRepository appends audit records. InsertAuditRecord is the
// best-effort path; InsertAuditRecordInTx binds the write into the business
// transaction for deployments that require hard audit.
type AuditRepository interface {
	InsertAuditRecord(ctx context.Context, record domain.AuditRecord) error
	InsertAuditRecordInTx(ctx context.Context, tx pgx.Tx, record domain.AuditRecord) error
}
