package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finkit/gl_ledger_app/internal/core/domain"
	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
)

type PgxFiscalPeriodRepository struct {
	BaseRepository
}

func newPgxFiscalPeriodRepository(pool *pgxpool.Pool) portsrepo.FiscalPeriodRepository {
	return &PgxFiscalPeriodRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.FiscalPeriodRepository = (*PgxFiscalPeriodRepository)(nil)

// IsPeriodOpen treats a period with no row as closed, so posting into an
// unconfigured period always fails.
func (r *PgxFiscalPeriodRepository) IsPeriodOpen(ctx context.Context, tenantID, companyCode string, fiscalYear, period int) (bool, error) {
	var status domain.PeriodStatus
	err := r.Pool.QueryRow(ctx, `
		SELECT status FROM fiscal_periods
		WHERE tenant_id = $1 AND company_code = $2 AND fiscal_year = $3 AND period = $4`,
		tenantID, companyCode, fiscalYear, period,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to query fiscal period: %w", err)
	}
	return status == domain.PeriodOpen, nil
}

func (r *PgxFiscalPeriodRepository) UpsertPeriod(ctx context.Context, period domain.FiscalPeriod) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO fiscal_periods (tenant_id, company_code, fiscal_year, period, status,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, company_code, fiscal_year, period)
		DO UPDATE SET status = EXCLUDED.status,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by`,
		period.TenantID, period.CompanyCode, period.FiscalYear, period.Period, period.Status,
		period.CreatedAt, period.CreatedBy, period.LastUpdatedAt, period.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert fiscal period %d/%02d: %w", period.FiscalYear, period.Period, err)
	}
	return nil
}

func (r *PgxFiscalPeriodRepository) ListPeriods(ctx context.Context, tenantID, companyCode string, fiscalYear int) ([]domain.FiscalPeriod, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT tenant_id, company_code, fiscal_year, period, status,
			created_at, created_by, last_updated_at, last_updated_by
		FROM fiscal_periods
		WHERE tenant_id = $1 AND company_code = $2 AND fiscal_year = $3
		ORDER BY period`,
		tenantID, companyCode, fiscalYear)
	if err != nil {
		return nil, fmt.Errorf("failed to list fiscal periods: %w", err)
	}
	defer rows.Close()

	var periods []domain.FiscalPeriod
	for rows.Next() {
		var p domain.FiscalPeriod
		if err := rows.Scan(&p.TenantID, &p.CompanyCode, &p.FiscalYear, &p.Period, &p.Status,
			&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan fiscal period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}
