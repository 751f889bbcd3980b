package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finkit/gl_ledger_app/internal/core/domain"
	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
)

type PgxReportingRepository struct {
	BaseRepository
}

func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// TrialBalanceRows sums debit and credit minor units per account over
// posted and reversed entries. Reversed entries stay in: their reversing
// entries net them to zero.
func (r *PgxReportingRepository) TrialBalanceRows(ctx context.Context, tenantID, companyCode string, fiscalYear int) ([]portsrepo.TrialBalanceAggregate, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT l.account_code,
		       COALESCE(a.name, ''),
		       COALESCE(a.account_type, ''),
		       e.currency_code,
		       COALESCE(SUM(l.amount) FILTER (WHERE l.direction = $4), 0),
		       COALESCE(SUM(l.amount) FILTER (WHERE l.direction = $5), 0)
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		LEFT JOIN gl_accounts a
			ON a.tenant_id = e.tenant_id AND a.company_code = e.company_code AND a.account_code = l.account_code
		WHERE e.tenant_id = $1 AND e.company_code = $2 AND e.fiscal_year = $3
		  AND e.status IN ($6, $7)
		GROUP BY l.account_code, a.name, a.account_type, e.currency_code
		ORDER BY l.account_code`,
		tenantID, companyCode, fiscalYear,
		domain.Debit, domain.Credit, domain.Posted, domain.Reversed)
	if err != nil {
		return nil, fmt.Errorf("failed to query trial balance: %w", err)
	}
	defer rows.Close()

	var aggregates []portsrepo.TrialBalanceAggregate
	for rows.Next() {
		var agg portsrepo.TrialBalanceAggregate
		if err := rows.Scan(&agg.AccountCode, &agg.AccountName, &agg.AccountType,
			&agg.CurrencyCode, &agg.TotalDebitMinor, &agg.TotalCreditMinor); err != nil {
			return nil, fmt.Errorf("failed to scan trial balance row: %w", err)
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, rows.Err()
}
