package repositories

import (
	"context"

	"github.com/finkit/gl_ledger_app/internal/core/domain"
)

// AccountRepository defines persistence operations for GL accounts.
type AccountRepository interface {
	SaveAccount(ctx context.Context, account domain.GLAccount) error
	UpdateAccount(ctx context.Context, account domain.GLAccount) error
	FindAccountByCode(ctx context.Context, tenantID, companyCode, accountCode string) (*domain.GLAccount, error)

	// FindAccountsByCodes batch-resolves accounts for validation; missing
	// codes are simply absent from the returned map.
	FindAccountsByCodes(ctx context.Context, tenantID, companyCode string, accountCodes []string) (map[string]domain.GLAccount, error)

	ListAccounts(ctx context.Context, tenantID, companyCode string, limit int, nextToken *string) ([]domain.GLAccount, *string, error)
}

// CostCenterRepository resolves cost center references on line items.
type CostCenterRepository interface {
	FindCostCentersByCodes(ctx context.Context, tenantID, companyCode string, codes []string) (map[string]domain.CostCenter, error)
	SaveCostCenter(ctx context.Context, cc domain.CostCenter) error
}

// FiscalPeriodRepository defines persistence operations for fiscal periods.
type FiscalPeriodRepository interface {
	// IsPeriodOpen reports whether the period exists and is open. A period
	// with no row is closed.
	IsPeriodOpen(ctx context.Context, tenantID, companyCode string, fiscalYear, period int) (bool, error)

	UpsertPeriod(ctx context.Context, period domain.FiscalPeriod) error
	ListPeriods(ctx context.Context, tenantID, companyCode string, fiscalYear int) ([]domain.FiscalPeriod, error)
}
