package services

import (
	"context"

	"github.com/finkit/gl_ledger_app/internal/core/domain"
	"github.com/finkit/gl_ledger_app/internal/dto"
)

// AccountSvcFacade manages the chart of accounts and serves the batch
// lookups the validation pipeline needs.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, principal domain.Principal, req dto.CreateAccountRequest) (*domain.GLAccount, error)
	UpdateAccount(ctx context.Context, principal domain.Principal, companyCode, accountCode string, req dto.UpdateAccountRequest) (*domain.GLAccount, error)
	GetAccount(ctx context.Context, principal domain.Principal, companyCode, accountCode string) (*domain.GLAccount, error)
	ListAccounts(ctx context.Context, principal domain.Principal, companyCode string, limit int, nextToken *string) ([]domain.GLAccount, *string, error)

	// GetAccountsByCodes batch-resolves accounts; missing codes are absent
	// from the map rather than an error.
	GetAccountsByCodes(ctx context.Context, tenantID, companyCode string, accountCodes []string) (map[string]domain.GLAccount, error)
}

// PeriodSvcFacade manages fiscal period open/close state.
type PeriodSvcFacade interface {
	SetPeriodStatus(ctx context.Context, principal domain.Principal, companyCode string, fiscalYear, period int, status domain.PeriodStatus) (*domain.FiscalPeriod, error)
	ListPeriods(ctx context.Context, principal domain.Principal, companyCode string, fiscalYear int) ([]domain.FiscalPeriod, error)
}

// ReportingSvcFacade serves the read-side derived views.
type ReportingSvcFacade interface {
	TrialBalance(ctx context.Context, principal domain.Principal, params dto.TrialBalanceParams) (*dto.TrialBalanceResponse, error)
	AccountBalance(ctx context.Context, principal domain.Principal, companyCode string, fiscalYear int, accountCode string) (*dto.AccountBalanceResponse, error)
}
