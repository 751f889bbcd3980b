package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finkit/gl_ledger_app/internal/apperrors"
	"github.com/finkit/gl_ledger_app/internal/core/domain"
	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
	"github.com/finkit/gl_ledger_app/internal/core/services"
	"github.com/finkit/gl_ledger_app/internal/dto"
)

type stubReportingRepo struct {
	rows []portsrepo.TrialBalanceAggregate
}

func (r *stubReportingRepo) TrialBalanceRows(ctx context.Context, tenantID, companyCode string, fiscalYear int) ([]portsrepo.TrialBalanceAggregate, error) {
	return r.rows, nil
}

func reportingFixture() *stubReportingRepo {
	return &stubReportingRepo{rows: []portsrepo.TrialBalanceAggregate{
		{AccountCode: "113100", AccountName: "Bank", AccountType: "ASSET", CurrencyCode: "EUR", TotalDebitMinor: 0, TotalCreditMinor: 120000},
		{AccountCode: "470000", AccountName: "Rent", AccountType: "EXPENSE", CurrencyCode: "EUR", TotalDebitMinor: 120000, TotalCreditMinor: 0},
	}}
}

func TestTrialBalance(t *testing.T) {
	svc := services.NewReportingService(reportingFixture())
	principal := domain.Principal{TenantID: "tenant-1", UserID: "user-1", Roles: []string{domain.RoleAccountant}}

	resp, err := svc.TrialBalance(context.Background(), principal, dto.TrialBalanceParams{CompanyCode: "1000", FiscalYear: 2026})
	require.NoError(t, err)

	require.Len(t, resp.Rows, 2)
	assert.True(t, resp.TotalDebit.Equal(decimal.NewFromInt(1200)), resp.TotalDebit.String())
	assert.True(t, resp.TotalDebit.Equal(resp.TotalCredit))
	assert.True(t, resp.Rows[1].TotalDebit.Equal(decimal.NewFromInt(1200)))
}

func TestAccountBalance(t *testing.T) {
	svc := services.NewReportingService(reportingFixture())
	principal := domain.Principal{TenantID: "tenant-1", UserID: "user-1", Roles: []string{domain.RoleAccountant}}

	resp, err := svc.AccountBalance(context.Background(), principal, "1000", 2026, "113100")
	require.NoError(t, err)
	assert.Equal(t, "113100", resp.AccountCode)
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(-1200)), resp.Balance.String())

	_, err = svc.AccountBalance(context.Background(), principal, "1000", 2026, "999999")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
