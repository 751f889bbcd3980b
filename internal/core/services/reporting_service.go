package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finkit/gl_ledger_app/internal/apperrors"
	"github.com/finkit/gl_ledger_app/internal/core/domain"
	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finkit/gl_ledger_app/internal/core/ports/services"
	"github.com/finkit/gl_ledger_app/internal/dto"
)

type reportingService struct {
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates the read-side reporting service.
func NewReportingService(reportingRepo portsrepo.ReportingRepository) portssvc.ReportingSvcFacade {
	return &reportingService{reportingRepo: reportingRepo}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// TrialBalance aggregates posted line items per account. The database does
// the summation in minor units; conversion to major units happens here so
// no rounding ever enters the stored ledger.
func (s *reportingService) TrialBalance(ctx context.Context, principal domain.Principal, params dto.TrialBalanceParams) (*dto.TrialBalanceResponse, error) {
	aggregates, err := s.reportingRepo.TrialBalanceRows(ctx, principal.TenantID, params.CompanyCode, params.FiscalYear)
	if err != nil {
		return nil, fmt.Errorf("failed to compute trial balance: %w", err)
	}

	resp := &dto.TrialBalanceResponse{
		CompanyCode: params.CompanyCode,
		FiscalYear:  params.FiscalYear,
		Rows:        make([]dto.TrialBalanceRow, len(aggregates)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for i, agg := range aggregates {
		debit := domain.Money{Amount: agg.TotalDebitMinor, CurrencyCode: agg.CurrencyCode}.Decimal()
		credit := domain.Money{Amount: agg.TotalCreditMinor, CurrencyCode: agg.CurrencyCode}.Decimal()
		resp.Rows[i] = dto.TrialBalanceRow{
			AccountCode: agg.AccountCode,
			AccountName: agg.AccountName,
			AccountType: agg.AccountType,
			TotalDebit:  debit,
			TotalCredit: credit,
		}
		resp.TotalDebit = resp.TotalDebit.Add(debit)
		resp.TotalCredit = resp.TotalCredit.Add(credit)
	}
	return resp, nil
}

// AccountBalance is the single-account slice of the trial balance aggregate.
func (s *reportingService) AccountBalance(ctx context.Context, principal domain.Principal, companyCode string, fiscalYear int, accountCode string) (*dto.AccountBalanceResponse, error) {
	aggregates, err := s.reportingRepo.TrialBalanceRows(ctx, principal.TenantID, companyCode, fiscalYear)
	if err != nil {
		return nil, fmt.Errorf("failed to compute account balance: %w", err)
	}

	for _, agg := range aggregates {
		if agg.AccountCode != accountCode {
			continue
		}
		debit := domain.Money{Amount: agg.TotalDebitMinor, CurrencyCode: agg.CurrencyCode}.Decimal()
		credit := domain.Money{Amount: agg.TotalCreditMinor, CurrencyCode: agg.CurrencyCode}.Decimal()
		return &dto.AccountBalanceResponse{
			CompanyCode: companyCode,
			FiscalYear:  fiscalYear,
			AccountCode: agg.AccountCode,
			AccountName: agg.AccountName,
			AccountType: agg.AccountType,
			TotalDebit:  debit,
			TotalCredit: credit,
			Balance:     debit.Sub(credit),
		}, nil
	}
	return nil, apperrors.NewNotFound(
		fmt.Sprintf("account %s has no postings in fiscal year %d", accountCode, fiscalYear))
}
