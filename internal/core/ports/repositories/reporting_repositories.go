package repositories

import "context"

// TrialBalanceAggregate is one account's debit/credit totals over posted
// entries, in minor units of the company currency.
type TrialBalanceAggregate struct {
	AccountCode      string
	AccountName      string
	AccountType      string
	CurrencyCode     string
	TotalDebitMinor  int64
	TotalCreditMinor int64
}

// ReportingRepository serves read-side aggregates computed by the database.
type ReportingRepository interface {
	TrialBalanceRows(ctx context.Context, tenantID, companyCode string, fiscalYear int) ([]TrialBalanceAggregate, error)
}
