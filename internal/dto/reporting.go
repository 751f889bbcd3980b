package dto

import "github.com/shopspring/decimal"

// TrialBalanceParams selects the reporting scope.
type TrialBalanceParams struct {
	CompanyCode string `form:"companyCode" binding:"required"`
	FiscalYear  int    `form:"fiscalYear" binding:"required"`
}

// TrialBalanceRow is the per-account debit/credit aggregate over posted
// entries, rendered in major units.
type TrialBalanceRow struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}

// TrialBalanceResponse is the trial balance for a company and fiscal year.
// For a consistent ledger the two totals are equal.
type TrialBalanceResponse struct {
	CompanyCode string            `json:"companyCode"`
	FiscalYear  int               `json:"fiscalYear"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}

// AccountBalanceResponse is one account's posted totals for a fiscal year.
// Balance is debits minus credits, so liability-natured accounts normally
// show a negative figure.
type AccountBalanceResponse struct {
	CompanyCode string          `json:"companyCode"`
	FiscalYear  int             `json:"fiscalYear"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Balance     decimal.Decimal `json:"balance"`
}
