package dto

import (
	"github.com/finkit/gl_ledger_app/internal/core/domain"
)

// CreateAccountRequest creates a GL account in the chart of accounts.
type CreateAccountRequest struct {
	CompanyCode string `json:"companyCode" binding:"required"`
	AccountCode string `json:"accountCode" binding:"required"`
	Name        string `json:"name" binding:"required"`
	AccountType string `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
}

// UpdateAccountRequest changes the mutable GL account flags.
type UpdateAccountRequest struct {
	Name              *string `json:"name"`
	IsActive          *bool   `json:"isActive"`
	BlockedForPosting *bool   `json:"blockedForPosting"`
}

// AccountResponse is the wire form of a GL account.
type AccountResponse struct {
	CompanyCode       string `json:"companyCode"`
	AccountCode       string `json:"accountCode"`
	Name              string `json:"name"`
	AccountType       string `json:"accountType"`
	IsActive          bool   `json:"isActive"`
	BlockedForPosting bool   `json:"blockedForPosting"`
}

// ListAccountsResponse is one page of accounts.
type ListAccountsResponse struct {
	Accounts  []AccountResponse `json:"accounts"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToAccountResponse converts a domain GL account.
func ToAccountResponse(a *domain.GLAccount) AccountResponse {
	return AccountResponse{
		CompanyCode:       a.CompanyCode,
		AccountCode:       a.AccountCode,
		Name:              a.Name,
		AccountType:       string(a.AccountType),
		IsActive:          a.IsActive,
		BlockedForPosting: a.BlockedForPosting,
	}
}

// UpdatePeriodRequest opens or closes a fiscal period. The company code,
// year and period are taken from the URL, not the body.
type UpdatePeriodRequest struct {
	Status string `json:"status" binding:"required,oneof=OPEN CLOSED"`
}

// PeriodResponse is the wire form of a fiscal period.
type PeriodResponse struct {
	CompanyCode string `json:"companyCode"`
	FiscalYear  int    `json:"fiscalYear"`
	Period      int    `json:"period"`
	Status      string `json:"status"`
}

// ListPeriodsResponse lists the periods of a fiscal year.
type ListPeriodsResponse struct {
	Periods []PeriodResponse `json:"periods"`
}

// ToPeriodResponse converts a domain fiscal period.
func ToPeriodResponse(p domain.FiscalPeriod) PeriodResponse {
	return PeriodResponse{
		CompanyCode: p.CompanyCode,
		FiscalYear:  p.FiscalYear,
		Period:      p.Period,
		Status:      string(p.Status),
	}
}
