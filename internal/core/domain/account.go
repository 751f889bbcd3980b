package domain

// AccountType defines the fundamental accounting type of a GL account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// GLAccount is a general-ledger account in the chart of accounts, scoped to
// a tenant and company code.
type GLAccount struct {
	TenantID          string      `json:"tenantID"`
	CompanyCode       string      `json:"companyCode"`
	AccountCode       string      `json:"accountCode"`
	Name              string      `json:"name"`
	AccountType       AccountType `json:"accountType"`
	IsActive          bool        `json:"isActive"`
	BlockedForPosting bool        `json:"blockedForPosting"`
	AuditFields
}

// CostCenter is a managerial accounting dimension referenced by line items.
// It does not affect GL balance.
type CostCenter struct {
	TenantID    string `json:"tenantID"`
	CompanyCode string `json:"companyCode"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	IsActive    bool   `json:"isActive"`
}
