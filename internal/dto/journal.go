package dto

import (
	"time"

	"github.com/finkit/gl_ledger_app/internal/core/domain"
)

// CreateLineItemRequest is one line of a journal entry to be created.
// LineNumber may be omitted; lines are then numbered in request order.
type CreateLineItemRequest struct {
	LineNumber     int32  `json:"lineNumber"`
	AccountCode    string `json:"accountCode" binding:"required"`
	Direction      string `json:"direction" binding:"required,oneof=DEBIT CREDIT"`
	Amount         int64  `json:"amount" binding:"min=0"` // minor units
	CostCenter     string `json:"costCenter"`
	ProfitCenter   string `json:"profitCenter"`
	BusinessArea   string `json:"businessArea"`
	FunctionalArea string `json:"functionalArea"`
	OrderNumber    string `json:"orderNumber"`
	TaxCode        string `json:"taxCode"`
	TaxAmount      *int64 `json:"taxAmount"`
	Text           string `json:"text"`
}

// CreateJournalEntryRequest creates a Draft entry. No document number is
// assigned until posting.
type CreateJournalEntryRequest struct {
	CompanyCode      string                  `json:"companyCode" binding:"required"`
	FiscalYear       int                     `json:"fiscalYear" binding:"required"`
	DocumentDate     time.Time               `json:"documentDate" binding:"required"`
	PostingDate      time.Time               `json:"postingDate" binding:"required"`
	CurrencyCode     string                  `json:"currencyCode" binding:"required,currencycode"`
	HeaderText       string                  `json:"headerText"`
	Reference        string                  `json:"reference"`
	Lines            []CreateLineItemRequest `json:"lines" binding:"required,min=2,max=999,dive"`
	IdempotencyToken string                  `json:"idempotencyToken"`
}

// PostJournalEntryRequest posts a Draft entry at a posting date.
type PostJournalEntryRequest struct {
	EntryID          string    `json:"-"`
	PostingDate      time.Time `json:"postingDate" binding:"required"`
	IdempotencyToken string    `json:"idempotencyToken"`
}

// ReverseJournalEntryRequest reverses a Posted entry.
type ReverseJournalEntryRequest struct {
	EntryID          string    `json:"-"`
	ReversalDate     time.Time `json:"reversalDate" binding:"required"`
	Reason           string    `json:"reason" binding:"required"`
	IdempotencyToken string    `json:"idempotencyToken"`
}

// GetJournalEntryQuery addresses an entry either by id or by the
// (document number, company code, fiscal year) business key.
type GetJournalEntryQuery struct {
	EntryID        string
	DocumentNumber *int64
	CompanyCode    string
	FiscalYear     int
}

// ListJournalEntriesParams filters and paginates the entry listing.
type ListJournalEntriesParams struct {
	CompanyCode string     `form:"companyCode"`
	FiscalYear  int        `form:"fiscalYear"`
	DateFrom    *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo      *time.Time `form:"dateTo" time_format:"2006-01-02"`
	AccountCode string     `form:"accountCode"`
	CostCenter  string     `form:"costCenter"`
	Status      string     `form:"status" binding:"omitempty,oneof=DRAFT POSTED REVERSED"`
	PageSize    int        `form:"pageSize" binding:"omitempty,min=1,max=100"`
	PageToken   *string    `form:"pageToken"`
}

// LineItemResponse is the wire form of one line item.
type LineItemResponse struct {
	LineNumber     int32  `json:"lineNumber"`
	AccountCode    string `json:"accountCode"`
	Direction      string `json:"direction"`
	Amount         int64  `json:"amount"`
	CostCenter     string `json:"costCenter,omitempty"`
	ProfitCenter   string `json:"profitCenter,omitempty"`
	BusinessArea   string `json:"businessArea,omitempty"`
	FunctionalArea string `json:"functionalArea,omitempty"`
	OrderNumber    string `json:"orderNumber,omitempty"`
	TaxCode        string `json:"taxCode,omitempty"`
	TaxAmount      *int64 `json:"taxAmount,omitempty"`
	Text           string `json:"text,omitempty"`
}

// JournalEntryResponse is the full wire form of an entry.
type JournalEntryResponse struct {
	EntryID        string             `json:"entryID"`
	CompanyCode    string             `json:"companyCode"`
	FiscalYear     int                `json:"fiscalYear"`
	DocumentNumber *int64             `json:"documentNumber,omitempty"`
	DocumentDate   time.Time          `json:"documentDate"`
	PostingDate    time.Time          `json:"postingDate"`
	CurrencyCode   string             `json:"currencyCode"`
	HeaderText     string             `json:"headerText,omitempty"`
	Reference      string             `json:"reference,omitempty"`
	Status         string             `json:"status"`
	Lines          []LineItemResponse `json:"lines"`
	ReversesID     *string            `json:"reversesID,omitempty"`
	ReversedByID   *string            `json:"reversedByID,omitempty"`
	ReversalReason string             `json:"reversalReason,omitempty"`
	Version        int64              `json:"version"`
	CreatedAt      time.Time          `json:"createdAt"`
	PostedAt       *time.Time         `json:"postedAt,omitempty"`
}

// JournalEntrySummary is the listing row.
type JournalEntrySummary struct {
	EntryID        string    `json:"entryID"`
	CompanyCode    string    `json:"companyCode"`
	FiscalYear     int       `json:"fiscalYear"`
	DocumentNumber *int64    `json:"documentNumber,omitempty"`
	PostingDate    time.Time `json:"postingDate"`
	CurrencyCode   string    `json:"currencyCode"`
	HeaderText     string    `json:"headerText,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PostJournalEntryResponse is the result of a successful post. It is the
// payload cached verbatim for idempotent replays.
type PostJournalEntryResponse struct {
	EntryID        string    `json:"entryID"`
	CompanyCode    string    `json:"companyCode"`
	FiscalYear     int       `json:"fiscalYear"`
	DocumentNumber int64     `json:"documentNumber"`
	Status         string    `json:"status"`
	TotalDebit     int64     `json:"totalDebit"`
	TotalCredit    int64     `json:"totalCredit"`
	CurrencyCode   string    `json:"currencyCode"`
	PostedAt       time.Time `json:"postedAt"`
}

// ReverseJournalEntryResponse reports both sides of a reversal.
type ReverseJournalEntryResponse struct {
	OriginalEntryID        string    `json:"originalEntryID"`
	OriginalDocumentNumber int64     `json:"originalDocumentNumber"`
	OriginalStatus         string    `json:"originalStatus"`
	ReversalEntryID        string    `json:"reversalEntryID"`
	ReversalDocumentNumber int64     `json:"reversalDocumentNumber"`
	ReversalDate           time.Time `json:"reversalDate"`
}

// ListJournalEntriesResponse is one page of entry summaries.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntrySummary `json:"entries"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// ToLineItemResponse converts a domain line item.
func ToLineItemResponse(line domain.LineItem) LineItemResponse {
	return LineItemResponse{
		LineNumber:     line.LineNumber,
		AccountCode:    line.AccountCode,
		Direction:      string(line.Direction),
		Amount:         line.Amount.Amount,
		CostCenter:     line.CostCenter,
		ProfitCenter:   line.ProfitCenter,
		BusinessArea:   line.BusinessArea,
		FunctionalArea: line.FunctionalArea,
		OrderNumber:    line.OrderNumber,
		TaxCode:        line.TaxCode,
		TaxAmount:      line.TaxAmount,
		Text:           line.Text,
	}
}

// ToJournalEntryResponse converts a domain entry with its lines.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := make([]LineItemResponse, len(e.Lines))
	for i, line := range e.Lines {
		lines[i] = ToLineItemResponse(line)
	}
	return JournalEntryResponse{
		EntryID:        e.EntryID,
		CompanyCode:    e.CompanyCode,
		FiscalYear:     e.FiscalYear,
		DocumentNumber: e.DocumentNumber,
		DocumentDate:   e.DocumentDate,
		PostingDate:    e.PostingDate,
		CurrencyCode:   e.CurrencyCode,
		HeaderText:     e.HeaderText,
		Reference:      e.Reference,
		Status:         string(e.Status),
		Lines:          lines,
		ReversesID:     e.ReversesID,
		ReversedByID:   e.ReversedByID,
		ReversalReason: e.ReversalReason,
		Version:        e.Version,
		CreatedAt:      e.CreatedAt,
		PostedAt:       e.PostedAt,
	}
}

// ToJournalEntrySummary converts a domain entry header.
func ToJournalEntrySummary(e *domain.JournalEntry) JournalEntrySummary {
	return JournalEntrySummary{
		EntryID:        e.EntryID,
		CompanyCode:    e.CompanyCode,
		FiscalYear:     e.FiscalYear,
		DocumentNumber: e.DocumentNumber,
		PostingDate:    e.PostingDate,
		CurrencyCode:   e.CurrencyCode,
		HeaderText:     e.HeaderText,
		Status:         string(e.Status),
		CreatedAt:      e.CreatedAt,
	}
}

// ToPostJournalEntryResponse builds the canonical post response from a
// posted entry. Retries reconstruct the identical payload from storage.
func ToPostJournalEntryResponse(e *domain.JournalEntry) PostJournalEntryResponse {
	var number int64
	if e.DocumentNumber != nil {
		number = *e.DocumentNumber
	}
	var postedAt time.Time
	if e.PostedAt != nil {
		postedAt = *e.PostedAt
	}
	return PostJournalEntryResponse{
		EntryID:        e.EntryID,
		CompanyCode:    e.CompanyCode,
		FiscalYear:     e.FiscalYear,
		DocumentNumber: number,
		Status:         string(e.Status),
		TotalDebit:     e.TotalDebits().Amount,
		TotalCredit:    e.TotalCredits().Amount,
		CurrencyCode:   e.CurrencyCode,
		PostedAt:       postedAt,
	}
}
