package domain

import (
	"fmt"
	"time"

	"github.com/finkit/gl_ledger_app/internal/apperrors"
)

// JournalEntryStatus indicates the lifecycle state of a journal entry.
type JournalEntryStatus string

const (
	Draft    JournalEntryStatus = "DRAFT"
	Posted   JournalEntryStatus = "POSTED"
	Reversed JournalEntryStatus = "REVERSED"
)

// Direction indicates whether a line item is a Debit or a Credit.
type Direction string

const (
	Debit  Direction = "DEBIT"
	Credit Direction = "CREDIT"
)

// Inverse returns the opposite posting direction.
func (d Direction) Inverse() Direction {
	if d == Debit {
		return Credit
	}
	return Debit
}

const (
	// MinLineItems is the smallest line count a balanced entry can have.
	MinLineItems = 2
	// MaxLineItems caps the line count per entry.
	MaxLineItems = 999
)

// LineItem is one debit or credit against one GL account within an entry.
// A line has no identity outside its entry; the pair (entry, line number)
// addresses it.
type LineItem struct {
	LineNumber     int32     `json:"lineNumber"` // 1..999, contiguous per entry
	AccountCode    string    `json:"accountCode"`
	Direction      Direction `json:"direction"`
	Amount         Money     `json:"amount"` // non-negative; sign lives in Direction
	CostCenter     string    `json:"costCenter,omitempty"`
	ProfitCenter   string    `json:"profitCenter,omitempty"`
	BusinessArea   string    `json:"businessArea,omitempty"`
	FunctionalArea string    `json:"functionalArea,omitempty"`
	OrderNumber    string    `json:"orderNumber,omitempty"`
	TaxCode        string    `json:"taxCode,omitempty"`
	TaxAmount      *int64    `json:"taxAmount,omitempty"` // minor units, informational
	Text           string    `json:"text,omitempty"`
}

// JournalEntry is the posting aggregate. It owns its line items exclusively
// and is the only place entry state changes.
type JournalEntry struct {
	EntryID        string             `json:"entryID"`
	TenantID       string             `json:"tenantID"`
	CompanyCode    string             `json:"companyCode"`
	FiscalYear     int                `json:"fiscalYear"`
	DocumentNumber *int64             `json:"documentNumber,omitempty"` // absent until posted
	DocumentDate   time.Time          `json:"documentDate"`
	PostingDate    time.Time          `json:"postingDate"`
	CurrencyCode   string             `json:"currencyCode"`
	HeaderText     string             `json:"headerText,omitempty"`
	Reference      string             `json:"reference,omitempty"`
	Status         JournalEntryStatus `json:"status"`
	Lines          []LineItem         `json:"lines,omitempty"`
	ReversesID     *string            `json:"reversesID,omitempty"`    // set on the reversing entry
	ReversedByID   *string            `json:"reversedByID,omitempty"`  // set on the reversed original
	ReversalReason string             `json:"reversalReason,omitempty"`
	Version        int64              `json:"version"`
	PostedAt       *time.Time         `json:"postedAt,omitempty"`
	AuditFields
}

// ValidateStructure enforces the shape invariants: line count bounds,
// contiguous distinct line numbers, non-negative amounts, single currency,
// nonempty account codes.
func (e *JournalEntry) ValidateStructure(maxHeaderTextLen int) error {
	if len(e.Lines) < MinLineItems {
		return apperrors.NewValidation("too_few_lines",
			fmt.Sprintf("journal entry must have at least %d line items", MinLineItems))
	}
	if len(e.Lines) > MaxLineItems {
		return apperrors.NewValidation("too_many_lines",
			fmt.Sprintf("journal entry must have at most %d line items", MaxLineItems))
	}
	if maxHeaderTextLen > 0 && len(e.HeaderText) > maxHeaderTextLen {
		return apperrors.NewValidation("header_text_too_long",
			fmt.Sprintf("header text exceeds %d characters", maxHeaderTextLen))
	}
	seen := make(map[int32]struct{}, len(e.Lines))
	for _, line := range e.Lines {
		if line.LineNumber < 1 || int(line.LineNumber) > len(e.Lines) {
			return apperrors.NewValidation("line_numbers_not_contiguous",
				fmt.Sprintf("line number %d outside 1..%d", line.LineNumber, len(e.Lines)))
		}
		if _, dup := seen[line.LineNumber]; dup {
			return apperrors.NewValidation("duplicate_line_number",
				fmt.Sprintf("line number %d appears more than once", line.LineNumber))
		}
		seen[line.LineNumber] = struct{}{}

		if line.AccountCode == "" {
			return apperrors.NewValidation("missing_account",
				fmt.Sprintf("line %d has no account code", line.LineNumber))
		}
		if line.Direction != Debit && line.Direction != Credit {
			return apperrors.NewValidation("invalid_direction",
				fmt.Sprintf("line %d direction must be DEBIT or CREDIT", line.LineNumber))
		}
		if line.Amount.IsNegative() {
			return apperrors.NewValidation("negative_amount",
				fmt.Sprintf("line %d amount must be non-negative", line.LineNumber))
		}
		if line.Amount.CurrencyCode != e.CurrencyCode {
			return apperrors.NewValidation("currency_mismatch",
				fmt.Sprintf("line %d currency %s does not match header currency %s",
					line.LineNumber, line.Amount.CurrencyCode, e.CurrencyCode))
		}
	}
	return nil
}

// TotalDebits sums the debit side in header-currency minor units.
func (e *JournalEntry) TotalDebits() Money {
	total := ZeroMoney(e.CurrencyCode)
	for _, line := range e.Lines {
		if line.Direction == Debit {
			total.Amount += line.Amount.Amount
		}
	}
	return total
}

// TotalCredits sums the credit side in header-currency minor units.
func (e *JournalEntry) TotalCredits() Money {
	total := ZeroMoney(e.CurrencyCode)
	for _, line := range e.Lines {
		if line.Direction == Credit {
			total.Amount += line.Amount.Amount
		}
	}
	return total
}

// IsBalanced reports exact debit/credit equality in minor units.
func (e *JournalEntry) IsBalanced() bool {
	return e.TotalDebits().Amount == e.TotalCredits().Amount
}

// BalanceDifference returns debits minus credits in minor units.
func (e *JournalEntry) BalanceDifference() int64 {
	return e.TotalDebits().Amount - e.TotalCredits().Amount
}

// Post transitions Draft → Posted, stamping the document number, posting
// date and posted-at time. The caller has already run the validation
// pipeline; Post re-checks only the transition guards it owns.
func (e *JournalEntry) Post(postingDate time.Time, documentNumber int64, byUserID string, at time.Time) error {
	if e.Status != Draft {
		return apperrors.NewPrecondition("not_draft",
			fmt.Sprintf("journal entry %s is %s, expected DRAFT", e.EntryID, e.Status))
	}
	if !e.IsBalanced() {
		return apperrors.NewValidation("unbalanced",
			fmt.Sprintf("debits and credits differ by %d minor units", e.BalanceDifference()))
	}
	e.Status = Posted
	e.PostingDate = postingDate
	e.DocumentNumber = &documentNumber
	postedAt := at
	e.PostedAt = &postedAt
	e.Version++
	e.LastUpdatedAt = at
	e.LastUpdatedBy = byUserID
	return nil
}

// BuildReversal produces a new Draft entry whose lines invert this entry's
// directions, linked back via ReversesID. The original is not mutated here;
// MarkReversed applies the back-link once the reversing entry is persisted.
func (e *JournalEntry) BuildReversal(newEntryID string, reversalDate time.Time, reason, byUserID string, at time.Time) (*JournalEntry, error) {
	if e.Status != Posted {
		return nil, apperrors.NewPrecondition("not_posted",
			fmt.Sprintf("journal entry %s is %s, expected POSTED", e.EntryID, e.Status))
	}
	if e.ReversedByID != nil {
		return nil, apperrors.NewPrecondition("already_reversed",
			fmt.Sprintf("journal entry %s is already reversed", e.EntryID))
	}
	if e.ReversesID != nil {
		return nil, apperrors.NewPrecondition("is_reversal",
			fmt.Sprintf("journal entry %s is itself a reversal", e.EntryID))
	}

	lines := make([]LineItem, len(e.Lines))
	for i, line := range e.Lines {
		inverted := line
		inverted.Direction = line.Direction.Inverse()
		lines[i] = inverted
	}

	originalID := e.EntryID
	reversal := &JournalEntry{
		EntryID:        newEntryID,
		TenantID:       e.TenantID,
		CompanyCode:    e.CompanyCode,
		FiscalYear:     reversalDate.Year(),
		DocumentDate:   reversalDate,
		PostingDate:    reversalDate,
		CurrencyCode:   e.CurrencyCode,
		HeaderText:     fmt.Sprintf("Reversal of: %s", e.HeaderText),
		Reference:      e.Reference,
		Status:         Draft,
		Lines:          lines,
		ReversesID:     &originalID,
		ReversalReason: reason,
		Version:        1,
		AuditFields: AuditFields{
			CreatedAt:     at,
			CreatedBy:     byUserID,
			LastUpdatedAt: at,
			LastUpdatedBy: byUserID,
		},
	}
	return reversal, nil
}

// MarkReversed transitions Posted → Reversed and records the reversing link.
func (e *JournalEntry) MarkReversed(reversedByID, byUserID string, at time.Time) error {
	if e.Status != Posted {
		return apperrors.NewPrecondition("not_posted",
			fmt.Sprintf("journal entry %s is %s, expected POSTED", e.EntryID, e.Status))
	}
	e.Status = Reversed
	e.ReversedByID = &reversedByID
	e.Version++
	e.LastUpdatedAt = at
	e.LastUpdatedBy = byUserID
	return nil
}
