package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/finkit/gl_ledger_app/internal/core/domain"
)

// ListEntriesFilter narrows ListEntries. Zero values mean "no filter".
type ListEntriesFilter struct {
	CompanyCode string
	FiscalYear  int
	DateFrom    *time.Time
	DateTo      *time.Time
	AccountCode string
	CostCenter  string
	Status      domain.JournalEntryStatus
	Limit       int
	NextToken   *string
}

// JournalEntryReader defines read operations for journal entries.
type JournalEntryReader interface {
	// FindEntryByID retrieves an entry with its line items, or ErrNotFound.
	FindEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error)

	// FindEntryByDocumentNumber addresses a posted entry by its business key.
	FindEntryByDocumentNumber(ctx context.Context, tenantID, companyCode string, fiscalYear int, documentNumber int64) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entry headers ordered by
	// (created_at DESC, entry_id DESC) with token-based pagination.
	ListEntries(ctx context.Context, tenantID string, filter ListEntriesFilter) ([]domain.JournalEntry, *string, error)
}

// JournalEntryWriter defines write operations for journal entries. Methods
// taking a pgx.Tx participate in the caller's transaction.
type JournalEntryWriter interface {
	// InsertEntry persists a new entry header and all its line items.
	InsertEntry(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error

	// LoadEntryForUpdate reloads an entry with its lines under a row lock,
	// serializing concurrent transitions on the same entry.
	LoadEntryForUpdate(ctx context.Context, tx pgx.Tx, tenantID, entryID string) (*domain.JournalEntry, error)

	// UpdateEntryState writes the header's mutable state (status, document
	// number, posting date, reversal links, version). It fails with
	// ErrConflict when the stored version differs from expectedVersion.
	UpdateEntryState(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, expectedVersion int64) error

	// NextDocumentNumber atomically increments and returns the counter for
	// (tenant, company, fiscal year). It must run inside the same
	// transaction that persists the posted entry; the row lock it takes is
	// what serializes concurrent posts and keeps the sequence gap-free.
	NextDocumentNumber(ctx context.Context, tx pgx.Tx, tenantID, companyCode string, fiscalYear int) (int64, error)
}

// JournalEntryRepositoryFacade combines the journal entry interfaces.
type JournalEntryRepositoryFacade interface {
	JournalEntryReader
	JournalEntryWriter
}

// JournalEntryRepositoryWithTx adds transaction control.
type JournalEntryRepositoryWithTx interface {
	JournalEntryRepositoryFacade
	TransactionManager
}
