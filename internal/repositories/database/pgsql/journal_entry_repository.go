package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finkit/gl_ledger_app/internal/apperrors"
	"github.com/finkit/gl_ledger_app/internal/core/domain"
	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
	"github.com/finkit/gl_ledger_app/internal/utils/pagination"
)

type PgxJournalEntryRepository struct {
	BaseRepository
}

func newPgxJournalEntryRepository(pool *pgxpool.Pool) portsrepo.JournalEntryRepositoryWithTx {
	return &PgxJournalEntryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalEntryRepositoryWithTx = (*PgxJournalEntryRepository)(nil)

const entryColumns = `entry_id, tenant_id, company_code, fiscal_year, document_number,
	document_date, posting_date, currency_code, header_text, reference, status,
	reverses_id, reversed_by_id, reversal_reason, version, posted_at,
	created_at, created_by, last_updated_at, last_updated_by`

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var e domain.JournalEntry
	err := row.Scan(
		&e.EntryID, &e.TenantID, &e.CompanyCode, &e.FiscalYear, &e.DocumentNumber,
		&e.DocumentDate, &e.PostingDate, &e.CurrencyCode, &e.HeaderText, &e.Reference, &e.Status,
		&e.ReversesID, &e.ReversedByID, &e.ReversalReason, &e.Version, &e.PostedAt,
		&e.CreatedAt, &e.CreatedBy, &e.LastUpdatedAt, &e.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan journal entry: %w", err)
	}
	return &e, nil
}

func loadLines(ctx context.Context, q rowQuerier, entryID, currencyCode string) ([]domain.LineItem, error) {
	rows, err := q.Query(ctx, `
		SELECT line_number, account_code, direction, amount, cost_center, profit_center,
		       business_area, functional_area, order_number, tax_code, tax_amount, line_text
		FROM journal_entry_lines
		WHERE entry_id = $1
		ORDER BY line_number`, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	var lines []domain.LineItem
	for rows.Next() {
		var line domain.LineItem
		if err := rows.Scan(
			&line.LineNumber, &line.AccountCode, &line.Direction, &line.Amount.Amount,
			&line.CostCenter, &line.ProfitCenter, &line.BusinessArea, &line.FunctionalArea,
			&line.OrderNumber, &line.TaxCode, &line.TaxAmount, &line.Text,
		); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		// Lines share the header currency; only the minor-unit amount is stored.
		line.Amount.CurrencyCode = currencyCode
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *PgxJournalEntryRepository) findEntry(ctx context.Context, q rowQuerier, where string, args ...any) (*domain.JournalEntry, error) {
	entry, err := scanEntry(q.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE `+where, args...))
	if err != nil {
		return nil, err
	}
	entry.Lines, err = loadLines(ctx, q, entry.EntryID, entry.CurrencyCode)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// FindEntryByID retrieves one entry with its lines, or ErrNotFound.
func (r *PgxJournalEntryRepository) FindEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	return r.findEntry(ctx, r.Pool, `tenant_id = $1 AND entry_id = $2`, tenantID, entryID)
}

// FindEntryByDocumentNumber addresses a posted entry by its business key.
func (r *PgxJournalEntryRepository) FindEntryByDocumentNumber(ctx context.Context, tenantID, companyCode string, fiscalYear int, documentNumber int64) (*domain.JournalEntry, error) {
	return r.findEntry(ctx, r.Pool,
		`tenant_id = $1 AND company_code = $2 AND fiscal_year = $3 AND document_number = $4`,
		tenantID, companyCode, fiscalYear, documentNumber)
}

// ListEntries retrieves a page of entry headers, newest first. The cursor
// encodes the (created_at, entry_id) of the last row of the previous page.
func (r *PgxJournalEntryRepository) ListEntries(ctx context.Context, tenantID string, filter portsrepo.ListEntriesFilter) ([]domain.JournalEntry, *string, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = $1`
	args := []any{tenantID}

	addArg := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}
	if filter.CompanyCode != "" {
		addArg(` AND company_code = $%d`, filter.CompanyCode)
	}
	if filter.FiscalYear != 0 {
		addArg(` AND fiscal_year = $%d`, filter.FiscalYear)
	}
	if filter.Status != "" {
		addArg(` AND status = $%d`, filter.Status)
	}
	if filter.DateFrom != nil {
		addArg(` AND posting_date >= $%d`, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		addArg(` AND posting_date <= $%d`, *filter.DateTo)
	}
	if filter.AccountCode != "" {
		addArg(` AND entry_id IN (SELECT entry_id FROM journal_entry_lines WHERE account_code = $%d)`, filter.AccountCode)
	}
	if filter.CostCenter != "" {
		addArg(` AND entry_id IN (SELECT entry_id FROM journal_entry_lines WHERE cost_center = $%d)`, filter.CostCenter)
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		createdAt, lastID, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidation("invalid_page_token", err.Error())
		}
		args = append(args, createdAt, lastID)
		query += fmt.Sprintf(` AND (created_at, entry_id) < ($%d, $%d)`, len(args)-1, len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra row to detect whether a next page exists.
	addArg(` ORDER BY created_at DESC, entry_id DESC LIMIT $%d`, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		token := pagination.EncodeToken(last.CreatedAt, last.EntryID)
		nextToken = &token
	}
	return entries, nextToken, nil
}

// InsertEntry persists a new entry header and all its lines within the
// caller's transaction.
func (r *PgxJournalEntryRepository) InsertEntry(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		entry.EntryID, entry.TenantID, entry.CompanyCode, entry.FiscalYear, entry.DocumentNumber,
		entry.DocumentDate, entry.PostingDate, entry.CurrencyCode, entry.HeaderText, entry.Reference, entry.Status,
		entry.ReversesID, entry.ReversedByID, entry.ReversalReason, entry.Version, entry.PostedAt,
		entry.CreatedAt, entry.CreatedBy, entry.LastUpdatedAt, entry.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.NewConflict("duplicate_entry",
				fmt.Sprintf("journal entry %s already exists", entry.EntryID))
		}
		return fmt.Errorf("failed to insert journal entry %s: %w", entry.EntryID, err)
	}

	batch := &pgx.Batch{}
	for _, line := range entry.Lines {
		batch.Queue(`
			INSERT INTO journal_entry_lines (entry_id, line_number, account_code, direction, amount,
				cost_center, profit_center, business_area, functional_area, order_number,
				tax_code, tax_amount, line_text)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			entry.EntryID, line.LineNumber, line.AccountCode, line.Direction, line.Amount.Amount,
			line.CostCenter, line.ProfitCenter, line.BusinessArea, line.FunctionalArea, line.OrderNumber,
			line.TaxCode, line.TaxAmount, line.Text,
		)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range entry.Lines {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert line items for entry %s: %w", entry.EntryID, err)
		}
	}
	return results.Close()
}

// LoadEntryForUpdate reloads the entry with its lines under FOR UPDATE,
// serializing concurrent transitions on the same entry.
func (r *PgxJournalEntryRepository) LoadEntryForUpdate(ctx context.Context, tx pgx.Tx, tenantID, entryID string) (*domain.JournalEntry, error) {
	entry, err := scanEntry(tx.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE tenant_id = $1 AND entry_id = $2 FOR UPDATE`,
		tenantID, entryID))
	if err != nil {
		return nil, err
	}
	entry.Lines, err = loadLines(ctx, tx, entry.EntryID, entry.CurrencyCode)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateEntryState writes the header's mutable state guarded by the version
// counter. Zero affected rows means a concurrent transition won.
func (r *PgxJournalEntryRepository) UpdateEntryState(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, expectedVersion int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE journal_entries
		SET document_number = $1, posting_date = $2, status = $3,
		    reverses_id = $4, reversed_by_id = $5, reversal_reason = $6,
		    version = $7, posted_at = $8, last_updated_at = $9, last_updated_by = $10
		WHERE tenant_id = $11 AND entry_id = $12 AND version = $13`,
		entry.DocumentNumber, entry.PostingDate, entry.Status,
		entry.ReversesID, entry.ReversedByID, entry.ReversalReason,
		entry.Version, entry.PostedAt, entry.LastUpdatedAt, entry.LastUpdatedBy,
		entry.TenantID, entry.EntryID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update journal entry %s: %w", entry.EntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewConflict("version_conflict",
			fmt.Sprintf("journal entry %s was modified concurrently", entry.EntryID))
	}
	return nil
}

// NextDocumentNumber increments the per-(tenant, company, year) counter.
// The upsert takes a row lock inside the caller's transaction, so numbers
// are dense and monotonic: an aborted post rolls the increment back.
func (r *PgxJournalEntryRepository) NextDocumentNumber(ctx context.Context, tx pgx.Tx, tenantID, companyCode string, fiscalYear int) (int64, error) {
	var number int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_counters (tenant_id, company_code, fiscal_year, next_value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (tenant_id, company_code, fiscal_year)
		DO UPDATE SET next_value = document_counters.next_value + 1
		RETURNING next_value`,
		tenantID, companyCode, fiscalYear,
	).Scan(&number)
	if err != nil {
		return 0, fmt.Errorf("failed to advance document counter for %s/%d: %w", companyCode, fiscalYear, err)
	}
	return number, nil
}
