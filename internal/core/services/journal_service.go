package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/finkit/gl_ledger_app/internal/apperrors"
	"github.com/finkit/gl_ledger_app/internal/core/domain"
	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finkit/gl_ledger_app/internal/core/ports/services"
	"github.com/finkit/gl_ledger_app/internal/dto"
	"github.com/finkit/gl_ledger_app/internal/middleware"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// journalService is the posting engine: it validates journal entry
// commands, brackets them with the idempotency store, allocates document
// numbers inside the posting transaction and emits audit records.
type journalService struct {
	journalRepo portsrepo.JournalEntryRepositoryWithTx
	auditRepo   portsrepo.AuditRepository
	idemStore   portsrepo.IdempotencyStore
	validator   *entryValidator
	auditInTx   bool
	now         func() time.Time
}

// JournalServiceOption configures optional behavior of the posting engine.
type JournalServiceOption func(*journalService)

// WithHardAudit binds audit writes into the business transaction instead of
// the default best-effort emission.
func WithHardAudit() JournalServiceOption {
	return func(s *journalService) { s.auditInTx = true }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) JournalServiceOption {
	return func(s *journalService) { s.now = now }
}

// NewJournalService creates the posting engine service.
func NewJournalService(
	journalRepo portsrepo.JournalEntryRepositoryWithTx,
	accountSvc portssvc.AccountSvcFacade,
	costCenterRepo portsrepo.CostCenterRepository,
	periodRepo portsrepo.FiscalPeriodRepository,
	auditRepo portsrepo.AuditRepository,
	idemStore portsrepo.IdempotencyStore,
	maxHeaderTextLen int,
	opts ...JournalServiceOption,
) portssvc.JournalSvcFacade {
	s := &journalService{
		journalRepo: journalRepo,
		auditRepo:   auditRepo,
		idemStore:   idemStore,
		validator:   newEntryValidator(accountSvc, costCenterRepo, periodRepo, maxHeaderTextLen),
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// fingerprint hashes the request body so a reused idempotency token with a
// different body is detected as a conflict.
func fingerprint(body any) string {
	raw, err := json.Marshal(body)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// idemHandle tracks ownership of an in-flight idempotency record. A zero
// handle (no token supplied) is a no-op on finish/abandon.
type idemHandle struct {
	owned    bool
	tenantID string
	token    string
}

// beginIdempotent short-circuits to the cached response when the token has
// completed, fails with Conflict while another request holds it, and
// otherwise claims it for this caller.
func (s *journalService) beginIdempotent(ctx context.Context, tenantID, token string, body any) ([]byte, idemHandle, error) {
	if token == "" {
		return nil, idemHandle{}, nil
	}
	result, err := s.idemStore.Begin(ctx, tenantID, token, fingerprint(body))
	if err != nil {
		return nil, idemHandle{}, err
	}
	switch result.State {
	case portsrepo.BeginCompleted:
		return result.Response, idemHandle{}, nil
	case portsrepo.BeginInFlight:
		return nil, idemHandle{}, apperrors.NewConflict("idempotency_in_flight",
			"another request with this idempotency token is in progress")
	default:
		return nil, idemHandle{owned: true, tenantID: tenantID, token: token}, nil
	}
}

func (s *journalService) finishIdempotent(ctx context.Context, handle idemHandle, response []byte) {
	if !handle.owned {
		return
	}
	if err := s.idemStore.Finish(ctx, handle.tenantID, handle.token, response); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to finish idempotency record",
			slog.String("token", handle.token), slog.String("error", err.Error()))
	}
}

func (s *journalService) abandonIdempotent(ctx context.Context, handle idemHandle) {
	if !handle.owned {
		return
	}
	if err := s.idemStore.Abandon(ctx, handle.tenantID, handle.token); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to abandon idempotency record",
			slog.String("token", handle.token), slog.String("error", err.Error()))
	}
}

// audit emits one record per attempted transition. Best-effort: a failed
// audit write is logged, never propagated.
func (s *journalService) audit(ctx context.Context, tenantID, actor string, action domain.AuditAction, entityID string, opErr error) {
	record := domain.AuditRecord{
		At:         s.now(),
		TenantID:   tenantID,
		Actor:      actor,
		Action:     action,
		EntityKind: "journal_entry",
		EntityID:   entityID,
		Outcome:    domain.AuditSuccess,
	}
	if opErr != nil {
		record.Outcome = domain.AuditFailure
		record.Reason = apperrors.CodeOf(opErr)
		if record.Reason == "" {
			record.Reason = opErr.Error()
		}
	}
	if err := s.auditRepo.InsertAuditRecord(ctx, record); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to write audit record",
			slog.String("action", string(action)), slog.String("entity_id", entityID),
			slog.String("error", err.Error()))
	}
}

func (s *journalService) auditInTransaction(ctx context.Context, tx pgx.Tx, tenantID, actor string, action domain.AuditAction, entityID string) error {
	record := domain.AuditRecord{
		At:         s.now(),
		TenantID:   tenantID,
		Actor:      actor,
		Action:     action,
		EntityKind: "journal_entry",
		EntityID:   entityID,
		Outcome:    domain.AuditSuccess,
	}
	return s.auditRepo.InsertAuditRecordInTx(ctx, tx, record)
}

// CreateJournalEntry builds and persists a Draft entry. The document number
// is not assigned until posting.
func (s *journalService) CreateJournalEntry(ctx context.Context, principal domain.Principal, req dto.CreateJournalEntryRequest) (*dto.JournalEntryResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := authorizeTransition(principal, transitionCreate); err != nil {
		s.audit(ctx, principal.TenantID, principal.UserID, domain.AuditCreate, "", err)
		return nil, err
	}

	cached, handle, err := s.beginIdempotent(ctx, principal.TenantID, req.IdempotencyToken, req)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		var resp dto.JournalEntryResponse
		if err := json.Unmarshal(cached, &resp); err != nil {
			return nil, apperrors.NewInternal("corrupt cached idempotency response", err)
		}
		return &resp, nil
	}

	resp, err := s.doCreate(ctx, principal, req)
	if err != nil {
		s.abandonIdempotent(ctx, handle)
		s.audit(ctx, principal.TenantID, principal.UserID, domain.AuditCreate, "", err)
		return nil, err
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		logger.Error("Failed to marshal create response for idempotency cache", slog.String("error", err.Error()))
	} else {
		s.finishIdempotent(ctx, handle, payload)
	}
	logger.Info("Journal entry created", slog.String("entry_id", resp.EntryID),
		slog.String("company_code", resp.CompanyCode))
	return resp, nil
}

func (s *journalService) doCreate(ctx context.Context, principal domain.Principal, req dto.CreateJournalEntryRequest) (*dto.JournalEntryResponse, error) {
	now := s.now()
	entry := &domain.JournalEntry{
		EntryID:      uuid.NewString(),
		TenantID:     principal.TenantID,
		CompanyCode:  req.CompanyCode,
		FiscalYear:   req.FiscalYear,
		DocumentDate: req.DocumentDate,
		PostingDate:  req.PostingDate,
		CurrencyCode: req.CurrencyCode,
		HeaderText:   req.HeaderText,
		Reference:    req.Reference,
		Status:       domain.Draft,
		Lines:        buildLines(req.Lines, req.CurrencyCode),
		Version:      1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     principal.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: principal.UserID,
		},
	}

	if err := entry.ValidateStructure(s.validator.maxHeaderTextLen); err != nil {
		return nil, err
	}
	if err := s.validator.validateMasterData(ctx, entry, req.PostingDate); err != nil {
		return nil, err
	}
	if err := validateBalance(entry); err != nil {
		return nil, err
	}

	tx, err := s.journalRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.journalRepo.Rollback(ctx, tx)

	if err := s.journalRepo.InsertEntry(ctx, tx, *entry); err != nil {
		return nil, fmt.Errorf("failed to insert journal entry: %w", err)
	}
	if s.auditInTx {
		if err := s.auditInTransaction(ctx, tx, principal.TenantID, principal.UserID, domain.AuditCreate, entry.EntryID); err != nil {
			return nil, fmt.Errorf("failed to write audit record: %w", err)
		}
	}
	if err := s.journalRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	if !s.auditInTx {
		s.audit(ctx, principal.TenantID, principal.UserID, domain.AuditCreate, entry.EntryID, nil)
	}
	resp := dto.ToJournalEntryResponse(entry)
	return &resp, nil
}

// buildLines maps request lines to domain line items. When every request
// line number is zero, lines are numbered in request order.
func buildLines(reqLines []dto.CreateLineItemRequest, currencyCode string) []domain.LineItem {
	autoNumber := true
	for _, line := range reqLines {
		if line.LineNumber != 0 {
			autoNumber = false
			break
		}
	}
	lines := make([]domain.LineItem, len(reqLines))
	for i, line := range reqLines {
		number := line.LineNumber
		if autoNumber {
			number = int32(i + 1)
		}
		lines[i] = domain.LineItem{
			LineNumber:     number,
			AccountCode:    line.AccountCode,
			Direction:      domain.Direction(line.Direction),
			Amount:         domain.Money{Amount: line.Amount, CurrencyCode: currencyCode},
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
	return lines
}

// PostJournalEntry transitions a Draft entry to Posted: full validation,
// document number allocation and the header update run inside one
// transaction so a rollback releases the allocated number.
func (s *journalService) PostJournalEntry(ctx context.Context, principal domain.Principal, req dto.PostJournalEntryRequest) (*dto.PostJournalEntryResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := authorizeTransition(principal, transitionPost); err != nil {
		s.audit(ctx, principal.TenantID, principal.UserID, domain.AuditPost, req.EntryID, err)
		return nil, err
	}

	// EntryID is bound from the URL and excluded from the JSON body, so it
	// goes into the fingerprint explicitly.
	fingerprintBody := map[string]any{"entryID": req.EntryID, "postingDate": req.PostingDate}
	cached, handle, err := s.beginIdempotent(ctx, principal.TenantID, req.IdempotencyToken, fingerprintBody)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		var resp dto.PostJournalEntryResponse
		if err := json.Unmarshal(cached, &resp); err != nil {
			return nil, apperrors.NewInternal("corrupt cached idempotency response", err)
		}
		return &resp, nil
	}

	resp, err := s.doPost(ctx, principal, req, handle.owned)
	if err == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		// The commit landed but the deadline passed; surface success anyway.
		logger.Warn("Deadline exceeded after commit", slog.String("entry_id", req.EntryID))
	}
	if err != nil {
		s.abandonIdempotent(ctx, handle)
		s.audit(ctx, principal.TenantID, principal.UserID, domain.AuditPost, req.EntryID, err)
		return nil, err
	}

	if payload, merr := json.Marshal(resp); merr == nil {
		s.finishIdempotent(ctx, handle, payload)
	}
	logger.Info("Journal entry posted", slog.String("entry_id", resp.EntryID),
		slog.Int64("document_number", resp.DocumentNumber))
	return resp, nil
}

func (s *journalService) doPost(ctx context.Context, principal domain.Principal, req dto.PostJournalEntryRequest, tokenOwned bool) (*dto.PostJournalEntryResponse, error) {
	// One transparent retry on a version conflict; everything else
	// propagates to the caller.
	resp, err := s.postOnce(ctx, principal, req, tokenOwned)
	if err != nil && errors.Is(err, apperrors.ErrConflict) && apperrors.CodeOf(err) == "version_conflict" {
		middleware.GetLoggerFromCtx(ctx).Warn("Retrying post after version conflict",
			slog.String("entry_id", req.EntryID))
		return s.postOnce(ctx, principal, req, tokenOwned)
	}
	return resp, err
}

func (s *journalService) postOnce(ctx context.Context, principal domain.Principal, req dto.PostJournalEntryRequest, tokenOwned bool) (*dto.PostJournalEntryResponse, error) {
	tx, err := s.journalRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.journalRepo.Rollback(ctx, tx)

	entry, err := s.journalRepo.LoadEntryForUpdate(ctx, tx, principal.TenantID, req.EntryID)
	if err != nil {
		return nil, err
	}

	if entry.Status == domain.Posted && tokenOwned && entry.PostingDate.Equal(req.PostingDate) {
		// A prior attempt committed but never finished its idempotency
		// record (crash between commit and finish). Only a request matching
		// the committed state replays the canonical response; a request with
		// a different posting date is a distinct operation and must fail the
		// status guard below.
		resp := dto.ToPostJournalEntryResponse(entry)
		return &resp, nil
	}
	if entry.Status != domain.Draft {
		return nil, apperrors.NewPrecondition("not_draft",
			fmt.Sprintf("journal entry %s is %s, expected DRAFT", entry.EntryID, entry.Status))
	}

	if err := s.validator.Validate(ctx, entry, principal, transitionPost, req.PostingDate); err != nil {
		return nil, err
	}

	loadedVersion := entry.Version
	number, err := s.journalRepo.NextDocumentNumber(ctx, tx, entry.TenantID, entry.CompanyCode, entry.FiscalYear)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate document number: %w", err)
	}

	if err := entry.Post(req.PostingDate, number, principal.UserID, s.now()); err != nil {
		return nil, err
	}
	if err := s.journalRepo.UpdateEntryState(ctx, tx, *entry, loadedVersion); err != nil {
		return nil, err
	}
	if s.auditInTx {
		if err := s.auditInTransaction(ctx, tx, principal.TenantID, principal.UserID, domain.AuditPost, entry.EntryID); err != nil {
			return nil, fmt.Errorf("failed to write audit record: %w", err)
		}
	}
	if err := s.journalRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	if !s.auditInTx {
		s.audit(ctx, principal.TenantID, principal.UserID, domain.AuditPost, entry.EntryID, nil)
	}
	resp := dto.ToPostJournalEntryResponse(entry)
	return &resp, nil
}

// ReverseJournalEntry posts an inverse entry and marks the original
// Reversed, atomically in one transaction.
func (s *journalService) ReverseJournalEntry(ctx context.Context, principal domain.Principal, req dto.ReverseJournalEntryRequest) (*dto.ReverseJournalEntryResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := authorizeTransition(principal, transitionReverse); err != nil {
		s.audit(ctx, principal.TenantID, principal.UserID, domain.AuditReverse, req.EntryID, err)
		return nil, err
	}

	fingerprintBody := map[string]any{"entryID": req.EntryID, "reversalDate": req.ReversalDate, "reason": req.Reason}
	cached, handle, err := s.beginIdempotent(ctx, principal.TenantID, req.IdempotencyToken, fingerprintBody)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		var resp dto.ReverseJournalEntryResponse
		if err := json.Unmarshal(cached, &resp); err != nil {
			return nil, apperrors.NewInternal("corrupt cached idempotency response", err)
		}
		return &resp, nil
	}

	resp, err := s.doReverse(ctx, principal, req, handle.owned)
	if err != nil {
		s.abandonIdempotent(ctx, handle)
		s.audit(ctx, principal.TenantID, principal.UserID, domain.AuditReverse, req.EntryID, err)
		return nil, err
	}

	if payload, merr := json.Marshal(resp); merr == nil {
		s.finishIdempotent(ctx, handle, payload)
	}
	logger.Info("Journal entry reversed",
		slog.String("original_entry_id", resp.OriginalEntryID),
		slog.String("reversal_entry_id", resp.ReversalEntryID),
		slog.Int64("reversal_document_number", resp.ReversalDocumentNumber))
	return resp, nil
}

func (s *journalService) doReverse(ctx context.Context, principal domain.Principal, req dto.ReverseJournalEntryRequest, tokenOwned bool) (*dto.ReverseJournalEntryResponse, error) {
	tx, err := s.journalRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.journalRepo.Rollback(ctx, tx)

	original, err := s.journalRepo.LoadEntryForUpdate(ctx, tx, principal.TenantID, req.EntryID)
	if err != nil {
		return nil, err
	}

	if original.Status == domain.Reversed && original.ReversedByID != nil && tokenOwned {
		// Crash recovery: the reversal committed but the idempotency record
		// was never finished. Replay only when the request matches the
		// committed reversal; otherwise fall through to the status guard in
		// BuildReversal.
		reversal, ferr := s.journalRepo.FindEntryByID(ctx, principal.TenantID, *original.ReversedByID)
		if ferr != nil {
			return nil, ferr
		}
		if reversal.PostingDate.Equal(req.ReversalDate) && reversal.ReversalReason == req.Reason {
			resp := buildReverseResponse(original, reversal)
			return &resp, nil
		}
	}

	reversal, err := original.BuildReversal(uuid.NewString(), req.ReversalDate, req.Reason, principal.UserID, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(ctx, reversal, principal, transitionReverse, req.ReversalDate); err != nil {
		return nil, err
	}

	number, err := s.journalRepo.NextDocumentNumber(ctx, tx, reversal.TenantID, reversal.CompanyCode, reversal.FiscalYear)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate document number: %w", err)
	}
	if err := reversal.Post(req.ReversalDate, number, principal.UserID, s.now()); err != nil {
		return nil, err
	}
	if err := s.journalRepo.InsertEntry(ctx, tx, *reversal); err != nil {
		return nil, fmt.Errorf("failed to insert reversing entry: %w", err)
	}

	originalVersion := original.Version
	if err := original.MarkReversed(reversal.EntryID, principal.UserID, s.now()); err != nil {
		return nil, err
	}
	if err := s.journalRepo.UpdateEntryState(ctx, tx, *original, originalVersion); err != nil {
		return nil, err
	}
	if s.auditInTx {
		if err := s.auditInTransaction(ctx, tx, principal.TenantID, principal.UserID, domain.AuditReverse, original.EntryID); err != nil {
			return nil, fmt.Errorf("failed to write audit record: %w", err)
		}
	}
	if err := s.journalRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	if !s.auditInTx {
		s.audit(ctx, principal.TenantID, principal.UserID, domain.AuditReverse, original.EntryID, nil)
	}
	resp := buildReverseResponse(original, reversal)
	return &resp, nil
}

func buildReverseResponse(original, reversal *domain.JournalEntry) dto.ReverseJournalEntryResponse {
	var originalNumber, reversalNumber int64
	if original.DocumentNumber != nil {
		originalNumber = *original.DocumentNumber
	}
	if reversal.DocumentNumber != nil {
		reversalNumber = *reversal.DocumentNumber
	}
	return dto.ReverseJournalEntryResponse{
		OriginalEntryID:        original.EntryID,
		OriginalDocumentNumber: originalNumber,
		OriginalStatus:         string(original.Status),
		ReversalEntryID:        reversal.EntryID,
		ReversalDocumentNumber: reversalNumber,
		ReversalDate:           reversal.PostingDate,
	}
}

// GetJournalEntry retrieves an entry by id or by its business key. One of
// the two must be supplied.
func (s *journalService) GetJournalEntry(ctx context.Context, principal domain.Principal, query dto.GetJournalEntryQuery) (*dto.JournalEntryResponse, error) {
	var entry *domain.JournalEntry
	var err error
	switch {
	case query.EntryID != "":
		entry, err = s.journalRepo.FindEntryByID(ctx, principal.TenantID, query.EntryID)
	case query.DocumentNumber != nil && query.CompanyCode != "" && query.FiscalYear != 0:
		entry, err = s.journalRepo.FindEntryByDocumentNumber(ctx, principal.TenantID, query.CompanyCode, query.FiscalYear, *query.DocumentNumber)
	default:
		return nil, apperrors.NewValidation("missing_identifier",
			"either entryID or documentNumber with companyCode and fiscalYear is required")
	}
	if err != nil {
		return nil, err
	}

	// A posted entry that fails the balance invariant on reload is corrupt
	// state; fail closed rather than serve it.
	if entry.Status != domain.Draft && !entry.IsBalanced() {
		s.audit(ctx, principal.TenantID, principal.UserID, domain.AuditPost, entry.EntryID,
			apperrors.NewInternal("posted entry is unbalanced on reload", nil))
		return nil, apperrors.NewInternal("stored journal entry violates the balance invariant", nil)
	}

	resp := dto.ToJournalEntryResponse(entry)
	return &resp, nil
}

// ListJournalEntries returns a stable page ordered by (created_at DESC,
// entry_id DESC).
func (s *journalService) ListJournalEntries(ctx context.Context, principal domain.Principal, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	limit := params.PageSize
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	filter := portsrepo.ListEntriesFilter{
		CompanyCode: params.CompanyCode,
		FiscalYear:  params.FiscalYear,
		DateFrom:    params.DateFrom,
		DateTo:      params.DateTo,
		AccountCode: params.AccountCode,
		CostCenter:  params.CostCenter,
		Status:      domain.JournalEntryStatus(params.Status),
		Limit:       limit,
		NextToken:   params.PageToken,
	}
	entries, nextToken, err := s.journalRepo.ListEntries(ctx, principal.TenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}

	summaries := make([]dto.JournalEntrySummary, len(entries))
	for i := range entries {
		summaries[i] = dto.ToJournalEntrySummary(&entries[i])
	}
	return &dto.ListJournalEntriesResponse{Entries: summaries, NextToken: nextToken}, nil
}
