package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/suite"

	"github.com/finkit/gl_ledger_app/internal/apperrors"
	"github.com/finkit/gl_ledger_app/internal/core/domain"
	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finkit/gl_ledger_app/internal/core/ports/services"
	"github.com/finkit/gl_ledger_app/internal/core/services"
	"github.com/finkit/gl_ledger_app/internal/dto"
	"github.com/finkit/gl_ledger_app/internal/repositories/cache"
)

// fakeTx satisfies pgx.Tx through the embedded interface; the fake repo
// never calls through it.
type fakeTx struct{ pgx.Tx }

type stagedTx struct {
	inserts      []domain.JournalEntry
	updates      []domain.JournalEntry
	counterIncrs map[string]int64
}

// fakeJournalRepo is an in-memory JournalEntryRepositoryWithTx. One
// transaction runs at a time; staged writes become visible on Commit, so
// concurrent posts see the same serialization the row locks provide.
type fakeJournalRepo struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	entries  map[string]domain.JournalEntry
	counters map[string]int64
	staged   *stagedTx
}

func newFakeJournalRepo() *fakeJournalRepo {
	return &fakeJournalRepo{
		entries:  make(map[string]domain.JournalEntry),
		counters: make(map[string]int64),
	}
}

func counterKey(tenantID, companyCode string, fiscalYear int) string {
	return fmt.Sprintf("%s|%s|%d", tenantID, companyCode, fiscalYear)
}

func copyEntry(e domain.JournalEntry) domain.JournalEntry {
	lines := make([]domain.LineItem, len(e.Lines))
	copy(lines, e.Lines)
	e.Lines = lines
	return e
}

func (r *fakeJournalRepo) seed(e domain.JournalEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.EntryID] = copyEntry(e)
}

func (r *fakeJournalRepo) Begin(ctx context.Context) (pgx.Tx, error) {
	r.txMu.Lock()
	r.staged = &stagedTx{counterIncrs: make(map[string]int64)}
	return fakeTx{}, nil
}

func (r *fakeJournalRepo) Commit(ctx context.Context, tx pgx.Tx) error {
	r.mu.Lock()
	for _, e := range r.staged.inserts {
		r.entries[e.EntryID] = e
	}
	for _, e := range r.staged.updates {
		r.entries[e.EntryID] = e
	}
	for key, incr := range r.staged.counterIncrs {
		r.counters[key] += incr
	}
	r.mu.Unlock()
	r.staged = nil
	r.txMu.Unlock()
	return nil
}

func (r *fakeJournalRepo) Rollback(ctx context.Context, tx pgx.Tx) error {
	if r.staged == nil {
		return nil
	}
	r.staged = nil
	r.txMu.Unlock()
	return nil
}

func (r *fakeJournalRepo) InsertEntry(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	r.staged.inserts = append(r.staged.inserts, copyEntry(entry))
	return nil
}

func (r *fakeJournalRepo) LoadEntryForUpdate(ctx context.Context, tx pgx.Tx, tenantID, entryID string) (*domain.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[entryID]
	if !ok || e.TenantID != tenantID {
		return nil, apperrors.ErrNotFound
	}
	cp := copyEntry(e)
	return &cp, nil
}

func (r *fakeJournalRepo) UpdateEntryState(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.entries[entry.EntryID]
	if !ok || stored.Version != expectedVersion {
		return apperrors.NewConflict("version_conflict",
			fmt.Sprintf("journal entry %s was modified concurrently", entry.EntryID))
	}
	r.staged.updates = append(r.staged.updates, copyEntry(entry))
	return nil
}

func (r *fakeJournalRepo) NextDocumentNumber(ctx context.Context, tx pgx.Tx, tenantID, companyCode string, fiscalYear int) (int64, error) {
	key := counterKey(tenantID, companyCode, fiscalYear)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staged.counterIncrs[key]++
	return r.counters[key] + r.staged.counterIncrs[key], nil
}

func (r *fakeJournalRepo) FindEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[entryID]
	if !ok || e.TenantID != tenantID {
		return nil, apperrors.ErrNotFound
	}
	cp := copyEntry(e)
	return &cp, nil
}

func (r *fakeJournalRepo) FindEntryByDocumentNumber(ctx context.Context, tenantID, companyCode string, fiscalYear int, documentNumber int64) (*domain.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.TenantID == tenantID && e.CompanyCode == companyCode && e.FiscalYear == fiscalYear &&
			e.DocumentNumber != nil && *e.DocumentNumber == documentNumber {
			cp := copyEntry(e)
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeJournalRepo) ListEntries(ctx context.Context, tenantID string, filter portsrepo.ListEntriesFilter) ([]domain.JournalEntry, *string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.JournalEntry
	for _, e := range r.entries {
		if e.TenantID != tenantID {
			continue
		}
		if filter.CompanyCode != "" && e.CompanyCode != filter.CompanyCode {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, copyEntry(e))
		if len(out) >= filter.Limit {
			break
		}
	}
	return out, nil, nil
}

var _ portsrepo.JournalEntryRepositoryWithTx = (*fakeJournalRepo)(nil)

// stubAccountService serves the master-data lookups of the validation
// pipeline from a fixed map.
type stubAccountService struct {
	portssvc.AccountSvcFacade
	accounts map[string]domain.GLAccount
}

func (s *stubAccountService) GetAccountsByCodes(ctx context.Context, tenantID, companyCode string, accountCodes []string) (map[string]domain.GLAccount, error) {
	out := make(map[string]domain.GLAccount)
	for _, code := range accountCodes {
		if a, ok := s.accounts[code]; ok {
			out[code] = a
		}
	}
	return out, nil
}

type stubCostCenterRepo struct {
	centers map[string]domain.CostCenter
}

func (s *stubCostCenterRepo) FindCostCentersByCodes(ctx context.Context, tenantID, companyCode string, codes []string) (map[string]domain.CostCenter, error) {
	out := make(map[string]domain.CostCenter)
	for _, code := range codes {
		if cc, ok := s.centers[code]; ok {
			out[code] = cc
		}
	}
	return out, nil
}

func (s *stubCostCenterRepo) SaveCostCenter(ctx context.Context, cc domain.CostCenter) error {
	return nil
}

type stubPeriodRepo struct {
	mu   sync.Mutex
	open map[string]bool // "year/period" -> open
}

func (s *stubPeriodRepo) IsPeriodOpen(ctx context.Context, tenantID, companyCode string, fiscalYear, period int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open[fmt.Sprintf("%d/%d", fiscalYear, period)], nil
}

func (s *stubPeriodRepo) UpsertPeriod(ctx context.Context, period domain.FiscalPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open[fmt.Sprintf("%d/%d", period.FiscalYear, period.Period)] = period.Status == domain.PeriodOpen
	return nil
}

func (s *stubPeriodRepo) ListPeriods(ctx context.Context, tenantID, companyCode string, fiscalYear int) ([]domain.FiscalPeriod, error) {
	return nil, nil
}

// recordingAuditRepo captures every audit write for assertions.
type recordingAuditRepo struct {
	mu      sync.Mutex
	records []domain.AuditRecord
}

func (r *recordingAuditRepo) InsertAuditRecord(ctx context.Context, record domain.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *recordingAuditRepo) InsertAuditRecordInTx(ctx context.Context, tx pgx.Tx, record domain.AuditRecord) error {
	return r.InsertAuditRecord(ctx, record)
}

func (r *recordingAuditRepo) last() domain.AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[len(r.records)-1]
}

// --- Test Suite Setup ---

type JournalServiceTestSuite struct {
	suite.Suite
	repo       *fakeJournalRepo
	periodRepo *stubPeriodRepo
	auditRepo  *recordingAuditRepo
	idemStore  *cache.MemoryIdempotencyStore
	service    portssvc.JournalSvcFacade
	principal  domain.Principal
}

func (s *JournalServiceTestSuite) SetupTest() {
	s.repo = newFakeJournalRepo()
	s.periodRepo = &stubPeriodRepo{open: map[string]bool{
		"2026/3": true,
		"2026/4": true,
	}}
	s.auditRepo = &recordingAuditRepo{}
	s.idemStore = cache.NewMemoryIdempotencyStore(5*time.Minute, 24*time.Hour)

	accountSvc := &stubAccountService{accounts: map[string]domain.GLAccount{
		"470000": {AccountCode: "470000", AccountType: domain.Expense, IsActive: true},
		"113100": {AccountCode: "113100", AccountType: domain.Asset, IsActive: true},
		"999000": {AccountCode: "999000", AccountType: domain.Asset, IsActive: true, BlockedForPosting: true},
	}}
	costCenterRepo := &stubCostCenterRepo{centers: map[string]domain.CostCenter{
		"CC-100": {Code: "CC-100", IsActive: true},
	}}

	s.service = services.NewJournalService(
		s.repo, accountSvc, costCenterRepo, s.periodRepo, s.auditRepo, s.idemStore, 255)
	s.principal = domain.Principal{
		TenantID: "tenant-1",
		UserID:   "user-1",
		Roles:    []string{domain.RoleAccountant},
	}
}

func (s *JournalServiceTestSuite) createRequest() dto.CreateJournalEntryRequest {
	return dto.CreateJournalEntryRequest{
		CompanyCode:  "1000",
		FiscalYear:   2026,
		DocumentDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		PostingDate:  time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		CurrencyCode: "EUR",
		HeaderText:   "Office rent March",
		Lines: []dto.CreateLineItemRequest{
			{AccountCode: "470000", Direction: "DEBIT", Amount: 120000, CostCenter: "CC-100"},
			{AccountCode: "113100", Direction: "CREDIT", Amount: 120000},
		},
	}
}

func (s *JournalServiceTestSuite) mustCreateDraft() string {
	resp, err := s.service.CreateJournalEntry(context.Background(), s.principal, s.createRequest())
	s.Require().NoError(err)
	return resp.EntryID
}

// --- Create ---

func (s *JournalServiceTestSuite) TestCreateEntry_Success() {
	resp, err := s.service.CreateJournalEntry(context.Background(), s.principal, s.createRequest())
	s.Require().NoError(err)

	s.Equal("DRAFT", resp.Status)
	s.Nil(resp.DocumentNumber)
	s.Equal(int64(1), resp.Version)
	s.Len(resp.Lines, 2)
	// Omitted line numbers are assigned in request order.
	s.Equal(int32(1), resp.Lines[0].LineNumber)
	s.Equal(int32(2), resp.Lines[1].LineNumber)

	record := s.auditRepo.last()
	s.Equal(domain.AuditCreate, record.Action)
	s.Equal(domain.AuditSuccess, record.Outcome)
}

func (s *JournalServiceTestSuite) TestCreateEntry_Unbalanced() {
	req := s.createRequest()
	req.Lines[0].Amount = 120001

	_, err := s.service.CreateJournalEntry(context.Background(), s.principal, req)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Equal("unbalanced", apperrors.CodeOf(err))

	record := s.auditRepo.last()
	s.Equal(domain.AuditFailure, record.Outcome)
	s.Equal("unbalanced", record.Reason)
}

func (s *JournalServiceTestSuite) TestCreateEntry_UnknownAccount() {
	req := s.createRequest()
	req.Lines[0].AccountCode = "000000"

	_, err := s.service.CreateJournalEntry(context.Background(), s.principal, req)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Equal("unknown_account", apperrors.CodeOf(err))
}

func (s *JournalServiceTestSuite) TestCreateEntry_MissingRole() {
	principal := domain.Principal{TenantID: "tenant-1", UserID: "user-2", Roles: []string{"finance:read"}}

	_, err := s.service.CreateJournalEntry(context.Background(), principal, s.createRequest())
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.Equal("missing_role", apperrors.CodeOf(err))
}

// --- Post ---

func (s *JournalServiceTestSuite) TestPostEntry_Success() {
	entryID := s.mustCreateDraft()

	resp, err := s.service.PostJournalEntry(context.Background(), s.principal, dto.PostJournalEntryRequest{
		EntryID:     entryID,
		PostingDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)

	s.Equal("POSTED", resp.Status)
	s.Equal(int64(1), resp.DocumentNumber)
	s.Equal(int64(120000), resp.TotalDebit)
	s.Equal(int64(120000), resp.TotalCredit)

	stored, err := s.repo.FindEntryByID(context.Background(), "tenant-1", entryID)
	s.Require().NoError(err)
	s.Equal(domain.Posted, stored.Status)
	s.Equal(int64(2), stored.Version)
}

func (s *JournalServiceTestSuite) TestPostEntry_IdempotentReplay() {
	entryID := s.mustCreateDraft()
	req := dto.PostJournalEntryRequest{
		EntryID:          entryID,
		PostingDate:      time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		IdempotencyToken: "tok-post-1",
	}

	first, err := s.service.PostJournalEntry(context.Background(), s.principal, req)
	s.Require().NoError(err)

	// The replay returns the cached response; no second number is allocated.
	second, err := s.service.PostJournalEntry(context.Background(), s.principal, req)
	s.Require().NoError(err)
	s.Equal(first, second)
	s.Equal(int64(1), second.DocumentNumber)
}

func (s *JournalServiceTestSuite) TestPostEntry_TokenReusedWithDifferentBody() {
	entryA := s.mustCreateDraft()
	entryB := s.mustCreateDraft()
	postingDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	_, err := s.service.PostJournalEntry(context.Background(), s.principal, dto.PostJournalEntryRequest{
		EntryID: entryA, PostingDate: postingDate, IdempotencyToken: "tok-shared",
	})
	s.Require().NoError(err)

	_, err = s.service.PostJournalEntry(context.Background(), s.principal, dto.PostJournalEntryRequest{
		EntryID: entryB, PostingDate: postingDate, IdempotencyToken: "tok-shared",
	})
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *JournalServiceTestSuite) TestPostEntry_PeriodClosed() {
	entryID := s.mustCreateDraft()

	_, err := s.service.PostJournalEntry(context.Background(), s.principal, dto.PostJournalEntryRequest{
		EntryID:     entryID,
		PostingDate: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), // period 2 not open
	})
	s.ErrorIs(err, apperrors.ErrPrecondition)
	s.Equal("period_closed", apperrors.CodeOf(err))

	// Nothing was allocated or transitioned.
	stored, ferr := s.repo.FindEntryByID(context.Background(), "tenant-1", entryID)
	s.Require().NoError(ferr)
	s.Equal(domain.Draft, stored.Status)
	s.Nil(stored.DocumentNumber)
}

func (s *JournalServiceTestSuite) TestPostEntry_FiscalYearMismatch() {
	entryID := s.mustCreateDraft()

	_, err := s.service.PostJournalEntry(context.Background(), s.principal, dto.PostJournalEntryRequest{
		EntryID:     entryID,
		PostingDate: time.Date(2027, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Equal("fiscal_year_mismatch", apperrors.CodeOf(err))
}

func (s *JournalServiceTestSuite) TestPostEntry_NotDraft() {
	entryID := s.mustCreateDraft()
	postingDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	_, err := s.service.PostJournalEntry(context.Background(), s.principal, dto.PostJournalEntryRequest{
		EntryID: entryID, PostingDate: postingDate,
	})
	s.Require().NoError(err)

	// A retry without an idempotency token is not recognized as a replay.
	_, err = s.service.PostJournalEntry(context.Background(), s.principal, dto.PostJournalEntryRequest{
		EntryID: entryID, PostingDate: postingDate,
	})
	s.ErrorIs(err, apperrors.ErrPrecondition)
	s.Equal("not_draft", apperrors.CodeOf(err))
}

func (s *JournalServiceTestSuite) TestPostEntry_RecoveryAfterLostIdempotencyRecord() {
	entryID := s.mustCreateDraft()
	postingDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	first, err := s.service.PostJournalEntry(context.Background(), s.principal, dto.PostJournalEntryRequest{
		EntryID: entryID, PostingDate: postingDate, IdempotencyToken: "tok-crash",
	})
	s.Require().NoError(err)

	// Simulate a crash between commit and finish: the idempotency record is
	// gone but the entry is posted. The retry rebuilds the canonical response.
	s.Require().NoError(s.idemStore.Abandon(context.Background(), "tenant-1", "tok-crash"))

	second, err := s.service.PostJournalEntry(context.Background(), s.principal, dto.PostJournalEntryRequest{
		EntryID: entryID, PostingDate: postingDate, IdempotencyToken: "tok-crash",
	})
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *JournalServiceTestSuite) TestPostEntry_FreshTokenOnPostedEntry() {
	entryID := s.mustCreateDraft()

	_, err := s.service.PostJournalEntry(context.Background(), s.principal, dto.PostJournalEntryRequest{
		EntryID:     entryID,
		PostingDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)

	// A token never seen before with a different posting date is a distinct
	// operation, not a retry of the commit; it must hit the status guard.
	_, err = s.service.PostJournalEntry(context.Background(), s.principal, dto.PostJournalEntryRequest{
		EntryID:          entryID,
		PostingDate:      time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		IdempotencyToken: "tok-never-used",
	})
	s.ErrorIs(err, apperrors.ErrPrecondition)
	s.Equal("not_draft", apperrors.CodeOf(err))
}

func (s *JournalServiceTestSuite) TestReverseEntry_RecoveryAfterLostIdempotencyRecord() {
	entryID := s.mustCreateDraft()
	s.postEntry(entryID)
	reversalDate := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	first, err := s.service.ReverseJournalEntry(context.Background(), s.principal, dto.ReverseJournalEntryRequest{
		EntryID: entryID, ReversalDate: reversalDate, Reason: "wrong cost center",
		IdempotencyToken: "tok-rev-crash",
	})
	s.Require().NoError(err)

	s.Require().NoError(s.idemStore.Abandon(context.Background(), "tenant-1", "tok-rev-crash"))

	second, err := s.service.ReverseJournalEntry(context.Background(), s.principal, dto.ReverseJournalEntryRequest{
		EntryID: entryID, ReversalDate: reversalDate, Reason: "wrong cost center",
		IdempotencyToken: "tok-rev-crash",
	})
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *JournalServiceTestSuite) TestReverseEntry_FreshTokenOnReversedEntry() {
	entryID := s.mustCreateDraft()
	s.postEntry(entryID)

	_, err := s.service.ReverseJournalEntry(context.Background(), s.principal, dto.ReverseJournalEntryRequest{
		EntryID:      entryID,
		ReversalDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Reason:       "wrong cost center",
	})
	s.Require().NoError(err)

	// Tokened request against an already reversed entry with a different
	// reversal date must not replay the committed reversal.
	_, err = s.service.ReverseJournalEntry(context.Background(), s.principal, dto.ReverseJournalEntryRequest{
		EntryID:          entryID,
		ReversalDate:     time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		Reason:           "wrong cost center",
		IdempotencyToken: "tok-rev-fresh",
	})
	s.ErrorIs(err, apperrors.ErrPrecondition)
	s.Equal("not_posted", apperrors.CodeOf(err))
}

func (s *JournalServiceTestSuite) TestCreateEntry_BlockedAccount() {
	req := s.createRequest()
	req.Lines[1].AccountCode = "999000"
	resp, err := s.service.CreateJournalEntry(context.Background(), s.principal, req)
	s.Nil(resp)
	s.ErrorIs(err, apperrors.ErrPrecondition)
	s.Equal("account_blocked", apperrors.CodeOf(err))
}

func (s *JournalServiceTestSuite) TestPostEntry_NotFound() {
	_, err := s.service.PostJournalEntry(context.Background(), s.principal, dto.PostJournalEntryRequest{
		EntryID:     "no-such-entry",
		PostingDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

// Concurrent posts against one company and year must produce dense, unique
// document numbers.
func (s *JournalServiceTestSuite) TestConcurrentPosts_DocumentNumbersAreDense() {
	const n = 8
	postingDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	entryIDs := make([]string, n)
	for i := range entryIDs {
		entryIDs[i] = s.mustCreateDraft()
	}

	numbers := make(chan int64, n)
	var wg sync.WaitGroup
	for _, entryID := range entryIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			resp, err := s.service.PostJournalEntry(context.Background(), s.principal, dto.PostJournalEntryRequest{
				EntryID: id, PostingDate: postingDate,
			})
			if err == nil {
				numbers <- resp.DocumentNumber
			}
		}(entryID)
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int64]bool)
	for number := range numbers {
		s.False(seen[number], "document number %d allocated twice", number)
		seen[number] = true
	}
	s.Len(seen, n)
	for i := int64(1); i <= n; i++ {
		s.True(seen[i], "document number %d missing from sequence", i)
	}
}

// --- Reverse ---

func (s *JournalServiceTestSuite) postEntry(entryID string) *dto.PostJournalEntryResponse {
	resp, err := s.service.PostJournalEntry(context.Background(), s.principal, dto.PostJournalEntryRequest{
		EntryID:     entryID,
		PostingDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)
	return resp
}

func (s *JournalServiceTestSuite) TestReverseEntry_Success() {
	entryID := s.mustCreateDraft()
	s.postEntry(entryID)

	resp, err := s.service.ReverseJournalEntry(context.Background(), s.principal, dto.ReverseJournalEntryRequest{
		EntryID:      entryID,
		ReversalDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Reason:       "wrong cost center",
	})
	s.Require().NoError(err)

	s.Equal(entryID, resp.OriginalEntryID)
	s.Equal("REVERSED", resp.OriginalStatus)
	s.Equal(int64(2), resp.ReversalDocumentNumber)

	original, err := s.repo.FindEntryByID(context.Background(), "tenant-1", entryID)
	s.Require().NoError(err)
	s.Equal(domain.Reversed, original.Status)
	s.Require().NotNil(original.ReversedByID)
	s.Equal(resp.ReversalEntryID, *original.ReversedByID)

	reversal, err := s.repo.FindEntryByID(context.Background(), "tenant-1", resp.ReversalEntryID)
	s.Require().NoError(err)
	s.Equal(domain.Posted, reversal.Status)
	s.Equal(domain.Credit, reversal.Lines[0].Direction)
	s.Equal(domain.Debit, reversal.Lines[1].Direction)
	s.True(reversal.IsBalanced())
}

func (s *JournalServiceTestSuite) TestReverseEntry_Twice() {
	entryID := s.mustCreateDraft()
	s.postEntry(entryID)
	reversalDate := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.service.ReverseJournalEntry(context.Background(), s.principal, dto.ReverseJournalEntryRequest{
		EntryID: entryID, ReversalDate: reversalDate, Reason: "first",
	})
	s.Require().NoError(err)

	_, err = s.service.ReverseJournalEntry(context.Background(), s.principal, dto.ReverseJournalEntryRequest{
		EntryID: entryID, ReversalDate: reversalDate, Reason: "second",
	})
	s.ErrorIs(err, apperrors.ErrPrecondition)
	s.Equal("not_posted", apperrors.CodeOf(err))
}

func (s *JournalServiceTestSuite) TestReverseEntry_Draft() {
	entryID := s.mustCreateDraft()

	_, err := s.service.ReverseJournalEntry(context.Background(), s.principal, dto.ReverseJournalEntryRequest{
		EntryID:      entryID,
		ReversalDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Reason:       "premature",
	})
	s.ErrorIs(err, apperrors.ErrPrecondition)
	s.Equal("not_posted", apperrors.CodeOf(err))
}

func (s *JournalServiceTestSuite) TestReverseEntry_ClosedPeriod() {
	entryID := s.mustCreateDraft()
	s.postEntry(entryID)

	_, err := s.service.ReverseJournalEntry(context.Background(), s.principal, dto.ReverseJournalEntryRequest{
		EntryID:      entryID,
		ReversalDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), // period 5 not open
		Reason:       "late",
	})
	s.ErrorIs(err, apperrors.ErrPrecondition)
	s.Equal("period_closed", apperrors.CodeOf(err))

	// The original must be untouched.
	original, ferr := s.repo.FindEntryByID(context.Background(), "tenant-1", entryID)
	s.Require().NoError(ferr)
	s.Equal(domain.Posted, original.Status)
}

// --- Get / List ---

func (s *JournalServiceTestSuite) TestGetEntry_ByIDAndByDocumentNumber() {
	entryID := s.mustCreateDraft()
	posted := s.postEntry(entryID)

	byID, err := s.service.GetJournalEntry(context.Background(), s.principal, dto.GetJournalEntryQuery{EntryID: entryID})
	s.Require().NoError(err)
	s.Equal(entryID, byID.EntryID)

	number := posted.DocumentNumber
	byNumber, err := s.service.GetJournalEntry(context.Background(), s.principal, dto.GetJournalEntryQuery{
		DocumentNumber: &number, CompanyCode: "1000", FiscalYear: 2026,
	})
	s.Require().NoError(err)
	s.Equal(entryID, byNumber.EntryID)
}

func (s *JournalServiceTestSuite) TestGetEntry_MissingIdentifier() {
	_, err := s.service.GetJournalEntry(context.Background(), s.principal, dto.GetJournalEntryQuery{})
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Equal("missing_identifier", apperrors.CodeOf(err))
}

func (s *JournalServiceTestSuite) TestGetEntry_TenantIsolation() {
	entryID := s.mustCreateDraft()

	other := domain.Principal{TenantID: "tenant-2", UserID: "user-9", Roles: []string{domain.RoleAccountant}}
	_, err := s.service.GetJournalEntry(context.Background(), other, dto.GetJournalEntryQuery{EntryID: entryID})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *JournalServiceTestSuite) TestListEntries() {
	s.mustCreateDraft()
	s.mustCreateDraft()

	resp, err := s.service.ListJournalEntries(context.Background(), s.principal, dto.ListJournalEntriesParams{
		CompanyCode: "1000",
	})
	s.Require().NoError(err)
	s.Len(resp.Entries, 2)
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}
