package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finkit/gl_ledger_app/internal/apperrors"
	"github.com/finkit/gl_ledger_app/internal/core/domain"
)

func balancedEntry() *domain.JournalEntry {
	return &domain.JournalEntry{
		EntryID:      "e-1",
		TenantID:     "t-1",
		CompanyCode:  "1000",
		FiscalYear:   2026,
		DocumentDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		PostingDate:  time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		CurrencyCode: "EUR",
		HeaderText:   "Office rent March",
		Status:       domain.Draft,
		Version:      1,
		Lines: []domain.LineItem{
			{LineNumber: 1, AccountCode: "470000", Direction: domain.Debit, Amount: domain.Money{Amount: 120000, CurrencyCode: "EUR"}},
			{LineNumber: 2, AccountCode: "113100", Direction: domain.Credit, Amount: domain.Money{Amount: 120000, CurrencyCode: "EUR"}},
		},
	}
}

func TestValidateStructure(t *testing.T) {
	entry := balancedEntry()
	assert.NoError(t, entry.ValidateStructure(255))

	t.Run("too few lines", func(t *testing.T) {
		e := balancedEntry()
		e.Lines = e.Lines[:1]
		err := e.ValidateStructure(255)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Equal(t, "too_few_lines", apperrors.CodeOf(err))
	})

	t.Run("duplicate line number", func(t *testing.T) {
		e := balancedEntry()
		e.Lines[1].LineNumber = 1
		err := e.ValidateStructure(255)
		assert.Equal(t, "duplicate_line_number", apperrors.CodeOf(err))
	})

	t.Run("non contiguous line numbers", func(t *testing.T) {
		e := balancedEntry()
		e.Lines[1].LineNumber = 5
		err := e.ValidateStructure(255)
		assert.Equal(t, "line_numbers_not_contiguous", apperrors.CodeOf(err))
	})

	t.Run("negative amount", func(t *testing.T) {
		e := balancedEntry()
		e.Lines[0].Amount.Amount = -1
		err := e.ValidateStructure(255)
		assert.Equal(t, "negative_amount", apperrors.CodeOf(err))
	})

	t.Run("currency mismatch", func(t *testing.T) {
		e := balancedEntry()
		e.Lines[0].Amount.CurrencyCode = "USD"
		err := e.ValidateStructure(255)
		assert.Equal(t, "currency_mismatch", apperrors.CodeOf(err))
	})

	t.Run("header text too long", func(t *testing.T) {
		e := balancedEntry()
		e.HeaderText = string(make([]byte, 256))
		err := e.ValidateStructure(255)
		assert.Equal(t, "header_text_too_long", apperrors.CodeOf(err))
	})
}

func TestBalance(t *testing.T) {
	entry := balancedEntry()
	assert.True(t, entry.IsBalanced())
	assert.Equal(t, int64(120000), entry.TotalDebits().Amount)
	assert.Equal(t, int64(120000), entry.TotalCredits().Amount)
	assert.Zero(t, entry.BalanceDifference())

	entry.Lines[0].Amount.Amount = 120001
	assert.False(t, entry.IsBalanced())
	assert.Equal(t, int64(1), entry.BalanceDifference())
}

func TestPost(t *testing.T) {
	entry := balancedEntry()
	at := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	err := entry.Post(entry.PostingDate, 42, "user-1", at)
	require.NoError(t, err)
	assert.Equal(t, domain.Posted, entry.Status)
	require.NotNil(t, entry.DocumentNumber)
	assert.Equal(t, int64(42), *entry.DocumentNumber)
	assert.Equal(t, int64(2), entry.Version)
	require.NotNil(t, entry.PostedAt)
	assert.Equal(t, at, *entry.PostedAt)

	// Posting twice is rejected.
	err = entry.Post(entry.PostingDate, 43, "user-1", at)
	assert.ErrorIs(t, err, apperrors.ErrPrecondition)
	assert.Equal(t, "not_draft", apperrors.CodeOf(err))
}

func TestPostUnbalanced(t *testing.T) {
	entry := balancedEntry()
	entry.Lines[0].Amount.Amount = 120001

	err := entry.Post(entry.PostingDate, 1, "user-1", time.Now().UTC())
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, "unbalanced", apperrors.CodeOf(err))
	assert.Equal(t, domain.Draft, entry.Status)
}

func TestBuildReversal(t *testing.T) {
	entry := balancedEntry()
	at := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, entry.Post(entry.PostingDate, 1, "user-1", at))

	reversalDate := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	reversal, err := entry.BuildReversal("e-2", reversalDate, "booked to wrong account", "user-2", at)
	require.NoError(t, err)

	assert.Equal(t, domain.Draft, reversal.Status)
	assert.Equal(t, 2026, reversal.FiscalYear)
	assert.Equal(t, reversalDate, reversal.PostingDate)
	assert.Equal(t, "Reversal of: Office rent March", reversal.HeaderText)
	require.NotNil(t, reversal.ReversesID)
	assert.Equal(t, entry.EntryID, *reversal.ReversesID)
	assert.Equal(t, "booked to wrong account", reversal.ReversalReason)

	// Directions are inverted line by line; amounts are unchanged.
	require.Len(t, reversal.Lines, 2)
	assert.Equal(t, domain.Credit, reversal.Lines[0].Direction)
	assert.Equal(t, domain.Debit, reversal.Lines[1].Direction)
	assert.Equal(t, entry.Lines[0].Amount, reversal.Lines[0].Amount)
	assert.True(t, reversal.IsBalanced())
}

func TestBuildReversalGuards(t *testing.T) {
	t.Run("draft cannot be reversed", func(t *testing.T) {
		entry := balancedEntry()
		_, err := entry.BuildReversal("e-2", entry.PostingDate, "r", "u", time.Now().UTC())
		assert.Equal(t, "not_posted", apperrors.CodeOf(err))
	})

	t.Run("already reversed", func(t *testing.T) {
		entry := balancedEntry()
		at := time.Now().UTC()
		require.NoError(t, entry.Post(entry.PostingDate, 1, "u", at))
		require.NoError(t, entry.MarkReversed("e-2", "u", at))

		_, err := entry.BuildReversal("e-3", entry.PostingDate, "r", "u", at)
		assert.ErrorIs(t, err, apperrors.ErrPrecondition)
	})

	t.Run("reversal of a reversal", func(t *testing.T) {
		entry := balancedEntry()
		at := time.Now().UTC()
		require.NoError(t, entry.Post(entry.PostingDate, 1, "u", at))
		reversal, err := entry.BuildReversal("e-2", entry.PostingDate, "r", "u", at)
		require.NoError(t, err)
		require.NoError(t, reversal.Post(entry.PostingDate, 2, "u", at))

		_, err = reversal.BuildReversal("e-3", entry.PostingDate, "r", "u", at)
		assert.Equal(t, "is_reversal", apperrors.CodeOf(err))
	})
}

func TestMarkReversed(t *testing.T) {
	entry := balancedEntry()
	at := time.Now().UTC()
	require.NoError(t, entry.Post(entry.PostingDate, 1, "u", at))

	require.NoError(t, entry.MarkReversed("e-2", "u", at))
	assert.Equal(t, domain.Reversed, entry.Status)
	require.NotNil(t, entry.ReversedByID)
	assert.Equal(t, "e-2", *entry.ReversedByID)
	assert.Equal(t, int64(3), entry.Version)

	err := entry.MarkReversed("e-3", "u", at)
	assert.ErrorIs(t, err, apperrors.ErrPrecondition)
}

func TestDirectionInverse(t *testing.T) {
	assert.Equal(t, domain.Credit, domain.Debit.Inverse())
	assert.Equal(t, domain.Debit, domain.Credit.Inverse())
}
