package services

import (
	"context"

	"github.com/finkit/gl_ledger_app/internal/core/domain"
	"github.com/finkit/gl_ledger_app/internal/dto"
)

// JournalSvcFacade is the posting engine's service boundary. Every call
// carries the already-validated principal; the engine never parses tokens.
type JournalSvcFacade interface {
	CreateJournalEntry(ctx context.Context, principal domain.Principal, req dto.CreateJournalEntryRequest) (*dto.JournalEntryResponse, error)
	PostJournalEntry(ctx context.Context, principal domain.Principal, req dto.PostJournalEntryRequest) (*dto.PostJournalEntryResponse, error)
	ReverseJournalEntry(ctx context.Context, principal domain.Principal, req dto.ReverseJournalEntryRequest) (*dto.ReverseJournalEntryResponse, error)
	GetJournalEntry(ctx context.Context, principal domain.Principal, query dto.GetJournalEntryQuery) (*dto.JournalEntryResponse, error)
	ListJournalEntries(ctx context.Context, principal domain.Principal, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error)
}
