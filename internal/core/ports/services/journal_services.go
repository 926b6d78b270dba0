package services

import (
	"context"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
)

// JournalSvcFacade defines the journal engine operations. Validation is the
// sole write path that makes an entry visible to ledger projections.
type JournalSvcFacade interface {
	// CreateDraft creates a balanced draft entry. Drafts are mutable and
	// invisible to projections.
	CreateDraft(ctx context.Context, req dto.CreateEntryRequest, creatorID string) (*domain.JournalEntry, error)

	// EditDraft updates a draft's date, description or lines.
	EditDraft(ctx context.Context, entryID string, req dto.UpdateEntryRequest, updatedBy string) (*domain.JournalEntry, error)

	// DeleteDraft removes a draft entry.
	DeleteDraft(ctx context.Context, entryID string, deletedBy string) error

	// ValidateEntry re-checks the fundamental identity and the period gate,
	// then atomically flips the entry to its immutable validated state.
	ValidateEntry(ctx context.Context, entryID string, validatedBy string) (*domain.JournalEntry, error)

	// ReverseEntry creates a validated entry with every line's side flipped,
	// dated in an open period, referencing the original. The original's
	// lines are never mutated.
	ReverseEntry(ctx context.Context, entryID string, req dto.ReverseEntryRequest, requestedBy string) (*domain.JournalEntry, error)

	// GetEntryByID retrieves an entry with its lines.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a filtered, token-paginated list of entries.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}
